package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rajivgeraev/adena-api/internal/config"
	"github.com/rajivgeraev/adena-api/internal/utils"
)

// Печатает подписанный токен для локальной проверки чата:
//
//	go run ./cmd/devtoken -email alice@example.com
func main() {
	email := flag.String("email", "", "email пользователя (subject токена)")
	ttl := flag.Duration("ttl", 24*time.Hour, "время жизни токена")
	flag.Parse()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "Usage: devtoken -email <user email> [-ttl 24h]")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	token, err := utils.NewJWTService(cfg.JWTSecret).GenerateTokenWithTTL(*email, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
