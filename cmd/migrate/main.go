package main

import (
	"context"
	"time"

	"github.com/rajivgeraev/adena-api/internal/config"
	"github.com/rajivgeraev/adena-api/internal/db"
	"github.com/rajivgeraev/adena-api/internal/logging"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.L().Fatal().Err(err).Msg("❌ Ошибка загрузки конфигурации")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty, ServiceName: "adena-migrate"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := db.Migrate(ctx, cfg.DatabaseURL); err != nil {
		logging.L().Fatal().Err(err).Msg("❌ Ошибка применения схемы")
	}
	logging.L().Info().Msg("✅ Схема базы данных применена")
}
