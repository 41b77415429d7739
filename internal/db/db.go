package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rajivgeraev/adena-api/internal/config"
	"github.com/rajivgeraev/adena-api/internal/logging"
)

// ErrNotFound возвращается, если запись не найдена
var ErrNotFound = errors.New("запись не найдена")

// InitDB создаёт пул соединений с базой данных и проверяет соединение
func InitDB(cfg *config.Config) (*pgxpool.Pool, error) {
	logging.L().Info().
		Str("host", cfg.DatabaseConfig.Host).
		Str("database", cfg.DatabaseConfig.Name).
		Msg("Подключение к базе данных")

	// Создаем контекст с таймаутом для подключения
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("ошибка при разборе URL базы данных: %w", err)
	}

	poolConfig.MaxConns = cfg.DatabaseConfig.MaxConns
	poolConfig.MinConns = cfg.DatabaseConfig.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании пула соединений: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка при проверке соединения: %w", err)
	}

	logging.L().Info().Msg("✅ Успешное подключение к базе данных")
	return pool, nil
}

// WithTimeout ограничивает родительский контекст таймаутом запроса к базе данных
func WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, 5*time.Second)
}
