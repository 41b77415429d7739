package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	// драйвер database/sql для утилиты миграции
	_ "github.com/lib/pq"
)

//go:embed schema.sql
var schemaSQL string

// Schema возвращает DDL схемы базы данных
func Schema() string {
	return schemaSQL
}

// Migrate применяет схему через database/sql. Все операторы идемпотентны (IF NOT EXISTS).
func Migrate(ctx context.Context, databaseURL string) error {
	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("ошибка открытия соединения: %w", err)
	}
	defer conn.Close()

	if err := conn.PingContext(ctx); err != nil {
		return fmt.Errorf("ошибка при проверке соединения: %w", err)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка при начале транзакции: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ошибка применения схемы: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}
	return nil
}
