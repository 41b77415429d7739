package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rajivgeraev/adena-api/internal/models"
)

const userColumns = `id, email, username, is_admin, language, created_at`

// UserStore читает пользователей из PostgreSQL
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore создаёт UserStore
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

// GetUserByID получает пользователя по ID
func (s *UserStore) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении пользователя %d: %w", userID, err)
	}
	return user, nil
}

// GetUserByEmail получает пользователя по email (subject токена)
func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении пользователя по email: %w", err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	var language pgtype.Text

	err := row.Scan(&user.ID, &user.Email, &user.Username, &user.IsAdmin, &language, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// Преобразуем nullable поля
	user.Language = "en"
	if language.Valid {
		user.Language = language.String
	}

	return &user, nil
}
