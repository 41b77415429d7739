package models

import "time"

// User представляет пользователя маркетплейса
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"is_admin"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"created_at"`
}

// Identity представляет аутентифицированного пользователя, полученного по токену
type Identity struct {
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// IdentityFromUser формирует Identity из записи пользователя
func IdentityFromUser(u *User) *Identity {
	return &Identity{
		UserID:   u.ID,
		Email:    u.Email,
		Username: u.Username,
		IsAdmin:  u.IsAdmin,
	}
}
