package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/rajivgeraev/adena-api/internal/db"
	"github.com/rajivgeraev/adena-api/internal/logging"
	"github.com/rajivgeraev/adena-api/internal/models"
	"github.com/rajivgeraev/adena-api/internal/utils"
)

// ErrUnauthenticated токен отсутствует, некорректен, истёк или не указывает на известного пользователя
var ErrUnauthenticated = errors.New("пользователь не аутентифицирован")

// UserLookup поиск пользователя по subject токена
type UserLookup interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Gate проверяет bearer токен и разрешает его в пользователя
type Gate struct {
	jwt   *utils.JWTService
	users UserLookup
}

// NewGate создаёт Gate
func NewGate(jwtService *utils.JWTService, users UserLookup) *Gate {
	return &Gate{jwt: jwtService, users: users}
}

// Resolve возвращает пользователя по токену или ErrUnauthenticated.
// Причина отказа пишется только в лог.
func (g *Gate) Resolve(ctx context.Context, credential string) (*models.Identity, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, ErrUnauthenticated
	}

	email, err := g.jwt.ExtractSubject(credential)
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Msg("токен отклонён")
		return nil, ErrUnauthenticated
	}

	user, err := g.users.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			// ошибка хранилища тоже не пускает пользователя, но её стоит видеть в логах
			logging.Ctx(ctx).Error().Err(err).Msg("ошибка поиска пользователя по токену")
		}
		return nil, ErrUnauthenticated
	}

	return models.IdentityFromUser(user), nil
}
