package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/adena-api/internal/db"
	"github.com/rajivgeraev/adena-api/internal/models"
)

// IdentityKey ключ пользователя в c.Locals
const IdentityKey = "identity"

// IdentityResolver разрешает bearer токен в пользователя
type IdentityResolver interface {
	Resolve(ctx context.Context, credential string) (*models.Identity, error)
}

// AuthMiddleware создаёт middleware для проверки JWT
func AuthMiddleware(resolver IdentityResolver) fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authorization header",
			})
		}

		// Проверяем Bearer токен
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		ctx, cancel := db.WithTimeout(c.Context())
		defer cancel()

		identity, err := resolver.Resolve(ctx, parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		// Добавляем пользователя в контекст
		c.Locals(IdentityKey, identity)

		return c.Next()
	}
}

// AdminOnly пропускает только администраторов. Ставится после AuthMiddleware.
func AdminOnly() fiber.Handler {
	return func(c fiber.Ctx) error {
		identity := IdentityFrom(c)
		if identity == nil || !identity.IsAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Admin access required",
			})
		}
		return c.Next()
	}
}

// IdentityFrom возвращает пользователя, сохранённого AuthMiddleware
func IdentityFrom(c fiber.Ctx) *models.Identity {
	identity, _ := c.Locals(IdentityKey).(*models.Identity)
	return identity
}
