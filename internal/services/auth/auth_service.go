package auth

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/adena-api/internal/middleware"
)

// AuthService – структура для обработки запросов учётной записи
type AuthService struct {
	resolver middleware.IdentityResolver
}

// NewAuthService – конструктор AuthService
func NewAuthService(resolver middleware.IdentityResolver) *AuthService {
	return &AuthService{resolver: resolver}
}

// MeHandler возвращает пользователя, которому принадлежит токен
func (s *AuthService) MeHandler(c fiber.Ctx) error {
	identity := middleware.IdentityFrom(c)
	if identity == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	return c.JSON(fiber.Map{
		"user": identity,
	})
}
