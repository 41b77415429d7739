package auth

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/adena-api/internal/middleware"
)

// SetupRoutes регистрирует маршруты в Fiber
func (s *AuthService) SetupRoutes(app *fiber.App) {
	// Защищенные маршруты
	protected := app.Group("/api/users")
	protected.Use(middleware.AuthMiddleware(s.resolver))

	protected.Get("/me", s.MeHandler)
}
