package middleware

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/adena-api/internal/models"
)

type stubResolver map[string]*models.Identity

func (s stubResolver) Resolve(_ context.Context, credential string) (*models.Identity, error) {
	if id, ok := s[credential]; ok {
		return id, nil
	}
	return nil, errors.New("unknown token")
}

func newTestApp() *fiber.App {
	resolver := stubResolver{
		"user":  {UserID: 7, Username: "alice"},
		"admin": {UserID: 1, Username: "root", IsAdmin: true},
	}

	app := fiber.New()
	api := app.Group("/api", AuthMiddleware(resolver))
	api.Get("/me", func(c fiber.Ctx) error {
		return c.JSON(IdentityFrom(c))
	})
	api.Get("/admin", func(c fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	}, AdminOnly())
	return app
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"missing header", "/api/me", "", fiber.StatusUnauthorized},
		{"wrong scheme", "/api/me", "Basic user", fiber.StatusUnauthorized},
		{"unknown token", "/api/me", "Bearer nope", fiber.StatusUnauthorized},
		{"valid token", "/api/me", "Bearer user", fiber.StatusOK},
		{"admin route as user", "/api/admin", "Bearer user", fiber.StatusForbidden},
		{"admin route as admin", "/api/admin", "Bearer admin", fiber.StatusNoContent},
	}

	app := newTestApp()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
