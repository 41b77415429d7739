package chat

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/adena-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API чатов
func (s *ChatService) SetupRoutes(app *fiber.App) {
	// Группа для API чатов
	api := app.Group("/api/chat")

	// Защищенные маршруты (требуют авторизации)
	api.Use(middleware.AuthMiddleware(s.auth))

	// Получение идентификатора комнаты по объявлению
	api.Post("/start", s.StartChat)

	// Список чатов пользователя
	api.Get("/rooms", s.GetRooms)

	// История и онлайн комнаты
	api.Get("/rooms/:room_id/messages", s.GetRoomMessages)
	api.Get("/rooms/:room_id/online", s.GetRoomOnline)

	// Администрирование
	admin := app.Group("/api/admin/chat")
	admin.Use(middleware.AuthMiddleware(s.auth), middleware.AdminOnly())
	admin.Delete("/rooms/:room_id/sessions", s.CloseRoomSessions)
}
