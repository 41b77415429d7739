package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rajivgeraev/adena-api/internal/db"
	"github.com/rajivgeraev/adena-api/internal/logging"
	"github.com/rajivgeraev/adena-api/internal/websocket"
)

// Pinger проверка доступности базы данных
type Pinger interface {
	Ping(ctx context.Context) error
}

// newRESTApp создаёт экземпляр Fiber с общими middleware и служебными маршрутами
func newRESTApp(database Pinger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Adena API",
		ErrorHandler: errorHandler,
	})

	// Добавляем middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Output: logging.L().With().Str("source", "fiber").Logger(),
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: false,
	}))

	app.Get("/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Adena marketplace API"})
	})

	app.Get("/health", func(c fiber.Ctx) error {
		ctx, cancel := db.WithTimeout(c.Context())
		defer cancel()

		if err := database.Ping(ctx); err != nil {
			logging.L().Error().Err(err).Msg("Проверка базы данных не прошла")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	return app
}

// newRealtimeRouter создаёт роутер WebSocket чата и метрик
func newRealtimeRouter(chatHandler *websocket.ChatHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(logging.RequestLogger(*logging.L()))

	chatHandler.Mount(r)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// errorHandler обрабатывает ошибки Fiber
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	// Проверяем, является ли ошибка из Fiber
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	// Отправляем ошибку в JSON
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
