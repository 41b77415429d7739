package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/rajivgeraev/adena-api/internal/auth"
	"github.com/rajivgeraev/adena-api/internal/cache"
	"github.com/rajivgeraev/adena-api/internal/config"
	"github.com/rajivgeraev/adena-api/internal/db"
	"github.com/rajivgeraev/adena-api/internal/logging"
	authservice "github.com/rajivgeraev/adena-api/internal/services/auth"
	"github.com/rajivgeraev/adena-api/internal/services/chat"
	"github.com/rajivgeraev/adena-api/internal/utils"
	"github.com/rajivgeraev/adena-api/internal/websocket"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Загружаем конфигурацию
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.L().Fatal().Err(err).Msg("❌ Ошибка загрузки конфигурации")
	}

	logging.Init(logging.Config{
		Level:       cfg.LogLevel,
		Pretty:      cfg.LogPretty,
		ServiceName: "adena-api",
	})
	logger := logging.L()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Инициализируем базу данных
	pool, err := db.InitDB(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("❌ Ошибка при инициализации базы данных")
	}
	defer pool.Close()

	// Redis необязателен: без него имена пользователей читаются из базы
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("⚠️ Redis недоступен, кэш пользователей отключён")
			redisClient = nil
		} else {
			defer redisClient.Close()
			logger.Info().Msg("✅ Подключение к Redis")
		}
	}

	// Создаём сервисы
	users := db.NewUserStore(pool)
	listings := db.NewListingStore(pool)
	messages := db.NewMessageStore(pool)

	gate := auth.NewGate(utils.NewJWTService(cfg.JWTSecret), users)
	directory := cache.NewDirectory(users, redisClient, cfg.UserCacheTTL)
	manager := websocket.NewManager()

	app := newRESTApp(pool)
	authservice.NewAuthService(gate).SetupRoutes(app)
	chat.NewChatService(listings, messages, directory, manager, gate).SetupRoutes(app)

	chatHandler := websocket.NewChatHandler(manager, gate, messages, cfg.WebSocket)
	realtime := &http.Server{
		Addr:              ":" + cfg.WSPort,
		Handler:           newRealtimeRouter(chatHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Msg("✅ Adena API запущен")
		return app.Listen(":"+cfg.Port, fiber.ListenConfig{DisableStartupMessage: true})
	})

	g.Go(func() error {
		logger.Info().Str("port", cfg.WSPort).Msg("✅ Чат запущен")
		if err := realtime.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("Остановка серверов...")

		// Закрываем живые сессии: http.Server.Shutdown не ждёт перехваченные соединения
		manager.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return errors.Join(
			realtime.Shutdown(shutdownCtx),
			app.ShutdownWithContext(shutdownCtx),
		)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("❌ Сервер остановлен с ошибкой")
		return
	}
	logger.Info().Msg("Сервер остановлен")
}
