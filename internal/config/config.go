package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingJWTSecret возвращается, если не задан секрет для проверки токенов
var ErrMissingJWTSecret = errors.New("не задана переменная окружения JWT_SECRET")

// Config структура конфигурации
type Config struct {
	AppEnv         string
	Port           string // порт REST API (Fiber)
	WSPort         string // порт realtime-сервера (чат)
	JWTSecret      string
	DatabaseURL    string
	DatabaseConfig DatabaseConfig
	RedisURL       string
	UserCacheTTL   time.Duration
	LogLevel       string
	LogPretty      bool
	WebSocket      WebSocketConfig
}

// DatabaseConfig содержит конфигурацию базы данных
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// WebSocketConfig содержит таймауты и лимиты WebSocket соединений чата
type WebSocketConfig struct {
	PongWait       time.Duration
	PingPeriod     time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64
	SendBufferSize int
}

// LoadConfig загружает переменные из .env и окружения
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env файл не найден, используем переменные окружения")
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("PGHOST", "localhost"),
		Port:     getEnv("PGPORT", "5432"),
		User:     getEnv("PGUSER", "adena_user"),
		Password: getEnv("PGPASSWORD", "adena_pass"),
		Name:     getEnv("PGDATABASE", "adena"),
		SSLMode:  getEnv("PGSSLMODE", "disable"),
	}

	maxConns, err := getEnvInt("PG_MAX_CONNS", 10)
	if err != nil {
		return nil, err
	}
	minConns, err := getEnvInt("PG_MIN_CONNS", 2)
	if err != nil {
		return nil, err
	}
	dbConfig.MaxConns = int32(maxConns)
	dbConfig.MinConns = int32(minConns)

	// DATABASE_URL имеет приоритет над отдельными PG* переменными
	dbURL := getEnv("DATABASE_URL", "")
	if dbURL == "" {
		dbURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name, dbConfig.SSLMode)
	}

	ws, err := loadWebSocketConfig()
	if err != nil {
		return nil, err
	}

	cacheTTL, err := getEnvDuration("USER_CACHE_TTL", 10*time.Minute)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "production"),
		Port:           getEnv("PORT", "8080"),
		WSPort:         getEnv("WS_PORT", "8081"),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		DatabaseURL:    dbURL,
		DatabaseConfig: dbConfig,
		RedisURL:       getEnv("REDIS_URL", ""),
		UserCacheTTL:   cacheTTL,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogPretty:      getEnv("LOG_PRETTY", "false") == "true",
		WebSocket:      ws,
	}

	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}

	return cfg, nil
}

// IsDevelopment возвращает true для локального окружения
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func loadWebSocketConfig() (WebSocketConfig, error) {
	var ws WebSocketConfig
	var err error

	if ws.PongWait, err = getEnvDuration("WS_PONG_WAIT", 60*time.Second); err != nil {
		return ws, err
	}
	// По умолчанию пингуем чуть чаще, чем истекает ожидание pong
	if ws.PingPeriod, err = getEnvDuration("WS_PING_PERIOD", ws.PongWait*9/10); err != nil {
		return ws, err
	}
	if ws.WriteWait, err = getEnvDuration("WS_WRITE_WAIT", 10*time.Second); err != nil {
		return ws, err
	}

	maxSize, err := getEnvInt("WS_MAX_MESSAGE_SIZE", 64*1024)
	if err != nil {
		return ws, err
	}
	ws.MaxMessageSize = int64(maxSize)

	if ws.SendBufferSize, err = getEnvInt("WS_SEND_BUFFER", 256); err != nil {
		return ws, err
	}

	if ws.PingPeriod >= ws.PongWait {
		return ws, fmt.Errorf("WS_PING_PERIOD (%s) должен быть меньше WS_PONG_WAIT (%s)", ws.PingPeriod, ws.PongWait)
	}

	return ws, nil
}

// getEnv получает переменную окружения или использует дефолтное значение
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("неверное значение %s=%q: %w", key, raw, err)
	}
	return value, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("неверное значение %s=%q: %w", key, raw, err)
	}
	return value, nil
}
