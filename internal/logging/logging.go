package logging

import (
	"context"
	"io"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Имена полей структурированных логов
const (
	FieldUserID    = "user_id"
	FieldRoomID    = "room_id"
	FieldClientID  = "client_id"
	FieldReason    = "reason"
	FieldRequestID = "request_id"
)

// Config настройки логгера
type Config struct {
	Level       string
	Pretty      bool
	ServiceName string
}

var (
	global zerolog.Logger
	once   sync.Once
)

func init() {
	// Логгер по умолчанию до вызова Init (и в тестах)
	global = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// New создаёт настроенный zerolog.Logger
func New(cfg Config) zerolog.Logger {
	var w io.Writer = os.Stdout
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	}

	logger := zerolog.New(w).Level(parseLevel(cfg.Level)).With().Timestamp().Logger()
	if cfg.ServiceName != "" {
		logger = logger.With().Str("service", cfg.ServiceName).Logger()
	}
	return logger
}

// Init инициализирует глобальный логгер и перенаправляет в него стандартный log
func Init(cfg Config) {
	once.Do(func() {
		global = New(cfg)

		stdlog.SetFlags(0)
		stdlog.SetOutput(global.With().Str("source", "stdlog").Logger())
	})
}

// L возвращает глобальный логгер
func L() *zerolog.Logger {
	return &global
}

type ctxKey struct{}

// WithLogger сохраняет логгер в контексте
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// Ctx достаёт логгер из контекста, иначе возвращает глобальный
func Ctx(ctx context.Context) *zerolog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(zerolog.Logger); ok {
		return &l
	}
	return &global
}

// RequestLogger middleware для chi: дочерний логгер с request_id в контексте и запись о завершении запроса
func RequestLogger(logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			child := logger.With().
				Str(FieldRequestID, middleware.GetReqID(r.Context())).
				Str("path", r.URL.Path).
				Logger()
			r = r.WithContext(WithLogger(r.Context(), child))

			defer func() {
				child.Info().
					Str("method", r.Method).
					Int("status", ww.Status()).
					Dur("latency", time.Since(start)).
					Str("remote_addr", r.RemoteAddr).
					Msg("запрос завершён")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}
