package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/rajivgeraev/adena-api/internal/db"
	"github.com/rajivgeraev/adena-api/internal/logging"
	"github.com/rajivgeraev/adena-api/internal/metrics"
	"github.com/rajivgeraev/adena-api/internal/models"
)

// UnknownUsername отображаемое имя для удалённого или несуществующего пользователя
const UnknownUsername = "Unknown"

const keyPrefix = "adena:user:name"

// UserGetter источник данных о пользователях
type UserGetter interface {
	GetUserByID(ctx context.Context, userID int64) (*models.User, error)
}

// Directory отдаёт отображаемые имена пользователей: сначала Redis, затем база
type Directory struct {
	users  UserGetter
	client *redis.Client // nil, если кэш отключён
	ttl    time.Duration
	sf     singleflight.Group
}

// NewDirectory создаёт Directory. client может быть nil.
func NewDirectory(users UserGetter, client *redis.Client, ttl time.Duration) *Directory {
	return &Directory{users: users, client: client, ttl: ttl}
}

// NewRedisClient подключается к Redis по URL и проверяет соединение
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("неверный REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ошибка подключения к redis: %w", err)
	}
	return client, nil
}

func buildKey(userID int64) string {
	return keyPrefix + ":" + strconv.FormatInt(userID, 10)
}

// Username возвращает имя пользователя или UnknownUsername, если пользователя нет
func (d *Directory) Username(ctx context.Context, userID int64) (string, error) {
	key := buildKey(userID)

	if d.client != nil {
		name, err := d.client.Get(ctx, key).Result()
		switch {
		case err == nil:
			metrics.UserCacheRequests.WithLabelValues("hit").Inc()
			return name, nil
		case errors.Is(err, redis.Nil):
			metrics.UserCacheRequests.WithLabelValues("miss").Inc()
		default:
			// Redis недоступен, идём в базу
			metrics.UserCacheRequests.WithLabelValues("error").Inc()
			logging.Ctx(ctx).Warn().Err(err).Msg("ошибка чтения кэша пользователей")
		}
	}

	// Параллельные промахи по одному ключу схлопываются в один запрос к базе
	// Загрузка общая для всех ожидающих и не зависит от отмены запроса первого из них
	result, err, _ := d.sf.Do(key, func() (interface{}, error) {
		loadCtx, cancel := db.WithTimeout(context.WithoutCancel(ctx))
		defer cancel()
		return d.load(loadCtx, userID, key)
	})
	if err != nil {
		return "", err
	}

	name, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("неожиданный тип результата singleflight: %T", result)
	}
	return name, nil
}

func (d *Directory) load(ctx context.Context, userID int64, key string) (string, error) {
	user, err := d.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return UnknownUsername, nil
		}
		return "", err
	}

	if d.client != nil {
		if err := d.client.Set(ctx, key, user.Username, d.ttl).Err(); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Int64(logging.FieldUserID, userID).Msg("ошибка записи в кэш пользователей")
		}
	}

	return user.Username, nil
}
