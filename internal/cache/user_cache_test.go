package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/adena-api/internal/db"
	"github.com/rajivgeraev/adena-api/internal/models"
)

type countingUsers struct {
	calls atomic.Int32
	delay time.Duration
	users map[int64]*models.User
	err   error
}

func (c *countingUsers) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	c.calls.Add(1)
	time.Sleep(c.delay)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.err != nil {
		return nil, c.err
	}
	u, ok := c.users[userID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return u, nil
}

func newRedisDirectory(t *testing.T, users UserGetter, ttl time.Duration) (*Directory, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return NewDirectory(users, client, ttl), mr
}

func TestDirectory_WithoutRedis(t *testing.T) {
	users := &countingUsers{users: map[int64]*models.User{9: {ID: 9, Username: "seller"}}}
	dir := NewDirectory(users, nil, time.Minute)

	name, err := dir.Username(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, "seller", name)

	name, err = dir.Username(context.Background(), 404)
	require.NoError(t, err)
	assert.Equal(t, UnknownUsername, name)
}

func TestDirectory_StoreError(t *testing.T) {
	dir := NewDirectory(&countingUsers{err: errors.New("boom")}, nil, time.Minute)

	_, err := dir.Username(context.Background(), 1)
	assert.Error(t, err)
}

func TestDirectory_RedisHit(t *testing.T) {
	users := &countingUsers{users: map[int64]*models.User{9: {ID: 9, Username: "seller"}}}
	dir, mr := newRedisDirectory(t, users, time.Minute)
	require.NoError(t, mr.Set(buildKey(9), "cached-seller"))

	name, err := dir.Username(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, "cached-seller", name)
	assert.Zero(t, users.calls.Load())
}

func TestDirectory_RedisMissStoresWithTTL(t *testing.T) {
	users := &countingUsers{users: map[int64]*models.User{9: {ID: 9, Username: "seller"}}}
	dir, mr := newRedisDirectory(t, users, 10*time.Minute)

	name, err := dir.Username(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, "seller", name)

	cached, err := mr.Get(buildKey(9))
	require.NoError(t, err)
	assert.Equal(t, "seller", cached)
	assert.Equal(t, 10*time.Minute, mr.TTL(buildKey(9)))

	// повторный запрос обслуживается из кэша
	_, err = dir.Username(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, int32(1), users.calls.Load())

	// после истечения TTL имя загружается заново
	mr.FastForward(11 * time.Minute)
	_, err = dir.Username(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, int32(2), users.calls.Load())
}

func TestDirectory_UnknownUserNotCached(t *testing.T) {
	dir, mr := newRedisDirectory(t, &countingUsers{}, time.Minute)

	name, err := dir.Username(context.Background(), 404)
	require.NoError(t, err)
	assert.Equal(t, UnknownUsername, name)
	assert.False(t, mr.Exists(buildKey(404)))
}

func TestDirectory_RedisErrorFallsBackToStore(t *testing.T) {
	users := &countingUsers{users: map[int64]*models.User{7: {ID: 7, Username: "buyer"}}}
	dir, mr := newRedisDirectory(t, users, time.Minute)
	mr.SetError("LOADING redis is loading")

	name, err := dir.Username(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "buyer", name)
	assert.Equal(t, int32(1), users.calls.Load())
}

func TestDirectory_LoadSurvivesCallerCancellation(t *testing.T) {
	users := &countingUsers{users: map[int64]*models.User{7: {ID: 7, Username: "buyer"}}}
	dir := NewDirectory(users, nil, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	name, err := dir.Username(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "buyer", name)
}

func TestDirectory_CollapsesConcurrentMisses(t *testing.T) {
	users := &countingUsers{
		delay: 50 * time.Millisecond,
		users: map[int64]*models.User{7: {ID: 7, Username: "buyer"}},
	}
	dir := NewDirectory(users, nil, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name, err := dir.Username(context.Background(), 7)
			assert.NoError(t, err)
			assert.Equal(t, "buyer", name)
		}()
	}
	wg.Wait()

	assert.Less(t, users.calls.Load(), int32(10))
}

func TestNewRedisClient_InvalidURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "not-a-url://")
	assert.Error(t, err)
}

func TestBuildKey(t *testing.T) {
	assert.Equal(t, "adena:user:name:42", buildKey(42))
}
