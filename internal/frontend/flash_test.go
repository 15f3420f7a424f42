package frontend

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jo-hoe/godiary/internal/core"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisFlashStore(t *testing.T, ttl time.Duration) (*RedisFlashStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store := NewRedisFlashStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "", ttl)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func flashStores(t *testing.T) map[string]FlashStore {
	t.Helper()
	redisStore, _ := newTestRedisFlashStore(t, time.Minute)
	return map[string]FlashStore{
		"memory": NewMemoryFlashStore(time.Minute),
		"redis":  redisStore,
	}
}

func TestFlashStore_AddPop(t *testing.T) {
	for name, store := range flashStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Add(ctx, "s1", FlashMessage{Category: FlashSuccess, Text: "first"}))
			require.NoError(t, store.Add(ctx, "s1", FlashMessage{Category: FlashError, Text: "second"}))
			require.NoError(t, store.Add(ctx, "s2", FlashMessage{Category: FlashSuccess, Text: "other"}))

			messages, err := store.Pop(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, []FlashMessage{
				{Category: FlashSuccess, Text: "first"},
				{Category: FlashError, Text: "second"},
			}, messages)

			// consumed on read
			messages, err = store.Pop(ctx, "s1")
			require.NoError(t, err)
			assert.Empty(t, messages)

			messages, err = store.Pop(ctx, "s2")
			require.NoError(t, err)
			assert.Equal(t, []FlashMessage{{Category: FlashSuccess, Text: "other"}}, messages)
		})
	}
}

func TestFlashStore_PopUnknownSession(t *testing.T) {
	for name, store := range flashStores(t) {
		t.Run(name, func(t *testing.T) {
			messages, err := store.Pop(context.Background(), "missing")
			require.NoError(t, err)
			assert.Empty(t, messages)
		})
	}
}

func TestMemoryFlashStore_Expires(t *testing.T) {
	store := NewMemoryFlashStore(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Add(context.Background(), "s1", FlashMessage{Category: FlashSuccess, Text: "stale"}))
	now = now.Add(2 * time.Minute)

	messages, err := store.Pop(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestRedisFlashStore_Expires(t *testing.T) {
	store, mr := newTestRedisFlashStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, "s1", FlashMessage{Category: FlashSuccess, Text: "stale"}))
	assert.Equal(t, time.Minute, mr.TTL("diary:flash:s1"))

	mr.FastForward(2 * time.Minute)
	messages, err := store.Pop(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestNewFlashStore(t *testing.T) {
	store, err := NewFlashStore(core.Flash{Type: core.FlashTypeMemory, TTL: time.Minute})
	require.NoError(t, err)
	assert.IsType(t, &MemoryFlashStore{}, store)

	mr := miniredis.RunT(t)
	store, err = NewFlashStore(core.Flash{Type: core.FlashTypeRedis, ConnectionString: "redis://" + mr.Addr(), TTL: time.Minute})
	require.NoError(t, err)
	assert.IsType(t, &RedisFlashStore{}, store)
	_ = store.Close()

	_, err = NewFlashStore(core.Flash{Type: core.FlashTypeRedis, ConnectionString: "not-a-valid-url"})
	assert.Error(t, err)

	_, err = NewFlashStore(core.Flash{Type: "cookie"})
	assert.Error(t, err)
}
