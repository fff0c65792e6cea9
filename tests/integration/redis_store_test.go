package integration

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/rentledger/backend/internal/infrastructure/cache"
	"github.com/rentledger/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRedisIdempotencyStore(t *testing.T) {
	addr := NewRedisAddr(t)
	ctx := context.Background()

	store, err := cache.NewRedisIdempotencyStore(ctx, cache.RedisOptions{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Ping(ctx))

	claimed, err := store.MarkProcessed(ctx, "pay-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = store.MarkProcessed(ctx, "pay-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, claimed, "second claim loses")

	held, err := store.IsProcessed(ctx, "pay-1")
	require.NoError(t, err)
	assert.True(t, held)

	require.NoError(t, store.Release(ctx, "pay-1"))
	held, err = store.IsProcessed(ctx, "pay-1")
	require.NoError(t, err)
	assert.False(t, held)

	claimed, err = store.MarkProcessed(ctx, "short", 50*time.Millisecond)
	require.NoError(t, err)
	require.True(t, claimed)
	assert.Eventually(t, func() bool {
		held, err := store.IsProcessed(ctx, "short")
		return err == nil && !held
	}, 2*time.Second, 20*time.Millisecond, "keys expire with their ttl")
}

func TestNewIdempotencyStore_RedisBackend(t *testing.T) {
	addr := NewRedisAddr(t)

	cfg := &config.Config{}
	cfg.Idempotency.Backend = cache.BackendRedis
	host, port := splitAddr(t, addr)
	cfg.Redis.Host, cfg.Redis.Port = host, port

	store, err := cache.NewIdempotencyStore(context.Background(), cfg, zaptest.NewLogger(t), true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	_, ok := store.(*cache.RedisIdempotencyStore)
	assert.True(t, ok)

	cfg.Redis.Port = 1
	_, err = cache.NewIdempotencyStore(context.Background(), cfg, nil, true)
	assert.Error(t, err, "strict mode does not fall back")

	fallback, err := cache.NewIdempotencyStore(context.Background(), cfg, nil, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fallback.Close() })
	_, ok = fallback.(*cache.InMemoryIdempotencyStore)
	assert.True(t, ok)
}

func splitAddr(t *testing.T, addr string) (string, int) {
	t.Helper()
	host, rawPort, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(rawPort)
	require.NoError(t, err)
	return host, port
}
