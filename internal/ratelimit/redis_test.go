package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLimiter(client), mr
}

func TestRedisLimiterAllowsUnderLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		result, err := limiter.Allow(ctx, "login:10.0.0.1", 5, time.Minute)
		require.NoError(t, err)
		require.True(t, result.Allowed, "request %d should be allowed", i+1)
		require.Equal(t, 5, result.Limit)
		require.Equal(t, 5-(i+1), result.Remaining)
	}
}

func TestRedisLimiterBlocksOverLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := limiter.Allow(ctx, "login:10.0.0.1", 3, time.Minute)
		require.NoError(t, err)
	}

	result, err := limiter.Allow(ctx, "login:10.0.0.1", 3, time.Minute)
	require.NoError(t, err)
	require.False(t, result.Allowed)
	require.Equal(t, 0, result.Remaining)
	require.False(t, result.ResetAt.IsZero())
}

func TestRedisLimiterKeysAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()

	_, err := limiter.Allow(ctx, "login:10.0.0.1", 1, time.Minute)
	require.NoError(t, err)
	blocked, err := limiter.Allow(ctx, "login:10.0.0.1", 1, time.Minute)
	require.NoError(t, err)
	require.False(t, blocked.Allowed)

	other, err := limiter.Allow(ctx, "login:10.0.0.2", 1, time.Minute)
	require.NoError(t, err)
	require.True(t, other.Allowed)
}

func TestRedisLimiterWindowKeyExpires(t *testing.T) {
	limiter, mr := newTestLimiter(t)
	ctx := context.Background()

	_, err := limiter.Allow(ctx, "public:10.0.0.1", 10, time.Minute)
	require.NoError(t, err)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	require.Greater(t, mr.TTL(keys[0]), time.Duration(0))
}

func TestRedisLimiterErrorsWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	limiter := NewRedisLimiter(client)
	mr.Close()

	_, err := limiter.Allow(context.Background(), "login:10.0.0.1", 5, time.Minute)
	require.Error(t, err)
}
