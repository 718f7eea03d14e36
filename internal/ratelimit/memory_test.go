package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterAllowsThenBlocks(t *testing.T) {
	limiter := NewMemoryLimiter()
	defer limiter.Stop()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result, err := limiter.Allow(ctx, "login:10.0.0.1", 3, time.Minute)
		require.NoError(t, err)
		require.True(t, result.Allowed)
	}

	result, err := limiter.Allow(ctx, "login:10.0.0.1", 3, time.Minute)
	require.NoError(t, err)
	require.False(t, result.Allowed)
	require.Equal(t, 0, result.Remaining)
}

func TestMemoryLimiterKeysAreIndependent(t *testing.T) {
	limiter := NewMemoryLimiter()
	defer limiter.Stop()
	ctx := context.Background()

	_, err := limiter.Allow(ctx, "a", 1, time.Minute)
	require.NoError(t, err)

	result, err := limiter.Allow(ctx, "b", 1, time.Minute)
	require.NoError(t, err)
	require.True(t, result.Allowed)
}

func TestMemoryLimiterConcurrentCounts(t *testing.T) {
	limiter := NewMemoryLimiter()
	defer limiter.Stop()
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	allowed := make(chan bool, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := limiter.Allow(ctx, "shared", 10, time.Minute)
			require.NoError(t, err)
			allowed <- result.Allowed
		}()
	}
	wg.Wait()
	close(allowed)

	count := 0
	for ok := range allowed {
		if ok {
			count++
		}
	}
	require.Equal(t, 10, count)
}

func TestMemoryLimiterCleanupDropsStaleWindows(t *testing.T) {
	limiter := NewMemoryLimiter()
	defer limiter.Stop()

	_, err := limiter.Allow(context.Background(), "old", 5, time.Minute)
	require.NoError(t, err)

	limiter.cleanup(time.Now().UTC().Add(2 * time.Hour))

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	require.Empty(t, limiter.counters)
}

func TestWindowStart(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 34, 56, 0, time.UTC)
	start := windowStart(now, time.Minute)
	require.Equal(t, time.Date(2026, 1, 1, 12, 34, 0, 0, time.UTC), start)
	require.Equal(t, start, windowStart(now.Add(3*time.Second), time.Minute))
}
