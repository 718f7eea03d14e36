package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is the in-process fallback used when Redis is not
// configured. Counters are per-replica, so limits apply per instance.
type MemoryLimiter struct {
	mu          sync.Mutex
	counters    map[string]*windowCounter
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

type windowCounter struct {
	start time.Time
	count int
}

func NewMemoryLimiter() *MemoryLimiter {
	limiter := &MemoryLimiter{
		counters:    make(map[string]*windowCounter),
		stopCleanup: make(chan struct{}),
	}

	// Remove stale windows so the map cannot grow without bound under a
	// key-spraying attack.
	go limiter.cleanupLoop()

	return limiter
}

var _ Limiter = (*MemoryLimiter)(nil)

func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (*Result, error) {
	now := time.Now().UTC()
	start := windowStart(now, window)

	l.mu.Lock()
	defer l.mu.Unlock()

	counter, ok := l.counters[key]
	if !ok || counter.start != start {
		counter = &windowCounter{start: start}
		l.counters[key] = counter
	}
	counter.count++

	result := &Result{
		Allowed:   counter.count <= limit,
		Limit:     limit,
		Remaining: limit - counter.count,
		ResetAt:   start.Add(window),
	}
	if result.Remaining < 0 {
		result.Remaining = 0
	}
	return result, nil
}

func (l *MemoryLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup(time.Now().UTC())
		case <-l.stopCleanup:
			return
		}
	}
}

func (l *MemoryLimiter) cleanup(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Windows older than an hour are long past any plausible limit window.
	cutoff := now.Add(-time.Hour)
	for key, counter := range l.counters {
		if counter.start.Before(cutoff) {
			delete(l.counters, key)
		}
	}
}

// Stop shuts down the cleanup goroutine.
func (l *MemoryLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCleanup) })
}
