// Package ratelimit implements a fixed-window rate limiter: requests are
// counted per key within a time window and rejected once the threshold is
// exceeded. Counters live in Redis so limits hold across replicas; an
// in-process store covers deployments without Redis.
package ratelimit

import (
	"context"
	"time"
)

// Result reports the outcome of one limiter check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter counts one request against key and reports whether it fits
// within limit requests per window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

// windowStart truncates now to the start of the current fixed window. The
// counter key embeds this value, so a fresh window always starts at 1 and
// the counter's TTL equals the window length.
func windowStart(now time.Time, window time.Duration) time.Time {
	return now.Truncate(window)
}
