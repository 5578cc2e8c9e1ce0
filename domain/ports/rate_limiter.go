package ports

import (
	"context"
	"time"
)

type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// RateLimiter counts requests per key inside a sliding window.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (*RateLimitResult, error)
}
