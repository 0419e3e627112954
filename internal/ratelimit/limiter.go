// Package ratelimit guards the API with a per-client sliding window. The
// limiter is an explicitly constructed value; there is no package-level state.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"eventgate/internal/ratelimit/models"
)

const (
	DefaultLimit  = 100
	DefaultWindow = 15 * time.Minute
)

// BucketStore counts requests per key. Implementations live in store/bucket.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
	Reset(ctx context.Context, key string) error
}

type SlidingWindow struct {
	store  BucketStore
	limit  int
	window time.Duration
}

// NewSlidingWindow builds a limiter admitting limit requests per window per
// client. Non-positive values fall back to the defaults.
func NewSlidingWindow(store BucketStore, limit int, window time.Duration) *SlidingWindow {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &SlidingWindow{store: store, limit: limit, window: window}
}

func (l *SlidingWindow) Limit() int {
	return l.limit
}

func (l *SlidingWindow) Window() time.Duration {
	return l.window
}

// CheckIPRateLimit records one request from ip.
func (l *SlidingWindow) CheckIPRateLimit(ctx context.Context, ip string) (*models.RateLimitResult, error) {
	if ip == "" {
		ip = "unknown"
	}
	result, err := l.store.Allow(ctx, "ip:"+ip, l.limit, l.window)
	if err != nil {
		return nil, fmt.Errorf("check ip rate limit: %w", err)
	}
	return result, nil
}

// ResetIP clears the counter for ip.
func (l *SlidingWindow) ResetIP(ctx context.Context, ip string) error {
	return l.store.Reset(ctx, "ip:"+ip)
}
