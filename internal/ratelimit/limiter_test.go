package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventgate/internal/ratelimit"
	"eventgate/internal/ratelimit/store/bucket"
)

func TestSlidingWindow_Defaults(t *testing.T) {
	l := ratelimit.NewSlidingWindow(bucket.NewInMemoryBucketStore(), 0, 0)
	assert.Equal(t, 100, l.Limit())
	assert.Equal(t, 15*time.Minute, l.Window())
}

// TestSlidingWindow_Isolation verifies two limiters never share counters.
func TestSlidingWindow_Isolation(t *testing.T) {
	ctx := context.Background()
	a := ratelimit.NewSlidingWindow(bucket.NewInMemoryBucketStore(), 1, time.Minute)
	b := ratelimit.NewSlidingWindow(bucket.NewInMemoryBucketStore(), 1, time.Minute)

	res, err := a.CheckIPRateLimit(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	res, err = a.CheckIPRateLimit(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	res, err = b.CheckIPRateLimit(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	require.NoError(t, a.ResetIP(ctx, "10.0.0.1"))
	res, err = a.CheckIPRateLimit(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}
