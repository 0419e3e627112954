package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventgate/internal/ratelimit"
	"eventgate/internal/ratelimit/models"
	"eventgate/internal/ratelimit/store/bucket"
	"eventgate/pkg/requestcontext"
)

type failingLimiter struct{}

func (failingLimiter) CheckIPRateLimit(context.Context, string) (*models.RateLimitResult, error) {
	return nil, errors.New("store down")
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func request(ip string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/events/upcoming", nil)
	return req.WithContext(requestcontext.WithClientMetadata(req.Context(), ip, "test"))
}

func TestRateLimit(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	limiter := ratelimit.NewSlidingWindow(bucket.NewInMemoryBucketStore(), 2, time.Minute)
	h := New(limiter, logger).RateLimit(okHandler())

	t.Run("allows within limit and sets headers", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, request("192.0.2.1"))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
	})

	t.Run("returns 429 once exhausted", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, request("192.0.2.1"))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, request("192.0.2.1"))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))
		assert.Contains(t, rec.Body.String(), `"error":"rate_limit_exceeded"`)
	})

	t.Run("other clients unaffected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, request("192.0.2.2"))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRateLimit_FailsOpen(t *testing.T) {
	h := New(failingLimiter{}, slog.New(slog.DiscardHandler)).RateLimit(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, request("192.0.2.1"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit_Disabled(t *testing.T) {
	h := New(failingLimiter{}, slog.New(slog.DiscardHandler), WithDisabled(true)).RateLimit(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, request("192.0.2.1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}
