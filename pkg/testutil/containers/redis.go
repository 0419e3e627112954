//go:build integration

package containers

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"eventgate/internal/platform/config"
	platformredis "eventgate/internal/platform/redis"
)

const redisImage = "redis:7-alpine"

// RedisContainer is a throwaway Redis reached through the same client
// constructor the server uses, so pool and timeout settings are exercised.
type RedisContainer struct {
	Container *tcredis.RedisContainer
	URL       string
	Client    *redis.Client

	conn *platformredis.Client
}

// NewRedisContainer starts Redis and connects with a small pool. The Manager
// shares the result across suites; Ryuk reaps the container.
func NewRedisContainer(t *testing.T) *RedisContainer {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, redisImage)
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}
	url, err := container.ConnectionString(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("redis connection string: %v", err)
	}

	client, err := platformredis.New(ctx, config.RedisConfig{
		URL:          url,
		PoolSize:     4,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("connect redis: %v", err)
	}
	return &RedisContainer{Container: container, URL: url, Client: client.Client, conn: client}
}

// FlushAll drops every key: document records, email index entries, kind sets
// and rate-limit buckets alike.
func (r *RedisContainer) FlushAll(ctx context.Context) error {
	return r.Client.FlushAll(ctx).Err()
}

// Reset empties the database now and again when t finishes. It fails t if
// the shared connection has gone unhealthy.
func (r *RedisContainer) Reset(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	if err := r.conn.Health(ctx); err != nil {
		t.Fatalf("redis unhealthy: %v", err)
	}
	if err := r.FlushAll(ctx); err != nil {
		t.Fatalf("flush redis: %v", err)
	}
	t.Cleanup(func() { _ = r.FlushAll(context.Background()) })
}
