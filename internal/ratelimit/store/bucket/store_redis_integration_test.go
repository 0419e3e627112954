//go:build integration

package bucket_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"eventgate/internal/ratelimit/store/bucket"
	"eventgate/pkg/testutil/containers"
)

type RedisBucketStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *bucket.RedisBucketStore
	ctx   context.Context
}

func TestRedisBucketStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisBucketStoreSuite))
}

func (s *RedisBucketStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = bucket.NewRedisBucketStore(s.redis.Client)
	s.ctx = context.Background()
}

func (s *RedisBucketStoreSuite) SetupTest() {
	s.redis.Reset(s.T())
}

func (s *RedisBucketStoreSuite) TestAllowUpToLimit() {
	for i := 0; i < 3; i++ {
		result, err := s.store.Allow(s.ctx, "ip:203.0.113.5", 3, time.Minute)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(3-i-1, result.Remaining)
	}

	result, err := s.store.Allow(s.ctx, "ip:203.0.113.5", 3, time.Minute)
	s.Require().NoError(err)
	s.False(result.Allowed)
	s.Positive(result.RetryAfter)

	s.Require().NoError(s.store.Reset(s.ctx, "ip:203.0.113.5"))
	result, err = s.store.Allow(s.ctx, "ip:203.0.113.5", 3, time.Minute)
	s.Require().NoError(err)
	s.True(result.Allowed)
}
