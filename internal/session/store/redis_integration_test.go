//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"unibuild/pkg/platform/sentinel"
	"unibuild/pkg/testutil/containers"
)

type RedisContractSuite struct {
	contractSuite
	redis *containers.RedisContainer
}

func TestRedisContractSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisContractSuite))
}

func (s *RedisContractSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.storage = NewRedis(s.redis.Client)
}

func (s *RedisContractSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
	s.contractSuite.SetupTest()
}

func (s *RedisContractSuite) TestNamespaceHashCarriesTTL() {
	ctx := context.Background()
	s.Require().NoError(s.storage.SetMany(ctx, s.ns, map[string]string{"token": "t"}, time.Hour))

	ttl, err := s.redis.Client.TTL(ctx, redisKey(s.ns)).Result()
	s.Require().NoError(err)
	s.Greater(ttl, 59*time.Minute)
}

func (s *RedisContractSuite) TestExpiredNamespaceIsAbsent() {
	ctx := context.Background()
	s.Require().NoError(s.storage.SetMany(ctx, s.ns, map[string]string{"token": "t"}, time.Second))

	s.Eventually(func() bool {
		_, err := s.storage.Get(ctx, s.ns, "token")
		return err == sentinel.ErrNotFound
	}, 5*time.Second, 100*time.Millisecond)
}
