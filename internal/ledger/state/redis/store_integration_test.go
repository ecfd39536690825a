//go:build integration

package redis_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	stateredis "chainid/internal/ledger/state/redis"
	"chainid/internal/ledger/state/statetest"
	"chainid/pkg/testutil/containers"
)

// RedisStoreSuite runs the shared store contract against a real Redis.
//
// Justification: WATCH/MULTI conflict handling is only observable against a
// real server with concurrent clients.
type RedisStoreSuite struct {
	statetest.StoreSuite
	redis *containers.RedisContainer
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
	s.Store = stateredis.New(s.redis.Client)
}
