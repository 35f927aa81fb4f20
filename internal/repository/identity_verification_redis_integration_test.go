//go:build integration

package repository_test

import (
	"context"
	"testing"
	"time"

	"lms/internal/entity"
	"lms/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

type RedisIdentityVerificationSuite struct {
	suite.Suite
	container *tcredis.RedisContainer
	client    *redis.Client
	repo      repository.IdentityVerificationRepository
}

func TestRedisIdentityVerificationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisIdentityVerificationSuite))
}

func (s *RedisIdentityVerificationSuite) SetupSuite() {
	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	s.Require().NoError(err)
	s.container = container

	addr, err := container.ConnectionString(ctx)
	s.Require().NoError(err)
	opts, err := redis.ParseURL(addr)
	s.Require().NoError(err)
	s.client = redis.NewClient(opts)
	s.Require().NoError(s.client.Ping(ctx).Err())

	s.repo = repository.NewRedisIdentityVerificationRepository(s.client, time.Now)
}

func (s *RedisIdentityVerificationSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Close()
	}
	s.NoError(testcontainers.TerminateContainer(s.container))
}

func (s *RedisIdentityVerificationSuite) SetupTest() {
	s.Require().NoError(s.client.FlushAll(context.Background()).Err())
}

func (s *RedisIdentityVerificationSuite) TestSaveAndFind() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	binding := &entity.IdentityVerification{
		Token:           "9b2f4c1e-7e0a-4d5b-9c1a-2f3e4d5c6b7a",
		VerifiedName:    "홍길동",
		Gender:          entity.GenderMale,
		BirthDate:       "19901225",
		Nationality:     entity.NationalityDomestic,
		CarrierVerified: true,
		Provider:        "NICE",
		VerifiedAt:      now,
		ExpiresAt:       now.Add(30 * time.Minute),
	}
	s.Require().NoError(s.repo.Save(ctx, binding))

	found, err := s.repo.FindByToken(ctx, binding.Token)
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal(binding.VerifiedName, found.VerifiedName)
	s.True(binding.ExpiresAt.Equal(found.ExpiresAt))

	ttl, err := s.client.TTL(ctx, "identity_verification:"+binding.Token).Result()
	s.Require().NoError(err)
	s.Greater(ttl, 29*time.Minute)
}

func (s *RedisIdentityVerificationSuite) TestMissingTokenIsNil() {
	found, err := s.repo.FindByToken(context.Background(), "missing")
	s.NoError(err)
	s.Nil(found)
}

func (s *RedisIdentityVerificationSuite) TestExpiredBindingIsNotStored() {
	ctx := context.Background()
	binding := &entity.IdentityVerification{Token: "stale", ExpiresAt: time.Now().Add(-time.Minute)}
	s.Require().ErrorIs(s.repo.Save(ctx, binding), repository.ErrVerificationExpired)

	found, err := s.repo.FindByToken(ctx, "stale")
	s.NoError(err)
	s.Nil(found)
}
