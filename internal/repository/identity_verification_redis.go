package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lms/internal/entity"

	"github.com/redis/go-redis/v9"
)

const identityVerificationKeyPrefix = "identity_verification:"

type redisIdentityVerifications struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisIdentityVerificationRepository keeps each binding under a key whose
// TTL matches the binding expiry, so redis evicts it on its own.
func NewRedisIdentityVerificationRepository(client *redis.Client, now func() time.Time) IdentityVerificationRepository {
	if now == nil {
		now = time.Now
	}
	return &redisIdentityVerifications{client: client, now: now}
}

func (r *redisIdentityVerifications) Save(ctx context.Context, v *entity.IdentityVerification) error {
	ttl := v.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return ErrVerificationExpired
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode identity verification: %w", err)
	}
	return r.client.Set(ctx, identityVerificationKeyPrefix+v.Token, payload, ttl).Err()
}

func (r *redisIdentityVerifications) FindByToken(ctx context.Context, token string) (*entity.IdentityVerification, error) {
	payload, err := r.client.Get(ctx, identityVerificationKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var v entity.IdentityVerification
	if err := json.Unmarshal(payload, &v); err != nil {
		return nil, fmt.Errorf("decode identity verification: %w", err)
	}
	return &v, nil
}
