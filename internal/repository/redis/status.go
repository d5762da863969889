package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/DaniAlencarrr/Athletix/internal/domain"
	apperrors "github.com/DaniAlencarrr/Athletix/pkg/errors"
)

const keyPrefix = "onboarding_status:"

// StatusCache implements repository.StatusCache using Redis.
type StatusCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatusCache creates a Redis-backed status cache.
func NewStatusCache(client *redis.Client, ttl time.Duration) *StatusCache {
	return &StatusCache{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves the cached status of an account.
func (c *StatusCache) Get(ctx context.Context, accountID string) (*domain.OnboardingStatus, error) {
	data, err := c.client.Get(ctx, keyPrefix+accountID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("onboarding status", accountID)
		}
		return nil, fmt.Errorf("redis get status: %w", err)
	}

	var st domain.OnboardingStatus
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("unmarshal status: %w", err)
	}
	return &st, nil
}

// Set stores a status with the configured TTL.
func (c *StatusCache) Set(ctx context.Context, st *domain.OnboardingStatus) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}

	if err := c.client.Set(ctx, keyPrefix+st.AccountID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set status: %w", err)
	}
	return nil
}

// Invalidate removes the cached status of an account.
func (c *StatusCache) Invalidate(ctx context.Context, accountID string) error {
	if err := c.client.Del(ctx, keyPrefix+accountID).Err(); err != nil {
		return fmt.Errorf("redis del status: %w", err)
	}
	return nil
}
