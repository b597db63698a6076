package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"payment-rail-gateway/internal/sca/domain"
)

const redisKeyPrefix = "sca:challenge:"

// RedisRepository stores challenges in Redis with a TTL of expiry plus the
// retention window, so EXPIRED stays reportable for a while after expiry.
type RedisRepository struct {
	client *redis.Client
	nowF   func() time.Time
}

// NewRedisRepository returns a challenge repository backed by the given client.
func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client, nowF: func() time.Time { return time.Now().UTC() }}
}

func redisKey(id string) string {
	return redisKeyPrefix + id
}

func (r *RedisRepository) ttlFor(c *domain.Challenge) time.Duration {
	ttl := c.ExpiresAt.Add(retention).Sub(r.nowF())
	if ttl <= 0 {
		ttl = time.Minute
	}
	return ttl
}

// Create serializes the challenge as JSON and stores it under its id.
func (r *RedisRepository) Create(ctx context.Context, c *domain.Challenge) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal challenge: %w", err)
	}
	return r.client.Set(ctx, redisKey(c.ID), data, r.ttlFor(c)).Err()
}

// GetByID returns the challenge for id, or nil if absent or already evicted.
func (r *RedisRepository) GetByID(ctx context.Context, id string) (*domain.Challenge, error) {
	data, err := r.client.Get(ctx, redisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var c domain.Challenge
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal challenge %s: %w", id, err)
	}
	return &c, nil
}

// Update rewrites the stored challenge, preserving the TTL policy.
func (r *RedisRepository) Update(ctx context.Context, c *domain.Challenge) error {
	return r.Create(ctx, c)
}

// Delete removes the challenge by id.
func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, redisKey(id)).Err()
}
