package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTier is the shared tier: a Redis-backed cache usable across
// orchestrator instances. Millisecond-scale; unavailability surfaces as a
// non-miss error that the tiered cache fails open on.
type RedisTier struct {
	client *redis.Client
	prefix string
}

// NewRedisTier wraps an existing client. Keys are namespaced with prefix.
func NewRedisTier(client *redis.Client, prefix string) *RedisTier {
	if prefix == "" {
		prefix = "leadflow:cache:"
	}
	return &RedisTier{client: client, prefix: prefix}
}

// Name implements Tier.
func (c *RedisTier) Name() string { return "redis" }

// Get implements Tier.
func (c *RedisTier) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return data, nil
}

// Set implements Tier.
func (c *RedisTier) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
