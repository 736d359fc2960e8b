package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss indicates the key is absent (or expired) at a tier.
var ErrCacheMiss = errors.New("cache miss")

// IsCacheMiss reports whether err is a cache miss.
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}

// Tier is one caching layer with a uniform get/set contract. Implementations
// must return ErrCacheMiss for absent keys and reserve other errors for tier
// unavailability, which the tiered cache treats as a miss (fail-open).
type Tier interface {
	Name() string
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
