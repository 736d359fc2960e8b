package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/jorgeai/leadflow/internal/metrics"
)

// TierConfig binds a tier to its TTL. Each tier keeps entries for its own
// staleness window; the acceptable window is a deployment constant, there is
// no cross-tier invalidation on write.
type TierConfig struct {
	Tier Tier
	TTL  time.Duration
}

// TieredCache is the read-through cache over an ordered list of tiers.
// A miss at tier N always checks tier N+1 before falling back to compute;
// a hit at tier N+1 populates tiers 0..N (promotion) but never the reverse.
type TieredCache struct {
	tiers   []TierConfig
	group   singleflight.Group
	logger  *zap.Logger
	metrics *metrics.Collector
}

// New creates a tiered cache. Tiers are consulted in the order given.
func New(logger *zap.Logger, collector *metrics.Collector, tiers ...TierConfig) *TieredCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TieredCache{
		tiers:   tiers,
		logger:  logger.With(zap.String("component", "tiered_cache")),
		metrics: collector,
	}
}

// ComputeFunc produces the value on a full miss.
type ComputeFunc func(ctx context.Context) ([]byte, error)

// GetOrCompute returns the cached value for key, walking the tiers in order
// and promoting on a deeper hit. On a full miss, compute runs exactly once
// per key across concurrent callers (singleflight) and the result is written
// to every tier best-effort. Tier errors are logged and treated as misses;
// only compute itself can fail the call.
func (c *TieredCache) GetOrCompute(ctx context.Context, key string, compute ComputeFunc) ([]byte, error) {
	for i, tc := range c.tiers {
		value, err := tc.Tier.Get(ctx, key)
		if err == nil {
			c.metrics.RecordCacheHit(tc.Tier.Name())
			c.promote(ctx, key, value, i)
			return value, nil
		}
		if !IsCacheMiss(err) {
			// Tier unavailable: fail open to the next tier.
			c.logger.Warn("cache tier error, treating as miss",
				zap.String("tier", tc.Tier.Name()), zap.String("key", key), zap.Error(err))
		}
	}

	c.metrics.RecordCacheMiss()

	v, err, _ := c.group.Do(key, func() (any, error) {
		value, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.fill(ctx, key, value, len(c.tiers))
		return value, nil
	})
	if err != nil {
		return nil, fmt.Errorf("cache compute for %s: %w", key, err)
	}
	return v.([]byte), nil
}

// promote writes a value found at tier hitIdx into every faster tier.
func (c *TieredCache) promote(ctx context.Context, key string, value []byte, hitIdx int) {
	c.fill(ctx, key, value, hitIdx)
}

// fill writes value to tiers [0, limit). Failures are logged, not returned:
// a tier that cannot be written serves stale air, not errors.
func (c *TieredCache) fill(ctx context.Context, key string, value []byte, limit int) {
	for i := 0; i < limit && i < len(c.tiers); i++ {
		tc := c.tiers[i]
		if err := tc.Tier.Set(ctx, key, value, tc.TTL); err != nil {
			c.logger.Warn("cache tier set failed",
				zap.String("tier", tc.Tier.Name()), zap.String("key", key), zap.Error(err))
		}
	}
}

// GetOrComputeJSON is GetOrCompute for JSON-serializable values: dest is
// populated either from the cached bytes or from the freshly computed value.
func (c *TieredCache) GetOrComputeJSON(ctx context.Context, key string, dest any, compute func(ctx context.Context) (any, error)) error {
	data, err := c.GetOrCompute(ctx, key, func(ctx context.Context) ([]byte, error) {
		v, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal cached value for %s: %w", key, err)
	}
	return nil
}
