package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// cacheRow is the durable tier's table. Expired rows are filtered on read
// and lazily overwritten on write; there is no background sweeper.
type cacheRow struct {
	Key       string `gorm:"primaryKey;size:128"`
	Value     []byte
	ExpiresAt time.Time `gorm:"index"`
}

// TableName sets the table name for gorm.
func (cacheRow) TableName() string { return "cache_entries" }

// DurableTier is the last-resort tier backed by the relational store. It
// survives restarts and serves warm-start reads before the faster tiers are
// populated.
type DurableTier struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDurableTier creates the tier and migrates its table.
func NewDurableTier(db *gorm.DB) (*DurableTier, error) {
	if err := db.AutoMigrate(&cacheRow{}); err != nil {
		return nil, fmt.Errorf("migrate cache table: %w", err)
	}
	return &DurableTier{db: db, now: time.Now}, nil
}

// Name implements Tier.
func (c *DurableTier) Name() string { return "durable" }

// Get implements Tier.
func (c *DurableTier) Get(ctx context.Context, key string) ([]byte, error) {
	var row cacheRow
	err := c.db.WithContext(ctx).First(&row, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("durable get: %w", err)
	}
	if c.now().After(row.ExpiresAt) {
		return nil, ErrCacheMiss
	}
	return row.Value, nil
}

// Set implements Tier. Upserts by key.
func (c *DurableTier) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	row := cacheRow{Key: key, Value: value, ExpiresAt: c.now().Add(ttl)}
	err := c.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "key"}}, UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("durable set: %w", err)
	}
	return nil
}
