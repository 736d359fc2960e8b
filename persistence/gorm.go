package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jorgeai/leadflow/types"
)

// contactRow is the database shape of a contact. Hot routing fields are
// columns so operators can query them; the full record rides along as JSON
// and stays the source of truth on read.
type contactRow struct {
	ID          string    `gorm:"primaryKey;size:64"`
	OwningAgent string    `gorm:"size:16;index"`
	Temperature string    `gorm:"size:16"`
	Payload     []byte    `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"index"`
}

func (contactRow) TableName() string { return "contacts" }

// GormStore is the durable backend over SQLite or Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open connection and migrates the schema.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&contactRow{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

// OpenGorm opens the configured SQL backend.
func OpenGorm(cfg Config) (*GormStore, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverSQLite:
		dsn := cfg.DSN
		if dsn == "" {
			dsn = "leadflow.db"
		}
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, ErrInvalidInput
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return NewGormStore(db)
}

func (s *GormStore) Get(ctx context.Context, contactID string) (*types.Contact, error) {
	if contactID == "" {
		return nil, ErrInvalidInput
	}
	var row contactRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", contactID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var c types.Contact
	if err := json.Unmarshal(row.Payload, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *GormStore) Put(ctx context.Context, contact *types.Contact) error {
	if contact == nil || contact.ID == "" {
		return ErrInvalidInput
	}
	payload, err := json.Marshal(contact)
	if err != nil {
		return err
	}
	row := contactRow{
		ID:          contact.ID,
		OwningAgent: string(contact.OwningAgent),
		Temperature: string(contact.Temperature),
		Payload:     payload,
		UpdatedAt:   contact.UpdatedAt,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&row).Error
}

func (s *GormStore) Delete(ctx context.Context, contactID string) error {
	return s.db.WithContext(ctx).Delete(&contactRow{}, "id = ?", contactID).Error
}

func (s *GormStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&contactRow{}).Count(&n).Error
	return n, err
}

// CountByAgent returns how many contacts each agent currently owns.
func (s *GormStore) CountByAgent(ctx context.Context) (map[types.AgentKind]int64, error) {
	type bucket struct {
		OwningAgent string
		N           int64
	}
	var rows []bucket
	err := s.db.WithContext(ctx).Model(&contactRow{}).
		Select("owning_agent, count(*) as n").
		Group("owning_agent").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[types.AgentKind]int64, len(rows))
	for _, b := range rows {
		out[types.AgentKind(b.OwningAgent)] = b.N
	}
	return out, nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
