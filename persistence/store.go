package persistence

import (
	"context"
	"errors"

	"github.com/jorgeai/leadflow/types"
)

var (
	ErrNotFound     = errors.New("contact not found")
	ErrStoreClosed  = errors.New("store is closed")
	ErrInvalidInput = errors.New("invalid input")
)

// Driver selects the storage backend.
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Config selects and configures the backend.
type Config struct {
	// Driver is the storage backend.
	Driver Driver `yaml:"driver" json:"driver"`
	// DSN is the connection string; a file path for sqlite, a URL for
	// postgres. Ignored by the memory backend.
	DSN string `yaml:"dsn" json:"dsn"`
}

// DefaultConfig returns the development configuration.
func DefaultConfig() Config {
	return Config{Driver: DriverMemory}
}

// ContactStore persists contact state. Get returns ErrNotFound for unknown
// contacts; callers create the contact and Put it. Put overwrites the whole
// record; the orchestrator's per-contact section makes that safe.
type ContactStore interface {
	Get(ctx context.Context, contactID string) (*types.Contact, error)
	Put(ctx context.Context, contact *types.Contact) error
	Delete(ctx context.Context, contactID string) error
	Count(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}
