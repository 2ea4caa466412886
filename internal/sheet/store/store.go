package store

import (
	"context"
	"errors"

	"github.com/arkhamdesk/sheetvault/internal/sheet/domain"
)

var (
	ErrNotFound = errors.New("store: not found")

	// ErrUnavailable wraps backend failures (disk full, connection refused,
	// quota exceeded). Callers surface it to the user; in-memory edits are
	// never discarded because of it.
	ErrUnavailable = errors.New("store: backend unavailable")
)

// Store is the root data access interface. Concrete drivers (sqlite, redis,
// memory) implement this. Callers depend only on this capability set, never
// on a concrete backend, so the local sqlite file can be swapped for a
// networked backend without touching the service layer.
type Store interface {
	Characters() Characters

	// ApplyMigrations prepares the backend schema. Drivers without a schema
	// implement it as a no-op.
	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the backend is still reachable.
	Ping(ctx context.Context) error
}

type Characters interface {
	// Put persists a full record under its id, overwriting any previous
	// revision. The record must already carry an id; identity assignment
	// belongs to the service layer.
	Put(ctx context.Context, rec domain.CharacterRecord) error

	// Get returns the record or ErrNotFound.
	Get(ctx context.Context, id string) (domain.CharacterRecord, error)

	// List returns a summary for every persisted record. Order is not
	// significant.
	List(ctx context.Context) ([]domain.Summary, error)

	// Delete removes the record and reports whether one existed. A missing
	// id is not an error.
	Delete(ctx context.Context, id string) (bool, error)

	// SetActive marks id as the record the session is currently editing.
	SetActive(ctx context.Context, id string) error

	// GetActive returns the active record id, or ErrNotFound when none has
	// been marked yet.
	GetActive(ctx context.Context) (string, error)
}
