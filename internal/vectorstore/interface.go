package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_backend.go -package=mocks github.com/Git20254/ai-core-public/internal/vectorstore Backend

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Backend when no record exists for an id.
var ErrNotFound = errors.New("vector not found")

// Record is a track embedding with its metadata.
type Record struct {
	ID       string
	Vector   []float64
	Metadata map[string]any
}

// LoadedRecord is a record read during a bulk load.
// Err is set when the record could not be decoded; such records are skipped.
type LoadedRecord struct {
	Record
	Err error
}

// Source bulk-loads records into a Store.
type Source interface {
	// LoadAll returns every record the source holds.
	// A non-nil error means the source as a whole could not be read.
	LoadAll(ctx context.Context) ([]LoadedRecord, error)
}

// Backend is a persistent cache behind the in-memory store.
type Backend interface {
	Source

	// Name returns the backend name for logs and metrics.
	Name() string

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Save inserts or overwrites a record.
	Save(ctx context.Context, rec Record) error

	// Fetch returns the record for id, or ErrNotFound.
	Fetch(ctx context.Context, id string) (Record, error)

	// Close releases the backend's connections.
	Close() error
}
