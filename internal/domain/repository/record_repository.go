package repository

import (
	"context"

	"github.com/damon-houk/ppd-ingest-service/internal/domain/entity"
)

// RecordStore defines the single-table operations on price paid records
type RecordStore interface {
	// Save inserts one record
	Save(ctx context.Context, record *entity.Record) error

	// Query returns the records matching the filter
	Query(ctx context.Context, filter entity.Filter) ([]*entity.Record, error)

	// Clear removes every record
	Clear(ctx context.Context) error
}

// Session is a RecordStore bound to one open transaction
type Session interface {
	RecordStore

	// Commit makes the session's changes visible
	Commit(ctx context.Context) error

	// Rollback discards the session's changes
	Rollback(ctx context.Context) error

	// Close releases the session. It is safe to call more than once and
	// rolls back a transaction that was neither committed nor rolled back.
	Close() error
}

// SessionFactory opens sessions against a backing store
type SessionFactory interface {
	// Begin opens a new session
	Begin(ctx context.Context) (Session, error)

	// Ping checks that the store is reachable
	Ping(ctx context.Context) error
}
