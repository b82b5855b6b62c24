package repository

import (
	"context"

	"github.com/damon-houk/ppd-ingest-service/internal/domain/entity"
)

// WithSession runs fn inside a freshly opened session.
//
// When fn returns nil the session is committed; a failed commit is rolled back
// and returned as a PersistenceError. When fn returns an error or panics the
// session is rolled back without committing and the original error (or panic)
// is propagated. The session is closed on every path.
func WithSession(ctx context.Context, factory SessionFactory, fn func(store RecordStore) error) error {
	session, err := factory.Begin(ctx)
	if err != nil {
		return entity.NewPersistenceError("begin session", err)
	}
	defer session.Close()

	finished := false
	defer func() {
		// fn panicked
		if !finished {
			_ = session.Rollback(ctx)
		}
	}()

	if err := fn(session); err != nil {
		finished = true
		_ = session.Rollback(ctx)
		return err
	}

	finished = true
	if err := session.Commit(ctx); err != nil {
		_ = session.Rollback(ctx)
		return entity.NewPersistenceError("commit session", err)
	}
	return nil
}
