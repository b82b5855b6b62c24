package db

import (
	"context"
	"fmt"
	"sync"

	"github.com/damon-houk/ppd-ingest-service/internal/domain/entity"
	"github.com/damon-houk/ppd-ingest-service/internal/domain/repository"
	"github.com/google/uuid"
)

// MemoryStore is an in-process record store. Sessions stage their writes and
// apply them atomically on commit. Records keep insertion order.
type MemoryStore struct {
	mu      sync.RWMutex
	records []entity.Record
	ids     map[uuid.UUID]struct{}
}

// NewMemoryStore creates an empty in-memory record store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ids: make(map[uuid.UUID]struct{})}
}

// Begin opens a session over the store
func (s *MemoryStore) Begin(ctx context.Context) (repository.Session, error) {
	return &memorySession{store: s, staged: make(map[uuid.UUID]struct{})}, nil
}

// Ping always succeeds
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Len returns the number of committed records
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

func (s *MemoryStore) exists(id uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.ids[id]
	return ok
}

type memorySession struct {
	store   *MemoryStore
	pending []entity.Record
	staged  map[uuid.UUID]struct{}
	cleared bool
	closed  bool
}

func (s *memorySession) Save(ctx context.Context, r *entity.Record) error {
	if s.closed {
		return entity.NewPersistenceError("save record", fmt.Errorf("session is closed"))
	}
	if _, ok := s.staged[r.ID]; ok || (!s.cleared && s.store.exists(r.ID)) {
		return entity.NewPersistenceError("save record", fmt.Errorf("%w: %s", entity.ErrDuplicateRecord, r.ID))
	}

	s.pending = append(s.pending, *r)
	s.staged[r.ID] = struct{}{}
	return nil
}

func (s *memorySession) Query(ctx context.Context, filter entity.Filter) ([]*entity.Record, error) {
	if s.closed {
		return nil, entity.NewPersistenceError("query records", fmt.Errorf("session is closed"))
	}

	var visible []entity.Record
	if !s.cleared {
		s.store.mu.RLock()
		visible = append(visible, s.store.records...)
		s.store.mu.RUnlock()
	}
	visible = append(visible, s.pending...)

	records := make([]*entity.Record, 0)
	for i := range visible {
		if filter.Limit != nil && len(records) >= *filter.Limit {
			break
		}
		if filter.Matches(&visible[i]) {
			r := visible[i]
			records = append(records, &r)
		}
	}
	return records, nil
}

func (s *memorySession) Clear(ctx context.Context) error {
	if s.closed {
		return entity.NewPersistenceError("truncate records", fmt.Errorf("session is closed"))
	}
	s.cleared = true
	s.pending = nil
	s.staged = make(map[uuid.UUID]struct{})
	return nil
}

func (s *memorySession) Commit(ctx context.Context) error {
	if s.closed {
		return entity.NewPersistenceError("commit transaction", fmt.Errorf("session is closed"))
	}

	st := s.store
	st.mu.Lock()
	defer st.mu.Unlock()

	if !s.cleared {
		for _, r := range s.pending {
			if _, ok := st.ids[r.ID]; ok {
				return entity.NewPersistenceError("commit transaction", fmt.Errorf("%w: %s", entity.ErrDuplicateRecord, r.ID))
			}
		}
	} else {
		st.records = nil
		st.ids = make(map[uuid.UUID]struct{})
	}

	for _, r := range s.pending {
		st.records = append(st.records, r)
		st.ids[r.ID] = struct{}{}
	}
	s.closed = true
	return nil
}

func (s *memorySession) Rollback(ctx context.Context) error {
	s.pending = nil
	s.closed = true
	return nil
}

func (s *memorySession) Close() error {
	s.closed = true
	return nil
}
