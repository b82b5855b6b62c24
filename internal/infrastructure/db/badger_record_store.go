package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/damon-houk/ppd-ingest-service/internal/domain/entity"
	"github.com/damon-houk/ppd-ingest-service/internal/domain/repository"
	"github.com/dgraph-io/badger/v3"
)

var recordPrefix = []byte("ppd:")

func recordKey(r *entity.Record) []byte {
	return append(append([]byte{}, recordPrefix...), r.ID.String()...)
}

// BadgerStore implements the record store on an embedded BadgerDB
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore creates a new BadgerDB record store
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Begin opens a read-write Badger transaction
func (s *BadgerStore) Begin(ctx context.Context) (repository.Session, error) {
	if s.db.IsClosed() {
		return nil, entity.NewPersistenceError("begin transaction", errors.New("badger database is closed"))
	}
	return &badgerSession{
		db:      s.db,
		txn:     s.db.NewTransaction(true),
		written: make(map[string]struct{}),
	}, nil
}

// Ping reports whether the database is still open
func (s *BadgerStore) Ping(ctx context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger database is closed")
	}
	return nil
}

// badgerSession buffers writes in one Badger transaction. DropPrefix cannot run
// inside a transaction, so a Clear discards the pending writes and is applied
// right before the commit.
type badgerSession struct {
	db      *badger.DB
	txn     *badger.Txn
	cleared bool
	written map[string]struct{}
}

func (s *badgerSession) Save(ctx context.Context, r *entity.Record) error {
	key := recordKey(r)

	if _, ok := s.written[string(key)]; ok {
		return entity.NewPersistenceError("save record", fmt.Errorf("%w: %s", entity.ErrDuplicateRecord, r.ID))
	}
	if !s.cleared {
		_, err := s.txn.Get(key)
		if err == nil {
			return entity.NewPersistenceError("save record", fmt.Errorf("%w: %s", entity.ErrDuplicateRecord, r.ID))
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return entity.NewPersistenceError("save record", err)
		}
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	if err := s.txn.Set(key, data); err != nil {
		return entity.NewPersistenceError("save record", err)
	}
	s.written[string(key)] = struct{}{}
	return nil
}

func (s *badgerSession) Query(ctx context.Context, filter entity.Filter) ([]*entity.Record, error) {
	records := make([]*entity.Record, 0)
	if filter.Limit != nil && *filter.Limit == 0 {
		return records, nil
	}

	it := s.txn.NewIterator(badger.IteratorOptions{PrefetchValues: true, PrefetchSize: 100, Prefix: recordPrefix})
	defer it.Close()

	for it.Rewind(); it.ValidForPrefix(recordPrefix); it.Next() {
		item := it.Item()
		if s.cleared {
			if _, ok := s.written[string(item.Key())]; !ok {
				continue
			}
		}

		var r entity.Record
		err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &r)
		})
		if err != nil {
			return nil, entity.NewPersistenceError("query records", err)
		}

		if !filter.Matches(&r) {
			continue
		}
		records = append(records, &r)
		if filter.Limit != nil && len(records) >= *filter.Limit {
			break
		}
	}

	return records, nil
}

func (s *badgerSession) Clear(ctx context.Context) error {
	s.txn.Discard()
	s.txn = s.db.NewTransaction(true)
	s.written = make(map[string]struct{})
	s.cleared = true
	return nil
}

// Commit applies a pending Clear with DropPrefix before committing the
// transaction. A cleared session is not atomic: if the transaction commit
// fails, the drop has already happened and only the later writes are lost.
func (s *badgerSession) Commit(ctx context.Context) error {
	if s.cleared {
		if err := s.db.DropPrefix(recordPrefix); err != nil {
			s.txn.Discard()
			return entity.NewPersistenceError("truncate records", err)
		}
	}
	if err := s.txn.Commit(); err != nil {
		return entity.NewPersistenceError("commit transaction", err)
	}
	return nil
}

func (s *badgerSession) Rollback(ctx context.Context) error {
	s.txn.Discard()
	return nil
}

func (s *badgerSession) Close() error {
	// Discard is a no-op after Commit
	s.txn.Discard()
	return nil
}
