package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/damon-houk/ppd-ingest-service/internal/domain/entity"
	"github.com/damon-houk/ppd-ingest-service/internal/domain/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func sampleRecord(price int, status string) *entity.Record {
	return &entity.Record{
		ID:             uuid.New(),
		Price:          price,
		DateOfTransfer: time.Date(2021, 6, 30, 0, 0, 0, 0, time.UTC),
		Postcode:       "SW1A 1AA",
		PropertyType:   "D",
		IsResidential:  "N",
		EstateType:     "F",
		Duration:       99,
		PAON:           "10",
		SAON:           "FLAT 2",
		Street:         "DOWNING STREET",
		Locality:       "WESTMINSTER",
		Town:           "LONDON",
		District:       "CITY OF WESTMINSTER",
		CategoryType:   "A",
		RecordStatus:   status,
	}
}

func saveAll(t *testing.T, factory repository.SessionFactory, records ...*entity.Record) {
	t.Helper()
	err := repository.WithSession(context.Background(), factory, func(store repository.RecordStore) error {
		for _, r := range records {
			if err := store.Save(context.Background(), r); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func queryAll(t *testing.T, factory repository.SessionFactory, filter entity.Filter) []*entity.Record {
	t.Helper()
	var out []*entity.Record
	err := repository.WithSession(context.Background(), factory, func(store repository.RecordStore) error {
		var err error
		out, err = store.Query(context.Background(), filter)
		return err
	})
	require.NoError(t, err)
	return out
}

// runStoreContract exercises the record store behaviour every backend shares.
// newFactory must return an empty store.
func runStoreContract(t *testing.T, newFactory func(t *testing.T) repository.SessionFactory) {
	ctx := context.Background()

	t.Run("Save then query round-trips every field", func(t *testing.T) {
		factory := newFactory(t)
		want := sampleRecord(250000, "A")
		saveAll(t, factory, want)

		got := queryAll(t, factory, entity.Filter{})
		require.Len(t, got, 1)
		assert.Equal(t, want.ID, got[0].ID)
		assert.True(t, want.DateOfTransfer.Equal(got[0].DateOfTransfer))
		got[0].DateOfTransfer = want.DateOfTransfer
		assert.Equal(t, want, got[0])
	})

	t.Run("Empty store returns empty slice", func(t *testing.T) {
		factory := newFactory(t)
		got := queryAll(t, factory, entity.Filter{})
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("Duplicate id is a persistence error", func(t *testing.T) {
		factory := newFactory(t)
		r := sampleRecord(1000, "A")
		saveAll(t, factory, r)

		err := repository.WithSession(ctx, factory, func(store repository.RecordStore) error {
			return store.Save(ctx, r)
		})

		var pe *entity.PersistenceError
		assert.ErrorAs(t, err, &pe)
		assert.Len(t, queryAll(t, factory, entity.Filter{}), 1)
	})

	t.Run("Filters are conjunctive and limit caps rows", func(t *testing.T) {
		factory := newFactory(t)
		saveAll(t, factory,
			sampleRecord(100000, "A"),
			sampleRecord(100000, "A"),
			sampleRecord(100000, "D"),
			sampleRecord(200000, "A"),
			sampleRecord(300000, "D"),
		)

		byPrice := queryAll(t, factory, entity.Filter{Price: intPtr(100000)})
		assert.Len(t, byPrice, 3)
		for _, r := range byPrice {
			assert.Equal(t, 100000, r.Price)
		}

		byStatus := queryAll(t, factory, entity.Filter{RecordStatus: strPtr("D")})
		assert.Len(t, byStatus, 2)
		for _, r := range byStatus {
			assert.Equal(t, "D", r.RecordStatus)
		}

		both := queryAll(t, factory, entity.Filter{Price: intPtr(100000), RecordStatus: strPtr("A")})
		assert.Len(t, both, 2)
		for _, r := range both {
			assert.Equal(t, 100000, r.Price)
			assert.Equal(t, "A", r.RecordStatus)
		}

		for _, k := range []int{0, 1, 2, 5, 10} {
			got := queryAll(t, factory, entity.Filter{Limit: intPtr(k)})
			assert.LessOrEqual(t, len(got), k)
		}
		assert.Len(t, queryAll(t, factory, entity.Filter{Limit: intPtr(10)}), 5)

		assert.Empty(t, queryAll(t, factory, entity.Filter{Price: intPtr(3000000000)}))
		assert.Empty(t, queryAll(t, factory, entity.Filter{Price: intPtr(-3000000000)}))

		limited := queryAll(t, factory, entity.Filter{Price: intPtr(100000), Limit: intPtr(2)})
		assert.Len(t, limited, 2)
		for _, r := range limited {
			assert.Equal(t, 100000, r.Price)
		}
	})

	t.Run("Clear removes every record", func(t *testing.T) {
		factory := newFactory(t)
		saveAll(t, factory, sampleRecord(1, "A"), sampleRecord(2, "A"), sampleRecord(3, "D"))

		err := repository.WithSession(ctx, factory, func(store repository.RecordStore) error {
			return store.Clear(ctx)
		})
		require.NoError(t, err)

		assert.Empty(t, queryAll(t, factory, entity.Filter{}))
		assert.Empty(t, queryAll(t, factory, entity.Filter{Price: intPtr(1)}))
		assert.Empty(t, queryAll(t, factory, entity.Filter{RecordStatus: strPtr("D"), Limit: intPtr(5)}))
	})

	t.Run("Failed scope leaves no rows behind", func(t *testing.T) {
		factory := newFactory(t)
		boom := errors.New("boom")

		err := repository.WithSession(ctx, factory, func(store repository.RecordStore) error {
			if err := store.Save(ctx, sampleRecord(5, "A")); err != nil {
				return err
			}
			return boom
		})

		assert.ErrorIs(t, err, boom)
		assert.Empty(t, queryAll(t, factory, entity.Filter{}))
	})

	t.Run("Uncommitted writes are visible only inside their session", func(t *testing.T) {
		factory := newFactory(t)

		session, err := factory.Begin(ctx)
		require.NoError(t, err)
		defer session.Close()

		require.NoError(t, session.Save(ctx, sampleRecord(7, "A")))

		inside, err := session.Query(ctx, entity.Filter{})
		require.NoError(t, err)
		assert.Len(t, inside, 1)

		assert.Empty(t, queryAll(t, factory, entity.Filter{}))

		require.NoError(t, session.Commit(ctx))
		assert.Len(t, queryAll(t, factory, entity.Filter{}), 1)
	})
}
