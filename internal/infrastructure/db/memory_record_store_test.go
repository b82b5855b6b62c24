package db

import (
	"context"
	"testing"

	"github.com/damon-houk/ppd-ingest-service/internal/domain/entity"
	"github.com/damon-houk/ppd-ingest-service/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) repository.SessionFactory {
		return NewMemoryStore()
	})
}

func TestMemoryStoreKeepsInsertionOrder(t *testing.T) {
	store := NewMemoryStore()
	first, second, third := sampleRecord(3, "A"), sampleRecord(1, "A"), sampleRecord(2, "A")
	saveAll(t, store, first, second, third)

	got := queryAll(t, store, entity.Filter{})
	require.Len(t, got, 3)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, second.ID, got[1].ID)
	assert.Equal(t, third.ID, got[2].ID)
	assert.Equal(t, 3, store.Len())
}

func TestMemorySessionRejectsUseAfterClose(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	session, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, session.Close())

	err = session.Save(ctx, sampleRecord(1, "A"))
	var pe *entity.PersistenceError
	assert.ErrorAs(t, err, &pe)
	assert.Equal(t, 0, store.Len())
}
