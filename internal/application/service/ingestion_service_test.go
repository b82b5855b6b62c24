package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/damon-houk/ppd-ingest-service/internal/domain/entity"
	domainservice "github.com/damon-houk/ppd-ingest-service/internal/domain/service"
	"github.com/damon-houk/ppd-ingest-service/internal/infrastructure/db"
	"github.com/damon-houk/ppd-ingest-service/internal/infrastructure/logger"
	"github.com/damon-houk/ppd-ingest-service/internal/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func feedLine(price int, duration string) string {
	return fmt.Sprintf(`"{%s}","%d","2019-03-01 00:00","AB1 2CD","T","N","F","%s","12","","HIGH STREET","","ABERDEEN","ABERDEEN","A","A"`,
		uuid.New(), price, duration)
}

func quietLogger() logger.Logger {
	var buf bytes.Buffer
	return logger.NewJSONLogger(&buf, logger.ErrorLevel)
}

func feedOf(stream *mocks.SliceLineStream) *mocks.MockFeedSource {
	source := new(mocks.MockFeedSource)
	source.On("Open", mock.Anything).Return(stream, nil)
	return source
}

func TestPopulate(t *testing.T) {
	ctx := context.Background()

	t.Run("Stops after count records", func(t *testing.T) {
		store := db.NewMemoryStore()
		lines := make([]string, 0, 7)
		for i := 0; i < 7; i++ {
			lines = append(lines, feedLine(100000+i, "99"))
		}
		stream := mocks.NewSliceLineStream(lines...)
		svc := NewIngestionService(store, feedOf(stream), quietLogger())

		report, err := svc.Populate(ctx, 5)

		require.NoError(t, err)
		assert.Equal(t, 5, report.Saved)
		assert.Equal(t, 0, report.Skipped)
		assert.Equal(t, 5, report.LinesRead)
		assert.Equal(t, 5, store.Len())
		assert.Equal(t, 5, stream.Consumed())
		assert.True(t, stream.Closed)
	})

	t.Run("Skips malformed duration without counting it", func(t *testing.T) {
		store := db.NewMemoryStore()
		stream := mocks.NewSliceLineStream(
			feedLine(1, "L"),
			feedLine(2, "1"),
			feedLine(3, "F"),
			feedLine(4, "2"),
			"not a record",
			feedLine(5, "3"),
			feedLine(6, "4"),
		)
		svc := NewIngestionService(store, feedOf(stream), quietLogger())

		report, err := svc.Populate(ctx, 3)

		require.NoError(t, err)
		assert.Equal(t, 3, report.Saved)
		assert.Equal(t, 3, report.Skipped)
		assert.Equal(t, 6, report.LinesRead)
		assert.Equal(t, 3, store.Len())
	})

	t.Run("Exhausted source saves what it has", func(t *testing.T) {
		store := db.NewMemoryStore()
		stream := mocks.NewSliceLineStream(feedLine(1, "1"), feedLine(2, "x"), feedLine(3, "1"))
		svc := NewIngestionService(store, feedOf(stream), quietLogger())

		report, err := svc.Populate(ctx, 10)

		require.NoError(t, err)
		assert.Equal(t, 2, report.Saved)
		assert.Equal(t, 1, report.Skipped)
		assert.Equal(t, 2, store.Len())
	})

	t.Run("Stream failure after partial ingestion keeps committed rows", func(t *testing.T) {
		store := db.NewMemoryStore()
		stream := mocks.NewSliceLineStream(feedLine(1, "1"), feedLine(2, "1"))
		stream.Fail = fmt.Errorf("%w: connection reset", domainservice.ErrFeedUnavailable)
		svc := NewIngestionService(store, feedOf(stream), quietLogger())

		report, err := svc.Populate(ctx, 5)

		assert.ErrorIs(t, err, domainservice.ErrFeedUnavailable)
		assert.Equal(t, 2, report.Saved)
		assert.Equal(t, 2, store.Len())
	})

	t.Run("Persistence failure aborts and propagates", func(t *testing.T) {
		stream := mocks.NewSliceLineStream(feedLine(1, "1"), feedLine(2, "1"), feedLine(3, "1"))

		good := new(mocks.MockSession)
		good.On("Save", mock.Anything, mock.Anything).Return(nil).Once()
		good.On("Commit", mock.Anything).Return(nil).Once()
		good.On("Close").Return(nil)

		bad := new(mocks.MockSession)
		bad.On("Save", mock.Anything, mock.Anything).Return(&entity.PersistenceError{Op: "save record", Err: errors.New("connection refused")}).Once()
		bad.On("Rollback", mock.Anything).Return(nil).Once()
		bad.On("Close").Return(nil)

		factory := new(mocks.MockSessionFactory)
		factory.On("Begin", mock.Anything).Return(good, nil).Once()
		factory.On("Begin", mock.Anything).Return(bad, nil).Once()

		svc := NewIngestionService(factory, feedOf(stream), quietLogger())

		report, err := svc.Populate(ctx, 3)

		var pe *entity.PersistenceError
		assert.ErrorAs(t, err, &pe)
		assert.Equal(t, 1, report.Saved)
		assert.Equal(t, 2, stream.Consumed())
		good.AssertExpectations(t)
		bad.AssertExpectations(t)
		bad.AssertNotCalled(t, "Commit", mock.Anything)
	})

	t.Run("Each record commits in its own session", func(t *testing.T) {
		stream := mocks.NewSliceLineStream(feedLine(1, "1"), feedLine(2, "1"))

		session := new(mocks.MockSession)
		session.On("Save", mock.Anything, mock.Anything).Return(nil).Twice()
		session.On("Commit", mock.Anything).Return(nil).Twice()
		session.On("Close").Return(nil).Twice()

		factory := new(mocks.MockSessionFactory)
		factory.On("Begin", mock.Anything).Return(session, nil).Twice()

		svc := NewIngestionService(factory, feedOf(stream), quietLogger())

		report, err := svc.Populate(ctx, 2)

		require.NoError(t, err)
		assert.Equal(t, 2, report.Saved)
		factory.AssertExpectations(t)
		session.AssertExpectations(t)
	})

	t.Run("Feed unavailable", func(t *testing.T) {
		source := new(mocks.MockFeedSource)
		source.On("Open", mock.Anything).Return(nil, domainservice.ErrFeedUnavailable)
		svc := NewIngestionService(db.NewMemoryStore(), source, quietLogger())

		report, err := svc.Populate(ctx, 1)

		assert.ErrorIs(t, err, domainservice.ErrFeedUnavailable)
		assert.Equal(t, 0, report.Saved)
	})

	t.Run("Non-positive count is a validation error", func(t *testing.T) {
		source := new(mocks.MockFeedSource)
		svc := NewIngestionService(db.NewMemoryStore(), source, quietLogger())

		for _, count := range []int{0, -1} {
			_, err := svc.Populate(ctx, count)
			var ve *entity.ValidationError
			assert.ErrorAs(t, err, &ve)
		}
		source.AssertNotCalled(t, "Open", mock.Anything)
	})
}
