// internal/mocks/mocks.go
package mocks

import (
	"context"

	"github.com/damon-houk/ppd-ingest-service/internal/domain/entity"
	"github.com/damon-houk/ppd-ingest-service/internal/domain/repository"
	"github.com/damon-houk/ppd-ingest-service/internal/domain/service"
	"github.com/stretchr/testify/mock"
)

// MockSessionFactory mocks the SessionFactory interface
type MockSessionFactory struct {
	mock.Mock
}

func (m *MockSessionFactory) Begin(ctx context.Context) (repository.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(repository.Session), args.Error(1)
}

func (m *MockSessionFactory) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockSession mocks the Session interface
type MockSession struct {
	mock.Mock
}

func (m *MockSession) Save(ctx context.Context, record *entity.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockSession) Query(ctx context.Context, filter entity.Filter) ([]*entity.Record, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Record), args.Error(1)
}

func (m *MockSession) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSession) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSession) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSession) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockFeedSource mocks the FeedSource interface
type MockFeedSource struct {
	mock.Mock
}

func (m *MockFeedSource) Open(ctx context.Context) (service.LineStream, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(service.LineStream), args.Error(1)
}

// SliceLineStream is a LineStream over an in-memory slice of lines
type SliceLineStream struct {
	Lines  []string
	Fail   error
	Closed bool
	pos    int
}

// NewSliceLineStream creates a stream yielding the given lines in order
func NewSliceLineStream(lines ...string) *SliceLineStream {
	return &SliceLineStream{Lines: lines, pos: -1}
}

func (s *SliceLineStream) Next() bool {
	if s.pos+1 >= len(s.Lines) {
		s.pos = len(s.Lines)
		return false
	}
	s.pos++
	return true
}

func (s *SliceLineStream) Line() string {
	if s.pos < 0 || s.pos >= len(s.Lines) {
		return ""
	}
	return s.Lines[s.pos]
}

// Err returns Fail once the slice is exhausted
func (s *SliceLineStream) Err() error {
	if s.pos >= len(s.Lines) {
		return s.Fail
	}
	return nil
}

func (s *SliceLineStream) Close() error {
	s.Closed = true
	return nil
}

// Consumed returns how many lines were handed out
func (s *SliceLineStream) Consumed() int {
	if s.pos >= len(s.Lines) {
		return len(s.Lines)
	}
	return s.pos + 1
}
