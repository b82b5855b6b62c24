package service

import (
	"context"

	"github.com/damon-houk/ppd-ingest-service/internal/domain/entity"
	"github.com/damon-houk/ppd-ingest-service/internal/domain/repository"
	"github.com/damon-houk/ppd-ingest-service/internal/infrastructure/logger"
	"github.com/damon-houk/ppd-ingest-service/internal/infrastructure/middleware"
)

// RecordService handles retrieval and truncation of price paid records
type RecordService struct {
	sessions repository.SessionFactory
	logger   logger.Logger
}

// NewRecordService creates a new record service
func NewRecordService(sessions repository.SessionFactory, log logger.Logger) *RecordService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &RecordService{
		sessions: sessions,
		logger:   log,
	}
}

// Query returns the records matching the filter
func (s *RecordService) Query(ctx context.Context, filter entity.Filter) ([]*entity.Record, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	var records []*entity.Record
	err := repository.WithSession(ctx, s.sessions, func(store repository.RecordStore) error {
		var err error
		records, err = store.Query(ctx, filter)
		return err
	})
	if err != nil {
		s.logger.Error("Failed to query records", map[string]interface{}{
			"request_id": middleware.GetRequestID(ctx),
			"error":      err.Error(),
		})
		return nil, err
	}

	return records, nil
}

// Clear removes every record
func (s *RecordService) Clear(ctx context.Context) error {
	requestID := middleware.GetRequestID(ctx)

	err := repository.WithSession(ctx, s.sessions, func(store repository.RecordStore) error {
		return store.Clear(ctx)
	})
	if err != nil {
		s.logger.Error("Failed to truncate records", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		return err
	}

	s.logger.Info("Records truncated", map[string]interface{}{
		"request_id": requestID,
	})
	return nil
}

// Ping checks that the store is reachable
func (s *RecordService) Ping(ctx context.Context) error {
	return s.sessions.Ping(ctx)
}
