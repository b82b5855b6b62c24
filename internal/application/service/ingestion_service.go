package service

import (
	"context"
	"errors"

	"github.com/damon-houk/ppd-ingest-service/internal/domain/entity"
	"github.com/damon-houk/ppd-ingest-service/internal/domain/repository"
	domainservice "github.com/damon-houk/ppd-ingest-service/internal/domain/service"
	"github.com/damon-houk/ppd-ingest-service/internal/infrastructure/feed"
	"github.com/damon-houk/ppd-ingest-service/internal/infrastructure/logger"
	"github.com/damon-houk/ppd-ingest-service/internal/infrastructure/metrics"
	"github.com/damon-houk/ppd-ingest-service/internal/infrastructure/middleware"
)

// IngestionReport summarises one populate run
type IngestionReport struct {
	Requested int `json:"requested"`
	Saved     int `json:"saved"`
	Skipped   int `json:"skipped"`
	LinesRead int `json:"lines_read"`
}

// IngestionService copies records from the external feed into the store
type IngestionService struct {
	sessions repository.SessionFactory
	source   domainservice.FeedSource
	logger   logger.Logger
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(sessions repository.SessionFactory, source domainservice.FeedSource, log logger.Logger) *IngestionService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &IngestionService{
		sessions: sessions,
		source:   source,
		logger:   log,
	}
}

// Populate saves up to count records from the feed, one committed session per
// record. Lines that fail to parse are skipped and do not count. A store
// failure stops the run; records saved before it stay committed.
func (s *IngestionService) Populate(ctx context.Context, count int) (*IngestionReport, error) {
	report := &IngestionReport{Requested: count}
	if count <= 0 {
		return report, &entity.ValidationError{Field: "count", Message: "count must be a positive integer"}
	}

	requestID := middleware.GetRequestID(ctx)
	log := s.logger.WithField("request_id", requestID)

	log.Info("Starting ingestion", map[string]interface{}{
		"count": count,
	})

	stream, err := s.source.Open(ctx)
	if err != nil {
		log.Error("Failed to open feed", map[string]interface{}{
			"error": err.Error(),
		})
		return report, err
	}
	defer stream.Close()

	for report.Saved < count && stream.Next() {
		report.LinesRead++

		record, err := feed.ParseRecord(report.LinesRead, stream.Line())
		if err != nil {
			var parseErr *entity.ParseError
			if !errors.As(err, &parseErr) {
				return report, err
			}
			report.Skipped++
			metrics.LinesSkipped.WithLabelValues(skipLabel(parseErr)).Inc()
			log.Warn("Skipping feed line", map[string]interface{}{
				"line":  parseErr.Line,
				"field": parseErr.Field,
				"error": parseErr.Error(),
			})
			continue
		}

		err = repository.WithSession(ctx, s.sessions, func(store repository.RecordStore) error {
			return store.Save(ctx, record)
		})
		if err != nil {
			log.Error("Failed to save record", map[string]interface{}{
				"id":    record.ID.String(),
				"line":  report.LinesRead,
				"saved": report.Saved,
				"error": err.Error(),
			})
			return report, err
		}

		report.Saved++
		metrics.RecordsIngested.Inc()
	}

	if report.Saved < count {
		if err := stream.Err(); err != nil {
			log.Error("Feed stream failed", map[string]interface{}{
				"saved": report.Saved,
				"error": err.Error(),
			})
			return report, err
		}
	}

	log.Info("Ingestion finished", map[string]interface{}{
		"requested":  report.Requested,
		"saved":      report.Saved,
		"skipped":    report.Skipped,
		"lines_read": report.LinesRead,
	})

	return report, nil
}

func skipLabel(err *entity.ParseError) string {
	if err.Field == "" {
		return "line"
	}
	return err.Field
}
