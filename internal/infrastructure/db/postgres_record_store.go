package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/damon-houk/ppd-ingest-service/internal/domain/entity"
	"github.com/damon-houk/ppd-ingest-service/internal/domain/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const insertRecordSQL = `
	INSERT INTO price_paid_data (
		id, price, date_of_transfer, postcode, property_type, is_residential,
		estate_type, duration, paon, saon, street, locality, town, district,
		category_type, record_status
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
`

const selectRecordsSQL = `
	SELECT
		id, price, date_of_transfer,
		COALESCE(postcode, ''), COALESCE(property_type, ''), COALESCE(is_residential, ''),
		COALESCE(estate_type, ''), COALESCE(duration, 0), COALESCE(paon, ''),
		COALESCE(saon, ''), COALESCE(street, ''), COALESCE(locality, ''),
		COALESCE(town, ''), COALESCE(district, ''), COALESCE(category_type, ''),
		COALESCE(record_status, '')
	FROM price_paid_data`

const truncateSQL = `TRUNCATE TABLE price_paid_data`

// PostgresStore opens sessions backed by PostgreSQL transactions
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed record store
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Begin starts a transaction and wraps it in a session
func (s *PostgresStore) Begin(ctx context.Context) (repository.Session, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, entity.NewPersistenceError("begin transaction", err)
	}
	return &postgresSession{tx: tx}, nil
}

// Ping checks that PostgreSQL is reachable
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

type postgresSession struct {
	tx       pgx.Tx
	finished bool
}

func (s *postgresSession) Save(ctx context.Context, record *entity.Record) error {
	return saveRecord(ctx, s.tx, record)
}

func (s *postgresSession) Query(ctx context.Context, filter entity.Filter) ([]*entity.Record, error) {
	return queryRecords(ctx, s.tx, filter)
}

func (s *postgresSession) Clear(ctx context.Context) error {
	if _, err := s.tx.Exec(ctx, truncateSQL); err != nil {
		return entity.NewPersistenceError("truncate records", err)
	}
	return nil
}

func (s *postgresSession) Commit(ctx context.Context) error {
	s.finished = true
	if err := s.tx.Commit(ctx); err != nil {
		return entity.NewPersistenceError("commit transaction", err)
	}
	return nil
}

func (s *postgresSession) Rollback(ctx context.Context) error {
	s.finished = true
	if err := s.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return entity.NewPersistenceError("rollback transaction", err)
	}
	return nil
}

// Close rolls back an unfinished transaction, which also returns its connection to the pool
func (s *postgresSession) Close() error {
	if s.finished {
		return nil
	}
	return s.Rollback(context.Background())
}

func saveRecord(ctx context.Context, q DBTX, r *entity.Record) error {
	_, err := q.Exec(ctx, insertRecordSQL,
		pgtype.UUID{Bytes: r.ID, Valid: true}, r.Price, r.DateOfTransfer,
		r.Postcode, r.PropertyType, r.IsResidential, r.EstateType, r.Duration,
		r.PAON, r.SAON, r.Street, r.Locality, r.Town, r.District,
		r.CategoryType, r.RecordStatus,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return entity.NewPersistenceError("save record", fmt.Errorf("%w: %s", entity.ErrDuplicateRecord, r.ID))
		}
		return entity.NewPersistenceError("save record", err)
	}
	return nil
}

func queryRecords(ctx context.Context, q DBTX, filter entity.Filter) ([]*entity.Record, error) {
	query, args := buildRecordQuery(filter)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, entity.NewPersistenceError("query records", err)
	}
	defer rows.Close()

	records := make([]*entity.Record, 0)
	for rows.Next() {
		var (
			r  entity.Record
			id pgtype.UUID
		)
		err := rows.Scan(
			&id, &r.Price, &r.DateOfTransfer,
			&r.Postcode, &r.PropertyType, &r.IsResidential,
			&r.EstateType, &r.Duration, &r.PAON,
			&r.SAON, &r.Street, &r.Locality,
			&r.Town, &r.District, &r.CategoryType,
			&r.RecordStatus,
		)
		if err != nil {
			return nil, entity.NewPersistenceError("scan record", err)
		}
		r.ID = uuid.UUID(id.Bytes)
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, entity.NewPersistenceError("query records", err)
	}

	return records, nil
}

// buildRecordQuery applies the price predicate, then the status predicate,
// then the row cap. Predicates are joined with AND. Price is bound as bigint
// so a value outside the int4 column range matches nothing instead of failing.
func buildRecordQuery(filter entity.Filter) (string, []any) {
	var (
		sb    strings.Builder
		conds []string
		args  []any
	)
	sb.WriteString(selectRecordsSQL)

	if filter.Price != nil {
		args = append(args, *filter.Price)
		conds = append(conds, fmt.Sprintf("price = $%d::bigint", len(args)))
	}
	if filter.RecordStatus != nil {
		args = append(args, *filter.RecordStatus)
		conds = append(conds, fmt.Sprintf("record_status = $%d", len(args)))
	}
	if len(conds) > 0 {
		sb.WriteString("\n\tWHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}
	if filter.Limit != nil {
		args = append(args, *filter.Limit)
		sb.WriteString(fmt.Sprintf("\n\tLIMIT $%d", len(args)))
	}

	return sb.String(), args
}
