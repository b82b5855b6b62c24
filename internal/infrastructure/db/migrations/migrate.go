package migrations

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed 0001_initial_schema.sql
var initialSchema string

// RunMigrations creates the price_paid_data table when it does not exist.
// Deployments that manage the schema externally leave DB_AUTO_MIGRATE off.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, initialSchema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
