package main

import (
	"context"
	"fmt"
	"os"

	"github.com/damon-houk/ppd-ingest-service/internal/domain/repository"
	"github.com/damon-houk/ppd-ingest-service/internal/infrastructure/config"
	"github.com/damon-houk/ppd-ingest-service/internal/infrastructure/db"
	"github.com/damon-houk/ppd-ingest-service/internal/infrastructure/db/migrations"
	"github.com/damon-houk/ppd-ingest-service/internal/infrastructure/logger"
	"github.com/dgraph-io/badger/v3"
)

// openStore builds the configured record store and a func releasing it
func openStore(ctx context.Context, cfg config.StoreConfig, log logger.Logger) (repository.SessionFactory, func(), error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		pool, err := db.NewPostgresPool(ctx, cfg.DBString, cfg.MaxConns)
		if err != nil {
			return nil, nil, err
		}
		if cfg.AutoMigrate {
			if err := migrations.RunMigrations(ctx, pool); err != nil {
				pool.Close()
				return nil, nil, err
			}
			log.Info("Schema migrations applied", nil)
		}
		store := db.NewPostgresStore(pool)
		return store, func() { store.Close() }, nil

	case config.BackendBadger:
		if err := os.MkdirAll(cfg.BadgerPath, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create database directory: %w", err)
		}

		badgerOpts := badger.DefaultOptions(cfg.BadgerPath)
		badgerOpts.Logger = nil

		badgerDB, err := badger.Open(badgerOpts)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		closeDB := func() {
			if err := badgerDB.Close(); err != nil {
				log.Error("Error closing BadgerDB", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
		return db.NewBadgerStore(badgerDB), closeDB, nil

	case config.BackendMemory:
		log.Warn("Using in-memory record store; records are lost on exit", nil)
		return db.NewMemoryStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
