package main

import (
	"context"
	"database/sql"

	"bozoruz/internal/config"
	"bozoruz/internal/database"

	"go.uber.org/zap"
)

type migrateTarget struct {
	db     *sql.DB
	driver string
	log    *zap.Logger
}

// runMigrate opens the configured database, optionally overriding its
// driver, and hands it to fn
func runMigrate(ctx context.Context, driver string, fn func(migrateTarget) error) error {
	cfg := config.Load()
	if driver != "" {
		cfg.Database.Driver = driver
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		return err
	}
	defer db.Close()

	return fn(migrateTarget{db: db, driver: cfg.Database.Driver, log: log})
}
