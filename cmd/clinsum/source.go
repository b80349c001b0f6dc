package main

import (
	"context"

	"github.com/gyeh/clinsum/internal/config"
	"github.com/gyeh/clinsum/internal/db"
	"github.com/gyeh/clinsum/internal/exitcode"
	"github.com/gyeh/clinsum/internal/records"
)

// openSource builds the configured dataset source. The returned func
// releases any connections it holds. Failures exit the process.
func openSource(ctx context.Context) (records.Source, func()) {
	if err := cfg.Validate(); err != nil {
		exit(exitcode.UsageError, err, "config validation failed")
	}

	var manifest *config.Manifest
	if cfg.Manifest != "" {
		m, err := config.LoadManifest(cfg.Manifest)
		if err != nil {
			exit(exitcode.UsageError, err, "manifest load failed")
		}
		manifest = m
	}

	switch cfg.Source {
	case config.SourceSQLite:
		return records.NewSQLiteSource(cfg.SQLitePath, manifest.Tables()), func() {}
	case config.SourcePostgres:
		pool, err := db.NewPool(ctx, cfg.DSN, db.PoolOptions{Schema: cfg.PGSchema})
		if err != nil {
			exit(exitcode.DBConnError, err, "database connection failed")
		}
		return records.NewPostgresSource(pool, cfg.PGSchema, manifest.Tables()), pool.Close
	default:
		return records.NewDirSource(cfg.DataDir, manifest.Files()), func() {}
	}
}
