package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gyeh/clinsum/internal/config"
	"github.com/gyeh/clinsum/internal/db"
	"github.com/gyeh/clinsum/internal/exitcode"
	"github.com/gyeh/clinsum/internal/records"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the Postgres dataset tables",
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database schema migrations",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

var importForce bool

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "COPY-load a dataset directory into Postgres",
	Args:  cobra.NoArgs,
	RunE:  runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importForce, "force", false, "Reload datasets even if their file hash is unchanged")
	dbCmd.AddCommand(migrateCmd)
	dbCmd.AddCommand(importCmd)
	rootCmd.AddCommand(dbCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if err := cfg.ValidateWithDSN(); err != nil {
		exit(exitcode.UsageError, err, "config validation failed")
	}

	pool, err := db.NewPool(ctx, cfg.DSN, db.PoolOptions{Schema: cfg.PGSchema})
	if err != nil {
		exit(exitcode.DBConnError, err, "database connection failed")
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool, log, cfg.PGSchema); err != nil {
		pool.Close()
		exit(exitcode.ImportError, err, "migration failed")
	}

	log.Info().Msg("all migrations applied successfully")
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if err := cfg.ValidateWithDSN(); err != nil {
		exit(exitcode.UsageError, err, "config validation failed")
	}

	files := map[string]string{}
	if cfg.Manifest != "" {
		m, err := config.LoadManifest(cfg.Manifest)
		if err != nil {
			exit(exitcode.UsageError, err, "manifest load failed")
		}
		files = m.Files()
	}
	src := records.NewDirSource(cfg.DataDir, files)

	pool, err := db.NewPool(ctx, cfg.DSN, db.PoolOptions{Schema: cfg.PGSchema})
	if err != nil {
		exit(exitcode.DBConnError, err, "database connection failed")
	}
	defer pool.Close()

	summary, err := db.ImportDatasets(ctx, pool, log, src, db.ImportOptions{
		Schema: cfg.PGSchema,
		Force:  importForce,
	})
	if err != nil {
		pool.Close()
		var dsErr *records.DatasetError
		if errors.As(err, &dsErr) {
			exit(exitcode.ValidationError, err, "dataset validation failed")
		}
		exit(exitcode.ImportError, err, "import failed")
	}

	skipped := 0
	for _, d := range summary.Datasets {
		if d.Skipped {
			skipped++
		}
	}
	fmt.Printf("Import complete: %d rows across %d datasets, %d unchanged (%.1fs)\n",
		summary.RowsImported(), len(summary.Datasets)-skipped, skipped, summary.Duration.Seconds())
	return nil
}
