package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/clinsum/internal/model"
	"github.com/gyeh/clinsum/internal/normalize"
	"github.com/gyeh/clinsum/internal/records"
	embedsql "github.com/gyeh/clinsum/internal/sql"
)

const copyBufferSize = 1024

// FileSource is a dataset source that can also report file locations.
type FileSource interface {
	records.Source
	records.Locator
}

// ImportOptions controls ImportDatasets.
type ImportOptions struct {
	Schema string
	Force  bool // reload datasets whose file hash matches the last import
}

type preparedDataset struct {
	rt    model.RecordType
	table *records.Table
	path  string
	sha   string
}

// ImportDatasets validates every dataset in src, then replaces the contents
// of the matching tables in one transaction. Nothing is written unless all
// six datasets validate; validation failures are *records.DatasetError.
func ImportDatasets(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, src FileSource, opts ImportOptions) (*model.ImportSummary, error) {
	start := time.Now()
	if opts.Schema == "" {
		opts.Schema = records.DefaultSchema
	}
	runID := uuid.New()
	log = log.With().Str("import_run_id", runID.String()).Logger()

	prepared := make([]preparedDataset, 0, len(model.AllRecordTypes))
	for _, rt := range model.AllRecordTypes {
		path, err := src.Locate(rt.Name)
		if err != nil {
			return nil, err
		}
		t, err := records.Load(ctx, src, rt)
		if err != nil {
			return nil, err
		}
		sha, err := normalize.FileHash(path)
		if err != nil {
			return nil, fmt.Errorf("hash %s: %w", rt.Name, err)
		}
		prepared = append(prepared, preparedDataset{rt: rt, table: t, path: path, sha: sha})
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin import tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := useSchema(ctx, tx, opts.Schema); err != nil {
		return nil, err
	}

	summary := &model.ImportSummary{ImportRunID: runID.String()}
	for _, p := range prepared {
		res, err := importOne(ctx, tx, log, runID, p, opts.Force)
		if err != nil {
			return nil, fmt.Errorf("import %s: %w", p.rt.Name, err)
		}
		summary.Datasets = append(summary.Datasets, *res)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}
	summary.Duration = time.Since(start)
	log.Info().
		Int64("rows", summary.RowsImported()).
		Str("duration", summary.Duration.String()).
		Msg("import complete")
	return summary, nil
}

func importOne(ctx context.Context, tx pgx.Tx, log zerolog.Logger, runID uuid.UUID, p preparedDataset, force bool) (*model.ImportedDataset, error) {
	start := time.Now()
	res := &model.ImportedDataset{Dataset: p.rt.Name, Path: p.path, SHA256: p.sha}

	var lastSHA string
	err := tx.QueryRow(ctx, embedsql.LastImport, p.rt.Name).Scan(&lastSHA)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("last import lookup: %w", err)
	}
	if lastSHA == p.sha && !force {
		res.Skipped = true
		log.Info().
			Str("dataset", p.rt.Name).
			Str("sha256", p.sha).
			Msg("dataset unchanged since last import, skipping (use --force to reload)")
		return res, nil
	}

	table := pgx.Identifier{p.rt.Name}
	if _, err := tx.Exec(ctx, "TRUNCATE "+table.Sanitize()); err != nil {
		return nil, fmt.Errorf("truncate: %w", err)
	}

	ch := make(chan []any, copyBufferSize)
	errCh := make(chan error, 1)

	// Producer goroutine: project rows onto the table columns.
	go func() {
		defer close(ch)
		for _, r := range p.table.Rows {
			vals := make([]any, len(p.rt.Required))
			for i, col := range p.rt.Required {
				vals[i] = p.table.Value(r, col)
			}
			select {
			case ch <- vals:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
		errCh <- nil
	}()

	copied, err := tx.CopyFrom(ctx, table, p.rt.Required, NewChannelSource(ch))
	if err != nil {
		// Unblock the producer before waiting on it.
		for range ch {
		}
		<-errCh
		return nil, fmt.Errorf("copy: %w", err)
	}
	if prodErr := <-errCh; prodErr != nil {
		return nil, fmt.Errorf("copy producer: %w", prodErr)
	}

	if _, err := tx.Exec(ctx, embedsql.RecordImport, runID, p.rt.Name, p.path, p.sha, copied); err != nil {
		return nil, fmt.Errorf("record import run: %w", err)
	}

	res.Rows = copied
	res.Duration = time.Since(start)
	log.Info().
		Str("dataset", p.rt.Name).
		Int64("rows", copied).
		Dur("duration", res.Duration).
		Msg("dataset imported")
	return res, nil
}
