package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultSchema is the Postgres schema the migrations create tables in.
const DefaultSchema = "clinical"

// undefinedTable is the SQLSTATE Postgres returns for a missing relation.
const undefinedTable = "42P01"

// PostgresSource reads each dataset from <schema>.<dataset>.
type PostgresSource struct {
	Pool   *pgxpool.Pool
	Schema string
	Tables map[string]string
}

// NewPostgresSource returns a source over pool. An empty schema means
// DefaultSchema.
func NewPostgresSource(pool *pgxpool.Pool, schema string, tables map[string]string) *PostgresSource {
	if schema == "" {
		schema = DefaultSchema
	}
	return &PostgresSource{Pool: pool, Schema: schema, Tables: tables}
}

// Open selects every row of the dataset's table.
func (s *PostgresSource) Open(ctx context.Context, dataset string) (*Table, error) {
	table := dataset
	if t, ok := s.Tables[dataset]; ok && t != "" {
		table = t
	}
	ident := pgx.Identifier{s.Schema, table}
	location := ident.Sanitize()

	rows, err := s.Pool.Query(ctx, "SELECT * FROM "+location)
	if err != nil {
		return nil, classifyPgErr(dataset, location, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, unreadable(dataset, location, fmt.Errorf("decode row %d: %w", len(out)+1, err))
		}
		row := make(Row, len(vals))
		for i, v := range vals {
			row[i] = cellString(v)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyPgErr(dataset, location, err)
	}

	fds := rows.FieldDescriptions()
	columns := make([]string, len(fds))
	for i, fd := range fds {
		columns[i] = fd.Name
	}
	return NewTable(dataset, location, columns, out), nil
}

func classifyPgErr(dataset, location string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
		return missing(dataset, location, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return unreadable(dataset, location, err)
}
