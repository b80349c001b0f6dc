package records

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteSource reads each dataset from a same-named table in a SQLite
// database file. Tables overrides the table name per dataset.
type SQLiteSource struct {
	Path   string
	Tables map[string]string
}

// NewSQLiteSource returns a source over the database at path.
func NewSQLiteSource(path string, tables map[string]string) *SQLiteSource {
	return &SQLiteSource{Path: path, Tables: tables}
}

func (s *SQLiteSource) table(dataset string) string {
	if t, ok := s.Tables[dataset]; ok && t != "" {
		return t
	}
	return dataset
}

// Open reads the whole table for dataset. The database is opened per call so
// every load sees the file as it is now.
func (s *SQLiteSource) Open(ctx context.Context, dataset string) (*Table, error) {
	table := s.table(dataset)
	location := s.Path + "#" + table

	if _, err := os.Stat(s.Path); err != nil {
		return nil, missing(dataset, s.Path, err)
	}

	db, err := sql.Open("sqlite", s.Path)
	if err != nil {
		return nil, unreadable(dataset, location, fmt.Errorf("open db: %w", err))
	}
	defer db.Close()

	var name string
	err = db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type IN ('table', 'view') AND name = ?`, table,
	).Scan(&name)
	if err == sql.ErrNoRows {
		return nil, missing(dataset, location, fmt.Errorf("no such table: %s", table))
	}
	if err != nil {
		return nil, unreadable(dataset, location, err)
	}

	rows, err := db.QueryContext(ctx, `SELECT * FROM "`+strings.ReplaceAll(table, `"`, `""`)+`"`)
	if err != nil {
		return nil, unreadable(dataset, location, err)
	}
	defer rows.Close()

	t, err := scanSQLRows(dataset, location, rows)
	if err != nil {
		return nil, unreadable(dataset, location, err)
	}
	return t, nil
}

func scanSQLRows(dataset, location string, rows *sql.Rows) (*Table, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	var out []Row
	vals := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", len(out)+1, err)
		}
		row := make(Row, len(columns))
		for i, v := range vals {
			row[i] = cellString(v)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return NewTable(dataset, location, columns, out), nil
}
