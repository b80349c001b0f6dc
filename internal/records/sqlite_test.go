package records

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/gyeh/clinsum/internal/model"
)

func zerologNop() zerolog.Logger { return zerolog.Nop() }

func newTestSQLite(t *testing.T, stmts ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clinical.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("exec %q: %v", s, err)
		}
	}
	return path
}

func TestSQLiteSource_Notes(t *testing.T) {
	path := newTestSQLite(t,
		`CREATE TABLE notes (patient_id TEXT, episode_id TEXT, note_date TEXT, note_type TEXT, note_text TEXT)`,
		`INSERT INTO notes VALUES ('P1','E1','2024-01-02','Nursing','Patient ambulating')`,
		`INSERT INTO notes VALUES ('P1','E1','2024-01-04','PT','Gait improving')`,
		`INSERT INTO notes VALUES ('P2','E2','2024-01-04','SN','Other patient')`,
	)

	s := NewStore(NewSQLiteSource(path, nil), zerologNop())
	notes, err := s.Notes(context.Background(), "P1")
	if err != nil {
		t.Fatalf("Notes: %v", err)
	}
	if len(notes) != 2 || notes[1].Text != "Gait improving" {
		t.Errorf("unexpected notes: %+v", notes)
	}
}

func TestSQLiteSource_NumericCells(t *testing.T) {
	path := newTestSQLite(t,
		`CREATE TABLE vitals (patient_id TEXT, episode_id INTEGER, visit_date TEXT, vital_type TEXT, reading REAL, min_value INTEGER, max_value INTEGER)`,
		`INSERT INTO vitals VALUES ('P1', 7, '2024-01-05', 'Temp', 98.6, 97, 99)`,
	)

	s := NewStore(NewSQLiteSource(path, nil), zerologNop())
	vitals, err := s.Vitals(context.Background(), "P1")
	if err != nil {
		t.Fatalf("Vitals: %v", err)
	}
	if len(vitals) != 1 {
		t.Fatalf("expected 1 vital, got %d", len(vitals))
	}
	v := vitals[0]
	if v.EpisodeID != "7" || v.Reading != "98.6" || v.MinValue != "97" {
		t.Errorf("unexpected cell rendering: %+v", v)
	}
}

func TestSQLiteSource_MissingTable(t *testing.T) {
	path := newTestSQLite(t, `CREATE TABLE unrelated (x TEXT)`)

	_, err := Load(context.Background(), NewSQLiteSource(path, nil), model.Wounds)
	if !errors.Is(err, ErrMissingDataset) {
		t.Fatalf("expected ErrMissingDataset, got %v", err)
	}
}

func TestSQLiteSource_MissingFile(t *testing.T) {
	src := NewSQLiteSource(filepath.Join(t.TempDir(), "nope.db"), nil)
	_, err := Load(context.Background(), src, model.Wounds)
	if !errors.Is(err, ErrMissingDataset) {
		t.Fatalf("expected ErrMissingDataset, got %v", err)
	}
}

func TestSQLiteSource_EmptyTable(t *testing.T) {
	path := newTestSQLite(t,
		`CREATE TABLE wounds (patient_id TEXT, episode_id TEXT, description TEXT, location TEXT, onset_date TEXT, visit_date TEXT)`,
	)
	_, err := Load(context.Background(), NewSQLiteSource(path, nil), model.Wounds)
	if !errors.Is(err, ErrEmptyDataset) {
		t.Fatalf("expected ErrEmptyDataset, got %v", err)
	}
}

func TestSQLiteSource_TableOverride(t *testing.T) {
	path := newTestSQLite(t,
		`CREATE TABLE dx (patient_id TEXT, episode_id TEXT, diagnosis_description TEXT, diagnosis_code TEXT)`,
		`INSERT INTO dx VALUES ('P1','E1','CHF','I50.9')`,
	)
	src := NewSQLiteSource(path, map[string]string{"diagnoses": "dx"})
	tbl, err := Load(context.Background(), src, model.Diagnoses)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tbl.Rows) != 1 {
		t.Errorf("expected 1 row, got %d", len(tbl.Rows))
	}
}
