package model

import "time"

// DatasetReport captures what `clinsum check` learned about one dataset.
type DatasetReport struct {
	Dataset  string
	Label    string
	Location string
	SHA256   string // empty for database-backed datasets
	Rows     int
	Columns  []string
	Duration time.Duration
	Err      error

	// Filled for dated datasets only.
	Patients    int    // distinct patient ids
	LatestDay   string // latest parseable date across all patients, YYYY-MM-DD
	UndatedRows int    // rows whose date column did not parse
}

// OK reports whether the dataset loaded and validated cleanly.
func (r *DatasetReport) OK() bool {
	return r.Err == nil
}

// ImportSummary captures the results of a `clinsum db import` run.
type ImportSummary struct {
	ImportRunID string
	Datasets    []ImportedDataset
	Duration    time.Duration
}

// ImportedDataset is the outcome for one dataset within an import.
type ImportedDataset struct {
	Dataset  string
	Path     string
	SHA256   string
	Rows     int64
	Skipped  bool // unchanged since the last import
	Duration time.Duration
}

// RowsImported totals the rows copied across datasets.
func (s *ImportSummary) RowsImported() int64 {
	var n int64
	for _, d := range s.Datasets {
		n += d.Rows
	}
	return n
}
