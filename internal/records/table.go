package records

import (
	"github.com/gyeh/clinsum/internal/normalize"
)

// Row holds the cell values of one record, aligned with Table.Columns.
type Row []string

// Table is a dataset parsed into text cells. Column order is preserved from
// the source and rows keep their source order.
type Table struct {
	Name     string
	Location string
	Columns  []string
	Rows     []Row

	index map[string]int
}

// NewTable builds a Table, trimming column names and padding short rows.
func NewTable(name, location string, columns []string, rows []Row) *Table {
	t := &Table{
		Name:     name,
		Location: location,
		Columns:  make([]string, len(columns)),
		index:    make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		c = normalize.Cell(c)
		t.Columns[i] = c
		if _, dup := t.index[c]; !dup {
			t.index[c] = i
		}
	}
	t.Rows = make([]Row, len(rows))
	for i, r := range rows {
		row := make(Row, len(columns))
		for j := 0; j < len(r) && j < len(columns); j++ {
			row[j] = normalize.Cell(r[j])
		}
		t.Rows[i] = row
	}
	return t
}

// Has reports whether the table has the named column.
func (t *Table) Has(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Value returns the cell for col in r, or "" if the column is absent.
func (t *Table) Value(r Row, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(r) {
		return ""
	}
	return r[i]
}

// MissingColumns returns the required columns the table lacks, in the order
// they were given.
func (t *Table) MissingColumns(required []string) []string {
	var out []string
	for _, col := range required {
		if !t.Has(col) {
			out = append(out, col)
		}
	}
	return out
}

// ForPatient returns the rows whose patient_id equals patientID. It never
// fails; no match yields an empty slice.
func ForPatient(t *Table, patientID string) []Row {
	id := normalize.Cell(patientID)
	out := []Row{}
	for _, r := range t.Rows {
		if t.Value(r, "patient_id") == id {
			out = append(out, r)
		}
	}
	return out
}

// Distinct drops rows that exactly duplicate an earlier row across every
// column, keeping first occurrences in order.
func Distinct(rows []Row) []Row {
	seen := make(map[[32]byte]struct{}, len(rows))
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		k := normalize.RowKey(r...)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}
