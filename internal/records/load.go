package records

import (
	"context"

	"github.com/gyeh/clinsum/internal/model"
)

// Source resolves a dataset name to a parsed table. Implementations return
// *DatasetError for missing or unparseable datasets.
type Source interface {
	Open(ctx context.Context, dataset string) (*Table, error)
}

// Locator is implemented by file-backed sources that can report where a
// dataset lives on disk.
type Locator interface {
	Locate(dataset string) (string, error)
}

// Load opens the dataset for rt and validates it: at least one row and every
// required column present. Validation runs on every call.
func Load(ctx context.Context, src Source, rt model.RecordType) (*Table, error) {
	t, err := src.Open(ctx, rt.Name)
	if err != nil {
		return nil, err
	}
	if len(t.Rows) == 0 {
		return nil, &DatasetError{Kind: ErrEmptyDataset, Dataset: rt.Name, Location: t.Location}
	}
	if cols := t.MissingColumns(rt.Required); len(cols) > 0 {
		return nil, &DatasetError{Kind: ErrSchemaViolation, Dataset: rt.Name, Location: t.Location, Missing: cols}
	}
	return t, nil
}
