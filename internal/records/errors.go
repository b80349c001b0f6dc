package records

import (
	"errors"
	"fmt"
	"strings"
)

// Dataset error kinds. Match with errors.Is.
var (
	ErrMissingDataset    = errors.New("missing dataset")
	ErrUnreadableDataset = errors.New("unreadable dataset")
	ErrEmptyDataset      = errors.New("empty dataset")
	ErrSchemaViolation   = errors.New("schema violation")
)

// DatasetError reports a setup-time failure for a single dataset. These mean
// the deployment is misconfigured; they are never retried.
type DatasetError struct {
	Kind     error  // one of the Err* sentinels above
	Dataset  string // dataset name, e.g. "vitals"
	Location string // file path or table that was consulted
	Missing  []string
	Err      error
}

func (e *DatasetError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Dataset, e.Kind)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ": missing required columns: %s", strings.Join(e.Missing, ", "))
	}
	if e.Location != "" {
		fmt.Fprintf(&b, " (%s)", e.Location)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %s", e.Err)
	}
	return b.String()
}

func (e *DatasetError) Is(target error) bool {
	return target == e.Kind
}

func (e *DatasetError) Unwrap() error {
	return e.Err
}

// KindName returns the short name of the error kind, e.g. "SchemaViolation".
func (e *DatasetError) KindName() string {
	switch e.Kind {
	case ErrMissingDataset:
		return "MissingDataset"
	case ErrUnreadableDataset:
		return "UnreadableDataset"
	case ErrEmptyDataset:
		return "EmptyDataset"
	case ErrSchemaViolation:
		return "SchemaViolation"
	}
	return "DatasetError"
}

func missing(dataset, location string, err error) *DatasetError {
	return &DatasetError{Kind: ErrMissingDataset, Dataset: dataset, Location: location, Err: err}
}

func unreadable(dataset, location string, err error) *DatasetError {
	return &DatasetError{Kind: ErrUnreadableDataset, Dataset: dataset, Location: location, Err: err}
}
