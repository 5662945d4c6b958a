package series

import (
	"errors"
	"fmt"
)

// Sentinel normalization errors.
var (
	// ErrMissingTimeColumn is returned when an export has no "Time" column.
	ErrMissingTimeColumn = errors.New("'Time' column not found")
	// ErrAmbiguousValueColumn is returned when an export does not have exactly one value column.
	ErrAmbiguousValueColumn = errors.New("expected exactly 1 value column")
	// ErrEmptyInput is returned when an export has no header row.
	ErrEmptyInput = errors.New("no header row")
)

// ColumnError describes a header that cannot be normalized.
// It unwraps to ErrMissingTimeColumn or ErrAmbiguousValueColumn.
type ColumnError struct {
	Kind    error
	Source  string
	Columns []string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%v in %s, columns: %q", e.Kind, e.Source, e.Columns)
}

func (e *ColumnError) Unwrap() error {
	return e.Kind
}
