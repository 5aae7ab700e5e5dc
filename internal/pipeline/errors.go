package pipeline

import (
	"fmt"

	"github.com/rotisserie/eris"
)

var (
	// ErrNotPreprocessed is returned when aggregation runs before any record
	// was successfully preprocessed.
	ErrNotPreprocessed = eris.New("pipeline: no preprocessed companies")

	// ErrNotLoaded is returned when preprocessing runs before a table was loaded.
	ErrNotLoaded = eris.New("pipeline: no table loaded")

	// ErrInvalidRecord marks a source row that cannot be transformed.
	ErrInvalidRecord = eris.New("pipeline: invalid record")
)

// RecordError is a per-row failure. The row is skipped; the run continues.
type RecordError struct {
	Row int
	Err error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
