package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/rickgao/pricesync/internal/table"
)

var (
	// ErrNotFound is returned by Read when the store has never been written.
	ErrNotFound = errors.New("store: not found")

	// ErrMalformed is returned by Read when stored data cannot be decoded.
	ErrMalformed = errors.New("store: malformed data")
)

// Reader loads the persisted table.
type Reader interface {
	Read(ctx context.Context) (*table.Table, error)
}

// Atomic is a destination replaced as a whole by each write.
type Atomic interface {
	Replace(ctx context.Context, t *table.Table) error
}

// Chunked is a destination written in row ranges. Offsets and counts are in
// records, the header being record 0.
type Chunked interface {
	// WriteRows writes records starting at record offset.
	WriteRows(ctx context.Context, offset int, records [][]string) error

	// ClearStale empties every cell outside the first rows records and
	// the first cols columns.
	ClearStale(ctx context.Context, rows, cols int) error
}

// Store is a configured backend: readable and either Atomic or Chunked.
type Store interface {
	Reader
	Name() string
}

// TransientError marks a failure worth retrying.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "transient: " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err is, or wraps, a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// transient wraps err as a TransientError when retry reports true.
func transient(err error, retry bool) error {
	if err == nil || !retry {
		return err
	}
	return &TransientError{Err: err}
}

func malformed(err error) error {
	return fmt.Errorf("%w: %w", ErrMalformed, err)
}
