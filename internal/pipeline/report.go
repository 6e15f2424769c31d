package pipeline

import (
	"github.com/rickgao/pricesync/internal/table"
	"github.com/rickgao/pricesync/internal/writer"
)

// Status is the outcome of a run.
type Status string

const (
	// StatusUpdated means the merged table was written to the store.
	StatusUpdated Status = "updated"

	// StatusNoNewData means the store already holds every fetched value.
	StatusNoNewData Status = "no_new_data"

	// StatusNoData means the provider returned nothing for the window.
	StatusNoData Status = "no_data"

	// StatusNoValidSymbols means no ticker survived validation.
	StatusNoValidSymbols Status = "no_valid_symbols"

	// StatusFellBack means the store write failed and the merged table was
	// saved to the fallback file.
	StatusFellBack Status = "fell_back"
)

// Report summarizes a run.
type Report struct {
	RunID        string
	Status       Status
	Mode         string
	From, To     table.Date // fetch window, To exclusive
	Tickers      int
	ValidSymbols int
	PriorRows    int
	FreshRows    int
	MergedRows   int
	Write        writer.Result
	WriterStats  writer.Metrics // zero when the writer keeps no counters
}

// FatalError is an input fault the run cannot recover from.
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *FatalError) Unwrap() error { return e.Err }
