package store

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/rickgao/pricesync/internal/table"
)

func date(t *testing.T, s string) civil.Date {
	t.Helper()
	d, err := civil.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

// sample builds a two-column table with one missing cell.
func sample(t *testing.T) *table.Table {
	t.Helper()
	tb := table.New("AAPL", "BRK-B")
	tb.Set(date(t, "2024-01-02"), "AAPL", table.Value(decimal.RequireFromString("185.64")))
	tb.Set(date(t, "2024-01-02"), "BRK-B", table.Value(decimal.RequireFromString("362.45")))
	tb.Set(date(t, "2024-01-03"), "AAPL", table.Value(decimal.RequireFromString("184.25")))
	return tb
}
