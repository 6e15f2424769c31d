package table

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

func date(s string) civil.Date {
	d, err := civil.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func val(s string) Cell {
	return Value(decimal.RequireFromString(s))
}

// build creates a table from rows of "date", then one cell text per column.
func build(t *testing.T, columns []string, rows ...[]string) *Table {
	t.Helper()
	tbl := New(columns...)
	for _, r := range rows {
		d := date(r[0])
		tbl.EnsureRow(d)
		for i, raw := range r[1:] {
			c, err := ParseCell(raw)
			if err != nil {
				t.Fatalf("ParseCell(%q): %v", raw, err)
			}
			tbl.Set(d, columns[i], c)
		}
	}
	return tbl
}

func TestNew_DeduplicatesColumns(t *testing.T) {
	tbl := New("A", "B", "A")
	got := tbl.Columns()
	if len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Errorf("Columns() = %v, want [A B]", got)
	}
}

func TestSet_AddsColumnToExistingRows(t *testing.T) {
	tbl := New("A")
	tbl.Set(date("2024-01-02"), "A", val("1"))
	tbl.Set(date("2024-01-03"), "B", val("2"))

	if got := tbl.Get(date("2024-01-02"), "B"); got.Valid {
		t.Errorf("Get(01-02, B) = %v, want missing", got)
	}
	if got := tbl.Columns(); len(got) != 2 || got[1] != "B" {
		t.Errorf("Columns() = %v, want [A B]", got)
	}
}

func TestDates_Sorted(t *testing.T) {
	tbl := New("A")
	for _, s := range []string{"2024-03-01", "2023-12-29", "2024-01-02"} {
		tbl.EnsureRow(date(s))
	}
	got := tbl.Dates()
	want := []string{"2023-12-29", "2024-01-02", "2024-03-01"}
	for i := range want {
		if got[i].String() != want[i] {
			t.Errorf("Dates()[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	last, ok := tbl.LastDate()
	if !ok || last.String() != "2024-03-01" {
		t.Errorf("LastDate() = %s, %v; want 2024-03-01, true", last, ok)
	}
}

func TestLastDate_Empty(t *testing.T) {
	if _, ok := New("A").LastDate(); ok {
		t.Error("LastDate() on empty table reported a date")
	}
}

func TestEqual(t *testing.T) {
	a := build(t, []string{"A", "B"}, []string{"2024-01-02", "1.50", ""})
	b := build(t, []string{"A", "B"}, []string{"2024-01-02", "1.5", ""})
	if !a.Equal(b) {
		t.Error("tables with numerically equal cells should be equal")
	}

	c := build(t, []string{"B", "A"}, []string{"2024-01-02", "", "1.5"})
	if a.Equal(c) {
		t.Error("column order should matter")
	}

	d := build(t, []string{"A", "B"}, []string{"2024-01-02", "1.5", "0"})
	if a.Equal(d) {
		t.Error("missing cell must not equal zero")
	}
}
