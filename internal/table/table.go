package table

import (
	"slices"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Cell is a single observation. Missing cells have Valid == false.
type Cell = decimal.NullDecimal

// Missing is the empty cell.
var Missing = Cell{}

// Value wraps d as a present cell.
func Value(d decimal.Decimal) Cell {
	return Cell{Decimal: d, Valid: true}
}

// Table is a date-keyed table with one column per symbol.
// The zero value is not usable; use New.
type Table struct {
	columns []string
	index   map[string]int
	rows    map[civil.Date][]Cell
}

// New creates an empty table with the given columns. Duplicate names are
// ignored after their first occurrence.
func New(columns ...string) *Table {
	t := &Table{
		index: make(map[string]int, len(columns)),
		rows:  make(map[civil.Date][]Cell),
	}
	for _, c := range columns {
		t.AddColumn(c)
	}
	return t
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	if t == nil {
		return nil
	}
	return slices.Clone(t.columns)
}

// AddColumn appends a column. It returns false if the column already exists.
// Existing rows read the new column as missing.
func (t *Table) AddColumn(name string) bool {
	if _, ok := t.index[name]; ok {
		return false
	}
	t.index[name] = len(t.columns)
	t.columns = append(t.columns, name)
	return true
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// Dates returns the row keys in ascending order.
func (t *Table) Dates() []civil.Date {
	if t == nil {
		return nil
	}
	dates := make([]civil.Date, 0, len(t.rows))
	for d := range t.rows {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, compareDates)
	return dates
}

// LastDate returns the most recent date in the table.
func (t *Table) LastDate() (civil.Date, bool) {
	var last civil.Date
	found := false
	if t == nil {
		return last, false
	}
	for d := range t.rows {
		if !found || d.After(last) {
			last = d
			found = true
		}
	}
	return last, found
}

// EnsureRow creates an all-missing row for d if none exists.
func (t *Table) EnsureRow(d civil.Date) {
	if _, ok := t.rows[d]; !ok {
		t.rows[d] = nil
	}
}

// Set stores c at (d, column), creating the row and column as needed.
func (t *Table) Set(d civil.Date, column string, c Cell) {
	t.AddColumn(column)
	i := t.index[column]
	row := t.rows[d]
	if len(row) <= i {
		grown := make([]Cell, len(t.columns))
		copy(grown, row)
		row = grown
	}
	row[i] = c
	t.rows[d] = row
}

// Get returns the cell at (d, column). Unknown rows and columns read as
// missing.
func (t *Table) Get(d civil.Date, column string) Cell {
	if t == nil {
		return Missing
	}
	i, ok := t.index[column]
	if !ok {
		return Missing
	}
	return cellAt(t.rows[d], i)
}

// Equal reports whether both tables have the same columns in the same order,
// the same dates, and equal cells.
func (t *Table) Equal(o *Table) bool {
	if !slices.Equal(t.Columns(), o.Columns()) || t.Len() != o.Len() {
		return false
	}
	if t == nil || o == nil {
		return true
	}
	for d, row := range t.rows {
		other, ok := o.rows[d]
		if !ok {
			return false
		}
		for i := range t.columns {
			if !CellsEqual(cellAt(row, i), cellAt(other, i)) {
				return false
			}
		}
	}
	return true
}

// CellsEqual compares two cells by value; two missing cells are equal.
func CellsEqual(a, b Cell) bool {
	if a.Valid != b.Valid {
		return false
	}
	return !a.Valid || a.Decimal.Equal(b.Decimal)
}

func cellAt(row []Cell, i int) Cell {
	if i < len(row) {
		return row[i]
	}
	return Missing
}

func compareDates(a, b civil.Date) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}
