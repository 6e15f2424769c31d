package table

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Date is a calendar date without time of day or zone.
type Date = civil.Date

// DateHeader is the header of the key column.
const DateHeader = "Date"

var (
	// ErrNoDateColumn is returned by FromRecords when there is no header row or
	// the header has no Date column.
	ErrNoDateColumn = errors.New("table: no Date column")

	// ErrMalformed wraps every other decoding failure.
	ErrMalformed = errors.New("table: malformed data")
)

// missingMarkers are cell texts that older writers left behind for absent
// observations.
var missingMarkers = map[string]struct{}{
	"":     {},
	"nan":  {},
	"NaN":  {},
	"None": {},
	"null": {},
	"<NA>": {},
}

var dateLayouts = []string{
	time.DateOnly,
	time.DateTime,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05-07:00",
	"1/2/2006",
}

// ParseDate parses s as a calendar date, discarding any time of day.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("parse date %q", s)
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	return civil.DateOf(t)
}

// FormatCell renders c in its storage form.
func FormatCell(c Cell) string {
	if !c.Valid {
		return ""
	}
	return c.Decimal.String()
}

// ParseCell parses the storage form of a cell. Legacy missing markers read as
// Missing.
func ParseCell(s string) (Cell, error) {
	s = strings.TrimSpace(s)
	if _, ok := missingMarkers[s]; ok {
		return Missing, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Missing, fmt.Errorf("parse cell %q: %w", s, err)
	}
	return Value(d), nil
}

// Records serializes t as a header row followed by one row per date in
// ascending order.
func (t *Table) Records() [][]string {
	columns := t.Columns()
	header := make([]string, 0, len(columns)+1)
	header = append(header, DateHeader)
	header = append(header, columns...)

	records := make([][]string, 0, t.Len()+1)
	records = append(records, header)
	for _, d := range t.Dates() {
		row := t.rows[d]
		rec := make([]string, 0, len(columns)+1)
		rec = append(rec, d.String())
		for i := range columns {
			rec = append(rec, FormatCell(cellAt(row, i)))
		}
		records = append(records, rec)
	}
	return records
}

// FromRecords decodes a header row plus data rows. Rows shorter than the
// header are padded with missing cells. When a date repeats, the later row
// wins.
func FromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, ErrNoDateColumn
	}
	header := records[0]
	dateCol := -1
	for i, h := range header {
		if strings.TrimSpace(h) == DateHeader {
			dateCol = i
			break
		}
	}
	if dateCol < 0 {
		return nil, ErrNoDateColumn
	}

	t := New()
	names := make([]string, len(header))
	for i, h := range header {
		if i == dateCol {
			continue
		}
		name := strings.TrimSpace(h)
		if name == "" {
			return nil, fmt.Errorf("%w: empty header in column %d", ErrMalformed, i+1)
		}
		if !t.AddColumn(name) {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrMalformed, name)
		}
		names[i] = name
	}

	for n, rec := range records[1:] {
		line := n + 2
		if isBlank(rec) {
			continue
		}
		if len(rec) > len(header) {
			return nil, fmt.Errorf("%w: row %d has %d cells, header has %d", ErrMalformed, line, len(rec), len(header))
		}
		if dateCol >= len(rec) {
			return nil, fmt.Errorf("%w: row %d has no date", ErrMalformed, line)
		}
		d, err := ParseDate(rec[dateCol])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformed, line, err)
		}
		row := make([]Cell, len(t.columns))
		for i, raw := range rec {
			if i == dateCol {
				continue
			}
			c, err := ParseCell(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d: %v", ErrMalformed, line, err)
			}
			row[t.index[names[i]]] = c
		}
		t.rows[d] = row
	}
	return t, nil
}

func isBlank(rec []string) bool {
	for _, s := range rec {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}
