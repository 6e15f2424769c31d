package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rickgao/pricesync/internal/gsheet"
	"github.com/rickgao/pricesync/internal/table"
)

// Sheet stores the history on one spreadsheet tab, header in row 1.
type Sheet struct {
	values        gsheet.Values
	spreadsheetID string
	tab           string
}

// NewSheet creates a sheet store.
func NewSheet(values gsheet.Values, spreadsheetID, tab string) *Sheet {
	if tab == "" {
		tab = gsheet.DefaultTab
	}
	return &Sheet{values: values, spreadsheetID: spreadsheetID, tab: tab}
}

func (s *Sheet) Name() string { return "sheet:" + s.spreadsheetID + "/" + s.tab }

func (s *Sheet) Read(ctx context.Context) (*table.Table, error) {
	rows, err := s.values.Get(ctx, s.spreadsheetID, gsheet.Tab(s.tab))
	if err != nil {
		return nil, transient(err, gsheet.IsTransient(err))
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	t, err := table.FromRecords(rows)
	if err != nil {
		if errors.Is(err, table.ErrNoDateColumn) {
			return nil, err
		}
		return nil, malformed(err)
	}
	return t, nil
}

func (s *Sheet) WriteRows(ctx context.Context, offset int, records [][]string) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([][]any, len(records))
	for i, rec := range records {
		rows[i] = sheetRow(rec, offset+i == 0)
	}

	err := s.values.Update(ctx, s.spreadsheetID, gsheet.Cell(s.tab, offset+1, 1), rows)
	if err != nil {
		return transient(err, gsheet.IsTransient(err))
	}
	return nil
}

// ClearStale empties every cell outside the first rows x cols block. The
// extent comes from the tab's grid, not from what this process has read,
// so leftovers of an earlier layout go even when the prior read failed.
func (s *Sheet) ClearStale(ctx context.Context, rows, cols int) error {
	gridCols, err := s.values.Columns(ctx, s.spreadsheetID, s.tab)
	if err != nil {
		return transient(fmt.Errorf("grid size: %w", err), gsheet.IsTransient(err))
	}
	width := max(gridCols, cols, 1)

	if width > cols {
		a1 := gsheet.Block(s.tab, 1, cols+1, width)
		if err := s.values.Clear(ctx, s.spreadsheetID, a1); err != nil {
			return transient(fmt.Errorf("clear stale columns: %w", err), gsheet.IsTransient(err))
		}
	}

	a1 := gsheet.Block(s.tab, rows+1, 1, width)
	if err := s.values.Clear(ctx, s.spreadsheetID, a1); err != nil {
		return transient(fmt.Errorf("clear stale rows: %w", err), gsheet.IsTransient(err))
	}
	return nil
}

// sheetRow converts a record for a RAW write: the header and the date stay
// text, prices go out as bare JSON numbers so the sheet stores them as
// numbers at full precision.
func sheetRow(rec []string, header bool) []any {
	row := make([]any, len(rec))
	for i, v := range rec {
		if header || i == 0 || v == "" {
			row[i] = v
			continue
		}
		row[i] = json.Number(v)
	}
	return row
}
