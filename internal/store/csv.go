package store

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/rickgao/pricesync/internal/table"
)

// decodeCSV parses a stored history. Rows may be ragged; FromRecords pads
// short rows and rejects wide ones.
func decodeCSV(r io.Reader) (*table.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, malformed(err)
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}

	t, err := table.FromRecords(records)
	if err != nil {
		if errors.Is(err, table.ErrNoDateColumn) {
			return nil, err
		}
		return nil, malformed(err)
	}
	return t, nil
}

func encodeCSV(t *table.Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(t.Records()); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	return buf.Bytes(), nil
}
