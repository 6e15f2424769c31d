package tickers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gocarina/gocsv"

	"github.com/rickgao/pricesync/internal/gsheet"
	"github.com/rickgao/pricesync/internal/model"
)

// ErrNoColumn is returned when the ticker column is absent from the header.
var ErrNoColumn = errors.New("ticker column not found")

// Source returns raw ticker text in list order.
type Source interface {
	Tickers(ctx context.Context) ([]string, error)
}

// FileSource reads a CSV file with a header row.
type FileSource struct {
	Path   string
	Column string
}

func (s *FileSource) Tickers(ctx context.Context) ([]string, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.Path, err)
	}
	defer f.Close()

	records, err := gocsv.CSVToMaps(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	key, ok := findKey(records[0], s.Column)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %q", s.Path, ErrNoColumn, s.Column)
	}

	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r[key]
	}
	return out, nil
}

func findKey(record map[string]string, column string) (string, bool) {
	for k := range record {
		if strings.EqualFold(strings.TrimSpace(k), column) {
			return k, true
		}
	}
	return "", false
}

// SheetSource reads a spreadsheet range whose first row is a header.
type SheetSource struct {
	Values        gsheet.Values
	SpreadsheetID string
	Range         string
	Column        string
}

func (s *SheetSource) Tickers(ctx context.Context) ([]string, error) {
	rows, err := s.Values.Get(ctx, s.SpreadsheetID, s.Range)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	col := -1
	for i, h := range rows[0] {
		if strings.EqualFold(strings.TrimSpace(h), s.Column) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("%s: %w: %q", s.Range, ErrNoColumn, s.Column)
	}

	out := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if col < len(row) {
			out = append(out, row[col])
		}
	}
	return out, nil
}

// LoadConfig controls retries of the ticker read.
type LoadConfig struct {
	MaxAttempts    int
	InitialBackoff time.Duration
}

// Load reads the ticker list with retries and returns normalized symbols,
// blanks and repeats removed. A missing ticker column is not retried.
func Load(ctx context.Context, src Source, cfg LoadConfig, logger *slog.Logger) ([]model.Symbol, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	eb := backoff.NewExponentialBackOff()
	if cfg.InitialBackoff > 0 {
		eb.InitialInterval = cfg.InitialBackoff
	}
	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(cfg.MaxAttempts-1)), ctx)

	var raw []string
	err := backoff.RetryNotify(func() error {
		var err error
		raw, err = src.Tickers(ctx)
		if errors.Is(err, ErrNoColumn) || errors.Is(err, os.ErrNotExist) {
			return backoff.Permanent(err)
		}
		return err
	}, b, func(err error, wait time.Duration) {
		logger.Warn("ticker list read failed, retrying", "err", err, "backoff", wait)
	})
	if err != nil {
		return nil, fmt.Errorf("load tickers: %w", err)
	}

	symbols := model.NormalizeSymbols(raw)
	logger.Info("tickers loaded", "raw", len(raw), "symbols", len(symbols))
	return symbols, nil
}
