package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/rickgao/pricesync/internal/api"
	"github.com/rickgao/pricesync/internal/model"
	"github.com/rickgao/pricesync/internal/store"
	"github.com/rickgao/pricesync/internal/table"
	"github.com/rickgao/pricesync/internal/tickers"
	"github.com/rickgao/pricesync/internal/validator"
	"github.com/rickgao/pricesync/internal/writer"
)

func date(t *testing.T, s string) civil.Date {
	t.Helper()
	d, err := civil.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

// listSource is a fixed ticker list.
type listSource struct {
	tickers []string
	err     error
}

func (s *listSource) Tickers(context.Context) ([]string, error) { return s.tickers, s.err }

// fakeProvider serves canned closes and remembers the last window asked for.
type fakeProvider struct {
	closes   map[model.Symbol][]api.Observation
	from, to table.Date
	fetches  int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Closes(_ context.Context, s model.Symbol, from, to table.Date) ([]api.Observation, error) {
	f.from, f.to = from, to
	f.fetches++
	return f.closes[s], nil
}

func (f *fakeProvider) Probe(_ context.Context, s model.Symbol) ([]api.Observation, error) {
	obs, ok := f.closes[s]
	if !ok {
		return nil, errors.New("unknown symbol")
	}
	if len(obs) == 0 {
		// Known but quiet in the window; still a valid symbol.
		return []api.Observation{{}}, nil
	}
	return obs[len(obs)-1:], nil
}

// countingWriter wraps a Persister and counts calls.
type countingWriter struct {
	next  Persister
	calls int
}

func (c *countingWriter) Persist(ctx context.Context, t *table.Table) (writer.Result, error) {
	c.calls++
	return c.next.Persist(ctx, t)
}

func (c *countingWriter) Stats() writer.Metrics {
	if sr, ok := c.next.(statsReporter); ok {
		return sr.Stats()
	}
	return writer.Metrics{}
}

// failingStore is an atomic destination that always fails.
type failingStore struct{}

func (failingStore) Name() string                               { return "broken" }
func (failingStore) Read(context.Context) (*table.Table, error) { return nil, store.ErrNotFound }
func (failingStore) Replace(context.Context, *table.Table) error {
	return &store.TransientError{Err: errors.New("503")}
}

type harness struct {
	dir      string
	path     string
	fallback string
	provider *fakeProvider
	writer   *countingWriter
	pipeline *Pipeline
}

func newHarness(t *testing.T, mode string, list []string, closes map[model.Symbol][]api.Observation, dest store.Store) *harness {
	t.Helper()
	dir := t.TempDir()
	h := &harness{
		dir:      dir,
		path:     filepath.Join(dir, "Historical_Stocks.csv"),
		fallback: filepath.Join(dir, "Historical_Stocks.fallback.csv"),
		provider: &fakeProvider{closes: closes},
	}

	file := store.NewFile(h.path)
	if dest == nil {
		dest = file
	}
	wcfg := writer.Config{MaxAttempts: 2, InitialBackoff: time.Millisecond}
	h.writer = &countingWriter{next: writer.New(wcfg, dest, store.NewFile(h.fallback), nil)}

	h.pipeline = New(Config{
		Mode:      mode,
		StartDate: date(t, "2024-01-01"),
		Tickers:   tickers.LoadConfig{MaxAttempts: 1},
		Read:      store.ReadConfig{MaxAttempts: 1},
	}, Deps{
		Tickers:   &listSource{tickers: list},
		Validator: validator.New(validator.DefaultConfig(), h.provider, nil),
		Provider:  h.provider,
		Store:     dest,
		Writer:    h.writer,
	}, nil)
	h.pipeline.now = func() time.Time { return time.Date(2024, 1, 6, 18, 0, 0, 0, time.Local) }
	h.pipeline.newID = func() string { return "run-1" }
	return h
}

func (h *harness) seed(t *testing.T, content string) {
	t.Helper()
	if err := os.WriteFile(h.path, []byte(content), 0o644); err != nil {
		t.Fatalf("seed store: %v", err)
	}
}

func (h *harness) stored(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(h.path)
	if err != nil {
		t.Fatalf("read store: %v", err)
	}
	return string(data)
}

func obs(t *testing.T, d, v string) api.Observation {
	t.Helper()
	return api.Observation{Date: date(t, d), Close: decimal.RequireFromString(v)}
}
