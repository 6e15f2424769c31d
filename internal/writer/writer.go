package writer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/rickgao/pricesync/internal/store"
	"github.com/rickgao/pricesync/internal/table"
)

// errUnsupported is returned for destinations that are neither atomic nor
// chunked.
var errUnsupported = errors.New("unsupported destination")

// Status is the outcome of a Persist call.
type Status string

const (
	// StatusWritten means the configured destination holds the table.
	StatusWritten Status = "written"

	// StatusFellBack means the destination failed and the table was saved
	// to the fallback file instead.
	StatusFellBack Status = "fell_back"
)

// Result describes one Persist call.
type Result struct {
	Status      Status
	Destination string // where the table ended up
	Rows        int    // data rows, header excluded
	Chunks      int    // chunks written to a chunked destination
	Attempts    int    // write attempts against the primary destination
	Err         error  // primary failure when Status is StatusFellBack
}

// Metrics tracks writer activity across Persist calls.
type Metrics struct {
	Writes    int64
	Retries   int64
	Chunks    int64
	Clears    int64
	Fallbacks int64
}

// Writer persists merged tables to one destination with a local fallback.
type Writer struct {
	cfg      Config
	dest     store.Store
	fallback store.Atomic
	fbName   string
	logger   *slog.Logger

	// sleep waits between chunks; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error

	mu      sync.Mutex
	metrics Metrics
}

// New creates a Writer. dest must implement store.Atomic or store.Chunked.
func New(cfg Config, dest store.Store, fallback *store.File, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		cfg:      cfg.withDefaults(),
		dest:     dest,
		fallback: fallback,
		fbName:   fallback.Name(),
		logger:   logger,
		sleep:    sleepCtx,
	}
}

// Stats returns current metrics.
func (w *Writer) Stats() Metrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metrics
}

// Persist writes t to the destination. If any write exhausts its retries or
// fails permanently, t is written to the fallback file and the result
// reports StatusFellBack. An error is returned only when the fallback write
// fails too.
func (w *Writer) Persist(ctx context.Context, t *table.Table) (Result, error) {
	start := time.Now()
	res := Result{
		Destination: w.dest.Name(),
		Rows:        t.Len(),
	}

	var err error
	switch d := w.dest.(type) {
	case store.Chunked:
		err = w.writeChunked(ctx, d, t, &res)
	case store.Atomic:
		err = w.retry(ctx, "replace", &res, func() error {
			return d.Replace(ctx, t)
		})
	default:
		err = fmt.Errorf("%w: %s", errUnsupported, w.dest.Name())
	}

	if err == nil {
		res.Status = StatusWritten
		w.logger.Info("table written",
			"destination", res.Destination,
			"rows", res.Rows,
			"chunks", res.Chunks,
			"attempts", res.Attempts,
			"duration", time.Since(start),
		)
		return res, nil
	}

	w.logger.Error("write failed, saving fallback",
		"destination", res.Destination,
		"fallback", w.fbName,
		"attempts", res.Attempts,
		"err", err,
	)

	// The fallback must land even when the run is being cancelled.
	if ferr := w.fallback.Replace(context.WithoutCancel(ctx), t); ferr != nil {
		return res, fmt.Errorf("fallback %s: %w (destination error: %v)", w.fbName, ferr, err)
	}

	w.mu.Lock()
	w.metrics.Fallbacks++
	w.mu.Unlock()

	res.Status = StatusFellBack
	res.Destination = w.fbName
	res.Err = err
	w.logger.Warn("table saved to fallback", "path", w.fbName, "rows", res.Rows)
	return res, nil
}

// writeChunked writes records in order. The stale tail is cleared once,
// right after the first chunk succeeds.
func (w *Writer) writeChunked(ctx context.Context, d store.Chunked, t *table.Table, res *Result) error {
	records := t.Records()
	spans := Chunks(len(records), w.cfg.ChunkSize)

	for i, sp := range spans {
		if i > 0 && w.cfg.ChunkPause > 0 {
			if err := w.sleep(ctx, w.cfg.ChunkPause); err != nil {
				return err
			}
		}

		op := fmt.Sprintf("chunk %d/%d", i+1, len(spans))
		err := w.retry(ctx, op, res, func() error {
			return d.WriteRows(ctx, sp.Start, records[sp.Start:sp.End])
		})
		if err != nil {
			return fmt.Errorf("%s (records %d-%d): %w", op, sp.Start, sp.End-1, err)
		}

		res.Chunks++
		w.mu.Lock()
		w.metrics.Chunks++
		w.mu.Unlock()

		w.logger.Debug("chunk written",
			"chunk", i+1,
			"chunks", len(spans),
			"offset", sp.Start,
			"records", sp.Len(),
		)

		if i == 0 {
			err := w.retry(ctx, "clear stale", res, func() error {
				return d.ClearStale(ctx, len(records), len(t.Columns())+1)
			})
			if err != nil {
				return fmt.Errorf("clear stale: %w", err)
			}
			w.mu.Lock()
			w.metrics.Clears++
			w.mu.Unlock()
		}
	}
	return nil
}

// retry runs op up to MaxAttempts times. Only store.TransientError failures
// are retried.
func (w *Writer) retry(ctx context.Context, name string, res *Result, op func() error) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = w.cfg.InitialBackoff
	eb.MaxInterval = w.cfg.MaxBackoff
	eb.Multiplier = 2
	eb.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(w.cfg.MaxAttempts-1)), ctx)

	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		res.Attempts++
		w.mu.Lock()
		w.metrics.Writes++
		if attempt > 1 {
			w.metrics.Retries++
		}
		w.mu.Unlock()

		err := op()
		if err != nil && !store.IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, b, func(err error, wait time.Duration) {
		w.logger.Warn("write attempt failed, retrying",
			"op", name,
			"attempt", attempt,
			"max_attempts", w.cfg.MaxAttempts,
			"backoff", wait,
			"err", err,
		)
	})
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
