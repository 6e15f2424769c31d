package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/rickgao/pricesync/internal/table"
)

// Prior is the previously persisted table. When Exists is false the table
// is empty and Reason says why.
type Prior struct {
	Table  *table.Table
	Exists bool
	Reason string
}

// ReadConfig controls retries of transient read failures.
type ReadConfig struct {
	MaxAttempts    int
	InitialBackoff time.Duration
}

// LoadPrior reads r, retrying transient failures. It never fails: absent,
// empty and unreadable stores all come back as an empty Prior.
func LoadPrior(ctx context.Context, r Reader, cfg ReadConfig, logger *slog.Logger) Prior {
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

	var t *table.Table
	err := backoff.RetryNotify(func() error {
		var err error
		t, err = r.Read(ctx)
		if err != nil && !IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, b, func(err error, wait time.Duration) {
		logger.Warn("store read failed, retrying", "err", err, "backoff", wait)
	})

	switch {
	case errors.Is(err, ErrNotFound):
		logger.Info("no prior data", "reason", "not found")
		return empty("not found")
	case errors.Is(err, table.ErrNoDateColumn):
		logger.Info("no prior data", "reason", "no Date column")
		return empty("no Date column")
	case err != nil:
		logger.Warn("prior data unreadable, starting empty", "err", err)
		return empty(err.Error())
	case t.Empty():
		logger.Info("no prior data", "reason", "empty")
		return empty("empty")
	}

	last, _ := t.LastDate()
	logger.Info("prior data loaded",
		"rows", t.Len(),
		"columns", len(t.Columns()),
		"last_date", last,
	)
	return Prior{Table: t, Exists: true}
}

func empty(reason string) Prior {
	return Prior{Table: table.New(), Reason: reason}
}
