package validator

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/pricesync/internal/api"
	"github.com/rickgao/pricesync/internal/model"
)

// Prober runs a minimal query for one symbol.
type Prober interface {
	Probe(ctx context.Context, symbol model.Symbol) ([]api.Observation, error)
}

// Config holds validator configuration.
type Config struct {
	Concurrency int           // Max concurrent probes (default: 1)
	Timeout     time.Duration // Per-probe timeout (default: 30s)
}

// DefaultConfig returns sequential probing.
func DefaultConfig() Config {
	return Config{
		Concurrency: 1,
		Timeout:     30 * time.Second,
	}
}

// Validator filters a symbol list down to symbols the provider knows.
type Validator struct {
	cfg    Config
	prober Prober
	logger *slog.Logger
}

// New creates a new Validator.
func New(cfg Config, prober Prober, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Validator{
		cfg:    cfg,
		prober: prober,
		logger: logger,
	}
}

// Validate returns the symbols whose probe produced data, in input order.
// It only fails when ctx is done.
func (v *Validator) Validate(ctx context.Context, symbols []model.Symbol) ([]model.Symbol, error) {
	start := time.Now()
	ok := make([]bool, len(symbols))
	var invalid atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.cfg.Concurrency)

	for i, sym := range symbols {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := v.probe(gctx, sym); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				v.logger.Warn("invalid symbol",
					"symbol", sym,
					"err", err,
				)
				invalid.Add(1)
				return nil
			}
			ok[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	valid := make([]model.Symbol, 0, len(symbols))
	for i, sym := range symbols {
		if ok[i] {
			valid = append(valid, sym)
		}
	}

	v.logger.Info("validation complete",
		"symbols", len(symbols),
		"valid", len(valid),
		"invalid", invalid.Load(),
		"duration", time.Since(start),
	)

	return valid, nil
}

var errNoData = errors.New("probe returned no data")

func (v *Validator) probe(ctx context.Context, sym model.Symbol) error {
	if v.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.cfg.Timeout)
		defer cancel()
	}

	obs, err := v.prober.Probe(ctx, sym)
	if err != nil {
		return err
	}
	if len(obs) == 0 {
		return errNoData
	}
	return nil
}
