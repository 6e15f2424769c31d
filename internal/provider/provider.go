package provider

import (
	"context"
	"log/slog"
	"time"

	"github.com/rickgao/pricesync/internal/api"
	"github.com/rickgao/pricesync/internal/model"
	"github.com/rickgao/pricesync/internal/table"
)

// Provider returns daily adjusted closes for one symbol.
type Provider interface {
	// Name identifies the vendor in logs.
	Name() string

	// Closes returns observations with from <= date < to. An empty result
	// is not an error.
	Closes(ctx context.Context, symbol model.Symbol, from, to table.Date) ([]api.Observation, error)

	// Probe runs the vendor's smallest query for symbol.
	Probe(ctx context.Context, symbol model.Symbol) ([]api.Observation, error)
}

// Fetch collects closes for every symbol into one table whose columns follow
// the symbol order. A symbol whose fetch fails is logged and left without
// observations; the run carries on with the rest.
func Fetch(ctx context.Context, p Provider, symbols []model.Symbol, from, to table.Date, logger *slog.Logger) (*table.Table, error) {
	if logger == nil {
		logger = slog.Default()
	}

	t := table.New(model.Strings(symbols)...)
	start := time.Now()
	var failed int

	for _, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		obs, err := p.Closes(ctx, sym, from, to)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("fetch failed",
				"provider", p.Name(),
				"symbol", sym,
				"err", err,
			)
			failed++
			continue
		}

		for _, o := range obs {
			if o.Date.Before(from) || !o.Date.Before(to) {
				continue
			}
			t.Set(o.Date, string(sym), table.Value(o.Close))
		}
	}

	logger.Info("fetch complete",
		"provider", p.Name(),
		"symbols", len(symbols),
		"failed", failed,
		"rows", t.Len(),
		"from", from,
		"to", to,
		"duration", time.Since(start),
	)

	return t, nil
}
