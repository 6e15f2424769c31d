package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/rickgao/pricesync/internal/config"
	"github.com/rickgao/pricesync/internal/model"
	"github.com/rickgao/pricesync/internal/provider"
	"github.com/rickgao/pricesync/internal/store"
	"github.com/rickgao/pricesync/internal/table"
	"github.com/rickgao/pricesync/internal/tickers"
	"github.com/rickgao/pricesync/internal/writer"
)

// Validator filters symbols down to those the provider knows.
type Validator interface {
	Validate(ctx context.Context, symbols []model.Symbol) ([]model.Symbol, error)
}

// Persister writes the merged table.
type Persister interface {
	Persist(ctx context.Context, t *table.Table) (writer.Result, error)
}

// statsReporter is a Persister that keeps activity counters.
type statsReporter interface {
	Stats() writer.Metrics
}

// Config holds pipeline configuration.
type Config struct {
	Mode      string     // config.ModeFull or config.ModeIncremental
	StartDate table.Date // first date of a full history
	Tickers   tickers.LoadConfig
	Read      store.ReadConfig
}

// Deps are the collaborators of one run.
type Deps struct {
	Tickers   tickers.Source
	Validator Validator
	Provider  provider.Provider
	Store     store.Reader
	Writer    Persister
}

// Pipeline runs syncs.
type Pipeline struct {
	cfg    Config
	deps   Deps
	logger *slog.Logger

	now   func() time.Time
	newID func() string
}

// New creates a Pipeline.
func New(cfg Config, deps Deps, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		cfg:    cfg,
		deps:   deps,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Run performs one sync. Expected empty outcomes are reported through
// Report.Status; errors are FatalError values or context errors.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	start := time.Now()
	rep := Report{RunID: p.newID(), Mode: p.cfg.Mode}
	logger := p.logger.With("run_id", rep.RunID)

	logger.Info("run started", "mode", p.cfg.Mode, "provider", p.deps.Provider.Name())

	symbols, err := tickers.Load(ctx, p.deps.Tickers, p.cfg.Tickers, logger)
	if err != nil {
		if ctx.Err() != nil {
			return rep, ctx.Err()
		}
		return rep, &FatalError{Op: "load tickers", Err: err}
	}
	rep.Tickers = len(symbols)

	valid, err := p.deps.Validator.Validate(ctx, symbols)
	if err != nil {
		return rep, fmt.Errorf("validate symbols: %w", err)
	}
	rep.ValidSymbols = len(valid)
	if len(valid) == 0 {
		return p.finish(logger, rep, StatusNoValidSymbols, start), nil
	}

	prior := store.LoadPrior(ctx, p.deps.Store, p.cfg.Read, logger)
	if err := ctx.Err(); err != nil {
		return rep, err
	}
	rep.PriorRows = prior.Table.Len()

	rep.From, rep.To = p.window(prior)
	if !rep.From.Before(rep.To) {
		logger.Info("empty fetch window", "from", rep.From, "to", rep.To)
		return p.finish(logger, rep, StatusNoData, start), nil
	}

	fresh, err := provider.Fetch(ctx, p.deps.Provider, valid, rep.From, rep.To, logger)
	if err != nil {
		return rep, fmt.Errorf("fetch: %w", err)
	}
	rep.FreshRows = fresh.Len()
	if fresh.Empty() {
		return p.finish(logger, rep, StatusNoData, start), nil
	}

	if prior.Exists && table.Covers(prior.Table, fresh) {
		rep.MergedRows = rep.PriorRows
		logger.Info("store already up to date, skipping write")
		return p.finish(logger, rep, StatusNoNewData, start), nil
	}

	merged := table.Merge(prior.Table, fresh)
	rep.MergedRows = merged.Len()
	logger.Info("merged",
		"prior_rows", rep.PriorRows,
		"fresh_rows", rep.FreshRows,
		"merged_rows", rep.MergedRows,
		"columns", len(merged.Columns()),
	)

	res, err := p.deps.Writer.Persist(ctx, merged)
	rep.Write = res
	if err != nil {
		return rep, &FatalError{Op: "persist", Err: err}
	}

	status := StatusUpdated
	if res.Status == writer.StatusFellBack {
		status = StatusFellBack
	}
	return p.finish(logger, rep, status, start), nil
}

// window returns the fetch range [from, to). Incremental runs restart at
// the last stored date so a provisional close for that day is refreshed.
func (p *Pipeline) window(prior store.Prior) (from, to table.Date) {
	from = p.cfg.StartDate
	if p.cfg.Mode == config.ModeIncremental && prior.Exists {
		if last, ok := prior.Table.LastDate(); ok {
			from = last
		}
	}
	return from, civil.DateOf(p.now())
}

func (p *Pipeline) finish(logger *slog.Logger, rep Report, status Status, start time.Time) Report {
	rep.Status = status
	attrs := []any{
		"status", status,
		"tickers", rep.Tickers,
		"valid_symbols", rep.ValidSymbols,
		"prior_rows", rep.PriorRows,
		"fresh_rows", rep.FreshRows,
		"merged_rows", rep.MergedRows,
		"destination", rep.Write.Destination,
		"duration", time.Since(start),
	}
	if sr, ok := p.deps.Writer.(statsReporter); ok {
		rep.WriterStats = sr.Stats()
		attrs = append(attrs, slog.Group("writer",
			"writes", rep.WriterStats.Writes,
			"retries", rep.WriterStats.Retries,
			"chunks", rep.WriterStats.Chunks,
			"clears", rep.WriterStats.Clears,
			"fallbacks", rep.WriterStats.Fallbacks,
		))
	}
	logger.Info("run complete", attrs...)
	return rep
}
