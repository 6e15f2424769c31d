package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"cloud.google.com/go/civil"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/rickgao/pricesync/internal/api"
	"github.com/rickgao/pricesync/internal/config"
	"github.com/rickgao/pricesync/internal/database"
	"github.com/rickgao/pricesync/internal/gsheet"
	"github.com/rickgao/pricesync/internal/pipeline"
	"github.com/rickgao/pricesync/internal/provider"
	"github.com/rickgao/pricesync/internal/store"
	"github.com/rickgao/pricesync/internal/tickers"
	"github.com/rickgao/pricesync/internal/validator"
	"github.com/rickgao/pricesync/internal/version"
	"github.com/rickgao/pricesync/internal/writer"
)

// app owns the clients built for one run.
type app struct {
	pipeline *pipeline.Pipeline
	pool     *pgxpool.Pool
}

func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

func build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{}

	start, err := civil.ParseDate(cfg.Run.StartDate)
	if err != nil {
		return nil, fmt.Errorf("run.start_date: %w", err)
	}

	var sheets *gsheet.Client
	if cfg.Tickers.Source == config.SourceSheet || cfg.Store.Backend == config.BackendSheet {
		sheets, err = newSheets(ctx, cfg.Google, logger)
		if err != nil {
			return nil, err
		}
	}

	var src tickers.Source
	switch cfg.Tickers.Source {
	case config.SourceSheet:
		src = &tickers.SheetSource{
			Values:        sheets,
			SpreadsheetID: cfg.Tickers.SpreadsheetID,
			Range:         cfg.Tickers.Range,
			Column:        cfg.Tickers.Column,
		}
	default:
		src = &tickers.FileSource{Path: cfg.Tickers.Path, Column: cfg.Tickers.Column}
	}

	prov := newProvider(cfg.Provider, logger)

	dest, err := a.newStore(ctx, cfg.Store, sheets)
	if err != nil {
		return nil, err
	}

	w := writer.New(writer.Config{
		ChunkSize:      cfg.Writer.ChunkSize,
		MaxAttempts:    cfg.Writer.MaxAttempts,
		InitialBackoff: cfg.Writer.InitialBackoff,
		MaxBackoff:     cfg.Writer.MaxBackoff,
		ChunkPause:     cfg.Writer.Pause(),
	}, dest, store.NewFile(cfg.Fallback.Path), logger)

	v := validator.New(validator.Config{
		Concurrency: cfg.Provider.ValidateConcurrency,
		Timeout:     cfg.Provider.Timeout,
	}, prov, logger)

	a.pipeline = pipeline.New(pipeline.Config{
		Mode:      cfg.Run.Mode,
		StartDate: start,
		Tickers: tickers.LoadConfig{
			MaxAttempts:    cfg.Tickers.MaxAttempts,
			InitialBackoff: cfg.Writer.InitialBackoff,
		},
		Read: store.ReadConfig{
			MaxAttempts:    cfg.Writer.MaxAttempts,
			InitialBackoff: cfg.Writer.InitialBackoff,
		},
	}, pipeline.Deps{
		Tickers:   src,
		Validator: v,
		Provider:  prov,
		Store:     dest,
		Writer:    w,
	}, logger.With("instance_id", cfg.Instance.ID))

	logger.Info("initialized",
		"provider", prov.Name(),
		"store", dest.Name(),
		"fallback", cfg.Fallback.Path,
		"mode", cfg.Run.Mode,
	)
	return a, nil
}

func newSheets(ctx context.Context, cfg config.GoogleConfig, logger *slog.Logger) (*gsheet.Client, error) {
	creds, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read google credentials: %w", err)
	}
	svc, err := gsheet.NewService(ctx, creds)
	if err != nil {
		return nil, err
	}
	return gsheet.New(svc, logger), nil
}

func newProvider(cfg config.ProviderConfig, logger *slog.Logger) provider.Provider {
	switch cfg.Name {
	case config.ProviderPolygon:
		return provider.NewPolygon(cfg.APIKey)
	default:
		client := api.NewClient(cfg.RestURL,
			api.WithLogger(logger),
			api.WithTimeout(cfg.Timeout),
			api.WithRetries(cfg.MaxRetries, cfg.RetryBackoff),
			api.WithUserAgent("Mozilla/5.0 (compatible; pricesync/"+version.Version+")"),
		)
		return provider.NewYahoo(client)
	}
}

func (a *app) newStore(ctx context.Context, cfg config.StoreConfig, sheets *gsheet.Client) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendSheet:
		return store.NewSheet(sheets, cfg.Sheet.SpreadsheetID, cfg.Sheet.Tab), nil

	case config.BackendPostgres:
		pool, err := database.Connect(ctx, cfg.Postgres.DB)
		if err != nil {
			return nil, err
		}
		a.pool = pool
		return store.NewPostgres(pool, cfg.Postgres.Table), nil

	case config.BackendS3:
		client, err := minio.New(cfg.S3.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey, ""),
			Secure: !cfg.S3.Insecure,
			Region: cfg.S3.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("create s3 client: %w", err)
		}
		return store.NewObject(client, cfg.S3.Bucket, cfg.S3.Key), nil

	default:
		return store.NewFile(cfg.File.Path), nil
	}
}
