package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"time"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	switch c.Run.Mode {
	case ModeFull, ModeIncremental:
	default:
		return fmt.Errorf("run.mode must be %q or %q, got %q", ModeFull, ModeIncremental, c.Run.Mode)
	}
	if _, err := time.Parse(time.DateOnly, c.Run.StartDate); err != nil {
		return fmt.Errorf("run.start_date must be YYYY-MM-DD, got %q", c.Run.StartDate)
	}

	if err := c.Tickers.validate(); err != nil {
		return err
	}
	if c.Tickers.Source == SourceSheet && c.Google.CredentialsFile == "" {
		return errors.New("google.credentials_file is required for tickers.source sheet")
	}

	if err := c.Provider.validate(); err != nil {
		return err
	}

	if err := c.Store.validate(); err != nil {
		return err
	}
	if c.Store.Backend == BackendSheet && c.Google.CredentialsFile == "" {
		return errors.New("google.credentials_file is required for store.backend sheet")
	}
	if c.Store.Backend == BackendFile && filepath.Clean(c.Store.File.Path) == filepath.Clean(c.Fallback.Path) {
		return errors.New("fallback.path must differ from store.file.path")
	}

	if c.Writer.ChunkSize < 1 {
		return errors.New("writer.chunk_size must be >= 1")
	}
	if c.Writer.MaxAttempts < 1 {
		return errors.New("writer.max_attempts must be >= 1")
	}
	if c.Writer.MaxBackoff < c.Writer.InitialBackoff {
		return fmt.Errorf("writer.max_backoff (%s) cannot be less than initial_backoff (%s)", c.Writer.MaxBackoff, c.Writer.InitialBackoff)
	}

	if c.Writer.Pause() < 0 {
		return fmt.Errorf("writer.chunk_pause cannot be negative, got %s", c.Writer.Pause())
	}

	if c.Fallback.Path == "" {
		return errors.New("fallback.path is required")
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	return nil
}

func (t *TickersConfig) validate() error {
	switch t.Source {
	case SourceFile:
		if t.Path == "" {
			return errors.New("tickers.path is required")
		}
	case SourceSheet:
		if t.SpreadsheetID == "" {
			return errors.New("tickers.spreadsheet_id is required")
		}
	default:
		return fmt.Errorf("tickers.source must be %q or %q, got %q", SourceFile, SourceSheet, t.Source)
	}
	if t.MaxAttempts < 1 {
		return errors.New("tickers.max_attempts must be >= 1")
	}
	return nil
}

func (p *ProviderConfig) validate() error {
	switch p.Name {
	case ProviderYahoo:
		if p.RestURL == "" {
			return errors.New("provider.rest_url is required")
		}
	case ProviderPolygon:
		if p.APIKey == "" {
			return errors.New("provider.api_key is required for polygon")
		}
	default:
		return fmt.Errorf("provider.name must be %q or %q, got %q", ProviderYahoo, ProviderPolygon, p.Name)
	}
	if p.MaxRetries < 0 {
		return errors.New("provider.max_retries must be >= 0")
	}
	if p.ValidateConcurrency < 1 {
		return errors.New("provider.validate_concurrency must be >= 1")
	}
	return nil
}

func (s *StoreConfig) validate() error {
	switch s.Backend {
	case BackendFile:
		if s.File.Path == "" {
			return errors.New("store.file.path is required")
		}
	case BackendSheet:
		if s.Sheet.SpreadsheetID == "" {
			return errors.New("store.sheet.spreadsheet_id is required")
		}
	case BackendPostgres:
		if err := s.Postgres.DB.validate("store.postgres.db"); err != nil {
			return err
		}
		if !identRe.MatchString(s.Postgres.Table) {
			return fmt.Errorf("store.postgres.table %q is not a valid identifier", s.Postgres.Table)
		}
	case BackendS3:
		if s.S3.Endpoint == "" {
			return errors.New("store.s3.endpoint is required")
		}
		if s.S3.Bucket == "" {
			return errors.New("store.s3.bucket is required")
		}
	default:
		return fmt.Errorf("store.backend must be one of file, sheet, postgres, s3, got %q", s.Backend)
	}
	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
