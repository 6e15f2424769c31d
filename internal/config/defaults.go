package config

import (
	"path/filepath"
	"strings"
	"time"
)

// Default values for optional configuration fields.
const (
	DefaultInstanceID          = "pricesync"
	DefaultMode                = ModeIncremental
	DefaultStartDate           = "2015-01-02"
	DefaultTickersSource       = SourceFile
	DefaultTickersPath         = "Tickers_Codes.csv"
	DefaultTickersRange        = "Sheet1"
	DefaultTickersColumn       = "ticker"
	DefaultTickersMaxAttempts  = 3
	DefaultProvider            = ProviderYahoo
	DefaultYahooURL            = "https://query1.finance.yahoo.com"
	DefaultAPITimeout          = 30 * time.Second
	DefaultMaxRetries          = 3
	DefaultRetryBackoff        = 1 * time.Second
	DefaultValidateConcurrency = 1
	DefaultBackend             = BackendFile
	DefaultStorePath           = "Historical_Stocks.csv"
	DefaultSheetTab            = "Sheet1"
	DefaultDBPort              = 5432
	DefaultDBSSLMode           = "prefer"
	DefaultMaxConns            = 4
	DefaultMinConns            = 1
	DefaultPostgresTable       = "close_prices"
	DefaultS3Key               = "Historical_Stocks.csv"
	DefaultChunkSize           = 500
	DefaultMaxAttempts         = 3
	DefaultInitialBackoff      = 2 * time.Second
	DefaultMaxBackoff          = 30 * time.Second
	DefaultChunkPause          = 1 * time.Second
	DefaultFallbackPath        = "Historical_Stocks.csv"
	DefaultLogLevel            = "info"
	DefaultLogFormat           = "text"
)

// ApplyDefaults fills every unset optional field.
func (c *Config) ApplyDefaults() {
	if c.Instance.ID == "" {
		c.Instance.ID = DefaultInstanceID
	}

	// Run defaults
	if c.Run.Mode == "" {
		c.Run.Mode = DefaultMode
	}
	if c.Run.StartDate == "" {
		c.Run.StartDate = DefaultStartDate
	}

	// Tickers defaults
	if c.Tickers.Source == "" {
		c.Tickers.Source = DefaultTickersSource
	}
	if c.Tickers.Source == SourceFile && c.Tickers.Path == "" {
		c.Tickers.Path = DefaultTickersPath
	}
	if c.Tickers.Range == "" {
		c.Tickers.Range = DefaultTickersRange
	}
	if c.Tickers.Column == "" {
		c.Tickers.Column = DefaultTickersColumn
	}
	if c.Tickers.MaxAttempts == 0 {
		c.Tickers.MaxAttempts = DefaultTickersMaxAttempts
	}

	// Provider defaults
	if c.Provider.Name == "" {
		c.Provider.Name = DefaultProvider
	}
	if c.Provider.Name == ProviderYahoo && c.Provider.RestURL == "" {
		c.Provider.RestURL = DefaultYahooURL
	}
	if c.Provider.Timeout == 0 {
		c.Provider.Timeout = DefaultAPITimeout
	}
	if c.Provider.MaxRetries == 0 {
		c.Provider.MaxRetries = DefaultMaxRetries
	}
	if c.Provider.RetryBackoff == 0 {
		c.Provider.RetryBackoff = DefaultRetryBackoff
	}
	if c.Provider.ValidateConcurrency == 0 {
		c.Provider.ValidateConcurrency = DefaultValidateConcurrency
	}

	// Store defaults
	if c.Store.Backend == "" {
		c.Store.Backend = DefaultBackend
	}
	if c.Store.File.Path == "" {
		c.Store.File.Path = DefaultStorePath
	}
	if c.Store.Sheet.Tab == "" {
		c.Store.Sheet.Tab = DefaultSheetTab
	}
	applyDBDefaults(&c.Store.Postgres.DB)
	if c.Store.Postgres.Table == "" {
		c.Store.Postgres.Table = DefaultPostgresTable
	}
	if c.Store.S3.Key == "" {
		c.Store.S3.Key = DefaultS3Key
	}

	// Writer defaults
	if c.Writer.ChunkSize == 0 {
		c.Writer.ChunkSize = DefaultChunkSize
	}
	if c.Writer.MaxAttempts == 0 {
		c.Writer.MaxAttempts = DefaultMaxAttempts
	}
	if c.Writer.InitialBackoff == 0 {
		c.Writer.InitialBackoff = DefaultInitialBackoff
	}
	if c.Writer.MaxBackoff == 0 {
		c.Writer.MaxBackoff = DefaultMaxBackoff
	}
	if c.Writer.ChunkPause == nil {
		pause := DefaultChunkPause
		c.Writer.ChunkPause = &pause
	}

	if c.Fallback.Path == "" {
		c.Fallback.Path = DefaultFallbackPath
		if c.Store.Backend == BackendFile {
			c.Fallback.Path = fallbackBeside(c.Store.File.Path)
		}
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}

// fallbackBeside names the fallback for a file store: history.csv -> history.fallback.csv.
func fallbackBeside(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".fallback" + ext
}
