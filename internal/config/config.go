package config

import "time"

// Store backends.
const (
	BackendFile     = "file"
	BackendSheet    = "sheet"
	BackendPostgres = "postgres"
	BackendS3       = "s3"
)

// Ticker sources.
const (
	SourceFile  = "file"
	SourceSheet = "sheet"
)

// Date-range modes.
const (
	ModeFull        = "full"
	ModeIncremental = "incremental"
)

// Market data providers.
const (
	ProviderYahoo   = "yahoo"
	ProviderPolygon = "polygon"
)

// Config is the root configuration for one pricesync run.
type Config struct {
	Instance InstanceConfig `yaml:"instance"`
	Run      RunConfig      `yaml:"run"`
	Google   GoogleConfig   `yaml:"google"`
	Tickers  TickersConfig  `yaml:"tickers"`
	Provider ProviderConfig `yaml:"provider"`
	Store    StoreConfig    `yaml:"store"`
	Writer   WriterConfig   `yaml:"writer"`
	Fallback FallbackConfig `yaml:"fallback"`
	Log      LogConfig      `yaml:"log"`
}

// InstanceConfig names this job in logs.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// RunConfig selects the date range to fetch.
type RunConfig struct {
	Mode      string `yaml:"mode"`       // "full" or "incremental"
	StartDate string `yaml:"start_date"` // YYYY-MM-DD, first date of a full history
}

// GoogleConfig holds service-account credentials shared by every
// spreadsheet-backed component.
type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
}

// TickersConfig locates the ticker list.
type TickersConfig struct {
	Source        string `yaml:"source"` // "file" or "sheet"
	Path          string `yaml:"path"`
	SpreadsheetID string `yaml:"spreadsheet_id"`
	Range         string `yaml:"range"`  // A1 range or tab name
	Column        string `yaml:"column"` // header of the ticker column
	MaxAttempts   int    `yaml:"max_attempts"`
}

// ProviderConfig holds market data provider settings.
type ProviderConfig struct {
	Name                string        `yaml:"name"` // "yahoo" or "polygon"
	RestURL             string        `yaml:"rest_url"`
	APIKey              string        `yaml:"api_key"`
	Timeout             time.Duration `yaml:"timeout"`
	MaxRetries          int           `yaml:"max_retries"`
	RetryBackoff        time.Duration `yaml:"retry_backoff"`
	ValidateConcurrency int           `yaml:"validate_concurrency"`
}

// StoreConfig selects and configures the history store.
type StoreConfig struct {
	Backend  string         `yaml:"backend"`
	File     FileConfig     `yaml:"file"`
	Sheet    SheetConfig    `yaml:"sheet"`
	Postgres PostgresConfig `yaml:"postgres"`
	S3       S3Config       `yaml:"s3"`
}

// FileConfig is a local CSV store.
type FileConfig struct {
	Path string `yaml:"path"`
}

// SheetConfig is a spreadsheet tab store.
type SheetConfig struct {
	SpreadsheetID string `yaml:"spreadsheet_id"`
	Tab           string `yaml:"tab"`
}

// PostgresConfig is a Postgres table store.
type PostgresConfig struct {
	DB    DBConfig `yaml:"db"`
	Table string   `yaml:"table"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// S3Config is an object store holding the history as one CSV object.
type S3Config struct {
	Endpoint        string `yaml:"endpoint"`
	Bucket          string `yaml:"bucket"`
	Key             string `yaml:"key"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Region          string `yaml:"region"`
	Insecure        bool   `yaml:"insecure"`
}

// WriterConfig holds persistence writer settings.
type WriterConfig struct {
	ChunkSize      int            `yaml:"chunk_size"`
	MaxAttempts    int            `yaml:"max_attempts"`
	InitialBackoff time.Duration  `yaml:"initial_backoff"`
	MaxBackoff     time.Duration  `yaml:"max_backoff"`
	ChunkPause     *time.Duration `yaml:"chunk_pause"` // nil takes the default, 0 disables
}

// Pause returns the pause between chunk writes.
func (w WriterConfig) Pause() time.Duration {
	if w.ChunkPause == nil {
		return DefaultChunkPause
	}
	return *w.ChunkPause
}

// FallbackConfig locates the local fallback file.
type FallbackConfig struct {
	Path string `yaml:"path"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}
