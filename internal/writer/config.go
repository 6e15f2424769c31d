package writer

import "time"

// Config holds writer configuration.
type Config struct {
	ChunkSize      int           // Records per chunk on chunked destinations (default: 500)
	MaxAttempts    int           // Attempts per write, first try included (default: 3)
	InitialBackoff time.Duration // Wait before the first retry (default: 2s)
	MaxBackoff     time.Duration // Cap on a single wait (default: 30s)
	ChunkPause     time.Duration // Pause between chunk writes (0 disables)
}

// DefaultConfig returns the defaults used by the CLI.
func DefaultConfig() Config {
	return Config{
		ChunkSize:      500,
		MaxAttempts:    3,
		InitialBackoff: 2 * time.Second,
		MaxBackoff:     30 * time.Second,
		ChunkPause:     time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ChunkSize < 1 {
		c.ChunkSize = d.ChunkSize
	}
	if c.MaxAttempts < 1 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = d.InitialBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = d.MaxBackoff
	}
	if c.MaxBackoff < c.InitialBackoff {
		c.MaxBackoff = c.InitialBackoff
	}
	return c
}
