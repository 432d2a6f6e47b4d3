package config

import (
	"encoding/json"
	"os"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	// KeyPrefix is prepended to every external subscriber key before it is
	// used for storage or live-connection lookup. Empty by default.
	KeyPrefix string `json:"keyPrefix"`
	// DatabaseURL is the Postgres DSN for the durable message store. When
	// empty the process runs on the in-memory store (dev/test mode).
	DatabaseURL string `json:"databaseUrl"`
	// HTTPAddr is the HTTP listen address.
	HTTPAddr string `json:"httpAddr"`
	// DataDir holds the replay-cache store. Empty selects an OS default.
	DataDir string `json:"dataDir"`
	// DefaultPageLimit is the history page size when the caller omits limit.
	DefaultPageLimit int `json:"defaultPageLimit"`
	// ReplayCache enables the best-effort last-message cache consulted by
	// subscribers that request replay on connect.
	ReplayCache bool `json:"replayCache"`
	// LogLevel is one of debug|info|warn|error.
	LogLevel string `json:"logLevel"`
	// LogFormat is one of text|json.
	LogFormat string `json:"logFormat"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		KeyPrefix:        "",
		HTTPAddr:         ":3001",
		DefaultPageLimit: 10,
		ReplayCache:      true,
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// Load reads configuration from a JSON file. If path is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
