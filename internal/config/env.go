package config

import (
	"os"
	"strconv"
)

// FromEnv overlays SMS_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v, ok := lookupFirst("SMS_KEY_PREFIX", "APP_KEY_PREFIX"); ok {
		cfg.KeyPrefix = v
	}
	if v, ok := lookupFirst("SMS_DATABASE_URL", "DATABASE_URL"); ok {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("SMS_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("SMS_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("SMS_PAGE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DefaultPageLimit = n
		}
	}
	if v := os.Getenv("SMS_REPLAY_CACHE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.ReplayCache = b
		}
	}
	if v := os.Getenv("SMS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("SMS_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
}

// lookupFirst returns the first set variable among names. The legacy
// APP_KEY_PREFIX / DATABASE_URL spellings stay supported for existing
// deployments.
func lookupFirst(names ...string) (string, bool) {
	for _, name := range names {
		if v, ok := os.LookupEnv(name); ok {
			return v, true
		}
	}
	return "", false
}
