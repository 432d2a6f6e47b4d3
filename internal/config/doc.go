// Package config provides loading and environment overlay for the message
// service configuration. It exposes a Default() baseline, JSON file loading,
// and an SMS_* environment overlay.
//
// Example:
//
//	cfg := config.Default()
//	if fileCfg, err := config.Load("/etc/sms.json"); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
package config
