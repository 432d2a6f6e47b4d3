// Package log provides the service's structured logging facade.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// Field type for structured context. Output is a single line per entry in
// either text or JSON form.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	)
//	l = l.With(log.Component("dispatcher"), log.Str("key", "alice"))
//	l.Info("message persisted", log.Uint64("id", 42))
//
// # Configuration
//
// Use ApplyConfig to build a logger from a declarative Config (level and
// format), typically fed from SMS_LOG_LEVEL / SMS_LOG_FORMAT.
//
// # Interop
//
// RedirectStdLog routes the standard library default logger (used by some
// dependencies) through a Logger instance.
package log
