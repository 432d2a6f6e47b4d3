package serverrun

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	cfgpkg "github.com/kittors/simple-message-service/internal/config"
	"github.com/kittors/simple-message-service/internal/runtime"
	httpserver "github.com/kittors/simple-message-service/internal/server/http"
	pebblestore "github.com/kittors/simple-message-service/internal/storage/pebble"
	logpkg "github.com/kittors/simple-message-service/pkg/log"
)

type Options struct {
	DataDir  string
	HTTPAddr string
	Fsync    pebblestore.FsyncMode
	Config   cfgpkg.Config
}

// Run starts the HTTP server and blocks until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	// Layer a local signal context over the provided one so callers that
	// pass a plain context still get clean SIGINT/SIGTERM shutdown.
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.DataDir == "" {
		opts.DataDir = opts.Config.DataDir
	}
	if opts.DataDir == "" {
		opts.DataDir = cfgpkg.DefaultDataDir()
	}
	if opts.HTTPAddr == "" {
		opts.HTTPAddr = opts.Config.HTTPAddr
	}

	logger, err := logpkg.ApplyConfig(&logpkg.Config{Level: opts.Config.LogLevel, Format: opts.Config.LogFormat})
	if err != nil {
		lvl := logpkg.InfoLevel
		if l, e := logpkg.ParseLevel(opts.Config.LogLevel); e == nil {
			lvl = l
		}
		logger = logpkg.NewLogger(logpkg.WithLevel(lvl), logpkg.WithFormatter(&logpkg.TextFormatter{}))
	}

	// Redirect stdlib logs (e.g., Pebble) to our logger
	logpkg.RedirectStdLog(logger)

	cacheDir := filepath.Join(opts.DataDir, "cache")
	rt, err := runtime.Open(runtime.Options{DataDir: cacheDir, Fsync: opts.Fsync, Config: opts.Config, Logger: logger})
	if err != nil {
		return err
	}
	defer rt.Close()

	logger.Info("Starting message server",
		logpkg.Str("http", opts.HTTPAddr),
		logpkg.Str("data_dir", opts.DataDir),
		logpkg.Str("key_prefix", opts.Config.KeyPrefix),
		logpkg.Bool("replay_cache", opts.Config.ReplayCache),
		logpkg.Bool("postgres", opts.Config.DatabaseURL != ""),
		logpkg.Str("level", opts.Config.LogLevel),
		logpkg.Str("format", opts.Config.LogFormat),
	)

	hsrv := httpserver.New(rt, logger)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := hsrv.ListenAndServe(sctx, opts.HTTPAddr); err != nil && sctx.Err() == nil {
			logger.Error("http server error", logpkg.Err(err))
			stop()
		}
	}()

	<-sctx.Done()
	// Shut the server down before closing the runtime/DB to avoid races.
	hsrv.Close()
	wg.Wait()
	return nil
}
