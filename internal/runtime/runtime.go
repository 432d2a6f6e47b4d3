package runtime

import (
	"context"
	"errors"

	cfgpkg "github.com/kittors/simple-message-service/internal/config"
	"github.com/kittors/simple-message-service/internal/cache"
	"github.com/kittors/simple-message-service/internal/registry"
	storepkg "github.com/kittors/simple-message-service/internal/store"
	memorystore "github.com/kittors/simple-message-service/internal/store/memory"
	postgresstore "github.com/kittors/simple-message-service/internal/store/postgres"
	pebblestore "github.com/kittors/simple-message-service/internal/storage/pebble"
	logpkg "github.com/kittors/simple-message-service/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	// DataDir holds the replay-cache store. Required when Config.ReplayCache
	// is enabled.
	DataDir string
	Fsync   pebblestore.FsyncMode
	Config  cfgpkg.Config
	Logger  logpkg.Logger
}

// Runtime wires the durable store, replay cache, connection registry, and
// config for a single-node instance.
type Runtime struct {
	store    storepkg.Store
	cacheDB  *pebblestore.DB
	cache    *cache.Cache
	registry *registry.Registry
	config   cfgpkg.Config
	logger   logpkg.Logger
}

// Open initializes the underlying stores and returns a Runtime. With an
// empty DatabaseURL the in-memory store is used (dev/test mode).
func Open(opts Options) (*Runtime, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger()
	}

	var st storepkg.Store
	if opts.Config.DatabaseURL != "" {
		pg, err := postgresstore.Open(opts.Config.DatabaseURL, logger.WithComponent("store"))
		if err != nil {
			return nil, err
		}
		st = pg
	} else {
		logger.Warn("no database configured, using in-memory store")
		st = memorystore.New()
	}

	rt := &Runtime{store: st, registry: registry.New(logger.WithComponent("registry")), config: opts.Config, logger: logger}

	if opts.Config.ReplayCache {
		if opts.DataDir == "" {
			_ = st.Close()
			return nil, errors.New("runtime: DataDir is required when the replay cache is enabled")
		}
		db, err := pebblestore.Open(pebblestore.Options{DataDir: opts.DataDir, Fsync: opts.Fsync})
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		rt.cacheDB = db
		rt.cache = cache.New(db)
	}
	return rt, nil
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	var firstErr error
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			firstErr = err
		}
	}
	if r.cacheDB != nil {
		if err := r.cacheDB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// CheckHealth reports whether the durable store is reachable.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.store == nil {
		return errors.New("store not open")
	}
	return r.store.Ping(ctx)
}

// Store returns the durable message store.
func (r *Runtime) Store() storepkg.Store { return r.store }

// Cache returns the last-message replay cache, nil when disabled.
func (r *Runtime) Cache() *cache.Cache { return r.cache }

// Registry returns the live-connection registry.
func (r *Runtime) Registry() *registry.Registry { return r.registry }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }

// Logger returns the process logger.
func (r *Runtime) Logger() logpkg.Logger { return r.logger }
