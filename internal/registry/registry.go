// Package registry tracks the single live sink per subscriber key and owns
// connection lifecycle: register, evict-on-re-register, handle-guarded
// unregister, and failure-as-unregister delivery.
package registry

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	logpkg "github.com/kittors/simple-message-service/pkg/log"
)

// ErrClosed is returned by a connection write after the connection has been
// closed by eviction, unregistration, or a prior write failure.
var ErrClosed = errors.New("registry: connection closed")

// Sink is the capability a transport hands over for one subscriber: a way
// to write one serialized frame. A failed write signals the peer is gone.
type Sink interface {
	Send(frame []byte) error
}

// conn pairs a sink with its lifecycle state. The mutex serializes writes
// against close, so once close returns no write can still be in flight.
type conn struct {
	key  string
	id   string
	sink Sink

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func (c *conn) send(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return c.sink.Send(frame)
}

func (c *conn) close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.done)
	}
	c.mu.Unlock()
}

// Handle references one registered connection. Unregister through the
// handle is a no-op if the connection has since been replaced.
type Handle struct {
	c *conn
}

// Done is closed when the connection is torn down: evicted by a newer
// registration, unregistered, or dropped after a failed write. Transports
// select on it to end their stream loop.
func (h *Handle) Done() <-chan struct{} { return h.c.done }

// Registry is the in-memory key→connection map. One instance per process;
// construct with New and share by reference.
type Registry struct {
	mu     sync.Mutex
	conns  map[string]*conn
	logger logpkg.Logger
}

// New returns an empty registry.
func New(logger logpkg.Logger) *Registry {
	if logger == nil {
		logger = logpkg.NewLogger().WithComponent("registry")
	}
	return &Registry{conns: map[string]*conn{}, logger: logger}
}

// Register installs sink as the live connection for key. A previously
// registered connection for the same key is evicted: removed from the map
// and closed, with no notification beyond its stream ending.
func (r *Registry) Register(key string, sink Sink) *Handle {
	c := &conn{key: key, id: uuid.NewString(), sink: sink, done: make(chan struct{})}

	r.mu.Lock()
	old := r.conns[key]
	r.conns[key] = c
	total := len(r.conns)
	r.mu.Unlock()

	if old != nil {
		old.close()
		r.logger.Info("evicted previous connection", logpkg.Str("key", key))
	}
	r.logger.Info("client connected", logpkg.Str("key", key), logpkg.Int("total", total))
	return &Handle{c: c}
}

// Unregister removes the mapping for h's key only if h still references the
// currently registered connection; a stale handle from an evicted
// connection must never erase a newer, valid one. The handle's own
// connection is always closed.
func (r *Registry) Unregister(h *Handle) {
	if h == nil || h.c == nil {
		return
	}
	r.mu.Lock()
	if cur, ok := r.conns[h.c.key]; ok && cur == h.c {
		delete(r.conns, h.c.key)
		r.mu.Unlock()
		h.c.close()
		r.logger.Info("client disconnected", logpkg.Str("key", h.c.key))
		return
	}
	r.mu.Unlock()
	h.c.close()
}

// Deliver writes frame to the live sink for key. Absence of a subscriber is
// a normal outcome, not an error: it returns false. A write failure also
// returns false and unregisters the dead connection so subsequent
// deliveries short-circuit.
func (r *Registry) Deliver(key string, frame []byte) bool {
	r.mu.Lock()
	c := r.conns[key]
	r.mu.Unlock()
	if c == nil {
		return false
	}
	if err := c.send(frame); err != nil {
		r.logger.Warn("sink write failed, dropping connection",
			logpkg.Str("key", key), logpkg.Err(err))
		r.Unregister(&Handle{c: c})
		return false
	}
	return true
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}
