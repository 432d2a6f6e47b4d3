package messagesvc

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/kittors/simple-message-service/internal/cache"
	"github.com/kittors/simple-message-service/internal/message"
	"github.com/kittors/simple-message-service/internal/namespace"
	"github.com/kittors/simple-message-service/internal/registry"
	"github.com/kittors/simple-message-service/internal/runtime"
	storepkg "github.com/kittors/simple-message-service/internal/store"
	logpkg "github.com/kittors/simple-message-service/pkg/log"
)

// Service implements message dispatch, history queries, soft deletion, and
// live subscriptions over the runtime's store, cache, and registry.
type Service struct {
	store        storepkg.Store
	cache        *cache.Cache
	registry     *registry.Registry
	prefix       string
	defaultLimit int
	logger       logpkg.Logger
}

// New builds the message service from an opened runtime.
func New(rt *runtime.Runtime) *Service {
	return NewWithLogger(rt, rt.Logger().WithComponent("messages"))
}

// NewWithLogger is New with an explicit logger, used by tests.
func NewWithLogger(rt *runtime.Runtime, logger logpkg.Logger) *Service {
	limit := rt.Config().DefaultPageLimit
	if limit <= 0 {
		limit = 10
	}
	return &Service{
		store:        rt.Store(),
		cache:        rt.Cache(),
		registry:     rt.Registry(),
		prefix:       rt.Config().KeyPrefix,
		defaultLimit: limit,
		logger:       logger,
	}
}

// Push persists a message under the namespaced key, then attempts live
// delivery to the key's subscriber. Delivery is best-effort: a missing or
// failing subscriber never affects the persisted result.
func (s *Service) Push(ctx context.Context, rawKey, content string) (message.Message, error) {
	if !namespace.ValidKey(rawKey) {
		return message.Message{}, ErrEmptyKey
	}
	if strings.TrimSpace(content) == "" {
		return message.Message{}, ErrEmptyContent
	}
	key := namespace.Key(s.prefix, rawKey)

	m, err := s.store.Append(ctx, key, content)
	if err != nil {
		return message.Message{}, err
	}
	if s.cache != nil {
		if err := s.cache.Put(key, m); err != nil {
			s.logger.Warn("replay cache update failed", logpkg.Str("key", key), logpkg.Err(err))
		}
	}
	if s.registry.Deliver(key, message.LiveFrame(m).Encode()) {
		s.logger.Debug("message delivered live", logpkg.Str("key", key), logpkg.Uint64("id", m.ID))
	} else {
		s.logger.Debug("no live subscriber", logpkg.Str("key", key), logpkg.Uint64("id", m.ID))
	}
	return m, nil
}

// History returns a page of non-deleted messages for the key, newest first.
// Page and limit fall back to 1 and the configured default when out of range.
func (s *Service) History(ctx context.Context, rawKey string, page, limit int) ([]message.Message, error) {
	if !namespace.ValidKey(rawKey) {
		return nil, ErrEmptyKey
	}
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}
	return s.store.History(ctx, namespace.Key(s.prefix, rawKey), page, limit)
}

// Delete soft-deletes the given message IDs owned by the key and returns how
// many rows were affected. IDs already deleted or owned by other keys do not
// count. The replay cache entry is dropped when it names a deleted ID.
func (s *Service) Delete(ctx context.Context, rawKey string, ids []uint64) (int64, error) {
	if !namespace.ValidKey(rawKey) {
		return 0, ErrEmptyKey
	}
	if len(ids) == 0 {
		return 0, ErrNoIDs
	}
	key := namespace.Key(s.prefix, rawKey)
	count, err := s.store.SoftDelete(ctx, key, ids)
	if err != nil {
		return 0, err
	}
	if count > 0 && s.cache != nil {
		if m, ok := s.cache.Get(key); ok {
			for _, id := range ids {
				if id == m.ID {
					if err := s.cache.Invalidate(key); err != nil {
						s.logger.Warn("replay cache invalidation failed", logpkg.Str("key", key), logpkg.Err(err))
					}
					break
				}
			}
		}
	}
	return count, nil
}

// Subscribe attaches the sink as the key's live subscriber and blocks until
// the caller's context ends or a newer subscriber evicts this one. The sink
// receives a handshake frame first and, when opts.Replay is set, the cached
// last message flagged fromCache. A non-empty opts.Filter narrows delivery
// to frames matching the CEL expression; the handshake always goes through.
func (s *Service) Subscribe(ctx context.Context, rawKey string, sink registry.Sink, opts SubscribeOptions) error {
	if !namespace.ValidKey(rawKey) {
		return ErrEmptyKey
	}
	flt, err := newCELFilter(opts.Filter)
	if err != nil {
		return ErrBadFilter
	}
	key := namespace.Key(s.prefix, rawKey)

	if err := sink.Send(message.Handshake().Encode()); err != nil {
		// Peer is already gone; nothing was registered yet.
		return nil
	}
	if opts.Replay && s.cache != nil {
		if m, ok := s.cache.Get(key); ok {
			fr := message.CachedFrame(m)
			if flt.Eval(fr) {
				if err := sink.Send(fr.Encode()); err != nil {
					return nil
				}
			}
		}
	}

	dst := sink
	if flt.enabled {
		dst = &filteredSink{sink: sink, filter: flt}
	}
	h := s.registry.Register(key, dst)
	defer s.registry.Unregister(h)

	s.logger.Debug("subscriber attached", logpkg.Str("key", key))
	select {
	case <-ctx.Done():
	case <-h.Done():
		s.logger.Debug("subscriber evicted", logpkg.Str("key", key))
	}
	return nil
}

// filteredSink drops frames that do not match the subscriber's filter.
// Frames that fail to decode are passed through untouched.
type filteredSink struct {
	sink   registry.Sink
	filter celFilter
}

func (f *filteredSink) Send(frame []byte) error {
	var fr message.Frame
	if err := json.Unmarshal(frame, &fr); err == nil && fr.Type == message.FrameMessage {
		if !f.filter.Eval(fr) {
			return nil
		}
	}
	return f.sink.Send(frame)
}
