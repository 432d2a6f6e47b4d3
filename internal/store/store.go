package store

import (
	"context"

	"github.com/kittors/simple-message-service/internal/message"
)

// Store is the durable, soft-delete-aware message log. Keys passed in are
// already namespaced; adapters never apply prefixes themselves.
type Store interface {
	// Append durably records a message and returns it with the
	// store-assigned id and createdAt. Ids are monotonically increasing.
	Append(ctx context.Context, key, content string) (message.Message, error)

	// History returns active (not soft-deleted) messages for key, newest
	// first, skipping (page-1)*limit rows and returning up to limit rows.
	// An empty result is a valid end-of-data outcome.
	History(ctx context.Context, key string, page, limit int) ([]message.Message, error)

	// SoftDelete marks matching active key-owned messages deleted and
	// returns the number of rows actually transitioned. Missing, foreign,
	// and already-deleted ids are silently excluded from the count.
	SoftDelete(ctx context.Context, key string, ids []uint64) (int64, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error

	Close() error
}
