// Package cache holds the best-effort last-message-per-key replay cache.
// It smooths over the window between a push with no subscriber and a late
// subscribe; the history store remains the authoritative replay source.
package cache

import (
	"encoding/json"
	"errors"

	"github.com/kittors/simple-message-service/internal/message"
	pebblestore "github.com/kittors/simple-message-service/internal/storage/pebble"
)

var lastPrefix = []byte("last/")

func lastKey(key string) []byte {
	k := make([]byte, 0, len(lastPrefix)+len(key))
	k = append(k, lastPrefix...)
	k = append(k, key...)
	return k
}

// Cache stores the latest message per namespaced key.
type Cache struct {
	db *pebblestore.DB
}

// New returns a Cache on top of an open Pebble store.
func New(db *pebblestore.DB) *Cache { return &Cache{db: db} }

// Put records m as the latest message for its key. Best-effort: errors are
// returned for logging but callers must not fail a push over them.
func (c *Cache) Put(key string, m message.Message) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return c.db.Set(lastKey(key), b)
}

// Get returns the latest cached message for key, if any.
func (c *Cache) Get(key string) (message.Message, bool) {
	b, err := c.db.Get(lastKey(key))
	if err != nil || len(b) == 0 {
		return message.Message{}, false
	}
	var m message.Message
	if err := json.Unmarshal(b, &m); err != nil {
		return message.Message{}, false
	}
	return m, true
}

// Invalidate drops the cached entry for key. Used when the cached message
// gets soft-deleted so replay cannot resurrect it.
func (c *Cache) Invalidate(key string) error {
	err := c.db.Delete(lastKey(key))
	if errors.Is(err, pebblestore.ErrNotFound) {
		return nil
	}
	return err
}
