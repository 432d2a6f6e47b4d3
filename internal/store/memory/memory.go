// Package memory implements the message store in process memory. It backs
// tests and the database-less dev mode with the same append / paginated-read
// / soft-delete semantics as the Postgres adapter.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kittors/simple-message-service/internal/message"
)

// Store is an in-memory message store. Safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	nextID uint64
	rows   []message.Message
}

// New returns an empty in-memory store.
func New() *Store { return &Store{nextID: 1} }

// Append records a message with the next monotonically increasing id.
func (s *Store) Append(_ context.Context, key, content string) (message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := message.Message{
		ID:        s.nextID,
		ClientKey: key,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	s.nextID++
	s.rows = append(s.rows, m)
	return m, nil
}

// History returns active messages for key, newest first.
func (s *Store) History(_ context.Context, key string, page, limit int) ([]message.Message, error) {
	if page < 1 {
		page = 1
	}
	s.mu.Lock()
	var active []message.Message
	for _, m := range s.rows {
		if m.ClientKey == key && m.DeletedAt == nil {
			active = append(active, m)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(active, func(i, j int) bool {
		if active[i].CreatedAt.Equal(active[j].CreatedAt) {
			return active[i].ID > active[j].ID
		}
		return active[i].CreatedAt.After(active[j].CreatedAt)
	})

	offset := (page - 1) * limit
	if offset >= len(active) {
		return []message.Message{}, nil
	}
	end := offset + limit
	if end > len(active) {
		end = len(active)
	}
	out := make([]message.Message, end-offset)
	copy(out, active[offset:end])
	return out, nil
}

// SoftDelete marks matching active key-owned messages deleted and returns
// the count actually transitioned.
func (s *Store) SoftDelete(_ context.Context, key string, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	wanted := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for i := range s.rows {
		m := &s.rows[i]
		if m.ClientKey != key || m.DeletedAt != nil {
			continue
		}
		if _, ok := wanted[m.ID]; ok {
			t := now
			m.DeletedAt = &t
			count++
		}
	}
	return count, nil
}

// Ping always succeeds for the in-memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() error { return nil }
