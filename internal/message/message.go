// Package message defines the persisted Message entity and the frames
// serialized onto live subscriber streams.
package message

import "time"

// Message is the persisted entity. The id and createdAt are store-assigned;
// deletedAt transitions one-way from nil to a timestamp on soft delete.
type Message struct {
	ID        uint64     `json:"id"`
	ClientKey string     `json:"clientKey"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"createdAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}
