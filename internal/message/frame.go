package message

import (
	"encoding/json"
	"time"
)

// FrameType discriminates system frames from business payloads on a stream.
type FrameType string

const (
	// FrameSystem marks connection-lifecycle frames (handshake). Consumers
	// expecting business messages must skip these.
	FrameSystem FrameType = "system"
	// FrameMessage marks a business payload.
	FrameMessage FrameType = "message"
)

// Frame is the unit serialized onto a live stream as `data: <json>\n\n`.
// System frames carry no id. FromCache distinguishes a best-effort cached
// replay from a live push.
type Frame struct {
	Type      FrameType  `json:"type"`
	ID        uint64     `json:"id,omitempty"`
	Content   string     `json:"content"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	FromCache bool       `json:"fromCache,omitempty"`
}

// Handshake returns the frame sent once per new subscription before any
// business payload.
func Handshake() Frame {
	return Frame{Type: FrameSystem, Content: "Connection established"}
}

// LiveFrame wraps a freshly persisted message for live delivery.
func LiveFrame(m Message) Frame {
	created := m.CreatedAt
	return Frame{Type: FrameMessage, ID: m.ID, Content: m.Content, CreatedAt: &created}
}

// CachedFrame wraps a message replayed from the last-message cache.
func CachedFrame(m Message) Frame {
	f := LiveFrame(m)
	f.FromCache = true
	return f
}

// Encode serializes the frame as JSON. Frames are small fixed shapes, so
// encoding cannot fail in practice; a nil slice is returned if it ever does.
func (f Frame) Encode() []byte {
	b, err := json.Marshal(f)
	if err != nil {
		return nil
	}
	return b
}
