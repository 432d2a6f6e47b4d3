package messagesvc

import "errors"

// Validation errors reported to callers before any persistence attempt.
var (
	ErrEmptyKey     = errors.New("messages: key is required")
	ErrEmptyContent = errors.New("messages: content is required")
	ErrNoIDs        = errors.New("messages: ids are required")
	ErrBadFilter    = errors.New("messages: invalid filter expression")
)

// SubscribeOptions controls a new subscription.
type SubscribeOptions struct {
	// Replay sends the last cached message for the key, flagged fromCache,
	// before entering live mode. Best-effort; history is authoritative.
	Replay bool
	// Filter is an optional CEL expression evaluated per business frame.
	// When empty, all frames are delivered.
	Filter string
}
