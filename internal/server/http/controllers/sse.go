package controllers

import (
	"errors"
	"net/http"

	messagesvc "github.com/kittors/simple-message-service/internal/services/messages"
	logpkg "github.com/kittors/simple-message-service/pkg/log"
)

// sseSink writes frames to one subscriber as SSE data events.
//
// Each frame goes out as "data: <json>\n\n" and is flushed immediately so
// the client sees it without buffering delay. A write error means the peer
// is gone; the registry drops the connection on the next delivery.
type sseSink struct {
	w http.ResponseWriter
	f http.Flusher
}

func (s sseSink) Send(frame []byte) error {
	if _, err := s.w.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := s.w.Write(frame); err != nil {
		return err
	}
	if _, err := s.w.Write([]byte("\n\n")); err != nil {
		return err
	}
	s.f.Flush()
	return nil
}

// handleSubscribeSSE attaches the client as the key's live subscriber and
// streams frames until it disconnects or a newer subscriber takes over.
// Query parameters: replay=1 resends the cached last message, filter holds
// an optional CEL expression.
func (c *MessagesController) handleSubscribeSSE(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeFailure(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}
	key := keyFromPath(r.URL.Path, "/api/sse/")
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeFailure(w, http.StatusInternalServerError, "Streaming unsupported", "")
		return
	}
	opts := messagesvc.SubscribeOptions{
		Replay: parseBool(r.URL.Query().Get("replay")),
		Filter: r.URL.Query().Get("filter"),
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	err := c.svc.Subscribe(r.Context(), key, sseSink{w: w, f: flusher}, opts)
	if err != nil {
		// Subscribe fails only before the first frame, so the headers can
		// still be replaced with a JSON error.
		if errors.Is(err, messagesvc.ErrEmptyKey) || errors.Is(err, messagesvc.ErrBadFilter) {
			writeFailure(w, http.StatusBadRequest, "Invalid subscription", err.Error())
			return
		}
		c.logger.Error("subscribe failed", logpkg.Str("key", key), logpkg.Err(err))
		writeFailure(w, http.StatusInternalServerError, "Failed to subscribe", "")
	}
}
