package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/kittors/simple-message-service/internal/message"
	messagesvc "github.com/kittors/simple-message-service/internal/services/messages"
	logpkg "github.com/kittors/simple-message-service/pkg/log"
)

// MessagesController handles all message-related HTTP endpoints: push,
// history, delete, and the SSE subscription stream.
type MessagesController struct {
	svc    *messagesvc.Service
	logger logpkg.Logger
}

// NewMessagesController creates a new messages controller.
func NewMessagesController(svc *messagesvc.Service, logger logpkg.Logger) *MessagesController {
	return &MessagesController{svc: svc, logger: logger}
}

// RegisterRoutes registers all message routes with the given mux.
func (c *MessagesController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/push", c.handlePush)
	mux.HandleFunc("/api/history/", c.handleHistory)
	mux.HandleFunc("/api/messages/", c.handleDelete)
	mux.HandleFunc("/api/sse/", c.handleSubscribeSSE)
}

// keyFromPath extracts the subscriber key after prefix, e.g.
// /api/history/orders -> orders. Percent-encoded keys are decoded.
func keyFromPath(path, prefix string) string {
	key := strings.TrimPrefix(path, prefix)
	if dec, err := url.PathUnescape(key); err == nil {
		key = dec
	}
	return key
}

// handlePush accepts {key, message}, persists the message, and triggers
// best-effort live delivery. Returns 201 with the stored message.
func (c *MessagesController) handlePush(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeFailure(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}
	var req pushReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Key and message are required", err.Error())
		return
	}
	m, err := c.svc.Push(r.Context(), req.Key, req.Message)
	if err != nil {
		if errors.Is(err, messagesvc.ErrEmptyKey) || errors.Is(err, messagesvc.ErrEmptyContent) {
			writeFailure(w, http.StatusBadRequest, "Key and message are required", err.Error())
			return
		}
		c.logger.Error("push failed", logpkg.Str("key", req.Key), logpkg.Err(err))
		writeFailure(w, http.StatusInternalServerError, "Failed to store message", "")
		return
	}
	writeSuccess(w, http.StatusCreated, m, "Message pushed")
}

// handleHistory returns one page of active messages for the key, newest
// first. Out-of-range page/limit fall back to 1 and the configured default.
func (c *MessagesController) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeFailure(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}
	key := keyFromPath(r.URL.Path, "/api/history/")
	page := parsePage(r.URL.Query().Get("page"))
	limit := parseLimit(r.URL.Query().Get("limit"))

	msgs, err := c.svc.History(r.Context(), key, page, limit)
	if err != nil {
		if errors.Is(err, messagesvc.ErrEmptyKey) {
			writeFailure(w, http.StatusBadRequest, "Key is required", err.Error())
			return
		}
		c.logger.Error("history query failed", logpkg.Str("key", key), logpkg.Err(err))
		writeFailure(w, http.StatusInternalServerError, "Failed to query history", "")
		return
	}
	if msgs == nil {
		msgs = []message.Message{}
	}
	if limit == 0 {
		limit = len(msgs)
	}
	writeSuccess(w, http.StatusOK, historyResp{Messages: msgs, Page: page, Limit: limit}, "History fetched")
}

// handleDelete soft-deletes the given IDs owned by the key. Responds 404
// when nothing was deleted so clients can tell a stale request apart from
// a successful one.
func (c *MessagesController) handleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeFailure(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}
	key := keyFromPath(r.URL.Path, "/api/messages/")
	var req deleteReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeFailure(w, http.StatusBadRequest, "At least one id is required", err.Error())
		return
	}
	count, err := c.svc.Delete(r.Context(), key, req.IDs)
	if err != nil {
		if errors.Is(err, messagesvc.ErrEmptyKey) || errors.Is(err, messagesvc.ErrNoIDs) {
			writeFailure(w, http.StatusBadRequest, "Key and ids are required", err.Error())
			return
		}
		c.logger.Error("delete failed", logpkg.Str("key", key), logpkg.Err(err))
		writeFailure(w, http.StatusInternalServerError, "Failed to delete messages", "")
		return
	}
	if count == 0 {
		writeFailure(w, http.StatusNotFound, "No matching messages", "")
		return
	}
	writeSuccess(w, http.StatusOK, deleteResp{DeletedCount: count}, "Messages deleted")
}
