package controllers

import "github.com/kittors/simple-message-service/internal/message"

// apiResponse is the envelope every JSON endpoint answers with. Code
// mirrors the HTTP status so browser clients can branch without reading
// response headers.
type apiResponse struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Data    any    `json:"data"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// pushReq represents a request to push a message to a subscriber key.
type pushReq struct {
	Key     string `json:"key" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// deleteReq represents a request to soft-delete messages by ID.
type deleteReq struct {
	IDs []uint64 `json:"ids" validate:"required,min=1"`
}

// deleteResp reports how many rows a delete actually touched.
type deleteResp struct {
	DeletedCount int64 `json:"deletedCount"`
}

// historyResp is one page of active messages, newest first.
type historyResp struct {
	Messages []message.Message `json:"messages"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}
