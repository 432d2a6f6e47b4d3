package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Helper functions for common HTTP responses

var validate = validator.New()

// writeSuccess writes the standard envelope with success set.
func writeSuccess(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiResponse{Success: true, Code: status, Data: data, Message: message})
}

// writeFailure writes the standard envelope with success cleared. detail is
// optional and lands in the error field.
func writeFailure(w http.ResponseWriter, status int, message, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiResponse{Success: false, Code: status, Message: message, Error: detail})
}

// parsePage parses a page string. Returns 1 for empty or invalid values.
func parsePage(s string) int {
	if p, err := strconv.Atoi(s); err == nil && p >= 1 {
		return p
	}
	return 1
}

// parseLimit parses a limit string. Returns 0 for empty or invalid values,
// which the service replaces with its configured default.
func parseLimit(s string) int {
	if l, err := strconv.Atoi(s); err == nil && l > 0 {
		return l
	}
	return 0
}

// parseBool returns true for "true" or "1", false otherwise.
func parseBool(s string) bool {
	return s == "true" || s == "1"
}
