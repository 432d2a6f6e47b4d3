// Package namespace centralizes subscriber-key prefixing. Every boundary
// (push, subscribe, history, delete) must go through Key so the storage key
// and the live-connection key can never drift apart.
package namespace

import "strings"

// Key combines the process-wide prefix with a raw external key. The prefix
// is fixed for the process lifetime; an empty prefix returns the raw key
// unchanged.
func Key(prefix, raw string) string {
	if prefix == "" {
		return raw
	}
	return prefix + raw
}

// ValidKey reports whether a raw external key is acceptable: non-empty after
// trimming and free of whitespace that would corrupt SSE framing or URLs.
func ValidKey(raw string) bool {
	if strings.TrimSpace(raw) == "" {
		return false
	}
	return !strings.ContainsAny(raw, " \t\r\n")
}
