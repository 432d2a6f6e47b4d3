// Package serverrun boots the message service: logger, runtime, and HTTP
// transport, with signal-driven shutdown.
package serverrun
