// Package store declares the message history port. The postgres subpackage
// is the production adapter; the memory subpackage backs tests and the
// database-less dev mode. Both implement identical append / paginated-read /
// soft-delete semantics so the service layer cannot tell them apart.
package store
