// Package messagesvc is the core service behind the HTTP transport: it
// persists pushed messages, serves paginated history, soft-deletes on
// request, and fans a key's live traffic out to its single subscriber.
//
// Persistence always happens before delivery. A subscriber that is slow,
// missing, or broken can delay or miss a live frame, but never prevents the
// message from landing in the store.
package messagesvc
