// Package runtime wires storage, cache, registry, and config into a
// single-node instance shared by the transports and services.
package runtime
