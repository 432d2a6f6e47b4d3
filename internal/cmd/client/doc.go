// Package client contains Cobra CLI commands that talk to a running
// message server over its HTTP API.
package client
