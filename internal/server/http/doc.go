// Package httpserver exposes the message service over HTTP: JSON endpoints
// under /api and a Server-Sent Events stream per subscriber key.
package httpserver
