// Package ui embeds the demo page served at the server root.
package ui

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var assets embed.FS

// Handler serves the embedded demo page and its assets.
func Handler() http.Handler {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		// embed guarantees the directory exists at build time
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
