// Package web embeds the static demo page served at the site root.
package web

import (
	"embed"
	"io/fs"
)

//go:embed learn-htmx.html
var assets embed.FS

// Assets returns the embedded static file system.
func Assets() fs.FS {
	return assets
}
