// Package assets embeds the frame artwork, suggested logos and catalog icons.
package assets

import "embed"

//go:embed frames/*.svg logos/*.svg icons/*.svg
var FS embed.FS
