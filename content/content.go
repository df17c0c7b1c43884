// Package content embeds the bundled sample game so the binary runs without
// a content directory.
package content

import "embed"

// FS holds the sample game's .lua files at its root.
//
//go:embed *.lua
var FS embed.FS
