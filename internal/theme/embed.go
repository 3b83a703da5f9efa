package theme

import "embed"

// EmbeddedThemes holds the built-in palettes as theme files.
//
//go:embed defaults/*.theme
var EmbeddedThemes embed.FS
