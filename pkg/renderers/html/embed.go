package html

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

// TemplatesFS exposes the embedded template bundle so callers can override
// individual files while reusing the rest.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}
