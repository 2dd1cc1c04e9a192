package template

import (
	"io"
)

// TemplateRenderer renders named templates or inline template strings. When
// writers are supplied the output is also written to each of them.
type TemplateRenderer interface {
	RenderTemplate(name string, data map[string]any, out ...io.Writer) (string, error)
	RenderString(content string, data map[string]any, out ...io.Writer) (string, error)
}
