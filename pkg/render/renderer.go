package render

import "context"

// Renderer encodes a State for one output format. ContentType is the media
// type of the bytes Render produces.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, state State, options Options) ([]byte, error)
}
