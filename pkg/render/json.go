package render

import (
	"context"
	"encoding/json"
	"fmt"
)

// JSON renders the State as indented JSON, with hidden fields attached.
type JSON struct{}

var _ Renderer = JSON{}

func (JSON) Name() string { return "json" }
func (JSON) ContentType() string { return "application/json" }

func (JSON) Render(_ context.Context, state State, options Options) ([]byte, error) {
	payload := struct {
		State
		Hidden []HiddenField `json:"hidden,omitempty"`
	}{State: state, Hidden: NormalizeHidden(options.Hidden...)}
	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render: marshal state: %w", err)
	}
	return append(out, '\n'), nil
}
