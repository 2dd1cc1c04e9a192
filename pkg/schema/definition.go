package schema

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formsubmit/pkg/model"
)

// document accepts either a single definition or a `forms:` list.
type document struct {
	model.Definition `yaml:",inline"`
	Forms            []model.Definition `yaml:"forms"`
}

// Decode parses a YAML or JSON document into definitions. A document may hold
// one form at the top level or several under `forms`.
func Decode(data []byte) ([]model.Definition, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("schema: document is empty")
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("schema: decode: %w", err)
	}

	defs := doc.Forms
	if doc.Definition.ID != "" || len(doc.Definition.Fields) > 0 {
		defs = append([]model.Definition{doc.Definition}, defs...)
	}
	if len(defs) == 0 {
		return nil, errors.New("schema: document declares no forms")
	}
	for i, def := range defs {
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("schema: form %d: %w", i, err)
		}
	}
	return defs, nil
}

// LoadDefinitions fetches src and decodes it.
func LoadDefinitions(ctx context.Context, loader *Loader, src Source) ([]model.Definition, error) {
	if loader == nil {
		loader = NewLoader()
	}
	data, err := loader.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}
