package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	errDefinitionIDMissing = errors.New("model: form id is required")
	errFieldIDMissing      = errors.New("model: field id is required")
)

// Definition declares a form: its identifier, presentation strings and the
// ordered field declarations.
type Definition struct {
	ID          string            `json:"id" yaml:"id"`
	Title       string            `json:"title,omitempty" yaml:"title,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	SubmitLabel string            `json:"submitLabel,omitempty" yaml:"submitLabel,omitempty"`
	Fields      []FieldDefinition `json:"fields" yaml:"fields"`
}

// FieldDefinition declares a single field and its constraints.
type FieldDefinition struct {
	ID          string `json:"id" yaml:"id"`
	Label       string `json:"label,omitempty" yaml:"label,omitempty"`
	Placeholder string `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Kind        string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Required    bool   `json:"required,omitempty" yaml:"required,omitempty"`
	MaxLength   int    `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Default     string `json:"default,omitempty" yaml:"default,omitempty"`
}

// Validate checks the declaration is usable: a form id, unique non-empty
// field ids, known kinds, non-negative lengths.
func (d Definition) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return errDefinitionIDMissing
	}
	seen := make(map[string]struct{}, len(d.Fields))
	for i, field := range d.Fields {
		id := strings.TrimSpace(field.ID)
		if id == "" {
			return fmt.Errorf("%w (field #%d)", errFieldIDMissing, i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("model: duplicate field id %q", id)
		}
		seen[id] = struct{}{}
		if _, err := ParseKind(field.Kind); err != nil {
			return fmt.Errorf("model: field %q: %w", id, err)
		}
		if field.MaxLength < 0 {
			return fmt.Errorf("model: field %q: maxLength must be non-negative", id)
		}
	}
	return nil
}

// NewFormState builds the live state for one view of the definition. Fields
// keep declaration order and start idle with no recorded errors.
func NewFormState(def Definition) (*FormState, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	form := &FormState{
		ID:          strings.TrimSpace(def.ID),
		Title:       strings.TrimSpace(def.Title),
		Description: strings.TrimSpace(def.Description),
		SubmitLabel: strings.TrimSpace(def.SubmitLabel),
		Phase:       PhaseIdle,
		Fields:      make([]*Field, 0, len(def.Fields)),
		defaults:    make(map[string]string, len(def.Fields)),
	}
	for _, decl := range def.Fields {
		kind, _ := ParseKind(decl.Kind)
		id := strings.TrimSpace(decl.ID)
		label := strings.TrimSpace(decl.Label)
		if label == "" {
			label = id
		}
		form.Fields = append(form.Fields, &Field{
			ID:          id,
			Label:       label,
			Placeholder: strings.TrimSpace(decl.Placeholder),
			Kind:        kind,
			Required:    decl.Required,
			MaxLength:   decl.MaxLength,
			Value:       decl.Default,
			Valid:       true,
		})
		form.defaults[id] = decl.Default
	}
	return form, nil
}

// MustNewFormState panics when the definition is invalid. Useful for fixtures.
func MustNewFormState(def Definition) *FormState {
	form, err := NewFormState(def)
	if err != nil {
		panic(err)
	}
	return form
}
