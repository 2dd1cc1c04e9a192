package model

import (
	"errors"
	"fmt"
)

// ErrUnknownField is returned when an operation names a field the form does
// not declare.
var ErrUnknownField = errors.New("model: unknown field")

// FormState is the ordered set of fields for one form plus its lifecycle
// phase. It is owned by a single controller and is not safe for concurrent
// mutation on its own.
type FormState struct {
	ID          string
	Title       string
	Description string
	SubmitLabel string
	Phase       Phase
	Fields      []*Field

	defaults map[string]string
}

// Field looks up a field by id.
func (s *FormState) Field(id string) (*Field, bool) {
	if s == nil {
		return nil, false
	}
	for _, field := range s.Fields {
		if field.ID == id {
			return field, true
		}
	}
	return nil, false
}

// SetValue replaces the value of a field. Validity is left untouched; callers
// decide when to revalidate.
func (s *FormState) SetValue(id, value string) error {
	field, ok := s.Field(id)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownField, id)
	}
	field.Value = value
	return nil
}

// SetValues applies several values, ignoring ids the form does not declare.
// It returns the ids that were ignored.
func (s *FormState) SetValues(values map[string]string) []string {
	var unknown []string
	for id, value := range values {
		if err := s.SetValue(id, value); err != nil {
			unknown = append(unknown, id)
		}
	}
	return unknown
}

// Values returns a copy of the current values keyed by field id.
func (s *FormState) Values() map[string]string {
	if s == nil {
		return nil
	}
	out := make(map[string]string, len(s.Fields))
	for _, field := range s.Fields {
		out[field.ID] = field.Value
	}
	return out
}

// IDs returns the field ids in visual order.
func (s *FormState) IDs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.Fields))
	for _, field := range s.Fields {
		out = append(out, field.ID)
	}
	return out
}

// Valid reports the overall validity recorded by the last validation pass:
// true iff every field is valid. It does not run the rules itself, so a fresh
// form reports true until validation.Validate or a field event records
// otherwise.
func (s *FormState) Valid() bool {
	if s == nil {
		return false
	}
	for _, field := range s.Fields {
		if !field.Valid {
			return false
		}
	}
	return true
}

// Reset restores declared defaults and clears recorded errors. The phase is
// not changed.
func (s *FormState) Reset() {
	if s == nil {
		return
	}
	for _, field := range s.Fields {
		field.Value = s.defaults[field.ID]
		field.MarkValid()
	}
}
