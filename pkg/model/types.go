package model

import (
	"fmt"
	"strings"
)

// Kind identifies the format family of a field value.
type Kind string

const (
	KindText     Kind = "text"
	KindEmail    Kind = "email"
	KindTextarea Kind = "textarea"
)

// ParseKind normalises a declared kind. Empty input maps to KindText; the
// HTML-ish aliases "string" and "textarea"/"multiline" are accepted so
// definitions written for other renderers load unchanged.
func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "text", "string":
		return KindText, nil
	case "email":
		return KindEmail, nil
	case "textarea", "multiline":
		return KindTextarea, nil
	default:
		return "", fmt.Errorf("model: unknown field kind %q", raw)
	}
}

// Phase is the lifecycle phase of a FormState.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseValidating     Phase = "validating"
	PhaseSubmitting     Phase = "submitting"
	PhaseSettledSuccess Phase = "settled-success"
	PhaseSettledError   Phase = "settled-error"
)

// Settled reports whether the phase is one of the two settled outcomes.
func (p Phase) Settled() bool {
	return p == PhaseSettledSuccess || p == PhaseSettledError
}

// Field is one named input with a value and constraints. Valid and Error are
// written by validation passes only.
type Field struct {
	ID          string `json:"id"`
	Label       string `json:"label,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Kind        Kind   `json:"kind"`
	Required    bool   `json:"required"`
	// MaxLength caps the value length in runes. Zero disables the check and
	// the character counter.
	MaxLength int    `json:"maxLength,omitempty"`
	Value     string `json:"value"`
	Valid     bool   `json:"valid"`
	Error     string `json:"error,omitempty"`
}

// Length reports the value length in runes, matching what a user counts.
func (f *Field) Length() int {
	if f == nil {
		return 0
	}
	return len([]rune(f.Value))
}

// MarkValid records a passing validation result.
func (f *Field) MarkValid() {
	f.Valid = true
	f.Error = ""
}

// MarkInvalid records a failing validation result.
func (f *Field) MarkInvalid(message string) {
	f.Valid = false
	f.Error = strings.TrimSpace(message)
}
