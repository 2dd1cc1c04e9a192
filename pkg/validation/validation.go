// Package validation checks field values against their declared constraints.
//
// The email check is a coarse syntactic guardrail (`local@domain.tld` with no
// whitespace), not an RFC 5322 validator. It is intentionally permissive.
package validation

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-formsubmit/pkg/i18n"
	"github.com/goliatone/go-formsubmit/pkg/model"
)

// EmailPattern is the accepted email shape.
var EmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Code identifies why a field failed validation.
type Code string

const (
	// CodeRequiredFieldMissing: a required field is empty after trimming.
	CodeRequiredFieldMissing Code = "required"
	// CodeFormatInvalid: the value does not match the kind's format.
	CodeFormatInvalid Code = "format"
	// CodeTooLong: the value exceeds the declared max length.
	CodeTooLong Code = "max_length"
)

// Issue is the failure recorded for one field. Kind is set for
// CodeFormatInvalid.
type Issue struct {
	Field   string     `json:"field"`
	Code    Code       `json:"code"`
	Kind    model.Kind `json:"kind,omitempty"`
	Message string     `json:"message"`
}

// Result lists issues in field order; at most one issue per field.
type Result struct {
	Issues []Issue `json:"issues,omitempty"`
}

// Valid reports whether no field failed.
func (r Result) Valid() bool {
	return len(r.Issues) == 0
}

// Fields returns the ids of invalid fields in visual order.
func (r Result) Fields() []string {
	if len(r.Issues) == 0 {
		return nil
	}
	out := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		out = append(out, issue.Field)
	}
	return out
}

// For returns the issue recorded for a field.
func (r Result) For(fieldID string) (Issue, bool) {
	for _, issue := range r.Issues {
		if issue.Field == fieldID {
			return issue, true
		}
	}
	return Issue{}, false
}

// Messages maps field ids to their message, the shape HTTP error payloads use.
func (r Result) Messages() map[string][]string {
	if len(r.Issues) == 0 {
		return nil
	}
	out := make(map[string][]string, len(r.Issues))
	for _, issue := range r.Issues {
		out[issue.Field] = append(out[issue.Field], issue.Message)
	}
	return out
}

// Option configures message resolution.
type Option func(*config)

type config struct {
	translator i18n.Translator
	locale     string
}

// WithTranslator overrides the message catalog.
func WithTranslator(t i18n.Translator) Option {
	return func(cfg *config) {
		if t != nil {
			cfg.translator = t
		}
	}
}

// WithLocale selects the message locale.
func WithLocale(locale string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(locale); trimmed != "" {
			cfg.locale = trimmed
		}
	}
}

var defaultCatalog = i18n.Default()

func newConfig(opts []Option) config {
	cfg := config{translator: defaultCatalog, locale: i18n.DefaultLocale}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Check evaluates a field without recording anything on it. It returns nil
// when the field is valid.
func Check(field *model.Field, opts ...Option) *Issue {
	if field == nil {
		return nil
	}
	return check(field, newConfig(opts))
}

// ValidateField evaluates a field and records the outcome on it.
func ValidateField(field *model.Field, opts ...Option) *Issue {
	if field == nil {
		return nil
	}
	issue := check(field, newConfig(opts))
	record(field, issue)
	return issue
}

// Validate runs a pass over every field of the form, recording validity on
// each field. Values and phase are not modified.
func Validate(form *model.FormState, opts ...Option) Result {
	var result Result
	if form == nil {
		return result
	}
	cfg := newConfig(opts)
	for _, field := range form.Fields {
		issue := check(field, cfg)
		record(field, issue)
		if issue != nil {
			result.Issues = append(result.Issues, *issue)
		}
	}
	return result
}

func record(field *model.Field, issue *Issue) {
	if issue == nil {
		field.MarkValid()
		return
	}
	field.MarkInvalid(issue.Message)
}

func check(field *model.Field, cfg config) *Issue {
	value := strings.TrimSpace(field.Value)
	label := field.Label
	if label == "" {
		label = field.ID
	}

	// The limit counts raw runes, the same as the character counter.
	if field.MaxLength > 0 && field.Length() > field.MaxLength {
		return &Issue{
			Field:   field.ID,
			Code:    CodeTooLong,
			Message: i18n.Message(cfg.translator, cfg.locale, i18n.KeyMaxLength, label, field.MaxLength),
		}
	}

	if value == "" {
		if field.Required {
			return &Issue{
				Field:   field.ID,
				Code:    CodeRequiredFieldMissing,
				Message: i18n.Message(cfg.translator, cfg.locale, i18n.KeyRequired, label),
			}
		}
		return nil
	}

	switch field.Kind {
	case model.KindEmail:
		if !EmailPattern.MatchString(value) {
			return &Issue{
				Field:   field.ID,
				Code:    CodeFormatInvalid,
				Kind:    model.KindEmail,
				Message: i18n.Message(cfg.translator, cfg.locale, i18n.KeyFormatEmail),
			}
		}
	}
	return nil
}
