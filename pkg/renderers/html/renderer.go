// Package html renders a form State as Bootstrap-flavoured HTML: the form
// with inline field errors and character counters, the busy submit button
// and the live notifications as dismissible alerts.
package html

import (
	"context"
	"fmt"
	stdhtml "html"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formsubmit/pkg/model"
	"github.com/goliatone/go-formsubmit/pkg/notify"
	"github.com/goliatone/go-formsubmit/pkg/render"
	rendertemplate "github.com/goliatone/go-formsubmit/pkg/render/template"
	"github.com/goliatone/go-formsubmit/pkg/render/template/pongo"
)

const formTemplate = "templates/form"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	theme            *theme.RendererConfig
	tokens           map[string]string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithTheme applies a resolved go-theme configuration. Its tokens override
// DefaultTokens and its CSS variables are set on the form element.
func WithTheme(themeCfg *theme.RendererConfig) Option {
	return func(cfg *config) {
		cfg.theme = themeCfg
	}
}

// WithTokens overrides individual class tokens after the theme is applied.
func WithTokens(tokens map[string]string) Option {
	return func(cfg *config) {
		cfg.tokens = mergeStrings(cfg.tokens, tokens)
	}
}

type Renderer struct {
	templates rendertemplate.TemplateRenderer
	tokens    map[string]string
	style     string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := pongo.New(
			pongo.WithFS(cfg.templateFS),
			pongo.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	tokens := DefaultTokens()
	var style string
	if cfg.theme != nil {
		tokens = mergeStrings(tokens, cfg.theme.Tokens)
		style = cssVarsStyle(cfg.theme.CSSVars)
	}
	tokens = mergeStrings(tokens, cfg.tokens)

	return &Renderer{templates: renderer, tokens: tokens, style: style}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render executes the form template for state.
func (r *Renderer) Render(ctx context.Context, state render.State, options render.Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := r.templates.RenderTemplate(formTemplate, r.context(state, options))
	if err != nil {
		return nil, fmt.Errorf("html renderer: render form %q: %w", state.FormID, err)
	}
	return []byte(out), nil
}

func (r *Renderer) context(state render.State, options render.Options) map[string]any {
	formClass := r.tokens[TokenFormBase]
	if state.Validated {
		formClass = joinClasses(formClass, r.tokens[TokenFormValidated])
	}

	fields := make([]map[string]any, 0, len(state.Fields))
	for _, field := range state.Fields {
		fields = append(fields, r.fieldContext(field))
	}

	alerts := make([]map[string]any, 0, len(state.Notifications))
	for _, n := range state.Notifications {
		alerts = append(alerts, map[string]any{
			"id":       n.ID,
			"class":    r.alertClass(n.Kind),
			"message":  sanitize(n.Message),
			"deadline": n.Deadline.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		})
	}

	hidden := make([]map[string]any, 0, len(options.Hidden))
	for _, field := range render.NormalizeHidden(options.Hidden...) {
		hidden = append(hidden, map[string]any{"name": field.Name, "value": field.Value})
	}

	submitLabel := state.SubmitLabel
	if submitLabel == "" {
		submitLabel = "Submit"
	}

	return map[string]any{
		"form": map[string]any{
			"id":          state.FormID,
			"title":       state.Title,
			"description": state.Description,
			"phase":       string(state.Phase),
			"class":       formClass,
			"style":       r.style,
		},
		"method":       strings.ToLower(options.MethodOrDefault()),
		"action":       options.Action,
		"hidden":       hidden,
		"fields":       fields,
		"alerts":       alerts,
		"busy":         state.Busy,
		"busy_label":   sanitize(state.BusyLabel),
		"submit_label": submitLabel,
		"classes": map[string]any{
			"group":       r.tokens[TokenFieldGroup],
			"label":       r.tokens[TokenFieldLabel],
			"feedback":    r.tokens[TokenFieldFeedback],
			"submit":      r.tokens[TokenSubmit],
			"spinner":     r.tokens[TokenSpinner],
			"title":       r.tokens[TokenTitle],
			"description": r.tokens[TokenDescription],
			"alerts":      r.tokens[TokenAlerts],
			"dismiss":     r.tokens[TokenAlertDismiss],
		},
	}
}

func (r *Renderer) fieldContext(field render.FieldState) map[string]any {
	class := r.tokens[TokenFieldInput]
	if field.Invalid {
		class = joinClasses(class, r.tokens[TokenFieldInvalid])
	}
	inputType := "text"
	if field.Kind == model.KindEmail {
		inputType = "email"
	}

	ctx := map[string]any{
		"id":          field.ID,
		"label":       field.Label,
		"placeholder": field.Placeholder,
		"type":        inputType,
		"textarea":    field.Kind == model.KindTextarea,
		"required":    field.Required,
		"value":       field.Value,
		"class":       class,
		"error":       sanitize(field.Error),
		"max_length":  "",
		"counter":     "",
	}
	if field.MaxLength > 0 {
		ctx["max_length"] = strconv.Itoa(field.MaxLength)
	}
	if counter := field.Counter; counter != nil {
		counterClass := r.tokens[TokenCounterBase]
		if counter.Warning || counter.Exceeded {
			counterClass = joinClasses(counterClass, r.tokens[TokenCounterWarning])
		}
		if counter.Exceeded {
			counterClass = joinClasses(counterClass, r.tokens[TokenCounterDanger])
		}
		ctx["counter"] = sanitize(counter.Text)
		ctx["counter_class"] = counterClass
	}
	return ctx
}

func (r *Renderer) alertClass(kind notify.Kind) string {
	switch kind {
	case notify.KindSuccess:
		return r.tokens[TokenAlertSuccess]
	case notify.KindError:
		return r.tokens[TokenAlertError]
	default:
		return r.tokens[TokenAlertInfo]
	}
}

func joinClasses(classes ...string) string {
	out := make([]string, 0, len(classes))
	for _, class := range classes {
		if trimmed := strings.TrimSpace(class); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, " ")
}

var (
	messagePolicyOnce sync.Once
	messagePolicy     *bluemonday.Policy
)

// sanitize strips markup from user-facing messages. Entities are decoded
// again because the template escapes its output.
func sanitize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	messagePolicyOnce.Do(func() {
		messagePolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(stdhtml.UnescapeString(messagePolicy.Sanitize(trimmed)))
}
