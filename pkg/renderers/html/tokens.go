package html

import (
	"fmt"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// Token keys the renderer reads class names from.
const (
	TokenFormBase       = "form.base"
	TokenFormValidated  = "form.validated"
	TokenFieldGroup     = "field.group"
	TokenFieldLabel     = "field.label"
	TokenFieldInput     = "field.input"
	TokenFieldInvalid   = "field.invalid"
	TokenFieldFeedback  = "field.feedback"
	TokenCounterBase    = "counter.base"
	TokenCounterWarning = "counter.warning"
	TokenCounterDanger  = "counter.danger"
	TokenSubmit         = "submit.button"
	TokenSpinner        = "submit.spinner"
	TokenTitle          = "form.title"
	TokenDescription    = "form.description"
	TokenAlerts         = "alert.container"
	TokenAlertSuccess   = "alert.success"
	TokenAlertError     = "alert.error"
	TokenAlertInfo      = "alert.info"
	TokenAlertDismiss   = "alert.dismiss"
)

// DefaultTokens mirror Bootstrap 5 form and alert classes.
func DefaultTokens() map[string]string {
	return map[string]string{
		TokenFormBase:       "needs-validation",
		TokenFormValidated:  "was-validated",
		TokenFieldGroup:     "mb-3",
		TokenFieldLabel:     "form-label",
		TokenFieldInput:     "form-control",
		TokenFieldInvalid:   "is-invalid",
		TokenFieldFeedback:  "invalid-feedback",
		TokenCounterBase:    "form-text",
		TokenCounterWarning: "text-warning",
		TokenCounterDanger:  "text-danger",
		TokenSubmit:         "btn btn-primary",
		TokenSpinner:        "spinner-border spinner-border-sm",
		TokenTitle:          "h4 mb-3",
		TokenDescription:    "text-muted",
		TokenAlerts:         "alerts",
		TokenAlertSuccess:   "alert alert-success alert-dismissible fade show",
		TokenAlertError:     "alert alert-danger alert-dismissible fade show",
		TokenAlertInfo:      "alert alert-info alert-dismissible fade show",
		TokenAlertDismiss:   "btn-close",
	}
}

// ManifestSelector resolves theme selections from manifests registered in a
// go-theme registry.
type ManifestSelector struct {
	provider  theme.ThemeProvider
	manifests map[string]*theme.Manifest
	fallback  string
}

var _ theme.ThemeSelector = (*ManifestSelector)(nil)

// NewManifestSelector registers manifests; the first one is the default.
func NewManifestSelector(manifests ...*theme.Manifest) (*ManifestSelector, error) {
	registry := theme.NewRegistry()
	s := &ManifestSelector{
		provider:  registry,
		manifests: make(map[string]*theme.Manifest, len(manifests)),
	}
	for _, manifest := range manifests {
		if manifest == nil {
			continue
		}
		if err := registry.Register(manifest); err != nil {
			return nil, fmt.Errorf("html renderer: register theme %q: %w", manifest.Name, err)
		}
		s.manifests[manifest.Name] = manifest
		if s.fallback == "" {
			s.fallback = manifest.Name
		}
	}
	return s, nil
}

// Provider exposes the go-theme registry backing the selector.
func (s *ManifestSelector) Provider() theme.ThemeProvider {
	return s.provider
}

// Select returns the named theme, or the default one when name is empty.
func (s *ManifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	key := strings.TrimSpace(name)
	if key == "" {
		key = s.fallback
	}
	manifest, ok := s.manifests[key]
	if !ok {
		return nil, fmt.Errorf("html renderer: theme %q not registered", key)
	}
	variant = strings.TrimSpace(variant)
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("html renderer: theme %q has no variant %q", key, variant)
		}
	}
	return &theme.Selection{Theme: key, Variant: variant, Manifest: manifest}, nil
}

// RendererConfig flattens a selection into tokens, CSS variables and an
// asset resolver. Variant values override the base manifest.
func RendererConfig(selection *theme.Selection) *theme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	manifest := selection.Manifest
	tokens := mergeStrings(manifest.Tokens, nil)
	partials := mergeStrings(manifest.Templates, nil)
	assets := mergeStrings(manifest.Assets.Files, nil)
	prefix := manifest.Assets.Prefix
	if variant, ok := manifest.Variants[selection.Variant]; ok {
		tokens = mergeStrings(tokens, variant.Tokens)
		partials = mergeStrings(partials, variant.Templates)
		assets = mergeStrings(assets, variant.Assets.Files)
		if variant.Assets.Prefix != "" {
			prefix = variant.Assets.Prefix
		}
	}

	cssVars := make(map[string]string)
	for key, value := range tokens {
		if strings.HasPrefix(key, "color.") || !strings.Contains(key, ".") {
			cssVars["--"+strings.ReplaceAll(key, ".", "-")] = value
		}
	}

	return &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Tokens:   tokens,
		Partials: partials,
		CSSVars:  cssVars,
		AssetURL: func(key string) string {
			file, ok := assets[key]
			if !ok || file == "" {
				return ""
			}
			return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(file, "/")
		},
	}
}

func mergeStrings(base, overrides map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(overrides))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range overrides {
		out[key] = value
	}
	return out
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+vars[key])
	}
	return strings.Join(parts, "; ")
}
