// Package app turns a loaded configuration into the pieces the commands
// wire together: the form registry, the submit action, controller options
// and renderers.
package app

import (
	"context"
	"fmt"
	"sort"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-formsubmit/internal/config"
	"github.com/goliatone/go-formsubmit/internal/openapi"
	"github.com/goliatone/go-formsubmit/pkg/controller"
	"github.com/goliatone/go-formsubmit/pkg/model"
	"github.com/goliatone/go-formsubmit/pkg/render"
	"github.com/goliatone/go-formsubmit/pkg/renderers/html"
	"github.com/goliatone/go-formsubmit/pkg/schema"
	"github.com/goliatone/go-formsubmit/pkg/submit"
)

// DefaultTheme names the manifest built when no theme name is configured.
const DefaultTheme = "default"

// Forms loads the configured definitions into a registry.
func Forms(ctx context.Context, cfg *config.Config) (*schema.Registry, error) {
	defs, err := Definitions(ctx, cfg)
	if err != nil {
		return nil, err
	}
	registry := schema.NewRegistry()
	if err := registry.RegisterAll(defs); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	return registry, nil
}

// Definitions loads the form definitions from form.path or form.openapi.
func Definitions(ctx context.Context, cfg *config.Config) ([]model.Definition, error) {
	raw := cfg.Form.Path
	if raw == "" {
		raw = cfg.Form.OpenAPI
	}
	src, err := schema.ParseSource(raw)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	var opts []schema.LoaderOption
	if src.Kind == schema.SourceKindURL {
		opts = append(opts, schema.WithHTTPTimeout(cfg.Submit.Timeout))
	}
	loader := schema.NewLoader(opts...)

	if cfg.Form.Path != "" {
		defs, err := schema.LoadDefinitions(ctx, loader, src)
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		return defs, nil
	}

	data, err := loader.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	if cfg.Form.Operation != "" {
		def, err := openapi.Definition(ctx, data, cfg.Form.Operation)
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		return []model.Definition{def}, nil
	}
	byID, err := openapi.Definitions(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	defs := make([]model.Definition, 0, len(ids))
	for _, id := range ids {
		defs = append(defs, byID[id])
	}
	return defs, nil
}

// Action builds the configured submit action, wrapped with logging.
func Action(cfg *config.Config, logger *zap.Logger) (submit.Action, error) {
	var action submit.Action
	switch cfg.Submit.Mode {
	case config.ModeHTTP:
		enc, err := submit.ParseEncoding(cfg.Submit.Encoding)
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		httpAction, err := submit.NewHTTP(cfg.Submit.Endpoint,
			submit.WithEncoding(enc),
			submit.WithTimeout(cfg.Submit.Timeout),
		)
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		action = httpAction
	case config.ModeSimulate, "":
		action = submit.NewSimulated(cfg.Submit.Delay)
	default:
		return nil, fmt.Errorf("app: unknown submit mode %q", cfg.Submit.Mode)
	}
	return submit.WithLogging(logger, action), nil
}

// ControllerOptions maps configuration onto controller options.
func ControllerOptions(cfg *config.Config, logger *zap.Logger, hooks controller.Hooks) []controller.Option {
	return []controller.Option{
		controller.WithDismissDelay(cfg.Notify.DismissDelay),
		controller.WithLocale(cfg.Locale),
		controller.WithResetOnSuccess(cfg.ResetOnSuccess),
		controller.WithLogger(logger),
		controller.WithHooks(hooks),
	}
}

// Manifest describes the configured theme as a go-theme manifest.
func Manifest(cfg config.ThemeConfig) *theme.Manifest {
	name := cfg.Name
	if name == "" {
		name = DefaultTheme
	}
	manifest := &theme.Manifest{
		Name:      name,
		Version:   "1.0.0",
		Tokens:    cfg.Tokens,
		Templates: map[string]string{"forms.form": "templates/form.tmpl"},
	}
	if len(cfg.Variants) > 0 {
		manifest.Variants = make(map[string]theme.Variant, len(cfg.Variants))
		for variant, tokens := range cfg.Variants {
			manifest.Variants[variant] = theme.Variant{Tokens: tokens}
		}
	}
	return manifest
}

// Renderers registers the themed HTML renderer and the JSON renderer.
func Renderers(cfg *config.Config) (*render.Registry, error) {
	selector, err := html.NewManifestSelector(Manifest(cfg.Theme))
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	selection, err := selector.Select(cfg.Theme.Name, cfg.Theme.Variant)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	htmlRenderer, err := html.New(html.WithTheme(html.RendererConfig(selection)))
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	registry := render.NewRegistry()
	for _, r := range []render.Renderer{htmlRenderer, render.JSON{}} {
		if err := registry.Register(r); err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
	}
	return registry, nil
}
