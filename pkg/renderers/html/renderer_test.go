package html_test

import (
	"context"
	"strings"
	"testing"
	"time"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formsubmit/pkg/notify"
	"github.com/goliatone/go-formsubmit/pkg/render"
	"github.com/goliatone/go-formsubmit/pkg/renderers/html"
	"github.com/goliatone/go-formsubmit/pkg/testsupport"
	"github.com/goliatone/go-formsubmit/pkg/view"
)

func renderState(t *testing.T, renderer *html.Renderer, tracker *render.Tracker, opts render.Options) string {
	t.Helper()
	form := testsupport.ContactForm(t)
	if err := form.SetValue("message", `say "hi"`); err != nil {
		t.Fatalf("set value: %v", err)
	}
	out, err := renderer.Render(context.Background(), tracker.Snapshot(form), opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func mustContain(t *testing.T, out string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected output to contain %q\n%s", fragment, out)
		}
	}
}

func TestRenderInvalidFormShowsErrorsAndCounter(t *testing.T) {
	renderer, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	tracker := render.NewTracker()
	tracker.MarkInvalid("email", "Email is required.")
	tracker.UpdateCounter("message", view.CounterState{Length: 450, Max: 500, Warning: true, Text: "450/500 characters"})

	out := renderState(t, renderer, tracker, render.Options{
		Action: "/forms/contact",
		Hidden: []render.HiddenField{render.CSRFToken("_csrf", "token123")},
	})

	mustContain(t, out,
		`<form id="contact" class="needs-validation was-validated" method="post" action="/forms/contact"`,
		`class="form-control is-invalid"`,
		`aria-describedby="email-error"`,
		`<div id="email-error" class="invalid-feedback">Email is required.</div>`,
		`<small id="message-counter" class="form-text text-warning">450/500 characters</small>`,
		`<input type="hidden" name="_csrf" value="token123">`,
		`maxlength="500"`,
		`say &quot;hi&quot;</textarea>`,
		`>Send</button>`,
	)
}

func TestRenderBusyAndAlerts(t *testing.T) {
	renderer, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	tracker := render.NewTracker()
	tracker.SetBusy(true, "Sending...")
	tracker.UpdateCounter("message", view.CounterState{Length: 501, Max: 500, Warning: true, Exceeded: true, Text: "501/500 characters"})
	tracker.ShowNotification(notify.Notification{
		ID:       "n1",
		Kind:     notify.KindSuccess,
		Message:  "<script>alert(1)</script>Thanks & bye",
		Deadline: time.Date(2024, 3, 1, 9, 0, 5, 0, time.UTC),
	})
	tracker.ShowNotification(notify.Notification{ID: "n2", Kind: notify.KindError, Message: "Could not send"})

	out := renderState(t, renderer, tracker, render.Options{})

	mustContain(t, out,
		`aria-busy="true"`,
		` disabled>`,
		`Sending...</button>`,
		`class="form-text text-warning text-danger"`,
		`class="alert alert-success`,
		`data-notification-id="n1"`,
		`Thanks &amp; bye`,
		`class="alert alert-danger`,
		`data-deadline="2024-03-01T09:00:05.000Z"`,
	)
	if strings.Index(out, `data-notification-id="n1"`) > strings.Index(out, "<form") {
		t.Fatalf("alerts must render before the form\n%s", out)
	}
	if strings.Contains(out, "<script") {
		t.Fatalf("script tag leaked into output\n%s", out)
	}
	if strings.Contains(out, "was-validated") {
		t.Fatalf("form without errors must not be marked validated")
	}
}

func testManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens: map[string]string{
			"brand":         "#123456",
			"field.invalid": "border-danger",
		},
		Templates: map[string]string{
			"forms.input": "themes/acme/input.tmpl",
		},
		Assets: theme.Assets{
			Prefix: "/assets/themes/acme",
			Files:  map[string]string{"stylesheet": "theme.css"},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{"brand": "#000000"},
			},
		},
	}
}

func TestThemeTokensOverrideDefaults(t *testing.T) {
	selector, err := html.NewManifestSelector(testManifest())
	if err != nil {
		t.Fatalf("selector: %v", err)
	}
	selection, err := selector.Select("", "dark")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	cfg := html.RendererConfig(selection)
	if got := cfg.AssetURL("stylesheet"); got != "/assets/themes/acme/theme.css" {
		t.Fatalf("unexpected asset url %q", got)
	}
	if got := cfg.Tokens["brand"]; got != "#000000" {
		t.Fatalf("variant token not applied, got %q", got)
	}

	renderer, err := html.New(html.WithTheme(cfg), html.WithTokens(map[string]string{html.TokenSubmit: "btn btn-dark"}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	tracker := render.NewTracker()
	tracker.MarkInvalid("email", "Email is required.")
	out := renderState(t, renderer, tracker, render.Options{})

	mustContain(t, out,
		`class="form-control border-danger"`,
		`style="--brand: #000000"`,
		`class="btn btn-dark"`,
	)
}

func TestManifestSelectorErrors(t *testing.T) {
	selector, err := html.NewManifestSelector(testManifest())
	if err != nil {
		t.Fatalf("selector: %v", err)
	}
	if _, err := selector.Select("other", ""); err == nil {
		t.Fatalf("expected unknown theme error")
	}
	if _, err := selector.Select("acme", "sepia"); err == nil {
		t.Fatalf("expected unknown variant error")
	}
	if html.RendererConfig(nil) != nil {
		t.Fatalf("expected nil config for nil selection")
	}
}

func TestEmbeddedTemplatesRenderWithDefaults(t *testing.T) {
	renderer, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := renderer.Render(context.Background(), render.NewTracker().Snapshot(testsupport.ContactForm(t)), render.Options{})
	if err != nil {
		t.Fatalf("render embedded bundle: %v", err)
	}
	mustContain(t, string(out),
		`<div class="alerts" aria-live="polite">`,
		`<form id="contact"`,
		`<input type="email" id="email" name="email"`,
		`<textarea id="message" name="message"`,
		`</form>`,
	)
}
