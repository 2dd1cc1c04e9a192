package app_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/goliatone/go-formsubmit/internal/app"
	"github.com/goliatone/go-formsubmit/internal/config"
	"github.com/goliatone/go-formsubmit/pkg/controller"
	"github.com/goliatone/go-formsubmit/pkg/render"
	"github.com/goliatone/go-formsubmit/pkg/submit"
	"github.com/goliatone/go-formsubmit/pkg/testsupport"
	"github.com/goliatone/go-formsubmit/pkg/validation"
)

func TestFormsFromDefinitionFile(t *testing.T) {
	cfg := config.Default()
	cfg.Form.Path = "testdata/contact.yaml"

	forms, err := app.Forms(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, []string{"contact"}, forms.List())

	def, err := forms.Get("contact")
	require.NoError(t, err)
	require.Equal(t, "Contact us", def.Title)
	require.Len(t, def.Fields, 2)
}

func TestFormsFromOpenAPI(t *testing.T) {
	cfg := config.Default()
	cfg.Form.OpenAPI = "testdata/openapi.yaml"

	forms, err := app.Forms(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, []string{"put:/subscribe", "sendMessage"}, forms.List())

	cfg.Form.Operation = "sendMessage"
	defs, err := app.Definitions(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	require.Equal(t, "sendMessage", defs[0].ID)
}

func TestFormsMissingSource(t *testing.T) {
	cfg := config.Default()
	_, err := app.Forms(context.Background(), cfg)
	require.Error(t, err)

	cfg.Form.Path = "testdata/missing.yaml"
	_, err = app.Forms(context.Background(), cfg)
	require.Error(t, err)
}

func TestSimulatedAction(t *testing.T) {
	cfg := config.Default()
	cfg.Submit.Delay = 0

	action, err := app.Action(cfg, zap.NewNop())
	require.NoError(t, err)
	res, err := action.Submit(context.Background(), submit.Payload{FormID: "contact", Values: map[string]string{"email": "a@b.co"}})
	require.NoError(t, err)
	require.Equal(t, 200, res.Status)
}

func TestHTTPAction(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Submit.Mode = config.ModeHTTP
	cfg.Submit.Endpoint = srv.URL

	action, err := app.Action(cfg, zap.NewNop())
	require.NoError(t, err)
	res, err := action.Submit(context.Background(), submit.Payload{FormID: "contact", Values: map[string]string{"email": "a@b.co"}})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, res.Status)
	require.Equal(t, "contact", got["formId"])

	cfg.Submit.Mode = "smoke-signals"
	_, err = app.Action(cfg, zap.NewNop())
	require.Error(t, err)
}

func TestRenderersApplyThemeVariant(t *testing.T) {
	cfg := config.Default()
	cfg.Theme = config.ThemeConfig{
		Name:    "acme",
		Variant: "dark",
		Tokens:  map[string]string{"field.invalid": "border-danger"},
		Variants: map[string]map[string]string{
			"dark": {"form.base": "needs-validation form-dark"},
		},
	}

	renderers, err := app.Renderers(cfg)
	require.NoError(t, err)
	require.Equal(t, []string{"html", "json"}, renderers.List())

	htmlRenderer, err := renderers.Get("html")
	require.NoError(t, err)

	tracker := render.NewTracker()
	tracker.MarkInvalid("email", "Email is required.")
	form := testsupport.ContactForm(t)
	out, err := htmlRenderer.Render(context.Background(), tracker.Snapshot(form), render.Options{})
	require.NoError(t, err)

	body := string(out)
	require.True(t, strings.Contains(body, "border-danger"), body)
	require.True(t, strings.Contains(body, "form-dark"), body)

	cfg.Theme.Variant = "light"
	_, err = app.Renderers(cfg)
	require.Error(t, err)
}

func TestControllerOptionsApplyLocaleAndHooks(t *testing.T) {
	cfg := config.Default()
	cfg.Locale = "ru"

	var validated []string
	hooks := controller.Hooks{
		OnValidated: func(_ string, result validation.Result) {
			validated = append(validated, result.Fields()...)
		},
	}
	action := submit.ActionFunc(func(context.Context, submit.Payload) (submit.Result, error) {
		return submit.Result{}, nil
	})
	ctrl, err := controller.New(testsupport.ContactForm(t), nil, action, app.ControllerOptions(cfg, zap.NewNop(), hooks)...)
	require.NoError(t, err)
	t.Cleanup(ctrl.Close)

	result := ctrl.Validate()
	issue, ok := result.For("email")
	require.True(t, ok)
	require.Equal(t, "Поле «Email» обязательно для заполнения.", issue.Message)
	require.Equal(t, []string{"email"}, validated)
}
