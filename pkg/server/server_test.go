package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/goliatone/go-formsubmit/pkg/model"
	"github.com/goliatone/go-formsubmit/pkg/notify"
	"github.com/goliatone/go-formsubmit/pkg/render"
	"github.com/goliatone/go-formsubmit/pkg/schema"
	"github.com/goliatone/go-formsubmit/pkg/server"
	"github.com/goliatone/go-formsubmit/pkg/submit"
	"github.com/goliatone/go-formsubmit/pkg/testsupport"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingAction struct {
	mu       sync.Mutex
	payloads []submit.Payload
	err      error
}

func (a *recordingAction) Submit(_ context.Context, payload submit.Payload) (submit.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.payloads = append(a.payloads, payload)
	if a.err != nil {
		return submit.Result{}, a.err
	}
	return submit.Result{Status: 200}, nil
}

func (a *recordingAction) calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.payloads)
}

func newServer(t *testing.T, action submit.Action, opts ...server.Option) http.Handler {
	t.Helper()
	forms := schema.NewRegistry()
	require.NoError(t, forms.Register(testsupport.ContactDefinition()))
	srv, err := server.New(forms, action, opts...)
	require.NoError(t, err)
	return srv.Handler()
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func postForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/forms/contact", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) render.State {
	t.Helper()
	var state render.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	return state
}

func TestHealthz(t *testing.T) {
	h := newServer(t, &recordingAction{})
	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestShowForm(t *testing.T) {
	h := newServer(t, &recordingAction{}, server.WithHiddenFields(func(*http.Request) []render.HiddenField {
		return []render.HiddenField{render.CSRFToken("_csrf", "token-123")}
	}))
	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/forms/contact", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	require.Contains(t, body, `<form id="contact"`)
	require.Contains(t, body, `action="/forms/contact"`)
	require.Contains(t, body, `<input type="hidden" name="_csrf" value="token-123">`)
	require.Contains(t, body, `0/500 characters`)
}

func TestPostFormInvalidIsUnprocessable(t *testing.T) {
	action := &recordingAction{}
	h := newServer(t, action)

	rec := do(t, h, postForm(url.Values{"email": {""}, "message": {"hi"}}))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "Email is required.")
	require.Contains(t, body, "is-invalid")
	require.Contains(t, body, "was-validated")
	require.Equal(t, 0, action.calls())
}

func TestPostFormSuccess(t *testing.T) {
	action := &recordingAction{}
	h := newServer(t, action)

	rec := do(t, h, postForm(url.Values{"email": {"a@b.co"}, "message": {"hi"}}))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Message sent successfully!")
	require.Contains(t, rec.Body.String(), `data-phase="settled-success"`)
	require.Equal(t, 1, action.calls())
	require.Equal(t, map[string]string{"email": "a@b.co", "message": "hi"}, action.payloads[0].Values)
}

func TestAPISubmitFailureIsBadGateway(t *testing.T) {
	h := newServer(t, &recordingAction{err: errors.New("boom")})

	rec := do(t, h, postJSON("/api/forms/contact/submit", `{"values":{"email":"a@b.co"}}`))

	require.Equal(t, http.StatusBadGateway, rec.Code)
	state := decodeState(t, rec)
	require.Equal(t, model.PhaseSettledError, state.Phase)
	require.Len(t, state.Notifications, 1)
	require.Equal(t, notify.KindError, state.Notifications[0].Kind)
	require.Equal(t, "The message could not be sent: boom", state.Notifications[0].Message)
	require.False(t, state.Busy)
}

func TestAPIValidate(t *testing.T) {
	action := &recordingAction{}
	h := newServer(t, action)

	rec := do(t, h, postJSON("/api/forms/contact/validate", `{"values":{"email":"nope"}}`))

	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeState(t, rec)
	require.Equal(t, model.PhaseIdle, state.Phase)
	require.True(t, state.Validated)
	require.True(t, state.Fields[0].Invalid)
	require.Equal(t, "Please enter a valid email address.", state.Fields[0].Error)
	require.False(t, state.Fields[1].Invalid)
	require.Equal(t, 0, action.calls())
}

func TestAPIRejectsBadJSON(t *testing.T) {
	h := newServer(t, &recordingAction{})
	rec := do(t, h, postJSON("/api/forms/contact/submit", `{`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIListAndState(t *testing.T) {
	h := newServer(t, &recordingAction{})

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/forms", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"forms":["contact"]}`, rec.Body.String())

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/forms/contact", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeState(t, rec)
	require.Equal(t, "contact", state.FormID)
	require.Len(t, state.Fields, 2)
}

func TestUnknownFormIsNotFound(t *testing.T) {
	h := newServer(t, &recordingAction{})
	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/forms/missing", nil),
		postJSON("/api/forms/missing/submit", `{}`),
	} {
		rec := do(t, h, req)
		require.Equal(t, http.StatusNotFound, rec.Code, req.URL.Path)
	}
}

func TestMetricsAndCORS(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("formsubmit_submissions_total 0\n"))
	})
	h := newServer(t, &recordingAction{},
		server.WithMetricsHandler(metrics),
		server.WithAllowedOrigins("https://example.com"),
	)

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "formsubmit_submissions_total")

	req := httptest.NewRequest(http.MethodOptions, "/api/forms/contact/submit", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = do(t, h, req)
	require.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := server.New(nil, &recordingAction{})
	require.Error(t, err)

	_, err = server.New(schema.NewRegistry(), nil)
	require.Error(t, err)

	onlyJSON := render.NewRegistry()
	require.NoError(t, onlyJSON.Register(render.JSON{}))
	_, err = server.New(schema.NewRegistry(), &recordingAction{}, server.WithRenderers(onlyJSON))
	require.ErrorContains(t, err, `renderer "html" is required`)
}
