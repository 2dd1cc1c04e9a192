// Package server exposes registered forms over HTTP: server-rendered HTML
// pages that post back url-encoded values, and a JSON API for script-driven
// views. Every request gets its own controller, closed once the response is
// written.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/goliatone/go-formsubmit/pkg/controller"
	"github.com/goliatone/go-formsubmit/pkg/events"
	"github.com/goliatone/go-formsubmit/pkg/model"
	"github.com/goliatone/go-formsubmit/pkg/render"
	"github.com/goliatone/go-formsubmit/pkg/renderers/html"
	"github.com/goliatone/go-formsubmit/pkg/schema"
	"github.com/goliatone/go-formsubmit/pkg/submit"
)

const maxBodyBytes = 1 << 20

// HiddenFunc supplies hidden inputs, such as a CSRF token, per request.
type HiddenFunc func(r *http.Request) []render.HiddenField

type Option func(*Server)

// WithRenderers replaces the renderer registry. It must provide "html" and
// "json".
func WithRenderers(renderers *render.Registry) Option {
	return func(s *Server) {
		if renderers != nil {
			s.renderers = renderers
		}
	}
}

// WithControllerOptions applies options to every per-request controller.
func WithControllerOptions(opts ...controller.Option) Option {
	return func(s *Server) {
		s.controllerOpts = append(s.controllerOpts, opts...)
	}
}

// WithMetricsHandler mounts handler on /metrics.
func WithMetricsHandler(handler http.Handler) Option {
	return func(s *Server) {
		s.metrics = handler
	}
}

// WithAllowedOrigins enables CORS for the given origins.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.allowedOrigins = append(s.allowedOrigins, origins...)
	}
}

// WithHiddenFields adds hidden inputs to rendered forms.
func WithHiddenFields(fn HiddenFunc) Option {
	return func(s *Server) {
		s.hidden = fn
	}
}

// WithLocale sets the locale passed to renderers.
func WithLocale(locale string) Option {
	return func(s *Server) {
		s.locale = locale
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Server routes form requests to controllers.
type Server struct {
	forms          *schema.Registry
	action         submit.Action
	renderers      *render.Registry
	controllerOpts []controller.Option
	metrics        http.Handler
	allowedOrigins []string
	hidden         HiddenFunc
	locale         string
	logger         *zap.Logger

	router chi.Router
}

// New builds a server for the forms in registry, all submitted through action.
func New(forms *schema.Registry, action submit.Action, opts ...Option) (*Server, error) {
	if forms == nil {
		return nil, errors.New("server: form registry is required")
	}
	if action == nil {
		return nil, errors.New("server: submit action is required")
	}
	s := &Server{forms: forms, action: action, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if s.renderers == nil {
		renderers, err := defaultRenderers()
		if err != nil {
			return nil, err
		}
		s.renderers = renderers
	}
	for _, name := range []string{"html", "json"} {
		if !s.renderers.Has(name) {
			return nil, fmt.Errorf("server: renderer %q is required", name)
		}
	}
	s.controllerOpts = append([]controller.Option{controller.WithLogger(s.logger)}, s.controllerOpts...)

	s.router = s.buildRouter()
	return s, nil
}

func defaultRenderers() (*render.Registry, error) {
	htmlRenderer, err := html.New()
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	renderers := render.NewRegistry()
	if err := renderers.Register(htmlRenderer); err != nil {
		return nil, err
	}
	if err := renderers.Register(render.JSON{}); err != nil {
		return nil, err
	}
	return renderers, nil
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	if len(s.allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/forms/{id}", func(r chi.Router) {
		r.Get("/", s.showForm)
		r.Post("/", s.postForm)
	})
	r.Route("/api/forms", func(r chi.Router) {
		r.Get("/", s.listForms)
		r.Get("/{id}", s.formState)
		r.Post("/{id}/validate", s.validateForm)
		r.Post("/{id}/submit", s.submitForm)
	})
	return r
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: listen: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		<-errCh
		return nil
	}
}

// session is the per-request controller plus the views it drives.
type session struct {
	form    *model.FormState
	tracker *render.Tracker
	bus     *events.Bus
	ctrl    *controller.Controller
}

func (s *Server) open(id string) (*session, error) {
	def, err := s.forms.Get(id)
	if err != nil {
		return nil, err
	}
	form, err := model.NewFormState(def)
	if err != nil {
		return nil, err
	}
	tracker := render.NewTracker()
	ctrl, err := controller.New(form, tracker, s.action, s.controllerOpts...)
	if err != nil {
		return nil, err
	}
	bus := events.NewBus()
	if err := ctrl.Bind(bus); err != nil {
		ctrl.Close()
		return nil, err
	}
	return &session{form: form, tracker: tracker, bus: bus, ctrl: ctrl}, nil
}

// input replays submitted values as change events in field order.
func (ss *session) input(values map[string]string) {
	for _, field := range ss.form.Fields {
		if value, ok := values[field.ID]; ok {
			ss.bus.Change(field.ID, value)
		}
	}
}

func (ss *session) snapshot() render.State {
	return ss.tracker.Snapshot(ss.form)
}

func (ss *session) close() {
	ss.ctrl.Close()
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session, bool) {
	id := chi.URLParam(r, "id")
	if !s.forms.Has(id) {
		http.NotFound(w, r)
		return nil, false
	}
	ss, err := s.open(id)
	if err != nil {
		s.logger.Error("open form", zap.String("form", id), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return nil, false
	}
	return ss, true
}

func (s *Server) renderOptions(r *http.Request, formID string) render.Options {
	opts := render.Options{
		Action: "/forms/" + formID,
		Method: http.MethodPost,
		Locale: s.locale,
	}
	if s.hidden != nil {
		opts.Hidden = s.hidden(r)
	}
	return opts
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, renderer string, status int, state render.State) {
	body, contentType, err := s.renderers.Render(r.Context(), renderer, state, s.renderOptions(r, state.FormID))
	if err != nil {
		s.logger.Error("render form", zap.String("form", state.FormID), zap.String("renderer", renderer), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (s *Server) showForm(w http.ResponseWriter, r *http.Request) {
	ss, ok := s.lookup(w, r)
	if !ok {
		return
	}
	defer ss.close()
	s.respond(w, r, "html", http.StatusOK, ss.snapshot())
}

func (s *Server) postForm(w http.ResponseWriter, r *http.Request) {
	ss, ok := s.lookup(w, r)
	if !ok {
		return
	}
	defer ss.close()

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	values := make(map[string]string, len(ss.form.Fields))
	for _, field := range ss.form.Fields {
		if vals, ok := r.PostForm[field.ID]; ok && len(vals) > 0 {
			values[field.ID] = vals[0]
		}
	}
	ss.input(values)

	status := submitStatus(ss.ctrl.Submit(r.Context()))
	s.respond(w, r, "html", status, ss.snapshot())
}

func (s *Server) listForms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"forms": s.forms.List()})
}

func (s *Server) formState(w http.ResponseWriter, r *http.Request) {
	ss, ok := s.lookup(w, r)
	if !ok {
		return
	}
	defer ss.close()
	s.respond(w, r, "json", http.StatusOK, ss.snapshot())
}

type valuesRequest struct {
	Values map[string]string `json:"values"`
}

func decodeValues(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	var req valuesRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		return nil, err
	}
	return req.Values, nil
}

func (s *Server) validateForm(w http.ResponseWriter, r *http.Request) {
	ss, ok := s.lookup(w, r)
	if !ok {
		return
	}
	defer ss.close()

	values, err := decodeValues(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	ss.input(values)
	ss.ctrl.Validate()
	s.respond(w, r, "json", http.StatusOK, ss.snapshot())
}

func (s *Server) submitForm(w http.ResponseWriter, r *http.Request) {
	ss, ok := s.lookup(w, r)
	if !ok {
		return
	}
	defer ss.close()

	values, err := decodeValues(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	ss.input(values)
	status := submitStatus(ss.ctrl.Submit(r.Context()))
	s.respond(w, r, "json", status, ss.snapshot())
}

// submitStatus maps an outcome to a response code: 422 for an invalid form,
// 502 when the action failed.
func submitStatus(outcome controller.Outcome, err error) int {
	var invalid *controller.ValidationError
	var failed *controller.SubmitFailedError
	switch {
	case err == nil && outcome.Status == controller.OutcomeSucceeded:
		return http.StatusOK
	case errors.As(err, &invalid):
		return http.StatusUnprocessableEntity
	case errors.As(err, &failed):
		return http.StatusBadGateway
	case err == nil:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
