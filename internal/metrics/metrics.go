// Package metrics exposes controller activity as Prometheus series.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-formsubmit/pkg/controller"
	"github.com/goliatone/go-formsubmit/pkg/model"
	"github.com/goliatone/go-formsubmit/pkg/validation"
)

// Metrics owns a registry and the formsubmit collectors.
type Metrics struct {
	registry    *prometheus.Registry
	submissions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	invalid     *prometheus.CounterVec
	phases      *prometheus.CounterVec
}

// New registers the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formsubmit_submissions_total",
				Help: "Submit attempts by form and outcome.",
			},
			[]string{"form", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "formsubmit_submit_duration_seconds",
				Help:    "Duration of submit actions.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"form", "status"},
		),
		invalid: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formsubmit_validation_issues_total",
				Help: "Field issues reported by validation passes.",
			},
			[]string{"form", "field", "code"},
		),
		phases: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formsubmit_phase_transitions_total",
				Help: "Lifecycle phase transitions by target phase.",
			},
			[]string{"form", "to"},
		),
	}
	m.registry.MustRegister(
		m.submissions,
		m.duration,
		m.invalid,
		m.phases,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns controller hooks feeding the collectors.
func (m *Metrics) Hooks() controller.Hooks {
	return controller.Hooks{
		OnPhaseChange: func(formID string, _, to model.Phase) {
			m.phases.WithLabelValues(formID, string(to)).Inc()
		},
		OnValidated: func(formID string, result validation.Result) {
			for _, issue := range result.Issues {
				m.invalid.WithLabelValues(formID, issue.Field, string(issue.Code)).Inc()
			}
		},
		OnSubmitted: func(formID string, outcome controller.Outcome, _ error, elapsed time.Duration) {
			status := string(outcome.Status)
			m.submissions.WithLabelValues(formID, status).Inc()
			if outcome.Status == controller.OutcomeSucceeded || outcome.Status == controller.OutcomeFailed {
				m.duration.WithLabelValues(formID, status).Observe(elapsed.Seconds())
			}
		},
	}
}
