// Package submit provides the actions that transmit a validated form. The
// controller treats an Action as opaque: it either succeeds or fails.
package submit

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formsubmit/pkg/schedule"
)

// Payload is the data handed to an Action. Fields preserves visual order.
type Payload struct {
	FormID string            `json:"formId"`
	Fields []string          `json:"-"`
	Values map[string]string `json:"values"`
}

// Result is what a successful Action reports back.
type Result struct {
	Status    int    `json:"status,omitempty"`
	Message   string `json:"message,omitempty"`
	Reference string `json:"reference,omitempty"`
}

// Action transmits a payload.
type Action interface {
	Submit(ctx context.Context, payload Payload) (Result, error)
}

// ActionFunc adapts a function to Action.
type ActionFunc func(ctx context.Context, payload Payload) (Result, error)

// Submit calls f.
func (f ActionFunc) Submit(ctx context.Context, payload Payload) (Result, error) {
	return f(ctx, payload)
}

// DefaultSimulatedDelay is the fake network latency of the contact form.
const DefaultSimulatedDelay = 2 * time.Second

// ErrSimulatedFailure is returned by a Simulated action configured to fail.
var ErrSimulatedFailure = errors.New("submit: simulated failure")

// Simulated waits for a delay on a scheduler and succeeds, unless Fail
// returns an error for the payload.
type Simulated struct {
	Delay     time.Duration
	Scheduler schedule.Scheduler
	Fail      func(Payload) error
}

// NewSimulated returns a Simulated action using the system scheduler.
func NewSimulated(delay time.Duration) *Simulated {
	if delay < 0 {
		delay = 0
	}
	return &Simulated{Delay: delay, Scheduler: schedule.System()}
}

// Submit implements Action.
func (s *Simulated) Submit(ctx context.Context, payload Payload) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if s.Delay > 0 {
		if err := schedule.Sleep(ctx, s.Scheduler, s.Delay); err != nil {
			return Result{}, err
		}
	}
	if s.Fail != nil {
		if err := s.Fail(payload); err != nil {
			return Result{}, err
		}
	}
	return Result{Status: 200}, nil
}

// WithLogging wraps next so every submission is logged with its duration.
func WithLogging(logger *zap.Logger, next Action) Action {
	if logger == nil {
		logger = zap.NewNop()
	}
	return ActionFunc(func(ctx context.Context, payload Payload) (Result, error) {
		start := time.Now()
		result, err := next.Submit(ctx, payload)
		fields := []zap.Field{
			zap.String("form", payload.FormID),
			zap.Int("fields", len(payload.Values)),
			zap.Duration("duration", time.Since(start)),
		}
		if err != nil {
			logger.Warn("form submission failed", append(fields, zap.Error(err))...)
			return result, err
		}
		logger.Info("form submitted", append(fields, zap.Int("status", result.Status))...)
		return result, nil
	})
}
