package controller

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formsubmit/pkg/i18n"
	"github.com/goliatone/go-formsubmit/pkg/model"
	"github.com/goliatone/go-formsubmit/pkg/notify"
	"github.com/goliatone/go-formsubmit/pkg/schedule"
	"github.com/goliatone/go-formsubmit/pkg/validation"
)

// Hooks observe controller activity. Every hook is optional and runs outside
// the controller lock.
type Hooks struct {
	OnPhaseChange func(formID string, from, to model.Phase)
	OnValidated   func(formID string, result validation.Result)
	OnSubmitted   func(formID string, outcome Outcome, err error, elapsed time.Duration)
}

// Option configures a Controller.
type Option func(*Controller)

// WithScheduler sets the clock used for notification timers.
func WithScheduler(s schedule.Scheduler) Option {
	return func(c *Controller) {
		if s != nil {
			c.scheduler = s
		}
	}
}

// WithDismissDelay overrides how long notifications stay live.
func WithDismissDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.dismissDelay = d
		}
	}
}

// WithNotifyOptions forwards extra options to the notification center.
func WithNotifyOptions(opts ...notify.Option) Option {
	return func(c *Controller) {
		c.notifyOptions = append(c.notifyOptions, opts...)
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHooks registers lifecycle observers.
func WithHooks(hooks Hooks) Option {
	return func(c *Controller) {
		c.hooks = hooks
	}
}

// WithTranslator overrides the message catalog.
func WithTranslator(t i18n.Translator) Option {
	return func(c *Controller) {
		if t != nil {
			c.translator = t
		}
	}
}

// WithLocale selects the message locale.
func WithLocale(locale string) Option {
	return func(c *Controller) {
		if trimmed := strings.TrimSpace(locale); trimmed != "" {
			c.locale = trimmed
		}
	}
}

// WithResetOnSuccess controls whether values are reset after a successful
// submit. Enabled by default.
func WithResetOnSuccess(reset bool) Option {
	return func(c *Controller) {
		c.resetOnSuccess = reset
	}
}
