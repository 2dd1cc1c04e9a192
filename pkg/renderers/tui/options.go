package tui

import (
	"io"

	"github.com/muesli/termenv"
	"go.uber.org/zap"

	"github.com/goliatone/go-formsubmit/pkg/controller"
	"github.com/goliatone/go-formsubmit/pkg/view"
)

// DefaultMaxAttempts bounds both per-field re-prompts and submit attempts.
const DefaultMaxAttempts = 3

// Option configures a Session.
type Option func(*Session)

// WithPromptDriver overrides the prompt driver used by the session.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithOutput sets where the terminal view prints.
func WithOutput(out io.Writer) Option {
	return func(s *Session) {
		if out != nil {
			s.out = out
		}
	}
}

// WithProfile forces a colour profile. termenv.Ascii disables colours.
func WithProfile(profile termenv.Profile) Option {
	return func(s *Session) {
		s.profile = profile
	}
}

// WithTheme applies message prefixes and colours.
func WithTheme(theme Theme) Option {
	return func(s *Session) {
		s.theme = theme
	}
}

// WithMaxAttempts bounds re-prompts per field and submit attempts.
func WithMaxAttempts(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithConfirm asks the user before every submit.
func WithConfirm(confirm bool) Option {
	return func(s *Session) {
		s.confirm = confirm
	}
}

// WithControllerOptions passes options through to the controller.
func WithControllerOptions(opts ...controller.Option) Option {
	return func(s *Session) {
		s.controllerOpts = append(s.controllerOpts, opts...)
	}
}

// WithView adds a view that mirrors the terminal output, such as a metrics
// or recording view.
func WithView(v view.View) Option {
	return func(s *Session) {
		if v != nil {
			s.extraViews = append(s.extraViews, v)
		}
	}
}

// WithLogger sets the session logger. It is also handed to the controller.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}
