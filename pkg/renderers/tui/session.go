package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"go.uber.org/zap"

	"github.com/goliatone/go-formsubmit/pkg/controller"
	"github.com/goliatone/go-formsubmit/pkg/events"
	"github.com/goliatone/go-formsubmit/pkg/model"
	"github.com/goliatone/go-formsubmit/pkg/submit"
	"github.com/goliatone/go-formsubmit/pkg/view"
)

// Session fills a form interactively. Every answer is published as a change
// followed by a blur, so the controller validates exactly as it would for a
// browser form.
type Session struct {
	driver      PromptDriver
	out         io.Writer
	profile     termenv.Profile
	theme       Theme
	maxAttempts int
	confirm     bool
	logger      *zap.Logger

	controllerOpts []controller.Option
	extraViews     []view.View

	bus      *events.Bus
	terminal *Terminal
	ctrl     *controller.Controller
}

// NewSession builds a session and its controller for form.
func NewSession(form *model.FormState, action submit.Action, opts ...Option) (*Session, error) {
	s := &Session{
		out:         os.Stdout,
		profile:     termenv.ColorProfile(),
		theme:       DefaultTheme(),
		maxAttempts: DefaultMaxAttempts,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver()
	}

	s.bus = events.NewBus()
	s.terminal = NewTerminal(s.out, s.profile, s.theme)
	v := view.View(s.terminal)
	if len(s.extraViews) > 0 {
		v = view.Multi(append([]view.View{s.terminal}, s.extraViews...)...)
	}
	ctrlOpts := append([]controller.Option{controller.WithLogger(s.logger)}, s.controllerOpts...)
	ctrl, err := controller.New(form, v, action, ctrlOpts...)
	if err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}
	s.ctrl = ctrl
	return s, nil
}

// Controller exposes the session controller.
func (s *Session) Controller() *controller.Controller {
	return s.ctrl
}

// Terminal exposes the terminal view.
func (s *Session) Terminal() *Terminal {
	return s.terminal
}

// Close releases the controller and its timers.
func (s *Session) Close() {
	s.ctrl.Close()
}

// Run prompts every field and submits. Fields the controller rejects are
// prompted again, and a failed submit is retried when the user agrees.
func (s *Session) Run(ctx context.Context) (controller.Outcome, error) {
	if err := s.ctrl.Bind(s.bus); err != nil {
		return controller.Outcome{}, fmt.Errorf("tui: bind: %w", err)
	}
	defer s.ctrl.Unbind()

	form := s.ctrl.Form()
	if form.Title != "" {
		if err := s.driver.Info(ctx, form.Title); err != nil {
			return controller.Outcome{}, err
		}
	}

	pending := form.IDs()
	for attempt := 1; ; attempt++ {
		if err := s.collect(ctx, pending); err != nil {
			return controller.Outcome{}, err
		}
		if s.confirm {
			ok, err := s.driver.Confirm(ctx, ConfirmConfig{Message: "Send?", Default: true})
			if err != nil {
				return controller.Outcome{}, err
			}
			if !ok {
				return controller.Outcome{}, ErrCancelled
			}
		}

		outcome, err := s.ctrl.Submit(ctx)
		var invalid *controller.ValidationError
		var failed *controller.SubmitFailedError
		switch {
		case err == nil:
			return outcome, nil
		case errors.As(err, &invalid):
			pending = invalid.Fields
		case errors.As(err, &failed):
			if attempt >= s.maxAttempts {
				return outcome, fmt.Errorf("%w: %w", ErrAttemptsExhausted, err)
			}
			retry, askErr := s.driver.Confirm(ctx, ConfirmConfig{Message: "Try again?", Default: true})
			if askErr != nil {
				return outcome, askErr
			}
			if !retry {
				return outcome, err
			}
			pending = nil
			continue
		default:
			return outcome, err
		}
		if attempt >= s.maxAttempts {
			return outcome, fmt.Errorf("%w: %w", ErrAttemptsExhausted, err)
		}
		s.logger.Debug("re-prompting invalid fields", zap.Strings("fields", pending))
	}
}

func (s *Session) collect(ctx context.Context, ids []string) error {
	form := s.ctrl.Form()
	for _, id := range ids {
		field, ok := form.Field(id)
		if !ok {
			continue
		}
		for try := 0; try < s.maxAttempts; try++ {
			value, err := s.ask(ctx, field)
			if err != nil {
				return err
			}
			s.bus.Change(id, value)
			s.bus.Blur(id)
			if _, invalid := s.terminal.Invalid(id); !invalid {
				break
			}
		}
	}
	return nil
}

func (s *Session) ask(ctx context.Context, field *model.Field) (string, error) {
	message := field.Label
	if message == "" {
		message = field.ID
	}
	if field.Required {
		message += " *"
	}
	help := field.Placeholder
	if counter, ok := s.terminal.Counter(field.ID); ok {
		help = counter.Text
	}

	if field.Kind == model.KindTextarea {
		return s.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: field.Value, Help: help})
	}
	return s.driver.Input(ctx, InputConfig{Message: message, Default: field.Value, Help: help})
}
