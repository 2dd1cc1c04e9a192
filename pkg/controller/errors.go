package controller

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formsubmit/pkg/validation"
)

var (
	// ErrClosed is returned by operations on a closed controller.
	ErrClosed = errors.New("controller: closed")
	// ErrUnknownField is returned when an operation names a field the form
	// does not declare.
	ErrUnknownField = errors.New("controller: unknown field")
	// ErrActionPanicked wraps a panic raised by the submit action.
	ErrActionPanicked = errors.New("controller: submit action panicked")
)

// ValidationError reports the fields that blocked a submit.
type ValidationError struct {
	Fields []string
	Result validation.Result
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("controller: validation failed: %s", strings.Join(e.Fields, ", "))
}

// SubmitFailedError wraps the reason the submit action failed.
type SubmitFailedError struct {
	Reason error
}

func (e *SubmitFailedError) Error() string {
	if e.Reason == nil {
		return "controller: submit failed"
	}
	return fmt.Sprintf("controller: submit failed: %v", e.Reason)
}

func (e *SubmitFailedError) Unwrap() error {
	return e.Reason
}
