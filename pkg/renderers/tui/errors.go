package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrCancelled is returned when the user declines to send the form.
	ErrCancelled = errors.New("tui: submission cancelled")
	// ErrAttemptsExhausted is returned once the submit attempt limit is hit.
	ErrAttemptsExhausted = errors.New("tui: submit attempts exhausted")
)
