package tui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/muesli/termenv"

	"github.com/goliatone/go-formsubmit/pkg/notify"
	"github.com/goliatone/go-formsubmit/pkg/view"
)

// Theme captures the message prefixes and colours the terminal view prints
// with. Colours are hex strings degraded to the output profile.
type Theme struct {
	SuccessPrefix string
	ErrorPrefix   string
	InfoPrefix    string
	FieldPrefix   string
	BusyPrefix    string

	SuccessColor string
	ErrorColor   string
	InfoColor    string
	WarningColor string
}

// DefaultTheme is used when no theme is configured.
func DefaultTheme() Theme {
	return Theme{
		SuccessPrefix: "[ok] ",
		ErrorPrefix:   "[error] ",
		InfoPrefix:    "[info] ",
		FieldPrefix:   "  ! ",
		BusyPrefix:    "... ",
		SuccessColor:  "#22c55e",
		ErrorColor:    "#ef4444",
		InfoColor:     "#818cf8",
		WarningColor:  "#f59e0b",
	}
}

// Terminal is a view.View that prints controller requests as coloured lines.
// It also remembers which fields are flagged so callers can re-prompt them.
type Terminal struct {
	mu       sync.Mutex
	out      io.Writer
	profile  termenv.Profile
	theme    Theme
	invalid  map[string]string
	counters map[string]view.CounterState
	busy     bool
}

var _ view.View = (*Terminal)(nil)

// NewTerminal writes to out using profile. A nil out means os.Stdout.
func NewTerminal(out io.Writer, profile termenv.Profile, theme Theme) *Terminal {
	if out == nil {
		out = os.Stdout
	}
	return &Terminal{
		out:      out,
		profile:  profile,
		theme:    theme,
		invalid:  make(map[string]string),
		counters: make(map[string]view.CounterState),
	}
}

func (t *Terminal) ShowNotification(n notify.Notification) {
	prefix, color := t.theme.InfoPrefix, t.theme.InfoColor
	switch n.Kind {
	case notify.KindSuccess:
		prefix, color = t.theme.SuccessPrefix, t.theme.SuccessColor
	case notify.KindError:
		prefix, color = t.theme.ErrorPrefix, t.theme.ErrorColor
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.printLocked(color, true, prefix+n.Message)
}

// RemoveNotification is silent; printed lines stay in the scrollback.
func (t *Terminal) RemoveNotification(string, notify.Reason) {}

func (t *Terminal) MarkInvalid(fieldID, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if previous, ok := t.invalid[fieldID]; ok && previous == message {
		return
	}
	t.invalid[fieldID] = message
	t.printLocked(t.theme.ErrorColor, false, t.theme.FieldPrefix+message)
}

func (t *Terminal) ClearInvalid(fieldID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.invalid, fieldID)
}

func (t *Terminal) SetBusy(busy bool, label string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if busy && !t.busy && label != "" {
		t.printLocked(t.theme.InfoColor, false, t.theme.BusyPrefix+label)
	}
	t.busy = busy
}

func (t *Terminal) UpdateCounter(fieldID string, state view.CounterState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counters[fieldID] = state
	switch {
	case state.Exceeded:
		t.printLocked(t.theme.ErrorColor, false, t.theme.FieldPrefix+state.Text)
	case state.Warning:
		t.printLocked(t.theme.WarningColor, false, t.theme.FieldPrefix+state.Text)
	}
}

func (t *Terminal) ResetForm(map[string]string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.invalid)
}

// Invalid reports the message currently shown for fieldID.
func (t *Terminal) Invalid(fieldID string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	message, ok := t.invalid[fieldID]
	return message, ok
}

// Counter reports the last counter state for fieldID.
func (t *Terminal) Counter(fieldID string) (view.CounterState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	state, ok := t.counters[fieldID]
	return state, ok
}

func (t *Terminal) printLocked(color string, bold bool, line string) {
	style := t.profile.String(line)
	if color != "" {
		style = style.Foreground(t.profile.Color(color))
	}
	if bold {
		style = style.Bold()
	}
	fmt.Fprintln(t.out, style.String())
}
