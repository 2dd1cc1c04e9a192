package render

import (
	"sync"

	"github.com/goliatone/go-formsubmit/pkg/model"
	"github.com/goliatone/go-formsubmit/pkg/notify"
	"github.com/goliatone/go-formsubmit/pkg/view"
)

// FieldState is one field as a renderer sees it.
type FieldState struct {
	ID          string             `json:"id"`
	Label       string             `json:"label"`
	Placeholder string             `json:"placeholder,omitempty"`
	Kind        model.Kind         `json:"kind"`
	Required    bool               `json:"required"`
	MaxLength   int                `json:"maxLength,omitempty"`
	Value       string             `json:"value"`
	Invalid     bool               `json:"invalid"`
	Error       string             `json:"error,omitempty"`
	Counter     *view.CounterState `json:"counter,omitempty"`
}

// State is a point-in-time picture of a form and its view requests.
type State struct {
	FormID      string      `json:"formId"`
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description,omitempty"`
	SubmitLabel string      `json:"submitLabel,omitempty"`
	Phase       model.Phase `json:"phase"`
	// Validated is set while any field error is shown.
	Validated     bool                  `json:"validated"`
	Busy          bool                  `json:"busy"`
	BusyLabel     string                `json:"busyLabel,omitempty"`
	Fields        []FieldState          `json:"fields"`
	Notifications []notify.Notification `json:"notifications,omitempty"`
}

// Tracker is a view.View that remembers the latest request of each kind so
// a State can be rendered at any time.
type Tracker struct {
	mu            sync.Mutex
	invalid       map[string]string
	counters      map[string]view.CounterState
	notifications []notify.Notification
	busy          bool
	busyLabel     string
}

var _ view.View = (*Tracker)(nil)

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		invalid:  make(map[string]string),
		counters: make(map[string]view.CounterState),
	}
}

func (t *Tracker) ShowNotification(n notify.Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.notifications = append(t.notifications, n)
}

func (t *Tracker) RemoveNotification(id string, _ notify.Reason) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, n := range t.notifications {
		if n.ID == id {
			t.notifications = append(t.notifications[:i], t.notifications[i+1:]...)
			return
		}
	}
}

func (t *Tracker) MarkInvalid(fieldID, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.invalid[fieldID] = message
}

func (t *Tracker) ClearInvalid(fieldID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.invalid, fieldID)
}

func (t *Tracker) SetBusy(busy bool, label string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.busy = busy
	t.busyLabel = label
}

func (t *Tracker) UpdateCounter(fieldID string, state view.CounterState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counters[fieldID] = state
}

func (t *Tracker) ResetForm(map[string]string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id := range t.invalid {
		delete(t.invalid, id)
	}
}

// Snapshot combines the tracked requests with the form's current values.
func (t *Tracker) Snapshot(form *model.FormState) State {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := State{
		Busy:          t.busy,
		BusyLabel:     t.busyLabel,
		Validated:     len(t.invalid) > 0,
		Notifications: append([]notify.Notification(nil), t.notifications...),
	}
	if form == nil {
		return state
	}
	state.FormID = form.ID
	state.Title = form.Title
	state.Description = form.Description
	state.SubmitLabel = form.SubmitLabel
	state.Phase = form.Phase
	state.Fields = make([]FieldState, 0, len(form.Fields))
	for _, field := range form.Fields {
		fs := FieldState{
			ID:          field.ID,
			Label:       field.Label,
			Placeholder: field.Placeholder,
			Kind:        field.Kind,
			Required:    field.Required,
			MaxLength:   field.MaxLength,
			Value:       field.Value,
		}
		if message, ok := t.invalid[field.ID]; ok {
			fs.Invalid = true
			fs.Error = message
		}
		if counter, ok := t.counters[field.ID]; ok {
			c := counter
			fs.Counter = &c
		}
		state.Fields = append(state.Fields, fs)
	}
	return state
}
