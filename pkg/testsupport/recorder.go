package testsupport

import (
	"fmt"
	"sync"

	"github.com/goliatone/go-formsubmit/pkg/notify"
	"github.com/goliatone/go-formsubmit/pkg/view"
)

// Recorder is a view.View that keeps every request it receives, both as an
// ordered call log and as current state.
type Recorder struct {
	mu sync.Mutex

	calls         []string
	invalid       map[string]string
	counters      map[string]view.CounterState
	notifications map[string]notify.Notification
	removed       map[string]notify.Reason
	busy          bool
	busyLabel     string
	busyHistory   []bool
	resets        []map[string]string
}

var _ view.View = (*Recorder)(nil)

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		invalid:       make(map[string]string),
		counters:      make(map[string]view.CounterState),
		notifications: make(map[string]notify.Notification),
		removed:       make(map[string]notify.Reason),
	}
}

func (r *Recorder) ShowNotification(n notify.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf("notify:%s:%s", n.Kind, n.Message))
	r.notifications[n.ID] = n
}

func (r *Recorder) RemoveNotification(id string, reason notify.Reason) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf("remove:%s:%s", id, reason))
	delete(r.notifications, id)
	r.removed[id] = reason
}

func (r *Recorder) MarkInvalid(fieldID, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "invalid:"+fieldID)
	r.invalid[fieldID] = message
}

func (r *Recorder) ClearInvalid(fieldID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "clear:"+fieldID)
	delete(r.invalid, fieldID)
}

func (r *Recorder) SetBusy(busy bool, label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf("busy:%t", busy))
	r.busy = busy
	r.busyLabel = label
	r.busyHistory = append(r.busyHistory, busy)
}

func (r *Recorder) UpdateCounter(fieldID string, state view.CounterState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "counter:"+fieldID)
	r.counters[fieldID] = state
}

func (r *Recorder) ResetForm(values map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "reset")
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	r.resets = append(r.resets, copied)
}

// Calls returns the ordered call log.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Invalid returns the fields currently marked invalid with their messages.
func (r *Recorder) Invalid() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.invalid))
	for k, v := range r.invalid {
		out[k] = v
	}
	return out
}

// Counter returns the last counter state reported for a field.
func (r *Recorder) Counter(fieldID string) (view.CounterState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.counters[fieldID]
	return state, ok
}

// Notifications returns the notifications currently shown.
func (r *Recorder) Notifications() map[string]notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]notify.Notification, len(r.notifications))
	for k, v := range r.notifications {
		out[k] = v
	}
	return out
}

// Removed reports why a notification was removed.
func (r *Recorder) Removed(id string) (notify.Reason, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reason, ok := r.removed[id]
	return reason, ok
}

// Busy returns the current busy flag and label.
func (r *Recorder) Busy() (bool, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.busy, r.busyLabel
}

// BusyHistory lists every busy value set, in order.
func (r *Recorder) BusyHistory() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.busyHistory...)
}

// Resets lists the values passed to each ResetForm call.
func (r *Recorder) Resets() []map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]map[string]string(nil), r.resets...)
}
