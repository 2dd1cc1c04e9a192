// Package view defines the output boundary of the controller: the requests it
// makes of whatever presentation layer hosts the form.
package view

import (
	"github.com/goliatone/go-formsubmit/pkg/notify"
)

// CounterState is the character counter for a length-limited field.
type CounterState struct {
	Length int
	Max    int
	// Warning is set above 80% of Max.
	Warning bool
	// Exceeded is set above Max.
	Exceeded bool
	Text     string
}

// View renders controller requests. Implementations decide the visual
// representation.
type View interface {
	notify.Sink

	MarkInvalid(fieldID, message string)
	ClearInvalid(fieldID string)
	SetBusy(busy bool, label string)
	UpdateCounter(fieldID string, state CounterState)
	// ResetForm is called after a successful submit cleared the values.
	ResetForm(values map[string]string)
}

// Nop ignores every request.
type Nop struct{}

var _ View = Nop{}

func (Nop) ShowNotification(notify.Notification) {}
func (Nop) RemoveNotification(string, notify.Reason) {}
func (Nop) MarkInvalid(string, string) {}
func (Nop) ClearInvalid(string) {}
func (Nop) SetBusy(bool, string) {}
func (Nop) UpdateCounter(string, CounterState) {}
func (Nop) ResetForm(map[string]string) {}

// Multi fans requests out to several views in order.
func Multi(views ...View) View {
	out := make(multi, 0, len(views))
	for _, v := range views {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}

type multi []View

func (m multi) ShowNotification(n notify.Notification) {
	for _, v := range m {
		v.ShowNotification(n)
	}
}

func (m multi) RemoveNotification(id string, reason notify.Reason) {
	for _, v := range m {
		v.RemoveNotification(id, reason)
	}
}

func (m multi) MarkInvalid(fieldID, message string) {
	for _, v := range m {
		v.MarkInvalid(fieldID, message)
	}
}

func (m multi) ClearInvalid(fieldID string) {
	for _, v := range m {
		v.ClearInvalid(fieldID)
	}
}

func (m multi) SetBusy(busy bool, label string) {
	for _, v := range m {
		v.SetBusy(busy, label)
	}
}

func (m multi) UpdateCounter(fieldID string, state CounterState) {
	for _, v := range m {
		v.UpdateCounter(fieldID, state)
	}
}

func (m multi) ResetForm(values map[string]string) {
	for _, v := range m {
		v.ResetForm(values)
	}
}
