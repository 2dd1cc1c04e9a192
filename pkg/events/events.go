// Package events carries field-level input notifications from a view layer to
// the controller. Subscriptions return an Unsubscribe handle so teardown is
// deterministic.
package events

import (
	"strings"
	"sync"
)

// Kind is the type of field event.
type Kind string

const (
	// KindChange fires when a field value changes (the "input" event).
	KindChange Kind = "change"
	// KindBlur fires when a field loses focus.
	KindBlur Kind = "blur"
)

// Event is a single field notification. Value is set for KindChange.
type Event struct {
	Field string
	Kind  Kind
	Value string
}

// Handler consumes an event.
type Handler func(Event)

// Unsubscribe releases a subscription. Calling it more than once is a no-op.
type Unsubscribe func()

// Source is the subscription side of an event stream.
type Source interface {
	Subscribe(field string, kind Kind, handler Handler) Unsubscribe
}

type subscription struct {
	id      uint64
	field   string
	kind    Kind
	handler Handler
}

// Bus is an in-process Source. Publish delivers events synchronously in call
// order; each event runs to completion on every handler before the next one
// starts, across all publishing goroutines. Handlers must not Publish on the
// same Bus.
type Bus struct {
	mu       sync.RWMutex
	dispatch sync.Mutex
	nextID   uint64
	subs     []*subscription
}

// NewBus constructs an empty Bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers handler for events of kind on field.
func (b *Bus) Subscribe(field string, kind Kind, handler Handler) Unsubscribe {
	if handler == nil {
		return func() {}
	}
	b.mu.Lock()
	b.nextID++
	sub := &subscription{
		id:      b.nextID,
		field:   strings.TrimSpace(field),
		kind:    kind,
		handler: handler,
	}
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(sub.id) })
	}
}

// Publish delivers ev to matching subscribers in subscription order.
func (b *Bus) Publish(ev Event) {
	b.dispatch.Lock()
	defer b.dispatch.Unlock()

	b.mu.RLock()
	matched := make([]Handler, 0, len(b.subs))
	for _, sub := range b.subs {
		if sub.field == ev.Field && sub.kind == ev.Kind {
			matched = append(matched, sub.handler)
		}
	}
	b.mu.RUnlock()

	for _, handler := range matched {
		handler(ev)
	}
}

// Change publishes a KindChange event.
func (b *Bus) Change(field, value string) {
	b.Publish(Event{Field: field, Kind: KindChange, Value: value})
}

// Blur publishes a KindBlur event.
func (b *Bus) Blur(field string) {
	b.Publish(Event{Field: field, Kind: KindBlur})
}

// Len reports the number of active subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if sub.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}
