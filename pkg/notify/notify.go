// Package notify manages transient user-facing notifications. Every
// notification carries its own dismiss timer; notifications tagged with the
// same action key supersede each other so at most one per action is live.
package notify

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formsubmit/pkg/schedule"
)

// DefaultDismissDelay matches the alert lifetime of the contact form.
const DefaultDismissDelay = 5 * time.Second

// Kind classifies a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Reason explains why a notification stopped being live.
type Reason string

const (
	ReasonExpired    Reason = "expired"
	ReasonDismissed  Reason = "dismissed"
	ReasonSuperseded Reason = "superseded"
	ReasonClosed     Reason = "closed"
)

// Notification is a transient message with an auto-dismiss deadline.
type Notification struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	Action    string    `json:"action,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Deadline  time.Time `json:"deadline"`
}

// Sink renders notifications. Calls happen outside the center's lock.
type Sink interface {
	ShowNotification(n Notification)
	RemoveNotification(id string, reason Reason)
}

// RemoveHook observes removals, e.g. to leave a settled phase.
type RemoveHook func(n Notification, reason Reason)

// Option configures a Center.
type Option func(*Center)

// WithScheduler sets the clock and timer source.
func WithScheduler(s schedule.Scheduler) Option {
	return func(c *Center) {
		if s != nil {
			c.scheduler = s
		}
	}
}

// WithDismissDelay overrides the auto-dismiss delay. Non-positive values are
// ignored.
func WithDismissDelay(d time.Duration) Option {
	return func(c *Center) {
		if d > 0 {
			c.delay = d
		}
	}
}

// WithSink wires the view that renders notifications.
func WithSink(sink Sink) Option {
	return func(c *Center) {
		c.sink = sink
	}
}

// WithIDGenerator replaces the uuid-based id source.
func WithIDGenerator(fn func() string) Option {
	return func(c *Center) {
		if fn != nil {
			c.ids = fn
		}
	}
}

// WithRemoveHook registers a removal observer.
func WithRemoveHook(hook RemoveHook) Option {
	return func(c *Center) {
		if hook != nil {
			c.hooks = append(c.hooks, hook)
		}
	}
}

// NotifyOption adjusts a single notification.
type NotifyOption func(*notifyConfig)

type notifyConfig struct {
	action string
	delay  time.Duration
}

// Action tags the notification with a logical action key. A newer
// notification with the same key supersedes the live one.
func Action(key string) NotifyOption {
	return func(cfg *notifyConfig) {
		cfg.action = strings.TrimSpace(key)
	}
}

// Delay overrides the dismiss delay for one notification.
func Delay(d time.Duration) NotifyOption {
	return func(cfg *notifyConfig) {
		if d > 0 {
			cfg.delay = d
		}
	}
}

type entry struct {
	notification Notification
	task         schedule.Task
}

// Center owns the live notifications of one view.
type Center struct {
	mu        sync.Mutex
	scheduler schedule.Scheduler
	delay     time.Duration
	sink      Sink
	ids       func() string
	hooks     []RemoveHook

	live     map[string]*entry
	byAction map[string]string
	closed   bool
}

// NewCenter constructs a Center using the system scheduler by default.
func NewCenter(options ...Option) *Center {
	c := &Center{
		scheduler: schedule.System(),
		delay:     DefaultDismissDelay,
		ids:       func() string { return uuid.New().String() },
		live:      make(map[string]*entry),
		byAction:  make(map[string]string),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// DismissDelay reports the default auto-dismiss delay.
func (c *Center) DismissDelay() time.Duration {
	return c.delay
}

// Notify creates a live notification and schedules its dismissal. After
// Close, the notification is returned but never shown.
func (c *Center) Notify(kind Kind, message string, opts ...NotifyOption) Notification {
	cfg := notifyConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	c.mu.Lock()
	delay := c.delay
	if cfg.delay > 0 {
		delay = cfg.delay
	}
	now := c.scheduler.Now()
	n := Notification{
		ID:        c.ids(),
		Kind:      kind,
		Message:   strings.TrimSpace(message),
		Action:    cfg.action,
		CreatedAt: now,
		Deadline:  now.Add(delay),
	}
	if c.closed {
		c.mu.Unlock()
		return n
	}

	var superseded *entry
	if n.Action != "" {
		if prevID, ok := c.byAction[n.Action]; ok {
			superseded = c.detach(prevID)
		}
		c.byAction[n.Action] = n.ID
	}

	id := n.ID
	e := &entry{notification: n}
	c.live[id] = e
	e.task = c.scheduler.AfterFunc(delay, func() { c.remove(id, ReasonExpired) })
	c.mu.Unlock()

	if superseded != nil {
		c.emitRemoval(superseded.notification, ReasonSuperseded)
	}
	if c.sink != nil {
		c.sink.ShowNotification(n)
	}
	return n
}

// Dismiss removes a live notification immediately. It reports whether the
// notification was live.
func (c *Center) Dismiss(id string) bool {
	return c.remove(id, ReasonDismissed)
}

// IsLive reports whether the notification is still shown.
func (c *Center) IsLive(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.live[id]
	return ok
}

// Live returns the live notifications ordered by creation time.
func (c *Center) Live() []Notification {
	c.mu.Lock()
	out := make([]Notification, 0, len(c.live))
	for _, e := range c.live {
		out = append(out, e.notification)
	}
	c.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Close stops every timer and removes all live notifications. Later Notify
// calls are not shown.
func (c *Center) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	removed := make([]Notification, 0, len(c.live))
	for id := range c.live {
		if e := c.detach(id); e != nil {
			removed = append(removed, e.notification)
		}
	}
	c.mu.Unlock()

	sort.SliceStable(removed, func(i, j int) bool {
		return removed[i].CreatedAt.Before(removed[j].CreatedAt)
	})
	for _, n := range removed {
		c.emitRemoval(n, ReasonClosed)
	}
}

func (c *Center) remove(id string, reason Reason) bool {
	c.mu.Lock()
	e := c.detach(id)
	c.mu.Unlock()
	if e == nil {
		return false
	}
	c.emitRemoval(e.notification, reason)
	return true
}

// detach must be called with c.mu held.
func (c *Center) detach(id string) *entry {
	e, ok := c.live[id]
	if !ok {
		return nil
	}
	delete(c.live, id)
	if e.task != nil {
		e.task.Stop()
	}
	if action := e.notification.Action; action != "" && c.byAction[action] == id {
		delete(c.byAction, action)
	}
	return e
}

func (c *Center) emitRemoval(n Notification, reason Reason) {
	if c.sink != nil {
		c.sink.RemoveNotification(n.ID, reason)
	}
	for _, hook := range c.hooks {
		hook(n, reason)
	}
}
