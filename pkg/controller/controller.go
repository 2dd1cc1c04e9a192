package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formsubmit/pkg/events"
	"github.com/goliatone/go-formsubmit/pkg/i18n"
	"github.com/goliatone/go-formsubmit/pkg/model"
	"github.com/goliatone/go-formsubmit/pkg/notify"
	"github.com/goliatone/go-formsubmit/pkg/schedule"
	"github.com/goliatone/go-formsubmit/pkg/submit"
	"github.com/goliatone/go-formsubmit/pkg/validation"
	"github.com/goliatone/go-formsubmit/pkg/view"
)

// SubmitAction is the notification action key shared by submit outcomes, so a
// newer outcome supersedes the previous alert.
const SubmitAction = "submit"

// counterWarningRatio is the share of MaxLength above which the counter warns.
const counterWarningRatio = 0.8

// OutcomeStatus summarises how a Submit call ended.
type OutcomeStatus string

const (
	OutcomeSucceeded OutcomeStatus = "succeeded"
	OutcomeFailed    OutcomeStatus = "failed"
	OutcomeInvalid   OutcomeStatus = "invalid"
	// OutcomeIgnored: a submit was already in flight.
	OutcomeIgnored OutcomeStatus = "ignored"
)

// Outcome describes a finished Submit call.
type Outcome struct {
	Status       OutcomeStatus
	Result       submit.Result
	Validation   validation.Result
	Notification notify.Notification
}

// Controller drives one form. It is owned by the view hosting the form and
// must be closed when that view is torn down.
type Controller struct {
	mu sync.Mutex

	form   *model.FormState
	view   view.View
	action submit.Action
	center *notify.Center

	scheduler      schedule.Scheduler
	dismissDelay   time.Duration
	notifyOptions  []notify.Option
	logger         *zap.Logger
	translator     i18n.Translator
	locale         string
	hooks          Hooks
	resetOnSuccess bool

	subscriptions map[string][]events.Unsubscribe
	shown         map[string]bool
	busy          bool
	busyLabel     string
	settledID     string
	closed        bool
}

// effects collects view, hook and notification calls made while the lock is
// held. They run in order once it is released.
type effects []func()

func (e *effects) add(fn func()) {
	*e = append(*e, fn)
}

func (e effects) run() {
	for _, fn := range e {
		fn()
	}
}

// New builds a controller over form. A nil view is replaced by view.Nop.
func New(form *model.FormState, v view.View, action submit.Action, opts ...Option) (*Controller, error) {
	if form == nil {
		return nil, errors.New("controller: form state is required")
	}
	if action == nil {
		return nil, errors.New("controller: submit action is required")
	}
	if v == nil {
		v = view.Nop{}
	}

	c := &Controller{
		form:           form,
		view:           v,
		action:         action,
		scheduler:      schedule.System(),
		dismissDelay:   notify.DefaultDismissDelay,
		logger:         zap.NewNop(),
		translator:     i18n.Default(),
		locale:         i18n.DefaultLocale,
		resetOnSuccess: true,
		subscriptions:  make(map[string][]events.Unsubscribe),
		shown:          make(map[string]bool),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	centerOpts := []notify.Option{
		notify.WithScheduler(c.scheduler),
		notify.WithDismissDelay(c.dismissDelay),
		notify.WithSink(c.view),
		notify.WithRemoveHook(c.onNotificationRemoved),
	}
	c.center = notify.NewCenter(append(centerOpts, c.notifyOptions...)...)
	c.logger = c.logger.With(zap.String("form", form.ID))

	if form.Phase == "" {
		form.Phase = model.PhaseIdle
	}
	return c, nil
}

// Form returns the controlled form state. Callers must not mutate it while
// the controller is in use.
func (c *Controller) Form() *model.FormState {
	return c.form
}

// Phase reports the current lifecycle phase.
func (c *Controller) Phase() model.Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.Phase
}

// Busy reports whether the busy indicator is on.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Notifications lists the live notifications.
func (c *Controller) Notifications() []notify.Notification {
	return c.center.Live()
}

// Bind subscribes to change and blur events for every field. Binding again
// releases the previous subscriptions first.
func (c *Controller) Bind(src events.Source) error {
	if src == nil {
		return errors.New("controller: event source is required")
	}

	var fx effects
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.releaseLocked()
	for _, field := range c.form.Fields {
		id := field.ID
		c.subscriptions[id] = []events.Unsubscribe{
			src.Subscribe(id, events.KindChange, c.handleChange),
			src.Subscribe(id, events.KindBlur, c.handleBlur),
		}
		if field.MaxLength > 0 {
			state := c.counterState(field)
			fx.add(func() { c.view.UpdateCounter(id, state) })
		}
	}
	c.logger.Debug("controller bound", zap.Int("fields", len(c.form.Fields)))
	c.mu.Unlock()

	fx.run()
	return nil
}

// Unbind releases every event subscription.
func (c *Controller) Unbind() {
	c.mu.Lock()
	c.releaseLocked()
	c.mu.Unlock()
}

func (c *Controller) releaseLocked() {
	for id, subs := range c.subscriptions {
		for _, unsubscribe := range subs {
			if unsubscribe != nil {
				unsubscribe()
			}
		}
		delete(c.subscriptions, id)
	}
}

// Validate runs a validation pass over the form and shows or clears every
// field error. The phase is not changed.
func (c *Controller) Validate() validation.Result {
	var fx effects
	c.mu.Lock()
	result := c.validateLocked(&fx)
	c.mu.Unlock()
	fx.run()
	return result
}

func (c *Controller) validateLocked(fx *effects) validation.Result {
	result := validation.Validate(c.form, c.validationOptions()...)
	for _, field := range c.form.Fields {
		c.displayLocked(fx, field)
	}
	formID := c.form.ID
	if hook := c.hooks.OnValidated; hook != nil {
		fx.add(func() { hook(formID, result) })
	}
	return result
}

// displayLocked reflects a field's recorded validity on the view.
func (c *Controller) displayLocked(fx *effects, field *model.Field) {
	id := field.ID
	if !field.Valid {
		message := field.Error
		c.shown[id] = true
		fx.add(func() { c.view.MarkInvalid(id, message) })
		return
	}
	c.clearShownLocked(fx, id)
}

func (c *Controller) clearShownLocked(fx *effects, id string) {
	if !c.shown[id] {
		return
	}
	delete(c.shown, id)
	fx.add(func() { c.view.ClearInvalid(id) })
}

// ClearFieldError resets one field's validity display without revalidating
// the others.
func (c *Controller) ClearFieldError(id string) error {
	var fx effects
	c.mu.Lock()
	field, ok := c.form.Field(id)
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownField, id)
	}
	field.MarkValid()
	delete(c.shown, field.ID)
	fx.add(func() { c.view.ClearInvalid(field.ID) })
	c.mu.Unlock()
	fx.run()
	return nil
}

// Submit validates the form and, when valid, runs the submit action. Invalid
// forms return a *ValidationError and the action is not called. A failed
// action returns a *SubmitFailedError. Calls made while a submit is in
// flight return OutcomeIgnored.
func (c *Controller) Submit(ctx context.Context) (Outcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var fx effects
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Outcome{}, ErrClosed
	}
	if c.form.Phase == model.PhaseSubmitting {
		c.mu.Unlock()
		c.logger.Debug("submit ignored while in flight")
		return Outcome{Status: OutcomeIgnored}, nil
	}
	if c.form.Phase.Settled() {
		c.settledID = ""
		c.setPhaseLocked(&fx, model.PhaseIdle)
	}

	c.setPhaseLocked(&fx, model.PhaseValidating)
	result := c.validateLocked(&fx)
	if !result.Valid() {
		c.setPhaseLocked(&fx, model.PhaseIdle)
		c.mu.Unlock()
		fx.run()
		err := &ValidationError{Fields: result.Fields(), Result: result}
		outcome := Outcome{Status: OutcomeInvalid, Validation: result}
		c.logger.Debug("submit blocked by validation", zap.Strings("fields", err.Fields))
		c.submitted(outcome, err, 0)
		return outcome, err
	}

	c.setPhaseLocked(&fx, model.PhaseSubmitting)
	payload := submit.Payload{
		FormID: c.form.ID,
		Fields: c.form.IDs(),
		Values: c.form.Values(),
	}
	prevBusy, prevLabel := c.busy, c.busyLabel
	busyLabel := i18n.Message(c.translator, c.locale, i18n.KeySubmitBusy)
	c.busy, c.busyLabel = true, busyLabel
	fx.add(func() { c.view.SetBusy(true, busyLabel) })
	c.mu.Unlock()
	fx.run()

	start := c.scheduler.Now()
	res, actionErr := c.runAction(ctx, payload)
	elapsed := c.scheduler.Now().Sub(start)

	fx = nil
	c.mu.Lock()
	c.busy, c.busyLabel = prevBusy, prevLabel
	fx.add(func() { c.view.SetBusy(prevBusy, prevLabel) })

	outcome := Outcome{Result: res, Validation: result}
	var kind notify.Kind
	var message string
	var settled model.Phase
	if actionErr != nil {
		outcome.Status = OutcomeFailed
		kind = notify.KindError
		message = i18n.Message(c.translator, c.locale, i18n.KeySubmitFailed, actionErr.Error())
		settled = model.PhaseSettledError
	} else {
		outcome.Status = OutcomeSucceeded
		kind = notify.KindSuccess
		message = res.Message
		if message == "" {
			message = i18n.Message(c.translator, c.locale, i18n.KeySubmitOK)
		}
		settled = model.PhaseSettledSuccess
		if c.resetOnSuccess {
			c.resetLocked(&fx)
		}
	}
	c.setPhaseLocked(&fx, settled)
	c.mu.Unlock()
	fx.run()

	n := c.center.Notify(kind, message, notify.Action(SubmitAction))
	outcome.Notification = n
	c.trackSettled(settled, n)

	var err error
	if actionErr != nil {
		err = &SubmitFailedError{Reason: actionErr}
		c.logger.Warn("form submission failed", zap.Error(actionErr), zap.Duration("duration", elapsed))
	} else {
		c.logger.Info("form submitted", zap.Duration("duration", elapsed))
	}
	c.submitted(outcome, err, elapsed)
	return outcome, err
}

// runAction calls the submit action, turning a panic into an error so the
// busy indicator and phase are always restored.
func (c *Controller) runAction(ctx context.Context, payload submit.Payload) (res submit.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("submit action panicked", zap.Any("panic", r))
			res, err = submit.Result{}, fmt.Errorf("%w: %v", ErrActionPanicked, r)
		}
	}()
	return c.action.Submit(ctx, payload)
}

func (c *Controller) submitted(outcome Outcome, err error, elapsed time.Duration) {
	if hook := c.hooks.OnSubmitted; hook != nil {
		hook(c.form.ID, outcome, err, elapsed)
	}
}

// trackSettled ties the settled phase to the outcome notification so its
// removal returns the form to idle.
func (c *Controller) trackSettled(settled model.Phase, n notify.Notification) {
	var fx effects
	c.mu.Lock()
	if c.closed || c.form.Phase != settled {
		c.mu.Unlock()
		return
	}
	if c.center.IsLive(n.ID) {
		c.settledID = n.ID
	} else {
		c.setPhaseLocked(&fx, model.PhaseIdle)
	}
	c.mu.Unlock()
	fx.run()
}

func (c *Controller) resetLocked(fx *effects) {
	c.form.Reset()
	for _, field := range c.form.Fields {
		c.clearShownLocked(fx, field.ID)
		if field.MaxLength > 0 {
			id, state := field.ID, c.counterState(field)
			fx.add(func() { c.view.UpdateCounter(id, state) })
		}
	}
	values := c.form.Values()
	fx.add(func() { c.view.ResetForm(values) })
}

// Notify shows a transient notification, auto-dismissed after the configured
// delay.
func (c *Controller) Notify(kind notify.Kind, message string, opts ...notify.NotifyOption) notify.Notification {
	return c.center.Notify(kind, message, opts...)
}

// Dismiss removes a notification early. It reports whether it was live.
func (c *Controller) Dismiss(id string) bool {
	return c.center.Dismiss(id)
}

// Acknowledge records the user acknowledging a settled outcome: the outcome
// notification is dismissed and the form returns to idle.
func (c *Controller) Acknowledge() {
	var fx effects
	c.mu.Lock()
	if !c.form.Phase.Settled() {
		c.mu.Unlock()
		return
	}
	id := c.settledID
	if id == "" {
		c.setPhaseLocked(&fx, model.PhaseIdle)
	}
	c.mu.Unlock()
	fx.run()

	if id != "" && !c.center.Dismiss(id) {
		// expired concurrently
		c.mu.Lock()
		fx = nil
		if c.settledID == id && c.form.Phase.Settled() {
			c.settledID = ""
			c.setPhaseLocked(&fx, model.PhaseIdle)
		}
		c.mu.Unlock()
		fx.run()
	}
}

func (c *Controller) onNotificationRemoved(n notify.Notification, reason notify.Reason) {
	var fx effects
	c.mu.Lock()
	if n.ID == "" || n.ID != c.settledID {
		c.mu.Unlock()
		return
	}
	c.settledID = ""
	if c.form.Phase.Settled() && !c.closed {
		c.logger.Debug("settled outcome cleared", zap.String("reason", string(reason)))
		c.setPhaseLocked(&fx, model.PhaseIdle)
	}
	c.mu.Unlock()
	fx.run()
}

// Close unbinds every event subscription and cancels all timers. It is safe
// to call more than once.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.releaseLocked()
	c.settledID = ""
	c.mu.Unlock()

	c.center.Close()
	c.logger.Debug("controller closed")
}

func (c *Controller) handleChange(ev events.Event) {
	var fx effects
	c.mu.Lock()
	defer func() {
		c.mu.Unlock()
		fx.run()
	}()
	if c.closed {
		return
	}
	field, ok := c.form.Field(ev.Field)
	if !ok {
		return
	}

	field.Value = ev.Value
	if issue := validation.Check(field, c.validationOptions()...); issue != nil {
		field.MarkInvalid(issue.Message)
	} else {
		field.MarkValid()
	}
	c.clearShownLocked(&fx, field.ID)

	if field.MaxLength > 0 {
		id, state := field.ID, c.counterState(field)
		fx.add(func() { c.view.UpdateCounter(id, state) })
		if state.Exceeded {
			message := field.Error
			c.shown[id] = true
			fx.add(func() { c.view.MarkInvalid(id, message) })
		}
	}

	if c.form.Phase == model.PhaseSettledError {
		c.settledID = ""
		c.setPhaseLocked(&fx, model.PhaseIdle)
	}
}

func (c *Controller) handleBlur(ev events.Event) {
	var fx effects
	c.mu.Lock()
	defer func() {
		c.mu.Unlock()
		fx.run()
	}()
	if c.closed {
		return
	}
	field, ok := c.form.Field(ev.Field)
	if !ok {
		return
	}
	validation.ValidateField(field, c.validationOptions()...)
	c.displayLocked(&fx, field)
}

func (c *Controller) counterState(field *model.Field) view.CounterState {
	length, limit := field.Length(), field.MaxLength
	return view.CounterState{
		Length:   length,
		Max:      limit,
		Warning:  float64(length) > float64(limit)*counterWarningRatio,
		Exceeded: length > limit,
		Text:     i18n.Message(c.translator, c.locale, i18n.KeyCounter, length, limit),
	}
}

func (c *Controller) setPhaseLocked(fx *effects, to model.Phase) {
	from := c.form.Phase
	if from == to {
		return
	}
	c.form.Phase = to
	c.logger.Debug("phase changed", zap.String("from", string(from)), zap.String("to", string(to)))
	if hook := c.hooks.OnPhaseChange; hook != nil {
		formID := c.form.ID
		fx.add(func() { hook(formID, from, to) })
	}
}

func (c *Controller) validationOptions() []validation.Option {
	return []validation.Option{
		validation.WithTranslator(c.translator),
		validation.WithLocale(c.locale),
	}
}
