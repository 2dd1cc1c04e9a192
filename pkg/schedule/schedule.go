// Package schedule models delayed work as cancellable tasks so timers can be
// driven by the runtime in production and by a manual clock in tests.
package schedule

import (
	"context"
	"time"
)

// Task is a scheduled callback. Stop prevents it from running and reports
// whether it was still pending.
type Task interface {
	Stop() bool
}

// Scheduler creates tasks and reports the current time.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Task
}

// System returns a Scheduler backed by time.AfterFunc. Callbacks run on their
// own goroutine.
func System() Scheduler {
	return systemScheduler{}
}

type systemScheduler struct{}

func (systemScheduler) Now() time.Time {
	return time.Now()
}

func (systemScheduler) AfterFunc(d time.Duration, fn func()) Task {
	return time.AfterFunc(d, fn)
}

// Sleep waits for d on the scheduler. It returns ctx.Err() when the context
// ends first, stopping the pending task.
func Sleep(ctx context.Context, s Scheduler, d time.Duration) error {
	if s == nil {
		s = System()
	}
	fired := make(chan struct{})
	task := s.AfterFunc(d, func() { close(fired) })
	select {
	case <-fired:
		return nil
	case <-ctx.Done():
		task.Stop()
		return ctx.Err()
	}
}
