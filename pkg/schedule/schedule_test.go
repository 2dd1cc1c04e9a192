package schedule_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/goliatone/go-formsubmit/pkg/schedule"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func TestManualRunsDueTasksInDeadlineOrder(t *testing.T) {
	clock := schedule.NewManual(epoch)
	var order []string

	clock.AfterFunc(3*time.Second, func() { order = append(order, "c") })
	clock.AfterFunc(1*time.Second, func() { order = append(order, "a") })
	clock.AfterFunc(1*time.Second, func() { order = append(order, "b") })
	clock.AfterFunc(10*time.Second, func() { order = append(order, "late") })

	clock.Advance(5 * time.Second)

	if diff := cmp.Diff([]string{"a", "b", "c"}, order); diff != "" {
		t.Fatalf("run order mismatch (-want +got):\n%s", diff)
	}
	if got := clock.Now(); !got.Equal(epoch.Add(5 * time.Second)) {
		t.Fatalf("unexpected clock time %v", got)
	}
	if clock.Pending() != 1 {
		t.Fatalf("expected one pending task, got %d", clock.Pending())
	}
}

func TestManualStopCancelsTask(t *testing.T) {
	clock := schedule.NewManual(epoch)
	ran := false
	task := clock.AfterFunc(time.Second, func() { ran = true })

	if !task.Stop() {
		t.Fatalf("expected Stop to report pending task")
	}
	if task.Stop() {
		t.Fatalf("second Stop must report false")
	}
	clock.Advance(2 * time.Second)
	if ran {
		t.Fatalf("stopped task ran")
	}
}

func TestManualCallbackSeesDeadlineTime(t *testing.T) {
	clock := schedule.NewManual(epoch)
	var seen time.Time
	clock.AfterFunc(2*time.Second, func() { seen = clock.Now() })
	clock.Advance(time.Minute)
	if !seen.Equal(epoch.Add(2 * time.Second)) {
		t.Fatalf("expected callback at deadline, got %v", seen)
	}
}

func TestManualChainedTasksWithinWindow(t *testing.T) {
	clock := schedule.NewManual(epoch)
	count := 0
	var tick func()
	tick = func() {
		count++
		if count < 3 {
			clock.AfterFunc(time.Second, tick)
		}
	}
	clock.AfterFunc(time.Second, tick)
	clock.Advance(5 * time.Second)
	if count != 3 {
		t.Fatalf("expected three ticks, got %d", count)
	}
}

func TestSleepHonoursContext(t *testing.T) {
	clock := schedule.NewManual(epoch)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := schedule.Sleep(ctx, clock, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if clock.Pending() != 0 {
		t.Fatalf("expected the sleep task to be stopped")
	}
}

func TestSleepOnSystemScheduler(t *testing.T) {
	if err := schedule.Sleep(context.Background(), schedule.System(), time.Millisecond); err != nil {
		t.Fatalf("sleep: %v", err)
	}
}
