package schedule

import (
	"container/heap"
	"sync"
	"time"
)

// Manual is a deterministic Scheduler for tests. Time only moves when Advance
// or Set is called; due tasks then run synchronously on the caller's
// goroutine in deadline order (ties in scheduling order).
type Manual struct {
	mu    sync.Mutex
	now   time.Time
	seq   uint64
	queue taskQueue
}

// NewManual starts a manual clock at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now reports the manual clock time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc schedules fn to run once the clock reaches now+d. A non-positive
// d still waits for the next Advance call.
func (m *Manual) AfterFunc(d time.Duration, fn func()) Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	task := &manualTask{
		owner:    m,
		deadline: m.now.Add(d),
		seq:      m.seq,
		fn:       fn,
		index:    -1,
	}
	heap.Push(&m.queue, task)
	return task
}

// Advance moves the clock forward by d, running every task that becomes due.
// Tasks scheduled by callbacks run too when their deadline falls within the
// advanced window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()
	m.Set(target)
}

// Set moves the clock to t. Moving backwards is ignored.
func (m *Manual) Set(t time.Time) {
	for {
		m.mu.Lock()
		if len(m.queue) == 0 || m.queue[0].deadline.After(t) {
			if t.After(m.now) {
				m.now = t
			}
			m.mu.Unlock()
			return
		}
		task := heap.Pop(&m.queue).(*manualTask)
		if task.deadline.After(m.now) {
			m.now = task.deadline
		}
		fn := task.fn
		m.mu.Unlock()
		fn()
	}
}

// Pending reports the number of tasks waiting to run.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

type manualTask struct {
	owner    *Manual
	deadline time.Time
	seq      uint64
	fn       func()
	index    int
}

func (t *manualTask) Stop() bool {
	m := t.owner
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.index < 0 {
		return false
	}
	heap.Remove(&m.queue, t.index)
	return true
}

type taskQueue []*manualTask

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].deadline.Equal(q[j].deadline) {
		return q[i].seq < q[j].seq
	}
	return q[i].deadline.Before(q[j].deadline)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x any) {
	task := x.(*manualTask)
	task.index = len(*q)
	*q = append(*q, task)
}

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	task := old[n-1]
	old[n-1] = nil
	task.index = -1
	*q = old[:n-1]
	return task
}
