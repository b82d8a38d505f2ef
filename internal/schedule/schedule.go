// internal/schedule/schedule.go
//
// Delayed tasks with cancellation handles.
// Games use short delays so a reveal can linger before cards flip back or the
// next riddle appears. Every scheduled task returns a Cancel so the owner can
// drop it when the game is replaced or the companion window closes.
//
//   - Real:   backed by time.AfterFunc (production).
//   - Manual: virtual clock advanced explicitly (tests).
package schedule

import (
	"sort"
	"sync"
	"time"
)

// Cancel stops a scheduled task. It reports whether the task was stopped
// before it ran. Calling it more than once is safe.
type Cancel func() bool

// Scheduler runs fn once after d.
type Scheduler interface {
	After(d time.Duration, fn func()) Cancel
}

// Real schedules on the runtime timer.
type Real struct{}

// After implements Scheduler using time.AfterFunc.
func (Real) After(d time.Duration, fn func()) Cancel {
	t := time.AfterFunc(d, fn)
	return t.Stop
}

// Manual is a deterministic scheduler: tasks run only when Advance moves the
// virtual clock past their deadline. Tasks run on the caller's goroutine.
type Manual struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*task
}

type task struct {
	at       time.Duration
	seq      int
	fn       func()
	canceled bool
}

// NewManual returns a manual scheduler at virtual time zero.
func NewManual() *Manual { return &Manual{} }

// After implements Scheduler.
func (m *Manual) After(d time.Duration, fn func()) Cancel {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &task{at: m.now + d, seq: m.seq, fn: fn}
	m.seq++
	m.tasks = append(m.tasks, t)
	return func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		if t.canceled || !m.pending(t) {
			return false
		}
		t.canceled = true
		m.remove(t)
		return true
	}
}

// Advance moves the clock forward by d and runs every task that became due,
// in deadline order (ties in scheduling order).
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	now := m.now
	m.mu.Unlock()

	for {
		m.mu.Lock()
		sort.SliceStable(m.tasks, func(i, j int) bool {
			if m.tasks[i].at != m.tasks[j].at {
				return m.tasks[i].at < m.tasks[j].at
			}
			return m.tasks[i].seq < m.tasks[j].seq
		})
		if len(m.tasks) == 0 || m.tasks[0].at > now {
			m.mu.Unlock()
			return
		}
		next := m.tasks[0]
		m.tasks = m.tasks[1:]
		m.mu.Unlock()

		next.fn()
	}
}

// Pending returns how many tasks are waiting to run.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

func (m *Manual) pending(t *task) bool {
	for _, x := range m.tasks {
		if x == t {
			return true
		}
	}
	return false
}

func (m *Manual) remove(t *task) {
	for i, x := range m.tasks {
		if x == t {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return
		}
	}
}
