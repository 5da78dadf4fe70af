package gamemaster

import (
	"sort"
	"sync"
	"time"
)

// Timer is a pending scheduled action.
type Timer interface {
	// Stop cancels the action. It reports false when the action already ran
	// or was stopped before.
	Stop() bool
}

// Scheduler runs f once after d. Sessions use it for the bot's think delay so
// tests can drive time by hand.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clockScheduler struct{}

// ClockScheduler schedules on the wall clock through time.AfterFunc. Actions
// run on their own goroutine.
func ClockScheduler() Scheduler {
	return clockScheduler{}
}

func (clockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ManualScheduler only runs actions when Advance moves its clock past their
// due time. Actions run on the goroutine calling Advance.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	sched *ManualScheduler
	due   time.Duration
	seq   int
	f     func()
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (m *ManualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	task := &manualTask{sched: m, due: m.now + d, seq: m.seq, f: f}
	m.tasks = append(m.tasks, task)
	return task
}

// Advance moves the clock forward by d, running every action that falls due
// in order of due time and then scheduling order. Actions scheduled by those
// actions run too if they fall within the window.
func (m *ManualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	for {
		task := m.popDue(target)
		if task == nil {
			break
		}
		m.now = task.due
		m.mu.Unlock()
		task.f()
		m.mu.Lock()
	}
	m.now = target
	m.mu.Unlock()
}

// Pending returns how many actions are waiting to run.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// Elapsed returns how far the clock has been advanced.
func (m *ManualScheduler) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *ManualScheduler) popDue(target time.Duration) *manualTask {
	sort.SliceStable(m.tasks, func(i, j int) bool {
		if m.tasks[i].due != m.tasks[j].due {
			return m.tasks[i].due < m.tasks[j].due
		}
		return m.tasks[i].seq < m.tasks[j].seq
	})
	if len(m.tasks) == 0 || m.tasks[0].due > target {
		return nil
	}
	task := m.tasks[0]
	m.tasks = m.tasks[1:]
	return task
}

func (t *manualTask) Stop() bool {
	m := t.sched
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, task := range m.tasks {
		if task == t {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return true
		}
	}
	return false
}
