// Package timer provides a restartable, pausable elapsed-time source.
// Elapsed time is computed on demand from accumulated intervals rather than
// a ticking goroutine. Two instances back a session: one reset per question
// and one spanning the whole attempt.
package timer

import (
	"sync"
	"time"
)

// Timer accumulates elapsed time across pause/resume boundaries.
// All operations are total; the zero value is a stopped timer at zero.
type Timer struct {
	mu          sync.Mutex
	now         func() time.Time
	accumulated time.Duration
	startedAt   time.Time
	running     bool
}

// New returns a stopped timer at zero elapsed.
func New() *Timer {
	return NewWithClock(time.Now)
}

// NewWithClock allows deterministic time in tests.
func NewWithClock(now func() time.Time) *Timer {
	return &Timer{now: now}
}

// Start begins timing. A second Start while running is a no-op, matching the
// per-question lifecycle where Reset owns restarts.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}
	t.startedAt = t.clock()()
	t.running = true
}

// Reset zeroes elapsed time and restarts the clock reference.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.accumulated = 0
	t.startedAt = t.clock()()
	t.running = true
}

// Pause folds the running interval into the accumulated total.
func (t *Timer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	t.accumulated += t.clock()().Sub(t.startedAt)
	t.running = false
}

// Resume continues timing after a Pause. No-op while running.
func (t *Timer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}
	t.startedAt = t.clock()()
	t.running = true
}

// Elapsed reports seconds accumulated so far plus, if running, the delta
// since the last start or resume.
func (t *Timer) Elapsed() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	total := t.accumulated
	if t.running {
		total += t.clock()().Sub(t.startedAt)
	}
	return total.Seconds()
}

func (t *Timer) clock() func() time.Time {
	if t.now == nil {
		return time.Now
	}
	return t.now
}
