package timer

import (
	"testing"
	"time"
)

// fakeClock advances only when told to.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestElapsedAccumulatesAcrossPause(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	tm := NewWithClock(clock.Now)

	tm.Start()
	clock.Advance(3 * time.Second)
	tm.Pause()
	clock.Advance(10 * time.Second) // paused time must not count
	tm.Resume()
	clock.Advance(2 * time.Second)

	if got := tm.Elapsed(); got != 5 {
		t.Fatalf("expected 5s elapsed, got %v", got)
	}
}

func TestStartIsIdempotentWhileRunning(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	tm := NewWithClock(clock.Now)

	tm.Start()
	clock.Advance(4 * time.Second)
	tm.Start() // must not restart the interval
	clock.Advance(1 * time.Second)

	if got := tm.Elapsed(); got != 5 {
		t.Fatalf("expected 5s elapsed, got %v", got)
	}
}

func TestResetZeroesAndRestarts(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	tm := NewWithClock(clock.Now)

	tm.Start()
	clock.Advance(7 * time.Second)
	tm.Reset()
	if got := tm.Elapsed(); got != 0 {
		t.Fatalf("expected 0 after reset, got %v", got)
	}
	clock.Advance(2 * time.Second)
	if got := tm.Elapsed(); got != 2 {
		t.Fatalf("expected 2s after reset+advance, got %v", got)
	}
}

func TestZeroValueIsStopped(t *testing.T) {
	tm := New()
	if got := tm.Elapsed(); got != 0 {
		t.Fatalf("expected 0 elapsed before start, got %v", got)
	}
}
