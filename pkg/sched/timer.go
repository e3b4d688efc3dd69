package sched

import (
	"sync"
	"time"
)

// Timer is a handle to a scheduled delay. Cancel is idempotent and safe to
// call even if the timer has already fired or its callback is currently
// executing on the loop.
type Timer struct {
	loop *Loop

	mu       sync.Mutex
	timer    *time.Timer
	canceled bool
	fired    bool
}

// Cancel stops the timer. For Every timers it stops all future ticks; a tick
// already queued on the loop still runs. Returns true if the cancel
// prevented at least one future firing.
func (t *Timer) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.canceled {
		return false
	}
	t.canceled = true

	stopped := false
	if t.timer != nil {
		stopped = t.timer.Stop()
	}
	return stopped || !t.fired
}

// Fired reports whether a one-shot timer has fired. Always false for a timer
// canceled before its delay elapsed.
func (t *Timer) Fired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fired
}
