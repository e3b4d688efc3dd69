package sched

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Loop is a single-threaded cooperative event loop. All engine mutation and
// routing runs on the loop goroutine; Submit is the only concurrency-safe
// entrypoint.
type Loop struct {
	queueSize int
	taskChan  chan func()

	// Lifecycle management
	lifecycleMu sync.Mutex
	started     bool
	stopped     bool
	done        chan struct{}

	// Statistics (atomic)
	submitted int64
	executed  int64
	dropped   int64
}

// NewLoop creates a new event loop with the given task queue capacity.
func NewLoop(queueSize int) *Loop {
	if queueSize <= 0 {
		queueSize = 256 // Default queue capacity
	}
	return &Loop{
		queueSize: queueSize,
		taskChan:  make(chan func(), queueSize),
		done:      make(chan struct{}),
	}
}

// Submit enqueues a task for execution on the loop goroutine. Returns
// ErrQueueFull if the queue is at capacity (non-blocking submit).
func (l *Loop) Submit(task func()) error {
	if task == nil {
		return ErrNilTask
	}

	// Held across the send so Stop cannot close the channel mid-submit.
	l.lifecycleMu.Lock()
	defer l.lifecycleMu.Unlock()

	if l.stopped {
		return ErrLoopStopped
	}

	select {
	case l.taskChan <- task:
		atomic.AddInt64(&l.submitted, 1)
		return nil
	default:
		atomic.AddInt64(&l.dropped, 1)
		return ErrQueueFull
	}
}

// Run drains the task queue until the context is canceled or Stop is called.
// It must be called exactly once, typically on its own goroutine.
func (l *Loop) Run(ctx context.Context) error {
	l.lifecycleMu.Lock()
	if l.started {
		l.lifecycleMu.Unlock()
		return ErrLoopAlreadyStarted
	}
	if l.stopped {
		// Stop won the race and already drained the queue.
		l.started = true
		l.lifecycleMu.Unlock()
		close(l.done)
		return ErrLoopStopped
	}
	l.started = true
	l.lifecycleMu.Unlock()

	defer close(l.done)

	for {
		select {
		case task, ok := <-l.taskChan:
			if !ok {
				return nil
			}
			task()
			atomic.AddInt64(&l.executed, 1)
		case <-ctx.Done():
			l.markStopped()
			return ctx.Err()
		}
	}
}

// Stop closes the task queue and waits for the loop goroutine to drain it.
// Tasks submitted after Stop are rejected with ErrLoopStopped. If Run never
// took the queue, Stop drains the pending tasks itself and a later Run
// returns ErrLoopStopped.
func (l *Loop) Stop(timeout time.Duration) error {
	l.lifecycleMu.Lock()
	if l.stopped {
		l.lifecycleMu.Unlock()
		return nil
	}
	l.stopped = true
	close(l.taskChan)
	started := l.started
	l.lifecycleMu.Unlock()

	if !started {
		// No Run goroutine owns the queue, and a late Run now refuses
		// it. Drain here so already-submitted work still executes.
		for task := range l.taskChan {
			task()
			atomic.AddInt64(&l.executed, 1)
		}
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-l.done:
		return nil
	case <-timer.C:
		return ErrStopTimeout
	}
}

// markStopped records the stopped state when Run exits via context
// cancellation rather than Stop.
func (l *Loop) markStopped() {
	l.lifecycleMu.Lock()
	l.stopped = true
	l.lifecycleMu.Unlock()
}

// After schedules task to run on the loop once d has elapsed.
func (l *Loop) After(d time.Duration, task func()) *Timer {
	t := &Timer{loop: l}
	t.timer = time.AfterFunc(d, func() {
		t.mu.Lock()
		if t.canceled {
			t.mu.Unlock()
			return
		}
		t.fired = true
		t.mu.Unlock()
		// Dropped silently if the loop has stopped or the queue is full;
		// a fired timer on a dead loop has nowhere to run.
		_ = l.Submit(task)
	})
	return t
}

// Every schedules task to run on the loop repeatedly at interval d until the
// returned timer is canceled.
func (l *Loop) Every(d time.Duration, task func()) *Timer {
	t := &Timer{loop: l}

	var schedule func()
	schedule = func() {
		t.mu.Lock()
		if t.canceled {
			t.mu.Unlock()
			return
		}
		t.timer = time.AfterFunc(d, func() {
			t.mu.Lock()
			if t.canceled {
				t.mu.Unlock()
				return
			}
			t.mu.Unlock()
			_ = l.Submit(task)
			schedule()
		})
		t.mu.Unlock()
	}
	schedule()
	return t
}

// Stats returns current loop statistics
func (l *Loop) Stats() LoopStats {
	return LoopStats{
		QueueSize:  l.queueSize,
		QueueDepth: len(l.taskChan),
		Submitted:  atomic.LoadInt64(&l.submitted),
		Executed:   atomic.LoadInt64(&l.executed),
		Dropped:    atomic.LoadInt64(&l.dropped),
	}
}

// LoopStats represents event loop statistics
type LoopStats struct {
	QueueSize  int
	QueueDepth int
	Submitted  int64
	Executed   int64
	Dropped    int64
}
