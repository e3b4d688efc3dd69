// Package sched provides the single-threaded cooperative event loop the
// engine runs on.
//
// # Overview
//
// Execution in the engine is cooperative: every handler invocation, emit, and
// routing decision happens synchronously within the caller's logical turn.
// The loop serializes external entrypoints (Submit) and scheduled delays
// (After, Every) onto one goroutine, so engine structures stay single-writer
// without locks on the hot path.
//
// # Core Concepts
//
// Loop:
//
// A bounded task queue drained by a single goroutine. Tasks submitted while
// the queue is full are rejected with ErrQueueFull rather than blocking the
// caller.
//
// Timers:
//
// After schedules a one-shot callback, Every a periodic one. Both return a
// *Timer whose Cancel is idempotent and safe to call even if the timer has
// already fired or is mid-execution. Timer callbacks run on the loop
// goroutine like any other task.
//
// # Usage
//
//	loop := sched.NewLoop(256)
//	go loop.Run(ctx)
//
//	loop.Submit(func() { orch.RouteSignal("a", "tick", nil) })
//	sweep := loop.Every(30*time.Second, pool.Sweep)
//	defer sweep.Cancel()
package sched
