package sched

import "errors"

// Sentinel errors for loop operations
var (
	// ErrLoopStopped indicates the loop has been stopped
	ErrLoopStopped = errors.New("event loop stopped")

	// ErrLoopAlreadyStarted indicates Run() was called on a running loop
	ErrLoopAlreadyStarted = errors.New("event loop already started")

	// ErrQueueFull indicates the task queue is at capacity
	ErrQueueFull = errors.New("event loop queue full")

	// ErrNilTask indicates a nil task function was provided
	ErrNilTask = errors.New("task function cannot be nil")

	// ErrStopTimeout indicates the loop didn't drain within the timeout
	ErrStopTimeout = errors.New("timeout waiting for event loop to stop")
)
