// Package retry provides exponential backoff retry for transient failures.
//
// # Overview
//
// A minimal retry mechanism for network operations and startup paths: Do runs
// a function until it succeeds or attempts run out, DoWithResult does the
// same for functions that produce a value. Backoff grows by a configurable
// multiplier up to a ceiling, with optional jitter. Errors wrapped with
// NonRetryable fail immediately.
//
// # Usage
//
//	conn, err := retry.DoWithResult(ctx, retry.Quick(), func() (*nats.Conn, error) {
//	    return nats.Connect(url)
//	})
//
// All operations respect context cancellation, during the function call and
// during backoff sleeps alike.
package retry
