// Package pool manages a homogeneous, reusable set of node instances under a
// fixed or elastic allocation policy.
//
// # Overview
//
// A Pool spawns nodes of one class through the shared node registry and hands
// them out by external entity id. Checkout takes the most recently released
// idle node first; an elastic pool grows on demand up to its maximum and
// shrinks idle nodes back toward its minimum on a periodic sweep. Release is
// idempotent and restores the node to a reusable state before returning it to
// the idle stack.
//
// Checked-out nodes can be primed through configured checkout signals, whose
// payloads are built from a field mapping drawing on either the checkout
// call's own context or the pool's shared context (the "$"-prefixed sources).
// When an auto-release trigger is configured, the pool wraps the node's
// emitter for the duration of the checkout and releases the node as soon as
// the trigger signal passes through.
//
// Like the orchestrator, a Pool is loop-confined: all methods must run on the
// engine's event loop goroutine. The shrink sweep cooperates by scheduling
// itself on the same loop.
//
// # Usage
//
//	p, err := pool.New("workers", registry, deps, pool.Config{
//		Class:   "worker",
//		Policy:  pool.Elastic,
//		Min:     1,
//		Max:     8,
//		IdleTTL: time.Minute,
//	}, pool.WithLoop(loop))
//	if err != nil {
//		return err
//	}
//	n, err := p.Checkout("session-42", map[string]any{"user": "ada"})
package pool
