package node

import (
	"context"
	"time"
)

// Payload is the structured data carried with a signal.
type Payload = map[string]any

// Handler is a synchronous input handler. It receives the node it is bound
// to and the signal payload. A returned error is absorbed by the dispatching
// owner as a handler fault; it never reaches the emitting node.
type Handler func(n Node, payload Payload) error

// Emitter is a node's single output operation.
type Emitter func(signal string, payload Payload)

// Node is the contract every graph participant satisfies.
type Node interface {
	// ID returns the node's unique identity within its owner.
	ID() string

	// Class returns the node's class tag.
	Class() string

	// Initialize prepares the node. No I/O, no context.
	Initialize() error

	// Start activates the node with the owner's context.
	Start(ctx context.Context) error

	// Stop halts the node and releases every resource it privately owns.
	Stop(timeout time.Duration) error

	// Handler resolves a named input handler.
	Handler(name string) (Handler, bool)

	// Handlers returns the node's handler table.
	Handlers() map[string]Handler

	// Emit sends a signal through the node's current emitter chain.
	Emit(signal string, payload Payload)

	// WrapEmitter attaches an owner's interception layer. At most one
	// layer per owner; a later attach wraps outside an earlier one.
	WrapEmitter(owner string, wrap func(next Emitter) Emitter) error

	// UnwrapEmitter detaches an owner's layer, restoring the
	// pre-composition emitter exactly.
	UnwrapEmitter(owner string) error
}

// Resettable is implemented by nodes whose private mutable state can be
// restored to its pristine value. Pools reset nodes on release; a node
// without Resettable is returned to the idle stack as-is.
type Resettable interface {
	Reset()
}

// State represents the current lifecycle state of a node
type State int

const (
	// StateCreated indicates the node was created but not initialized
	StateCreated State = iota
	// StateInitialized indicates the node was initialized but not started
	StateInitialized
	// StateStarted indicates the node is running
	StateStarted
	// StateStopped indicates the node was stopped
	StateStopped
	// StateFailed indicates the node failed during a lifecycle operation
	StateFailed
)

// String returns a string representation of the node state
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateInitialized:
		return "initialized"
	case StateStarted:
		return "started"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
