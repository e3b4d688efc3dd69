package node

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/purefictiongames/wiregraph/errors"
	"github.com/purefictiongames/wiregraph/transport"
)

// emitterLayer is one owner's interception layer in a node's emitter chain.
type emitterLayer struct {
	owner string
	wrap  func(next Emitter) Emitter
}

// BaseNode carries the contract plumbing concrete nodes embed: identity,
// lifecycle state, the handler table, and the emitter decorator chain. It is
// loop-confined like everything the engine owns; none of its mutation is
// guarded by locks.
type BaseNode struct {
	id     string
	class  string
	logger *slog.Logger

	state    State
	handlers map[string]Handler

	// Emitter chain. base is the pristine emitter; current is always the
	// composition of base with every layer, outermost last.
	base    Emitter
	layers  []emitterLayer
	current Emitter
}

// NewBaseNode creates the embeddable core of a node. The pristine emitter
// forwards to the dependencies' transport.
func NewBaseNode(id, class string, deps Dependencies) *BaseNode {
	logger := deps.GetLoggerWithNode(id)
	tr := deps.GetTransport()

	n := &BaseNode{
		id:       id,
		class:    class,
		logger:   logger,
		state:    StateCreated,
		handlers: make(map[string]Handler),
	}
	n.base = func(signal string, payload Payload) {
		if err := tr.Publish(transport.SignalSubject(id, signal), payload); err != nil {
			logger.Warn("default emit failed", "signal", signal, "error", err)
		}
	}
	n.current = n.base
	return n
}

// ID returns the node's unique identity.
func (n *BaseNode) ID() string { return n.id }

// Class returns the node's class tag.
func (n *BaseNode) Class() string { return n.class }

// State returns the node's lifecycle state.
func (n *BaseNode) State() State { return n.state }

// Logger returns the node-scoped logger.
func (n *BaseNode) Logger() *slog.Logger { return n.logger }

// Initialize moves the node from created to initialized.
func (n *BaseNode) Initialize() error {
	if n.state != StateCreated {
		return errors.Wrap(
			fmt.Errorf("state %s: %w", n.state, errors.ErrAlreadyStarted),
			"BaseNode", "Initialize", "state transition")
	}
	n.state = StateInitialized
	return nil
}

// Start moves the node from initialized to started.
func (n *BaseNode) Start(_ context.Context) error {
	switch n.state {
	case StateStarted:
		return errors.Wrap(errors.ErrAlreadyStarted, "BaseNode", "Start", "state transition")
	case StateCreated:
		return errors.Wrap(errors.ErrNotStarted, "BaseNode", "Start", "initialize first")
	case StateStopped, StateFailed:
		return errors.Wrap(errors.ErrAlreadyStopped, "BaseNode", "Start", "state transition")
	}
	n.state = StateStarted
	return nil
}

// Stop moves the node to stopped. Stopping an already-stopped node is a
// no-op so teardown paths can sweep without checking.
func (n *BaseNode) Stop(_ time.Duration) error {
	if n.state == StateStopped {
		return nil
	}
	n.state = StateStopped
	return nil
}

// Fail marks the node failed after a lifecycle error.
func (n *BaseNode) Fail() { n.state = StateFailed }

// RegisterHandler binds a named input handler. Rebinding a name replaces the
// previous handler.
func (n *BaseNode) RegisterHandler(name string, h Handler) {
	n.handlers[name] = h
}

// Handler resolves a named input handler.
func (n *BaseNode) Handler(name string) (Handler, bool) {
	h, ok := n.handlers[name]
	return h, ok
}

// Handlers returns a copy of the handler table.
func (n *BaseNode) Handlers() map[string]Handler {
	out := make(map[string]Handler, len(n.handlers))
	for name, h := range n.handlers {
		out[name] = h
	}
	return out
}

// Emit sends a signal through the current emitter chain.
func (n *BaseNode) Emit(signal string, payload Payload) {
	n.current(signal, payload)
}

// WrapEmitter attaches owner's interception layer outside every existing
// layer. Each owner holds at most one layer per node.
func (n *BaseNode) WrapEmitter(owner string, wrap func(next Emitter) Emitter) error {
	for _, l := range n.layers {
		if l.owner == owner {
			return errors.Wrap(
				fmt.Errorf("owner %q already wraps node %q", owner, n.id),
				"BaseNode", "WrapEmitter", "layer attach")
		}
	}
	n.layers = append(n.layers, emitterLayer{owner: owner, wrap: wrap})
	n.rebuild()
	return nil
}

// UnwrapEmitter detaches owner's layer and recomposes the chain from the
// pristine emitter, restoring exactly what preceded the attach.
func (n *BaseNode) UnwrapEmitter(owner string) error {
	for i, l := range n.layers {
		if l.owner == owner {
			n.layers = append(n.layers[:i], n.layers[i+1:]...)
			n.rebuild()
			return nil
		}
	}
	return errors.Wrap(
		fmt.Errorf("owner %q: %w on node %q", owner, errors.ErrEmitterNotWrapped, n.id),
		"BaseNode", "UnwrapEmitter", "layer detach")
}

// rebuild recomposes current from base plus the remaining layers in
// attachment order, innermost first.
func (n *BaseNode) rebuild() {
	e := n.base
	for _, l := range n.layers {
		e = l.wrap(e)
	}
	n.current = e
}
