// Package node defines the contract every participant in the graph plugs
// into: lifecycle hooks, named input handlers, and a single output emitter.
//
// # The contract
//
// A node is an addressable stateful unit. It receives payloads through named
// handlers, and speaks through exactly one emitter. Absent any interception,
// the emitter forwards to an external transport the engine does not own; an
// owner (the Orchestrator, or a Pool) intercepts the emitter to route signals
// through the graph instead.
//
// # Emitter composition
//
// Interception is an explicit, ordered decorator chain, never in-place
// mutation. An owner attaches with WrapEmitter and detaches with
// UnwrapEmitter; detaching restores the pre-composition emitter exactly.
// Each owner may hold at most one layer per node. When more than one owner
// manages a node, the outer owner wraps the inner one: a Pool attaches first,
// the Orchestrator attaches outside it, so routed delivery sees the signal
// before pool bookkeeping hands the node back.
//
// # Spawning
//
// Nodes are spawned through a Registry of explicitly registered factories
// keyed by class tag. All class tags declared in a configuration can be
// checked against the registry in one startup pass, recovering
// compile-time-like safety for what is otherwise a data-driven lookup.
//
// # Writing a node
//
// Concrete nodes embed *BaseNode and register handlers at construction:
//
//	type Counter struct {
//	    *node.BaseNode
//	    total int
//	}
//
//	func NewCounter(id string, _ json.RawMessage, deps node.Dependencies) (node.Node, error) {
//	    c := &Counter{BaseNode: node.NewBaseNode(id, "counter", deps)}
//	    c.RegisterHandler("onAdd", func(_ node.Node, p node.Payload) error {
//	        c.total += int(p["v"].(float64))
//	        c.Emit("changed", node.Payload{"total": c.total})
//	        return nil
//	    })
//	    return c, nil
//	}
package node
