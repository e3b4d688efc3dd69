// Package orchestrator owns the graph: it spawns nodes from declarative
// specs, intercepts their emitters, and routes every signal through the
// active wiring index.
//
// # Lifecycle
//
// An Orchestrator moves through Unconfigured, Configured with routing
// enabled or disabled, and a terminal Stopped state:
//
//	Unconfigured --Configure--> Configured (disabled)
//	Configured: Enable <-> Disable
//	any --Stop--> Stopped (terminal)
//
// Configure registers schemas, spawns the declared nodes through the class
// registry, validates all wiring structurally, and rebuilds the active index.
// When routing was enabled, the mutation is bracketed by a disable and
// re-enable so no signal is ever routed against a half-built index.
//
// Configure aborts on the first structural error and does not roll back:
// nodes spawned earlier in the same call remain spawned. This partial-apply
// behavior is documented, not guaranteed; callers must not assume atomicity.
//
// # Routing
//
// Enabling routing wraps every managed node's emitter. An intercepted emit
// resolves the (node, signal) pair in the active index and executes each
// matching rule in committed order: default-wiring rules in configured order,
// then mode-wiring rules in configured order. Rule execution validates the
// payload when the rule carries a schema, injects declared defaults, strips
// undeclared fields on strict rules, and invokes the target handler inside a
// fault boundary. A handler fault is reported on the diagnostic channel and
// never reaches the emitting node's call stack.
//
// # Modes
//
// A mode is a named, additive wiring set layered on top of the default
// wiring. Switching modes rebuilds the index under a routing disable, so a
// mode flip is atomic from the graph's point of view. Setting the already
// active mode is a no-op.
package orchestrator
