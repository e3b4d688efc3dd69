// Package wiregraph provides a declarative dataflow composition engine:
// independently addressable stateful nodes, each exposing named input
// handlers and a single output emitter, assembled into a directed
// message-passing graph described entirely by data.
//
// # Architecture
//
//	┌─────────────────────────────────────┐
//	│         Orchestrator                │  Spawn, wire, route,
//	│ (configure, modes, add/remove)      │  mode switching
//	└─────────────────────────────────────┘
//	           ↓ intercepts emitters of
//	┌─────────────────────────────────────┐
//	│            Nodes                    │  Handlers in,
//	│  (registry-spawned, pooled, ad hoc) │  one emitter out
//	└─────────────────────────────────────┘
//	           ↓ payloads checked by
//	┌─────────────────────────────────────┐
//	│        Schema Validator             │  Validate, default,
//	│   (pure field-contract checks)      │  sanitize
//	└─────────────────────────────────────┘
//
// The Orchestrator owns node instances, builds a routing index from
// declarative wire rules, intercepts each managed node's emitter, and
// dispatches signals to target handlers inside a fault boundary. Modes layer
// additive wiring sets on top of the default wiring and can be switched at
// runtime. The Pool Manager is a specialized consumer of the same node
// contract, handing nodes out to external entities under fixed or elastic
// allocation.
//
// Execution is single-threaded and cooperative: handlers, emits, and routing
// decisions run synchronously on one event loop (pkg/sched); the only
// suspension points are cancellable timers.
//
// The engine deliberately contains no domain logic: no rendering, physics,
// persistence, or business formulas. Those live in leaf participants that
// satisfy the node contract and plug in through the class registry; the
// engine only routes between them.
package wiregraph
