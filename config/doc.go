// Package config provides the declarative graph description the engine is
// configured from.
//
// A GraphSpec names the schemas, nodes, default wiring, and modes of one
// graph. It loads from JSON or YAML files and carries its own structural
// validation: every wire rule must declare all four of from, signal, to, and
// handler, and every named schema reference must resolve. A rule whose target
// node is not declared is structurally valid; forward references to nodes
// spawned later are allowed and only become routing errors if still
// unresolved at dispatch time.
//
// # Example
//
//	schemas:
//	  hit:
//	    v: {type: number, required: true}
//	nodes:
//	  turret-1: {class: turret}
//	  scorer:   {class: scoreboard}
//	wiring:
//	  - {from: turret-1, signal: fired, to: scorer, handler: onFired, schema: hit, strict: true}
//	modes:
//	  replay:
//	    wiring:
//	      - {from: turret-1, signal: fired, to: out, handler: record}
//
// The "out" target is the external sentinel: delivery to it is a hand-off to
// a collaborator outside the graph and is silently skipped by the router.
package config
