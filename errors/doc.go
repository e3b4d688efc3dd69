// Package errors provides standardized error handling patterns for Wiregraph.
//
// # Overview
//
// The errors package implements a four-class error classification system
// matching the engine's failure taxonomy: Config (malformed schema or wiring
// at configure time), Routing (unresolved target node or handler at dispatch
// time), Validation (per-field schema mismatch), and Handler (a fault raised
// inside a downstream handler).
//
// Classification enables callers to decide how far a failure reaches: Config
// errors abort the configure call, Routing and Validation errors are reported
// per occurrence and never halt the Orchestrator, and Handler faults are
// isolated per dispatch and never propagate to the emitting node.
//
// # Usage
//
// Wrap errors with context using the class-specific helpers:
//
//	if _, ok := r.factories[class]; !ok {
//	    return errors.WrapConfig(errors.ErrUnknownClass, "Registry", "Lookup", class)
//	}
//
// Check classifications with the Is helpers:
//
//	if errors.IsConfig(err) {
//	    // abort configure, leave already-spawned nodes in place
//	}
package errors
