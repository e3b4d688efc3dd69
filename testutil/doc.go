// Package testutil provides testing utilities shared across engine packages.
//
// # Overview
//
// The package contains a recording mock node, its registry factory, and
// event capture helpers. The mock node satisfies the full node contract:
// lifecycle, handlers, emitter chain, and reset, so orchestrator and pool
// tests exercise real composition rather than hand-stubbed behavior.
//
// # Usage
//
//	registry := node.NewRegistry()
//	_ = registry.Register("recorder", testutil.MockFactory)
//
//	capture := testutil.NewCapture(bus)
//	// ... drive the engine ...
//	events := capture.Out()
package testutil
