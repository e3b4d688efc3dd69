// Package event provides the engine's two notification channels: domain
// events ("Out") and diagnostics ("Err").
//
// Domain events describe things that happened to the graph (nodes spawned,
// modes changed, pool checkouts) and are meant for collaborators outside the
// engine. Diagnostics describe failures the engine absorbed, such as routing
// errors, validation errors, and handler faults; they never travel on the
// domain channel.
//
// The Bus dispatches synchronously to subscribers on the caller's goroutine.
// The engine runs single-threaded on its event loop, so subscribers observe
// events in exactly the order they were produced. A subscriber that needs to
// do real work should hand off rather than block the loop.
package event
