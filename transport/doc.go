// Package transport provides the external delivery surface the engine hands
// signals to but does not own.
//
// A node's default emitter, absent any interception, forwards the signal to
// a Transport. The engine's delivery guarantees end at Publish: whatever sits
// behind the subject (NATS, a test capture, nothing) is a collaborator's
// concern.
//
// Two implementations ship with the engine: NATS, which publishes payloads as
// JSON over a nats.Conn, and Null, which discards everything and serves
// embedded or test use. The NATS transport can additionally forward the
// event bus onto subjects so out-of-process observers see the same domain
// events and diagnostics in-process subscribers do.
package transport
