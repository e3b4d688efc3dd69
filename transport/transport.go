package transport

import "fmt"

// Transport is the external destination for unintercepted node emissions.
type Transport interface {
	// Publish delivers a payload to a subject. Delivery semantics beyond
	// a successful hand-off are the transport's concern, not the engine's.
	Publish(subject string, payload map[string]any) error

	// Close releases the transport's resources.
	Close() error
}

// SignalSubject returns the subject a node's signal is published on when no
// interceptor claims it.
func SignalSubject(nodeID, signal string) string {
	return fmt.Sprintf("wiregraph.node.%s.%s", nodeID, signal)
}

// EventSubject returns the subject a domain event is forwarded on.
func EventSubject(eventType string) string {
	return fmt.Sprintf("wiregraph.event.%s", eventType)
}

// DiagSubject returns the subject a diagnostic is forwarded on.
func DiagSubject(diagType string) string {
	return fmt.Sprintf("wiregraph.diag.%s", diagType)
}

// Null is a Transport that discards everything. It serves tests and fully
// embedded graphs that never hand signals off-process.
type Null struct{}

// NewNull creates a discarding transport.
func NewNull() *Null {
	return &Null{}
}

// Publish discards the payload.
func (*Null) Publish(string, map[string]any) error {
	return nil
}

// Close is a no-op.
func (*Null) Close() error {
	return nil
}
