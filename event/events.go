package event

import "time"

// Type identifies a domain event on the Out channel.
type Type string

// Domain event types
const (
	TypeConfigured       Type = "configured"
	TypeNodeSpawned      Type = "nodeSpawned"
	TypeNodeDespawned    Type = "nodeDespawned"
	TypeModeChanged      Type = "modeChanged"
	TypeValidationFailed Type = "validationFailed"

	// Pool events
	TypeCheckedOut    Type = "checkedOut"
	TypeReleased      Type = "released"
	TypeExhausted     Type = "exhausted"
	TypeNodeCreated   Type = "nodeCreated"
	TypeNodeDestroyed Type = "nodeDestroyed"
)

// DiagType identifies a diagnostic on the Err channel.
type DiagType string

// Diagnostic types
const (
	DiagInvalidSchema   DiagType = "invalidSchema"
	DiagInvalidWiring   DiagType = "invalidWiring"
	DiagValidationError DiagType = "validationError"
	DiagNodeError       DiagType = "nodeError"
)

// Event is one domain event with its structured fields.
type Event struct {
	Type   Type           `json:"type"`
	Time   time.Time      `json:"time"`
	Fields map[string]any `json:"fields,omitempty"`
}

// Diagnostic is one absorbed failure with its structured fields.
type Diagnostic struct {
	Type   DiagType       `json:"type"`
	Time   time.Time      `json:"time"`
	Err    error          `json:"-"`
	Fields map[string]any `json:"fields,omitempty"`
}

// New builds a domain event stamped with the current time.
func New(t Type, fields map[string]any) Event {
	return Event{Type: t, Time: time.Now(), Fields: fields}
}

// NewDiag builds a diagnostic stamped with the current time.
func NewDiag(t DiagType, err error, fields map[string]any) Diagnostic {
	return Diagnostic{Type: t, Time: time.Now(), Err: err, Fields: fields}
}
