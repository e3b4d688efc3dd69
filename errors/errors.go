// Package errors provides standardized error handling patterns for Wiregraph
// components. It includes error classification, standard error variables, and
// helper functions for consistent error wrapping across the engine.
package errors

import (
	"errors"
	"fmt"
)

// ErrorClass represents the classification of errors for handling purposes
type ErrorClass int

const (
	// ErrorConfig represents malformed schema or wiring detected at
	// configure time; aborts the configure call
	ErrorConfig ErrorClass = iota
	// ErrorRouting represents an unresolved target node or handler at
	// dispatch time; reported per occurrence, never halts routing
	ErrorRouting
	// ErrorValidation represents a per-field schema mismatch on a payload
	ErrorValidation
	// ErrorHandler represents a fault raised inside a downstream handler,
	// isolated per dispatch
	ErrorHandler
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorConfig:
		return "config"
	case ErrorRouting:
		return "routing"
	case ErrorValidation:
		return "validation"
	case ErrorHandler:
		return "handler"
	default:
		return "unknown"
	}
}

// Standard error variables for common conditions
var (
	// Node lifecycle errors
	ErrAlreadyStarted = errors.New("node already started")
	ErrNotStarted     = errors.New("node not started")
	ErrAlreadyStopped = errors.New("node already stopped")

	// Registry errors
	ErrUnknownClass      = errors.New("unknown node class")
	ErrDuplicateClass    = errors.New("node class already registered")
	ErrDuplicateNode     = errors.New("node id already exists")
	ErrNodeNotFound      = errors.New("node not found")
	ErrHandlerNotFound   = errors.New("handler not found")
	ErrEmitterNotWrapped = errors.New("emitter not wrapped by owner")

	// Schema and wiring errors
	ErrInvalidSchema    = errors.New("invalid schema definition")
	ErrUnknownSchema    = errors.New("unknown schema reference")
	ErrInvalidWiring    = errors.New("invalid wire rule")
	ErrInvalidFieldType = errors.New("field type not in allowed set")

	// Orchestrator state errors
	ErrNotConfigured = errors.New("orchestrator not configured")
	ErrStopped       = errors.New("orchestrator stopped")

	// Pool errors
	ErrAlreadyCheckedOut = errors.New("entity already has an outstanding checkout")
	ErrPoolExhausted     = errors.New("pool exhausted")
	ErrPoolDestroyed     = errors.New("pool destroyed")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrMissingConfig = errors.New("missing required configuration")
)

// ClassifiedError wraps an error with its classification
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// IsConfig checks if an error is a configure-time structural error
func IsConfig(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorConfig
	}

	return errors.Is(err, ErrUnknownClass) ||
		errors.Is(err, ErrInvalidSchema) ||
		errors.Is(err, ErrUnknownSchema) ||
		errors.Is(err, ErrInvalidWiring) ||
		errors.Is(err, ErrInvalidFieldType) ||
		errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrMissingConfig)
}

// IsRouting checks if an error is a dispatch-time resolution error
func IsRouting(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorRouting
	}

	return errors.Is(err, ErrNodeNotFound) ||
		errors.Is(err, ErrHandlerNotFound)
}

// IsValidation checks if an error is a payload schema mismatch
func IsValidation(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorValidation
	}

	return false
}

// IsHandlerFault checks if an error is a fault from a downstream handler
func IsHandlerFault(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorHandler
	}

	return false
}

// Classify returns the error class for an error
func Classify(err error) ErrorClass {
	if IsRouting(err) {
		return ErrorRouting
	}
	if IsValidation(err) {
		return ErrorValidation
	}
	if IsHandlerFault(err) {
		return ErrorHandler
	}

	// Configure-time structural problems are the default class: they are
	// the only class that aborts the calling operation.
	return ErrorConfig
}

// newClassified creates a new classified error.
// This is an internal helper - use the Wrap* functions instead.
func newClassified(class ErrorClass, err error, component, operation, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Err:       err,
		Message:   message,
		Component: component,
		Operation: operation,
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapConfig wraps an error as a configure-time error with context
func WrapConfig(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorConfig, wrappedErr, component, method, wrappedErr.Error())
}

// WrapRouting wraps an error as a dispatch-time routing error with context
func WrapRouting(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorRouting, wrappedErr, component, method, wrappedErr.Error())
}

// WrapValidation wraps an error as a payload validation error with context
func WrapValidation(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorValidation, wrappedErr, component, method, wrappedErr.Error())
}

// WrapHandlerFault wraps an error as an isolated downstream handler fault
func WrapHandlerFault(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorHandler, wrappedErr, component, method, wrappedErr.Error())
}
