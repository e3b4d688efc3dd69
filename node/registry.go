package node

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/purefictiongames/wiregraph/errors"
)

// Factory creates a node instance from raw configuration and dependencies.
// The factory parses its own config and returns a node in the created state;
// all I/O belongs in the node's Start, not in the factory.
type Factory func(id string, rawConfig json.RawMessage, deps Dependencies) (Node, error)

// Registry manages node factories keyed by class tag. Classes are registered
// explicitly at composition time; an unregistered class can never be spawned,
// and a configuration's class tags can all be checked in one startup pass.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a new empty node registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register registers a node factory under a class tag.
// Returns an error if the class is already registered.
func (r *Registry) Register(class string, factory Factory) error {
	if class == "" {
		return errors.WrapConfig(
			fmt.Errorf("%w: empty class tag", errors.ErrInvalidConfig),
			"Registry", "Register", "class tag check")
	}
	if factory == nil {
		return errors.WrapConfig(
			fmt.Errorf("%w: nil factory for class %q", errors.ErrInvalidConfig, class),
			"Registry", "Register", "factory check")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[class]; exists {
		return errors.WrapConfig(
			fmt.Errorf("%w: %q", errors.ErrDuplicateClass, class),
			"Registry", "Register", "duplicate check")
	}
	r.factories[class] = factory
	return nil
}

// Lookup resolves a class tag to its factory.
func (r *Registry) Lookup(class string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.factories[class]
	if !exists {
		return nil, errors.WrapConfig(
			fmt.Errorf("%w: %q", errors.ErrUnknownClass, class),
			"Registry", "Lookup", "class resolution")
	}
	return factory, nil
}

// Classes returns every registered class tag, sorted.
func (r *Registry) Classes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	classes := make([]string, 0, len(r.factories))
	for class := range r.factories {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	return classes
}

// ValidateClasses checks in one pass that every listed class tag resolves.
// Run it against a configuration's declared classes before spawning anything.
func (r *Registry) ValidateClasses(classes []string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, class := range classes {
		if _, exists := r.factories[class]; !exists {
			return errors.WrapConfig(
				fmt.Errorf("%w: %q", errors.ErrUnknownClass, class),
				"Registry", "ValidateClasses", "startup class check")
		}
	}
	return nil
}
