package config

import (
	"fmt"

	"github.com/purefictiongames/wiregraph/errors"
	"github.com/purefictiongames/wiregraph/schema"
)

// Validate checks one rule structurally: all four required fields present.
// Target resolution is deliberately not checked here; forward references to
// nodes spawned later are structurally valid.
func (w WireRule) Validate() error {
	missing := ""
	switch {
	case w.From == "":
		missing = "from"
	case w.Signal == "":
		missing = "signal"
	case w.To == "":
		missing = "to"
	case w.Handler == "":
		missing = "handler"
	}
	if missing != "" {
		return errors.WrapConfig(
			fmt.Errorf("%w: missing required field %q", errors.ErrInvalidWiring, missing),
			"WireRule", "Validate", "required field check")
	}

	if w.Schema.Inline != nil {
		if err := schema.ValidateDef(w.Schema.Inline); err != nil {
			return errors.WrapConfig(err, "WireRule", "Validate", "inline schema check")
		}
	}
	return nil
}

// Validate checks the whole spec structurally: every schema definition is
// well-formed, every node declares a class, every rule in default and mode
// wiring passes WireRule.Validate, and every named schema reference resolves
// against the spec's schemas.
func (s *GraphSpec) Validate() error {
	for name, def := range s.Schemas {
		if err := schema.ValidateDef(def); err != nil {
			return errors.WrapConfig(err, "GraphSpec", "Validate", "schema "+name)
		}
	}

	for id, ns := range s.Nodes {
		if ns.Class == "" {
			return errors.WrapConfig(
				fmt.Errorf("%w: node %q declares no class", errors.ErrInvalidConfig, id),
				"GraphSpec", "Validate", "node declaration check")
		}
	}

	if err := s.validateWiring(s.Wiring, "default wiring"); err != nil {
		return err
	}
	for mode, ms := range s.Modes {
		if err := s.validateWiring(ms.Wiring, "mode "+mode); err != nil {
			return err
		}
	}
	return nil
}

func (s *GraphSpec) validateWiring(rules []WireRule, where string) error {
	for i, rule := range rules {
		if err := rule.Validate(); err != nil {
			return errors.WrapConfig(err, "GraphSpec", "Validate",
				fmt.Sprintf("%s rule %d", where, i))
		}
		if rule.Schema.Name != "" {
			if _, exists := s.Schemas[rule.Schema.Name]; !exists {
				return errors.WrapConfig(
					fmt.Errorf("%w: %q in %s rule %d", errors.ErrUnknownSchema, rule.Schema.Name, where, i),
					"GraphSpec", "Validate", "schema reference check")
			}
		}
	}
	return nil
}

// Classes returns the distinct class tags the spec's nodes declare, for a
// one-pass registry check before spawning.
func (s *GraphSpec) Classes() []string {
	seen := make(map[string]bool, len(s.Nodes))
	var classes []string
	for _, ns := range s.Nodes {
		if ns.Class != "" && !seen[ns.Class] {
			seen[ns.Class] = true
			classes = append(classes, ns.Class)
		}
	}
	return classes
}
