package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/purefictiongames/wiregraph/errors"
	"github.com/purefictiongames/wiregraph/schema"
)

// TargetOut is the external sentinel target: a wire rule delivering to it
// hands the payload off to a collaborator outside the graph, and the router
// skips it silently.
const TargetOut = "out"

// MaxSpecSize bounds the raw size of a graph description file.
const MaxSpecSize = 1 << 20 // 1 MiB

// GraphSpec is the full declarative description of one graph.
type GraphSpec struct {
	Schemas map[string]schema.Def `json:"schemas,omitempty" yaml:"schemas,omitempty"`
	Nodes   map[string]NodeSpec   `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Wiring  []WireRule            `json:"wiring,omitempty" yaml:"wiring,omitempty"`
	Modes   map[string]ModeSpec   `json:"modes,omitempty" yaml:"modes,omitempty"`
}

// NodeSpec declares one node: its class tag and its private configuration.
type NodeSpec struct {
	Class  string         `json:"class" yaml:"class"`
	Config map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// RawConfig returns the node's private configuration as raw JSON for the
// class factory to parse.
func (ns NodeSpec) RawConfig() (json.RawMessage, error) {
	if ns.Config == nil {
		return nil, nil
	}
	data, err := json.Marshal(ns.Config)
	if err != nil {
		return nil, errors.Wrap(err, "NodeSpec", "RawConfig", "config marshaling")
	}
	return data, nil
}

// ModeSpec is a named, additive wiring set layered on top of default wiring.
type ModeSpec struct {
	Wiring []WireRule `json:"wiring" yaml:"wiring"`
}

// WireRule declares one edge: when node From emits Signal, the payload is
// delivered to To's Handler, optionally validated against Schema, with
// Strict blocking delivery on validation failure.
type WireRule struct {
	From    string    `json:"from" yaml:"from"`
	Signal  string    `json:"signal" yaml:"signal"`
	To      string    `json:"to" yaml:"to"`
	Handler string    `json:"handler" yaml:"handler"`
	Schema  SchemaRef `json:"schema,omitempty" yaml:"schema,omitempty"`
	Strict  bool      `json:"strict,omitempty" yaml:"strict,omitempty"`
}

// SchemaRef is either a named reference to a registered schema or an inline
// definition. In the wire format it is a string or a SchemaDef mapping.
type SchemaRef struct {
	Name   string     `json:"-" yaml:"-"`
	Inline schema.Def `json:"-" yaml:"-"`
}

// IsZero reports whether the rule carries no schema at all.
func (r SchemaRef) IsZero() bool {
	return r.Name == "" && r.Inline == nil
}

// UnmarshalJSON accepts a string (named reference) or an object (inline
// definition).
func (r *SchemaRef) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &r.Name)
	}
	return json.Unmarshal(data, &r.Inline)
}

// MarshalJSON emits the named reference when present, the inline definition
// otherwise.
func (r SchemaRef) MarshalJSON() ([]byte, error) {
	if r.Name != "" {
		return json.Marshal(r.Name)
	}
	if r.Inline != nil {
		return json.Marshal(r.Inline)
	}
	return []byte("null"), nil
}

// UnmarshalYAML accepts a scalar (named reference) or a mapping (inline
// definition).
func (r *SchemaRef) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		return value.Decode(&r.Name)
	case yaml.MappingNode:
		return value.Decode(&r.Inline)
	default:
		return errors.WrapConfig(
			fmt.Errorf("%w: schema must be a name or a field mapping", errors.ErrInvalidWiring),
			"SchemaRef", "UnmarshalYAML", "node kind check")
	}
}

// MarshalYAML emits the named reference when present, the inline definition
// otherwise.
func (r SchemaRef) MarshalYAML() (any, error) {
	if r.Name != "" {
		return r.Name, nil
	}
	if r.Inline != nil {
		return r.Inline, nil
	}
	return nil, nil
}

// Load reads and parses a graph description from path. The extension picks
// the format: .json is JSON, .yaml and .yml are YAML.
func Load(path string) (*GraphSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapConfig(err, "config", "Load", "read "+path)
	}
	if len(data) > MaxSpecSize {
		return nil, errors.WrapConfig(
			fmt.Errorf("%w: spec size %d exceeds maximum %d", errors.ErrInvalidConfig, len(data), MaxSpecSize),
			"config", "Load", "size check")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return parseJSON(data)
	case ".yaml", ".yml":
		return parseYAML(data)
	default:
		return Parse(data)
	}
}

// Parse parses a graph description, sniffing JSON versus YAML.
func Parse(data []byte) (*GraphSpec, error) {
	trimmed := strings.TrimLeftFunc(string(data), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if strings.HasPrefix(trimmed, "{") {
		return parseJSON(data)
	}
	return parseYAML(data)
}

func parseJSON(data []byte) (*GraphSpec, error) {
	var spec GraphSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, errors.WrapConfig(err, "config", "Parse", "JSON parsing")
	}
	return &spec, nil
}

func parseYAML(data []byte) (*GraphSpec, error) {
	var spec GraphSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, errors.WrapConfig(err, "config", "Parse", "YAML parsing")
	}
	return &spec, nil
}
