package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/purefictiongames/wiregraph/config"
	"github.com/purefictiongames/wiregraph/errors"
	"github.com/purefictiongames/wiregraph/pool"
)

// PoolSpec declares one pool in an engine configuration file. It mirrors
// pool.Config with a string idle TTL so files can say "5m" instead of
// nanoseconds.
type PoolSpec struct {
	Class           string            `json:"class" yaml:"class"`
	Policy          string            `json:"policy" yaml:"policy"`
	Size            int               `json:"size,omitempty" yaml:"size,omitempty"`
	Min             int               `json:"min,omitempty" yaml:"min,omitempty"`
	Max             int               `json:"max,omitempty" yaml:"max,omitempty"`
	IdleTTL         string            `json:"idleTtl,omitempty" yaml:"idleTtl,omitempty"`
	NodeConfig      map[string]any    `json:"nodeConfig,omitempty" yaml:"nodeConfig,omitempty"`
	Context         map[string]any    `json:"context,omitempty" yaml:"context,omitempty"`
	CheckoutSignals []pool.SignalSpec `json:"checkoutSignals,omitempty" yaml:"checkoutSignals,omitempty"`
	ReleaseOn       string            `json:"releaseOn,omitempty" yaml:"releaseOn,omitempty"`
}

// ToPoolConfig converts the file form into the pool package's config.
func (ps PoolSpec) ToPoolConfig() (pool.Config, error) {
	cfg := pool.Config{
		Class:           ps.Class,
		Policy:          pool.Policy(ps.Policy),
		Size:            ps.Size,
		Min:             ps.Min,
		Max:             ps.Max,
		NodeConfig:      ps.NodeConfig,
		Context:         ps.Context,
		CheckoutSignals: ps.CheckoutSignals,
		ReleaseOn:       ps.ReleaseOn,
	}
	if ps.IdleTTL != "" {
		ttl, err := time.ParseDuration(ps.IdleTTL)
		if err != nil {
			return pool.Config{}, errors.WrapConfig(
				fmt.Errorf("%w: idleTtl %q: %v", errors.ErrInvalidConfig, ps.IdleTTL, err),
				"Engine", "ToPoolConfig", "ttl parse")
		}
		cfg.IdleTTL = ttl
	}
	return cfg, nil
}

// Config is the engine's file format: the orchestrator's graph plus the
// engine-level concerns around it.
type Config struct {
	Graph *config.GraphSpec   `json:"graph" yaml:"graph"`
	Mode  string              `json:"mode,omitempty" yaml:"mode,omitempty"`
	Pools map[string]PoolSpec `json:"pools,omitempty" yaml:"pools,omitempty"`

	// QueueSize is the event loop's task queue capacity. Zero takes the
	// loop's default.
	QueueSize int `json:"queueSize,omitempty" yaml:"queueSize,omitempty"`
}

// Validate checks everything checkable without a class registry: the graph's
// internal consistency, the mode reference, and each pool declaration.
func (c *Config) Validate() error {
	if c.Graph == nil {
		return errors.WrapConfig(
			fmt.Errorf("%w: missing graph section", errors.ErrMissingConfig),
			"Engine", "Validate", "graph check")
	}
	if err := c.Graph.Validate(); err != nil {
		return err
	}
	if c.Mode != "" {
		if _, ok := c.Graph.Modes[c.Mode]; !ok {
			return errors.WrapConfig(
				fmt.Errorf("%w: unknown mode %q", errors.ErrInvalidConfig, c.Mode),
				"Engine", "Validate", "mode check")
		}
	}
	for name, ps := range c.Pools {
		cfg, err := ps.ToPoolConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return errors.WrapConfig(err, "Engine", "Validate", "pool "+name)
		}
	}
	return nil
}

// LoadFile reads an engine configuration from path, dispatching on the file
// extension: .json, .yaml, or .yml.
func LoadFile(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.WrapConfig(err, "Engine", "LoadFile", "stat "+path)
	}
	if info.Size() > config.MaxSpecSize {
		return nil, errors.WrapConfig(
			fmt.Errorf("%w: %s exceeds %d bytes", errors.ErrInvalidConfig, path, config.MaxSpecSize),
			"Engine", "LoadFile", "size check")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapConfig(err, "Engine", "LoadFile", "read "+path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseYAML(data)
	case ".json":
		return parseJSON(data)
	default:
		return Parse(data)
	}
}

// Parse decodes an engine configuration, sniffing JSON by its leading brace.
func Parse(data []byte) (*Config, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return parseJSON(data)
	}
	return parseYAML(data)
}

func parseJSON(data []byte) (*Config, error) {
	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.WrapConfig(err, "Engine", "Parse", "json decode")
	}
	return &cfg, nil
}

func parseYAML(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.WrapConfig(err, "Engine", "Parse", "yaml decode")
	}
	return &cfg, nil
}
