package nodes

import (
	"encoding/json"

	"github.com/purefictiongames/wiregraph/errors"
	"github.com/purefictiongames/wiregraph/node"
)

// counterConfig configures a counter node.
type counterConfig struct {
	// Step is the increment applied per input. Defaults to 1.
	Step int `json:"step"`
	// Signal is the signal emitted after every change. Defaults to
	// "changed".
	Signal string `json:"signal"`
}

// Counter accumulates a running count and reports every change. Resettable,
// so pool-managed counters return to zero on release.
type Counter struct {
	*node.BaseNode
	step   int
	signal string
	count  int
}

// NewCounter is the node.Factory for the "counter" class.
func NewCounter(id string, rawConfig json.RawMessage, deps node.Dependencies) (node.Node, error) {
	cfg := counterConfig{Step: 1, Signal: "changed"}
	if len(rawConfig) > 0 {
		if err := json.Unmarshal(rawConfig, &cfg); err != nil {
			return nil, errors.WrapConfig(err, "Counter", "NewCounter", "config parse")
		}
		if cfg.Step == 0 {
			cfg.Step = 1
		}
		if cfg.Signal == "" {
			cfg.Signal = "changed"
		}
	}

	c := &Counter{
		BaseNode: node.NewBaseNode(id, "counter", deps),
		step:     cfg.Step,
		signal:   cfg.Signal,
	}
	c.RegisterHandler("onInc", c.onInc)
	return c, nil
}

func (c *Counter) onInc(_ node.Node, _ node.Payload) error {
	c.count += c.step
	c.Emit(c.signal, node.Payload{"count": c.count})
	return nil
}

// Count returns the current accumulated value.
func (c *Counter) Count() int { return c.count }

// Reset returns the counter to zero, satisfying node.Resettable.
func (c *Counter) Reset() { c.count = 0 }
