package nodes

import (
	"encoding/json"

	"github.com/purefictiongames/wiregraph/errors"
	"github.com/purefictiongames/wiregraph/node"
)

// relayConfig configures a relay node.
type relayConfig struct {
	// Signal is the output signal re-emitted for every input. Defaults to
	// "relayed".
	Signal string `json:"signal"`
}

// Relay re-emits every payload it receives under a configured signal. Useful
// as a fan-out point or a seam for mode-dependent rewiring.
type Relay struct {
	*node.BaseNode
	signal string
}

// NewRelay is the node.Factory for the "relay" class.
func NewRelay(id string, rawConfig json.RawMessage, deps node.Dependencies) (node.Node, error) {
	cfg := relayConfig{Signal: "relayed"}
	if len(rawConfig) > 0 {
		if err := json.Unmarshal(rawConfig, &cfg); err != nil {
			return nil, errors.WrapConfig(err, "Relay", "NewRelay", "config parse")
		}
		if cfg.Signal == "" {
			cfg.Signal = "relayed"
		}
	}

	r := &Relay{
		BaseNode: node.NewBaseNode(id, "relay", deps),
		signal:   cfg.Signal,
	}
	r.RegisterHandler("onInput", r.onInput)
	return r, nil
}

func (r *Relay) onInput(_ node.Node, payload node.Payload) error {
	r.Emit(r.signal, payload)
	return nil
}
