package nodes

import (
	"github.com/purefictiongames/wiregraph/node"
)

// Register installs every stock node class into registry.
func Register(registry *node.Registry) error {
	classes := map[string]node.Factory{
		"relay":   NewRelay,
		"logger":  NewLogSink,
		"counter": NewCounter,
	}
	for class, factory := range classes {
		if err := registry.Register(class, factory); err != nil {
			return err
		}
	}
	return nil
}
