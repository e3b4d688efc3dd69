package testutil

import (
	"encoding/json"
	"fmt"

	"github.com/purefictiongames/wiregraph/event"
	"github.com/purefictiongames/wiregraph/node"
)

// Invocation records one handler call on a MockNode.
type Invocation struct {
	Handler string
	Payload node.Payload
}

// MockNode is a recording node for tests. Every registered handler records
// its invocations; handlers named "fail" return an error and handlers named
// "panic" panic, for fault-boundary tests.
type MockNode struct {
	*node.BaseNode
	Invocations []Invocation
	ResetCalls  int
}

// NewMockNode creates a mock with the given handler names registered.
func NewMockNode(id, class string, deps node.Dependencies, handlerNames ...string) *MockNode {
	m := &MockNode{BaseNode: node.NewBaseNode(id, class, deps)}
	for _, name := range handlerNames {
		m.addHandler(name)
	}
	return m
}

func (m *MockNode) addHandler(name string) {
	switch name {
	case "fail":
		m.RegisterHandler(name, func(node.Node, node.Payload) error {
			return fmt.Errorf("mock handler failure")
		})
	case "panic":
		m.RegisterHandler(name, func(node.Node, node.Payload) error {
			panic("mock handler panic")
		})
	default:
		m.RegisterHandler(name, func(_ node.Node, p node.Payload) error {
			m.Invocations = append(m.Invocations, Invocation{Handler: name, Payload: p})
			return nil
		})
	}
}

// Calls returns the number of invocations recorded for one handler.
func (m *MockNode) Calls(handler string) int {
	count := 0
	for _, inv := range m.Invocations {
		if inv.Handler == handler {
			count++
		}
	}
	return count
}

// LastPayload returns the payload of the most recent invocation of one
// handler, nil when it never ran.
func (m *MockNode) LastPayload(handler string) node.Payload {
	for i := len(m.Invocations) - 1; i >= 0; i-- {
		if m.Invocations[i].Handler == handler {
			return m.Invocations[i].Payload
		}
	}
	return nil
}

// Reset restores the mock's recorded state, satisfying node.Resettable.
func (m *MockNode) Reset() {
	m.Invocations = nil
	m.ResetCalls++
}

// mockConfig is the private configuration MockFactory understands.
type mockConfig struct {
	Handlers []string `json:"handlers"`
}

// MockFactory is a node.Factory spawning MockNodes. The node config's
// "handlers" list names the handlers to register; absent config registers
// "onS" alone.
func MockFactory(id string, rawConfig json.RawMessage, deps node.Dependencies) (node.Node, error) {
	cfg := mockConfig{Handlers: []string{"onS"}}
	if len(rawConfig) > 0 {
		if err := json.Unmarshal(rawConfig, &cfg); err != nil {
			return nil, err
		}
		if len(cfg.Handlers) == 0 {
			cfg.Handlers = []string{"onS"}
		}
	}
	return NewMockNode(id, "mock", deps, cfg.Handlers...), nil
}

// Capture subscribes to a bus and records everything it sees.
type Capture struct {
	out   []event.Event
	diags []event.Diagnostic
}

// NewCapture attaches a capture to both bus channels.
func NewCapture(bus *event.Bus) *Capture {
	c := &Capture{}
	bus.SubscribeOut(func(e event.Event) { c.out = append(c.out, e) })
	bus.SubscribeErr(func(d event.Diagnostic) { c.diags = append(c.diags, d) })
	return c
}

// Out returns every captured domain event.
func (c *Capture) Out() []event.Event { return c.out }

// Diags returns every captured diagnostic.
func (c *Capture) Diags() []event.Diagnostic { return c.diags }

// OutOfType returns captured domain events of one type.
func (c *Capture) OutOfType(t event.Type) []event.Event {
	var matched []event.Event
	for _, e := range c.out {
		if e.Type == t {
			matched = append(matched, e)
		}
	}
	return matched
}

// DiagsOfType returns captured diagnostics of one type.
func (c *Capture) DiagsOfType(t event.DiagType) []event.Diagnostic {
	var matched []event.Diagnostic
	for _, d := range c.diags {
		if d.Type == t {
			matched = append(matched, d)
		}
	}
	return matched
}
