package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purefictiongames/wiregraph/config"
	"github.com/purefictiongames/wiregraph/errors"
	"github.com/purefictiongames/wiregraph/event"
	"github.com/purefictiongames/wiregraph/node"
	"github.com/purefictiongames/wiregraph/schema"
	"github.com/purefictiongames/wiregraph/testutil"
)

// harness bundles an orchestrator with its bus capture for tests.
type harness struct {
	orch    *Orchestrator
	bus     *event.Bus
	capture *testutil.Capture
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	registry := node.NewRegistry()
	require.NoError(t, registry.Register("mock", testutil.MockFactory))

	bus := event.NewBus()
	deps := node.Dependencies{Bus: bus}

	return &harness{
		orch:    New(registry, deps),
		bus:     bus,
		capture: testutil.NewCapture(bus),
	}
}

func twoNodeSpec() *config.GraphSpec {
	return &config.GraphSpec{
		Nodes: map[string]config.NodeSpec{
			"A": {Class: "mock"},
			"B": {Class: "mock"},
		},
		Wiring: []config.WireRule{
			{From: "A", Signal: "s", To: "B", Handler: "onS"},
		},
	}
}

func (h *harness) mock(t *testing.T, id string) *testutil.MockNode {
	t.Helper()
	n, ok := h.orch.Node(id)
	require.True(t, ok, "node %s not managed", id)
	return n.(*testutil.MockNode)
}

func TestConfigureSpawnsDeclaredNodes(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.orch.Configure(twoNodeSpec()))

	assert.Equal(t, StateConfigured, h.orch.State())
	assert.Equal(t, 2, h.orch.NodeCount())

	configured := h.capture.OutOfType(event.TypeConfigured)
	require.Len(t, configured, 1)
	assert.Equal(t, 2, configured[0].Fields["nodeCount"])
	assert.Equal(t, 1, configured[0].Fields["wireCount"])
	assert.Equal(t, 0, configured[0].Fields["schemaCount"])

	assert.Len(t, h.capture.OutOfType(event.TypeNodeSpawned), 2)
}

func TestConfigureUnknownClassAborts(t *testing.T) {
	h := newHarness(t)

	spec := twoNodeSpec()
	spec.Nodes["C"] = config.NodeSpec{Class: "ghost"}

	err := h.orch.Configure(spec)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnknownClass)
	assert.True(t, errors.IsConfig(err))

	// Class validation runs before any spawn, so nothing was created
	assert.Equal(t, 0, h.orch.NodeCount())
}

func TestConfigurePartialApplyOnWiringError(t *testing.T) {
	h := newHarness(t)

	spec := twoNodeSpec()
	spec.Wiring = append(spec.Wiring, config.WireRule{From: "A"}) // structurally invalid

	err := h.orch.Configure(spec)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidWiring)

	// Documented partial apply: nodes spawned before the error remain
	assert.Equal(t, 2, h.orch.NodeCount())
	assert.NotEmpty(t, h.capture.DiagsOfType(event.DiagInvalidWiring))
}

func TestConfigureBadSchemaAborts(t *testing.T) {
	h := newHarness(t)

	spec := twoNodeSpec()
	spec.Schemas = map[string]schema.Def{
		"bad": {"v": {Type: "bogus"}},
	}

	err := h.orch.Configure(spec)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidFieldType)
	assert.NotEmpty(t, h.capture.DiagsOfType(event.DiagInvalidSchema))

	// Schemas are registered before nodes spawn
	assert.Equal(t, 0, h.orch.NodeCount())
}

func TestConfigureUnknownSchemaReference(t *testing.T) {
	h := newHarness(t)

	spec := twoNodeSpec()
	spec.Wiring[0].Schema = config.SchemaRef{Name: "ghost"}

	err := h.orch.Configure(spec)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnknownSchema)
}

func TestEnableDisableRestoresDefaultEmitter(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.orch.Configure(twoNodeSpec()))

	a := h.mock(t, "A")
	b := h.mock(t, "B")

	require.NoError(t, h.orch.Enable())
	a.Emit("s", node.Payload{"v": 5})
	assert.Equal(t, 1, b.Calls("onS"))

	require.NoError(t, h.orch.Disable())
	a.Emit("s", node.Payload{"v": 6})
	assert.Equal(t, 1, b.Calls("onS"), "disabled routing must not deliver")
}

func TestRoutingDisabledByDefault(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.orch.Configure(twoNodeSpec()))

	h.mock(t, "A").Emit("s", node.Payload{"v": 5})
	assert.Zero(t, h.mock(t, "B").Calls("onS"))
}

func TestReconfigureWhileEnabled(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.orch.Configure(twoNodeSpec()))
	require.NoError(t, h.orch.Enable())

	// Second configure adds a node and a wire; routing stays usable after
	second := &config.GraphSpec{
		Nodes: map[string]config.NodeSpec{
			"C": {Class: "mock", Config: map[string]any{"handlers": []string{"onT"}}},
		},
		Wiring: []config.WireRule{
			{From: "A", Signal: "s", To: "B", Handler: "onS"},
			{From: "B", Signal: "t", To: "C", Handler: "onT"},
		},
	}
	require.NoError(t, h.orch.Configure(second))
	assert.True(t, h.orch.Enabled())
	assert.Equal(t, 3, h.orch.NodeCount())

	h.mock(t, "A").Emit("s", nil)
	assert.Equal(t, 1, h.mock(t, "B").Calls("onS"))
}

func TestAddNodeLive(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.orch.Configure(twoNodeSpec()))
	require.NoError(t, h.orch.Enable())

	require.NoError(t, h.orch.AddNode("C", "mock", map[string]any{"handlers": []string{"onS"}}))
	assert.Equal(t, 3, h.orch.NodeCount())

	spawned := h.capture.OutOfType(event.TypeNodeSpawned)
	assert.Equal(t, "C", spawned[len(spawned)-1].Fields["id"])

	// The new node is wired: its emits route
	require.NoError(t, h.orch.Configure(&config.GraphSpec{
		Wiring: []config.WireRule{{From: "C", Signal: "s", To: "B", Handler: "onS"}},
	}))
	h.mock(t, "C").Emit("s", nil)
	assert.Equal(t, 1, h.mock(t, "B").Calls("onS"))
}

func TestAddNodeDuplicateID(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.orch.Configure(twoNodeSpec()))

	err := h.orch.AddNode("A", "mock", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrDuplicateNode)
}

func TestRemoveNodeLive(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.orch.Configure(twoNodeSpec()))
	require.NoError(t, h.orch.Enable())

	b := h.mock(t, "B")
	require.NoError(t, h.orch.RemoveNode("B"))

	assert.Equal(t, 1, h.orch.NodeCount())
	assert.Equal(t, node.StateStopped, b.State())

	despawned := h.capture.OutOfType(event.TypeNodeDespawned)
	require.Len(t, despawned, 1)
	assert.Equal(t, "B", despawned[0].Fields["id"])

	// Routing to the removed node degrades to a routing error, not a halt
	h.mock(t, "A").Emit("s", nil)
	assert.NotEmpty(t, h.capture.DiagsOfType(event.DiagNodeError))
}

func TestRemoveNodeUnknown(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.orch.Configure(twoNodeSpec()))

	err := h.orch.RemoveNode("ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNodeNotFound)
}

func TestStopDespawnsEverything(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.orch.Configure(twoNodeSpec()))
	require.NoError(t, h.orch.Enable())

	a := h.mock(t, "A")
	b := h.mock(t, "B")

	h.orch.Stop()
	assert.Equal(t, StateStopped, h.orch.State())
	assert.Equal(t, 0, h.orch.NodeCount())
	assert.Equal(t, node.StateStopped, a.State())
	assert.Equal(t, node.StateStopped, b.State())

	// Teardown suppresses despawn notifications
	assert.Empty(t, h.capture.OutOfType(event.TypeNodeDespawned))

	// Terminal: configure after stop is not supported
	err := h.orch.Configure(twoNodeSpec())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrStopped)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "unconfigured", StateUnconfigured.String())
	assert.Equal(t, "configured", StateConfigured.String())
	assert.Equal(t, "stopped", StateStopped.String())
	assert.Equal(t, "unknown", State(42).String())
}
