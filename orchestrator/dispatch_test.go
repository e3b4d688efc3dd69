package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purefictiongames/wiregraph/config"
	"github.com/purefictiongames/wiregraph/event"
	"github.com/purefictiongames/wiregraph/node"
	"github.com/purefictiongames/wiregraph/schema"
)

// configureEnabled applies spec and turns routing on.
func (h *harness) configureEnabled(t *testing.T, spec *config.GraphSpec) {
	t.Helper()
	require.NoError(t, h.orch.Configure(spec))
	require.NoError(t, h.orch.Enable())
}

func TestRouteDeliversExactlyOnce(t *testing.T) {
	h := newHarness(t)
	h.configureEnabled(t, twoNodeSpec())

	h.mock(t, "A").Emit("s", node.Payload{"v": 5})

	b := h.mock(t, "B")
	require.Equal(t, 1, b.Calls("onS"))
	assert.Equal(t, node.Payload{"v": 5}, b.LastPayload("onS"))
}

func TestRouteUnwiredSignalIsNoOp(t *testing.T) {
	h := newHarness(t)
	h.configureEnabled(t, twoNodeSpec())

	h.mock(t, "A").Emit("unwired", node.Payload{"v": 1})

	assert.Empty(t, h.mock(t, "B").Invocations)
	assert.Empty(t, h.capture.Diags())
}

func TestStrictValidationBlocksDelivery(t *testing.T) {
	h := newHarness(t)
	spec := twoNodeSpec()
	spec.Schemas = map[string]schema.Def{
		"msg": {"v": {Type: schema.TypeInt, Required: true}},
	}
	spec.Wiring[0].Schema = config.SchemaRef{Name: "msg"}
	spec.Wiring[0].Strict = true
	h.configureEnabled(t, spec)

	h.mock(t, "A").Emit("s", node.Payload{"w": 1})

	assert.Zero(t, h.mock(t, "B").Calls("onS"))

	failed := h.capture.OutOfType(event.TypeValidationFailed)
	require.Len(t, failed, 1)
	fieldErrs := failed[0].Fields["errors"].([]schema.FieldError)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "v", fieldErrs[0].Field)

	diags := h.capture.DiagsOfType(event.DiagValidationError)
	require.Len(t, diags, 1)
	assert.Equal(t, "v", diags[0].Fields["field"])
}

func TestNonStrictValidationForwardsOriginal(t *testing.T) {
	h := newHarness(t)
	spec := twoNodeSpec()
	spec.Wiring[0].Schema = config.SchemaRef{
		Inline: schema.Def{"v": {Type: schema.TypeInt, Required: true}},
	}
	h.configureEnabled(t, spec)

	h.mock(t, "A").Emit("s", node.Payload{"w": 1})

	b := h.mock(t, "B")
	require.Equal(t, 1, b.Calls("onS"), "non-strict failure still delivers")
	assert.Equal(t, node.Payload{"w": 1}, b.LastPayload("onS"))

	// Reported even though delivered
	assert.Len(t, h.capture.OutOfType(event.TypeValidationFailed), 1)
	assert.Len(t, h.capture.DiagsOfType(event.DiagValidationError), 1)
}

func TestStrictDeliverySanitizesAndDefaults(t *testing.T) {
	h := newHarness(t)
	spec := twoNodeSpec()
	spec.Wiring[0].Schema = config.SchemaRef{
		Inline: schema.Def{
			"v":    {Type: schema.TypeInt, Required: true},
			"mode": {Type: schema.TypeString, Default: "auto"},
		},
	}
	spec.Wiring[0].Strict = true
	h.configureEnabled(t, spec)

	h.mock(t, "A").Emit("s", node.Payload{"v": 5, "extra": "smuggled"})

	got := h.mock(t, "B").LastPayload("onS")
	require.NotNil(t, got)
	assert.Equal(t, 5, got["v"])
	assert.Equal(t, "auto", got["mode"], "default fills the absent field")
	assert.NotContains(t, got, "extra", "strict delivery strips undeclared fields")
}

func TestNonStrictSuccessAppliesDefaults(t *testing.T) {
	h := newHarness(t)
	spec := twoNodeSpec()
	spec.Wiring[0].Schema = config.SchemaRef{
		Inline: schema.Def{
			"v":    {Type: schema.TypeInt, Required: true},
			"mode": {Type: schema.TypeString, Default: "auto"},
		},
	}
	h.configureEnabled(t, spec)

	h.mock(t, "A").Emit("s", node.Payload{"v": 5, "extra": true})

	got := h.mock(t, "B").LastPayload("onS")
	require.NotNil(t, got)
	assert.Equal(t, "auto", got["mode"])
	assert.Contains(t, got, "extra", "non-strict delivery keeps undeclared fields")
}

func TestSentinelTargetSilentlySkipped(t *testing.T) {
	h := newHarness(t)
	spec := twoNodeSpec()
	spec.Wiring = append(spec.Wiring,
		config.WireRule{From: "A", Signal: "s", To: config.TargetOut, Handler: "ignored"})
	h.configureEnabled(t, spec)

	h.mock(t, "A").Emit("s", node.Payload{"v": 5})

	assert.Equal(t, 1, h.mock(t, "B").Calls("onS"))
	assert.Empty(t, h.capture.Diags(), "sentinel hand-off raises nothing")
}

func TestMissingHandlerIsRoutingError(t *testing.T) {
	h := newHarness(t)
	spec := twoNodeSpec()
	spec.Wiring[0].Handler = "onMissing"
	h.configureEnabled(t, spec)

	h.mock(t, "A").Emit("s", node.Payload{"v": 5})

	diags := h.capture.DiagsOfType(event.DiagNodeError)
	require.Len(t, diags, 1)
	assert.Equal(t, "onMissing", diags[0].Fields["handler"])
}

func TestHandlerErrorIsIsolated(t *testing.T) {
	h := newHarness(t)
	spec := twoNodeSpec()
	spec.Nodes["B"] = config.NodeSpec{
		Class:  "mock",
		Config: map[string]any{"handlers": []string{"fail", "onS"}},
	}
	spec.Wiring = []config.WireRule{
		{From: "A", Signal: "s", To: "B", Handler: "fail"},
		{From: "A", Signal: "s", To: "B", Handler: "onS"},
	}
	h.configureEnabled(t, spec)

	// The failing handler must not stop later rules for the same signal
	h.mock(t, "A").Emit("s", node.Payload{"v": 5})

	assert.Equal(t, 1, h.mock(t, "B").Calls("onS"))
	diags := h.capture.DiagsOfType(event.DiagNodeError)
	require.Len(t, diags, 1)
	assert.Equal(t, "fail", diags[0].Fields["handler"])
}

func TestHandlerPanicIsIsolated(t *testing.T) {
	h := newHarness(t)
	spec := twoNodeSpec()
	spec.Nodes["B"] = config.NodeSpec{
		Class:  "mock",
		Config: map[string]any{"handlers": []string{"panic", "onS"}},
	}
	spec.Wiring = []config.WireRule{
		{From: "A", Signal: "s", To: "B", Handler: "panic"},
		{From: "A", Signal: "s", To: "B", Handler: "onS"},
	}
	h.configureEnabled(t, spec)

	assert.NotPanics(t, func() {
		h.mock(t, "A").Emit("s", node.Payload{"v": 5})
	})

	assert.Equal(t, 1, h.mock(t, "B").Calls("onS"))
	assert.Len(t, h.capture.DiagsOfType(event.DiagNodeError), 1)
}

func TestRulesExecuteInConfiguredOrder(t *testing.T) {
	h := newHarness(t)
	spec := twoNodeSpec()
	spec.Nodes["B"] = config.NodeSpec{
		Class:  "mock",
		Config: map[string]any{"handlers": []string{"first", "second", "third"}},
	}
	spec.Wiring = []config.WireRule{
		{From: "A", Signal: "s", To: "B", Handler: "first"},
		{From: "A", Signal: "s", To: "B", Handler: "second"},
		{From: "A", Signal: "s", To: "B", Handler: "third"},
	}
	h.configureEnabled(t, spec)

	h.mock(t, "A").Emit("s", nil)

	b := h.mock(t, "B")
	require.Len(t, b.Invocations, 3)
	assert.Equal(t, "first", b.Invocations[0].Handler)
	assert.Equal(t, "second", b.Invocations[1].Handler)
	assert.Equal(t, "third", b.Invocations[2].Handler)
}

func TestRecursiveEmitUnwinds(t *testing.T) {
	h := newHarness(t)
	spec := &config.GraphSpec{
		Nodes: map[string]config.NodeSpec{
			"A": {Class: "mock"},
			"B": {Class: "mock", Config: map[string]any{"handlers": []string{"relay"}}},
			"C": {Class: "mock"},
		},
		Wiring: []config.WireRule{
			{From: "A", Signal: "s", To: "B", Handler: "relay"},
			{From: "B", Signal: "t", To: "C", Handler: "onS"},
		},
	}
	h.configureEnabled(t, spec)

	// Replace B's recording relay with one that re-emits
	b := h.mock(t, "B")
	b.RegisterHandler("relay", func(self node.Node, p node.Payload) error {
		self.Emit("t", p)
		return nil
	})

	h.mock(t, "A").Emit("s", node.Payload{"v": 5})

	c := h.mock(t, "C")
	require.Equal(t, 1, c.Calls("onS"))
	assert.Equal(t, node.Payload{"v": 5}, c.LastPayload("onS"))
}
