package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purefictiongames/wiregraph/config"
	"github.com/purefictiongames/wiregraph/errors"
	"github.com/purefictiongames/wiregraph/event"
	"github.com/purefictiongames/wiregraph/node"
)

func modalSpec() *config.GraphSpec {
	return &config.GraphSpec{
		Nodes: map[string]config.NodeSpec{
			"A": {Class: "mock"},
			"B": {Class: "mock", Config: map[string]any{"handlers": []string{"base", "extra"}}},
		},
		Wiring: []config.WireRule{
			{From: "A", Signal: "s", To: "B", Handler: "base"},
		},
		Modes: map[string]config.ModeSpec{
			"verbose": {Wiring: []config.WireRule{
				{From: "A", Signal: "s", To: "B", Handler: "extra"},
			}},
		},
	}
}

func TestSetModeAddsRulesAfterDefaults(t *testing.T) {
	h := newHarness(t)
	h.configureEnabled(t, modalSpec())

	require.NoError(t, h.orch.SetMode("verbose"))
	assert.Equal(t, "verbose", h.orch.Mode())

	h.mock(t, "A").Emit("s", node.Payload{"v": 1})

	b := h.mock(t, "B")
	require.Len(t, b.Invocations, 2, "mode rules are additive")
	assert.Equal(t, "base", b.Invocations[0].Handler, "default rules run first")
	assert.Equal(t, "extra", b.Invocations[1].Handler)
}

func TestSetModeEmptyRestoresDefaultsOnly(t *testing.T) {
	h := newHarness(t)
	h.configureEnabled(t, modalSpec())
	require.NoError(t, h.orch.SetMode("verbose"))

	require.NoError(t, h.orch.SetMode(""))
	assert.Equal(t, "", h.orch.Mode())

	h.mock(t, "A").Emit("s", nil)
	b := h.mock(t, "B")
	assert.Equal(t, 1, b.Calls("base"))
	assert.Zero(t, b.Calls("extra"))
}

func TestSetModeSameValueIsNoOp(t *testing.T) {
	h := newHarness(t)
	h.configureEnabled(t, modalSpec())
	require.NoError(t, h.orch.SetMode("verbose"))

	before := len(h.capture.OutOfType(event.TypeModeChanged))
	require.NoError(t, h.orch.SetMode("verbose"))

	assert.Len(t, h.capture.OutOfType(event.TypeModeChanged), before,
		"setting the active mode again emits nothing")
	assert.True(t, h.orch.Enabled())
}

func TestSetModeUnknownMode(t *testing.T) {
	h := newHarness(t)
	h.configureEnabled(t, modalSpec())

	err := h.orch.SetMode("ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
	assert.True(t, errors.IsConfig(err))
	assert.Equal(t, "", h.orch.Mode(), "failed switch leaves the mode unchanged")
}

func TestSetModeEmitsModeChanged(t *testing.T) {
	h := newHarness(t)
	h.configureEnabled(t, modalSpec())

	require.NoError(t, h.orch.SetMode("verbose"))

	changed := h.capture.OutOfType(event.TypeModeChanged)
	require.Len(t, changed, 1)
	assert.Equal(t, "", changed[0].Fields["from"])
	assert.Equal(t, "verbose", changed[0].Fields["to"])
}

func TestSetModePreservesRoutingEnablement(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.orch.Configure(modalSpec()))

	// Switching while disabled must not silently enable routing
	require.NoError(t, h.orch.SetMode("verbose"))
	assert.False(t, h.orch.Enabled())

	h.mock(t, "A").Emit("s", nil)
	assert.Empty(t, h.mock(t, "B").Invocations)

	require.NoError(t, h.orch.Enable())
	h.mock(t, "A").Emit("s", nil)
	assert.Len(t, h.mock(t, "B").Invocations, 2)
}
