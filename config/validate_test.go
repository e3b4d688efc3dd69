package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purefictiongames/wiregraph/errors"
	"github.com/purefictiongames/wiregraph/schema"
)

func validSpec() *GraphSpec {
	return &GraphSpec{
		Schemas: map[string]schema.Def{
			"hit": {"v": {Type: schema.TypeNumber, Required: true}},
		},
		Nodes: map[string]NodeSpec{
			"a": {Class: "x"},
			"b": {Class: "y"},
		},
		Wiring: []WireRule{
			{From: "a", Signal: "s", To: "b", Handler: "onS", Schema: SchemaRef{Name: "hit"}},
		},
		Modes: map[string]ModeSpec{
			"alt": {Wiring: []WireRule{
				{From: "b", Signal: "t", To: "a", Handler: "onT"},
			}},
		},
	}
}

func TestWireRuleValidate(t *testing.T) {
	tests := []struct {
		name    string
		rule    WireRule
		wantErr bool
	}{
		{"complete rule", WireRule{From: "a", Signal: "s", To: "b", Handler: "h"}, false},
		{"missing from", WireRule{Signal: "s", To: "b", Handler: "h"}, true},
		{"missing signal", WireRule{From: "a", To: "b", Handler: "h"}, true},
		{"missing to", WireRule{From: "a", Signal: "s", Handler: "h"}, true},
		{"missing handler", WireRule{From: "a", Signal: "s", To: "b"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errors.ErrInvalidWiring)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWireRuleValidateInlineSchema(t *testing.T) {
	rule := WireRule{
		From: "a", Signal: "s", To: "b", Handler: "h",
		Schema: SchemaRef{Inline: schema.Def{"v": {Type: "bogus"}}},
	}
	err := rule.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidFieldType)
}

func TestGraphSpecValidate(t *testing.T) {
	assert.NoError(t, validSpec().Validate())
}

func TestGraphSpecValidateBadSchema(t *testing.T) {
	spec := validSpec()
	spec.Schemas["bad"] = schema.Def{"v": {Type: "bogus"}}
	err := spec.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsConfig(err))
}

func TestGraphSpecValidateClasslessNode(t *testing.T) {
	spec := validSpec()
	spec.Nodes["ghost"] = NodeSpec{}
	assert.Error(t, spec.Validate())
}

func TestGraphSpecValidateUnknownSchemaRef(t *testing.T) {
	spec := validSpec()
	spec.Wiring = append(spec.Wiring,
		WireRule{From: "a", Signal: "s2", To: "b", Handler: "h", Schema: SchemaRef{Name: "ghost"}})
	err := spec.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnknownSchema)
}

func TestGraphSpecValidateModeWiring(t *testing.T) {
	spec := validSpec()
	spec.Modes["broken"] = ModeSpec{Wiring: []WireRule{{From: "a"}}}
	err := spec.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidWiring)
}

func TestGraphSpecForwardReferencesAllowed(t *testing.T) {
	spec := validSpec()
	// Target never declared in nodes: structurally valid, becomes a
	// routing error only at dispatch time
	spec.Wiring = append(spec.Wiring,
		WireRule{From: "a", Signal: "s3", To: "not-yet-spawned", Handler: "h"})
	assert.NoError(t, spec.Validate())
}

func TestGraphSpecClasses(t *testing.T) {
	spec := validSpec()
	spec.Nodes["c"] = NodeSpec{Class: "x"}

	classes := spec.Classes()
	assert.ElementsMatch(t, []string{"x", "y"}, classes)
}
