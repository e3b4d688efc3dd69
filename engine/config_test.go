package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purefictiongames/wiregraph/errors"
)

const jsonConfig = `{
  "graph": {
    "schemas": {
      "msg": {"v": {"type": "int", "required": true}}
    },
    "nodes": {
      "in":  {"class": "relay"},
      "cnt": {"class": "counter", "config": {"step": 2}}
    },
    "wiring": [
      {"from": "in", "signal": "relayed", "to": "cnt", "handler": "onInc", "schema": "msg", "strict": true}
    ],
    "modes": {
      "quiet": {"wiring": []}
    }
  },
  "mode": "quiet",
  "pools": {
    "workers": {"class": "counter", "policy": "elastic", "min": 1, "max": 4, "idleTtl": "5m"}
  }
}`

const yamlConfig = `
graph:
  nodes:
    in:
      class: relay
    cnt:
      class: counter
  wiring:
    - from: in
      signal: relayed
      to: cnt
      handler: onInc
      schema:
        v:
          type: int
          required: true
pools:
  workers:
    class: counter
    policy: fixed
    size: 3
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFileJSON(t *testing.T) {
	cfg, err := LoadFile(writeTemp(t, "engine.json", jsonConfig))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "quiet", cfg.Mode)
	assert.Len(t, cfg.Graph.Nodes, 2)
	require.Contains(t, cfg.Pools, "workers")
	assert.Equal(t, "5m", cfg.Pools["workers"].IdleTTL)

	pc, err := cfg.Pools["workers"].ToPoolConfig()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, pc.IdleTTL)

	rule := cfg.Graph.Wiring[0]
	assert.Equal(t, "msg", rule.Schema.Name)
	assert.True(t, rule.Strict)
}

func TestLoadFileYAML(t *testing.T) {
	cfg, err := LoadFile(writeTemp(t, "engine.yaml", yamlConfig))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	rule := cfg.Graph.Wiring[0]
	assert.Empty(t, rule.Schema.Name)
	require.NotNil(t, rule.Schema.Inline)
	assert.True(t, rule.Schema.Inline["v"].Required)
}

func TestParseSniffsFormat(t *testing.T) {
	fromJSON, err := Parse([]byte(jsonConfig))
	require.NoError(t, err)
	assert.Equal(t, "quiet", fromJSON.Mode)

	fromYAML, err := Parse([]byte(yamlConfig))
	require.NoError(t, err)
	assert.Len(t, fromYAML.Graph.Wiring, 1)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.True(t, errors.IsConfig(err))
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte(`{"graph": {"nodes": {}}, "bogus": 1}`))
	require.Error(t, err)
}

func TestValidateUnknownMode(t *testing.T) {
	cfg, err := Parse([]byte(jsonConfig))
	require.NoError(t, err)
	cfg.Mode = "ghost"

	err = cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}

func TestValidateBadPoolTTL(t *testing.T) {
	cfg, err := Parse([]byte(jsonConfig))
	require.NoError(t, err)
	ps := cfg.Pools["workers"]
	ps.IdleTTL = "sometime"
	cfg.Pools["workers"] = ps

	err = cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}

func TestValidateMissingGraph(t *testing.T) {
	err := (&Config{}).Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMissingConfig)
}
