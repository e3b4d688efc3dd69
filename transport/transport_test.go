package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubjects(t *testing.T) {
	assert.Equal(t, "wiregraph.node.turret-1.fired", SignalSubject("turret-1", "fired"))
	assert.Equal(t, "wiregraph.event.nodeSpawned", EventSubject("nodeSpawned"))
	assert.Equal(t, "wiregraph.diag.nodeError", DiagSubject("nodeError"))
}

func TestNullTransport(t *testing.T) {
	n := NewNull()
	assert.NoError(t, n.Publish("any.subject", map[string]any{"v": 1}))
	assert.NoError(t, n.Close())
}

func TestNewNATSRequiresConnection(t *testing.T) {
	_, err := NewNATS(nil)
	assert.Error(t, err)
}
