package featureflags

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0")

	for _, name := range []string{"a", "c", "e"} {
		assert.True(t, m.Enabled(name, "u1"), name)
	}
	for _, name := range []string{"b", "d", "f", "missing"} {
		assert.False(t, m.Enabled(name, "u1"), name)
	}
}

func TestEnabled_PercentageValues(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%,junk=abc%")

	assert.True(t, m.Enabled("always", "u1"))
	assert.False(t, m.Enabled("never", "u1"))
	assert.False(t, m.Enabled("junk", "u1"))
	assert.False(t, m.Enabled("canary", ""), "rollout needs a user")

	first := m.Enabled("canary", "u42")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, m.Enabled("canary", "u42"), "rollout must be deterministic per user")
	}

	on := 0
	for i := 0; i < 200; i++ {
		if m.Enabled("canary", fmt.Sprintf("u%d", i)) {
			on++
		}
	}
	assert.Greater(t, on, 0)
	assert.Less(t, on, 200)
}

func TestParseAndSnapshot(t *testing.T) {
	m := NewManager(" bad ,x=on, Y = 100% ,z=off,=on,w= ")

	assert.Equal(t, map[string]bool{"x": true, "y": true, "z": false}, m.Snapshot("u1"))
}

func TestNilManager(t *testing.T) {
	var m *Manager
	assert.False(t, m.Enabled(SanitizeDisplay, "u1"))
}
