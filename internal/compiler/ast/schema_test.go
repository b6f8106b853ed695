package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSchema(t *testing.T) {
	s := NewSchema()

	require.NotNil(t, s.Root)
	assert.Equal(t, KindInterior, s.Root.Kind)
	assert.Empty(t, s.Tags)
	assert.NotNil(t, s.Owners)
	assert.NotNil(t, s.Priorities)
	assert.NotNil(t, s.ComponentVersions)
	assert.Equal(t, 0, s.Defaults.Len())
}

func TestSchema_Indices(t *testing.T) {
	s := NewSchema()
	s.Root = sampleTree()
	s.Priorities[400] = []string{"b"}
	s.Priorities[20] = []string{"a"}
	s.Owners["system"] = "system.py"
	s.Owners["interfaces ethernet"] = "ethernet.py"
	s.ComponentVersions["system"] = "21"
	s.ComponentVersions["interfaces"] = "26"
	require.NoError(t, s.Defaults.Set([]string{"interfaces", "ethernet", "mtu"}, "1500"))

	assert.Equal(t, []int{20, 400}, s.PriorityLevels())
	assert.Equal(t, []string{"interfaces ethernet", "system"}, s.OwnerPaths())
	assert.Equal(t, []string{"interfaces", "system"}, s.Components())
	assert.NotNil(t, s.Lookup("interfaces", "ethernet", "speed"))

	v, ok := s.Default("interfaces", "ethernet", "mtu")
	assert.True(t, ok)
	assert.Equal(t, "1500", v)
}
