package ast

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() *Node {
	root := NewNode("", KindInterior)

	interfaces := NewNode("interfaces", KindInterior)
	ethernet := NewNode("ethernet", KindTagged)
	speed := NewNode("speed", KindLeaf)
	speed.Constraint = &Constraint{Regex: []string{"auto", "10|100"}}
	mtu := NewNode("mtu", KindLeaf)
	priority := 318
	ethernet.Priority = &priority
	ethernet.Children["speed"] = speed
	ethernet.Children["mtu"] = mtu
	interfaces.Children["ethernet"] = ethernet
	root.Children["interfaces"] = interfaces

	root.Children["system"] = NewNode("system", KindInterior)
	return root
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "node", KindInterior.String())
	assert.Equal(t, "leafNode", KindLeaf.String())
	assert.Equal(t, "tagNode", KindTagged.String())
	assert.Equal(t, "Kind(7)", Kind(7).String())
}

func TestParseKind(t *testing.T) {
	for _, name := range []string{"node", "leafNode", "tagNode"} {
		kind, ok := ParseKind(name)
		require.True(t, ok, name)
		assert.Equal(t, name, kind.String())
	}

	_, ok := ParseKind("syntaxVersion")
	assert.False(t, ok)
}

func TestKind_TextRoundTrip(t *testing.T) {
	data, err := json.Marshal(map[string]Kind{"k": KindTagged})
	require.NoError(t, err)
	assert.JSONEq(t, `{"k":"tagNode"}`, string(data))

	var back map[string]Kind
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, KindTagged, back["k"])

	var bad Kind
	assert.Error(t, bad.UnmarshalText([]byte("branch")))
}

func TestNode_Lookup(t *testing.T) {
	root := sampleTree()

	speed := root.Lookup("interfaces", "ethernet", "speed")
	require.NotNil(t, speed)
	assert.Equal(t, KindLeaf, speed.Kind)

	assert.Same(t, root, root.Lookup())
	assert.Nil(t, root.Lookup("interfaces", "bonding"))
	assert.Nil(t, root.Lookup("interfaces", "ethernet", "speed", "deeper"))
}

func TestNode_CloneIsDeep(t *testing.T) {
	root := sampleTree()
	clone := root.Clone()

	require.Equal(t, root, clone)

	speed := clone.Lookup("interfaces", "ethernet", "speed")
	speed.Constraint.Regex[0] = "changed"
	*clone.Lookup("interfaces", "ethernet").Priority = 1
	clone.Children["service"] = NewNode("service", KindInterior)

	assert.Equal(t, "auto", root.Lookup("interfaces", "ethernet", "speed").Constraint.Regex[0])
	assert.Equal(t, 318, *root.Lookup("interfaces", "ethernet").Priority)
	assert.NotContains(t, root.Children, "service")
	assert.Nil(t, (*Node)(nil).Clone())
}

func TestNode_WalkOrder(t *testing.T) {
	root := sampleTree()

	assert.Equal(t, []string{
		"interfaces",
		"interfaces ethernet",
		"interfaces ethernet mtu",
		"interfaces ethernet speed",
		"system",
	}, root.Paths())
}

func TestNode_WalkStops(t *testing.T) {
	root := sampleTree()
	stop := errors.New("stop")

	var visited int
	err := root.Walk(func(path []string, _ *Node) error {
		visited++
		if JoinPath(path) == "interfaces ethernet" {
			return stop
		}
		return nil
	})

	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, visited)
}

func TestNode_JSONShape(t *testing.T) {
	leaf := NewNode("speed", KindLeaf)
	leaf.Help = &Help{Summary: "Link speed", ValueHelp: []ValueHelp{{Format: "auto", Description: "Auto negotiation"}}}

	data, err := json.Marshal(leaf)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"kind": "leafNode",
		"valueless": false,
		"multi": false,
		"hidden": false,
		"help": {"summary": "Link speed", "valueHelp": [{"format": "auto", "description": "Auto negotiation"}]}
	}`, string(data))
}

func TestSplitJoinPath(t *testing.T) {
	assert.Equal(t, []string{"interfaces", "ethernet"}, SplitPath("  interfaces   ethernet "))
	assert.Equal(t, "interfaces ethernet", JoinPath([]string{"interfaces", "ethernet"}))
	assert.Empty(t, SplitPath(""))
}
