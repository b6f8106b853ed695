// Package ast defines the schema node tree produced by the compiler: typed
// nodes with their properties, and the side indices collected while building.
package ast

import (
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a schema node. It is set once when the node is created.
type Kind int

const (
	// KindInterior is a command branch with named children (<node>)
	KindInterior Kind = iota
	// KindLeaf is a terminal setting (<leafNode>)
	KindLeaf
	// KindTagged is a node whose name is a user supplied instance key (<tagNode>)
	KindTagged
)

// String returns the definition element name for the kind
func (k Kind) String() string {
	switch k {
	case KindInterior:
		return "node"
	case KindLeaf:
		return "leafNode"
	case KindTagged:
		return "tagNode"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps a definition element name to its Kind
func ParseKind(element string) (Kind, bool) {
	switch element {
	case "node":
		return KindInterior, true
	case "leafNode":
		return KindLeaf, true
	case "tagNode":
		return KindTagged, true
	}
	return 0, false
}

// MarshalText implements encoding.TextMarshaler
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *Kind) UnmarshalText(text []byte) error {
	kind, ok := ParseKind(string(text))
	if !ok {
		return fmt.Errorf("unknown node kind %q", text)
	}
	*k = kind
	return nil
}

// ValueHelp is one (format, description) hint shown during completion
type ValueHelp struct {
	Format      string `json:"format" yaml:"format"`
	Description string `json:"description" yaml:"description"`
}

// Help holds the summary line and value hints of a node
type Help struct {
	Summary   string      `json:"summary,omitempty" yaml:"summary,omitempty"`
	ValueHelp []ValueHelp `json:"valueHelp,omitempty" yaml:"valueHelp,omitempty"`
}

// Validator references an external validation program
type Validator struct {
	Name     string `json:"name" yaml:"name"`
	Argument string `json:"argument,omitempty" yaml:"argument,omitempty"`
}

// Constraint restricts the values a node accepts
type Constraint struct {
	Regex      []string    `json:"regex,omitempty" yaml:"regex,omitempty"`
	Validators []Validator `json:"validators,omitempty" yaml:"validators,omitempty"`
}

// Completion lists the sources of completion hints for a node
type Completion struct {
	List   []string `json:"list,omitempty" yaml:"list,omitempty"`
	Script []string `json:"script,omitempty" yaml:"script,omitempty"`
	Path   []string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Node is one schema path segment. Children is never nil.
type Node struct {
	Name         string           `json:"-" yaml:"-"`
	Kind         Kind             `json:"kind" yaml:"kind"`
	Owner        string           `json:"owner,omitempty" yaml:"owner,omitempty"`
	Valueless    bool             `json:"valueless" yaml:"valueless"`
	Multi        bool             `json:"multi" yaml:"multi"`
	Hidden       bool             `json:"hidden" yaml:"hidden"`
	Help         *Help            `json:"help,omitempty" yaml:"help,omitempty"`
	Constraint   *Constraint      `json:"constraint,omitempty" yaml:"constraint,omitempty"`
	ErrorMessage string           `json:"constraintErrorMessage,omitempty" yaml:"constraintErrorMessage,omitempty"`
	Completion   *Completion      `json:"completion,omitempty" yaml:"completion,omitempty"`
	Priority     *int             `json:"priority,omitempty" yaml:"priority,omitempty"`
	Children     map[string]*Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// NewNode creates an empty node of the given kind
func NewNode(name string, kind Kind) *Node {
	return &Node{
		Name:     name,
		Kind:     kind,
		Children: make(map[string]*Node),
	}
}

// Clone returns a deep copy of the node and its subtree
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}

	c := *n
	if n.Help != nil {
		h := *n.Help
		h.ValueHelp = append([]ValueHelp(nil), n.Help.ValueHelp...)
		c.Help = &h
	}
	if n.Constraint != nil {
		con := *n.Constraint
		con.Regex = append([]string(nil), n.Constraint.Regex...)
		con.Validators = append([]Validator(nil), n.Constraint.Validators...)
		c.Constraint = &con
	}
	if n.Completion != nil {
		comp := Completion{
			List:   append([]string(nil), n.Completion.List...),
			Script: append([]string(nil), n.Completion.Script...),
			Path:   append([]string(nil), n.Completion.Path...),
		}
		c.Completion = &comp
	}
	if n.Priority != nil {
		p := *n.Priority
		c.Priority = &p
	}

	c.Children = make(map[string]*Node, len(n.Children))
	for name, child := range n.Children {
		c.Children[name] = child.Clone()
	}
	return &c
}

// Lookup returns the descendant at path, or nil
func (n *Node) Lookup(path ...string) *Node {
	current := n
	for _, segment := range path {
		if current == nil {
			return nil
		}
		current = current.Children[segment]
	}
	return current
}

// SortedChildNames returns the names of the direct children in lexical order
func (n *Node) SortedChildNames() []string {
	names := make([]string, 0, len(n.Children))
	for name := range n.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Walk visits every descendant depth first, children in lexical order.
// The path passed to fn includes the visited node's own name.
func (n *Node) Walk(fn func(path []string, node *Node) error) error {
	return n.walk(nil, fn)
}

func (n *Node) walk(prefix []string, fn func(path []string, node *Node) error) error {
	for _, name := range n.SortedChildNames() {
		child := n.Children[name]
		path := make([]string, len(prefix)+1)
		copy(path, prefix)
		path[len(prefix)] = name

		if err := fn(path, child); err != nil {
			return err
		}
		if err := child.walk(path, fn); err != nil {
			return err
		}
	}
	return nil
}

// Paths returns the space-joined path of every descendant, in walk order
func (n *Node) Paths() []string {
	var paths []string
	_ = n.Walk(func(path []string, _ *Node) error {
		paths = append(paths, JoinPath(path))
		return nil
	})
	return paths
}

// JoinPath renders a schema path the way the side indices store it
func JoinPath(path []string) string {
	return strings.Join(path, " ")
}

// SplitPath is the inverse of JoinPath; empty segments are dropped
func SplitPath(path string) []string {
	return strings.Fields(path)
}
