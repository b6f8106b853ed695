package ast

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Defaults mirrors the schema shape down to every node that declares a
// default value. A node declared with an empty <defaultValue/> holds "".
type Defaults struct {
	value    *string
	children map[string]*Defaults
}

// DefaultConflictError reports two different default values, or a value and
// a subtree, claimed for the same path.
type DefaultConflictError struct {
	Path     []string
	Existing string
	Incoming string
}

func (e *DefaultConflictError) Error() string {
	return fmt.Sprintf("conflicting default at %q: %q vs %q", JoinPath(e.Path), e.Existing, e.Incoming)
}

// NewDefaults creates an empty defaults tree
func NewDefaults() *Defaults {
	return &Defaults{children: make(map[string]*Defaults)}
}

// Set records value at path, creating intermediate segments on demand.
// Setting the same value twice is allowed.
func (d *Defaults) Set(path []string, value string) error {
	if len(path) == 0 {
		return fmt.Errorf("default value needs a non-empty path")
	}

	current := d
	for i, segment := range path {
		if current.value != nil {
			return &DefaultConflictError{Path: path[:i], Existing: *current.value, Incoming: "subtree"}
		}
		next, ok := current.children[segment]
		if !ok {
			next = NewDefaults()
			current.children[segment] = next
		}
		current = next
	}

	if current.value != nil {
		if *current.value != value {
			return &DefaultConflictError{Path: path, Existing: *current.value, Incoming: value}
		}
		return nil
	}
	if len(current.children) > 0 {
		return &DefaultConflictError{Path: path, Existing: "subtree", Incoming: value}
	}

	v := value
	current.value = &v
	return nil
}

// Get returns the default declared at path
func (d *Defaults) Get(path ...string) (string, bool) {
	current := d
	for _, segment := range path {
		next, ok := current.children[segment]
		if !ok {
			return "", false
		}
		current = next
	}
	if current.value == nil {
		return "", false
	}
	return *current.value, true
}

// Merge copies every default of other into d
func (d *Defaults) Merge(other *Defaults) error {
	if other == nil {
		return nil
	}
	for _, path := range other.Paths() {
		value, _ := other.Get(SplitPath(path)...)
		if err := d.Set(SplitPath(path), value); err != nil {
			return err
		}
	}
	return nil
}

// Paths returns every path holding a value, sorted
func (d *Defaults) Paths() []string {
	var paths []string
	d.collect(nil, &paths)
	sort.Strings(paths)
	return paths
}

func (d *Defaults) collect(prefix []string, out *[]string) {
	if d.value != nil {
		*out = append(*out, JoinPath(prefix))
		return
	}
	for name, child := range d.children {
		child.collect(append(append([]string(nil), prefix...), name), out)
	}
}

// Len returns the number of declared defaults
func (d *Defaults) Len() int {
	return len(d.Paths())
}

// Clone returns a deep copy
func (d *Defaults) Clone() *Defaults {
	c := NewDefaults()
	if d.value != nil {
		v := *d.value
		c.value = &v
	}
	for name, child := range d.children {
		c.children[name] = child.Clone()
	}
	return c
}

// Plain converts the tree into nested maps with string leaves
func (d *Defaults) Plain() interface{} {
	if d.value != nil {
		return *d.value
	}
	m := make(map[string]interface{}, len(d.children))
	for name, child := range d.children {
		m[name] = child.Plain()
	}
	return m
}

// MarshalJSON implements json.Marshaler
func (d *Defaults) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Plain())
}

// MarshalYAML implements yaml.Marshaler
func (d *Defaults) MarshalYAML() (interface{}, error) {
	return d.Plain(), nil
}
