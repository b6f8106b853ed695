package ast

import "sort"

// Schema is the compiled artifact: the merged node tree plus the side indices
// collected while building it. A Schema returned by the compiler is never
// mutated again and may be shared by any number of readers.
type Schema struct {
	Root              *Node             `json:"tree" yaml:"tree"`
	Tags              []string          `json:"tags" yaml:"tags"`
	Owners            map[string]string `json:"owners" yaml:"owners"`
	Priorities        map[int][]string  `json:"priorities" yaml:"priorities"`
	ComponentVersions map[string]string `json:"component_versions" yaml:"component_versions"`
	Defaults          *Defaults         `json:"defaults" yaml:"defaults"`
}

// NewSchema creates an empty schema with an interior root
func NewSchema() *Schema {
	return &Schema{
		Root:              NewNode("", KindInterior),
		Tags:              []string{},
		Owners:            make(map[string]string),
		Priorities:        make(map[int][]string),
		ComponentVersions: make(map[string]string),
		Defaults:          NewDefaults(),
	}
}

// Lookup returns the node at path, or nil
func (s *Schema) Lookup(path ...string) *Node {
	return s.Root.Lookup(path...)
}

// Default returns the default value declared at path
func (s *Schema) Default(path ...string) (string, bool) {
	return s.Defaults.Get(path...)
}

// PriorityLevels returns the declared priority values in ascending order
func (s *Schema) PriorityLevels() []int {
	levels := make([]int, 0, len(s.Priorities))
	for p := range s.Priorities {
		levels = append(levels, p)
	}
	sort.Ints(levels)
	return levels
}

// OwnerPaths returns the paths of the owner index in lexical order
func (s *Schema) OwnerPaths() []string {
	paths := make([]string, 0, len(s.Owners))
	for p := range s.Owners {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Components returns the component names of the version index in lexical order
func (s *Schema) Components() []string {
	names := make([]string, 0, len(s.ComponentVersions))
	for c := range s.ComponentVersions {
		names = append(names, c)
	}
	sort.Strings(names)
	return names
}
