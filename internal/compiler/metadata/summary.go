// Package metadata renders compiled schemas for consumers outside the
// compiler: canonical JSON or YAML dumps, compressed artifacts and a content
// fingerprint for change detection.
package metadata

import (
	"github.com/cfgschema/schemac/internal/compiler/ast"
)

// Summary counts what a compiled schema contains
type Summary struct {
	Nodes          int    `json:"nodes" yaml:"nodes"`
	Tags           int    `json:"tags" yaml:"tags"`
	Owners         int    `json:"owners" yaml:"owners"`
	PriorityLevels int    `json:"priority_levels" yaml:"priority_levels"`
	Components     int    `json:"components" yaml:"components"`
	Defaults       int    `json:"defaults" yaml:"defaults"`
	Fingerprint    string `json:"fingerprint" yaml:"fingerprint"`
}

// Summarize returns the summary of schema
func Summarize(schema *ast.Schema) (Summary, error) {
	fingerprint, err := Fingerprint(schema)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		Nodes:          len(schema.Root.Paths()),
		Tags:           len(schema.Tags),
		Owners:         len(schema.Owners),
		PriorityLevels: len(schema.Priorities),
		Components:     len(schema.ComponentVersions),
		Defaults:       schema.Defaults.Len(),
		Fingerprint:    fingerprint,
	}, nil
}
