package builder

import (
	"github.com/cfgschema/schemac/internal/compiler/ast"
)

// Contribution holds the side-index entries one document adds to the schema.
// Slices keep document order.
type Contribution struct {
	Tags              []string
	Owners            map[string]string
	Priorities        map[int][]string
	ComponentVersions map[string]string
	Defaults          *ast.Defaults
}

// NewContribution creates an empty contribution
func NewContribution() *Contribution {
	return &Contribution{
		Tags:              []string{},
		Owners:            make(map[string]string),
		Priorities:        make(map[int][]string),
		ComponentVersions: make(map[string]string),
		Defaults:          ast.NewDefaults(),
	}
}

// Clone returns a deep copy
func (c *Contribution) Clone() *Contribution {
	out := &Contribution{
		Tags:              append([]string{}, c.Tags...),
		Owners:            make(map[string]string, len(c.Owners)),
		Priorities:        make(map[int][]string, len(c.Priorities)),
		ComponentVersions: make(map[string]string, len(c.ComponentVersions)),
		Defaults:          c.Defaults.Clone(),
	}
	for k, v := range c.Owners {
		out.Owners[k] = v
	}
	for k, v := range c.Priorities {
		out.Priorities[k] = append([]string(nil), v...)
	}
	for k, v := range c.ComponentVersions {
		out.ComponentVersions[k] = v
	}
	return out
}

// Result is the output of building one document
type Result struct {
	Root         *ast.Node
	Contribution *Contribution
}

// Clone returns a deep copy, so cached results can be merged more than once
func (r *Result) Clone() *Result {
	return &Result{
		Root:         r.Root.Clone(),
		Contribution: r.Contribution.Clone(),
	}
}
