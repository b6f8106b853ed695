package merge

import (
	"fmt"

	"github.com/cfgschema/schemac/compiler/errors"
	"github.com/cfgschema/schemac/internal/compiler/ast"
)

// RootPolicy decides how documents sharing a top-level node are combined
type RootPolicy string

const (
	// RootPolicyRecursive merges shared top-level nodes; any conflict below
	// them is reported as a root collision.
	RootPolicyRecursive RootPolicy = "recursive"
	// RootPolicyPartition rejects any top-level node defined by two documents
	RootPolicyPartition RootPolicy = "partition"
)

// ParseRootPolicy validates a configured policy name. Empty means recursive.
func ParseRootPolicy(s string) (RootPolicy, error) {
	switch RootPolicy(s) {
	case "", RootPolicyRecursive:
		return RootPolicyRecursive, nil
	case RootPolicyPartition:
		return RootPolicyPartition, nil
	}
	return "", fmt.Errorf("unknown root policy %q (want %q or %q)", s, RootPolicyRecursive, RootPolicyPartition)
}

// MergeRoot folds the top-level nodes of one document into master
func MergeRoot(master, doc *ast.Node, policy RootPolicy) error {
	names := doc.SortedChildNames()

	if policy == RootPolicyPartition {
		for _, name := range names {
			if _, ok := master.Children[name]; ok {
				return errors.Newf(errors.PhaseMerge, errors.ErrRootCollision, errors.SourceLocation{},
					"top-level node %q is defined by more than one document", name).
					WithPath(name)
			}
		}
	}

	for _, name := range names {
		child := doc.Children[name]
		existing, ok := master.Children[name]
		if !ok {
			master.Children[name] = child
			continue
		}

		if err := Merge(existing, child, []string{name}); err != nil {
			return rootCollision(name, err)
		}
	}

	return nil
}

// rootCollision wraps a conflict found below a shared top-level node
func rootCollision(name string, err error) error {
	inner, ok := errors.As(err)
	if !ok {
		return err
	}

	return errors.Newf(errors.PhaseMerge, errors.ErrRootCollision, inner.Location,
		"top-level node %q collides with an earlier document: %s", name, inner.Message).
		WithPath(inner.Path).
		WithValues(inner.Values...).
		WithCause(inner)
}
