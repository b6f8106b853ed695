// Package merge folds schema node trees into one another.
//
// Two definitions of the same path are combined property by property. A
// property declared on one side only is taken from that side. A property
// declared on both sides with different values is a conflict. Equal values
// are accepted only for the keys in CompatibleKeys, which documents sharing
// a branch are expected to redeclare; any other repeated property is reported
// as a duplicate definition.
package merge

import (
	"fmt"

	"github.com/cfgschema/schemac/compiler/errors"
	"github.com/cfgschema/schemac/internal/compiler/ast"
)

// Property keys
const (
	KeyKind         = "kind"
	KeyOwner        = "owner"
	KeyValueless    = "valueless"
	KeyMulti        = "multi"
	KeyHidden       = "hidden"
	KeyHelpSummary  = "help-summary"
	KeyValueHelp    = "valueHelp"
	KeyRegex        = "regex"
	KeyValidator    = "validator"
	KeyErrorMessage = "constraintErrorMessage"
	KeyList         = "completion-list"
	KeyScript       = "completion-script"
	KeyPath         = "completion-path"
	KeyPriority     = "priority"
)

// CompatibleKeys are the properties that may be declared with equal values
// by more than one definition of the same path.
var CompatibleKeys = map[string]bool{
	KeyKind:        true,
	KeyValueless:   true,
	KeyMulti:       true,
	KeyHidden:      true,
	KeyHelpSummary: true,
	KeyOwner:       true,
	KeyPriority:    true,
}

// property describes how one scalar property of a node is compared and moved
type property struct {
	key string
	// set reports whether the node declares the property
	set func(n *ast.Node) bool
	// render formats the value for comparison and diagnostics
	render func(n *ast.Node) string
	// take copies the property from src into dst
	take func(dst, src *ast.Node)
}

// always reports a property every node carries
func always(*ast.Node) bool { return true }

var properties = []property{
	{
		key:    KeyKind,
		set:    always,
		render: func(n *ast.Node) string { return n.Kind.String() },
		take:   func(dst, src *ast.Node) { dst.Kind = src.Kind },
	},
	{
		key:    KeyOwner,
		set:    func(n *ast.Node) bool { return n.Owner != "" },
		render: func(n *ast.Node) string { return n.Owner },
		take:   func(dst, src *ast.Node) { dst.Owner = src.Owner },
	},
	{
		key:    KeyValueless,
		set:    always,
		render: func(n *ast.Node) string { return fmt.Sprint(n.Valueless) },
		take:   func(dst, src *ast.Node) { dst.Valueless = src.Valueless },
	},
	{
		key:    KeyMulti,
		set:    always,
		render: func(n *ast.Node) string { return fmt.Sprint(n.Multi) },
		take:   func(dst, src *ast.Node) { dst.Multi = src.Multi },
	},
	{
		key:    KeyHidden,
		set:    always,
		render: func(n *ast.Node) string { return fmt.Sprint(n.Hidden) },
		take:   func(dst, src *ast.Node) { dst.Hidden = src.Hidden },
	},
	{
		key:    KeyHelpSummary,
		set:    func(n *ast.Node) bool { return n.Help != nil && n.Help.Summary != "" },
		render: func(n *ast.Node) string { return n.Help.Summary },
		take: func(dst, src *ast.Node) {
			ensureHelp(dst).Summary = src.Help.Summary
		},
	},
	{
		key:    KeyValueHelp,
		set:    func(n *ast.Node) bool { return n.Help != nil && len(n.Help.ValueHelp) > 0 },
		render: func(n *ast.Node) string { return fmt.Sprint(n.Help.ValueHelp) },
		take: func(dst, src *ast.Node) {
			ensureHelp(dst).ValueHelp = append([]ast.ValueHelp(nil), src.Help.ValueHelp...)
		},
	},
	{
		key:    KeyRegex,
		set:    func(n *ast.Node) bool { return n.Constraint != nil && len(n.Constraint.Regex) > 0 },
		render: func(n *ast.Node) string { return fmt.Sprint(n.Constraint.Regex) },
		take: func(dst, src *ast.Node) {
			ensureConstraint(dst).Regex = append([]string(nil), src.Constraint.Regex...)
		},
	},
	{
		key:    KeyValidator,
		set:    func(n *ast.Node) bool { return n.Constraint != nil && len(n.Constraint.Validators) > 0 },
		render: func(n *ast.Node) string { return fmt.Sprint(n.Constraint.Validators) },
		take: func(dst, src *ast.Node) {
			ensureConstraint(dst).Validators = append([]ast.Validator(nil), src.Constraint.Validators...)
		},
	},
	{
		key:    KeyErrorMessage,
		set:    func(n *ast.Node) bool { return n.ErrorMessage != "" },
		render: func(n *ast.Node) string { return n.ErrorMessage },
		take:   func(dst, src *ast.Node) { dst.ErrorMessage = src.ErrorMessage },
	},
	{
		key:    KeyList,
		set:    func(n *ast.Node) bool { return n.Completion != nil && len(n.Completion.List) > 0 },
		render: func(n *ast.Node) string { return fmt.Sprint(n.Completion.List) },
		take: func(dst, src *ast.Node) {
			ensureCompletion(dst).List = append([]string(nil), src.Completion.List...)
		},
	},
	{
		key:    KeyScript,
		set:    func(n *ast.Node) bool { return n.Completion != nil && len(n.Completion.Script) > 0 },
		render: func(n *ast.Node) string { return fmt.Sprint(n.Completion.Script) },
		take: func(dst, src *ast.Node) {
			ensureCompletion(dst).Script = append([]string(nil), src.Completion.Script...)
		},
	},
	{
		key:    KeyPath,
		set:    func(n *ast.Node) bool { return n.Completion != nil && len(n.Completion.Path) > 0 },
		render: func(n *ast.Node) string { return fmt.Sprint(n.Completion.Path) },
		take: func(dst, src *ast.Node) {
			ensureCompletion(dst).Path = append([]string(nil), src.Completion.Path...)
		},
	},
	{
		key:    KeyPriority,
		set:    func(n *ast.Node) bool { return n.Priority != nil },
		render: func(n *ast.Node) string { return fmt.Sprint(*n.Priority) },
		take: func(dst, src *ast.Node) {
			p := *src.Priority
			dst.Priority = &p
		},
	},
}

// Merge folds src into dst. path is the schema path of dst and is only used
// in diagnostics. On error dst may be partially updated and must be discarded.
func Merge(dst, src *ast.Node, path []string) error {
	for _, p := range properties {
		if !p.set(src) {
			continue
		}
		if !p.set(dst) {
			p.take(dst, src)
			continue
		}

		existing, incoming := p.render(dst), p.render(src)
		if existing != incoming {
			return errors.Newf(errors.PhaseMerge, errors.ErrConflictingDefinition, errors.SourceLocation{},
				"conflicting %s: %q vs %q", p.key, existing, incoming).
				WithPath(ast.JoinPath(path)).
				WithValues(existing, incoming)
		}
		if !CompatibleKeys[p.key] {
			return errors.Newf(errors.PhaseMerge, errors.ErrDuplicateDefinition, errors.SourceLocation{},
				"%s declared more than once", p.key).
				WithPath(ast.JoinPath(path)).
				WithValues(existing, incoming)
		}
	}

	if dst.Children == nil {
		dst.Children = make(map[string]*ast.Node, len(src.Children))
	}
	for _, name := range src.SortedChildNames() {
		child := src.Children[name]
		existing, ok := dst.Children[name]
		if !ok {
			dst.Children[name] = child
			continue
		}
		if err := Merge(existing, child, childPath(path, name)); err != nil {
			return err
		}
	}

	return nil
}

func childPath(path []string, name string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = name
	return out
}

func ensureHelp(n *ast.Node) *ast.Help {
	if n.Help == nil {
		n.Help = &ast.Help{}
	}
	return n.Help
}

func ensureConstraint(n *ast.Node) *ast.Constraint {
	if n.Constraint == nil {
		n.Constraint = &ast.Constraint{}
	}
	return n.Constraint
}

func ensureCompletion(n *ast.Node) *ast.Completion {
	if n.Completion == nil {
		n.Completion = &ast.Completion{}
	}
	return n.Completion
}
