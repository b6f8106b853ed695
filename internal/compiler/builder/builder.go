// Package builder converts a parsed definition document into a typed node
// tree and collects the document's side-index contribution.
package builder

import (
	stderrors "errors"
	"strconv"
	"strings"

	"github.com/hashicorp/go-version"

	"github.com/cfgschema/schemac/compiler/errors"
	"github.com/cfgschema/schemac/internal/compiler/ast"
	"github.com/cfgschema/schemac/internal/compiler/merge"
	"github.com/cfgschema/schemac/internal/compiler/parser"
)

// DocumentElement is the required name of a definition document's root
const DocumentElement = "interfaceDefinition"

// kindOrder is the order in which node kinds are built within one element
var kindOrder = []string{"node", "leafNode", "tagNode"}

// Builder builds the node tree of one document
type Builder struct {
	file    string
	contrib *Contribution
}

// New creates a Builder; file labels diagnostics
func New(file string) *Builder {
	return &Builder{file: file}
}

// Build converts the document element into a node tree rooted at an unnamed
// interior node.
func (b *Builder) Build(doc *parser.Element) (*Result, error) {
	if doc.Name != DocumentElement {
		return nil, b.errorf(doc, nil, errors.ErrUnexpectedRoot,
			"document element is <%s>, expected <%s>", doc.Name, DocumentElement)
	}

	b.contrib = NewContribution()
	root := ast.NewNode("", ast.KindInterior)

	if err := b.buildNodes(nil, doc, root.Children); err != nil {
		return nil, err
	}

	return &Result{Root: root, Contribution: b.contrib}, nil
}

// buildNodes builds every node declared directly under el into target.
// Nodes are built kind by kind, then syntaxVersion entries are recorded.
func (b *Builder) buildNodes(inside []string, el *parser.Element, target map[string]*ast.Node) error {
	if len(el.Attrs) > 0 {
		return b.errorf(el, inside, errors.ErrUnknownElement,
			"unexpected attribute %q on <%s>", el.Attrs[0].Name, el.Name)
	}
	if el.Text != "" {
		return b.errorf(el, inside, errors.ErrUnexpectedContent,
			"unexpected text %q in <%s>", el.Text, el.Name)
	}

	for _, child := range el.Children {
		if !contains(nodeListElements, child.Name) {
			return b.unknown(child, inside, errors.ErrUnknownElement, "element", nodeListElements)
		}
	}

	for _, kindName := range kindOrder {
		kind, _ := ast.ParseKind(kindName)

		for _, entry := range el.ChildrenNamed(kindName) {
			name, ok := entry.Attr("name")
			if !ok || name == "" {
				return b.errorf(entry, inside, errors.ErrMissingName,
					"<%s> without a name attribute", kindName)
			}

			into := appendPath(inside, name)
			node, err := b.buildNode(into, entry, kind)
			if err != nil {
				return err
			}

			if existing, ok := target[name]; ok {
				if err := merge.Merge(existing, node, into); err != nil {
					return b.locate(err, entry)
				}
			} else {
				target[name] = node
			}

			b.contrib.Tags = append(b.contrib.Tags, ast.JoinPath(into))
		}
	}

	for _, sv := range el.ChildrenNamed("syntaxVersion") {
		if err := b.syntaxVersion(inside, sv); err != nil {
			return err
		}
	}

	return nil
}

// buildNode builds one node element and its subtree
func (b *Builder) buildNode(inside []string, el *parser.Element, kind ast.Kind) (*ast.Node, error) {
	node := ast.NewNode(inside[len(inside)-1], kind)

	for _, attr := range el.Attrs {
		switch attr.Name {
		case "name":
		case "owner":
			node.Owner = attr.Value
			b.contrib.Owners[ast.JoinPath(inside)] = attr.Value
		default:
			return nil, b.unknownAttr(el, inside, attr.Name, nodeAttributes)
		}
	}
	if el.Text != "" {
		return nil, b.errorf(el, inside, errors.ErrUnexpectedContent,
			"unexpected text %q in <%s>", el.Text, el.Name)
	}

	for _, child := range el.Children {
		if !contains(nodeElements, child.Name) {
			return nil, b.unknown(child, inside, errors.ErrUnknownElement, "element", nodeElements)
		}
	}

	for _, children := range el.ChildrenNamed("children") {
		if err := b.buildNodes(inside, children, node.Children); err != nil {
			return nil, err
		}
	}

	for _, props := range el.ChildrenNamed("properties") {
		if err := b.properties(inside, props, node); err != nil {
			return nil, err
		}
	}

	for _, def := range el.ChildrenNamed("defaultValue") {
		if len(def.Children) > 0 {
			return nil, b.errorf(def, inside, errors.ErrUnexpectedContent,
				"<defaultValue> must contain text only")
		}
		if err := b.contrib.Defaults.Set(inside, def.Text); err != nil {
			var conflict *ast.DefaultConflictError
			if stderrors.As(err, &conflict) {
				return nil, b.errorf(def, inside, errors.ErrConflictingDefault, "%v", err).
					WithValues(conflict.Existing, conflict.Incoming)
			}
			return nil, b.errorf(def, inside, errors.ErrConflictingDefault, "%v", err)
		}
	}

	return node, nil
}

// properties applies one <properties> element to node
func (b *Builder) properties(inside []string, el *parser.Element, node *ast.Node) error {
	if len(el.Attrs) > 0 {
		return b.unknownAttr(el, inside, el.Attrs[0].Name, nil)
	}
	if el.Text != "" {
		return b.errorf(el, inside, errors.ErrUnexpectedContent, "unexpected text %q in <properties>", el.Text)
	}

	for _, prop := range el.Children {
		kind, ok := propertyKinds[prop.Name]
		if !ok {
			return b.unknown(prop, inside, errors.ErrUnknownElement, "property", propertyNames())
		}

		var err error
		switch kind {
		case propHelp:
			err = b.help(inside, prop, node)
		case propValueHelp:
			err = b.valueHelp(inside, prop, node)
		case propConstraint:
			err = b.constraint(inside, prop, node)
		case propConstraintGroup:
			// Accepted and ignored
		case propConstraintErrorMessage:
			if node.ErrorMessage != "" {
				err = b.duplicate(prop, inside)
				break
			}
			node.ErrorMessage = prop.Text
		case propValueless:
			err = b.flag(inside, prop, &node.Valueless)
		case propMulti:
			err = b.flag(inside, prop, &node.Multi)
		case propHidden:
			err = b.flag(inside, prop, &node.Hidden)
		case propCompletionHelp:
			err = b.completion(inside, prop, node)
		case propPriority:
			err = b.priority(inside, prop, node)
		default:
			panic("builder: unhandled property kind " + prop.Name)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

func (b *Builder) help(inside []string, el *parser.Element, node *ast.Node) error {
	if len(el.Children) > 0 {
		return b.errorf(el, inside, errors.ErrUnexpectedContent, "<help> must contain text only")
	}
	if node.Help == nil {
		node.Help = &ast.Help{}
	}
	if node.Help.Summary != "" {
		return b.duplicate(el, inside)
	}
	node.Help.Summary = el.Text
	return nil
}

func (b *Builder) valueHelp(inside []string, el *parser.Element, node *ast.Node) error {
	var vh ast.ValueHelp
	var seenFormat, seenDescription bool

	for _, child := range el.Children {
		switch child.Name {
		case "format":
			vh.Format, seenFormat = child.Text, true
		case "description":
			vh.Description, seenDescription = child.Text, true
		default:
			return b.unknown(child, inside, errors.ErrUnknownElement, "valueHelp element", valueHelpElements)
		}
	}
	if !seenFormat || !seenDescription {
		return b.errorf(el, inside, errors.ErrUnexpectedContent,
			"<valueHelp> needs both <format> and <description>")
	}

	if node.Help == nil {
		node.Help = &ast.Help{}
	}
	node.Help.ValueHelp = append(node.Help.ValueHelp, vh)
	return nil
}

func (b *Builder) constraint(inside []string, el *parser.Element, node *ast.Node) error {
	if node.Constraint == nil {
		node.Constraint = &ast.Constraint{}
	}

	for _, child := range el.Children {
		switch child.Name {
		case "regex":
			node.Constraint.Regex = append(node.Constraint.Regex, child.Text)
		case "validator":
			v, err := b.validator(inside, child)
			if err != nil {
				return err
			}
			node.Constraint.Validators = append(node.Constraint.Validators, v)
		default:
			return b.unknown(child, inside, errors.ErrUnknownConstraint, "constraint", constraintElements)
		}
	}
	return nil
}

// validator accepts exactly a name attribute and an optional argument
func (b *Builder) validator(inside []string, el *parser.Element) (ast.Validator, error) {
	var v ast.Validator
	var hasName bool

	for _, attr := range el.Attrs {
		switch attr.Name {
		case "name":
			v.Name, hasName = attr.Value, true
		case "argument":
			v.Argument = attr.Value
		default:
			err := b.errorf(el, inside, errors.ErrMalformedValidator,
				"validator has unexpected attribute %q", attr.Name)
			if s := errors.SuggestName(attr.Name, validatorAttrs); s != nil {
				err = err.WithSuggestion(*s)
			}
			return v, err
		}
	}

	if !hasName || v.Name == "" {
		return v, b.errorf(el, inside, errors.ErrMalformedValidator, "validator without a name attribute")
	}
	if len(el.Children) > 0 || el.Text != "" {
		return v, b.errorf(el, inside, errors.ErrMalformedValidator, "validator %q must be empty", v.Name)
	}
	return v, nil
}

func (b *Builder) flag(inside []string, el *parser.Element, target *bool) error {
	if !el.IsEmpty() {
		return b.errorf(el, inside, errors.ErrUnexpectedContent, "<%s> must be empty", el.Name)
	}
	*target = true
	return nil
}

func (b *Builder) completion(inside []string, el *parser.Element, node *ast.Node) error {
	if node.Completion == nil {
		node.Completion = &ast.Completion{}
	}

	for _, child := range el.Children {
		switch child.Name {
		case "list":
			node.Completion.List = append(node.Completion.List, strings.Fields(child.Text)...)
		case "script":
			node.Completion.Script = append(node.Completion.Script, child.Text)
		case "path":
			node.Completion.Path = append(node.Completion.Path, child.Text)
		default:
			return b.unknown(child, inside, errors.ErrUnknownCompletion, "completion source", completionElements)
		}
	}
	return nil
}

func (b *Builder) priority(inside []string, el *parser.Element, node *ast.Node) error {
	p, err := strconv.Atoi(el.Text)
	if err != nil {
		return b.errorf(el, inside, errors.ErrInvalidPriority, "priority %q is not an integer", el.Text).
			WithCause(err)
	}
	if node.Priority != nil {
		return b.duplicate(el, inside)
	}

	node.Priority = &p
	path := ast.JoinPath(inside)
	b.contrib.Priorities[p] = append(b.contrib.Priorities[p], path)
	return nil
}

func (b *Builder) syntaxVersion(inside []string, el *parser.Element) error {
	var component, ver string
	for _, attr := range el.Attrs {
		switch attr.Name {
		case "component":
			component = attr.Value
		case "version":
			ver = attr.Value
		default:
			return b.unknownAttr(el, inside, attr.Name, versionAttrs)
		}
	}

	if component == "" {
		return b.errorf(el, inside, errors.ErrInvalidVersion, "syntaxVersion without a component attribute")
	}
	if _, err := version.NewVersion(ver); err != nil {
		return b.errorf(el, inside, errors.ErrInvalidVersion,
			"syntaxVersion of %q has invalid version %q", component, ver).
			WithCause(err)
	}

	if existing, ok := b.contrib.ComponentVersions[component]; ok && existing != ver {
		return b.errorf(el, inside, errors.ErrConflictingDefinition,
			"component %q declared with versions %s and %s", component, existing, ver).
			WithValues(existing, ver)
	}
	b.contrib.ComponentVersions[component] = ver
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func appendPath(path []string, name string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = name
	return out
}
