package builder

import (
	"github.com/cfgschema/schemac/compiler/errors"
	"github.com/cfgschema/schemac/internal/compiler/ast"
	"github.com/cfgschema/schemac/internal/compiler/parser"
)

func (b *Builder) errorf(el *parser.Element, inside []string, code, format string, args ...interface{}) errors.CompilerError {
	return errors.Newf(errors.PhaseBuild, code, errors.SourceLocation{File: b.file, Line: el.Line}, format, args...).
		WithPath(ast.JoinPath(inside))
}

// unknown reports an unrecognized element with a "did you mean" hint
func (b *Builder) unknown(el *parser.Element, inside []string, code, what string, candidates []string) errors.CompilerError {
	err := b.errorf(el, inside, code, "unknown %s <%s>", what, el.Name)
	if s := errors.SuggestName(el.Name, candidates); s != nil {
		err = err.WithSuggestion(*s)
	}
	return err
}

func (b *Builder) unknownAttr(el *parser.Element, inside []string, name string, candidates []string) errors.CompilerError {
	err := b.errorf(el, inside, errors.ErrUnknownElement, "unknown attribute %q on <%s>", name, el.Name)
	if s := errors.SuggestName(name, candidates); s != nil {
		err = err.WithSuggestion(*s)
	}
	return err
}

func (b *Builder) duplicate(el *parser.Element, inside []string) errors.CompilerError {
	return b.errorf(el, inside, errors.ErrDuplicateDefinition, "<%s> declared more than once", el.Name)
}

// locate attaches the document and element line to a merge error
func (b *Builder) locate(err error, el *parser.Element) error {
	ce, ok := errors.As(err)
	if !ok {
		return err
	}
	ce.Location = errors.SourceLocation{File: b.file, Line: el.Line}
	return ce
}
