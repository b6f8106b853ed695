// Package parser turns an expanded definition document into an ordered
// element tree with line numbers.
package parser

import (
	"bytes"
	"encoding/xml"
	stderrors "errors"
	"io"
	"strings"

	"github.com/cfgschema/schemac/compiler/errors"
)

// Parse decodes text and returns its document element. name is only used to
// label errors.
func Parse(name string, text []byte) (*Element, error) {
	decoder := xml.NewDecoder(bytes.NewReader(text))

	var (
		root  *Element
		stack []*Element
		texts []*strings.Builder
	)

	for {
		line, _ := decoder.InputPos()
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, syntaxError(name, err, line)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil && len(stack) == 0 {
				return nil, errors.Newf(errors.PhaseParse, errors.ErrMalformedDocument,
					errors.SourceLocation{File: name, Line: line},
					"second document element <%s>", t.Name.Local)
			}

			el := &Element{Name: t.Name.Local, Line: line}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				el.Attrs = append(el.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}

			if len(stack) == 0 {
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)
			texts = append(texts, &strings.Builder{})

		case xml.EndElement:
			el := stack[len(stack)-1]
			el.Text = strings.TrimSpace(texts[len(texts)-1].String())
			stack = stack[:len(stack)-1]
			texts = texts[:len(texts)-1]

		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					return nil, errors.Newf(errors.PhaseParse, errors.ErrMalformedDocument,
						errors.SourceLocation{File: name, Line: line},
						"text outside the document element")
				}
				continue
			}
			texts[len(texts)-1].Write(t)
		}
	}

	if root == nil {
		return nil, errors.Newf(errors.PhaseParse, errors.ErrMalformedDocument,
			errors.SourceLocation{File: name}, "document has no root element")
	}

	return root, nil
}

func syntaxError(name string, err error, line int) error {
	var se *xml.SyntaxError
	if stderrors.As(err, &se) {
		line = se.Line
	}
	return errors.Newf(errors.PhaseParse, errors.ErrMalformedDocument,
		errors.SourceLocation{File: name, Line: line}, "malformed document: %v", err).
		WithCause(err)
}
