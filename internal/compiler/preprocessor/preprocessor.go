// Package preprocessor expands #include directives and {key|default}
// placeholders in definition documents before they are parsed.
package preprocessor

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/cfgschema/schemac/compiler/errors"
)

// DefaultMaxDepth bounds include nesting
const DefaultMaxDepth = 32

var (
	includeRegexp     = regexp.MustCompile(`^ *#include <([^>]+)>((?: [a-zA-Z_]+=.+)*)$`)
	placeholderRegexp = regexp.MustCompile(`>(\{([a-zA-Z_]+)(?:\|([^}]+))?\})<`)
)

// Bindings are the key=value parameters of one #include directive
type Bindings map[string]string

// ParseBindings splits the parameter part of an include directive using shell
// quoting rules. Every token must have the form key=value.
func ParseBindings(params string) (Bindings, error) {
	params = strings.TrimSpace(params)
	if params == "" {
		return nil, nil
	}

	tokens, err := shellquote.Split(params)
	if err != nil {
		return nil, fmt.Errorf("cannot split include parameters %q: %w", params, err)
	}

	bindings := make(Bindings, len(tokens))
	for _, token := range tokens {
		key, value, ok := strings.Cut(token, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("include parameter %q is not of the form key=value", token)
		}
		bindings[key] = value
	}
	return bindings, nil
}

// LineOrigin names the document and line an expanded line came from
type LineOrigin struct {
	File string
	Line int
}

// Result is the expanded text of one document
type Result struct {
	Text string
	// Files lists every document read, the top-level one first, without duplicates.
	Files []string
	// Origins[i] is the origin of expanded line i+1.
	Origins []LineOrigin
}

// Origin maps a 1-based line of the expanded text back to its source
func (r *Result) Origin(line int) (LineOrigin, bool) {
	if line < 1 || line > len(r.Origins) {
		return LineOrigin{}, false
	}
	return r.Origins[line-1], true
}

// Preprocessor expands include directives and placeholders
type Preprocessor struct {
	// MaxDepth is the deepest include nesting accepted
	MaxDepth int

	readFile func(string) ([]byte, error)
}

// New creates a Preprocessor reading from the local filesystem
func New() *Preprocessor {
	return &Preprocessor{
		MaxDepth: DefaultMaxDepth,
		readFile: os.ReadFile,
	}
}

// expansion is the state of one Expand call
type expansion struct {
	text    strings.Builder
	origins []LineOrigin
	files   []string
	seen    map[string]bool
	stack   []string
}

// Expand returns the fully expanded text of the document at path. Included
// documents are resolved against folder, or against the directory of path
// when folder is empty; the same folder is used for every nested include.
// bindings substitute placeholders in the document itself.
func (p *Preprocessor) Expand(path, folder string, bindings Bindings) (*Result, error) {
	if folder == "" {
		folder = filepath.Dir(path)
	}

	e := &expansion{seen: make(map[string]bool)}
	if err := p.expand(e, path, folder, bindings, errors.SourceLocation{}); err != nil {
		return nil, err
	}

	return &Result{
		Text:    e.text.String(),
		Files:   e.files,
		Origins: e.origins,
	}, nil
}

func (p *Preprocessor) expand(e *expansion, path, folder string, bindings Bindings, from errors.SourceLocation) error {
	key := canonicalPath(path)

	for i, active := range e.stack {
		if active == key {
			chain := append(append([]string(nil), e.stack[i:]...), key)
			return errors.Newf(errors.PhasePreprocess, errors.ErrIncludeCycle, from,
				"include cycle: %s", strings.Join(chain, " -> ")).
				WithValues(chain...)
		}
	}

	maxDepth := p.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if len(e.stack) > maxDepth {
		return errors.Newf(errors.PhasePreprocess, errors.ErrIncludeTooDeep, from,
			"includes nested deeper than %d levels at %s", maxDepth, path)
	}

	content, err := p.readFile(path)
	if err != nil {
		if from.File == "" {
			return errors.Newf(errors.PhasePreprocess, errors.ErrReadFailed, errors.SourceLocation{File: path},
				"cannot read document: %v", err).WithCause(err)
		}
		return errors.Newf(errors.PhasePreprocess, errors.ErrIncludeNotFound, from,
			"included document %s cannot be read: %v", path, err).
			WithValues(path).
			WithCause(err)
	}

	if !e.seen[key] {
		e.seen[key] = true
		e.files = append(e.files, path)
	}

	e.stack = append(e.stack, key)
	defer func() { e.stack = e.stack[:len(e.stack)-1] }()

	for i, line := range splitLines(string(content)) {
		loc := errors.SourceLocation{File: path, Line: i + 1}
		body := strings.TrimRight(line, "\r\n")

		if m := includeRegexp.FindStringSubmatch(body); m != nil {
			nested, err := ParseBindings(m[2])
			if err != nil {
				return errors.Newf(errors.PhasePreprocess, errors.ErrInvalidDirective, loc, "%v", err).WithCause(err)
			}
			if err := p.expand(e, resolve(folder, m[1]), folder, nested, loc); err != nil {
				return err
			}
			e.terminate()
			continue
		}

		if strings.HasPrefix(strings.TrimLeft(body, " "), "#include") {
			return errors.Newf(errors.PhasePreprocess, errors.ErrInvalidDirective, loc,
				"malformed include directive %q", strings.TrimSpace(body))
		}

		expanded, err := substitute(line, bindings, loc)
		if err != nil {
			return err
		}
		e.write(expanded, loc)
	}

	return nil
}

// write appends one source line to the expanded text
func (e *expansion) write(line string, origin errors.SourceLocation) {
	e.text.WriteString(line)
	e.origins = append(e.origins, LineOrigin{File: origin.File, Line: origin.Line})
}

// terminate ends the expanded text with a newline so an included fragment
// lacking one does not run into the next line of its parent.
func (e *expansion) terminate() {
	s := e.text.String()
	if s != "" && !strings.HasSuffix(s, "\n") {
		e.text.WriteString("\n")
	}
}

// substitute replaces every placeholder written as whole element text
func substitute(line string, bindings Bindings, loc errors.SourceLocation) (string, error) {
	matches := placeholderRegexp.FindAllStringSubmatchIndex(line, -1)
	if matches == nil {
		return line, nil
	}

	var sb strings.Builder
	last := 0
	for _, m := range matches {
		// m[2:4] is the {...} group, m[4:6] the key, m[6:8] the default
		key := line[m[4]:m[5]]

		value, ok := bindings[key]
		if !ok {
			if m[6] < 0 {
				return "", errors.Newf(errors.PhasePreprocess, errors.ErrUnboundPlaceholder, loc,
					"placeholder {%s} has no binding and no default", key).
					WithValues(key)
			}
			value = line[m[6]:m[7]]
		}

		sb.WriteString(line[last:m[2]])
		sb.WriteString(value)
		last = m[3]
	}
	sb.WriteString(line[last:])

	return sb.String(), nil
}

// splitLines splits text after every newline, keeping the terminators
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func resolve(folder, include string) string {
	if filepath.IsAbs(include) {
		return include
	}
	return filepath.Join(folder, include)
}

func canonicalPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
