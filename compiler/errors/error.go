package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
)

// Severity represents the severity level of an error
type Severity int

const (
	Info Severity = iota
	Warning
	Error
	Fatal
)

// String returns the string representation of the severity
func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for Severity
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for Severity
func (s *Severity) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}

	switch str {
	case "info":
		*s = Info
	case "warning":
		*s = Warning
	case "error":
		*s = Error
	case "fatal":
		*s = Fatal
	default:
		*s = Error
	}
	return nil
}

// SourceLocation represents a location in a definition document
type SourceLocation struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Length int    `json:"length"`
}

// ErrorContext contains surrounding source lines for an error
type ErrorContext struct {
	SourceLines []string  `json:"source_lines"` // 3 lines before, error line, 3 lines after
	Highlight   Highlight `json:"highlight"`
}

// Highlight specifies which part of the context to highlight
type Highlight struct {
	Line  int `json:"line"`  // Which line in SourceLines array
	Start int `json:"start"` // Column start
	End   int `json:"end"`   // Column end
}

// FixSuggestion represents a suggested fix for a schema authoring mistake
type FixSuggestion struct {
	Description string  `json:"description"`
	OldCode     string  `json:"old_code"`
	NewCode     string  `json:"new_code"`
	Confidence  float64 `json:"confidence"` // 0.0 to 1.0
}

// CompilerError is the diagnostic carried by every fatal compilation failure.
// Path is the space-joined schema path being built or merged when the failure
// happened; Values holds the conflicting values for merge errors.
type CompilerError struct {
	Phase         string          // "preprocess", "parse", "build", "merge", "driver"
	Code          string          // "E101", "E300", ...
	Message       string          // Human-readable message
	Location      SourceLocation  // Document path and line
	Severity      Severity        // Error, Warning, Info
	Path          string          // Schema node path
	Values        []string        // Conflicting values
	Context       ErrorContext    // Surrounding source
	Suggestion    *FixSuggestion  // Optional fix
	RelatedErrors []CompilerError // Cascading errors
	Cause         error           // Wrapped error, if any
}

// Error implements the error interface
func (e CompilerError) Error() string {
	var sb strings.Builder

	if e.Location.File != "" {
		sb.WriteString(e.Location.File)
		if e.Location.Line > 0 {
			fmt.Fprintf(&sb, ":%d", e.Location.Line)
			if e.Location.Column > 0 {
				fmt.Fprintf(&sb, ":%d", e.Location.Column)
			}
		}
		sb.WriteString(": ")
	}

	fmt.Fprintf(&sb, "%s: %s", e.Code, e.Message)

	if e.Path != "" {
		fmt.Fprintf(&sb, " (at %q)", e.Path)
	}

	return sb.String()
}

// Unwrap exposes the wrapped cause to errors.Is and errors.As
func (e CompilerError) Unwrap() error {
	return e.Cause
}

// NewCompilerError creates a new CompilerError
func NewCompilerError(phase, code, message string, location SourceLocation, severity Severity) CompilerError {
	return CompilerError{
		Phase:         phase,
		Code:          code,
		Message:       message,
		Location:      location,
		Severity:      severity,
		Context:       ErrorContext{},
		Suggestion:    nil,
		RelatedErrors: []CompilerError{},
	}
}

// Newf creates an Error-severity CompilerError with a formatted message
func Newf(phase, code string, location SourceLocation, format string, args ...interface{}) CompilerError {
	return NewCompilerError(phase, code, fmt.Sprintf(format, args...), location, Error)
}

// WithContext adds context to the error
func (e CompilerError) WithContext(ctx ErrorContext) CompilerError {
	e.Context = ctx
	return e
}

// WithSuggestion adds a fix suggestion to the error
func (e CompilerError) WithSuggestion(suggestion FixSuggestion) CompilerError {
	e.Suggestion = &suggestion
	return e
}

// WithRelatedError adds a related error
func (e CompilerError) WithRelatedError(related CompilerError) CompilerError {
	e.RelatedErrors = append(e.RelatedErrors, related)
	return e
}

// WithPath sets the schema path the error refers to
func (e CompilerError) WithPath(path string) CompilerError {
	e.Path = path
	return e
}

// WithValues records the conflicting values
func (e CompilerError) WithValues(values ...string) CompilerError {
	e.Values = append([]string(nil), values...)
	return e
}

// WithCause wraps an underlying error
func (e CompilerError) WithCause(cause error) CompilerError {
	e.Cause = cause
	return e
}

// InFile sets the document the error was found in, keeping any known line
func (e CompilerError) InFile(file string) CompilerError {
	if e.Location.File == "" {
		e.Location.File = file
	}
	return e
}

// MarshalJSON implements json.Marshaler
func (e CompilerError) MarshalJSON() ([]byte, error) {
	var cause string
	if e.Cause != nil {
		cause = e.Cause.Error()
	}

	return json.Marshal(struct {
		Phase         string          `json:"phase"`
		Code          string          `json:"code"`
		Message       string          `json:"message"`
		Severity      Severity        `json:"severity"`
		Location      SourceLocation  `json:"location"`
		Path          string          `json:"path,omitempty"`
		Values        []string        `json:"values,omitempty"`
		Context       ErrorContext    `json:"context"`
		Suggestion    *FixSuggestion  `json:"suggestion"`
		RelatedErrors []CompilerError `json:"related_errors"`
		Cause         string          `json:"cause,omitempty"`
	}{
		Phase:         e.Phase,
		Code:          e.Code,
		Message:       e.Message,
		Severity:      e.Severity,
		Location:      e.Location,
		Path:          e.Path,
		Values:        e.Values,
		Context:       e.Context,
		Suggestion:    e.Suggestion,
		RelatedErrors: e.RelatedErrors,
		Cause:         cause,
	})
}

// IsError returns true if the error is at Error or Fatal severity
func (e CompilerError) IsError() bool {
	return e.Severity == Error || e.Severity == Fatal
}

// IsWarning returns true if the error is at Warning severity
func (e CompilerError) IsWarning() bool {
	return e.Severity == Warning
}

// IsInfo returns true if the error is at Info severity
func (e CompilerError) IsInfo() bool {
	return e.Severity == Info
}

// IsFatal returns true if the error is at Fatal severity
func (e CompilerError) IsFatal() bool {
	return e.Severity == Fatal
}

// As extracts the outermost CompilerError from err
func As(err error) (CompilerError, bool) {
	var ce CompilerError
	if stderrors.As(err, &ce) {
		return ce, true
	}
	return CompilerError{}, false
}

// Find walks the wrap chain of err and returns the first CompilerError with
// the given code.
func Find(err error, code string) (CompilerError, bool) {
	for err != nil {
		ce, ok := As(err)
		if !ok {
			return CompilerError{}, false
		}
		if ce.Code == code {
			return ce, true
		}
		err = ce.Cause
	}
	return CompilerError{}, false
}
