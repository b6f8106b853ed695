package errors

import (
	"fmt"
	"strings"
)

// MaxErrors is the maximum number of errors to collect before stopping
const MaxErrors = 100

// ErrorRecovery collects diagnostics from independent documents so that a
// check run can report every broken document at once. It never stands in for
// a compiled schema: any collected error still fails the run.
type ErrorRecovery struct {
	errors   []CompilerError
	warnings []CompilerError
	maxCount int
}

// NewErrorRecovery creates a new ErrorRecovery instance
func NewErrorRecovery() *ErrorRecovery {
	return NewErrorRecoveryWithMax(MaxErrors)
}

// NewErrorRecoveryWithMax creates a new ErrorRecovery with custom max count
func NewErrorRecoveryWithMax(maxCount int) *ErrorRecovery {
	return &ErrorRecovery{
		errors:   make([]CompilerError, 0),
		warnings: make([]CompilerError, 0),
		maxCount: maxCount,
	}
}

// Recover adds a diagnostic to the collection
func (r *ErrorRecovery) Recover(err CompilerError) {
	if err.IsWarning() || err.IsInfo() {
		r.warnings = append(r.warnings, err)
		return
	}

	if len(r.errors) >= r.maxCount {
		return
	}
	r.errors = append(r.errors, err)
}

// RecoverError adds err when it carries a CompilerError, wrapping anything
// else as a driver error for file.
func (r *ErrorRecovery) RecoverError(file string, err error) {
	if err == nil {
		return
	}
	if ce, ok := As(err); ok {
		r.Recover(ce.InFile(file))
		return
	}
	r.Recover(Newf(PhaseDriver, ErrReadFailed, SourceLocation{File: file}, "%v", err).WithCause(err))
}

// HasErrors returns true if there are any errors (not just warnings)
func (r *ErrorRecovery) HasErrors() bool {
	return len(r.errors) > 0
}

// ErrorCount returns the number of errors
func (r *ErrorRecovery) ErrorCount() int {
	return len(r.errors)
}

// WarningCount returns the number of warnings
func (r *ErrorRecovery) WarningCount() int {
	return len(r.warnings)
}

// TotalCount returns the total number of errors and warnings
func (r *ErrorRecovery) TotalCount() int {
	return len(r.errors) + len(r.warnings)
}

// GetErrors returns all errors
func (r *ErrorRecovery) GetErrors() []CompilerError {
	return r.errors
}

// GetAll returns all errors and warnings combined
func (r *ErrorRecovery) GetAll() []CompilerError {
	all := make([]CompilerError, 0, len(r.errors)+len(r.warnings))
	all = append(all, r.errors...)
	all = append(all, r.warnings...)
	return all
}

// GetErrorsByCode returns diagnostics with a specific error code
func (r *ErrorRecovery) GetErrorsByCode(code string) []CompilerError {
	var result []CompilerError
	for _, err := range r.GetAll() {
		if err.Code == code {
			result = append(result, err)
		}
	}
	return result
}

// FormatForTerminal formats all diagnostics for terminal output
func (r *ErrorRecovery) FormatForTerminal() string {
	var sb strings.Builder

	for i, err := range r.GetAll() {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(err.FormatForTerminal())
	}

	if r.TotalCount() > 0 {
		sb.WriteString(FormatSummary(len(r.errors), len(r.warnings)))
	}

	if len(r.errors) >= r.maxCount {
		fmt.Fprintf(&sb, "\n%sNote: Error limit reached (%d). Additional errors not shown.%s\n",
			colorYellow,
			r.maxCount,
			colorReset)
	}

	return sb.String()
}

// FormatAsJSON formats all diagnostics as JSON
func (r *ErrorRecovery) FormatAsJSON() (string, error) {
	return FormatErrorsAsJSON(r.GetAll())
}

// Error implements the error interface
func (r *ErrorRecovery) Error() string {
	if len(r.errors) == 0 && len(r.warnings) == 0 {
		return "no errors"
	}

	if len(r.errors) == 1 && len(r.warnings) == 0 {
		return r.errors[0].Error()
	}

	return fmt.Sprintf("%d error(s) and %d warning(s)", len(r.errors), len(r.warnings))
}
