package errors

// Compilation phases
const (
	PhasePreprocess = "preprocess"
	PhaseParse      = "parse"
	PhaseBuild      = "build"
	PhaseMerge      = "merge"
	PhaseDriver     = "driver"
)

// Error code constants organized by error kind
// E100-E199: Include resolution errors
// E200-E299: Structural schema errors
// E300-E399: Merge conflict errors
// E400-E499: Driver errors

const (
	// Include resolution errors (E100-E199)
	ErrInvalidDirective   = "E100"
	ErrIncludeNotFound    = "E101"
	ErrUnboundPlaceholder = "E102"
	ErrIncludeCycle       = "E103"
	ErrIncludeTooDeep     = "E104"

	// Structural schema errors (E200-E299)
	ErrMalformedDocument  = "E200"
	ErrUnexpectedRoot     = "E201"
	ErrUnknownElement     = "E202"
	ErrMissingName        = "E203"
	ErrMalformedValidator = "E204"
	ErrUnknownConstraint  = "E205"
	ErrUnknownCompletion  = "E206"
	ErrInvalidVersion     = "E207"
	ErrInvalidPriority    = "E208"
	ErrUnexpectedContent  = "E209"

	// Merge conflict errors (E300-E399)
	ErrConflictingDefinition = "E300"
	ErrDuplicateDefinition   = "E301"
	ErrRootCollision         = "E302"
	ErrConflictingDefault    = "E303"

	// Driver errors (E400-E499)
	ErrNoDocuments = "E400"
	ErrReadFailed  = "E401"
	ErrCanceled    = "E402"
)

// ErrorCategory returns the category name for an error code
func ErrorCategory(code string) string {
	if len(code) < 2 {
		return "unknown"
	}

	switch code[1] {
	case '1':
		return "include"
	case '2':
		return "structure"
	case '3':
		return "merge"
	case '4':
		return "driver"
	default:
		return "unknown"
	}
}

// IsIncludeError reports whether err carries an include resolution error
func IsIncludeError(err error) bool {
	return hasCategory(err, "include")
}

// IsStructuralError reports whether err carries a structural schema error
func IsStructuralError(err error) bool {
	return hasCategory(err, "structure")
}

// IsMergeConflict reports whether err carries a merge conflict error
func IsMergeConflict(err error) bool {
	return hasCategory(err, "merge")
}

func hasCategory(err error, category string) bool {
	ce, ok := As(err)
	return ok && ErrorCategory(ce.Code) == category
}
