package errors_test

import (
	"fmt"

	"github.com/cfgschema/schemac/compiler/errors"
)

// ExampleCompilerError_Error shows the one-line form used in logs
func ExampleCompilerError_Error() {
	err := errors.Newf(
		errors.PhaseMerge,
		errors.ErrConflictingDefinition,
		errors.SourceLocation{File: "interfaces-ethernet.xml.in"},
		"constraint regex differs between documents",
	).WithPath("interfaces ethernet speed")

	fmt.Println(err)
	// Output: interfaces-ethernet.xml.in: E300: constraint regex differs between documents (at "interfaces ethernet speed")
}

// ExampleErrorRecovery demonstrates collecting errors from several documents
func ExampleErrorRecovery() {
	recovery := errors.NewErrorRecovery()

	for i, file := range []string{"a.xml.in", "b.xml.in"} {
		recovery.Recover(errors.Newf(
			errors.PhaseBuild,
			errors.ErrMissingName,
			errors.SourceLocation{File: file, Line: i + 3},
			"leafNode without a name attribute",
		))
	}

	fmt.Println(recovery.Error())
	fmt.Println(recovery.HasErrors())
	// Output:
	// 2 error(s) and 0 warning(s)
	// true
}
