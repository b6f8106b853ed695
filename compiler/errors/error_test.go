package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

// TestError_Creation tests basic error creation
func TestError_Creation(t *testing.T) {
	loc := SourceLocation{File: "interfaces-ethernet.xml.in", Line: 15}

	err := NewCompilerError(PhaseBuild, ErrUnknownElement, "unknown property \"helpp\"", loc, Error)

	if err.Phase != PhaseBuild {
		t.Errorf("Expected phase 'build', got '%s'", err.Phase)
	}
	if err.Code != ErrUnknownElement {
		t.Errorf("Expected code '%s', got '%s'", ErrUnknownElement, err.Code)
	}
	if err.Severity != Error {
		t.Errorf("Expected severity Error, got %v", err.Severity)
	}
	if len(err.RelatedErrors) != 0 {
		t.Errorf("Expected no related errors, got %d", len(err.RelatedErrors))
	}
}

func TestError_ErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  CompilerError
		want string
	}{
		{
			name: "file and line",
			err:  Newf(PhasePreprocess, ErrIncludeNotFound, SourceLocation{File: "a.xml.in", Line: 4}, "missing %s", "b.xml.i"),
			want: "a.xml.in:4: E101: missing b.xml.i",
		},
		{
			name: "file only",
			err:  Newf(PhaseMerge, ErrConflictingDefinition, SourceLocation{File: "a.xml.in"}, "conflict"),
			want: "a.xml.in: E300: conflict",
		},
		{
			name: "with path",
			err:  Newf(PhaseMerge, ErrConflictingDefinition, SourceLocation{}, "conflict").WithPath("interfaces ethernet speed"),
			want: `E300: conflict (at "interfaces ethernet speed")`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_UnwrapAndFind(t *testing.T) {
	inner := Newf(PhaseMerge, ErrConflictingDefinition, SourceLocation{}, "regex differs").
		WithPath("interfaces ethernet speed")
	outer := Newf(PhaseMerge, ErrRootCollision, SourceLocation{File: "b.xml.in"}, "top-level node collides").
		WithPath("interfaces").
		WithCause(inner)

	var err error = fmt.Errorf("compile: %w", outer)

	ce, ok := As(err)
	if !ok || ce.Code != ErrRootCollision {
		t.Fatalf("As() = %v, %v; want root collision", ce, ok)
	}

	found, ok := Find(err, ErrConflictingDefinition)
	if !ok {
		t.Fatal("Find() did not locate the wrapped conflict")
	}
	if found.Path != "interfaces ethernet speed" {
		t.Errorf("Expected inner path, got %q", found.Path)
	}

	if _, ok := Find(err, ErrIncludeCycle); ok {
		t.Error("Find() located a code that is not in the chain")
	}

	if !IsMergeConflict(err) {
		t.Error("IsMergeConflict() = false for a root collision")
	}
	if IsIncludeError(err) || IsStructuralError(err) {
		t.Error("root collision reported as a non-merge category")
	}

	sentinel := stderrors.New("disk gone")
	wrapped := Newf(PhaseDriver, ErrReadFailed, SourceLocation{}, "read failed").WithCause(sentinel)
	if !stderrors.Is(wrapped, sentinel) {
		t.Error("errors.Is() did not see through Unwrap")
	}
}

func TestErrorCategory(t *testing.T) {
	tests := map[string]string{
		ErrUnboundPlaceholder:    "include",
		ErrMalformedValidator:    "structure",
		ErrConflictingDefinition: "merge",
		ErrNoDocuments:           "driver",
		"X":                      "unknown",
		"E900":                   "unknown",
	}

	for code, want := range tests {
		if got := ErrorCategory(code); got != want {
			t.Errorf("ErrorCategory(%q) = %q, want %q", code, got, want)
		}
	}
}

// TestError_TerminalFormat tests terminal formatting
func TestError_TerminalFormat(t *testing.T) {
	err := Newf(PhaseMerge, ErrConflictingDefinition, SourceLocation{File: "b.xml.in", Line: 7}, "constraint regex differs").
		WithPath("interfaces ethernet speed").
		WithValues("[auto]", "[auto 10 100]").
		WithContext(ErrorContext{
			SourceLines: []string{"<constraint>", "  <regex>auto</regex>", "</constraint>"},
			Highlight:   Highlight{Line: 1, Start: 2, End: 21},
		})

	output := err.FormatForTerminal()
	if !strings.Contains(output, "\033[") {
		t.Error("Output should contain ANSI color codes")
	}

	stripped := StripColors(output)
	for _, want := range []string{
		"Error[E300]: constraint regex differs",
		"--> b.xml.in:7",
		"node: interfaces ethernet speed",
		"value 1: [auto]",
		"value 2: [auto 10 100]",
		"<regex>auto</regex>",
		"^^^",
	} {
		if !strings.Contains(stripped, want) {
			t.Errorf("Output should contain %q, got:\n%s", want, stripped)
		}
	}
}

func TestError_TerminalFormatCause(t *testing.T) {
	inner := Newf(PhaseMerge, ErrConflictingDefinition, SourceLocation{}, "owner differs").WithPath("system login")
	outer := Newf(PhaseMerge, ErrRootCollision, SourceLocation{File: "b.xml.in"}, "collision").WithCause(inner)

	stripped := StripColors(outer.FormatForTerminal())
	if !strings.Contains(stripped, "Caused by:") || !strings.Contains(stripped, "owner differs") {
		t.Errorf("Expected nested cause in output, got:\n%s", stripped)
	}
}

// TestError_JSONFormat tests JSON formatting
func TestError_JSONFormat(t *testing.T) {
	err := Newf(PhaseMerge, ErrConflictingDefinition, SourceLocation{File: "b.xml.in"}, "priority differs").
		WithPath("system").
		WithValues("400", "500").
		WithCause(stderrors.New("root cause"))

	jsonStr, jsonErr := err.FormatAsJSON()
	if jsonErr != nil {
		t.Fatalf("Failed to format as JSON: %v", jsonErr)
	}

	var result map[string]interface{}
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}

	if result["code"] != ErrConflictingDefinition {
		t.Errorf("Expected code %s, got %v", ErrConflictingDefinition, result["code"])
	}
	if result["severity"] != "error" {
		t.Errorf("Expected severity 'error', got %v", result["severity"])
	}
	if result["path"] != "system" {
		t.Errorf("Expected path 'system', got %v", result["path"])
	}
	if result["cause"] != "root cause" {
		t.Errorf("Expected cause 'root cause', got %v", result["cause"])
	}
	values, ok := result["values"].([]interface{})
	if !ok || len(values) != 2 {
		t.Errorf("Expected two values, got %v", result["values"])
	}
}

func TestFormatErrorsAsJSON(t *testing.T) {
	diagnostics := []CompilerError{
		Newf(PhaseBuild, ErrUnknownElement, SourceLocation{File: "a.xml.in"}, "unknown"),
		NewCompilerError(PhaseBuild, ErrUnknownElement, "ignored", SourceLocation{}, Warning),
	}

	out, err := FormatErrorsAsJSON(diagnostics)
	if err != nil {
		t.Fatalf("FormatErrorsAsJSON() error: %v", err)
	}

	var parsed JSONOutput
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}

	if parsed.Status != "error" {
		t.Errorf("Expected status 'error', got %q", parsed.Status)
	}
	if parsed.Summary.ErrorCount != 1 || parsed.Summary.WarningCount != 1 || parsed.Summary.TotalCount != 2 {
		t.Errorf("Unexpected summary: %+v", parsed.Summary)
	}
}

func TestSeverity_JSONRoundTrip(t *testing.T) {
	for _, s := range []Severity{Info, Warning, Error, Fatal} {
		data, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("Marshal(%v) error: %v", s, err)
		}
		var back Severity
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("Unmarshal(%s) error: %v", data, err)
		}
		if back != s {
			t.Errorf("round trip of %v gave %v", s, back)
		}
	}
}

func TestEnrichError(t *testing.T) {
	source := "line one\n<leafNode name=\"x\">\n  <defaultValue>{mtu}</defaultValue>\n</leafNode>\n"

	err := Newf(PhasePreprocess, ErrUnboundPlaceholder, SourceLocation{File: "frag.xml.i", Line: 3}, "no binding for %q", "mtu")
	err = EnrichError(err, source)

	if len(err.Context.SourceLines) != 5 {
		t.Fatalf("Expected 5 context lines, got %d", len(err.Context.SourceLines))
	}
	if err.Context.Highlight.Line != 2 {
		t.Errorf("Expected highlight on context line 2, got %d", err.Context.Highlight.Line)
	}
	if err.Suggestion == nil {
		t.Fatal("Expected a suggestion for an unbound placeholder")
	}
	if !strings.Contains(err.Suggestion.NewCode, "{mtu|default}") {
		t.Errorf("Expected default-placeholder fix, got %q", err.Suggestion.NewCode)
	}
}

func TestEnrichError_LineOutOfRange(t *testing.T) {
	err := Newf(PhaseBuild, ErrMissingName, SourceLocation{File: "a", Line: 99}, "missing")
	err = EnrichError(err, "one line")

	if len(err.Context.SourceLines) != 0 {
		t.Errorf("Expected no context for an out-of-range line, got %v", err.Context.SourceLines)
	}
}

func TestSuggestName(t *testing.T) {
	s := SuggestName("constraintErrorMesage", []string{"help", "constraintErrorMessage", "constraint"})
	if s == nil || s.NewCode != "constraintErrorMessage" {
		t.Fatalf("Expected constraintErrorMessage suggestion, got %+v", s)
	}

	if s := SuggestName("zzzzzz", []string{"help", "priority"}); s != nil {
		t.Errorf("Expected no suggestion, got %+v", s)
	}
}

func TestErrorRecovery(t *testing.T) {
	r := NewErrorRecoveryWithMax(2)

	r.Recover(Newf(PhaseBuild, ErrMissingName, SourceLocation{File: "a"}, "one"))
	r.RecoverError("b", stderrors.New("plain failure"))
	r.Recover(Newf(PhaseBuild, ErrMissingName, SourceLocation{File: "c"}, "dropped"))
	r.Recover(NewCompilerError(PhaseBuild, ErrUnknownElement, "warn", SourceLocation{}, Warning))
	r.RecoverError("d", nil)

	if r.ErrorCount() != 2 {
		t.Errorf("Expected 2 errors (limit), got %d", r.ErrorCount())
	}
	if r.WarningCount() != 1 {
		t.Errorf("Expected 1 warning, got %d", r.WarningCount())
	}
	if got := r.GetErrors()[1]; got.Code != ErrReadFailed || got.Location.File != "b" {
		t.Errorf("Plain error not wrapped as read failure: %+v", got)
	}
	if len(r.GetErrorsByCode(ErrMissingName)) != 1 {
		t.Errorf("Expected one E203 error")
	}
	if !strings.Contains(StripColors(r.FormatForTerminal()), "Error limit reached") {
		t.Error("Expected truncation notice")
	}
	if r.Error() != "2 error(s) and 1 warning(s)" {
		t.Errorf("Unexpected Error(): %q", r.Error())
	}
}

func TestStripColors(t *testing.T) {
	in := colorRed + "red" + colorReset + " plain " + "\033[1;32mgreen\033[0m"
	if got := StripColors(in); got != "red plain green" {
		t.Errorf("StripColors() = %q", got)
	}
}
