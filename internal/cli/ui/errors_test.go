package ui

import (
	"bytes"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/cfgschema/schemac/compiler/errors"
)

func TestFormatError(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		opts     ErrorOptions
		contains []string
	}{
		{
			name: "basic error",
			opts: ErrorOptions{
				Level:   ErrorLevelError,
				Context: "node not found",
				Problem: "No schema node at 'system'.",
			},
			contains: []string{"❌", "NODE NOT FOUND", "No schema node at 'system'."},
		},
		{
			name: "error with suggestions",
			opts: ErrorOptions{
				Level:       ErrorLevelError,
				Context:     "NODE NOT FOUND",
				Problem:     "No schema node at 'sytem'.",
				Suggestions: []string{"system", "service"},
			},
			contains: []string{"Did you mean: system, service?"},
		},
		{
			name: "error with help commands",
			opts: ErrorOptions{
				Level:        ErrorLevelError,
				Problem:      "Cannot read definitions",
				Consequence:  "No schema was written.",
				HelpCommands: []string{"Check documents: schemac check"},
			},
			contains: []string{"No schema was written.", "→ Check documents: schemac check"},
		},
		{
			name:     "warning message",
			opts:     ErrorOptions{Level: ErrorLevelWarning, Problem: "Output file exists"},
			contains: []string{"⚠️", "Output file exists"},
		},
		{
			name:     "info message",
			opts:     ErrorOptions{Level: ErrorLevelInfo, Problem: "Watching for changes"},
			contains: []string{"ℹ️", "Watching for changes"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.NoColor = true
			output := FormatError(tt.opts)
			for _, want := range tt.contains {
				if !strings.Contains(output, want) {
					t.Errorf("FormatError() output missing %q\nGot:\n%s", want, output)
				}
			}
		})
	}
}

func TestNodeNotFoundError(t *testing.T) {
	output := NodeNotFoundError("interfaces ethernt", []string{"interfaces ethernet"}, true)

	for _, want := range []string{
		"NODE NOT FOUND",
		"interfaces ethernt",
		"Did you mean: interfaces ethernet?",
		"schemac show",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("NodeNotFoundError() missing %q\nGot:\n%s", want, output)
		}
	}
}

func TestConfigWarningInfo(t *testing.T) {
	if out := ConfigError("bad root policy", true); !strings.Contains(out, "CONFIGURATION ERROR") || !strings.Contains(out, "schemac init") {
		t.Errorf("ConfigError() = %q", out)
	}
	if out := Warning("careful", true); !strings.Contains(out, "careful") {
		t.Errorf("Warning() = %q", out)
	}
	if out := Info("note", true); !strings.Contains(out, "note") {
		t.Errorf("Info() = %q", out)
	}
}

func TestWriteSuccess(t *testing.T) {
	var buf bytes.Buffer
	WriteSuccess(&buf, "Schema compiled", true)

	if got := buf.String(); got != "✓ Schema compiled\n" {
		t.Errorf("WriteSuccess() = %q", got)
	}
}

func TestDiagnostic(t *testing.T) {
	err := errors.Newf(errors.PhaseMerge, errors.ErrConflictingDefinition,
		errors.SourceLocation{File: "b.xml.in", Line: 4}, "constraint regex differs").
		WithPath("interfaces ethernet speed")

	out := Diagnostic(err, true)
	if strings.Contains(out, "\033[") {
		t.Error("Diagnostic() kept ANSI codes with colors disabled")
	}
	for _, want := range []string{"E300", "constraint regex differs", "b.xml.in:4", "interfaces ethernet speed"} {
		if !strings.Contains(out, want) {
			t.Errorf("Diagnostic() missing %q\nGot:\n%s", want, out)
		}
	}

	var buf bytes.Buffer
	WriteDiagnostic(&buf, stderrors.New("disk full"), true)
	if !strings.Contains(buf.String(), "COMPILATION FAILED") || !strings.Contains(buf.String(), "disk full") {
		t.Errorf("WriteDiagnostic() plain error = %q", buf.String())
	}
}
