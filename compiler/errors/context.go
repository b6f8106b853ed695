package errors

import (
	"os"
	"strings"
)

// EnrichError adds source context and suggestions to an error
func EnrichError(err CompilerError, sourceContent string) CompilerError {
	err = err.WithContext(extractSourceContext(err.Location, sourceContent))

	if err.Suggestion == nil {
		if suggestion := suggestFix(err); suggestion != nil {
			err = err.WithSuggestion(*suggestion)
		}
	}

	return err
}

// extractSourceContext extracts 3 lines before, the error line, and 3 lines after
func extractSourceContext(location SourceLocation, sourceContent string) ErrorContext {
	lines := strings.Split(sourceContent, "\n")

	if location.Line < 1 || location.Line > len(lines) {
		return ErrorContext{}
	}

	errorLineIndex := location.Line - 1
	startLine := max(0, errorLineIndex-3)
	endLine := min(len(lines), errorLineIndex+4)

	contextLines := make([]string, 0, endLine-startLine)
	for i := startLine; i < endLine; i++ {
		contextLines = append(contextLines, lines[i])
	}

	line := lines[errorLineIndex]
	start := location.Column - 1
	if start < 0 {
		// Highlight the whole line, minus indentation
		start = len(line) - len(strings.TrimLeft(line, " \t"))
	}
	end := start + location.Length
	if location.Length == 0 {
		end = max(start+1, len(strings.TrimRight(line, " \t\r")))
	}

	return ErrorContext{
		SourceLines: contextLines,
		Highlight: Highlight{
			Line:  errorLineIndex - startLine,
			Start: start,
			End:   end,
		},
	}
}

// ReadSourceFile reads a source file and returns its contents
func ReadSourceFile(filepath string) (string, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// EnrichErrorFromFile reads the source file and enriches the error
func EnrichErrorFromFile(err CompilerError) CompilerError {
	if err.Location.Line == 0 {
		return err
	}

	content, readErr := ReadSourceFile(err.Location.File)
	if readErr != nil {
		return err
	}

	return EnrichError(err, content)
}
