package errors

import (
	"fmt"
	"strings"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// FormatForTerminal formats a CompilerError for terminal output with ANSI colors
func (e CompilerError) FormatForTerminal() string {
	var sb strings.Builder

	severityColor := getSeverityColor(e.Severity)
	fmt.Fprintf(&sb, "%s%s[%s]%s: %s\n",
		colorBold+severityColor,
		capitalize(e.Severity.String()),
		e.Code,
		colorReset,
		e.Message)

	if e.Location.File != "" {
		fmt.Fprintf(&sb, "  %s-->%s %s", colorCyan, colorReset, e.Location.File)
		if e.Location.Line > 0 {
			fmt.Fprintf(&sb, ":%d", e.Location.Line)
		}
		sb.WriteString("\n")
	}

	if e.Path != "" {
		fmt.Fprintf(&sb, "  %snode:%s %s\n", colorCyan, colorReset, e.Path)
	}

	for i, v := range e.Values {
		fmt.Fprintf(&sb, "  %svalue %d:%s %s\n", colorGray, i+1, colorReset, v)
	}

	if len(e.Context.SourceLines) > 0 {
		sb.WriteString(formatSourceContext(e.Context))
	}

	if e.Suggestion != nil {
		sb.WriteString(formatSuggestion(*e.Suggestion))
	}

	if cause, ok := As(e.Cause); ok {
		fmt.Fprintf(&sb, "\n%sCaused by:%s\n", colorBold, colorReset)
		for _, line := range strings.Split(strings.TrimRight(cause.FormatForTerminal(), "\n"), "\n") {
			sb.WriteString("  " + line + "\n")
		}
	} else if e.Cause != nil {
		fmt.Fprintf(&sb, "  %scause:%s %v\n", colorGray, colorReset, e.Cause)
	}

	if len(e.RelatedErrors) > 0 {
		fmt.Fprintf(&sb, "\n%sRelated errors:%s\n", colorBold, colorReset)
		for i, related := range e.RelatedErrors {
			fmt.Fprintf(&sb, "  %d. %s\n", i+1, related.Error())
		}
	}

	return sb.String()
}

// formatSourceContext formats the source context with highlighting
func formatSourceContext(ctx ErrorContext) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "   %s|%s\n", colorBlue, colorReset)

	for i, line := range ctx.SourceLines {
		if i != ctx.Highlight.Line {
			fmt.Fprintf(&sb, "   %s|%s %s%s%s\n", colorBlue, colorReset, colorGray, line, colorReset)
			continue
		}

		fmt.Fprintf(&sb, "   %s|%s %s\n", colorBlue, colorReset, line)

		width := ctx.Highlight.End - ctx.Highlight.Start
		if width <= 0 {
			width = 1
		}
		fmt.Fprintf(&sb, "   %s|%s %s%s%s%s\n",
			colorBlue,
			colorReset,
			strings.Repeat(" ", max(0, ctx.Highlight.Start)),
			colorRed,
			strings.Repeat("^", width),
			colorReset)
	}

	fmt.Fprintf(&sb, "   %s|%s\n", colorBlue, colorReset)

	return sb.String()
}

// formatSuggestion formats a fix suggestion
func formatSuggestion(suggestion FixSuggestion) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "\n%sHelp:%s %s\n", colorBold+colorCyan, colorReset, suggestion.Description)

	if suggestion.NewCode != "" {
		fmt.Fprintf(&sb, "%sSuggestion:%s\n", colorBold+colorCyan, colorReset)
		for _, line := range strings.Split(suggestion.NewCode, "\n") {
			fmt.Fprintf(&sb, "    %s\n", line)
		}

		if suggestion.Confidence < 1.0 {
			fmt.Fprintf(&sb, "%s(Confidence: %d%%)%s\n",
				colorGray,
				int(suggestion.Confidence*100),
				colorReset)
		}
	}

	return sb.String()
}

// getSeverityColor returns the ANSI color for a severity level
func getSeverityColor(severity Severity) string {
	switch severity {
	case Info:
		return colorBlue
	case Warning:
		return colorYellow
	case Error:
		return colorRed
	case Fatal:
		return colorRed + colorBold
	default:
		return colorReset
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// FormatSummary formats a summary of errors and warnings
func FormatSummary(errorCount, warningCount int) string {
	var parts []string

	if errorCount > 0 {
		parts = append(parts, fmt.Sprintf("%s%d error(s)%s", colorRed, errorCount, colorReset))
	}

	if warningCount > 0 {
		parts = append(parts, fmt.Sprintf("%s%d warning(s)%s", colorYellow, warningCount, colorReset))
	}

	if len(parts) == 0 {
		return fmt.Sprintf("%sNo errors or warnings%s\n", colorBlue, colorReset)
	}

	return fmt.Sprintf("\n%sSchema compilation failed with %s%s\n",
		colorBold,
		strings.Join(parts, " and "),
		colorReset)
}

// StripColors removes ANSI escape sequences from a string
func StripColors(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			end := strings.IndexByte(s[i:], 'm')
			if end == -1 {
				break
			}
			i += end
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
