package errors

import (
	"fmt"
	"strings"

	ustrings "github.com/cfgschema/schemac/internal/util/strings"
)

// suggestFix generates fix suggestions based on error code
func suggestFix(err CompilerError) *FixSuggestion {
	switch err.Code {
	case ErrUnboundPlaceholder:
		return suggestPlaceholderDefault(err)
	case ErrIncludeCycle:
		return &FixSuggestion{
			Description: "Break the include cycle by moving the shared definitions into a fragment that includes nothing",
			Confidence:  0.6,
		}
	case ErrMissingName:
		return &FixSuggestion{
			Description: "Every node, leafNode and tagNode element needs a name attribute",
			NewCode:     `<leafNode name="example">`,
			Confidence:  0.9,
		}
	case ErrInvalidPriority:
		return &FixSuggestion{
			Description: "Priorities are plain integers, e.g. <priority>400</priority>",
			Confidence:  0.9,
		}
	case ErrMalformedValidator:
		return &FixSuggestion{
			Description: "Validators take a name attribute and an optional argument attribute",
			NewCode:     `<validator name="numeric" argument="--range 1-65535"/>`,
			Confidence:  0.85,
		}
	case ErrDuplicateDefinition:
		return &FixSuggestion{
			Description: "Declare the property in one document only, or move it into a shared include fragment",
			Confidence:  0.7,
		}
	default:
		return nil
	}
}

// suggestPlaceholderDefault suggests giving the placeholder an inline default
func suggestPlaceholderDefault(err CompilerError) *FixSuggestion {
	if len(err.Context.SourceLines) == 0 {
		return &FixSuggestion{
			Description: "Bind the key on the #include line (key=value) or give the placeholder a default: {key|default}",
			Confidence:  0.8,
		}
	}

	line := err.Context.SourceLines[err.Context.Highlight.Line]
	start := strings.Index(line, "{")
	end := strings.Index(line, "}")
	if start < 0 || end < start {
		return nil
	}

	placeholder := line[start : end+1]
	fixed := strings.Replace(line, placeholder, strings.TrimSuffix(placeholder, "}")+"|default}", 1)

	return &FixSuggestion{
		Description: "Bind the key on the #include line (key=value) or give the placeholder a default",
		OldCode:     strings.TrimSpace(line),
		NewCode:     strings.TrimSpace(fixed),
		Confidence:  0.75,
	}
}

// SuggestName returns a "did you mean" suggestion for an unknown element or
// attribute name, or nil when no candidate is close enough.
func SuggestName(unknown string, candidates []string) *FixSuggestion {
	best := ustrings.Closest(unknown, candidates, 3)
	if best == "" {
		return nil
	}

	return &FixSuggestion{
		Description: fmt.Sprintf("Did you mean %q?", best),
		OldCode:     unknown,
		NewCode:     best,
		Confidence:  1.0 - float64(ustrings.Levenshtein(strings.ToLower(unknown), strings.ToLower(best)))/float64(max(len(unknown), len(best))),
	}
}
