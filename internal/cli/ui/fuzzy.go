package ui

import (
	"strings"

	ustrings "github.com/cfgschema/schemac/internal/util/strings"
)

const (
	// DefaultMaxDistance is the default maximum edit distance to consider for fuzzy matching
	DefaultMaxDistance = 3
	// DefaultMaxSuggestions is the default maximum number of suggestions to return
	DefaultMaxSuggestions = 3
)

// FuzzyMatchOptions configures fuzzy matching behavior
type FuzzyMatchOptions struct {
	MaxDistance    int // Maximum Levenshtein distance to consider (default: 3)
	MaxSuggestions int // Maximum number of suggestions to return (default: 3)
}

// FindSimilar finds candidates close to target, ignoring case, closest first
//
// Example:
//
//	candidates := []string{"ethernet", "bonding", "loopback"}
//	suggestions := FindSimilar("ethernt", candidates, nil)
//	// Returns: ["ethernet"]
func FindSimilar(target string, candidates []string, opts *FuzzyMatchOptions) []string {
	maxDistance, maxSuggestions := DefaultMaxDistance, DefaultMaxSuggestions
	if opts != nil {
		if opts.MaxDistance > 0 {
			maxDistance = opts.MaxDistance
		}
		if opts.MaxSuggestions > 0 {
			maxSuggestions = opts.MaxSuggestions
		}
	}
	return ustrings.Similar(target, candidates, maxDistance, maxSuggestions)
}

// FindBestMatch returns the single best match for a target string
// Returns an empty string if no match is found within the max distance
func FindBestMatch(target string, candidates []string, opts *FuzzyMatchOptions) string {
	matches := FindSimilar(target, candidates, opts)
	if len(matches) == 0 {
		return ""
	}
	return matches[0]
}

// SuggestPaths proposes schema paths for a path that did not resolve.
// known holds every valid space-joined path; the last segment of each
// candidate sharing the resolvable prefix is compared.
func SuggestPaths(path []string, known []string) []string {
	if len(path) == 0 {
		return nil
	}

	prefix := strings.Join(path[:len(path)-1], " ")
	var siblings []string
	for _, candidate := range known {
		segments := strings.Fields(candidate)
		if len(segments) != len(path) {
			continue
		}
		if strings.Join(segments[:len(segments)-1], " ") != prefix {
			continue
		}
		siblings = append(siblings, candidate)
	}

	if len(siblings) > 0 {
		if matches := FindSimilar(strings.Join(path, " "), siblings, nil); len(matches) > 0 {
			return matches
		}
	}

	// Fall back to whole-path matching, which catches typos in earlier segments
	return FindSimilar(strings.Join(path, " "), known, nil)
}
