// Package strings holds small string helpers shared by the compiler and the CLI.
package strings

import (
	"sort"
	"strings"
)

// Levenshtein returns the minimum number of single-character edits needed to
// turn s1 into s2.
func Levenshtein(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}

// Similar returns up to limit candidates within maxDistance of target,
// closest first. Ties keep candidate order. Comparison ignores case.
func Similar(target string, candidates []string, maxDistance, limit int) []string {
	type match struct {
		value    string
		distance int
	}

	lowered := strings.ToLower(target)
	var matches []match
	for _, candidate := range candidates {
		d := Levenshtein(lowered, strings.ToLower(candidate))
		if d <= maxDistance {
			matches = append(matches, match{candidate, d})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	result := make([]string, 0, limit)
	for i := 0; i < len(matches) && i < limit; i++ {
		result = append(result, matches[i].value)
	}
	return result
}

// Closest returns the single closest candidate within maxDistance, or "".
func Closest(target string, candidates []string, maxDistance int) string {
	if m := Similar(target, candidates, maxDistance, 1); len(m) > 0 {
		return m[0]
	}
	return ""
}
