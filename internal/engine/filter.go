package engine

import (
	"path"
	"strings"
)

// MatchProjectName reports whether name matches pattern, case-insensitively.
// '*' matches any run of characters and '?' a single character. Project
// names cannot contain '/', so path.Match's separator rule never applies.
func MatchProjectName(pattern, name string) bool {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return false
	}
	matched, _ := path.Match(strings.ToLower(pattern), strings.ToLower(name))
	return matched
}

// MatchAnyProjectName reports whether name matches at least one pattern.
// An empty pattern list matches everything.
func MatchAnyProjectName(patterns []string, name string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if MatchProjectName(p, name) {
			return true
		}
	}
	return false
}
