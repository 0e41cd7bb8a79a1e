package catalog

import "strings"

// MatchPattern implements the glob-like list-operation matcher: '*' matches
// any sequence, every other character matches literally, and a nil or empty
// pattern matches everything. Matching is case-insensitive.
func MatchPattern(pattern, name string) bool {
	if pattern == "" {
		return true
	}
	return matchFold(strings.ToLower(pattern), strings.ToLower(name))
}

// matchFold is a small recursive glob matcher over already-folded strings;
// recursion depth is bounded by len(pattern), which is always small (table
// and database names, not attacker-controlled paths).
func matchFold(pattern, name string) bool {
	if pattern == "" {
		return name == ""
	}
	if pattern[0] == '*' {
		// Collapse consecutive '*' to avoid redundant recursion.
		for len(pattern) > 1 && pattern[1] == '*' {
			pattern = pattern[1:]
		}
		if len(pattern) == 1 {
			return true
		}
		for i := 0; i <= len(name); i++ {
			if matchFold(pattern[1:], name[i:]) {
				return true
			}
		}
		return false
	}
	if name == "" || pattern[0] != name[0] {
		return false
	}
	return matchFold(pattern[1:], name[1:])
}
