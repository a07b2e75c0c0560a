// Package globmatch implements the glob syntax spec.md §6 requires:
// "*" (any chars except "/"), "?" (one char), "**" (any depth), "[abc]"
// (character class) and "{a,b}" (alternation). The standard library's
// path/filepath.Match supports only the first three, so this wraps
// github.com/bmatcuk/doublestar/v4 (pulled into the pack by
// jmylchreest-aide's go-git-adjacent dependency tree), the same way the
// teacher wraps github.com/dustin/go-humanize for byte sizes: a single
// thin adapter, not a reimplementation.
package globmatch

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// specialChars are the characters that, per spec.md §4.3, mark a pattern
// as a glob rather than a literal basename.
const specialChars = "*?[{"

// IsGlob reports whether pattern contains any glob metacharacter.
func IsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, specialChars)
}

// MatchBasename matches a glob pattern against a file's basename only, per
// spec.md §4.3's Finder matching rule.
func MatchBasename(pattern, basename string) bool {
	ok, err := doublestar.Match(pattern, basename)
	return err == nil && ok
}

// MatchPath matches a glob pattern against a full relative path, per
// spec.md §4.3's exclusion-matching rule (exclusions match the full
// relative path, not just the basename).
func MatchPath(pattern, relPath string) bool {
	ok, err := doublestar.Match(pattern, relPath)
	return err == nil && ok
}

// Validate reports whether pattern is syntactically well-formed.
func Validate(pattern string) error {
	_, err := doublestar.Match(pattern, "")
	return err
}

// DefaultExclusions are applied on top of any user-supplied exclusion
// list, per spec.md §4.3.
var DefaultExclusions = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/bin/**",
	"**/obj/**",
}
