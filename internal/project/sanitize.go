package project

import (
	"regexp"
	"strings"
)

var (
	whitespaceRuns = regexp.MustCompile(`[\s_]+`)
	invalidChars   = regexp.MustCompile(`[^a-z0-9-]+`)
	hyphenRuns     = regexp.MustCompile(`-+`)
)

// SanitizeName normalizes a human-readable project name for use as an issue
// ID prefix: lowercase, whitespace and underscore runs become single
// hyphens, anything outside [a-z0-9-] becomes a hyphen, hyphen runs
// collapse, and leading/trailing hyphens are trimmed.
func SanitizeName(name string) string {
	name = strings.ToLower(name)
	name = whitespaceRuns.ReplaceAllString(name, "-")
	name = invalidChars.ReplaceAllString(name, "-")
	name = hyphenRuns.ReplaceAllString(name, "-")
	return strings.Trim(name, "-")
}
