package common

import "regexp"

// Anchor wraps pattern so that it only matches a whole string.
func Anchor(pattern string) string {
	return `^(?:` + pattern + `)$`
}

// CompileFull compiles pattern as a full-string matcher.
func CompileFull(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(Anchor(pattern))
}
