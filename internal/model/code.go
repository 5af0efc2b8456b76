// Package model defines the core data structures for the flcheck application.
package model

import (
	"strconv"
	"strings"
)

// MaxLevels is the deepest hierarchy level a functional location can have.
const MaxLevels = 6

// LevelSeparator separates the levels of a functional location.
const LevelSeparator = "-"

// CheckSeparator separates the parts of a check key.
const CheckSeparator = "_"

// Code is a candidate functional location decomposed into its levels.
type Code struct {
	Value  string            `json:"value"`
	Check  string            `json:"check,omitempty"`
	Levels [MaxLevels]string `json:"levels"`
	Length int               `json:"length"`
	Line   int               `json:"line,omitempty"`
}

// Level returns the n-th level (1-based), or "" when n is out of range.
func (c Code) Level(n int) string {
	if n < 1 || n > MaxLevels {
		return ""
	}
	return c.Levels[n-1]
}

// Parent returns the code without its last level, or "" for a level-1 code.
func (c Code) Parent() string {
	idx := strings.LastIndex(c.Value, LevelSeparator)
	if idx < 0 {
		return ""
	}
	return c.Value[:idx]
}

// TemplateKind selects how the parts of a check key are ordered.
type TemplateKind int

const (
	// KindFL builds check keys from the levels of a functional location, deepest first.
	KindFL TemplateKind = iota
	// KindSAP builds check keys from the level-value columns of a reference table row.
	KindSAP
)

func (k TemplateKind) String() string {
	switch k {
	case KindFL:
		return "FL"
	case KindSAP:
		return "SAP"
	default:
		return "unknown"
	}
}

// MinCheckLevel is the shallowest level that takes part in a check key.
const MinCheckLevel = 3

// CheckParts returns the level values that form the check key of a code with the
// given levels and length, deepest first. It returns nil when length < MinCheckLevel.
func CheckParts(levels []string, length int) []string {
	if length < MinCheckLevel || length > len(levels) {
		return nil
	}
	lowest := length - 2
	if lowest < MinCheckLevel {
		lowest = MinCheckLevel
	}
	parts := make([]string, 0, 3)
	for n := length; n >= lowest; n-- {
		parts = append(parts, levels[n-1])
	}
	return parts
}

// FLCheckKey builds the check key of a functional location from its levels.
func FLCheckKey(levels []string, length int) string {
	parts := CheckParts(levels, length)
	if parts == nil {
		return ""
	}
	return joinCheck(parts, strconv.Itoa(length))
}

// SAPCheckKey builds the check key of a reference table row. value is the level value,
// upper and upper1 the values of the two levels above it, and level the row's level.
// Empty trailing parts are omitted; an empty level or value yields "".
func SAPCheckKey(value, upper, upper1, level string) string {
	value = strings.TrimSpace(value)
	upper = strings.TrimSpace(upper)
	upper1 = strings.TrimSpace(upper1)
	level = strings.TrimSpace(level)
	if level == "" || value == "" {
		return ""
	}
	switch {
	case upper1 != "" && upper != "":
		return joinCheck([]string{value, upper, upper1}, level)
	case upper != "":
		return joinCheck([]string{value, upper}, level)
	default:
		return joinCheck([]string{value}, level)
	}
}

// CheckKey dispatches on kind. For KindFL, fields are the levels and length is the code
// length. For KindSAP, fields are value, upper, upper1 and level, and length is ignored.
func CheckKey(kind TemplateKind, fields []string, length int) string {
	switch kind {
	case KindFL:
		return FLCheckKey(fields, length)
	case KindSAP:
		padded := make([]string, 4)
		copy(padded, fields)
		return SAPCheckKey(padded[0], padded[1], padded[2], padded[3])
	default:
		return ""
	}
}

func joinCheck(parts []string, length string) string {
	return strings.Join(parts, CheckSeparator) + CheckSeparator + length
}
