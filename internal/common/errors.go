// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
	"strings"
)

// Common application errors.
var (
	// Input shape errors.
	ErrNotTabular    = errors.New("input is not tabular")
	ErrEmptyInput    = errors.New("input is empty")
	ErrMissingColumn = errors.New("required column is missing")

	// Pattern errors.
	ErrInvalidPattern  = errors.New("invalid regular expression")
	ErrAmbiguousMatch  = errors.New("code matches more than one pattern")
	ErrNoPatternMatch  = errors.New("code matches no pattern")
	ErrInvalidCheckKey = errors.New("invalid check key")

	// Record errors.
	ErrNoValidCodes       = errors.New("no valid codes found")
	ErrUnsupportedLength  = errors.New("unsupported functional location length")
	ErrNoTemplates        = errors.New("no guideline templates loaded")
	ErrUnknownTableKind   = errors.New("unknown table kind")
	ErrUnknownTechnology  = errors.New("technology code not found")
	ErrUnknownCountry     = errors.New("country code not found")
	ErrMaskViolation      = errors.New("codes do not respect the functional location mask")
	ErrNonUniqueLevel     = errors.New("level holds more than one distinct value")
	ErrValidationFailures = errors.New("one or more codes failed validation")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// InputShapeError reports malformed input: a nil or empty table, or a missing column.
// It always names the offending table and, when relevant, the column.
type InputShapeError struct {
	Err    error
	Table  string
	Column string
}

func (e *InputShapeError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s: table %q, column %q", e.Err, e.Table, e.Column)
	}
	return fmt.Sprintf("%s: table %q", e.Err, e.Table)
}

func (e *InputShapeError) Unwrap() error {
	return e.Err
}

// NewInputShapeError creates a new input shape error.
func NewInputShapeError(err error, table, column string) error {
	return &InputShapeError{Err: err, Table: table, Column: column}
}

// PatternCompilationError reports a rule fragment or composed template that is not a valid regex.
type PatternCompilationError struct {
	Err     error
	Pattern string
	Subject string
}

func (e *PatternCompilationError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("%s %q (%s): %v", ErrInvalidPattern, e.Pattern, e.Subject, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", ErrInvalidPattern, e.Pattern, e.Err)
}

func (e *PatternCompilationError) Unwrap() error {
	return ErrInvalidPattern
}

// Cause returns the underlying regexp error.
func (e *PatternCompilationError) Cause() error {
	return e.Err
}

// AmbiguousMatchError reports a code that fully matches several patterns of the same length.
// It signals an authoring defect in the guideline set, not in the code.
type AmbiguousMatchError struct {
	Code     string
	Patterns []string
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("%s: %q matches %d patterns: %s",
		ErrAmbiguousMatch, e.Code, len(e.Patterns), strings.Join(e.Patterns, ", "))
}

func (e *AmbiguousMatchError) Unwrap() error {
	return ErrAmbiguousMatch
}
