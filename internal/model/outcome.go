package model

import "fmt"

// MatchStatus is the result of checking one code against the templates of its length.
type MatchStatus string

// Match status constants.
const (
	StatusValid              MatchStatus = "valid"
	StatusNoMatch            MatchStatus = "no_match"
	StatusMultipleMatch      MatchStatus = "multiple_match"
	StatusNoPatternForLength MatchStatus = "no_pattern_for_length"
	StatusRowError           MatchStatus = "row_error"
)

// IsValid reports whether the status is StatusValid.
func (s MatchStatus) IsValid() bool {
	return s == StatusValid
}

// MatchOutcome records how one candidate fared against the pattern pool.
type MatchOutcome struct {
	Code     string      `json:"code"`
	Status   MatchStatus `json:"status"`
	Pattern  string      `json:"pattern,omitempty"`
	Message  string      `json:"message,omitempty"`
	Patterns []string    `json:"patterns,omitempty"`
	Length   int         `json:"length"`
	Index    int         `json:"index"`
}

// Valid reports whether the outcome is a single full match.
func (o MatchOutcome) Valid() bool {
	return o.Status.IsValid()
}

// Describe returns a human readable line for the outcome.
func (o MatchOutcome) Describe() string {
	if o.Valid() {
		return fmt.Sprintf("%s: valid (%s)", o.Code, o.Pattern)
	}
	return fmt.Sprintf("%s: %s", o.Code, o.Message)
}
