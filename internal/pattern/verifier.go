// Package pattern checks candidate codes against the template regexes of their length,
// requiring exactly one full match for a code to be valid.
package pattern

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"

	"github.com/Veraticus/flcheck/internal/common"
	"github.com/Veraticus/flcheck/internal/model"
)

// Candidate is a code to verify with its declared length.
type Candidate struct {
	Value  string
	Length int
}

// Pattern is a template regex applicable to codes of one length.
type Pattern struct {
	Regex  string
	Length int
}

// CandidatesFromCodes converts decomposed codes into candidates.
func CandidatesFromCodes(codes []model.Code) []Candidate {
	out := make([]Candidate, len(codes))
	for i, c := range codes {
		out[i] = Candidate{Value: c.Value, Length: c.Length}
	}
	return out
}

// PatternsFromTemplates converts templates into patterns, keeping their order.
func PatternsFromTemplates(templates []model.Template) []Pattern {
	out := make([]Pattern, len(templates))
	for i, t := range templates {
		out[i] = Pattern{Regex: t.Regex, Length: t.Length}
	}
	return out
}

// Verifier evaluates candidates against a pattern pool.
type Verifier struct {
	logger *slog.Logger
	match  func(re *regexp.Regexp, value string) bool
}

// NewVerifier creates a verifier logging to logger.
func NewVerifier(logger *slog.Logger) *Verifier {
	return &Verifier{
		logger: common.OrNop(logger),
		match: func(re *regexp.Regexp, value string) bool {
			return re.MatchString(value)
		},
	}
}

// compiledPattern pairs a pattern source with its anchored regex.
type compiledPattern struct {
	re     *regexp.Regexp
	source string
}

// Verify checks every candidate against the patterns of the same length. All patterns are
// compiled before any candidate is evaluated; the first invalid one aborts the batch with a
// PatternCompilationError. Outcomes are returned in candidate order.
func (v *Verifier) Verify(candidates []Candidate, patterns []Pattern) ([]model.MatchOutcome, error) {
	buckets, err := compileBuckets(patterns)
	if err != nil {
		return nil, err
	}

	outcomes := make([]model.MatchOutcome, len(candidates))
	invalid := 0
	for i, c := range candidates {
		outcomes[i] = v.verifyOne(i, c, buckets)
		if !outcomes[i].Valid() {
			invalid++
		}
	}

	v.logger.Info("Verified candidates against templates",
		"candidates", len(candidates),
		"patterns", len(patterns),
		"lengths", len(buckets),
		"invalid", invalid)

	return outcomes, nil
}

// verifyOne evaluates a single candidate; a panic becomes a row error outcome.
func (v *Verifier) verifyOne(index int, c Candidate, buckets map[int][]compiledPattern) (out model.MatchOutcome) {
	out = model.MatchOutcome{Code: c.Value, Length: c.Length, Index: index}

	defer func() {
		if r := recover(); r != nil {
			v.logger.Error("Row evaluation failed",
				"index", index,
				"code", c.Value,
				"panic", r)
			out.Status = model.StatusRowError
			out.Pattern = ""
			out.Patterns = nil
			out.Message = fmt.Sprintf("error while checking %q: %v", c.Value, r)
		}
	}()

	bucket, ok := buckets[c.Length]
	if !ok {
		out.Status = model.StatusNoPatternForLength
		out.Message = fmt.Sprintf("no pattern defined for length %d", c.Length)
		return out
	}

	var matched []string
	for _, p := range bucket {
		if v.match(p.re, c.Value) {
			matched = append(matched, p.source)
		}
	}

	switch len(matched) {
	case 0:
		out.Status = model.StatusNoMatch
		out.Message = fmt.Sprintf("%q matches none of the %d patterns of length %d", c.Value, len(bucket), c.Length)
	case 1:
		out.Status = model.StatusValid
		out.Pattern = matched[0]
	default:
		out.Status = model.StatusMultipleMatch
		out.Patterns = matched
		out.Message = fmt.Sprintf("%q matches %d patterns of length %d", c.Value, len(matched), c.Length)
	}
	return out
}

// Verify is a convenience wrapper using a verifier without logging.
func Verify(candidates []Candidate, patterns []Pattern) ([]model.MatchOutcome, error) {
	return NewVerifier(nil).Verify(candidates, patterns)
}

// compileBuckets compiles each distinct source once and groups patterns by length.
func compileBuckets(patterns []Pattern) (map[int][]compiledPattern, error) {
	cache := make(map[string]*regexp.Regexp)
	buckets := make(map[int][]compiledPattern)

	for i, p := range patterns {
		re, ok := cache[p.Regex]
		if !ok {
			var err error
			re, err = common.CompileFull(p.Regex)
			if err != nil {
				return nil, &common.PatternCompilationError{
					Err:     err,
					Pattern: p.Regex,
					Subject: fmt.Sprintf("pattern %d (length %d)", i+1, p.Length),
				}
			}
			cache[p.Regex] = re
		}
		buckets[p.Length] = append(buckets[p.Length], compiledPattern{re: re, source: p.Regex})
	}

	return buckets, nil
}

// Summary counts outcomes by status.
func Summary(outcomes []model.MatchOutcome) map[model.MatchStatus]int {
	out := make(map[model.MatchStatus]int)
	for _, o := range outcomes {
		out[o.Status]++
	}
	return out
}

// Invalid returns the outcomes that are not valid, ordered by candidate index.
func Invalid(outcomes []model.MatchOutcome) []model.MatchOutcome {
	var out []model.MatchOutcome
	for _, o := range outcomes {
		if !o.Valid() {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
