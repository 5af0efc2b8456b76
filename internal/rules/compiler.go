// Package rules expands rule tokens into regular expressions and builds the guideline
// template set that codes are validated against.
package rules

import (
	"sort"
	"strings"

	"github.com/Veraticus/flcheck/internal/common"
	"github.com/Veraticus/flcheck/internal/model"
	"github.com/Veraticus/flcheck/internal/table"
)

// RuleTable maps rule tokens to regex fragments. It is immutable once built.
type RuleTable struct {
	byToken map[string]string
	rules   []model.Rule
	ordered []model.Rule
}

// NewRuleTable builds a rule table from rules in table order. Rules with a blank token
// or fragment are skipped; a token seen twice keeps its first fragment. Both cases are
// reported as findings.
func NewRuleTable(rules []model.Rule) (RuleTable, []model.Finding) {
	var findings []model.Finding
	rt := RuleTable{byToken: make(map[string]string, len(rules))}

	for i, r := range rules {
		token := strings.TrimSpace(r.Token)
		fragment := strings.TrimSpace(r.Fragment)
		if token == "" || fragment == "" {
			findings = append(findings, model.NewFinding(model.FindingSkippedRow, "rules",
				"row %d has an empty token or fragment", i+1))
			continue
		}
		if prev, ok := rt.byToken[token]; ok {
			findings = append(findings, model.NewFinding(model.FindingDuplicateRule, token,
				"token defined more than once, keeping %q and ignoring %q", prev, fragment))
			continue
		}
		rt.byToken[token] = fragment
		rt.rules = append(rt.rules, model.Rule{Token: token, Fragment: fragment})
	}

	rt.ordered = make([]model.Rule, len(rt.rules))
	copy(rt.ordered, rt.rules)
	sort.SliceStable(rt.ordered, func(i, j int) bool {
		return len(rt.ordered[i].Token) > len(rt.ordered[j].Token)
	})

	return rt, findings
}

// LoadRuleTable reads a rule table whose first column holds tokens and second column
// holds fragments.
func LoadRuleTable(t *table.Table) (RuleTable, []model.Finding, error) {
	if t == nil {
		return RuleTable{}, nil, common.NewInputShapeError(common.ErrNotTabular, "rules", "")
	}
	if len(t.Header) < 2 {
		return RuleTable{}, nil, common.NewInputShapeError(common.ErrMissingColumn, t.Name, "fragment (second column)")
	}

	rules := make([]model.Rule, 0, t.Len())
	for _, row := range t.Rows {
		rules = append(rules, model.Rule{Token: row[0], Fragment: row[1]})
	}

	rt, findings := NewRuleTable(rules)
	if rt.Len() == 0 {
		return RuleTable{}, findings, common.NewInputShapeError(common.ErrEmptyInput, t.Name, t.Header[0])
	}
	return rt, findings, nil
}

// Len returns the number of rules.
func (rt RuleTable) Len() int {
	return len(rt.rules)
}

// Rules returns the rules in table order.
func (rt RuleTable) Rules() []model.Rule {
	out := make([]model.Rule, len(rt.rules))
	copy(out, rt.rules)
	return out
}

// Fragment returns the fragment of token.
func (rt RuleTable) Fragment(token string) (string, bool) {
	f, ok := rt.byToken[token]
	return f, ok
}

// span is a piece of a template being compiled. Expanded spans hold fragments and are
// never searched for tokens again.
type span struct {
	text     string
	expanded bool
}

// Compile expands every token occurring in template into its fragment. See CompileRegex.
func (rt RuleTable) Compile(template string) string {
	if len(rt.ordered) == 0 || template == "" {
		return template
	}

	spans := []span{{text: template}}
	for _, r := range rt.ordered {
		next := make([]span, 0, len(spans))
		for _, sp := range spans {
			if sp.expanded || !strings.Contains(sp.text, r.Token) {
				next = append(next, sp)
				continue
			}
			for k, part := range strings.Split(sp.text, r.Token) {
				if k > 0 {
					next = append(next, span{text: r.Fragment, expanded: true})
				}
				if part != "" {
					next = append(next, span{text: part})
				}
			}
		}
		spans = next
	}

	var b strings.Builder
	b.Grow(len(template) * 4)
	for _, sp := range spans {
		b.WriteString(sp.text)
	}
	return b.String()
}

// CompileRegex replaces every literal occurrence of a rule token in template with its
// regex fragment. Each token, longest first with ties in table order, has all of its
// occurrences replaced before the next token is tried, so a short token never consumes
// part of a longer one. Substituted fragments are not scanned again.
// The result is not validated; an invalid fragment surfaces when the caller compiles it.
func CompileRegex(template string, rules RuleTable) string {
	return rules.Compile(template)
}
