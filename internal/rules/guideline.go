package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Veraticus/flcheck/internal/common"
	"github.com/Veraticus/flcheck/internal/model"
	"github.com/Veraticus/flcheck/internal/table"
)

// ColumnFL is the guideline column holding token templates.
const ColumnFL = "FL"

// Derived column names, as exported with the template set.
const (
	ColumnLength = "FL_Lunghezza"
	ColumnRegex  = "FL_RE"
	ColumnSource = "Source_File"
)

// metadataColumns lists accepted header spellings for each template attribute.
var metadataColumns = map[string][]string{
	model.FieldSection:     {"Section", "SECTION", "Sezione"},
	model.FieldPart:        {"Part", "PART", "Parte"},
	model.FieldComponent:   {"Component", "COMPONENT", "Componente"},
	model.FieldElementType: {"ElementType", "Element Type", "ELEMENT_TYPE", "Tipo Elemento"},
	model.FieldObjectType:  {"ObjectType", "Object Type", "EQART"},
	model.FieldCatalog:     {"CatalogProfile", "Catalog Profile", "RBNR"},
}

// TemplateSet is the de-duplicated guideline template pool.
type TemplateSet struct {
	byLength  map[int][]model.Template
	templates []model.Template
}

// NewTemplateSet indexes templates by length. Templates are kept as given.
func NewTemplateSet(templates []model.Template) *TemplateSet {
	ts := &TemplateSet{
		templates: make([]model.Template, len(templates)),
		byLength:  make(map[int][]model.Template),
	}
	copy(ts.templates, templates)
	for _, t := range ts.templates {
		ts.byLength[t.Length] = append(ts.byLength[t.Length], t)
	}
	return ts
}

// Templates returns every template in load order.
func (ts *TemplateSet) Templates() []model.Template {
	out := make([]model.Template, len(ts.templates))
	copy(out, ts.templates)
	return out
}

// Len returns the number of templates.
func (ts *TemplateSet) Len() int {
	return len(ts.templates)
}

// ForLength returns the templates of the given length. An unknown length yields an empty
// slice.
func (ts *TemplateSet) ForLength(length int) []model.Template {
	src := ts.byLength[length]
	out := make([]model.Template, len(src))
	copy(out, src)
	return out
}

// ByLength returns a copy of the length index.
func (ts *TemplateSet) ByLength() map[int][]model.Template {
	out := make(map[int][]model.Template, len(ts.byLength))
	for k := range ts.byLength {
		out[k] = ts.ForLength(k)
	}
	return out
}

// Lengths returns the lengths present in the set, ascending.
func (ts *TemplateSet) Lengths() []int {
	out := make([]int, 0, len(ts.byLength))
	for k := range ts.byLength {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// Validate compiles every template regex and check regex. The first failure is returned
// as a PatternCompilationError naming the template and its source.
func (ts *TemplateSet) Validate() error {
	for _, t := range ts.templates {
		subject := fmt.Sprintf("%s row %d, template %s", t.Source, t.Row, t.FL)
		if _, err := regexp.Compile(common.Anchor(t.Regex)); err != nil {
			return &common.PatternCompilationError{Pattern: t.Regex, Subject: subject, Err: err}
		}
		if t.CheckRegex == "" {
			continue
		}
		if _, err := regexp.Compile(common.Anchor(t.CheckRegex)); err != nil {
			return &common.PatternCompilationError{Pattern: t.CheckRegex, Subject: subject, Err: err}
		}
	}
	return nil
}

// TemplateLength returns the number of dash-separated segments of a template.
func TemplateLength(fl string) int {
	return strings.Count(fl, model.LevelSeparator) + 1
}

// CompileCheckRegex builds the regex matching the check key of codes produced by fl.
// The template is split into levels before expansion so that dashes inside fragments do
// not shift levels. Templates shorter than the minimum check level yield "".
func CompileCheckRegex(fl string, rules RuleTable) string {
	segments := strings.Split(fl, model.LevelSeparator)
	length := len(segments)
	parts := model.CheckParts(segments, length)
	if parts == nil {
		return ""
	}
	compiled := make([]string, len(parts))
	for i, p := range parts {
		compiled[i] = rules.Compile(p)
	}
	return strings.Join(compiled, model.CheckSeparator) + model.CheckSeparator + strconv.Itoa(length)
}

// BuildTemplates loads guideline templates from sources, expands them with rules and
// removes templates whose expanded regex duplicates an earlier one. Sources without an
// FL column, rows with an empty FL and removed duplicates are reported as findings.
func BuildTemplates(rules RuleTable, sources ...*table.Table) (*TemplateSet, []model.Finding, error) {
	var (
		findings  []model.Finding
		templates []model.Template
	)

	for _, src := range sources {
		if src == nil {
			continue
		}
		if !src.Has(ColumnFL) {
			findings = append(findings, model.NewFinding(model.FindingSkippedSource, src.Name,
				"no %q column, source skipped", ColumnFL))
			continue
		}

		for i, row := range src.AllRows() {
			fl := strings.TrimSpace(row.Get(ColumnFL))
			if fl == "" {
				findings = append(findings, model.NewFinding(model.FindingSkippedRow, src.Name,
					"row %d has an empty %s value", i+1, ColumnFL))
				continue
			}
			templates = append(templates, buildTemplate(rules, src, row, fl))
		}
	}

	kept, dupFindings := dedupeTemplates(templates)
	findings = append(findings, dupFindings...)

	if len(kept) == 0 {
		return nil, findings, common.ErrNoTemplates
	}

	return NewTemplateSet(kept), findings, nil
}

func buildTemplate(rules RuleTable, src *table.Table, row table.Row, fl string) model.Template {
	t := model.Template{
		FL:         fl,
		Length:     TemplateLength(fl),
		Regex:      rules.Compile(fl),
		CheckRegex: CompileCheckRegex(fl, rules),
		Source:     src.Name,
		Row:        row.Index + 1,
	}

	t.Section = metadata(row, model.FieldSection)
	t.Part = metadata(row, model.FieldPart)
	t.Component = metadata(row, model.FieldComponent)
	t.ElementType = metadata(row, model.FieldElementType)
	t.ObjectType = metadata(row, model.FieldObjectType)
	t.CatalogProfile = metadata(row, model.FieldCatalog)

	known := map[string]bool{ColumnFL: true}
	for _, names := range metadataColumns {
		for _, n := range names {
			known[n] = true
		}
	}
	for _, h := range src.Header {
		if known[h] || h == "" {
			continue
		}
		if t.Extra == nil {
			t.Extra = make(map[string]string)
		}
		t.Extra[h] = strings.TrimSpace(row.Get(h))
	}

	return t
}

func metadata(row table.Row, field string) string {
	tbl := row.Table()
	for _, name := range metadataColumns[field] {
		if tbl.Has(name) {
			return strings.TrimSpace(row.Get(name))
		}
	}
	return ""
}

// dedupeTemplates keeps the first template of every expanded regex.
func dedupeTemplates(templates []model.Template) ([]model.Template, []model.Finding) {
	first := make(map[string]model.Template, len(templates))
	kept := make([]model.Template, 0, len(templates))
	var findings []model.Finding

	for _, t := range templates {
		if prev, ok := first[t.Regex]; ok {
			findings = append(findings, model.NewFinding(model.FindingDuplicateTemplate, t.FL,
				"%s row %d expands to the same regex as %s (%s row %d) and was dropped",
				t.Source, t.Row, prev.FL, prev.Source, prev.Row))
			continue
		}
		first[t.Regex] = t
		kept = append(kept, t)
	}

	return kept, findings
}

// Table renders the template set with its derived columns, for diagnostic export.
func (ts *TemplateSet) Table() *table.Table {
	out := table.New("templates", ColumnFL, ColumnLength, ColumnRegex, "Check_RE", ColumnSource)
	for _, t := range ts.templates {
		out.Append(t.FL, strconv.Itoa(t.Length), t.Regex, t.CheckRegex, t.Source)
	}
	return out
}
