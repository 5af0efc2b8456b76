// Package records turns missing check keys and level values into upload records for the
// SAP control tables.
package records

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/Veraticus/flcheck/internal/common"
	"github.com/Veraticus/flcheck/internal/model"
	"github.com/Veraticus/flcheck/internal/rules"
)

// Supported check key lengths.
const (
	MinRecordLength = 3
	MaxRecordLength = 6
)

// TPLKZ returns the structure indicator of a technology.
func TPLKZ(technology string) string {
	return "Z-R" + technology + "S"
}

// Mapper builds ZPMR_CTRL_ASS and ZPM4R_GL_T_FL records from check keys.
type Mapper struct {
	logger     *slog.Logger
	pool       *rules.TemplateSet
	cache      map[string]*regexp.Regexp
	technology string
}

// NewMapper creates a mapper matching check keys against the templates of pool.
func NewMapper(pool *rules.TemplateSet, technology string, logger *slog.Logger) (*Mapper, error) {
	if pool == nil || pool.Len() == 0 {
		return nil, common.ErrNoTemplates
	}
	if strings.TrimSpace(technology) == "" {
		return nil, fmt.Errorf("%w: empty technology", common.ErrUnknownTechnology)
	}
	return &Mapper{
		logger:     common.OrNop(logger),
		pool:       pool,
		technology: strings.TrimSpace(technology),
		cache:      make(map[string]*regexp.Regexp),
	}, nil
}

// Build maps every check key to a record of the given table. A key not ending in its
// length digit, matching no template or matching several templates aborts the batch.
// Keys of unsupported lengths are skipped and reported. When no key yields a record the
// error wraps ErrNoValidCodes.
func (m *Mapper) Build(codes []string, kind model.TableKind) ([]model.Record, []model.Finding, error) {
	if kind != model.TableCtrlAss && kind != model.TableGuideline {
		return nil, nil, fmt.Errorf("%w: %s", common.ErrUnknownTableKind, kind)
	}

	var (
		records  []model.Record
		findings []model.Finding
	)
	for _, raw := range codes {
		code := strings.TrimSpace(raw)
		if code == "" {
			continue
		}

		length, err := declaredLength(code)
		if err != nil {
			return nil, findings, err
		}
		if length < MinRecordLength || length > MaxRecordLength {
			m.logger.Warn("Skipping check key of unsupported length",
				"code", code,
				"length", length)
			findings = append(findings, model.NewFinding(model.FindingSkippedRow, code,
				"check key length %d is outside %d-%d", length, MinRecordLength, MaxRecordLength))
			continue
		}

		tmpl, err := m.match(code, length)
		if err != nil {
			return nil, findings, err
		}
		records = append(records, m.record(code, length, tmpl, kind))
	}

	if len(records) == 0 {
		return nil, findings, fmt.Errorf("%s: %w", kind, common.ErrNoValidCodes)
	}

	m.logger.Debug("Built records",
		"table", kind,
		"codes", len(codes),
		"records", len(records))

	return records, findings, nil
}

// match returns the single template of length whose check regex fully matches code.
func (m *Mapper) match(code string, length int) (model.Template, error) {
	var (
		matched []model.Template
		sources []string
	)
	for _, t := range m.pool.ForLength(length) {
		if t.CheckRegex == "" {
			continue
		}
		re, err := m.compile(t)
		if err != nil {
			return model.Template{}, err
		}
		if re.MatchString(code) {
			matched = append(matched, t)
			sources = append(sources, t.CheckRegex)
		}
	}

	switch len(matched) {
	case 1:
		return matched[0], nil
	case 0:
		return model.Template{}, fmt.Errorf("%w: check key %q (length %d)", common.ErrNoPatternMatch, code, length)
	default:
		return model.Template{}, &common.AmbiguousMatchError{Code: code, Patterns: sources}
	}
}

func (m *Mapper) compile(t model.Template) (*regexp.Regexp, error) {
	if re, ok := m.cache[t.CheckRegex]; ok {
		return re, nil
	}
	re, err := common.CompileFull(t.CheckRegex)
	if err != nil {
		return nil, &common.PatternCompilationError{
			Err:     err,
			Pattern: t.CheckRegex,
			Subject: "check key of template " + t.FL,
		}
	}
	m.cache[t.CheckRegex] = re
	return re, nil
}

func (m *Mapper) record(code string, length int, t model.Template, kind model.TableKind) model.Record {
	parts := strings.Split(code, model.CheckSeparator)
	part := func(i int) string {
		if i < len(parts)-1 {
			return parts[i]
		}
		return ""
	}

	fields := map[string]string{
		model.FieldValue:   part(0),
		model.FieldTPLKZ:   TPLKZ(m.technology),
		model.FieldFLTYP:   m.technology,
		model.FieldFLLevel: strconv.Itoa(length),
	}
	if length > 3 {
		fields[model.FieldSubValue] = part(1)
	}
	if length > 4 {
		fields[model.FieldSubValue2] = part(2)
	}

	switch kind {
	case model.TableCtrlAss:
		fields[model.FieldSection] = t.Section
		fields[model.FieldPart] = t.Part
		fields[model.FieldComponent] = t.Component
		fields[model.FieldElementType] = t.ElementType
	case model.TableGuideline:
		fields[model.FieldObjectType] = t.ObjectType
		fields[model.FieldCatalog] = t.CatalogProfile
	}

	return model.Record{Table: kind, Fields: fields}
}

// declaredLength reads the length digit that ends a check key.
func declaredLength(code string) (int, error) {
	last := code[len(code)-1]
	if last < '1' || last > '9' {
		return 0, fmt.Errorf("%w: %q does not end with a length digit", common.ErrInvalidCheckKey, code)
	}
	return int(last - '0'), nil
}

// BuildRecords maps check keys to records of kind using a mapper without logging.
func BuildRecords(codes []string, pool *rules.TemplateSet, technology string, kind model.TableKind) ([]model.Record, error) {
	m, err := NewMapper(pool, technology, nil)
	if err != nil {
		return nil, err
	}
	recs, _, err := m.Build(codes, kind)
	return recs, err
}
