// Package engine runs the functional location validation flow: shape checks, level
// decomposition, classification, template verification, reference differences and
// upload record construction.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/flcheck/internal/classification"
	"github.com/Veraticus/flcheck/internal/common"
	"github.com/Veraticus/flcheck/internal/hierarchy"
	"github.com/Veraticus/flcheck/internal/model"
	"github.com/Veraticus/flcheck/internal/pattern"
	"github.com/Veraticus/flcheck/internal/records"
	"github.com/Veraticus/flcheck/internal/rules"
	"github.com/Veraticus/flcheck/internal/table"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Stage names, in execution order.
const (
	StageMask        = "mask"
	StageLevels      = "levels"
	StageParents     = "parents"
	StageClassify    = "classify"
	StageVerify      = "verify"
	StageDifferences = "differences"
	StageRecords     = "records"
)

var stages = []string{
	StageMask, StageLevels, StageParents, StageClassify, StageVerify, StageDifferences, StageRecords,
}

// Config holds configuration options for the validation engine.
type Config struct {
	// SkipMask disables the generic shape check.
	SkipMask bool
	// AllowMixedLevels accepts input spanning several level 1 or level 2 values.
	AllowMixedLevels bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{}
}

// Resources are the loaded rule, guideline, dictionary and reference data of a run.
type Resources struct {
	Templates    *rules.TemplateSet
	Countries    *table.Table
	Technologies *table.Table
	Reference    Reference
	Categories   []classification.Category
	Findings     []model.Finding
}

// Engine orchestrates a validation run.
type Engine struct {
	logger    *slog.Logger
	progress  Progress
	resources Resources
	config    Config
}

// New creates an engine with the default configuration.
func New(resources Resources, logger *slog.Logger) *Engine {
	return NewWithConfig(resources, DefaultConfig(), logger)
}

// NewWithConfig creates an engine with a custom configuration.
func NewWithConfig(resources Resources, config Config, logger *slog.Logger) *Engine {
	return &Engine{
		logger:    common.OrNop(logger),
		progress:  NopProgress(),
		resources: resources,
		config:    config,
	}
}

// SetProgress installs a progress reporter.
func (e *Engine) SetProgress(p Progress) {
	if p == nil {
		p = NopProgress()
	}
	e.progress = p
}

// run carries the state of one Run call between stages.
type run struct {
	report *Report
	raw    string
	codes  []model.Code
	lines  []string
	// missing[n-1] holds the level n values absent from the snapshot.
	missing   [][]string
	checksAss []string
	checksGL  []string
}

// Run validates raw, one candidate code per line. Data problems (shape violations,
// codes matching no template) end the run early with a report describing them; input
// shape, pattern compilation and ambiguity errors are returned as errors.
func (e *Engine) Run(ctx context.Context, raw string) (*Report, error) {
	defer e.progress.Done()

	if e.resources.Templates == nil || e.resources.Templates.Len() == 0 {
		return nil, common.ErrNoTemplates
	}

	r := &run{
		raw:    raw,
		report: &Report{
			RunID:     uuid.NewString(),
			StartedAt: time.Now(),
			Findings:  append([]model.Finding(nil), e.resources.Findings...),
		},
	}

	e.logger.Info("Starting validation run", "run_id", r.report.RunID)

	steps := []func(context.Context, *run) (bool, error){
		e.stageMask,
		e.stageLevels,
		e.stageParents,
		e.stageClassify,
		e.stageVerify,
		e.stageDifferences,
		e.stageRecords,
	}

	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run %s cancelled before %s: %w", r.report.RunID, stages[i], err)
		}
		e.progress.Stage(stages[i], i+1, len(stages))

		done, err := step(ctx, r)
		if err != nil {
			return nil, fmt.Errorf("%s stage failed: %w", stages[i], err)
		}
		if done {
			break
		}
	}

	r.report.Duration = time.Since(r.report.StartedAt)
	e.logger.Info("Validation run finished",
		"run_id", r.report.RunID,
		"status", r.report.Status,
		"codes", len(r.report.Codes),
		"findings", len(r.report.Findings),
		"records", r.report.RecordCount(),
		"duration", r.report.Duration)

	return r.report, nil
}

func (e *Engine) stageMask(_ context.Context, r *run) (bool, error) {
	r.lines = hierarchy.ParseLines(strings.TrimPrefix(r.raw, "\ufeff"))
	if len(r.lines) == 0 {
		return false, fmt.Errorf("%w: no candidate codes", common.ErrEmptyInput)
	}
	if e.config.SkipMask {
		return false, nil
	}

	violations, err := pattern.CheckGenericMask(r.lines)
	if err == nil {
		return false, nil
	}
	e.logger.Warn("Input does not respect the functional location mask", "error", err)
	r.report.Violations = violations
	for _, v := range violations {
		r.report.Findings = append(r.report.Findings, v.Finding())
	}
	r.report.Codes = hierarchy.BuildCodes(r.lines)
	r.report.Status = StatusMaskFailed
	return true, nil
}

func (e *Engine) stageLevels(_ context.Context, r *run) (bool, error) {
	r.codes = hierarchy.BuildCodes(r.lines)
	r.report.Codes = r.codes

	if !e.config.AllowMixedLevels {
		for _, n := range []int{1, 2} {
			if _, err := hierarchy.UniqueLevel(r.codes, n); err != nil {
				return false, err
			}
		}
	}

	level1 := r.codes[0].Level(1)
	if len(level1) < 3 {
		return false, fmt.Errorf("%w: level 1 %q is too short to encode country and technology",
			common.ErrUnknownTechnology, level1)
	}
	r.report.Country = level1[:2]
	r.report.Technology = level1[2:3]

	name, err := e.lookup(e.resources.Countries, ColumnCountry, r.report.Country, common.ErrUnknownCountry, r)
	if err != nil {
		return false, err
	}
	r.report.CountryName = name

	name, err = e.lookup(e.resources.Technologies, ColumnTechCode, r.report.Technology, common.ErrUnknownTechnology, r)
	if err != nil {
		return false, err
	}
	r.report.TechnologyName = name

	e.logger.Info("Resolved country and technology",
		"country", r.report.Country,
		"country_name", r.report.CountryName,
		"technology", r.report.Technology,
		"technology_name", r.report.TechnologyName)
	return false, nil
}

func (e *Engine) lookup(dict *table.Table, column, value string, notFound error, r *run) (string, error) {
	if dict == nil {
		return "", nil
	}
	desc, ok, findings, err := table.LookupValue(dict, column, value, ColumnDescription)
	if err != nil {
		return "", err
	}
	r.report.Findings = append(r.report.Findings, findings...)
	if !ok {
		return "", fmt.Errorf("%w: %q not in %s", notFound, value, dict.Name)
	}
	return desc, nil
}

func (e *Engine) stageParents(_ context.Context, r *run) (bool, error) {
	missing := hierarchy.FindMissingParents(r.codes)
	if len(missing) > 0 {
		e.logger.Warn("Codes with missing parents", "count", len(missing))
	}
	r.report.Findings = append(r.report.Findings, hierarchy.MissingParentFindings(missing)...)
	return false, nil
}

func (e *Engine) stageClassify(_ context.Context, r *run) (bool, error) {
	categories := e.resources.Categories
	if len(categories) == 0 {
		categories = classification.CategoriesFromTemplates(e.resources.Templates.Templates())
	}

	classifier, err := classification.NewClassifier(categories, e.logger)
	if err != nil {
		return false, err
	}
	candidates := hierarchy.LevelsTable("candidates", r.codes)
	p, err := classifier.Classify(candidates, hierarchy.ColumnCode)
	if err != nil {
		return false, err
	}
	r.report.Findings = append(r.report.Findings, classifier.Findings()...)

	ok, reason := classification.ValidatePartition(candidates, p)
	r.report.Partition = &p
	r.report.PartitionValid = ok
	r.report.PartitionReason = reason
	if !ok {
		r.report.Findings = append(r.report.Findings,
			model.NewFinding(model.FindingPartition, candidates.Name, "%s", reason))
	}
	return false, nil
}

func (e *Engine) stageVerify(_ context.Context, r *run) (bool, error) {
	v := pattern.NewVerifier(e.logger)
	outcomes, err := v.Verify(
		pattern.CandidatesFromCodes(r.codes),
		pattern.PatternsFromTemplates(e.resources.Templates.Templates()),
	)
	if err != nil {
		return false, err
	}
	r.report.Outcomes = outcomes

	if invalid := r.report.Invalid(); len(invalid) > 0 {
		e.logger.Warn("Codes failed template verification", "invalid", len(invalid))
		r.report.Status = StatusInvalid
		return true, nil
	}
	return false, nil
}

func (e *Engine) stageDifferences(_ context.Context, r *run) (bool, error) {
	ref := e.resources.Reference

	r.missing = make([][]string, model.MaxLevels)
	for n := 1; n <= model.MaxLevels; n++ {
		candidates := hierarchy.LevelValues(r.codes, n)
		if len(candidates) == 0 {
			continue
		}
		known, err := levelValues(ref.Levels, n)
		if err != nil {
			return false, err
		}
		missing, err := missingValues(candidates, known)
		if err != nil {
			return false, err
		}
		r.missing[n-1] = missing
		r.report.Differences = append(r.report.Differences, Difference{
			Name:   fmt.Sprintf("Level_%d", n),
			Level:  n,
			Values: missing,
		})
	}

	checks := lo.Uniq(lo.Compact(lo.Map(r.codes, func(c model.Code, _ int) string { return c.Check })))

	var err error
	if r.checksAss, err = e.checkDifference(r, ref.CtrlAss, model.TableCtrlAss, checks); err != nil {
		return false, err
	}
	if r.checksGL, err = e.checkDifference(r, ref.Guideline, model.TableGuideline, checks); err != nil {
		return false, err
	}
	return false, nil
}

func (e *Engine) checkDifference(r *run, snapshot *table.Table, kind model.TableKind, checks []string) ([]string, error) {
	if len(checks) == 0 {
		return nil, nil
	}
	known, err := checkKeys(snapshot)
	if err != nil {
		return nil, err
	}
	missing, err := missingValues(checks, known)
	if err != nil {
		return nil, err
	}
	r.report.Differences = append(r.report.Differences, Difference{Name: string(kind), Values: missing})
	return missing, nil
}

func (e *Engine) stageRecords(_ context.Context, r *run) (bool, error) {
	out := make(map[model.TableKind][]model.Record)

	fl2, err := records.BuildControlFL2(r.missing, r.report.Technology, r.report.Country)
	if err != nil {
		return false, err
	}
	fln, err := records.BuildControlFLn(r.missing, r.report.Technology)
	if err != nil {
		return false, err
	}
	out[model.TableControlFL2] = fl2
	out[model.TableControlFLn] = fln

	mapper, err := records.NewMapper(e.resources.Templates, r.report.Technology, e.logger)
	if err != nil {
		return false, err
	}
	checks := []struct {
		kind model.TableKind
		keys []string
	}{
		{model.TableCtrlAss, r.checksAss},
		{model.TableGuideline, r.checksGL},
	}
	for _, c := range checks {
		if len(c.keys) == 0 {
			continue
		}
		recs, findings, err := mapper.Build(c.keys, c.kind)
		r.report.Findings = append(r.report.Findings, findings...)
		if err != nil && !errors.Is(err, common.ErrNoValidCodes) {
			return false, err
		}
		out[c.kind] = recs
	}

	r.report.Records = lo.PickBy(out, func(_ model.TableKind, recs []model.Record) bool {
		return len(recs) > 0
	})

	if r.report.RecordCount() > 0 {
		r.report.Status = StatusCompleted
	} else {
		r.report.Status = StatusUpToDate
	}
	return true, nil
}

// missingValues is Difference tolerating an empty reference, where everything is missing.
func missingValues(candidates, known []string) ([]string, error) {
	if len(known) == 0 {
		out := lo.Uniq(candidates)
		sort.Strings(out)
		return out, nil
	}
	return hierarchy.Difference(hierarchy.StringPtrs(candidates), hierarchy.StringPtrs(known))
}
