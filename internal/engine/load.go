package engine

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/flcheck/internal/classification"
	"github.com/Veraticus/flcheck/internal/common"
	"github.com/Veraticus/flcheck/internal/model"
	"github.com/Veraticus/flcheck/internal/rules"
	"github.com/Veraticus/flcheck/internal/table"
)

// Sources names the files a run's resources are loaded from. Empty optional paths are
// skipped.
type Sources struct {
	RulesFile      string
	CategoriesFile string
	CountryFile    string
	TechnologyFile string
	LevelsFile     string
	CtrlAssFile    string
	GuidelineFile  string
	GuidelineFiles []string
}

// LoadTemplates reads the rule table and guideline files and builds the template pool.
func LoadTemplates(rulesFile string, guidelineFiles []string, logger *slog.Logger) (*rules.TemplateSet, []model.Finding, error) {
	logger = common.OrNop(logger)

	if rulesFile == "" {
		return nil, nil, fmt.Errorf("%w: rules file", common.ErrMissingConfig)
	}
	if len(guidelineFiles) == 0 {
		return nil, nil, fmt.Errorf("%w: guideline files", common.ErrMissingConfig)
	}

	ruleTable, err := table.ReadCSVFile(rulesFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rules: %w", err)
	}
	rt, findings, err := rules.LoadRuleTable(ruleTable)
	if err != nil {
		return nil, findings, err
	}

	sources := make([]*table.Table, 0, len(guidelineFiles))
	for _, path := range guidelineFiles {
		t, err := table.ReadCSVFile(path)
		if err != nil {
			return nil, findings, fmt.Errorf("failed to read guideline %s: %w", path, err)
		}
		sources = append(sources, t)
	}

	ts, tplFindings, err := rules.BuildTemplates(rt, sources...)
	findings = append(findings, tplFindings...)
	if err != nil {
		return nil, findings, err
	}
	if err := ts.Validate(); err != nil {
		return nil, findings, err
	}

	logger.Info("Loaded templates",
		"rules", rt.Len(),
		"sources", len(sources),
		"templates", ts.Len(),
		"lengths", ts.Lengths())

	return ts, findings, nil
}

// LoadResources reads every source into Resources.
func LoadResources(src Sources, logger *slog.Logger) (Resources, error) {
	logger = common.OrNop(logger)

	ts, findings, err := LoadTemplates(src.RulesFile, src.GuidelineFiles, logger)
	if err != nil {
		return Resources{}, err
	}
	res := Resources{Templates: ts, Findings: findings}

	if src.CategoriesFile != "" {
		if res.Categories, err = classification.LoadCategoriesFile(src.CategoriesFile); err != nil {
			return Resources{}, err
		}
	}
	if res.Countries, err = readOptionalCSV(src.CountryFile); err != nil {
		return Resources{}, err
	}
	if res.Technologies, err = readOptionalCSV(src.TechnologyFile); err != nil {
		return Resources{}, err
	}

	snapshots := []struct {
		dst  **table.Table
		path string
		name string
	}{
		{&res.Reference.Levels, src.LevelsFile, "levels"},
		{&res.Reference.CtrlAss, src.CtrlAssFile, string(model.TableCtrlAss)},
		{&res.Reference.Guideline, src.GuidelineFile, string(model.TableGuideline)},
	}
	for _, s := range snapshots {
		if s.path == "" {
			return Resources{}, fmt.Errorf("%w: %s reference snapshot", common.ErrMissingConfig, s.name)
		}
		t, dumpFindings, err := ReadSnapshot(s.path, s.name)
		if err != nil {
			return Resources{}, err
		}
		res.Findings = append(res.Findings, dumpFindings...)
		*s.dst = t
	}

	logger.Debug("Loaded resources",
		"categories", len(res.Categories),
		"findings", len(res.Findings))

	return res, nil
}

// ReadSnapshot reads a reference snapshot. CSV files are read as semicolon tables;
// anything else is taken as a list pasted from the SAP data browser.
func ReadSnapshot(path, name string) (*table.Table, []model.Finding, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		t, err := table.ReadCSVFile(path)
		if err != nil {
			return nil, nil, err
		}
		t.Name = name
		return t, nil, nil
	}

	raw, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	return table.ParseSAPDump(string(raw), name)
}

func readOptionalCSV(path string) (*table.Table, error) {
	if path == "" {
		return nil, nil
	}
	return table.ReadCSVFile(path)
}
