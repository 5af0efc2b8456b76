package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/flcheck/internal/common"
	"github.com/Veraticus/flcheck/internal/model"
	"github.com/Veraticus/flcheck/internal/rules"
	"github.com/Veraticus/flcheck/internal/table"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validInput = `ITB
ITB-B001
ITB-B001-01
ITB-B001-02
ITB-B001-01-ABC
`

func testTemplates(t *testing.T) *rules.TemplateSet {
	t.Helper()

	rt, _ := rules.NewRuleTable([]model.Rule{
		{Token: "PPP", Fragment: "[A-Z]{2}B"},
		{Token: "SSSS", Fragment: "B[0-9]{3}"},
		{Token: "NN", Fragment: "[0-9]{2}"},
		{Token: "XXX", Fragment: "[A-Z]{3}"},
	})
	guideline := table.New("guideline.csv", "FL", "Section", "Part", "Component", "Element Type", "EQART", "RBNR")
	guideline.Append("PPP")
	guideline.Append("PPP-SSSS")
	guideline.Append("PPP-SSSS-NN", "S1", "P1", "C1", "E1", "OBJ1", "CAT1")
	guideline.Append("PPP-SSSS-NN-XXX", "S2", "P2", "C2", "E2", "OBJ2", "CAT2")

	ts, _, err := rules.BuildTemplates(rt, guideline)
	require.NoError(t, err)
	return ts
}

func snapshot(name string, rows ...[]string) *table.Table {
	t := table.New(name, ColumnLevelValue, ColumnUpperValue, ColumnUpperValue1, ColumnLevel)
	for _, r := range rows {
		t.Append(r...)
	}
	return t
}

func testResources(t *testing.T) Resources {
	t.Helper()

	countries := table.New("Country.csv", ColumnCountry, ColumnDescription)
	countries.Append("IT", "Italy")
	techs := table.New("Technology.csv", ColumnTechCode, ColumnDescription)
	techs.Append("B", "Bess")

	levels := table.New("levels", ColumnLevelValue, ColumnLevel)
	levels.Append("ITB", "1")
	levels.Append("B001", "2")
	levels.Append("01", "3")

	return Resources{
		Templates:    testTemplates(t),
		Countries:    countries,
		Technologies: techs,
		Reference: Reference{
			Levels:    levels,
			CtrlAss:   snapshot("ZPMR_CTRL_ASS", []string{"01", "", "", "3"}),
			Guideline: snapshot("ZPM4R_GL_T_FL", []string{"01", "", "", "3"}, []string{"02", "", "", "3"}, []string{"ABC", "01", "", "4"}),
		},
	}
}

type recordingProgress struct {
	stages []string
	done   int
}

func (p *recordingProgress) Stage(name string, _, _ int) { p.stages = append(p.stages, name) }
func (p *recordingProgress) Done()                       { p.done++ }

func TestEngine_Run_Completed(t *testing.T) {
	e := New(testResources(t), common.NopLogger())
	progress := &recordingProgress{}
	e.SetProgress(progress)

	report, err := e.Run(context.Background(), validInput)
	require.NoError(t, err)

	_, err = uuid.Parse(report.RunID)
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, report.Status)
	assert.True(t, report.OK())
	assert.Equal(t, "IT", report.Country)
	assert.Equal(t, "Italy", report.CountryName)
	assert.Equal(t, "B", report.Technology)
	assert.Equal(t, "Bess", report.TechnologyName)
	assert.Len(t, report.Codes, 5)
	assert.Equal(t, 5, report.ValidCount())
	assert.True(t, report.PartitionValid)
	require.NotNil(t, report.Partition)
	assert.Equal(t, 5, report.Partition.Total())

	assert.Empty(t, report.Records[model.TableControlFL2])
	fln := report.Records[model.TableControlFLn]
	require.Len(t, fln, 2)
	assert.Equal(t, []string{"Z-RBS", "B", "3", "02"}, fln[0].Values())
	assert.Equal(t, []string{"Z-RBS", "B", "4", "ABC"}, fln[1].Values())

	ass := report.Records[model.TableCtrlAss]
	require.Len(t, ass, 2)
	assert.Equal(t, []string{"02", "", "", "Z-RBS", "B", "3", "S1", "P1", "C1", "E1"}, ass[0].Values())
	assert.Equal(t, []string{"ABC", "01", "", "Z-RBS", "B", "4", "S2", "P2", "C2", "E2"}, ass[1].Values())

	_, hasGL := report.Records[model.TableGuideline]
	assert.False(t, hasGL)
	assert.Equal(t, 4, report.RecordCount())
	assert.Len(t, report.AllRecords(), 4)

	assert.Equal(t, stages, progress.stages)
	assert.Equal(t, 1, progress.done)
}

func TestEngine_Run_Differences(t *testing.T) {
	report, err := New(testResources(t), nil).Run(context.Background(), validInput)
	require.NoError(t, err)

	byName := make(map[string][]string)
	for _, d := range report.Differences {
		byName[d.Name] = d.Values
	}
	assert.Nil(t, byName["Level_1"])
	assert.Equal(t, []string{"02"}, byName["Level_3"])
	assert.Equal(t, []string{"ABC"}, byName["Level_4"])
	assert.Equal(t, []string{"02_3", "ABC_01_4"}, byName[string(model.TableCtrlAss)])
	assert.Nil(t, byName[string(model.TableGuideline)])
}

func TestEngine_Run_UpToDate(t *testing.T) {
	res := testResources(t)
	res.Reference.Levels.Append("02", "3")
	res.Reference.Levels.Append("ABC", "4")
	res.Reference.CtrlAss = res.Reference.Guideline

	report, err := New(res, nil).Run(context.Background(), validInput)
	require.NoError(t, err)
	assert.Equal(t, StatusUpToDate, report.Status)
	assert.Zero(t, report.RecordCount())
}

func TestEngine_Run_MaskFailure(t *testing.T) {
	report, err := New(testResources(t), nil).Run(context.Background(), "itb\nITB-B001\n")
	require.NoError(t, err)

	assert.Equal(t, StatusMaskFailed, report.Status)
	assert.False(t, report.OK())
	require.Len(t, report.Violations, 1)
	assert.Equal(t, 1, report.Violations[0].Line)
	assert.Empty(t, report.Outcomes)
}

func TestEngine_Run_InvalidCodes(t *testing.T) {
	report, err := New(testResources(t), nil).Run(context.Background(), "ITB\nITB-B001\nITB-B001-1X\n")
	require.NoError(t, err)

	assert.Equal(t, StatusInvalid, report.Status)
	invalid := report.Invalid()
	require.Len(t, invalid, 1)
	assert.Equal(t, "ITB-B001-1X", invalid[0].Code)
	assert.Equal(t, model.StatusNoMatch, invalid[0].Status)
	assert.Empty(t, report.Records)
}

func TestEngine_Run_MissingParentsReported(t *testing.T) {
	report, err := New(testResources(t), nil).Run(context.Background(), "ITB\nITB-B001-01\n")
	require.NoError(t, err)

	var missing []string
	for _, f := range report.Findings {
		if f.Kind == model.FindingMissingParent {
			missing = append(missing, f.Subject)
		}
	}
	assert.Equal(t, []string{"ITB-B001"}, missing)
}

func TestEngine_Run_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		mutate  func(*Resources)
		config  Config
		wantErr error
	}{
		{
			name:    "empty input",
			input:   " \n\n",
			wantErr: common.ErrEmptyInput,
		},
		{
			name:    "several level 1 values",
			input:   "ITB\nESB\n",
			wantErr: common.ErrNonUniqueLevel,
		},
		{
			name:    "unknown country",
			input:   "FRB\n",
			wantErr: common.ErrUnknownCountry,
		},
		{
			name:    "unknown technology",
			input:   "ITB\n",
			mutate:  func(r *Resources) { r.Technologies = table.New("Technology.csv", ColumnTechCode, ColumnDescription) },
			wantErr: common.ErrUnknownTechnology,
		},
		{
			name:    "no templates",
			input:   validInput,
			mutate:  func(r *Resources) { r.Templates = nil },
			wantErr: common.ErrNoTemplates,
		},
		{
			name:    "missing snapshot",
			input:   validInput,
			mutate:  func(r *Resources) { r.Reference.Levels = nil },
			wantErr: common.ErrNotTabular,
		},
		{
			name:    "short level 1 without mask",
			input:   "AB\n",
			config:  Config{SkipMask: true},
			wantErr: common.ErrUnknownTechnology,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := testResources(t)
			if tt.mutate != nil {
				tt.mutate(&res)
			}
			report, err := NewWithConfig(res, tt.config, nil).Run(context.Background(), tt.input)
			assert.Nil(t, report)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEngine_Run_AllowMixedLevels(t *testing.T) {
	res := testResources(t)
	report, err := NewWithConfig(res, Config{AllowMixedLevels: true}, nil).
		Run(context.Background(), "ITB\nITB-B001\nITB-B002\n")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, report.Status)
	assert.Len(t, report.Records[model.TableControlFL2], 1)
	assert.Equal(t, []string{"Z-RBS", "B", "2", "B002", "IT"}, report.Records[model.TableControlFL2][0].Values())
}

func TestEngine_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	progress := &recordingProgress{}
	e := New(testResources(t), nil)
	e.SetProgress(progress)

	_, err := e.Run(ctx, validInput)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, progress.stages)
	assert.Equal(t, 1, progress.done)
}

func TestLoadResources(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	src := Sources{
		RulesFile:      write("rules.csv", "Token;Fragment\nPPP;[A-Z]{2}B\nSSSS;B[0-9]{3}\nNN;[0-9]{2}\nXXX;[A-Z]{3}\n"),
		GuidelineFiles: []string{write("Bess.csv", "FL;Section\nPPP;\nPPP-SSSS;\nPPP-SSSS-NN;S1\nPPP-SSSS-NN-XXX;S2\n")},
		CategoriesFile: write("categories.yaml", "Bess: [\"^ITB\"]\n"),
		CountryFile:    write("Country.csv", "Country;Description\nIT;Italy\n"),
		TechnologyFile: write("Technology.csv", "Code;Description\nB;Bess\n"),
		LevelsFile:     write("levels.txt", "------------------------\n| Valore Livello | Liv.Sede |\n------------------------\n| ITB | 1 |\n| B001 | 2 |\n| 01 | 3 |\n"),
		CtrlAssFile: write("ctrl_ass.txt", "--------\n| Valore Livello | Valore Liv. Superiore | Valore Liv. Superiore | Liv.Sede |\n"+
			"--------\n| 01 | | | 3 |\n"),
		GuidelineFile: write("gl.csv", "Valore Livello;Valore Liv. Superiore;Valore Liv. Superiore_1;Liv.Sede\n01;;;3\n02;;;3\nABC;01;;4\n"),
	}

	res, err := LoadResources(src, common.NopLogger())
	require.NoError(t, err)
	assert.Equal(t, 4, res.Templates.Len())
	require.Len(t, res.Categories, 1)
	assert.Equal(t, "Bess", res.Categories[0].Name)
	assert.True(t, res.Reference.CtrlAss.Has(ColumnUpperValue1))

	var duplicateHeader bool
	for _, f := range res.Findings {
		if f.Kind == model.FindingDuplicateHeader {
			duplicateHeader = true
		}
	}
	assert.True(t, duplicateHeader)

	report, err := New(res, nil).Run(context.Background(), validInput)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, report.Status)
	assert.Len(t, report.Records[model.TableCtrlAss], 2)
}

func TestLoadResources_MissingSources(t *testing.T) {
	_, err := LoadResources(Sources{}, nil)
	require.ErrorIs(t, err, common.ErrMissingConfig)
}
