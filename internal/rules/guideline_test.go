package rules

import (
	"testing"

	"github.com/Veraticus/flcheck/internal/common"
	"github.com/Veraticus/flcheck/internal/model"
	"github.com/Veraticus/flcheck/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guidelineTable(name string, rows ...[]string) *table.Table {
	t := table.New(name, "FL", "Section", "Part", "Component", "Element Type", "EQART", "RBNR", "Note")
	for _, r := range rows {
		t.Append(r...)
	}
	return t
}

func TestBuildTemplates(t *testing.T) {
	rt := mustRules(t, "CCC", "[A-Z]{3}", "NN", "[0-9]{2}", "B", "B[0-9]{3}")

	bess := guidelineTable("Bess_FL_GuideLine.csv",
		[]string{"CCC-B", "SEC1", "P1", "C1", "E1", "", "", "root"},
		[]string{"CCC-B-NN", "SEC1", "P2", "C2", "E2", "OBJ", "CAT", ""},
		[]string{""},
	)
	commonGL := guidelineTable("Common_FL_GuideLine.csv",
		[]string{"CCC-B-NN", "SEC9", "P9", "C9", "E9", "", "", ""},
	)
	noFL := table.New("broken.csv", "Template")

	ts, findings, err := BuildTemplates(rt, bess, nil, noFL, commonGL)
	require.NoError(t, err)

	require.Equal(t, 2, ts.Len())
	all := ts.Templates()
	assert.Equal(t, "[A-Z]{3}-B[0-9]{3}", all[0].Regex)
	assert.Equal(t, 2, all[0].Length)
	assert.Equal(t, "", all[0].CheckRegex)
	assert.Equal(t, "root", all[0].Extra["Note"])

	assert.Equal(t, "[A-Z]{3}-B[0-9]{3}-[0-9]{2}", all[1].Regex)
	assert.Equal(t, "[0-9]{2}_3", all[1].CheckRegex)
	assert.Equal(t, "SEC1", all[1].Section)
	assert.Equal(t, "E2", all[1].ElementType)
	assert.Equal(t, "OBJ", all[1].ObjectType)
	assert.Equal(t, "CAT", all[1].CatalogProfile)
	assert.Equal(t, "Bess_FL_GuideLine.csv", all[1].Source)

	kinds := make([]model.FindingKind, 0, len(findings))
	for _, f := range findings {
		kinds = append(kinds, f.Kind)
	}
	assert.ElementsMatch(t, []model.FindingKind{
		model.FindingSkippedRow,
		model.FindingSkippedSource,
		model.FindingDuplicateTemplate,
	}, kinds)

	assert.Len(t, ts.ForLength(3), 1)
	assert.NotNil(t, ts.ForLength(6))
	assert.Empty(t, ts.ForLength(6))
	assert.Equal(t, []int{2, 3}, ts.Lengths())
	require.NoError(t, ts.Validate())
}

func TestBuildTemplates_NoneLoaded(t *testing.T) {
	rt := mustRules(t, "S", "[A-Z]")
	_, _, err := BuildTemplates(rt, table.New("x.csv", "Other"))
	assert.ErrorIs(t, err, common.ErrNoTemplates)
}

func TestCompileCheckRegex(t *testing.T) {
	rt := mustRules(t, "S", "[A-Z]", "N", "[0-9]")

	assert.Equal(t, "", CompileCheckRegex("S-S", rt))
	assert.Equal(t, "[0-9]_[A-Z]_4", CompileCheckRegex("S-S-S-N", rt))
	assert.Equal(t, "N1_[0-9]_[A-Z]_5", CompileCheckRegex("S-S-S-N-N1", mustRules(t, "S", "[A-Z]", "N", "[0-9]", "N1", "N1")))
	assert.Equal(t, "[0-9]_[0-9]_[0-9]_6", CompileCheckRegex("S-S-S-N-N-N", rt))
}

func TestTemplateSet_ValidateReportsBadPattern(t *testing.T) {
	ts := NewTemplateSet([]model.Template{
		{FL: "S-S", Regex: "[A-Z]-[A-Z]", Length: 2, Source: "g.csv", Row: 1},
		{FL: "S-X", Regex: "[A-Z]-(", Length: 2, Source: "g.csv", Row: 2},
	})

	err := ts.Validate()
	require.Error(t, err)

	var pce *common.PatternCompilationError
	require.ErrorAs(t, err, &pce)
	assert.Equal(t, "[A-Z]-(", pce.Pattern)
	assert.Contains(t, pce.Subject, "row 2")
}

func TestTemplateSet_Table(t *testing.T) {
	ts := NewTemplateSet([]model.Template{{FL: "S", Regex: "[A-Z]", Length: 1, Source: "g.csv"}})
	tbl := ts.Table()

	assert.Equal(t, []string{"FL", "FL_Lunghezza", "FL_RE", "Check_RE", "Source_File"}, tbl.Header)
	assert.Equal(t, []string{"S", "1", "[A-Z]", "", "g.csv"}, tbl.Rows[0])
}
