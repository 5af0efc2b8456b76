package hierarchy

import (
	"testing"

	"github.com/Veraticus/flcheck/internal/common"
	"github.com/Veraticus/flcheck/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLines(t *testing.T) {
	got := ParseLines("  ITS \r\n\r\nITS-B001\n   \nITS-B001-01\n")
	assert.Equal(t, []string{"ITS", "ITS-B001", "ITS-B001-01"}, got)
	assert.Empty(t, ParseLines(" \n\n"))
}

func TestBuildLevels(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		wantLength int
		wantLevels [model.MaxLevels]string
		wantCheck  string
	}{
		{
			name: "empty",
			code: "  ",
		},
		{
			name:       "single level",
			code:       "ITS",
			wantLength: 1,
			wantLevels: [model.MaxLevels]string{"ITS"},
		},
		{
			name:       "three levels",
			code:       " ITS-B001-01 ",
			wantLength: 3,
			wantLevels: [model.MaxLevels]string{"ITS", "B001", "01"},
			wantCheck:  "01_3",
		},
		{
			name:       "six levels",
			code:       "ITS-B001-01-ABC-DE-99",
			wantLength: 6,
			wantLevels: [model.MaxLevels]string{"ITS", "B001", "01", "ABC", "DE", "99"},
			wantCheck:  "99_DE_ABC_6",
		},
		{
			name:       "trailing empty segment not counted",
			code:       "ITS-",
			wantLength: 1,
			wantLevels: [model.MaxLevels]string{"ITS"},
		},
		{
			name:       "inner empty segment not counted",
			code:       "ITS--01",
			wantLength: 2,
			wantLevels: [model.MaxLevels]string{"ITS", "", "01"},
		},
		{
			name:       "seven levels counted but truncated",
			code:       "A-B-C-D-E-F-G",
			wantLength: 7,
			wantLevels: [model.MaxLevels]string{"A", "B", "C", "D", "E", "F"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := BuildLevels(tt.code)
			assert.Equal(t, tt.wantLength, c.Length)
			assert.Equal(t, tt.wantLevels, c.Levels)
			assert.Equal(t, tt.wantCheck, c.Check)
		})
	}
}

func TestBuildCodes_Lines(t *testing.T) {
	codes := BuildCodes([]string{"A", "A-1"})
	require.Len(t, codes, 2)
	assert.Equal(t, 1, codes[0].Line)
	assert.Equal(t, 2, codes[1].Line)
}

func TestFindMissingParents(t *testing.T) {
	codes := BuildCodes([]string{"A", "A-1", "A-1-2", "A-9-9"})
	missing := FindMissingParents(codes)
	assert.Equal(t, []string{"A-9"}, missing)
	assert.NotContains(t, missing, "A-1")
	assert.NotContains(t, missing, "A")

	findings := MissingParentFindings(missing)
	require.Len(t, findings, 1)
	assert.Equal(t, model.FindingMissingParent, findings[0].Kind)
	assert.Equal(t, "A-9", findings[0].Subject)
}

func TestFindMissingParents_DedupAndLevelMatch(t *testing.T) {
	codes := BuildCodes([]string{
		"B-1-1",
		"B-1-2",
		"C-1",
		"C-1-1-1",
		"C-1-1",
	})

	assert.Equal(t, []string{"B-1", "C"}, FindMissingParents(codes))
}

func TestLevelValuesAndUniqueLevel(t *testing.T) {
	codes := BuildCodes([]string{"ITS", "ITS-B001", "ITS-B002-01", "ITS-B001-02"})

	assert.Equal(t, []string{"B001", "B002"}, LevelValues(codes, 2))
	assert.Empty(t, LevelValues(codes, 5))

	v, err := UniqueLevel(codes, 1)
	require.NoError(t, err)
	assert.Equal(t, "ITS", v)

	_, err = UniqueLevel(codes, 2)
	assert.ErrorIs(t, err, common.ErrNonUniqueLevel)

	v, err = UniqueLevel(codes, 6)
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestLevelsTable(t *testing.T) {
	tbl := LevelsTable("levels", BuildCodes([]string{"A-B-C"}))
	require.Equal(t, 1, tbl.Len())

	row := tbl.Row(0)
	assert.Equal(t, "A-B-C", row.Get(ColumnCode))
	assert.Equal(t, "B", row.Get(LevelColumn(2)))
	assert.Equal(t, "3", row.Get(ColumnLength))
	assert.Equal(t, "C_3", row.Get(ColumnCheck))
}
