package hierarchy

import (
	"testing"

	"github.com/Veraticus/flcheck/internal/common"
	"github.com/Veraticus/flcheck/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestDifference(t *testing.T) {
	tests := []struct {
		name      string
		source    []*string
		reference []*string
		want      []string
	}{
		{
			name:      "fully covered after normalization",
			source:    []*string{strPtr("a"), strPtr(""), strPtr("  "), nil},
			reference: []*string{strPtr("a")},
			want:      nil,
		},
		{
			name:      "sorted set difference",
			source:    []*string{strPtr("c"), strPtr("b"), strPtr("a"), strPtr("c")},
			reference: []*string{strPtr("a"), nil},
			want:      []string{"b", "c"},
		},
		{
			name:      "values compared as given",
			source:    StringPtrs([]string{" b ", "x", "y"}),
			reference: StringPtrs([]string{" x ", "y"}),
			want:      []string{" b ", "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Difference(tt.source, tt.reference)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDifference_EmptyInputs(t *testing.T) {
	_, err := Difference(nil, StringPtrs([]string{"a"}))
	require.ErrorIs(t, err, common.ErrEmptyInput)
	assert.Contains(t, err.Error(), "source")

	_, err = Difference(StringPtrs([]string{"a"}), []*string{})
	require.ErrorIs(t, err, common.ErrEmptyInput)
	assert.Contains(t, err.Error(), "reference")
}

func TestDifferenceColumns(t *testing.T) {
	src := table.FromColumn("candidates", "Level_2", []string{"B001", "B002", ""})
	ref := table.FromColumn("ZPMR_CONTROL_FL2", "VALUE", []string{"B001"})

	got, err := DifferenceColumns(src, "Level_2", ref, "VALUE")
	require.NoError(t, err)
	assert.Equal(t, []string{"B002"}, got)
}

func TestDifferenceColumns_ShapeErrors(t *testing.T) {
	src := table.FromColumn("candidates", "Level_2", []string{"B001"})
	empty := table.New("reference", "VALUE")

	tests := []struct {
		name       string
		src        *table.Table
		ref        *table.Table
		refCol     string
		wantErr    error
		wantTable  string
		wantColumn string
	}{
		{
			name:    "nil reference",
			src:     src,
			ref:     nil,
			refCol:  "VALUE",
			wantErr: common.ErrNotTabular,
		},
		{
			name:       "missing column",
			src:        src,
			ref:        empty,
			refCol:     "Valore",
			wantErr:    common.ErrMissingColumn,
			wantTable:  "reference",
			wantColumn: "Valore",
		},
		{
			name:       "empty reference",
			src:        src,
			ref:        empty,
			refCol:     "VALUE",
			wantErr:    common.ErrEmptyInput,
			wantTable:  "reference",
			wantColumn: "VALUE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DifferenceColumns(tt.src, "Level_2", tt.ref, tt.refCol)
			require.ErrorIs(t, err, tt.wantErr)

			var shape *common.InputShapeError
			require.ErrorAs(t, err, &shape)
			if tt.wantTable != "" {
				assert.Equal(t, tt.wantTable, shape.Table)
				assert.Equal(t, tt.wantColumn, shape.Column)
			}
		})
	}
}
