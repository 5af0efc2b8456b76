package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFLCheckKey(t *testing.T) {
	tests := []struct {
		name   string
		want   string
		levels []string
		length int
	}{
		{name: "level two has no key", levels: []string{"ITS", "B001", "", "", "", ""}, length: 2, want: ""},
		{name: "level three", levels: []string{"ITS", "B001", "C1", "", "", ""}, length: 3, want: "C1_3"},
		{name: "level four", levels: []string{"ITS", "B001", "C1", "D01", "", ""}, length: 4, want: "D01_C1_4"},
		{name: "level five", levels: []string{"ITS", "B001", "C1", "D01", "E01", ""}, length: 5, want: "E01_D01_C1_5"},
		{name: "level six", levels: []string{"ITS", "B001", "C1", "D01", "E01", "F1"}, length: 6, want: "F1_E01_D01_6"},
		{name: "length beyond levels", levels: []string{"A"}, length: 4, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FLCheckKey(tt.levels, tt.length))
		})
	}
}

func TestSAPCheckKey(t *testing.T) {
	assert.Equal(t, "F1_E01_D01_6", SAPCheckKey("F1", "E01", "D01", "6"))
	assert.Equal(t, "D01_C1_4", SAPCheckKey(" D01 ", "C1", "", "4"))
	assert.Equal(t, "C1_3", SAPCheckKey("C1", "", "", "3"))
	assert.Equal(t, "", SAPCheckKey("C1", "", "", " "))
	assert.Equal(t, "", SAPCheckKey("", "B", "", "3"))
}

func TestCheckKey_KindsAgree(t *testing.T) {
	levels := []string{"ITS", "B001", "C1", "D01", "E01", ""}

	fl := CheckKey(KindFL, levels, 5)
	sap := CheckKey(KindSAP, []string{"E01", "D01", "C1", "5"}, 0)

	assert.Equal(t, fl, sap)
	assert.Equal(t, "", CheckKey(TemplateKind(9), levels, 5))
	assert.Equal(t, "SAP", KindSAP.String())
}

func TestCode_Parent(t *testing.T) {
	c := Code{Value: "A-1-2", Levels: [MaxLevels]string{"A", "1", "2"}, Length: 3}

	assert.Equal(t, "A-1", c.Parent())
	assert.Equal(t, "2", c.Level(3))
	assert.Equal(t, "", c.Level(7))
	assert.Equal(t, "", Code{Value: "A"}.Parent())
}

func TestTableKind_Header(t *testing.T) {
	h, err := TableCtrlAss.Header()
	require.NoError(t, err)
	assert.Equal(t, FieldValue, h[0])
	assert.Contains(t, h, FieldElementType)

	_, err = TableKind("ZZZ").Header()
	assert.Error(t, err)

	r := Record{Table: TableControlFLn, Fields: map[string]string{FieldValue: "X", FieldFLLevel: "3"}}
	assert.Equal(t, []string{"", "", "3", "X"}, r.Values())
}
