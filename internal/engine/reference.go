package engine

import (
	"strconv"
	"strings"

	"github.com/Veraticus/flcheck/internal/model"
	"github.com/Veraticus/flcheck/internal/table"
	"github.com/samber/lo"
)

// SAP data browser column names of the reference snapshots.
const (
	ColumnLevelValue  = "Valore Livello"
	ColumnUpperValue  = "Valore Liv. Superiore"
	ColumnUpperValue1 = "Valore Liv. Superiore_1"
	ColumnLevel       = "Liv.Sede"
)

// Dictionary column names.
const (
	ColumnCountry     = "Country"
	ColumnTechCode    = "Code"
	ColumnDescription = "Description"
)

// Reference holds the point-in-time snapshots the candidates are compared with. They
// are read, never modified.
type Reference struct {
	// Levels lists the level values already defined, one row per value and level.
	Levels *table.Table
	// CtrlAss is the ZPMR_CTRL_ASS snapshot.
	CtrlAss *table.Table
	// Guideline is the ZPM4R_GL_T_FL snapshot.
	Guideline *table.Table
}

// levelValues returns the snapshot values of level n.
func levelValues(t *table.Table, n int) ([]string, error) {
	if err := t.Require(ColumnLevelValue, ColumnLevel); err != nil {
		return nil, err
	}
	want := strconv.Itoa(n)
	values := lo.FilterMap(t.AllRows(), func(r table.Row, _ int) (string, bool) {
		return strings.TrimSpace(r.Get(ColumnLevelValue)), strings.TrimSpace(r.Get(ColumnLevel)) == want
	})
	return values, nil
}

// checkKeys returns the check keys of the snapshot rows.
func checkKeys(t *table.Table) ([]string, error) {
	if err := t.Require(ColumnLevelValue, ColumnUpperValue, ColumnLevel); err != nil {
		return nil, err
	}
	hasUpper1 := t.Has(ColumnUpperValue1)
	keys := lo.FilterMap(t.AllRows(), func(r table.Row, _ int) (string, bool) {
		fields := []string{r.Get(ColumnLevelValue), r.Get(ColumnUpperValue), "", r.Get(ColumnLevel)}
		if hasUpper1 {
			fields[2] = r.Get(ColumnUpperValue1)
		}
		key := model.CheckKey(model.KindSAP, fields, 0)
		return key, key != ""
	})
	return keys, nil
}
