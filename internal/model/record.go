package model

import "fmt"

// TableKind identifies an upload target table.
type TableKind string

// Upload target tables.
const (
	TableControlFL2 TableKind = "ZPMR_CONTROL_FL2"
	TableControlFLn TableKind = "ZPMR_CONTROL_FLn"
	TableCtrlAss    TableKind = "ZPMR_CTRL_ASS"
	TableGuideline  TableKind = "ZPM4R_GL_T_FL"
)

// Record field names.
const (
	FieldValue       = "VALUE"
	FieldSubValue    = "SUB_VALUE"
	FieldSubValue2   = "SUB_VALUE2"
	FieldTPLKZ       = "TPLKZ"
	FieldFLTYP       = "FLTYP"
	FieldFLLevel     = "FLLEVEL"
	FieldCountry     = "COUNTRY"
	FieldSection     = "SECTION"
	FieldPart        = "PART"
	FieldComponent   = "COMPONENT"
	FieldElementType = "ELEMENT_TYPE"
	FieldObjectType  = "EQART"
	FieldCatalog     = "RBNR"
)

var tableHeaders = map[TableKind][]string{
	TableControlFL2: {FieldTPLKZ, FieldFLTYP, FieldFLLevel, FieldValue, FieldCountry},
	TableControlFLn: {FieldTPLKZ, FieldFLTYP, FieldFLLevel, FieldValue},
	TableCtrlAss: {
		FieldValue, FieldSubValue, FieldSubValue2, FieldTPLKZ, FieldFLTYP, FieldFLLevel,
		FieldSection, FieldPart, FieldComponent, FieldElementType,
	},
	TableGuideline: {
		FieldValue, FieldSubValue, FieldSubValue2, FieldTPLKZ, FieldFLTYP, FieldFLLevel,
		FieldObjectType, FieldCatalog,
	},
}

// TableKinds lists every upload table in output order.
func TableKinds() []TableKind {
	return []TableKind{TableControlFL2, TableControlFLn, TableCtrlAss, TableGuideline}
}

// Header returns the fixed column set of the table.
func (k TableKind) Header() ([]string, error) {
	h, ok := tableHeaders[k]
	if !ok {
		return nil, fmt.Errorf("unknown table kind %q", k)
	}
	out := make([]string, len(h))
	copy(out, h)
	return out, nil
}

// Record is one upload row.
type Record struct {
	Fields map[string]string `json:"fields"`
	Table  TableKind         `json:"table"`
}

// Values returns the record's values in header order.
func (r Record) Values() []string {
	header := tableHeaders[r.Table]
	out := make([]string, len(header))
	for i, name := range header {
		out[i] = r.Fields[name]
	}
	return out
}
