// Package table provides the in-memory tabular data exchanged with rule, guideline and
// reference sources, plus the readers and writers for their on-disk forms.
package table

import (
	"fmt"
	"strings"

	"github.com/Veraticus/flcheck/internal/common"
)

// Table is a named, header-first set of string rows.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// New creates an empty table with the given header.
func New(name string, header ...string) *Table {
	h := make([]string, len(header))
	copy(h, header)
	return &Table{Name: name, Header: h}
}

// FromColumn creates a single-column table holding values.
func FromColumn(name, column string, values []string) *Table {
	t := New(name, column)
	for _, v := range values {
		t.Append(v)
	}
	return t
}

// Append adds a row, padding or truncating it to the header width.
func (t *Table) Append(values ...string) {
	row := make([]string, len(t.Header))
	copy(row, values)
	t.Rows = append(t.Rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Index returns the position of column, or -1.
func (t *Table) Index(column string) int {
	for i, h := range t.Header {
		if h == column {
			return i
		}
	}
	return -1
}

// Has reports whether the table has column.
func (t *Table) Has(column string) bool {
	return t.Index(column) >= 0
}

// Require fails with an InputShapeError naming the first absent column.
func (t *Table) Require(columns ...string) error {
	if t == nil {
		return common.NewInputShapeError(common.ErrNotTabular, "<nil>", "")
	}
	for _, c := range columns {
		if !t.Has(c) {
			return common.NewInputShapeError(common.ErrMissingColumn, t.Name, c)
		}
	}
	return nil
}

// Column returns a copy of the values of column.
func (t *Table) Column(column string) ([]string, error) {
	if err := t.Require(column); err != nil {
		return nil, err
	}
	idx := t.Index(column)
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			out[i] = row[idx]
		}
	}
	return out, nil
}

// Values returns the values of column as nullable scalars. Cells absent from short rows
// are nil.
func (t *Table) Values(column string) ([]*string, error) {
	if err := t.Require(column); err != nil {
		return nil, err
	}
	idx := t.Index(column)
	out := make([]*string, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			v := row[idx]
			out[i] = &v
		}
	}
	return out, nil
}

// Row returns a view on the i-th row.
func (t *Table) Row(i int) Row {
	return Row{Index: i, table: t}
}

// AllRows returns a view on every row, in order.
func (t *Table) AllRows() []Row {
	out := make([]Row, len(t.Rows))
	for i := range t.Rows {
		out[i] = t.Row(i)
	}
	return out
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	c := New(t.Name, t.Header...)
	for _, row := range t.Rows {
		r := make([]string, len(row))
		copy(r, row)
		c.Rows = append(c.Rows, r)
	}
	return c
}

func (t *Table) String() string {
	return fmt.Sprintf("%s[%s] (%d rows)", t.Name, strings.Join(t.Header, ";"), len(t.Rows))
}

// Row is a view on one row of a table, keeping its original position.
type Row struct {
	table *Table
	Index int
}

// Get returns the value of column in this row, or "" when absent.
func (r Row) Get(column string) string {
	idx := r.table.Index(column)
	if idx < 0 {
		return ""
	}
	row := r.table.Rows[r.Index]
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}

// Values returns the row's cells.
func (r Row) Values() []string {
	return r.table.Rows[r.Index]
}

// Table returns the table the row belongs to.
func (r Row) Table() *Table {
	return r.table
}
