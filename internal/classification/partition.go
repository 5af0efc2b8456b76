package classification

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/flcheck/internal/table"
)

// Bucket is the ordered set of rows assigned to one category.
type Bucket struct {
	Name string
	Rows []table.Row
}

// Partition maps category names, Others last, to disjoint row subsets.
type Partition struct {
	buckets []Bucket
}

// Buckets returns the buckets in category order, Others last.
func (p Partition) Buckets() []Bucket {
	out := make([]Bucket, len(p.buckets))
	copy(out, p.buckets)
	return out
}

// Get returns the rows of the named category.
func (p Partition) Get(name string) ([]table.Row, bool) {
	for _, b := range p.buckets {
		if b.Name == name {
			return b.Rows, true
		}
	}
	return nil, false
}

// Names returns the category names in order.
func (p Partition) Names() []string {
	out := make([]string, len(p.buckets))
	for i, b := range p.buckets {
		out[i] = b.Name
	}
	return out
}

// Sizes returns the number of rows per category.
func (p Partition) Sizes() map[string]int {
	out := make(map[string]int, len(p.buckets))
	for _, b := range p.buckets {
		out[b.Name] = len(b.Rows)
	}
	return out
}

// Total returns the number of rows across all categories.
func (p Partition) Total() int {
	n := 0
	for _, b := range p.buckets {
		n += len(b.Rows)
	}
	return n
}

// Values returns the column values of the named category, in row order.
func (p Partition) Values(name, column string) []string {
	rows, _ := p.Get(name)
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Get(column)
	}
	return out
}

// ValidatePartition checks that p is a lossless, disjoint reconstruction of original:
// the row counts add up, no row appears twice, and the concatenated rows sorted by every
// column equal the original rows sorted the same way. It returns the first failing reason.
func ValidatePartition(original *table.Table, p Partition) (bool, string) {
	if original == nil {
		return false, "original table is nil"
	}

	if total := p.Total(); total != original.Len() {
		return false, fmt.Sprintf("row count mismatch: partition holds %d rows, original has %d", total, original.Len())
	}

	seen := make(map[int]string, original.Len())
	rebuilt := make([][]string, 0, original.Len())
	for _, b := range p.buckets {
		for _, r := range b.Rows {
			if r.Table() != original {
				return false, fmt.Sprintf("category %q holds a row from another table", b.Name)
			}
			if prev, dup := seen[r.Index]; dup {
				return false, fmt.Sprintf("row %d assigned to both %q and %q", r.Index+1, prev, b.Name)
			}
			seen[r.Index] = b.Name
			rebuilt = append(rebuilt, r.Values())
		}
	}

	want := sortedRows(original.Rows)
	got := sortedRows(rebuilt)
	for i := range want {
		if compareRows(want[i], got[i]) != 0 {
			return false, fmt.Sprintf("reconstructed rows differ from original at sorted position %d", i+1)
		}
	}

	return true, ""
}

func sortedRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		return compareRows(out[i], out[j]) < 0
	})
	return out
}

func compareRows(a, b []string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := strings.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}
