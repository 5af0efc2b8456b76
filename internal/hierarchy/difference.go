package hierarchy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/flcheck/internal/common"
	"github.com/Veraticus/flcheck/internal/table"
	"github.com/samber/lo"
)

// Difference returns the values of source that are absent from reference, sorted.
// Nil entries and values that are blank after trimming are dropped; the others are
// compared and returned as given. It returns nil when reference covers source. Either input being empty is
// an ErrEmptyInput naming the side.
func Difference(source, reference []*string) ([]string, error) {
	if len(source) == 0 {
		return nil, fmt.Errorf("%w: source", common.ErrEmptyInput)
	}
	if len(reference) == 0 {
		return nil, fmt.Errorf("%w: reference", common.ErrEmptyInput)
	}

	known := lo.SliceToMap(normalize(reference), func(v string) (string, struct{}) {
		return v, struct{}{}
	})
	missing := lo.Filter(lo.Uniq(normalize(source)), func(v string, _ int) bool {
		_, ok := known[v]
		return !ok
	})
	if len(missing) == 0 {
		return nil, nil
	}
	sort.Strings(missing)
	return missing, nil
}

// DifferenceColumns is Difference over two table columns. Shape problems are returned
// as InputShapeErrors naming the table and column.
func DifferenceColumns(src *table.Table, srcCol string, ref *table.Table, refCol string) ([]string, error) {
	source, err := columnValues(src, srcCol)
	if err != nil {
		return nil, err
	}
	reference, err := columnValues(ref, refCol)
	if err != nil {
		return nil, err
	}
	return Difference(source, reference)
}

// StringPtrs adapts a plain slice for Difference.
func StringPtrs(values []string) []*string {
	return lo.ToSlicePtr(values)
}

func columnValues(t *table.Table, column string) ([]*string, error) {
	if err := t.Require(column); err != nil {
		return nil, err
	}
	if t.Len() == 0 {
		return nil, common.NewInputShapeError(common.ErrEmptyInput, t.Name, column)
	}
	return t.Values(column)
}

func normalize(values []*string) []string {
	return lo.FilterMap(values, func(v *string, _ int) (string, bool) {
		if v == nil {
			return "", false
		}
		return *v, strings.TrimSpace(*v) != ""
	})
}
