package records

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/flcheck/internal/common"
	"github.com/Veraticus/flcheck/internal/model"
	"github.com/samber/lo"
)

// BuildControlFL2 builds ZPMR_CONTROL_FL2 records for the level 1 and 2 values of
// levels, where levels[n-1] holds the values missing at level n.
func BuildControlFL2(levels [][]string, technology, country string) ([]model.Record, error) {
	if strings.TrimSpace(country) == "" {
		return nil, fmt.Errorf("%w: empty country", common.ErrUnknownCountry)
	}
	return controlRecords(levels, 1, 2, technology, model.TableControlFL2, map[string]string{
		model.FieldCountry: strings.TrimSpace(country),
	})
}

// BuildControlFLn builds ZPMR_CONTROL_FLn records for the level 3 to 6 values of levels.
func BuildControlFLn(levels [][]string, technology string) ([]model.Record, error) {
	return controlRecords(levels, 3, model.MaxLevels, technology, model.TableControlFLn, nil)
}

func controlRecords(levels [][]string, from, to int, technology string, kind model.TableKind, extra map[string]string) ([]model.Record, error) {
	technology = strings.TrimSpace(technology)
	if technology == "" {
		return nil, fmt.Errorf("%w: empty technology", common.ErrUnknownTechnology)
	}

	var out []model.Record
	for n := from; n <= to && n <= len(levels); n++ {
		values := lo.Uniq(lo.Compact(lo.Map(levels[n-1], func(v string, _ int) string {
			return strings.TrimSpace(v)
		})))
		for _, v := range values {
			fields := map[string]string{
				model.FieldTPLKZ:   TPLKZ(technology),
				model.FieldFLTYP:   technology,
				model.FieldFLLevel: strconv.Itoa(n),
				model.FieldValue:   v,
			}
			for k, val := range extra {
				fields[k] = val
			}
			out = append(out, model.Record{Table: kind, Fields: fields})
		}
	}
	return out, nil
}

// GroupByTable collects records per table kind, keeping their order.
func GroupByTable(records []model.Record) map[model.TableKind][]model.Record {
	return lo.GroupBy(records, func(r model.Record) model.TableKind {
		return r.Table
	})
}
