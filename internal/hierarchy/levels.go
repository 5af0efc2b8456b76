// Package hierarchy decomposes functional locations into levels, reconciles them with
// their parents and computes set differences against reference snapshots.
package hierarchy

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/flcheck/internal/common"
	"github.com/Veraticus/flcheck/internal/model"
	"github.com/Veraticus/flcheck/internal/table"
	"github.com/samber/lo"
)

// ParseLines splits raw input into trimmed, non-blank lines.
func ParseLines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	lines := lo.Map(strings.Split(raw, "\n"), func(line string, _ int) string {
		return strings.TrimSpace(line)
	})
	return lo.Compact(lines)
}

// BuildLevels decomposes code on dashes. Length is the number of non-empty levels;
// levels past the sixth are counted but not stored, and such codes get no check key.
func BuildLevels(code string) model.Code {
	code = strings.TrimSpace(code)
	c := model.Code{Value: code}
	if code == "" {
		return c
	}

	parts := strings.Split(code, model.LevelSeparator)
	c.Length = lo.CountBy(parts, func(p string) bool { return p != "" })
	copy(c.Levels[:], parts)
	c.Check = model.FLCheckKey(c.Levels[:], c.Length)
	return c
}

// BuildCodes decomposes every line, recording its 1-based position.
func BuildCodes(lines []string) []model.Code {
	codes := make([]model.Code, len(lines))
	for i, line := range lines {
		codes[i] = BuildLevels(line)
		codes[i].Line = i + 1
	}
	return codes
}

// FindMissingParents returns the parents, in first-seen order and without duplicates,
// of codes whose prefix up to the last dash is not itself among the codes one level up.
func FindMissingParents(codes []model.Code) []string {
	present := make(map[int]map[string]bool, model.MaxLevels)
	for _, c := range codes {
		if c.Length < 1 || c.Length > model.MaxLevels {
			continue
		}
		if present[c.Length] == nil {
			present[c.Length] = make(map[string]bool)
		}
		present[c.Length][c.Value] = true
	}

	var missing []string
	for _, c := range codes {
		if c.Length < 2 || c.Length > model.MaxLevels {
			continue
		}
		parent := c.Parent()
		if !present[c.Length-1][parent] {
			missing = append(missing, parent)
		}
	}
	return lo.Uniq(missing)
}

// MissingParentFindings wraps FindMissingParents results as findings.
func MissingParentFindings(missing []string) []model.Finding {
	return lo.Map(missing, func(parent string, _ int) model.Finding {
		return model.NewFinding(model.FindingMissingParent, parent, "parent %q is not in the list", parent)
	})
}

// LevelValues returns the distinct non-empty values at level n, in first-seen order.
func LevelValues(codes []model.Code, n int) []string {
	values := lo.FilterMap(codes, func(c model.Code, _ int) (string, bool) {
		v := c.Level(n)
		return v, v != ""
	})
	return lo.Uniq(values)
}

// UniqueLevel fails with ErrNonUniqueLevel when level n holds more than one distinct
// value across codes. It returns the single value, or "" when no code reaches level n.
func UniqueLevel(codes []model.Code, n int) (string, error) {
	values := LevelValues(codes, n)
	switch len(values) {
	case 0:
		return "", nil
	case 1:
		return values[0], nil
	default:
		return "", fmt.Errorf("%w: level %d holds %s", common.ErrNonUniqueLevel, n, strings.Join(values, ", "))
	}
}

// Level column names of LevelsTable.
const (
	ColumnCode   = "FL"
	ColumnLength = "FL_Lunghezza"
	ColumnCheck  = "Check"
)

// LevelColumn returns the name of the column holding level n.
func LevelColumn(n int) string {
	return "Level_" + strconv.Itoa(n)
}

// LevelsTable lays codes out one row each with their levels, length and check key.
func LevelsTable(name string, codes []model.Code) *table.Table {
	header := []string{ColumnCode}
	for n := 1; n <= model.MaxLevels; n++ {
		header = append(header, LevelColumn(n))
	}
	header = append(header, ColumnLength, ColumnCheck)

	t := table.New(name, header...)
	for _, c := range codes {
		row := append([]string{c.Value}, c.Levels[:]...)
		row = append(row, strconv.Itoa(c.Length), c.Check)
		t.Append(row...)
	}
	return t
}
