// Package classification partitions candidate rows into named, mutually exclusive
// categories defined by ordered groups of regular expressions.
package classification

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/Veraticus/flcheck/internal/common"
	"github.com/Veraticus/flcheck/internal/model"
	"github.com/Veraticus/flcheck/internal/table"
)

// OthersCategory is the reserved name of the bucket holding unclaimed rows.
const OthersCategory = "Others"

// ErrReservedCategory is returned when a category uses the reserved Others name.
var ErrReservedCategory = errors.New("category name is reserved")

// Category is a named group of OR-combined patterns.
type Category struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
}

// compiledCategory holds the usable patterns of a category.
type compiledCategory struct {
	name     string
	patterns []*regexp.Regexp
}

// Classifier assigns rows to the first category with a pattern found in a column.
type Classifier struct {
	logger     *slog.Logger
	categories []compiledCategory
	findings   []model.Finding
}

// NewClassifier compiles categories in definition order. Invalid patterns are skipped
// with a warning and a finding; they never fail construction.
func NewClassifier(categories []Category, logger *slog.Logger) (*Classifier, error) {
	logger = common.OrNop(logger)
	c := &Classifier{logger: logger}

	seen := make(map[string]bool, len(categories))
	for _, cat := range categories {
		if cat.Name == OthersCategory {
			return nil, fmt.Errorf("%w: %s", ErrReservedCategory, cat.Name)
		}
		if seen[cat.Name] {
			return nil, fmt.Errorf("category %q defined more than once", cat.Name)
		}
		seen[cat.Name] = true

		cc := compiledCategory{name: cat.Name}
		for _, p := range cat.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				logger.Warn("Skipping invalid category pattern",
					"category", cat.Name,
					"pattern", p,
					"error", err)
				c.findings = append(c.findings, model.NewFinding(model.FindingInvalidPattern, cat.Name,
					"pattern %q skipped: %v", p, err))
				continue
			}
			cc.patterns = append(cc.patterns, re)
		}
		c.categories = append(c.categories, cc)
	}

	return c, nil
}

// Findings returns the warnings raised while compiling categories.
func (c *Classifier) Findings() []model.Finding {
	out := make([]model.Finding, len(c.findings))
	copy(out, c.findings)
	return out
}

// Classify partitions the rows of src by searching column with each category's patterns.
// A row goes to the first category, in definition order, with any matching pattern;
// rows claimed by no category go to Others. A missing column is an InputShapeError.
func (c *Classifier) Classify(src *table.Table, column string) (Partition, error) {
	if err := src.Require(column); err != nil {
		return Partition{}, err
	}

	claimed := make([]bool, src.Len())
	p := Partition{buckets: make([]Bucket, 0, len(c.categories)+1)}

	for _, cat := range c.categories {
		bucket := Bucket{Name: cat.name, Rows: []table.Row{}}
		for _, row := range src.AllRows() {
			if claimed[row.Index] {
				continue
			}
			if matchesAny(cat.patterns, row.Get(column)) {
				claimed[row.Index] = true
				bucket.Rows = append(bucket.Rows, row)
			}
		}
		p.buckets = append(p.buckets, bucket)
	}

	others := Bucket{Name: OthersCategory, Rows: []table.Row{}}
	for _, row := range src.AllRows() {
		if !claimed[row.Index] {
			others.Rows = append(others.Rows, row)
		}
	}
	p.buckets = append(p.buckets, others)

	c.logger.Debug("Classified rows",
		"table", src.Name,
		"column", column,
		"rows", src.Len(),
		"others", len(others.Rows))

	return p, nil
}

// Classify is a convenience wrapper building a Classifier for one call.
func Classify(src *table.Table, categories []Category, column string, logger *slog.Logger) (Partition, error) {
	c, err := NewClassifier(categories, logger)
	if err != nil {
		return Partition{}, err
	}
	return c.Classify(src, column)
}

func matchesAny(patterns []*regexp.Regexp, value string) bool {
	for _, re := range patterns {
		if re.MatchString(value) {
			return true
		}
	}
	return false
}
