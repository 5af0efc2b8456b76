package table

import (
	"strings"

	"github.com/Veraticus/flcheck/internal/model"
)

// LookupValue finds the first row whose searchColumn equals value and returns its
// returnColumn. When several rows match, the first wins and a finding is reported.
func LookupValue(t *Table, searchColumn, value, returnColumn string) (string, bool, []model.Finding, error) {
	if err := t.Require(searchColumn, returnColumn); err != nil {
		return "", false, nil, err
	}

	search := t.Index(searchColumn)
	ret := t.Index(returnColumn)

	var (
		result   string
		found    bool
		matches  int
		findings []model.Finding
	)
	for _, row := range t.Rows {
		if strings.TrimSpace(row[search]) != value {
			continue
		}
		matches++
		if !found {
			result = strings.TrimSpace(row[ret])
			found = true
		}
	}

	if matches > 1 {
		findings = append(findings, model.NewFinding(model.FindingMultipleLookup, t.Name,
			"%d rows match %s=%q, using the first", matches, searchColumn, value))
	}

	return result, found, findings, nil
}
