package table

import (
	"fmt"
	"strings"

	"github.com/Veraticus/flcheck/internal/common"
	"github.com/Veraticus/flcheck/internal/model"
)

// DumpSeparator separates the columns of a pasted SE16 list.
const DumpSeparator = "|"

// ParseSAPDump parses a table list exported from the SAP data browser into a Table.
// Lines made only of dashes are separators and are dropped. The first remaining line is
// the header. Repeated header names are renamed with a numeric suffix (name_1, name_2, ...)
// and reported. Columns with a blank header and no values (the frame around the list) are
// removed. Cell values are trimmed.
func ParseSAPDump(raw, name string) (*Table, []model.Finding, error) {
	lines := dumpLines(raw)
	if len(lines) == 0 {
		return nil, nil, common.NewInputShapeError(common.ErrEmptyInput, name, "")
	}

	rows := make([][]string, len(lines))
	for i, line := range lines {
		cells := strings.Split(line, DumpSeparator)
		for j := range cells {
			cells[j] = strings.TrimSpace(cells[j])
		}
		rows[i] = cells
	}

	header, findings := UniqueHeaders(name, rows[0])

	full := New(name, header...)
	for _, r := range rows[1:] {
		full.Append(r...)
	}

	return dropFrameColumns(full), findings, nil
}

// UniqueHeaders renames repeated header names by appending _1, _2, ... to every
// occurrence after the first. Each repeated name yields one finding.
func UniqueHeaders(table string, headers []string) ([]string, []model.Finding) {
	seen := make(map[string]int, len(headers))
	out := make([]string, len(headers))
	var findings []model.Finding
	for i, h := range headers {
		n, ok := seen[h]
		if !ok {
			seen[h] = 0
			out[i] = h
			continue
		}
		n++
		seen[h] = n
		out[i] = fmt.Sprintf("%s_%d", h, n)
		if n == 1 && h != "" {
			findings = append(findings, model.NewFinding(model.FindingDuplicateHeader, table,
				"column %q appears more than once, renamed with numeric suffixes", h))
		}
	}
	return out, findings
}

func dumpLines(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isSeparatorLine(line) {
			continue
		}
		out = append(out, line)
	}
	return out
}

func isSeparatorLine(line string) bool {
	stripped := strings.ReplaceAll(line, " ", "")
	return strings.Trim(stripped, "-") == ""
}

func dropFrameColumns(t *Table) *Table {
	keep := make([]int, 0, len(t.Header))
	for i, h := range t.Header {
		if !isBlankHeader(h) || !columnEmpty(t, i) {
			keep = append(keep, i)
		}
	}
	if len(keep) == len(t.Header) {
		return t
	}

	header := make([]string, len(keep))
	for i, idx := range keep {
		header[i] = t.Header[idx]
	}
	out := New(t.Name, header...)
	for _, row := range t.Rows {
		vals := make([]string, len(keep))
		for i, idx := range keep {
			vals[i] = row[idx]
		}
		out.Append(vals...)
	}
	return out
}

// isBlankHeader reports whether h is empty once a duplicate suffix is removed.
func isBlankHeader(h string) bool {
	return strings.TrimSpace(strings.TrimRight(h, "_0123456789")) == ""
}

func columnEmpty(t *Table, idx int) bool {
	for _, row := range t.Rows {
		if strings.TrimSpace(row[idx]) != "" {
			return false
		}
	}
	return true
}
