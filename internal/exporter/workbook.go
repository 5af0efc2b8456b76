package exporter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Veraticus/flcheck/internal/engine"
	"github.com/Veraticus/flcheck/internal/hierarchy"
	"github.com/Veraticus/flcheck/internal/model"
	"github.com/xuri/excelize/v2"
)

// Workbook sheet names.
const (
	SheetSummary     = "Summary"
	SheetOutcomes    = "Outcomes"
	SheetFindings    = "Findings"
	SheetDifferences = "Differences"
	SheetLevels      = "Levels"
	SheetCategories  = "Categories"
)

// WriteWorkbook saves a diagnostic xlsx describing report at path.
func WriteWorkbook(path string, report *engine.Report) (err error) {
	if report == nil {
		return errors.New("no report to export")
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := &workbook{file: f}
	if w.header, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	w.sheet(SheetSummary, []string{"Field", "Value"}, summaryRows(report))
	w.sheet(SheetOutcomes, []string{"Line", "Code", "Length", "Status", "Pattern", "Message"}, outcomeRows(report))
	w.sheet(SheetFindings, []string{"Kind", "Subject", "Message"}, findingRows(report))
	w.sheet(SheetDifferences, []string{"Set", "Level", "Value"}, differenceRows(report))

	levels := hierarchy.LevelsTable(SheetLevels, report.Codes)
	w.sheet(SheetLevels, levels.Header, levels.Rows)

	if report.Partition != nil {
		var rows [][]string
		for _, b := range report.Partition.Buckets() {
			for _, r := range b.Rows {
				rows = append(rows, []string{b.Name, r.Get(hierarchy.ColumnCode)})
			}
		}
		w.sheet(SheetCategories, []string{"Category", "Code"}, rows)
	}

	for _, kind := range model.TableKinds() {
		recs := report.Records[kind]
		if len(recs) == 0 {
			continue
		}
		header, herr := kind.Header()
		if herr != nil {
			return herr
		}
		rows := make([][]string, len(recs))
		for i, r := range recs {
			rows[i] = r.Values()
		}
		w.sheet(string(kind), header, rows)
	}

	if w.err != nil {
		return w.err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}
	f.SetActiveSheet(0)

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create workbook directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// workbook accumulates the first error while sheets are added.
type workbook struct {
	file   *excelize.File
	err    error
	header int
}

func (w *workbook) sheet(name string, header []string, rows [][]string) {
	if w.err != nil {
		return
	}
	if _, err := w.file.NewSheet(name); err != nil {
		w.err = fmt.Errorf("failed to create sheet %s: %w", name, err)
		return
	}
	if err := w.row(name, 1, header); err != nil {
		w.err = err
		return
	}
	if err := w.file.SetRowStyle(name, 1, 1, w.header); err != nil {
		w.err = fmt.Errorf("failed to style sheet %s: %w", name, err)
		return
	}
	for i, r := range rows {
		if err := w.row(name, i+2, r); err != nil {
			w.err = err
			return
		}
	}
}

func (w *workbook) row(sheet string, n int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := w.file.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, n, err)
	}
	return nil
}

func summaryRows(r *engine.Report) [][]string {
	return [][]string{
		{"Run", r.RunID},
		{"Started", r.StartedAt.Format("2006-01-02 15:04:05")},
		{"Status", string(r.Status)},
		{"Country", r.Country + " " + r.CountryName},
		{"Technology", r.Technology + " " + r.TechnologyName},
		{"Codes", strconv.Itoa(len(r.Codes))},
		{"Valid", strconv.Itoa(r.ValidCount())},
		{"Records", strconv.Itoa(r.RecordCount())},
	}
}

func outcomeRows(r *engine.Report) [][]string {
	rows := make([][]string, len(r.Outcomes))
	for i, o := range r.Outcomes {
		rows[i] = []string{
			strconv.Itoa(o.Index + 1), o.Code, strconv.Itoa(o.Length), string(o.Status), o.Pattern, o.Message,
		}
	}
	return rows
}

func findingRows(r *engine.Report) [][]string {
	rows := make([][]string, len(r.Findings))
	for i, f := range r.Findings {
		rows[i] = []string{string(f.Kind), f.Subject, f.Message}
	}
	return rows
}

func differenceRows(r *engine.Report) [][]string {
	var rows [][]string
	for _, d := range r.Differences {
		level := ""
		if d.Level > 0 {
			level = strconv.Itoa(d.Level)
		}
		for _, v := range d.Values {
			rows = append(rows, []string{d.Name, level, v})
		}
	}
	return rows
}
