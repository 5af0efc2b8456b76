// Package exporter writes run results: semicolon upload files for the SAP control
// tables and a diagnostic workbook.
package exporter

import (
	"fmt"
	"path/filepath"

	"github.com/Veraticus/flcheck/internal/common"
	"github.com/Veraticus/flcheck/internal/model"
	"github.com/Veraticus/flcheck/internal/table"
	"github.com/samber/lo"
)

var errUnknownTables = fmt.Errorf("%w: records for", common.ErrUnknownTableKind)

// UploadSuffix ends the name of every upload file.
const UploadSuffix = "_UpLoad.csv"

// UploadFileName returns the upload file name of a table.
func UploadFileName(kind model.TableKind) string {
	return string(kind) + UploadSuffix
}

// WriteUploadFiles writes one <TABLE>_UpLoad.csv per table with records into dir and
// returns the written paths in table order. Tables without records get no file.
func WriteUploadFiles(dir string, records []model.Record) ([]string, error) {
	grouped := lo.GroupBy(records, func(r model.Record) model.TableKind { return r.Table })

	var written []string
	for _, kind := range model.TableKinds() {
		recs := grouped[kind]
		if len(recs) == 0 {
			continue
		}
		header, err := kind.Header()
		if err != nil {
			return written, err
		}
		rows := lo.Map(recs, func(r model.Record, _ int) []string { return r.Values() })

		path := filepath.Join(dir, UploadFileName(kind))
		if err := table.WriteCSVFile(path, header, rows); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", kind, err)
		}
		written = append(written, path)
	}

	if unknown := lo.Without(lo.Keys(grouped), model.TableKinds()...); len(unknown) > 0 {
		return written, fmt.Errorf("%w: %v", errUnknownTables, unknown)
	}
	return written, nil
}
