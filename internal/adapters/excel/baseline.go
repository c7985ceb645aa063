// Package excel loads the FedRAMP security-controls baseline workbook.
// The workbook carries one sheet per impact tier ("Low Baseline",
// "Moderate Baseline", "High Baseline"); each sheet has a banner row, then a
// header row, then one row per control.
package excel

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/fortetroy/fedramp-explorer/internal/domain/index"
	"github.com/fortetroy/fedramp-explorer/internal/ports"
)

// Column headers as they appear in the workbook. The parameter header wraps
// across cell lines, so matching collapses whitespace.
const (
	colSortID      = "SORT ID"
	colControlName = "Control Name"
	colFamily      = "Family"
	colDescription = "NIST Control Description"
	colParameter   = "FedRAMP Parameter"
)

// headerRow is the zero-based row index of the column headers; row 0 is the
// workbook's banner row.
const headerRow = 1

// LoadBaselines reads the workbook at path and merges its per-tier sheets
// into the corpus Controls table. Every tier must be present: a workbook
// missing a baseline sheet is malformed, and the caller keeps the previously
// published corpus.
func LoadBaselines(path string, corpus *ports.Corpus) error {
	if path == "" {
		return nil
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return &ports.SourceMissingError{Source: path, Err: err}
	}
	defer f.Close()

	sheets := make(map[ports.Baseline]string)
	for _, name := range f.GetSheetList() {
		if b, ok := ports.ParseBaseline(name); ok && strings.Contains(strings.ToLower(name), "baseline") {
			sheets[b] = name
		}
	}
	for _, b := range ports.Baselines {
		if _, ok := sheets[b]; !ok {
			return &ports.SourceFormatError{
				Source: path,
				Detail: fmt.Sprintf("missing %s baseline sheet", strings.ToLower(string(b))),
			}
		}
	}

	for _, b := range ports.Baselines {
		if err := loadSheet(f, path, sheets[b], b, corpus); err != nil {
			return err
		}
	}
	return nil
}

func loadSheet(f *excelize.File, path, sheet string, tier ports.Baseline, corpus *ports.Corpus) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return &ports.SourceFormatError{Source: path, Detail: fmt.Sprintf("sheet %q: %v", sheet, err)}
	}
	if len(rows) <= headerRow {
		return &ports.SourceFormatError{Source: path, Detail: fmt.Sprintf("sheet %q has no header row", sheet)}
	}

	cols, err := mapColumns(rows[headerRow])
	if err != nil {
		return &ports.SourceFormatError{Source: path, Detail: fmt.Sprintf("sheet %q: %v", sheet, err)}
	}

	for _, row := range rows[headerRow+1:] {
		raw := strings.TrimSpace(cell(row, cols[colSortID]))
		if raw == "" {
			continue
		}
		id, ok := index.CanonicalControlID(raw)
		if !ok {
			// Section headers and withdrawn-control notes land in the ID
			// column; skip anything that is not a control ID.
			continue
		}

		ctl, exists := corpus.Controls[id]
		if !exists {
			ctl = &ports.Control{
				ID:          id,
				Name:        strings.TrimSpace(cell(row, cols[colControlName])),
				Description: strings.TrimSpace(cell(row, cols[colDescription])),
				Family:      strings.TrimSpace(cell(row, cols[colFamily])),
				Baselines:   make(map[ports.Baseline]bool),
			}
			if ctl.Family == "" {
				ctl.Family = index.ControlFamily(id)
			}
			if param := strings.TrimSpace(cell(row, cols[colParameter])); param != "" {
				ctl.Params = map[string]string{"fedramp": param}
			}
			corpus.Controls[id] = ctl
		}
		ctl.Baselines[tier] = true
	}
	return nil
}

// mapColumns resolves required header names to column indexes. The parameter
// column is optional (older workbook revisions omit it); the rest are the
// format contract.
func mapColumns(header []string) (map[string]int, error) {
	cols := map[string]int{colParameter: -1}
	for i, h := range header {
		switch normalizeHeader(h) {
		case normalizeHeader(colSortID):
			cols[colSortID] = i
		case normalizeHeader(colControlName):
			cols[colControlName] = i
		case normalizeHeader(colFamily):
			cols[colFamily] = i
		case normalizeHeader(colDescription):
			cols[colDescription] = i
		case normalizeHeader(colParameter):
			cols[colParameter] = i
		}
	}
	for _, required := range []string{colSortID, colControlName, colFamily, colDescription} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}
	return cols, nil
}

// normalizeHeader collapses the whitespace and line breaks Excel headers
// carry ("FedRAMP\nParameter") into single spaces, lowercased.
func normalizeHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
