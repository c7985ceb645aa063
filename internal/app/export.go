package app

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/fortetroy/fedramp-explorer/internal/domain/crosswalk"
	"github.com/fortetroy/fedramp-explorer/internal/domain/index"
)

// ExportFormat selects the export serialization.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

// ParseExportFormat maps user input to a format.
func ParseExportFormat(s string) (ExportFormat, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, true
	case "json":
		return FormatJSON, true
	}
	return "", false
}

// searchExportRow is the stable JSON shape of one exported search hit. The
// CSV columns mirror the same fields in the same order.
type searchExportRow struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Kind  string  `json:"kind"`
	Score float64 `json:"score"`
}

// ExportSearch serializes already-computed search hits. Pure: same hits in,
// same bytes out.
func ExportSearch(hits []index.Hit, format ExportFormat) ([]byte, error) {
	rows := make([]searchExportRow, len(hits))
	for i, h := range hits {
		rows[i] = searchExportRow{ID: h.ID, Title: h.Title, Kind: string(h.Kind), Score: h.Score}
	}

	switch format {
	case FormatJSON:
		return marshalIndent(rows)
	case FormatCSV:
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		w.Write([]string{"id", "title", "kind", "score"})
		for _, r := range rows {
			w.Write([]string{r.ID, r.Title, r.Kind, formatScore(r.Score)})
		}
		w.Flush()
		return buf.Bytes(), w.Error()
	}
	return nil, fmt.Errorf("unknown export format %q", format)
}

// crosswalkExportRow flattens one crosswalk result for export: one row per
// KSI with its mapped controls joined.
type crosswalkExportRow struct {
	KSIID      string `json:"ksi_id"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	Match      string `json:"match"`
	Matched    string `json:"matched"`
	InBaseline string `json:"in_baseline"`
}

// ExportCrosswalk serializes crosswalk results for a baseline run.
func ExportCrosswalk(results []crosswalk.Result, format ExportFormat) ([]byte, error) {
	rows := make([]crosswalkExportRow, len(results))
	for i, res := range results {
		var all, in []string
		for _, mc := range res.Matched {
			all = append(all, mc.ID)
			if mc.InBaseline {
				in = append(in, mc.ID)
			}
		}
		rows[i] = crosswalkExportRow{
			KSIID:      res.KSIID,
			Name:       res.Name,
			Category:   res.Category,
			Match:      string(res.Match),
			Matched:    strings.Join(all, ";"),
			InBaseline: strings.Join(in, ";"),
		}
	}

	switch format {
	case FormatJSON:
		return marshalIndent(rows)
	case FormatCSV:
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		w.Write([]string{"ksi_id", "name", "category", "match", "matched", "in_baseline"})
		for _, r := range rows {
			w.Write([]string{r.KSIID, r.Name, r.Category, r.Match, r.Matched, r.InBaseline})
		}
		w.Flush()
		return buf.Bytes(), w.Error()
	}
	return nil, fmt.Errorf("unknown export format %q", format)
}

// formatScore renders scores without trailing float noise ("5" not "5.000000").
func formatScore(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}

func marshalIndent(v interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
