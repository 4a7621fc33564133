// Package export writes batch generation results as CSV, XLSX or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/site-engine/internal/model"
)

// Format is an output format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX, FormatJSON:
		return f, nil
	default:
		return "", eris.Errorf("export: unsupported format %q (want csv, xlsx or json)", s)
	}
}

// Result is one batch entry: a generation or the error that prevented it.
type Result struct {
	Source     string            `json:"source"`
	Generation *model.Generation `json:"generation,omitempty"`
	Err        error             `json:"-"`
}

// Columns is the header row for tabular formats.
var Columns = []string{
	"source",
	"business_id",
	"business",
	"industry",
	"template_id",
	"template_match",
	"quality",
	"basic_info",
	"content",
	"visuals",
	"trust",
	"differentiation",
	"hours_status",
	"years_in_business",
	"service_radius_miles",
	"service_area_method",
	"climate_zone",
	"fallback_sections",
	"error",
}

// Row flattens r into one cell per column.
func Row(r Result) []string {
	row := make([]string, len(Columns))
	row[0] = r.Source
	if r.Err != nil {
		row[len(row)-1] = r.Err.Error()
	}
	g := r.Generation
	if g == nil {
		return row
	}

	years := ""
	if y := g.Signals.Age.YearsInBusiness; y != nil && g.Signals.Age.Known() {
		years = strconv.Itoa(*y)
	}
	copy(row[1:], []string{
		g.BusinessID,
		g.Business,
		g.Industry,
		g.Selection.TemplateID,
		g.Selection.Metadata.TemplateMatch,
		formatFloat(g.Quality.Total),
		formatFloat(g.Quality.Breakdown.BasicInfo),
		formatFloat(g.Quality.Breakdown.Content),
		formatFloat(g.Quality.Breakdown.Visuals),
		formatFloat(g.Quality.Breakdown.Trust),
		formatFloat(g.Quality.Breakdown.Differentiation),
		string(g.Signals.Hours.Status),
		years,
		formatFloat(g.Signals.ServiceArea.RadiusMiles),
		g.Signals.ServiceArea.Method,
		string(g.Signals.ClimateZone),
		strconv.Itoa(g.Selection.FallbackCount()),
	})
	return row
}

// Write encodes results to w in the given format.
func Write(w io.Writer, format Format, results []Result) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, results)
	case FormatXLSX:
		return writeXLSX(w, results)
	case FormatJSON:
		return writeJSON(w, results)
	default:
		return eris.Errorf("export: unsupported format %q", format)
	}
}

func writeCSV(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, r := range results {
		if err := cw.Write(Row(r)); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "export: flush csv")
	}
	return nil
}

func writeXLSX(w io.Writer, results []Result) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("generations")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}
	addRow(sheet, Columns)
	for _, r := range results {
		addRow(sheet, Row(r))
	}
	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write xlsx")
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, cells []string) {
	row := sheet.AddRow()
	for _, v := range cells {
		row.AddCell().SetString(v)
	}
}

// jsonResult carries the error as text.
type jsonResult struct {
	Result
	Error string `json:"error,omitempty"`
}

func writeJSON(w io.Writer, results []Result) error {
	out := make([]jsonResult, len(results))
	for i, r := range results {
		out[i] = jsonResult{Result: r}
		if r.Err != nil {
			out[i].Error = r.Err.Error()
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return eris.Wrap(err, "export: encode json")
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
