package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/site-engine/internal/model"
)

func intPtr(v int) *int { return &v }

func sampleResults() []Result {
	return []Result{
		{
			Source: "plumber.json",
			Generation: &model.Generation{
				BusinessID: "biz-1",
				Business:   "Desert Flow Plumbing",
				Industry:   "plumbing",
				Quality: model.DataQualityScore{
					Total:     72.5,
					Breakdown: model.QualityBreakdown{BasicInfo: 25, Content: 20, Visuals: 10, Trust: 12.5, Differentiation: 5},
				},
				Signals: model.NormalizedSignals{
					Hours:       model.HoursStatus{Status: model.StatusOpen, IsOpen: true},
					Age:         model.AgeEstimate{YearsInBusiness: intPtr(27), EstablishedYear: intPtr(1998), Confidence: 0.9},
					ServiceArea: model.ServiceAreaEstimate{RadiusMiles: 20, Method: model.MethodDeclaredRadius},
					ClimateZone: model.ClimateArid,
				},
				Selection: model.SelectionResult{
					TemplateID: "trades-pro",
					Sections:   map[string]model.SectionSelection{"hero": {Fallback: true}},
					Metadata:   model.SelectionMetadata{TemplateMatch: model.MatchIndustry},
				},
			},
		},
		{Source: "broken.json", Err: eris.New("profile: document failed schema validation")},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{" XLSX ", FormatXLSX, false},
		{"json", FormatJSON, false},
		{"parquet", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRow(t *testing.T) {
	rs := sampleResults()

	ok := Row(rs[0])
	require.Len(t, ok, len(Columns))
	assert.Equal(t, []string{
		"plumber.json", "biz-1", "Desert Flow Plumbing", "plumbing", "trades-pro", "industry",
		"72.5", "25", "20", "10", "12.5", "5", "OPEN", "27", "20", "declaredRadius", "ARID", "1", "",
	}, ok)

	failed := Row(rs[1])
	assert.Equal(t, "broken.json", failed[0])
	assert.Contains(t, failed[len(failed)-1], "schema validation")
	assert.Empty(t, failed[1])
}

func TestWrite_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sampleResults()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Columns, records[0])
	assert.Equal(t, "trades-pro", records[1][4])
}

func TestWrite_XLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, sampleResults()))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	sheet := f.Sheets[0]
	assert.Equal(t, "generations", sheet.Name)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "source", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "Desert Flow Plumbing", sheet.Rows[1].Cells[2].String())
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sampleResults()))

	var out []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "plumber.json", out[0]["source"])
	assert.NotNil(t, out[0]["generation"])
	assert.NotContains(t, out[0], "error")
	assert.Contains(t, out[1]["error"], "schema validation")
}

func TestWrite_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, Format("yaml"), nil))
}
