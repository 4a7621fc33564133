package age

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/site-engine/internal/model"
)

const year = 2025

func extract(p *model.BusinessProfile) model.AgeEstimate {
	return NewExtractor().Extract(Input{Profile: p, CurrentYear: year})
}

func requireYears(t *testing.T, est model.AgeEstimate, established int) {
	t.Helper()
	require.NotNil(t, est.EstablishedYear)
	require.NotNil(t, est.YearsInBusiness)
	assert.Equal(t, established, *est.EstablishedYear)
	assert.Equal(t, year-established, *est.YearsInBusiness)
}

func TestExtract_EstablishedDate(t *testing.T) {
	est := extract(&model.BusinessProfile{Metadata: model.Metadata{EstablishedDate: "2010"}})

	requireYears(t, est, 2010)
	assert.InDelta(t, 0.95, est.Confidence, 0.0001)
	assert.Equal(t, model.AgeSourceMetadata, est.Source)
	assert.Equal(t, "established_date", est.Rule)
}

func TestExtract_EstablishedDateWithFullDate(t *testing.T) {
	est := extract(&model.BusinessProfile{Metadata: model.Metadata{EstablishedDate: "1998-04-12"}})
	requireYears(t, est, 1998)
}

func TestExtract_EstablishedDateOutOfRangeFallsThrough(t *testing.T) {
	p := &model.BusinessProfile{
		Metadata: model.Metadata{EstablishedDate: "1850", YearEstablished: float64(2001)},
	}
	est := extract(p)

	requireYears(t, est, 2001)
	assert.InDelta(t, 0.9, est.Confidence, 0.0001)
	assert.Equal(t, "year_established", est.Rule)
}

func TestExtract_FutureYearRejected(t *testing.T) {
	est := extract(&model.BusinessProfile{Metadata: model.Metadata{EstablishedDate: "2031"}})
	assert.Equal(t, model.AgeSourceNone, est.Source)
	assert.Zero(t, est.Confidence)
}

func TestExtract_CurrentYearAccepted(t *testing.T) {
	est := extract(&model.BusinessProfile{Metadata: model.Metadata{EstablishedDate: "2025"}})
	requireYears(t, est, 2025)
	assert.Equal(t, 0, *est.YearsInBusiness)
}

func TestExtract_YearEstablishedCandidateLocations(t *testing.T) {
	tests := []struct {
		name  string
		attrs map[string]any
		want  int
	}{
		{"flat camel", map[string]any{"yearEstablished": float64(1999)}, 1999},
		{"flat snake string", map[string]any{"year_established": "2003"}, 2003},
		{"nested business", map[string]any{"business": map[string]any{"yearEstablished": 1987}}, 1987},
		{"nested details", map[string]any{"details": map[string]any{"founded": "1975 (incorporated)"}}, 1975},
		{"first valid wins", map[string]any{"yearEstablished": "n/a", "about": map[string]any{"yearFounded": float64(2012)}}, 2012},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := extract(&model.BusinessProfile{Attributes: tt.attrs})
			requireYears(t, est, tt.want)
			assert.Equal(t, model.AgeSourceMetadata, est.Source)
		})
	}
}

func TestExtract_DescriptionYear(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"Proudly serving the Valley since 2010.", 2010},
		{"Family business established in 1998 by Joe.", 1998},
		{"Founded 2004 in Austin", 2004},
		{"Smith & Sons, Est. 1987", 1987},
		{"Established: 1998 in Phoenix", 1998},
		{"Est: 1987", 1987},
		{"Founded - 2004", 2004},
		{"Serving the St. Louis area since 2001", 2001},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			est := extract(&model.BusinessProfile{Profile: model.ProfileText{Description: tt.text}})
			requireYears(t, est, tt.want)
			assert.Equal(t, model.AgeSourceDescription, est.Source)
			assert.GreaterOrEqual(t, est.Confidence, 0.6)
			assert.LessOrEqual(t, est.Confidence, 0.7)
		})
	}
}

func TestExtract_DescriptionTenure(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"25+ years of experience in plumbing", 2000},
		{"Over 30 years serving homeowners", 1995},
		{"more than 12 years in the trade", 2013},
		{"We bring 8 years in business to every job", 2017},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			est := extract(&model.BusinessProfile{Profile: model.ProfileText{Description: tt.text}})
			requireYears(t, est, tt.want)
			assert.InDelta(t, 0.6, est.Confidence, 0.0001)
			assert.Equal(t, "description_tenure", est.Rule)
		})
	}
}

func TestExtract_TenureOutOfRange(t *testing.T) {
	est := extract(&model.BusinessProfile{Profile: model.ProfileText{Description: "over 150 years of experience combined"}})
	assert.Equal(t, model.AgeSourceNone, est.Source)
}

func TestExtract_DirectYearBeatsTenure(t *testing.T) {
	est := extract(&model.BusinessProfile{Profile: model.ProfileText{
		Description: "With 40 years of experience, our team has been serving Denver since 2015.",
	}})
	requireYears(t, est, 2015)
	assert.Equal(t, "description_year", est.Rule)
}

func TestExtract_AuxiliaryHours(t *testing.T) {
	p := &model.BusinessProfile{AuxiliaryHours: []model.LabeledHours{
		{Label: "Delivery", DisplayText: []string{"Mon-Fri 9-5"}},
		{Label: "About", DisplayText: []string{"Established 1995"}},
	}}
	est := extract(p)

	requireYears(t, est, 1995)
	assert.InDelta(t, 0.7, est.Confidence, 0.0001)
	assert.Equal(t, model.AgeSourceDescription, est.Source)
}

func TestExtract_MetadataOutranksDescription(t *testing.T) {
	p := &model.BusinessProfile{
		Metadata: model.Metadata{EstablishedDate: "2010"},
		Profile:  model.ProfileText{Description: "Founded in 1990"},
	}
	est := extract(p)
	requireYears(t, est, 2010)
	assert.Equal(t, model.AgeSourceMetadata, est.Source)
}

func TestExtract_NoData(t *testing.T) {
	est := extract(&model.BusinessProfile{})
	assert.Zero(t, est.Confidence)
	assert.Equal(t, model.AgeSourceNone, est.Source)
	assert.Nil(t, est.YearsInBusiness)
	assert.False(t, est.Known())

	est = NewExtractor().Extract(Input{CurrentYear: year})
	assert.Equal(t, model.AgeSourceNone, est.Source)
}

func TestExtractor_CustomChainOrder(t *testing.T) {
	p := &model.BusinessProfile{
		Metadata: model.Metadata{EstablishedDate: "2010"},
		Profile:  model.ProfileText{Description: "Founded in 1990"},
	}
	e := NewExtractor(DescriptionYearRule(), EstablishedDateRule())
	est := e.Extract(Input{Profile: p, CurrentYear: year})

	requireYears(t, est, 1990)
	assert.Equal(t, []string{"description_year", "established_date"}, e.Rules())
}

func TestExtract_UsesNowYear(t *testing.T) {
	now := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	est := Extract(&model.BusinessProfile{Metadata: model.Metadata{EstablishedDate: "2010"}}, now)
	require.NotNil(t, est.YearsInBusiness)
	assert.Equal(t, 20, *est.YearsInBusiness)
}

func TestDefaultRules_Order(t *testing.T) {
	assert.Equal(t,
		[]string{"established_date", "year_established", "description_year", "description_tenure", "auxiliary_hours"},
		NewExtractor().Rules())
}
