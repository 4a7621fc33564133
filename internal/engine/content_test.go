package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/site-engine/internal/model"
)

func TestBuildContent_ProfileFields(t *testing.T) {
	p := phoenixPlumber()
	years, year := 27, 1998
	sig := model.NormalizedSignals{
		Hours:       model.HoursStatus{IsOpen: true, Status: model.StatusOpen},
		Age:         model.AgeEstimate{YearsInBusiness: &years, EstablishedYear: &year, Confidence: 0.95},
		ServiceArea: model.ServiceAreaEstimate{RadiusMiles: 22.5},
		ClimateZone: model.ClimateArid,
	}

	c := BuildContent(p, sig, model.BusinessAttributes{Industry: "plumbing"})

	assert.Equal(t, "Desert Flow Plumbing", c.Root["name"])
	assert.Equal(t, "602-555-0100", c.Root["phone"])
	assert.Equal(t, []string{"602-555-0100"}, c.Root["phones"])
	assert.Equal(t, model.Coordinates{Lat: 33.4484, Lng: -112.0740}, c.Root["coordinates"])
	assert.Equal(t, []string{"Drain cleaning", "Water heaters", "Leak detection"}, c.Root["services"])
	assert.Equal(t, 4.7, c.Root["rating"])
	assert.Equal(t, 120, c.Root["reviewCount"])
	assert.Equal(t, 27, c.Root["yearsInBusiness"])
	assert.Equal(t, "OPEN", c.Root["hoursStatus"])
	assert.Equal(t, 22.5, c.Root["serviceRadiusMiles"])
	assert.Equal(t, []string{"Scottsdale", "Mesa", "Chandler"}, c.Root["serviceAreaPlaces"])
	assert.Equal(t, "ARID", c.Root["climateZone"])
	assert.Equal(t, "plumbing", c.Root["industry"])
	assert.Nil(t, c.Sections)
}

func TestBuildContent_OmitsMissing(t *testing.T) {
	c := BuildContent(model.BusinessProfile{Name: "  ", Coordinates: &model.Coordinates{}}, model.NormalizedSignals{}, model.BusinessAttributes{})

	for _, key := range []string{"name", "phone", "coordinates", "services", "images", "rating", "yearsInBusiness", "hoursStatus", "serviceRadiusMiles"} {
		assert.NotContains(t, c.Root, key)
	}
}

func TestBuildContent_AnswersOverride(t *testing.T) {
	p := phoenixPlumber()
	attrs := model.BusinessAttributes{
		Services: []string{"Emergency repairs"},
		Answers:  map[string]any{"name": "Desert Flow", "tagline": "Here when it floods"},
		SectionAnswers: map[string]map[string]any{
			"hero": {"tagline": "Hero-only tagline"},
		},
	}

	c := BuildContent(p, model.NormalizedSignals{}, attrs)

	assert.Equal(t, "Desert Flow", c.Root["name"])
	assert.Equal(t, "Here when it floods", c.Root["tagline"])
	assert.Equal(t, []string{"Emergency repairs"}, c.Root["services"], "explicit services win over profile services")
	assert.Equal(t, "Hero-only tagline", c.Sections["hero"]["tagline"])
}
