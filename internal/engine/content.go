package engine

import (
	"strings"

	"github.com/sells-group/site-engine/internal/model"
	"github.com/sells-group/site-engine/internal/template"
)

// BuildContent flattens a profile, its signals and the business attributes
// into the field map variants are matched against. Explicit answers override
// profile-derived values; section answers are scoped to their section.
func BuildContent(p model.BusinessProfile, sig model.NormalizedSignals, attrs model.BusinessAttributes) template.Content {
	root := make(map[string]any)
	set := func(key string, v any) {
		switch t := v.(type) {
		case string:
			if strings.TrimSpace(t) == "" {
				return
			}
		case []string:
			if len(t) == 0 {
				return
			}
		}
		root[key] = v
	}

	set("name", strings.TrimSpace(p.Name))
	set("description", strings.TrimSpace(p.Profile.Description))
	set("phone", p.PrimaryPhone())
	set("phones", nonEmpty(p.PhoneNumbers))
	set("address", strings.TrimSpace(p.Address))
	set("website", strings.TrimSpace(p.Website))
	if p.Coordinates.Valid() {
		root["coordinates"] = *p.Coordinates
	}

	services := nonEmpty(attrs.Services)
	if len(services) == 0 {
		services = nonEmpty(p.Services)
	}
	set("services", services)
	set("images", p.PhotoURLs())
	set("videos", nonEmpty(p.Videos))
	set("certifications", nonEmpty(p.Certifications))
	set("highlights", nonEmpty(p.Highlights))

	if p.Reviews != nil && p.Reviews.Count > 0 {
		root["rating"] = p.Reviews.Rating
		root["reviewCount"] = p.Reviews.Count
	}

	if sig.Age.Known() {
		root["yearsInBusiness"] = *sig.Age.YearsInBusiness
		root["establishedYear"] = *sig.Age.EstablishedYear
	}
	if len(p.RegularHours.Periods) > 0 {
		root["hoursStatus"] = string(sig.Hours.Status)
		if sig.Hours.NextChange != nil {
			root["nextChange"] = *sig.Hours.NextChange
		}
		root["hours"] = p.RegularHours.Periods
	}
	if sig.ServiceArea.RadiusMiles > 0 {
		root["serviceRadiusMiles"] = sig.ServiceArea.RadiusMiles
	}
	var places []string
	for _, pl := range p.ServiceArea.Places {
		places = append(places, pl.Name)
	}
	set("serviceAreaPlaces", nonEmpty(places))
	set("climateZone", string(sig.ClimateZone))

	set("industry", attrs.Industry)
	set("stage", attrs.Stage)
	set("personality", attrs.Personality)
	set("designPreference", attrs.DesignPreference)
	set("colorPreference", attrs.ColorPreference)

	for k, v := range attrs.Answers {
		root[k] = v
	}

	var sections map[string]map[string]any
	if len(attrs.SectionAnswers) > 0 {
		sections = make(map[string]map[string]any, len(attrs.SectionAnswers))
		for name, vals := range attrs.SectionAnswers {
			sections[name] = vals
		}
	}

	return template.Content{Root: root, Sections: sections}
}

func nonEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
