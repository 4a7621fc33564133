package age

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/site-engine/internal/model"
)

// YearLocations are the attribute paths checked, in order, for an alternate
// "year established" value after Metadata.YearEstablished.
var YearLocations = []string{
	"yearEstablished",
	"year_established",
	"business.yearEstablished",
	"details.founded",
	"about.yearFounded",
}

var (
	leadingYearRe = regexp.MustCompile(`^\s*(\d{4})`)
	anyYearRe     = regexp.MustCompile(`\b(\d{4})\b`)

	descriptionYearRe = regexp.MustCompile(
		`(?i)\b(?:established|founded|serving\b[^\n]{0,60}?\bsince|est\.?)\s*[:\-]?\s*(?:in\s+)?(\d{4})\b`)

	tenureRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(\d{1,3})\s*\+?\s*years?\s+(?:of\s+)?(?:experience|service|business|in\s+business)\b`),
		regexp.MustCompile(`(?i)\b(?:over|more\s+than)\s+(\d{1,3})\s*\+?\s*years\b`),
	}

	establishedRe = regexp.MustCompile(`(?i)\bestablished\b`)
)

// EstablishedDateRule reads Metadata.EstablishedDate ("2010", "2010-05-01").
func EstablishedDateRule() Rule {
	return Rule{
		Name: "established_date",
		Extract: func(in Input) (model.AgeEstimate, bool) {
			m := leadingYearRe.FindStringSubmatch(in.Profile.Metadata.EstablishedDate)
			if m == nil {
				return model.AgeEstimate{}, false
			}
			year, _ := strconv.Atoi(m[1])
			if !validYear(year, in.CurrentYear) {
				return model.AgeEstimate{}, false
			}
			return fromYear(year, in.CurrentYear, ConfidenceEstablishedDate, model.AgeSourceMetadata), true
		},
	}
}

// YearEstablishedRule checks Metadata.YearEstablished and then each of
// YearLocations inside Attributes.
func YearEstablishedRule() Rule {
	return Rule{
		Name: "year_established",
		Extract: func(in Input) (model.AgeEstimate, bool) {
			candidates := []any{in.Profile.Metadata.YearEstablished}
			for _, path := range YearLocations {
				candidates = append(candidates, lookupPath(in.Profile.Attributes, path))
			}
			for _, c := range candidates {
				year, ok := toYear(c)
				if !ok || !validYear(year, in.CurrentYear) {
					continue
				}
				return fromYear(year, in.CurrentYear, ConfidenceYearEstablished, model.AgeSourceMetadata), true
			}
			return model.AgeEstimate{}, false
		},
	}
}

// DescriptionYearRule matches phrases like "established 1998", "founded in
// 2004", "serving the Valley since 2010" and "Est. 1987".
func DescriptionYearRule() Rule {
	return Rule{
		Name: "description_year",
		Extract: func(in Input) (model.AgeEstimate, bool) {
			for _, m := range descriptionYearRe.FindAllStringSubmatch(in.Profile.Profile.Description, -1) {
				year, _ := strconv.Atoi(m[1])
				if validYear(year, in.CurrentYear) {
					return fromYear(year, in.CurrentYear, ConfidenceDescriptionYear, model.AgeSourceDescription), true
				}
			}
			return model.AgeEstimate{}, false
		},
	}
}

// DescriptionTenureRule matches "25+ years of experience" and "over 30 years".
// The year is derived as currentYear - N.
func DescriptionTenureRule() Rule {
	return Rule{
		Name: "description_tenure",
		Extract: func(in Input) (model.AgeEstimate, bool) {
			text := in.Profile.Profile.Description
			for _, re := range tenureRes {
				for _, m := range re.FindAllStringSubmatch(text, -1) {
					n, _ := strconv.Atoi(m[1])
					if n <= 0 || n >= 100 {
						continue
					}
					return fromYear(in.CurrentYear-n, in.CurrentYear, ConfidenceTenure, model.AgeSourceDescription), true
				}
			}
			return model.AgeEstimate{}, false
		},
	}
}

// AuxiliaryHoursRule finds an auxiliary-hours entry reading like
// "Established 1995".
func AuxiliaryHoursRule() Rule {
	return Rule{
		Name: "auxiliary_hours",
		Extract: func(in Input) (model.AgeEstimate, bool) {
			for _, entry := range in.Profile.AuxiliaryHours {
				texts := append([]string{entry.Label}, entry.DisplayText...)
				for _, text := range texts {
					if !establishedRe.MatchString(text) {
						continue
					}
					for _, m := range anyYearRe.FindAllStringSubmatch(text, -1) {
						year, _ := strconv.Atoi(m[1])
						if validYear(year, in.CurrentYear) {
							return fromYear(year, in.CurrentYear, ConfidenceAuxiliaryHours, model.AgeSourceDescription), true
						}
					}
				}
			}
			return model.AgeEstimate{}, false
		},
	}
}

// lookupPath walks a dotted path through nested maps.
func lookupPath(doc map[string]any, path string) any {
	var cur any = doc
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[key]
		if !ok {
			return nil
		}
	}
	return cur
}

// toYear accepts whole numbers and numeric strings (leading 4 digits).
func toYear(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		if t != math.Trunc(t) {
			return 0, false
		}
		return int(t), true
	case string:
		m := leadingYearRe.FindStringSubmatch(t)
		if m == nil {
			return 0, false
		}
		y, _ := strconv.Atoi(m[1])
		return y, true
	default:
		return 0, false
	}
}
