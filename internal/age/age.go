// Package age estimates how long a business has operated from ranked,
// possibly conflicting evidence. Rules are evaluated in a fixed priority order
// and the first match wins; evidence from different sources is never merged.
package age

import (
	"time"

	"github.com/sells-group/site-engine/internal/model"
)

// Confidence assigned per evidence source.
const (
	ConfidenceEstablishedDate = 0.95
	ConfidenceYearEstablished = 0.9
	ConfidenceDescriptionYear = 0.7
	ConfidenceTenure          = 0.6
	ConfidenceAuxiliaryHours  = 0.7
)

const minYear = 1900

// Input is everything a rule may inspect.
type Input struct {
	Profile     *model.BusinessProfile
	CurrentYear int
}

// Rule is one link of the extraction chain.
type Rule struct {
	Name    string
	Extract func(in Input) (model.AgeEstimate, bool)
}

// Extractor evaluates rules in order, returning the first match.
type Extractor struct {
	rules []Rule
}

// NewExtractor builds an Extractor over the given rules. With no rules the
// default chain is used.
func NewExtractor(rules ...Rule) *Extractor {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Extractor{rules: rules}
}

// DefaultRules returns the fixed source-reliability ranking.
func DefaultRules() []Rule {
	return []Rule{
		EstablishedDateRule(),
		YearEstablishedRule(),
		DescriptionYearRule(),
		DescriptionTenureRule(),
		AuxiliaryHoursRule(),
	}
}

// Rules returns the rule names in evaluation order.
func (e *Extractor) Rules() []string {
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name
	}
	return names
}

// Extract runs the chain. A nil profile or no match yields a zero-confidence
// estimate with source "none".
func (e *Extractor) Extract(in Input) model.AgeEstimate {
	if in.Profile != nil {
		for _, r := range e.rules {
			if est, ok := r.Extract(in); ok {
				est.Rule = r.Name
				return est
			}
		}
	}
	return model.AgeEstimate{Source: model.AgeSourceNone}
}

// Extract runs the default chain against p using now's calendar year.
func Extract(p *model.BusinessProfile, now time.Time) model.AgeEstimate {
	return NewExtractor().Extract(Input{Profile: p, CurrentYear: now.Year()})
}

// validYear enforces the (1900, currentYear] bound.
func validYear(year, currentYear int) bool {
	return year > minYear && year <= currentYear
}

func fromYear(year, currentYear int, confidence float64, source string) model.AgeEstimate {
	years := currentYear - year
	return model.AgeEstimate{
		YearsInBusiness: &years,
		EstablishedYear: &year,
		Confidence:      confidence,
		Source:          source,
	}
}
