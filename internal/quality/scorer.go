package quality

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"

	"github.com/sells-group/site-engine/internal/benchmark"
	"github.com/sells-group/site-engine/internal/config"
	"github.com/sells-group/site-engine/internal/hours"
	"github.com/sells-group/site-engine/internal/model"
)

// Confidence an age estimate needs to count as strong differentiation.
const strongAgeConfidence = 0.6

// Scorer computes DataQualityScore values. It is safe for concurrent use.
type Scorer struct {
	cfg   config.QualityConfig
	cache *benchmark.Cache
}

// NewScorer validates cfg and creates a Scorer reading industry expectations
// from cache.
func NewScorer(cfg config.QualityConfig, cache *benchmark.Cache) (*Scorer, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if cache == nil {
		return nil, eris.New("quality: benchmark cache is required")
	}
	return &Scorer{cfg: cfg, cache: cache}, nil
}

// Score computes the data quality of p. sig must be the signals resolved
// for the same profile; industry selects the photo and review benchmarks.
// Missing fields contribute zero; only a failing benchmark load errors.
func (s *Scorer) Score(p model.BusinessProfile, sig model.NormalizedSignals, industry string) (model.DataQualityScore, error) {
	ds, err := s.cache.Get()
	if err != nil {
		return model.DataQualityScore{}, eris.Wrap(err, "quality: load benchmark dataset")
	}
	bench, _ := ds.Lookup(industry)

	b := model.QualityBreakdown{
		BasicInfo:       weigh(basicInfo(p), s.cfg.BasicInfoWeight),
		Content:         weigh(content(p), s.cfg.ContentWeight),
		Visuals:         weigh(visuals(p, bench), s.cfg.VisualsWeight),
		Trust:           weigh(trust(p, sig, bench), s.cfg.TrustWeight),
		Differentiation: weigh(differentiation(p, sig), s.cfg.DifferentiationWeight),
	}
	return model.DataQualityScore{Total: round2(b.Sum()), Breakdown: b}, nil
}

func basicInfo(p model.BusinessProfile) float64 {
	present := []bool{
		strings.TrimSpace(p.Name) != "",
		p.PrimaryPhone() != "",
		hours.HasSchedule(p.RegularHours.Periods),
		p.Coordinates.Valid(),
		strings.TrimSpace(p.Address) != "",
	}
	n := 0
	for _, ok := range present {
		if ok {
			n++
		}
	}
	return float64(n) / float64(len(present))
}

func content(p model.BusinessProfile) float64 {
	var frac float64
	switch n := utf8.RuneCountInString(strings.TrimSpace(p.Profile.Description)); {
	case n >= 300:
		frac += 0.6
	case n >= 150:
		frac += 0.4
	case n >= 50:
		frac += 0.2
	}

	switch n := countNonEmpty(p.Services); {
	case n >= 3:
		frac += 0.4
	case n >= 1:
		frac += 0.2
	}
	return frac
}

func visuals(p model.BusinessProfile, bench benchmark.Industry) float64 {
	var frac float64
	photos := len(p.PhotoURLs())
	switch r := ratio(photos, bench.ExpectedPhotos); {
	case r >= 1:
		frac = 1.0
	case r >= 0.5:
		frac = 0.75
	case r >= 0.25:
		frac = 0.5
	case photos > 0:
		frac = 0.25
	}
	if countNonEmpty(p.Videos) > 0 {
		frac += 0.25
	}
	return frac
}

func trust(p model.BusinessProfile, sig model.NormalizedSignals, bench benchmark.Industry) float64 {
	var frac float64
	if p.Reviews != nil {
		switch r := ratio(p.Reviews.Count, bench.ExpectedReviews); {
		case r >= 1:
			frac += 0.25
		case r >= 0.5:
			frac += 0.15
		case p.Reviews.Count > 0:
			frac += 0.05
		}

		// A rating without any reviews behind it carries no weight.
		if p.Reviews.Count > 0 {
			switch rating := p.Reviews.Rating; {
			case rating >= 4.5:
				frac += 0.25
			case rating >= 4.0:
				frac += 0.2
			case rating >= 3.5:
				frac += 0.1
			}
		}
	}
	if countNonEmpty(p.Certifications) > 0 {
		frac += 0.25
	}
	if sig.Hours.NextChange != nil {
		frac += 0.25
	}
	return frac
}

func differentiation(p model.BusinessProfile, sig model.NormalizedSignals) float64 {
	var frac float64
	switch c := sig.Age.Confidence; {
	case c >= strongAgeConfidence:
		frac += 0.4
	case c > 0:
		frac += 0.2
	}
	if sig.ServiceArea.Method != "" && sig.ServiceArea.Method != model.MethodIndustryDefault {
		frac += 0.3
	}
	if countNonEmpty(p.Highlights) > 0 {
		frac += 0.3
	}
	return frac
}

// weigh scales a category fraction by its weight, capped at the weight.
func weigh(frac, weight float64) float64 {
	frac = math.Max(0, math.Min(1, frac))
	return round2(frac * weight)
}

func ratio(have, expected int) float64 {
	if expected <= 0 {
		if have > 0 {
			return 1
		}
		return 0
	}
	return float64(have) / float64(expected)
}

func countNonEmpty(vals []string) int {
	n := 0
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			n++
		}
	}
	return n
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
