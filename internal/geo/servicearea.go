package geo

import (
	"math"
	"strings"

	"github.com/twpayne/go-geom"
	"golang.org/x/text/cases"

	"github.com/sells-group/site-engine/internal/model"
)

// Service-area estimation policy.
const (
	minCityListPlaces     = 3
	radiusBuffer          = 1.10 // 10% beyond the farthest place
	minMeasuredRadius     = 5.0  // miles
	fallbackDefaultRadius = 25.0 // miles, used when no benchmark radius is known

	cityListBaseConfidence   = 0.55
	measuredBonus            = 0.10
	perExtraPlaceBonus       = 0.05
	maxExtraPlaceBonus       = 0.15
	corroborationBonus       = 0.10
	corroborationTolerance   = 0.25
	maxCityListConfidence    = 0.95
	declaredRadiusConfidence = 0.6
	defaultRadiusConfidence  = 0.2
)

// ServiceAreaInput holds everything the resolver needs. Anchor is the
// business location; DefaultRadius is the industry average in miles.
type ServiceAreaInput struct {
	Places         []model.ServicePlace
	DeclaredRadius float64
	Anchor         *model.Coordinates
	DefaultRadius  float64
}

// ResolveServiceArea estimates the service radius in miles.
//
// Method "cityList" applies when three or more distinct named places are
// given. The radius is measured from the anchor (or the centre of the places'
// bounding box) to the farthest located place when coordinates allow it, and
// scaled from the industry default otherwise. Method "declaredRadius" uses an
// explicit radius; "industryDefault" is the low-confidence last resort.
func ResolveServiceArea(in ServiceAreaInput) model.ServiceAreaEstimate {
	defaultRadius := in.DefaultRadius
	if defaultRadius <= 0 {
		defaultRadius = fallbackDefaultRadius
	}

	places := distinctPlaces(in.Places)
	if len(places) >= minCityListPlaces {
		return cityList(places, in.Anchor, in.DeclaredRadius, defaultRadius)
	}

	if in.DeclaredRadius > 0 {
		return model.ServiceAreaEstimate{
			RadiusMiles: round1(in.DeclaredRadius),
			Confidence:  declaredRadiusConfidence,
			Method:      model.MethodDeclaredRadius,
			PlaceCount:  len(places),
		}
	}

	return model.ServiceAreaEstimate{
		RadiusMiles: round1(defaultRadius),
		Confidence:  defaultRadiusConfidence,
		Method:      model.MethodIndustryDefault,
		PlaceCount:  len(places),
	}
}

func cityList(places []model.ServicePlace, anchor *model.Coordinates, declared, defaultRadius float64) model.ServiceAreaEstimate {
	n := len(places)
	confidence := cityListBaseConfidence + math.Min(maxExtraPlaceBonus, perExtraPlaceBonus*float64(n-minCityListPlaces))

	radius, measured := measuredRadius(places, anchor)
	if measured {
		confidence += measuredBonus
	} else {
		// Unlocated places: widen the industry default by 10% per extra place,
		// at most doubling it.
		radius = math.Min(defaultRadius*2, defaultRadius*(1+0.1*float64(n-minCityListPlaces)))
	}

	if declared > 0 && math.Abs(declared-radius) <= corroborationTolerance*radius {
		confidence += corroborationBonus
	}

	return model.ServiceAreaEstimate{
		RadiusMiles: round1(radius),
		Confidence:  round2(math.Min(maxCityListConfidence, confidence)),
		Method:      model.MethodCityList,
		PlaceCount:  n,
	}
}

// measuredRadius returns the buffered distance from the centre to the
// farthest located place. Without a valid anchor the centre of the located
// places' bounding box is used, which needs at least two located places.
func measuredRadius(places []model.ServicePlace, anchor *model.Coordinates) (float64, bool) {
	var flat []float64
	for _, p := range places {
		if p.Coordinates.Valid() {
			flat = append(flat, p.Coordinates.Lng, p.Coordinates.Lat)
		}
	}
	located := len(flat) / 2

	var center model.Coordinates
	switch {
	case anchor.Valid() && located >= 1:
		center = *anchor
	case located >= 2:
		b := geom.NewMultiPointFlat(geom.XY, flat).Bounds()
		center = model.Coordinates{
			Lng: (b.Min(0) + b.Max(0)) / 2,
			Lat: (b.Min(1) + b.Max(1)) / 2,
		}
	default:
		return 0, false
	}

	var farthest float64
	for i := 0; i < located; i++ {
		d := HaversineMiles(center, model.Coordinates{Lng: flat[2*i], Lat: flat[2*i+1]})
		farthest = math.Max(farthest, d)
	}
	return math.Max(minMeasuredRadius, farthest*radiusBuffer), true
}

// distinctPlaces drops unnamed entries and case-insensitive duplicates,
// keeping the first occurrence.
func distinctPlaces(places []model.ServicePlace) []model.ServicePlace {
	fold := cases.Fold()
	seen := make(map[string]bool, len(places))
	out := make([]model.ServicePlace, 0, len(places))
	for _, p := range places {
		key := fold.String(strings.TrimSpace(p.Name))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
