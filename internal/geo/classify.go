// Package geo provides coarse spatial signals: climate classification and
// service-area radius estimation.
package geo

import "github.com/sells-group/site-engine/internal/model"

// Climate thresholds (degrees). These are placeholders approximating the
// continental US until a standard climate taxonomy is adopted.
const (
	coldLatitudeThreshold  = 42.0   // north of this is COLD
	warmLatitudeThreshold  = 35.0   // south of this is ARID or HUMID
	aridLongitudeThreshold = -100.0 // west of this (in the warm band) is ARID
)

// ClassifyClimate returns the coarse climate zone for a point.
// Rules:
//   - COLD: latitude > 42
//   - ARID: latitude < 35 AND longitude < -100
//   - HUMID: latitude < 35 AND longitude >= -100
//   - TEMPERATE: everything else
func ClassifyClimate(lat, lng float64) model.ClimateZone {
	if lat > coldLatitudeThreshold {
		return model.ClimateCold
	}
	if lat < warmLatitudeThreshold {
		if lng < aridLongitudeThreshold {
			return model.ClimateArid
		}
		return model.ClimateHumid
	}
	return model.ClimateTemperate
}

// ClimateFor classifies c, defaulting to TEMPERATE when the point is missing
// or invalid.
func ClimateFor(c *model.Coordinates) model.ClimateZone {
	if !c.Valid() {
		return model.ClimateTemperate
	}
	return ClassifyClimate(c.Lat, c.Lng)
}
