// Package quality scores how complete and trustworthy a business profile's
// data is, as a weighted 0-100 breakdown across five categories.
package quality

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/site-engine/internal/config"
)

// DefaultConfig returns the default category weights. Weights sum to 100.
func DefaultConfig() config.QualityConfig {
	return config.QualityConfig{
		BasicInfoWeight:       25,
		ContentWeight:         25,
		VisualsWeight:         20,
		TrustWeight:           20,
		DifferentiationWeight: 10,
	}
}

// WeightSum returns the sum of all category weights.
func WeightSum(c config.QualityConfig) float64 {
	return c.BasicInfoWeight + c.ContentWeight + c.VisualsWeight +
		c.TrustWeight + c.DifferentiationWeight
}

// ValidateConfig checks that a QualityConfig is internally consistent.
func ValidateConfig(c config.QualityConfig) error {
	var errs []string

	weights := []struct {
		name  string
		value float64
	}{
		{"basic_info_weight", c.BasicInfoWeight},
		{"content_weight", c.ContentWeight},
		{"visuals_weight", c.VisualsWeight},
		{"trust_weight", c.TrustWeight},
		{"differentiation_weight", c.DifferentiationWeight},
	}
	for _, w := range weights {
		if w.value < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", w.name))
		}
	}

	// Weights should be close to 100 (allow tolerance for floating-point).
	if sum := WeightSum(c); math.Abs(sum-100) > 0.01 {
		errs = append(errs, fmt.Sprintf("weights should sum to 100, got %.2f", sum))
	}

	if len(errs) > 0 {
		return eris.Errorf("quality: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
