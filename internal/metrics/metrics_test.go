package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/site-engine/internal/model"
)

func TestObserveGeneration(t *testing.T) {
	m := New()

	m.ObserveGeneration(&model.Generation{
		Quality: model.DataQualityScore{Total: 72},
		Selection: model.SelectionResult{
			TemplateID: "trades-pro",
			Sections: map[string]model.SectionSelection{
				"hero":    {VariantID: "hero.text"},
				"gallery": {VariantID: "gallery.masonry", Fallback: true},
			},
			Metadata: model.SelectionMetadata{TemplateMatch: model.MatchIndustry},
		},
	})

	assert.InDelta(t, 1, testutil.ToFloat64(m.Generations.WithLabelValues("trades-pro", "industry")), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SectionFallback.WithLabelValues("gallery")), 0.001)
	assert.InDelta(t, 0, testutil.ToFloat64(m.SectionFallback.WithLabelValues("hero")), 0.001)
}

func TestObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest("/v1/generate", "POST", 200, 15*time.Millisecond)
	m.ObserveRequest("/v1/generate", "POST", 400, time.Millisecond)

	assert.InDelta(t, 1, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/v1/generate", "POST", "200")), 0.001)
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration))
}

func TestHandler(t *testing.T) {
	m := New()
	m.RateLimited.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), "site_engine_http_rate_limited_total 1")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNew_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.InvalidInputs.Inc()
	assert.InDelta(t, 0, testutil.ToFloat64(b.InvalidInputs), 0.001)
}
