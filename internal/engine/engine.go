// Package engine wires the signal resolvers, the data quality scorer and the
// template selector into one deterministic generation pass. It performs no
// I/O; callers own loading, persistence and cancellation.
package engine

import (
	"strings"
	"time"
	_ "time/tzdata" // profile timezones must resolve in minimal containers

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/site-engine/internal/age"
	"github.com/sells-group/site-engine/internal/benchmark"
	"github.com/sells-group/site-engine/internal/config"
	"github.com/sells-group/site-engine/internal/geo"
	"github.com/sells-group/site-engine/internal/hours"
	"github.com/sells-group/site-engine/internal/model"
	"github.com/sells-group/site-engine/internal/quality"
	"github.com/sells-group/site-engine/internal/template"
)

// Engine runs the full pipeline for one business at a time. It is safe for
// concurrent use.
type Engine struct {
	cache    *benchmark.Cache
	scorer   *quality.Scorer
	selector *template.Selector
	ages     *age.Extractor
	clock    func() time.Time
	newID    func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used when a request carries no time.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithAgeExtractor replaces the default age rule chain.
func WithAgeExtractor(x *age.Extractor) Option {
	return func(e *Engine) { e.ages = x }
}

// WithIDGenerator overrides generation ID creation.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// New creates an Engine from its collaborators.
func New(cache *benchmark.Cache, scorer *quality.Scorer, selector *template.Selector, opts ...Option) (*Engine, error) {
	if cache == nil || scorer == nil || selector == nil {
		return nil, eris.New("engine: cache, scorer and selector are required")
	}
	e := &Engine{
		cache:    cache,
		scorer:   scorer,
		selector: selector,
		ages:     age.NewExtractor(),
		clock:    time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// FromConfig builds an Engine from application configuration, loading the
// template registry and preparing the benchmark cache.
func FromConfig(cfg *config.Config, opts ...Option) (*Engine, error) {
	loader := benchmark.EmbeddedLoader()
	if cfg.Benchmark.Path != "" {
		loader = benchmark.FileLoader(cfg.Benchmark.Path)
	}
	cache := benchmark.NewCache(loader)
	if _, err := cache.Get(); err != nil {
		return nil, eris.Wrap(err, "engine: load benchmark dataset")
	}

	scorer, err := quality.NewScorer(cfg.Quality, cache)
	if err != nil {
		return nil, err
	}

	reg, err := template.Load(cfg.Registry.Path)
	if err != nil {
		return nil, eris.Wrap(err, "engine: load template registry")
	}
	selector, err := template.NewSelector(reg)
	if err != nil {
		return nil, err
	}

	return New(cache, scorer, selector, opts...)
}

// Cache returns the benchmark cache the engine reads.
func (e *Engine) Cache() *benchmark.Cache {
	return e.cache
}

// Registry returns the template registry the engine selects from.
func (e *Engine) Registry() *template.Registry {
	return e.selector.Registry()
}

// Request is one generation request.
type Request struct {
	Profile    model.BusinessProfile    `json:"profile"`
	Attributes model.BusinessAttributes `json:"attributes"`
	// Now overrides the engine clock. Zero means "now".
	Now time.Time `json:"now,omitzero"`
}

// Signals resolves hours, age, service area and climate for p. industry
// selects the default service radius; now is converted into the profile's
// timezone when it has a loadable one.
func (e *Engine) Signals(p model.BusinessProfile, industry string, now time.Time) (model.NormalizedSignals, error) {
	ds, err := e.cache.Get()
	if err != nil {
		return model.NormalizedSignals{}, eris.Wrap(err, "engine: load benchmark dataset")
	}
	bench, _ := ds.Lookup(industry)

	local := localTime(p, e.orNow(now))

	return model.NormalizedSignals{
		Hours: hours.Resolve(p.RegularHours.Periods, local),
		Age:   e.ages.Extract(age.Input{Profile: &p, CurrentYear: local.Year()}),
		ServiceArea: geo.ResolveServiceArea(geo.ServiceAreaInput{
			Places:         p.ServiceArea.Places,
			DeclaredRadius: p.ServiceArea.RadiusMiles,
			Anchor:         p.Coordinates,
			DefaultRadius:  bench.DefaultRadiusMiles,
		}),
		ClimateZone: geo.ClimateFor(p.Coordinates),
	}, nil
}

// Assess resolves signals and scores data quality in one step.
func (e *Engine) Assess(p model.BusinessProfile, industry string, now time.Time) (model.NormalizedSignals, model.DataQualityScore, error) {
	sig, err := e.Signals(p, industry, now)
	if err != nil {
		return model.NormalizedSignals{}, model.DataQualityScore{}, err
	}
	score, err := e.scorer.Score(p, sig, industry)
	if err != nil {
		return model.NormalizedSignals{}, model.DataQualityScore{}, eris.Wrap(err, "engine: score quality")
	}
	return sig, score, nil
}

// Generate runs the whole pipeline. The selection part of the result is a
// pure function of the request; only ID and CreatedAt vary between runs.
func (e *Engine) Generate(req Request) (*model.Generation, error) {
	now := e.orNow(req.Now)

	ds, err := e.cache.Get()
	if err != nil {
		return nil, eris.Wrap(err, "engine: load benchmark dataset")
	}
	industry := ResolveIndustry(req.Profile, req.Attributes, ds)

	sig, score, err := e.Assess(req.Profile, industry, now)
	if err != nil {
		return nil, err
	}

	attrs := req.Attributes
	attrs.Industry = industry
	sel, err := e.selector.Select(template.Input{
		Quality:    score,
		Attributes: attrs,
		Content:    BuildContent(req.Profile, sig, attrs),
		Cluster:    ds.Cluster(industry),
	})
	if err != nil {
		return nil, eris.Wrap(err, "engine: select template")
	}

	zap.L().Debug("engine: generation complete",
		zap.String("business_id", req.Profile.ID),
		zap.String("industry", industry),
		zap.String("template_id", sel.TemplateID),
		zap.Float64("quality", score.Total),
		zap.Int("fallbacks", sel.FallbackCount()),
	)

	return &model.Generation{
		ID:         e.newID(),
		BusinessID: req.Profile.ID,
		Business:   req.Profile.Name,
		Industry:   industry,
		Signals:    sig,
		Quality:    score,
		Selection:  sel,
		CreatedAt:  now.UTC(),
	}, nil
}

// ResolveIndustry picks the explicit attribute industry, falling back to the
// profile category, and canonicalizes it against the benchmark dataset.
func ResolveIndustry(p model.BusinessProfile, attrs model.BusinessAttributes, ds *benchmark.Dataset) string {
	industry := strings.TrimSpace(attrs.Industry)
	if industry == "" {
		industry = strings.TrimSpace(p.Category)
	}
	if industry == "" {
		return ""
	}
	return ds.Canonical(industry)
}

func (e *Engine) orNow(t time.Time) time.Time {
	if t.IsZero() {
		return e.clock()
	}
	return t
}

// localTime converts now into the profile's timezone. Unknown zones leave
// now untouched.
func localTime(p model.BusinessProfile, now time.Time) time.Time {
	if p.Timezone == "" {
		return now
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		zap.L().Debug("engine: unknown profile timezone",
			zap.String("business_id", p.ID),
			zap.String("timezone", p.Timezone),
		)
		return now
	}
	return now.In(loc)
}
