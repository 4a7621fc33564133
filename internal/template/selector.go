package template

import (
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/site-engine/internal/model"
)

// Content is the field data variants are matched against. Section-scoped
// values take precedence over root values.
type Content struct {
	Root     map[string]any
	Sections map[string]map[string]any
}

// Input is everything a selection depends on.
type Input struct {
	Quality    model.DataQualityScore
	Attributes model.BusinessAttributes
	Content    Content
	// Cluster is an optional related-industry hint used when the registry
	// itself does not list the industry under any cluster.
	Cluster string
}

// Selector picks templates and variants from a validated Registry. It holds
// no mutable state and is safe for concurrent use.
type Selector struct {
	reg    *Registry
	chains map[*Variant][]predicate
}

// NewSelector validates reg and precompiles every variant's requirement
// chain.
func NewSelector(reg *Registry) (*Selector, error) {
	if reg == nil {
		return nil, eris.New("template: registry is required")
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	s := &Selector{reg: reg, chains: make(map[*Variant][]predicate)}
	for ti := range reg.Templates {
		for si := range reg.Templates[ti].Sections {
			sec := &reg.Templates[ti].Sections[si]
			for vi := range sec.Variants {
				s.chains[&sec.Variants[vi]] = chain(sec.Variants[vi].Requires)
			}
		}
	}
	return s, nil
}

// Registry returns the registry the selector reads.
func (s *Selector) Registry() *Registry {
	return s.reg
}

// Select chooses a template and one variant per section. Identical inputs
// always yield an identical result. The only error is an unresolvable
// render target.
func (s *Selector) Select(in Input) (model.SelectionResult, error) {
	tmpl, match, reason := s.chooseTemplate(in)

	res := model.SelectionResult{
		TemplateID:   tmpl.ID,
		SectionOrder: make([]string, 0, len(tmpl.Sections)),
		Sections:     make(map[string]model.SectionSelection, len(tmpl.Sections)),
		Metadata: model.SelectionMetadata{
			DataQuality:      in.Quality.Total,
			GenerationMethod: model.GenerationMethodRules,
			TemplateMatch:    match,
			TemplateReason:   reason,
		},
	}

	rr := s.reg.RendererRegistry()
	for si := range tmpl.Sections {
		sec := &tmpl.Sections[si]
		sc := scope{section: in.Content.Sections[sec.Name], root: in.Content.Root}

		sel := s.chooseVariant(sec, sc)
		target, err := rr.Resolve(sel.VariantID)
		if err != nil {
			return model.SelectionResult{}, eris.Wrapf(err, "template: %s/%s", tmpl.ID, sec.Name)
		}
		sel.RenderTarget = target

		res.SectionOrder = append(res.SectionOrder, sec.Name)
		res.Sections[sec.Name] = sel
	}

	if n := res.FallbackCount(); n > 0 {
		zap.L().Debug("template: sections fell back to first variant",
			zap.String("template_id", tmpl.ID),
			zap.Int("fallbacks", n),
		)
	}
	return res, nil
}

// chooseTemplate returns the chosen template (by pointer into the registry),
// the match kind and a short explanation.
func (s *Selector) chooseTemplate(in Input) (*Template, string, string) {
	industry := in.Attributes.Industry
	total := in.Quality.Total

	var compatible []int
	for i := range s.reg.Templates {
		if s.reg.Templates[i].Supports(industry) {
			compatible = append(compatible, i)
		}
	}

	if len(compatible) > 0 {
		candidates := compatible
		var qualified []int
		for _, i := range compatible {
			if s.reg.Templates[i].MinQuality <= total {
				qualified = append(qualified, i)
			}
		}
		qualityNote := "quality floor met"
		if len(qualified) > 0 {
			candidates = qualified
		} else {
			qualityNote = "no compatible template's quality floor met"
		}

		best, bestScore := candidates[0], -1
		for _, i := range candidates {
			if sc := attributeMatches(s.reg.Templates[i], in.Attributes); sc > bestScore {
				best, bestScore = i, sc
			}
		}
		t := &s.reg.Templates[best]
		return t, model.MatchIndustry, fmt.Sprintf(
			"%d template(s) support industry %q; chose %s (%d attribute match(es), %s)",
			len(compatible), normalize(industry), t.ID, bestScore, qualityNote,
		)
	}

	if c, ok := s.clusterFor(industry, in.Cluster); ok {
		i := s.reg.byID[c.DefaultTemplate]
		return &s.reg.Templates[i], model.MatchCluster, fmt.Sprintf(
			"no template supports industry %q; using default of related cluster %s",
			normalize(industry), c.Name,
		)
	}

	return &s.reg.Templates[0], model.MatchFallback, fmt.Sprintf(
		"no template or cluster covers industry %q; using first registry entry",
		normalize(industry),
	)
}

func (s *Selector) clusterFor(industry, hint string) (Cluster, bool) {
	if c, ok := s.reg.ClusterFor(industry); ok {
		return c, true
	}
	return s.reg.ClusterNamed(hint)
}

// attributeMatches counts how many of stage, personality and design
// preference the template lists.
func attributeMatches(t Template, attrs model.BusinessAttributes) int {
	n := 0
	if contains(t.Stages, attrs.Stage) {
		n++
	}
	if contains(t.Personalities, attrs.Personality) {
		n++
	}
	if contains(t.Styles, attrs.DesignPreference) {
		n++
	}
	return n
}

// chooseVariant walks the section's variants in order and returns the first
// whose requirement chain holds. When none holds it forces the first variant
// and marks the selection as a fallback.
func (s *Selector) chooseVariant(sec *Section, sc scope) model.SectionSelection {
	for vi := range sec.Variants {
		v := &sec.Variants[vi]
		preds := s.chains[v]
		if satisfied(preds, sc) {
			return model.SectionSelection{
				VariantID: v.ID,
				Content:   populate(*v, sc),
				Reasoning: fmt.Sprintf("%s: %s", v.ID, describe(preds)),
			}
		}
	}

	first := sec.Variants[0]
	return model.SectionSelection{
		VariantID: first.ID,
		Content:   populate(first, sc),
		Reasoning: fmt.Sprintf("no variant requirements satisfied; forced first variant %s", first.ID),
		Fallback:  true,
	}
}

// populate copies the fields v renders, section values over root values.
// Missing fields are omitted.
func populate(v Variant, sc scope) map[string]any {
	out := make(map[string]any)
	for _, f := range fieldsNeeded(v) {
		if val, ok := sc.lookup(f); ok {
			out[f] = val
		}
	}
	return out
}

func contains(vals []string, want string) bool {
	key := normalize(want)
	if key == "" {
		return false
	}
	for _, v := range vals {
		if normalize(v) == key {
			return true
		}
	}
	return false
}
