package model

// BusinessAttributes are explicit answers about the business collected during
// onboarding. They steer template choice independently of the profile.
type BusinessAttributes struct {
	Industry         string   `json:"industry,omitempty"`
	Stage            string   `json:"stage,omitempty"`
	Personality      string   `json:"personality,omitempty"`
	DesignPreference string   `json:"designPreference,omitempty"`
	ColorPreference  string   `json:"colorPreference,omitempty"`
	Services         []string `json:"services,omitempty"`

	// Answers are root-level content overrides supplied by the user.
	Answers map[string]any `json:"answers,omitempty"`
	// SectionAnswers are content values scoped to a single template section.
	SectionAnswers map[string]map[string]any `json:"sectionAnswers,omitempty"`
}

// Template match kinds recorded in selection metadata.
const (
	MatchIndustry = "industry"
	MatchCluster  = "cluster"
	MatchFallback = "fallback"
)

// GenerationMethodRules marks results produced by the deterministic rule engine.
const GenerationMethodRules = "rules"

// SelectionResult is the chosen template and per-section variants.
type SelectionResult struct {
	TemplateID   string                      `json:"templateId"`
	SectionOrder []string                    `json:"sectionOrder"`
	Sections     map[string]SectionSelection `json:"sections"`
	Metadata     SelectionMetadata           `json:"metadata"`
}

// SectionSelection is the outcome for one template section.
type SectionSelection struct {
	VariantID    string         `json:"variantId"`
	RenderTarget string         `json:"renderTarget"`
	Content      map[string]any `json:"content"`
	Reasoning    string         `json:"reasoning"`
	Fallback     bool           `json:"fallback,omitempty"`
}

// SelectionMetadata explains how the result was produced.
type SelectionMetadata struct {
	DataQuality      float64 `json:"dataQuality"`
	GenerationMethod string  `json:"generationMethod"`
	TemplateMatch    string  `json:"templateMatch"`
	TemplateReason   string  `json:"templateReason"`
}

// FallbackCount returns how many sections were force-selected.
func (r *SelectionResult) FallbackCount() int {
	n := 0
	for _, s := range r.Sections {
		if s.Fallback {
			n++
		}
	}
	return n
}
