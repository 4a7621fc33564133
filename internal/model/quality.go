package model

// Data quality categories, in breakdown order.
const (
	CategoryBasicInfo       = "basicInfo"
	CategoryContent         = "content"
	CategoryVisuals         = "visuals"
	CategoryTrust           = "trust"
	CategoryDifferentiation = "differentiation"
)

// QualityBreakdown holds the per-category data quality scores.
type QualityBreakdown struct {
	BasicInfo       float64 `json:"basicInfo"`
	Content         float64 `json:"content"`
	Visuals         float64 `json:"visuals"`
	Trust           float64 `json:"trust"`
	Differentiation float64 `json:"differentiation"`
}

// Sum returns the sum of all categories.
func (b QualityBreakdown) Sum() float64 {
	return b.BasicInfo + b.Content + b.Visuals + b.Trust + b.Differentiation
}

// DataQualityScore is the weighted 0-100 completeness score of a profile.
type DataQualityScore struct {
	Total     float64          `json:"total"`
	Breakdown QualityBreakdown `json:"breakdown"`
}
