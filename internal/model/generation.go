package model

import "time"

// Generation is the full output of one engine run for a business.
type Generation struct {
	ID         string            `json:"id,omitempty"`
	BusinessID string            `json:"businessId,omitempty"`
	Business   string            `json:"business,omitempty"`
	Industry   string            `json:"industry,omitempty"`
	Signals    NormalizedSignals `json:"signals"`
	Quality    DataQualityScore  `json:"quality"`
	Selection  SelectionResult   `json:"selection"`
	CreatedAt  time.Time         `json:"createdAt"`
}
