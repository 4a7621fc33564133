package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/site-engine/internal/model"
)

// ErrNotFound is returned when a generation does not exist.
var ErrNotFound = eris.New("store: generation not found")

// GenerationFilter specifies criteria for listing generations.
type GenerationFilter struct {
	BusinessID string `json:"business_id,omitempty"`
	Industry   string `json:"industry,omitempty"`
	TemplateID string `json:"template_id,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
}

// Store persists generation results. The engine never touches it; the CLI
// and HTTP server save what the engine returns.
type Store interface {
	// SaveGeneration inserts g, assigning an ID and CreatedAt when unset.
	SaveGeneration(ctx context.Context, g *model.Generation) error
	GetGeneration(ctx context.Context, id string) (*model.Generation, error)
	// ListGenerations returns matches newest first.
	ListGenerations(ctx context.Context, filter GenerationFilter) ([]model.Generation, error)
	DeleteGeneration(ctx context.Context, id string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

const defaultListLimit = 100

func listLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return limit
}
