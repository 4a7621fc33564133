package store

import (
	"context"

	"github.com/sells-group/site-engine/internal/model"
	"github.com/sells-group/site-engine/internal/resilience"
)

// retryStore retries transient failures of the wrapped store's data
// operations. Lifecycle calls pass straight through.
type retryStore struct {
	Store
	cfg resilience.RetryConfig
}

// WithRetry wraps st so lock contention and dropped connections are retried
// with backoff. ErrNotFound and other permanent errors return immediately.
func WithRetry(st Store, cfg resilience.RetryConfig) Store {
	if cfg.OnRetry == nil {
		cfg.OnRetry = resilience.RetryLogger("store", "generation")
	}
	return &retryStore{Store: st, cfg: cfg}
}

func (s *retryStore) SaveGeneration(ctx context.Context, g *model.Generation) error {
	return resilience.Do(ctx, s.cfg, func(ctx context.Context) error {
		return s.Store.SaveGeneration(ctx, g)
	})
}

func (s *retryStore) GetGeneration(ctx context.Context, id string) (*model.Generation, error) {
	return resilience.DoVal(ctx, s.cfg, func(ctx context.Context) (*model.Generation, error) {
		return s.Store.GetGeneration(ctx, id)
	})
}

func (s *retryStore) ListGenerations(ctx context.Context, filter GenerationFilter) ([]model.Generation, error) {
	return resilience.DoVal(ctx, s.cfg, func(ctx context.Context) ([]model.Generation, error) {
		return s.Store.ListGenerations(ctx, filter)
	})
}

func (s *retryStore) DeleteGeneration(ctx context.Context, id string) error {
	return resilience.Do(ctx, s.cfg, func(ctx context.Context) error {
		return s.Store.DeleteGeneration(ctx, id)
	})
}
