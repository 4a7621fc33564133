package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/site-engine/internal/model"
	"github.com/sells-group/site-engine/internal/resilience"
)

// flakyStore fails the first n data calls with err.
type flakyStore struct {
	Store
	failures int
	err      error
	calls    int
}

func (f *flakyStore) fail() error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return nil
}

func (f *flakyStore) SaveGeneration(ctx context.Context, g *model.Generation) error {
	if err := f.fail(); err != nil {
		return err
	}
	return f.Store.SaveGeneration(ctx, g)
}

func (f *flakyStore) GetGeneration(ctx context.Context, id string) (*model.Generation, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	return f.Store.GetGeneration(ctx, id)
}

func fastRetry() resilience.RetryConfig {
	return resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}
}

func TestWithRetry_RecoversFromTransientFailures(t *testing.T) {
	ctx := context.Background()
	flaky := &flakyStore{Store: newTestSQLiteStore(t), failures: 2, err: resilience.NewTransientError(errors.New("database is locked"))}
	st := WithRetry(flaky, fastRetry())

	g := &model.Generation{BusinessID: "biz-1"}
	require.NoError(t, st.SaveGeneration(ctx, g))
	assert.Equal(t, 3, flaky.calls)

	got, err := st.GetGeneration(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "biz-1", got.BusinessID)
}

func TestWithRetry_GivesUp(t *testing.T) {
	flaky := &flakyStore{Store: newTestSQLiteStore(t), failures: 10, err: resilience.NewTransientError(errors.New("busy"))}
	st := WithRetry(flaky, fastRetry())

	err := st.SaveGeneration(context.Background(), &model.Generation{})
	assert.Error(t, err)
	assert.Equal(t, 3, flaky.calls)
}

func TestWithRetry_NotFoundIsPermanent(t *testing.T) {
	flaky := &flakyStore{Store: newTestSQLiteStore(t)}
	st := WithRetry(flaky, fastRetry())

	_, err := st.GetGeneration(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, flaky.calls)
}

func TestWithRetry_PassesThroughLifecycle(t *testing.T) {
	st := WithRetry(newTestSQLiteStore(t), fastRetry())
	require.NoError(t, st.Migrate(context.Background()))

	gens, err := st.ListGenerations(context.Background(), GenerationFilter{})
	require.NoError(t, err)
	assert.Empty(t, gens)
	assert.ErrorIs(t, st.DeleteGeneration(context.Background(), "missing"), ErrNotFound)
}
