package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/site-engine/internal/model"
	"github.com/sells-group/site-engine/internal/profile"
	"github.com/sells-group/site-engine/internal/store"
)

var batchNowFixed = time.Date(2025, 1, 6, 23, 30, 0, 0, time.UTC)

func batchEntries(t *testing.T) []profile.Entry {
	t.Helper()
	jsonl := strings.Join([]string{
		`{"id":"a","name":"Alpha Plumbing","category":"plumber","reviews":{"rating":4.5,"count":30}}`,
		`{"id":"b","name":5}`,
		`{"id":"c","name":"Corner Cafe","category":"coffee shop","coordinates":{"lat":40.7,"lng":-74.0}}`,
	}, "\n")
	entries, err := profile.LoadJSONL(strings.NewReader(jsonl), "batch.jsonl")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	return entries
}

func TestProcessBatch(t *testing.T) {
	zap.ReplaceGlobals(zap.NewNop())
	e, err := initEngine(testConfig(t), "batch")
	require.NoError(t, err)

	results, err := processBatch(context.Background(), e, nil, batchEntries(t), batchOptions{
		now:         batchNowFixed,
		concurrency: 2,
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "batch.jsonl:1#a", results[0].Source)
	require.NotNil(t, results[0].Generation)
	assert.Equal(t, "plumbing", results[0].Generation.Industry)

	assert.Nil(t, results[1].Generation)
	assert.ErrorIs(t, results[1].Err, profile.ErrInvalidDocument)

	require.NotNil(t, results[2].Generation)
	assert.Equal(t, "cafe", results[2].Generation.Industry)
	assert.Equal(t, model.ClimateTemperate, results[2].Generation.Signals.ClimateZone)
}

func TestProcessBatch_LimitAndAttributes(t *testing.T) {
	e, err := initEngine(testConfig(t), "batch")
	require.NoError(t, err)

	results, err := processBatch(context.Background(), e, nil, batchEntries(t), batchOptions{
		attributes:  model.BusinessAttributes{Industry: "restaurant"},
		now:         batchNowFixed,
		limit:       1,
		concurrency: 4,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "restaurant", results[0].Generation.Industry)
}

func TestProcessBatch_Saves(t *testing.T) {
	ctx := context.Background()
	c := testConfig(t)
	e, err := initEngine(c, "batch")
	require.NoError(t, err)
	st, err := initStore(ctx, c)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	results, err := processBatch(ctx, e, st, batchEntries(t), batchOptions{now: batchNowFixed, concurrency: 1})
	require.NoError(t, err)

	saved, err := st.ListGenerations(ctx, store.GenerationFilter{})
	require.NoError(t, err)
	assert.Len(t, saved, 2)
	for _, r := range results {
		if r.Generation != nil {
			assert.NotEmpty(t, r.Generation.ID)
		}
	}
}

func TestProcessBatch_Cancelled(t *testing.T) {
	e, err := initEngine(testConfig(t), "batch")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = processBatch(ctx, e, nil, batchEntries(t), batchOptions{concurrency: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessBatch_Empty(t *testing.T) {
	e, err := initEngine(testConfig(t), "batch")
	require.NoError(t, err)

	results, err := processBatch(context.Background(), e, nil, nil, batchOptions{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestProcessBatch_EntryErrorKept(t *testing.T) {
	e, err := initEngine(testConfig(t), "batch")
	require.NoError(t, err)

	entries := []profile.Entry{{Source: "bad.json", Err: eris.New("profile: read bad.json")}}
	results, err := processBatch(context.Background(), e, nil, entries, batchOptions{concurrency: 1})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.EqualError(t, results[0].Err, "profile: read bad.json")
}
