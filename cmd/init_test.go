package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/site-engine/internal/config"
	"github.com/sells-group/site-engine/internal/quality"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Log:     config.LogConfig{Level: "info", Format: "json"},
		Server:  config.ServerConfig{Port: 8080, RateBurst: 1, CORSOrigins: []string{"*"}},
		Store:   config.StoreConfig{Driver: "sqlite", DatabaseURL: filepath.Join(t.TempDir(), "cli.db")},
		Quality: quality.DefaultConfig(),
		Batch:   config.BatchConfig{MaxConcurrent: 4},
	}
}

func TestInitEngine(t *testing.T) {
	e, err := initEngine(testConfig(t), "cli")
	require.NoError(t, err)
	assert.NotNil(t, e.Registry())
}

func TestInitEngine_InvalidConfig(t *testing.T) {
	c := testConfig(t)
	c.Batch.MaxConcurrent = 0
	_, err := initEngine(c, "batch")
	assert.ErrorContains(t, err, "batch.max_concurrent")

	c = testConfig(t)
	c.Quality.TrustWeight = 50
	_, err = initEngine(c, "cli")
	assert.ErrorContains(t, err, "weights should sum to 100")
}

func TestInitStore(t *testing.T) {
	ctx := context.Background()

	st, err := initStore(ctx, testConfig(t))
	require.NoError(t, err)
	require.NoError(t, st.Close())

	c := testConfig(t)
	c.Store.Driver = "none"
	_, err = initStore(ctx, c)
	assert.ErrorIs(t, err, errStoreDisabled)

	c.Store.Driver = "mysql"
	_, err = initStore(ctx, c)
	assert.ErrorContains(t, err, "unsupported store driver")
}

func TestParseNow(t *testing.T) {
	got, err := parseNow("")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	got, err = parseNow("2025-01-06T16:30:00-07:00")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 1, 6, 23, 30, 0, 0, time.UTC)))

	_, err = parseNow("monday")
	assert.Error(t, err)
}

func TestBuildRequest(t *testing.T) {
	req, err := buildRequest("testdata/plumber.json", "", "2025-01-06T23:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, "biz-1", req.Profile.ID)
	assert.Empty(t, req.Attributes.Industry)
	assert.False(t, req.Now.IsZero())

	_, err = buildRequest("testdata/missing.json", "", "")
	assert.Error(t, err)
}

func TestResolveIndustry(t *testing.T) {
	e, err := initEngine(testConfig(t), "cli")
	require.NoError(t, err)
	req, err := buildRequest("testdata/plumber.json", "", "")
	require.NoError(t, err)

	got, err := resolveIndustry(e, req.Profile, "")
	require.NoError(t, err)
	assert.Equal(t, "plumbing", got)

	got, err = resolveIndustry(e, req.Profile, "Coffee Shop")
	require.NoError(t, err)
	assert.Equal(t, "cafe", got)
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, map[string]int{"a": 1}))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}
