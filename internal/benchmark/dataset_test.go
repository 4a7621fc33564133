package benchmark

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedded_Parses(t *testing.T) {
	ds, err := Embedded()
	require.NoError(t, err)

	assert.NotEmpty(t, ds.Version)
	assert.NotEmpty(t, ds.Industries)
	assert.Positive(t, ds.Defaults.DefaultRadiusMiles)
}

func TestLookup(t *testing.T) {
	ds, err := Embedded()
	require.NoError(t, err)

	tests := []struct {
		name    string
		input   string
		want    string
		cluster string
		found   bool
	}{
		{"exact", "plumbing", "plumbing", "home_services", true},
		{"case folded", "PLUMBING", "plumbing", "home_services", true},
		{"alias", "Plumber", "plumbing", "home_services", true},
		{"separator", "Real-Estate", "real_estate", "professional", true},
		{"multi word alias", "coffee  shop", "cafe", "food", true},
		{"unknown", "underwater basket weaving", "", "", false},
		{"empty", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ds.Lookup(tt.input)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got.Name)
			assert.Equal(t, tt.cluster, got.Cluster)
			assert.Positive(t, got.ExpectedPhotos)
			assert.Positive(t, got.ExpectedReviews)
			assert.Positive(t, got.DefaultRadiusMiles)
		})
	}
}

func TestLookup_UnknownUsesDefaults(t *testing.T) {
	ds, err := Embedded()
	require.NoError(t, err)

	got, ok := ds.Lookup("zeppelin tours")
	assert.False(t, ok)
	assert.Equal(t, ds.Defaults.DefaultRadiusMiles, got.DefaultRadiusMiles)
	assert.Equal(t, ds.Defaults.ExpectedPhotos, got.ExpectedPhotos)
	assert.Equal(t, "zeppelin tours", ds.Canonical("Zeppelin  Tours"))
}

func TestLookup_ZeroFieldsFilledFromDefaults(t *testing.T) {
	ds, err := Parse([]byte(`
defaults: {default_radius_miles: 12, expected_photos: 8, expected_reviews: 30}
industries:
  - name: florist
    expected_photos: 40
`))
	require.NoError(t, err)

	got, ok := ds.Lookup("florist")
	require.True(t, ok)
	assert.Equal(t, 40, got.ExpectedPhotos)
	assert.Equal(t, 30, got.ExpectedReviews)
	assert.Equal(t, 12.0, got.DefaultRadiusMiles)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		msg  string
	}{
		{"bad yaml", "industries: [", "parse dataset"},
		{"missing defaults", "industries: []", "defaults"},
		{
			"duplicate",
			"defaults: {default_radius_miles: 1, expected_photos: 1, expected_reviews: 1}\nindustries: [{name: a}, {name: A}]",
			"duplicate industry",
		},
		{
			"unnamed",
			"defaults: {default_radius_miles: 1, expected_photos: 1, expected_reviews: 1}\nindustries: [{cluster: x}]",
			"no name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "industries.yaml")
	require.NoError(t, os.WriteFile(path, embeddedDataset, 0o600))

	ds, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "food", ds.Cluster("restaurant"))

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
