package profile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/site-engine/internal/model"
)

func TestLoadFile(t *testing.T) {
	p, err := LoadFile(filepath.Join("testdata", "plumber.json"))
	require.NoError(t, err)

	assert.Equal(t, "biz-1", p.ID)
	assert.Equal(t, "Desert Flow Plumbing", p.Name)
	require.Len(t, p.RegularHours.Periods, 2)
	assert.Equal(t, model.Period{OpenDay: "FRIDAY", CloseDay: "SATURDAY", OpenTime: "22:00", CloseTime: "02:00"}, p.RegularHours.Periods[1])
	require.NotNil(t, p.Coordinates)
	assert.InDelta(t, 33.4484, p.Coordinates.Lat, 1e-9)
	require.Len(t, p.ServiceArea.Places, 2)
	assert.Nil(t, p.ServiceArea.Places[1].Coordinates)
	assert.Equal(t, 20.0, p.ServiceArea.RadiusMiles)
	assert.Equal(t, float64(1998), p.Metadata.YearEstablished)
	assert.Equal(t, map[string]any{"yearEstablished": "1998"}, p.Attributes["business"])
	require.NotNil(t, p.Reviews)
	assert.Equal(t, 120, p.Reviews.Count)
}

func TestDecode_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		msg  string
	}{
		{"not an object", `[1, 2]`, "Invalid type"},
		{"name not string", `{"name": 42}`, "name"},
		{"rating not number", `{"reviews": {"rating": "five", "count": 3}}`, "reviews.rating"},
		{"place name not string", `{"serviceArea": {"places": [{"name": 7}]}}`, "name"},
		{"periods not array", `{"regularHours": {"periods": "Mon-Fri"}}`, "periods"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDocument))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestDecode_PartialNestedItems(t *testing.T) {
	doc := `{
		"name": "Valley Roofing",
		"coordinates": {"lat": 33.4},
		"serviceArea": {"places": [
			{"coordinates": {"lat": 33.5, "lng": -111.9}},
			{"name": "Mesa"}
		]},
		"photos": [{"category": "logo"}, {"url": "x.jpg"}],
		"reviews": {"rating": 5.2, "count": 3}
	}`

	p, err := Decode([]byte(doc))
	require.NoError(t, err)

	assert.False(t, p.Coordinates.Valid())
	require.Len(t, p.ServiceArea.Places, 2)
	assert.Equal(t, "Mesa", p.ServiceArea.Places[1].Name)
	assert.Equal(t, []string{"x.jpg"}, p.PhotoURLs())
	require.NotNil(t, p.Reviews)
	assert.Equal(t, 5.2, p.Reviews.Rating)
}

func TestDecode_MalformedJSON(t *testing.T) {
	_, err := Decode([]byte(`{"name": `))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDocument))
}

func TestDecode_Empty(t *testing.T) {
	p, err := Decode([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, model.BusinessProfile{}, p)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate([]byte(`{"name": "Acme"}`)))
	assert.Error(t, Validate([]byte(`{"services": "plumbing"}`)))
}

func TestDecodeAttributes(t *testing.T) {
	a, err := DecodeAttributes([]byte(`{
		"industry": "plumbing",
		"stage": "established",
		"services": ["Repairs"],
		"answers": {"tagline": "Fast"},
		"sectionAnswers": {"hero": {"tagline": "Hero"}}
	}`))
	require.NoError(t, err)
	assert.Equal(t, "plumbing", a.Industry)
	assert.Equal(t, "Fast", a.Answers["tagline"])
	assert.Equal(t, "Hero", a.SectionAnswers["hero"]["tagline"])

	_, err = DecodeAttributes([]byte(`{"sectionAnswers": {"hero": "nope"}}`))
	assert.True(t, errors.Is(err, ErrInvalidDocument))
}

func TestLoadJSONL(t *testing.T) {
	input := strings.Join([]string{
		`{"id": "a", "name": "Alpha"}`,
		``,
		`{"id": "b", "name": 12}`,
		`{"name": "Gamma"}`,
	}, "\n")

	entries, err := LoadJSONL(strings.NewReader(input), "batch.jsonl")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "batch.jsonl:1#a", entries[0].Source)
	assert.NoError(t, entries[0].Err)
	assert.Equal(t, "Alpha", entries[0].Profile.Name)

	assert.Equal(t, "batch.jsonl:3#b", entries[1].Source)
	assert.True(t, errors.Is(entries[1].Err, ErrInvalidDocument))

	assert.Equal(t, "batch.jsonl:4", entries[2].Source)
	assert.Equal(t, "Gamma", entries[2].Profile.Name)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.json"), []byte(`{"name": "Beta"}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(`{"name": "Alpha"}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(`ignored`), 0o600))

	t.Run("directory", func(t *testing.T) {
		entries, err := Load(dir)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "Alpha", entries[0].Profile.Name)
		assert.Equal(t, "Beta", entries[1].Profile.Name)
	})

	t.Run("jsonl", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "profiles.ndjson")
		require.NoError(t, os.WriteFile(path, []byte("{\"name\": \"One\"}\n{\"name\": \"Two\"}\n"), 0o600))

		entries, err := Load(path)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "profiles.ndjson:2", entries[1].Source)
	})

	t.Run("single file", func(t *testing.T) {
		entries, err := Load(filepath.Join(dir, "a.json"))
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "Alpha", entries[0].Profile.Name)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nope"))
		assert.Error(t, err)
	})
}
