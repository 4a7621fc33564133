// Package benchmark holds the static industry reference dataset (expected
// photo and review counts, default service radius, industry clusters) and an
// explicitly constructed cache around it.
package benchmark

import (
	_ "embed"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

//go:embed industries.yaml
var embeddedDataset []byte

// Industry is the reference profile for one industry.
type Industry struct {
	Name               string   `yaml:"name" json:"name"`
	Cluster            string   `yaml:"cluster" json:"cluster,omitempty"`
	Aliases            []string `yaml:"aliases" json:"aliases,omitempty"`
	DefaultRadiusMiles float64  `yaml:"default_radius_miles" json:"defaultRadiusMiles"`
	ExpectedPhotos     int      `yaml:"expected_photos" json:"expectedPhotos"`
	ExpectedReviews    int      `yaml:"expected_reviews" json:"expectedReviews"`
}

// Dataset is the parsed reference dataset. It is read-only after Parse.
type Dataset struct {
	Version    string     `yaml:"version"`
	Defaults   Industry   `yaml:"defaults"`
	Industries []Industry `yaml:"industries"`

	index map[string]int
}

// Parse decodes and validates a YAML dataset.
func Parse(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, eris.Wrap(err, "benchmark: parse dataset")
	}
	if err := ds.build(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// ParseFile reads and parses a dataset file.
func ParseFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "benchmark: read dataset %s", path)
	}
	return Parse(data)
}

// Embedded parses the dataset compiled into the binary.
func Embedded() (*Dataset, error) {
	return Parse(embeddedDataset)
}

func (d *Dataset) build() error {
	if d.Defaults.DefaultRadiusMiles <= 0 || d.Defaults.ExpectedPhotos <= 0 || d.Defaults.ExpectedReviews <= 0 {
		return eris.New("benchmark: defaults must set positive radius, photo and review expectations")
	}

	d.index = make(map[string]int, len(d.Industries))
	for i, ind := range d.Industries {
		key := normalize(ind.Name)
		if key == "" {
			return eris.Errorf("benchmark: industry %d has no name", i)
		}
		if _, dup := d.index[key]; dup {
			return eris.Errorf("benchmark: duplicate industry %q", ind.Name)
		}
		d.index[key] = i
	}
	for i, ind := range d.Industries {
		for _, alias := range ind.Aliases {
			key := normalize(alias)
			if _, taken := d.index[key]; taken || key == "" {
				continue
			}
			d.index[key] = i
		}
	}
	return nil
}

// Lookup returns the reference profile for industry. Unknown industries get
// the dataset defaults; zero-valued fields of a known industry are filled
// from the defaults too.
func (d *Dataset) Lookup(industry string) (Industry, bool) {
	i, ok := d.index[normalize(industry)]
	if !ok {
		out := d.Defaults
		out.Name = ""
		return out, false
	}

	out := d.Industries[i]
	if out.DefaultRadiusMiles <= 0 {
		out.DefaultRadiusMiles = d.Defaults.DefaultRadiusMiles
	}
	if out.ExpectedPhotos <= 0 {
		out.ExpectedPhotos = d.Defaults.ExpectedPhotos
	}
	if out.ExpectedReviews <= 0 {
		out.ExpectedReviews = d.Defaults.ExpectedReviews
	}
	return out, true
}

// Canonical returns the dataset's canonical name for industry (resolving
// aliases), or the normalized input when unknown.
func (d *Dataset) Canonical(industry string) string {
	if ind, ok := d.Lookup(industry); ok {
		return ind.Name
	}
	return normalize(industry)
}

// Cluster returns the related-industry cluster, or "" when unknown.
func (d *Dataset) Cluster(industry string) string {
	ind, _ := d.Lookup(industry)
	return ind.Cluster
}

// normalize case-folds and collapses separators so "Real Estate",
// "real-estate" and "real_estate" share a key.
func normalize(s string) string {
	s = cases.Fold().String(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
