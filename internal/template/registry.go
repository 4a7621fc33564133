// Package template chooses a website template for a business and, per
// template section, the content variant that best fits the data available.
package template

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

//go:embed registry.yaml
var embeddedRegistry []byte

// WildcardIndustry marks a template compatible with every industry.
const WildcardIndustry = "*"

// Registry is the static template catalogue. Templates are kept in file
// order; the first entry is the ultimate fallback.
type Registry struct {
	Version   string            `yaml:"version"`
	Renderers map[string]string `yaml:"renderers"`
	Clusters  []Cluster         `yaml:"clusters"`
	Templates []Template        `yaml:"templates"`

	renderers RendererRegistry
	byID      map[string]int
	clusterOf map[string]int
}

// Cluster groups related industries under a designated default template.
type Cluster struct {
	Name            string   `yaml:"name"`
	Industries      []string `yaml:"industries"`
	DefaultTemplate string   `yaml:"default_template"`
}

// Template is one registry entry.
type Template struct {
	ID            string    `yaml:"id"`
	Name          string    `yaml:"name"`
	Industries    []string  `yaml:"industries"`
	MinQuality    float64   `yaml:"min_quality"`
	Stages        []string  `yaml:"stages"`
	Personalities []string  `yaml:"personalities"`
	Styles        []string  `yaml:"styles"`
	Sections      []Section `yaml:"sections"`
}

// Section is a named slot of a template with ordered candidate variants.
type Section struct {
	Name     string    `yaml:"name"`
	Variants []Variant `yaml:"variants"`
}

// Variant is a concrete layout option for a section.
type Variant struct {
	ID       string       `yaml:"id"`
	Content  []string     `yaml:"content"`
	Requires Requirements `yaml:"requires"`
}

// Requirements gate a variant. Zero values impose nothing.
type Requirements struct {
	Fields     []string `yaml:"fields"`
	ItemsField string   `yaml:"items_field"`
	MinItems   int      `yaml:"min_items"`
	Images     int      `yaml:"images"`
	Video      bool     `yaml:"video"`
}

// Parse decodes and validates a registry document.
func Parse(data []byte) (*Registry, error) {
	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, eris.Wrap(err, "template: parse registry")
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// LoadFile reads and validates a registry file.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "template: read registry %s", path)
	}
	return Parse(data)
}

// Default returns the registry compiled into the binary.
func Default() (*Registry, error) {
	return Parse(embeddedRegistry)
}

// Load returns the registry at path, or the compiled-in registry when path
// is empty.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

// Validate checks registry structure and resolves every variant's render
// target. Structural problems are reported together; an unresolvable
// variant returns an error wrapping ErrUnresolvedRenderer.
func (r *Registry) Validate() error {
	var errs []string

	if len(r.Templates) == 0 {
		errs = append(errs, "registry has no templates")
	}

	r.byID = make(map[string]int, len(r.Templates))
	for i, t := range r.Templates {
		if t.ID == "" {
			errs = append(errs, fmt.Sprintf("template %d has no id", i))
			continue
		}
		if _, dup := r.byID[t.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate template id %q", t.ID))
			continue
		}
		r.byID[t.ID] = i
		errs = append(errs, validateSections(t)...)
	}

	r.clusterOf = make(map[string]int)
	seenCluster := make(map[string]bool, len(r.Clusters))
	for i, c := range r.Clusters {
		key := normalize(c.Name)
		if key == "" {
			errs = append(errs, fmt.Sprintf("cluster %d has no name", i))
			continue
		}
		if seenCluster[key] {
			errs = append(errs, fmt.Sprintf("duplicate cluster %q", c.Name))
			continue
		}
		seenCluster[key] = true
		if _, ok := r.byID[c.DefaultTemplate]; !ok {
			errs = append(errs, fmt.Sprintf("cluster %q names unknown template %q", c.Name, c.DefaultTemplate))
		}
		for _, ind := range c.Industries {
			k := normalize(ind)
			if _, taken := r.clusterOf[k]; !taken && k != "" {
				r.clusterOf[k] = i
			}
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("template: invalid registry: %s", strings.Join(errs, "; "))
	}

	r.renderers = NewRendererRegistry(r.Renderers)
	for _, t := range r.Templates {
		for _, s := range t.Sections {
			for _, v := range s.Variants {
				if _, err := r.renderers.Resolve(v.ID); err != nil {
					return eris.Wrapf(err, "template: %s/%s", t.ID, s.Name)
				}
			}
		}
	}
	return nil
}

func validateSections(t Template) []string {
	var errs []string
	if len(t.Sections) == 0 {
		return []string{fmt.Sprintf("template %q has no sections", t.ID)}
	}

	seen := make(map[string]bool, len(t.Sections))
	for _, s := range t.Sections {
		if s.Name == "" {
			errs = append(errs, fmt.Sprintf("template %q has an unnamed section", t.ID))
			continue
		}
		if seen[s.Name] {
			errs = append(errs, fmt.Sprintf("template %q repeats section %q", t.ID, s.Name))
		}
		seen[s.Name] = true

		if len(s.Variants) == 0 {
			errs = append(errs, fmt.Sprintf("section %s/%s has no variants", t.ID, s.Name))
			continue
		}
		ids := make(map[string]bool, len(s.Variants))
		for _, v := range s.Variants {
			switch {
			case v.ID == "":
				errs = append(errs, fmt.Sprintf("section %s/%s has a variant without id", t.ID, s.Name))
			case ids[v.ID]:
				errs = append(errs, fmt.Sprintf("section %s/%s repeats variant %q", t.ID, s.Name, v.ID))
			}
			ids[v.ID] = true

			if v.Requires.MinItems > 0 && v.Requires.ItemsField == "" {
				errs = append(errs, fmt.Sprintf("variant %q sets min_items without items_field", v.ID))
			}
			if v.Requires.MinItems < 0 || v.Requires.Images < 0 {
				errs = append(errs, fmt.Sprintf("variant %q has a negative requirement", v.ID))
			}
		}
	}
	return errs
}

// Template returns the template with id.
func (r *Registry) Template(id string) (Template, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Template{}, false
	}
	return r.Templates[i], true
}

// ClusterFor returns the registry cluster that lists industry.
func (r *Registry) ClusterFor(industry string) (Cluster, bool) {
	i, ok := r.clusterOf[normalize(industry)]
	if !ok {
		return Cluster{}, false
	}
	return r.Clusters[i], true
}

// ClusterNamed returns the cluster called name.
func (r *Registry) ClusterNamed(name string) (Cluster, bool) {
	key := normalize(name)
	if key == "" {
		return Cluster{}, false
	}
	for _, c := range r.Clusters {
		if normalize(c.Name) == key {
			return c, true
		}
	}
	return Cluster{}, false
}

// RendererRegistry returns the resolved render targets.
func (r *Registry) RendererRegistry() RendererRegistry {
	return r.renderers
}

// Supports reports whether t lists industry or the wildcard.
func (t Template) Supports(industry string) bool {
	key := normalize(industry)
	for _, ind := range t.Industries {
		if ind == WildcardIndustry {
			return true
		}
		if key != "" && normalize(ind) == key {
			return true
		}
	}
	return false
}

// normalize case-folds and collapses separators so "Real Estate",
// "real-estate" and "real_estate" compare equal.
func normalize(s string) string {
	s = cases.Fold().String(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
