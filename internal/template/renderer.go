package template

import (
	"sort"

	"github.com/rotisserie/eris"
)

// ErrUnresolvedRenderer is returned when a variant has no render target.
// It signals a broken deployment, never a data quality problem.
var ErrUnresolvedRenderer = eris.New("template: variant has no resolvable renderer")

// RendererRegistry maps variant IDs to frontend component identifiers.
type RendererRegistry struct {
	targets map[string]string
}

// NewRendererRegistry copies targets into a RendererRegistry. Blank
// component identifiers are dropped.
func NewRendererRegistry(targets map[string]string) RendererRegistry {
	rr := RendererRegistry{targets: make(map[string]string, len(targets))}
	for id, target := range targets {
		if id != "" && target != "" {
			rr.targets[id] = target
		}
	}
	return rr
}

// Resolve returns the component for variantID.
func (rr RendererRegistry) Resolve(variantID string) (string, error) {
	target, ok := rr.targets[variantID]
	if !ok {
		return "", eris.Wrapf(ErrUnresolvedRenderer, "variant %q", variantID)
	}
	return target, nil
}

// IDs returns the registered variant IDs in sorted order.
func (rr RendererRegistry) IDs() []string {
	ids := make([]string, 0, len(rr.targets))
	for id := range rr.targets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered variants.
func (rr RendererRegistry) Len() int {
	return len(rr.targets)
}
