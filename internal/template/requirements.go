package template

import (
	"fmt"
	"reflect"
	"strings"
)

// Content keys media requirements are checked against.
const (
	ImagesField = "images"
	VideosField = "videos"
)

// scope resolves content fields for one section, preferring section-scoped
// values over root values.
type scope struct {
	section map[string]any
	root    map[string]any
}

func (s scope) lookup(field string) (any, bool) {
	if v, ok := s.section[field]; ok && present(v) {
		return v, true
	}
	if v, ok := s.root[field]; ok && present(v) {
		return v, true
	}
	return nil, false
}

// predicate is one link of a variant's requirement chain.
type predicate struct {
	desc  string
	holds func(scope) bool
}

// chain compiles a variant's requirements into ordered predicates. An empty
// chain is always satisfied.
func chain(req Requirements) []predicate {
	var preds []predicate

	if len(req.Fields) > 0 {
		fields := append([]string(nil), req.Fields...)
		preds = append(preds, predicate{
			desc: "fields " + strings.Join(fields, ", "),
			holds: func(s scope) bool {
				for _, f := range fields {
					if _, ok := s.lookup(f); !ok {
						return false
					}
				}
				return true
			},
		})
	}

	if req.ItemsField != "" {
		field, need := req.ItemsField, max(req.MinItems, 1)
		preds = append(preds, predicate{
			desc:  fmt.Sprintf("%s >= %d items", field, need),
			holds: func(s scope) bool { return countItems(s, field) >= need },
		})
	}

	if req.Images > 0 {
		need := req.Images
		preds = append(preds, predicate{
			desc:  fmt.Sprintf("%d+ images", need),
			holds: func(s scope) bool { return countItems(s, ImagesField) >= need },
		})
	}

	if req.Video {
		preds = append(preds, predicate{
			desc:  "video",
			holds: func(s scope) bool { return countItems(s, VideosField) >= 1 },
		})
	}

	return preds
}

// satisfied runs the chain and stops at the first failing predicate.
func satisfied(preds []predicate, s scope) bool {
	for _, p := range preds {
		if !p.holds(s) {
			return false
		}
	}
	return true
}

func describe(preds []predicate) string {
	if len(preds) == 0 {
		return "no requirements"
	}
	parts := make([]string, len(preds))
	for i, p := range preds {
		parts[i] = p.desc
	}
	return strings.Join(parts, "; ")
}

// fieldsNeeded lists the content keys a variant renders, in declaration
// order without duplicates.
func fieldsNeeded(v Variant) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(f string) {
		if f != "" && !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}

	for _, f := range v.Content {
		add(f)
	}
	for _, f := range v.Requires.Fields {
		add(f)
	}
	add(v.Requires.ItemsField)
	if v.Requires.Images > 0 {
		add(ImagesField)
	}
	if v.Requires.Video {
		add(VideosField)
	}
	return out
}

func countItems(s scope, field string) int {
	v, ok := s.lookup(field)
	if !ok {
		return 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		n := 0
		for i := range rv.Len() {
			if present(rv.Index(i).Interface()) {
				n++
			}
		}
		return n
	case reflect.Map:
		return rv.Len()
	default:
		return 1
	}
}

// present reports whether v carries content: nil, blank strings and empty
// collections do not.
func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	default:
		return true
	}
}
