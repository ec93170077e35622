package collection

import (
	"maps"
	"strings"
)

// FilterState is the transient, per-screen filter input. The zero value filters nothing.
type FilterState struct {
	SearchTerm string            `json:"searchTerm,omitempty"`
	Facets     map[string]string `json:"facetFilters,omitempty"`
	ActiveTab  int               `json:"activeTab"`
}

func (f FilterState) clone() FilterState {
	f.Facets = maps.Clone(f.Facets)
	return f
}

// IsEmpty reports whether the filter would let every item through.
func (f FilterState) IsEmpty() bool {
	if f.SearchTerm != "" {
		return false
	}
	for _, v := range f.Facets {
		if v != "" {
			return false
		}
	}
	return true
}

// Projection tells the filter which fields of T are searchable and which are facets.
type Projection[T any] struct {
	Text   func(T) []string
	Facets map[string]func(T) string
}

// FacetNames returns the facet keys in the order given by names, dropping unknown ones.
func (p Projection[T]) FacetNames(names ...string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := p.Facets[n]; ok {
			out = append(out, n)
		}
	}
	return out
}

// ComputeFilteredList keeps the items that match f, in their original order.
//
// An item passes when the search term is empty or any text field contains it
// (case-insensitive), and every non-empty facet equals the item's field exactly.
// A facet the projection does not know matches nothing.
func ComputeFilteredList[T any](list []T, f FilterState, p Projection[T]) []T {
	// The term is used as typed, spaces included.
	term := strings.ToLower(f.SearchTerm)

	type facet struct {
		want string
		get  func(T) string
	}
	var facets []facet
	for name, want := range f.Facets {
		if want == "" {
			continue
		}
		get := p.Facets[name]
		if get == nil {
			return []T{}
		}
		facets = append(facets, facet{want: want, get: get})
	}

	out := make([]T, 0, len(list))
	for _, it := range list {
		if term != "" && !matchesText(it, term, p.Text) {
			continue
		}
		ok := true
		for _, fc := range facets {
			if fc.get(it) != fc.want {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, it)
		}
	}
	return out
}

func matchesText[T any](it T, term string, text func(T) []string) bool {
	if text == nil {
		return false
	}
	for _, s := range text(it) {
		if strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}
	return false
}
