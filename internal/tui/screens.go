package tui

import (
	"context"
	"slices"

	"catalog-cli/internal/collection"
	"catalog-cli/internal/model"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// screen is one list page of the TUI, independent of its record type.
type screen interface {
	name() string
	op() string
	rows() []list.Item
	total() int
	filter() collection.FilterState
	setSearch(term string)
	facets() []string
	facetValues(name string) []string
	setFacet(name, value string)
	clearFilters()
	startLoad(ctx context.Context, v view) tea.Cmd
	loading() bool
	stale() bool
	loaded() bool
	detail(id string) (string, bool)
	close()
}

type pageScreen[T model.Record] struct {
	title    string
	loadOp   string
	view     *collection.View[T]
	facetSet []string
	row      func(T) list.Item
	markdown func(T) string
}

func (s *pageScreen[T]) name() string { return s.title }
func (s *pageScreen[T]) op() string   { return s.loadOp }

func (s *pageScreen[T]) rows() []list.Item {
	recs := s.view.Filtered()
	out := make([]list.Item, 0, len(recs))
	for _, r := range recs {
		out = append(out, s.row(r))
	}
	return out
}

func (s *pageScreen[T]) total() int                       { return len(s.view.Canonical()) }
func (s *pageScreen[T]) filter() collection.FilterState   { return s.view.Filter() }
func (s *pageScreen[T]) setSearch(term string)            { s.view.SetSearch(term) }
func (s *pageScreen[T]) facets() []string                 { return s.facetSet }
func (s *pageScreen[T]) facetValues(name string) []string { return s.view.FacetValues(name) }
func (s *pageScreen[T]) setFacet(name, value string)      { s.view.SetFacet(name, value) }
func (s *pageScreen[T]) clearFilters()                    { s.view.ClearFilters() }
func (s *pageScreen[T]) loading() bool                    { return s.view.Loading() }
func (s *pageScreen[T]) stale() bool                      { return s.view.Stale() }
func (s *pageScreen[T]) loaded() bool                     { return s.view.Loaded() }
func (s *pageScreen[T]) close()                           { s.view.Close() }

// startLoad supersedes earlier reads synchronously; the returned command does
// the network read and hands the result back to Update to apply.
func (s *pageScreen[T]) startLoad(ctx context.Context, v view) tea.Cmd {
	t := s.view.Begin()
	return func() tea.Msg {
		items, err := s.view.Load(ctx)
		return loadedMsg{view: v, err: err, apply: func() bool { return s.view.Apply(t, items, err) }}
	}
}

func (s *pageScreen[T]) detail(id string) (string, bool) {
	rec, ok := s.view.Find(id)
	if !ok {
		return "", false
	}
	return s.markdown(rec), true
}

// nextFacetValue cycles none -> v1 -> ... -> vn -> none.
func nextFacetValue(values []string, current string) string {
	if len(values) == 0 {
		return ""
	}
	i := slices.Index(values, current)
	if i == len(values)-1 {
		return ""
	}
	return values[i+1]
}
