package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"catalog-cli/internal/model"
)

// ErrDiscarded is returned by Refresh when the result arrived for a superseded
// request or after the view was closed.
var ErrDiscarded = errors.New("collection: result discarded")

type FetchFunc[T model.Record] func(ctx context.Context) ([]T, error)

// RefreshError reports a change that was accepted by the server but whose
// follow-up re-fetch failed. The view stays stale.
type RefreshError struct {
	View string
	Err  error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("%s: refresh after change: %v", e.View, e.Err)
}

func (e *RefreshError) Unwrap() error { return e.Err }

// Ticket identifies one in-flight fetch. Only the newest ticket may apply its result.
type Ticket struct{ gen uint64 }

// View owns one screen's canonical list (last server snapshot), its filter state,
// and the derived list recomputed from both.
type View[T model.Record] struct {
	mu sync.Mutex

	name  string
	fetch FetchFunc[T]
	proj  Projection[T]
	log   *slog.Logger

	canonical []T
	filtered  []T
	filter    FilterState

	gen      uint64
	loading  bool
	loaded   bool
	stale    bool
	closed   bool
	lastErr  error
	loadedAt time.Time
}

func New[T model.Record](name string, fetch FetchFunc[T], proj Projection[T], logger *slog.Logger) *View[T] {
	return &View[T]{
		name:      name,
		fetch:     fetch,
		proj:      proj,
		log:       logger.With("component", "collection", "view", name),
		canonical: []T{},
		filtered:  []T{},
	}
}

func (v *View[T]) Name() string { return v.name }

// Begin starts a fetch and supersedes any earlier one.
func (v *View[T]) Begin() Ticket {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.gen++
	v.loading = true
	return Ticket{gen: v.gen}
}

// Load performs the network read without touching view state.
func (v *View[T]) Load(ctx context.Context) ([]T, error) {
	return v.fetch(ctx)
}

// Apply commits a fetch result. It reports false when the result was discarded.
// A failed fetch keeps the previous canonical and derived lists.
func (v *View[T]) Apply(t Ticket, items []T, err error) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed || t.gen != v.gen {
		v.log.Debug("discarding fetch result", slog.Uint64("ticket", t.gen), slog.Uint64("current", v.gen), slog.Bool("closed", v.closed))
		return false
	}
	v.loading = false
	if err != nil {
		v.lastErr = err
		v.log.Warn("fetch failed", slog.String("error", err.Error()))
		return true
	}

	v.canonical = v.dedupe(items)
	v.lastErr = nil
	v.loaded = true
	v.stale = false
	v.loadedAt = time.Now()
	v.recompute()
	v.log.Debug("fetched", slog.Int("items", len(v.canonical)), slog.Int("visible", len(v.filtered)))
	return true
}

// Refresh fetches the collection and replaces the canonical list on success.
func (v *View[T]) Refresh(ctx context.Context) error {
	t := v.Begin()
	items, err := v.fetch(ctx)
	if !v.Apply(t, items, err) {
		return ErrDiscarded
	}
	return err
}

// Mutate runs submit and, when it succeeds, marks the list stale and re-fetches it.
// A failed submit leaves every list untouched.
func (v *View[T]) Mutate(ctx context.Context, submit func(context.Context) error) error {
	if err := submit(ctx); err != nil {
		return err
	}
	v.MarkStale()
	err := v.Refresh(ctx)
	switch {
	case err == nil, errors.Is(err, ErrDiscarded):
		// A discarded re-fetch lost to a newer read that will apply instead.
		return nil
	default:
		return &RefreshError{View: v.name, Err: err}
	}
}

// MarkStale records that the server changed and the canonical list is no longer authoritative.
func (v *View[T]) MarkStale() {
	v.mu.Lock()
	v.stale = true
	v.mu.Unlock()
}

// Close stops the view from accepting further results.
func (v *View[T]) Close() {
	v.mu.Lock()
	v.closed = true
	v.loading = false
	v.mu.Unlock()
}

func (v *View[T]) SetSearch(term string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter.SearchTerm = term
	v.recompute()
}

// SetFacet sets one facet filter; an empty value clears it.
func (v *View[T]) SetFacet(name, value string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if value == "" {
		delete(v.filter.Facets, name)
	} else {
		if v.filter.Facets == nil {
			v.filter.Facets = map[string]string{}
		}
		v.filter.Facets[name] = value
	}
	v.recompute()
}

// ClearFilters resets search and facets; the active tab is kept.
func (v *View[T]) ClearFilters() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter.SearchTerm = ""
	v.filter.Facets = nil
	v.recompute()
}

func (v *View[T]) SetActiveTab(i int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter.ActiveTab = i
}

func (v *View[T]) Filter() FilterState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter.clone()
}

func (v *View[T]) Canonical() []T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.canonical)
}

func (v *View[T]) Filtered() []T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.filtered)
}

func (v *View[T]) Find(id string) (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, it := range v.canonical {
		if it.RecordID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// FacetValues lists the distinct non-empty values of a facet in canonical order.
func (v *View[T]) FacetValues(name string) []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	get := v.proj.Facets[name]
	if get == nil {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, it := range v.canonical {
		s := get(it)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func (v *View[T]) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

func (v *View[T]) Loaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loaded
}

func (v *View[T]) Stale() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stale
}

func (v *View[T]) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastErr
}

func (v *View[T]) LoadedAt() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loadedAt
}

func (v *View[T]) recompute() {
	v.filtered = ComputeFilteredList(v.canonical, v.filter, v.proj)
}

// dedupe keeps the first record for each id.
func (v *View[T]) dedupe(items []T) []T {
	out := make([]T, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		id := it.RecordID()
		if seen[id] {
			v.log.Warn("dropping duplicate id from server list", slog.String("id", id))
			continue
		}
		seen[id] = true
		out = append(out, it)
	}
	return out
}
