package collection

import (
	"fmt"
	"testing"

	"catalog-cli/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var domainProjection = Projection[model.Domain]{
	Text: func(d model.Domain) []string { return []string{d.Name, d.Description, d.Category} },
	Facets: map[string]func(model.Domain) string{
		"priority_level": func(d model.Domain) string { return d.PriorityLevel },
		"category":       func(d model.Domain) string { return d.Category },
	},
}

func sampleDomains() []model.Domain {
	return []model.Domain{
		{ID: "d1", Name: "KB은행", Description: "Retail banking", Category: "bank", PriorityLevel: "low"},
		{ID: "d2", Name: "Cards", Description: "Card issuing for KB", Category: "payments", PriorityLevel: "high"},
		{ID: "d3", Name: "Ledger", Description: "General ledger", Category: "finance", PriorityLevel: "critical"},
		{ID: "d4", Name: "Onboarding", Description: "KYC for kb retail", Category: "bank"},
	}
}

func ids(ds []model.Domain) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.ID)
	}
	return out
}

func TestComputeFilteredList_EmptyFilterIsIdentity(t *testing.T) {
	list := sampleDomains()
	got := ComputeFilteredList(list, FilterState{}, domainProjection)
	assert.Equal(t, list, got)

	got = ComputeFilteredList(list, FilterState{Facets: map[string]string{"category": ""}}, domainProjection)
	assert.Equal(t, list, got)
}

func TestComputeFilteredList_SearchIsCaseInsensitive(t *testing.T) {
	got := ComputeFilteredList(sampleDomains(), FilterState{SearchTerm: "kb"}, domainProjection)
	assert.Equal(t, []string{"d1", "d2", "d4"}, ids(got))

	got = ComputeFilteredList(sampleDomains(), FilterState{SearchTerm: "LEDGER"}, domainProjection)
	assert.Equal(t, []string{"d3"}, ids(got))
}

func TestComputeFilteredList_SearchTermIsNotTrimmed(t *testing.T) {
	got := ComputeFilteredList(sampleDomains(), FilterState{SearchTerm: "   "}, domainProjection)
	assert.Empty(t, got, "a blank term is still a term")
	assert.False(t, FilterState{SearchTerm: " "}.IsEmpty())

	got = ComputeFilteredList(sampleDomains(), FilterState{SearchTerm: " ledger"}, domainProjection)
	assert.Equal(t, []string{"d3"}, ids(got), "matches General ledger, not Ledger")

	got = ComputeFilteredList(sampleDomains(), FilterState{SearchTerm: "kb "}, domainProjection)
	assert.Equal(t, []string{"d4"}, ids(got))
}

func TestComputeFilteredList_FacetEquality(t *testing.T) {
	list := []model.Domain{
		{ID: "a", Name: "A", PriorityLevel: "low"},
		{ID: "b", Name: "B", PriorityLevel: "high"},
		{ID: "c", Name: "C", PriorityLevel: "critical"},
	}
	got := ComputeFilteredList(list, FilterState{Facets: map[string]string{"priority_level": "high"}}, domainProjection)
	require.Len(t, got, 1)
	assert.Equal(t, list[1], got[0])
}

func TestComputeFilteredList_FacetExcludesMissingField(t *testing.T) {
	got := ComputeFilteredList(sampleDomains(), FilterState{Facets: map[string]string{"priority_level": "high"}}, domainProjection)
	assert.Equal(t, []string{"d2"}, ids(got))

	got = ComputeFilteredList(sampleDomains(), FilterState{Facets: map[string]string{"category": "Bank"}}, domainProjection)
	assert.Empty(t, got, "facets compare exactly")
}

func TestComputeFilteredList_SearchAndFacetsCombine(t *testing.T) {
	f := FilterState{SearchTerm: "kb", Facets: map[string]string{"category": "bank"}}
	got := ComputeFilteredList(sampleDomains(), f, domainProjection)
	assert.Equal(t, []string{"d1", "d4"}, ids(got))
}

func TestComputeFilteredList_UnknownFacetMatchesNothing(t *testing.T) {
	got := ComputeFilteredList(sampleDomains(), FilterState{Facets: map[string]string{"region": "eu"}}, domainProjection)
	assert.Empty(t, got)
}

func TestComputeFilteredList_SubsetIdempotentAndReadOnly(t *testing.T) {
	filters := []FilterState{
		{},
		{SearchTerm: "kb"},
		{SearchTerm: "zzz"},
		{Facets: map[string]string{"category": "bank"}},
		{SearchTerm: "e", Facets: map[string]string{"priority_level": "critical"}},
	}
	for i, f := range filters {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			list := sampleDomains()
			before := sampleDomains()

			once := ComputeFilteredList(list, f, domainProjection)
			twice := ComputeFilteredList(once, f, domainProjection)
			assert.Equal(t, once, twice)

			// Subset, in canonical order.
			j := 0
			for _, it := range once {
				for j < len(list) && list[j].ID != it.ID {
					j++
				}
				require.Less(t, j, len(list), "item %s not found in order", it.ID)
				assert.Equal(t, list[j], it)
				j++
			}

			assert.Equal(t, before, list)
		})
	}
}
