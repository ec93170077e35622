package catalog

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"catalog-cli/internal/api"
	"catalog-cli/internal/collection"
	"catalog-cli/internal/devapi/devapitest"
	"catalog-cli/internal/logging"
	"catalog-cli/internal/model"
	"catalog-cli/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainsPage_LoadSearchAndFacets(t *testing.T) {
	env := devapitest.New(t, true)
	p := NewDomainsPage(env.Client, env.Session, logging.Discard())
	require.NoError(t, p.Refresh(context.Background()))
	require.Len(t, p.Canonical(), 4)

	p.SetSearch("kb")
	got := p.Filtered()
	require.Len(t, got, 1)
	assert.Equal(t, "KB은행", got[0].Name)

	p.SetSearch("BANKING")
	assert.Len(t, p.Filtered(), 2, "description or category")

	p.ClearFilters()
	p.SetFacet("priority_level", "critical")
	got = p.Filtered()
	require.Len(t, got, 1)
	assert.Equal(t, "Card Payments", got[0].Name)

	p.SetFacet("region", "kr")
	assert.Empty(t, p.Filtered())

	assert.ElementsMatch(t, []string{"banking", "payments", "finance"}, p.FacetValues("category"))
}

func TestDomainsPage_CreateRefetchesAndKeepsFilter(t *testing.T) {
	env := devapitest.New(t, true)
	p := NewDomainsPage(env.Client, env.Session, logging.Discard())
	ctx := context.Background()
	require.NoError(t, p.Refresh(ctx))
	p.SetFacet("category", "treasury")

	err := p.Create(ctx, model.CreateDomainRequest{Name: "FX", Description: "Foreign exchange", Category: "treasury"})
	require.NoError(t, err)

	require.Len(t, p.Canonical(), 5)
	got := p.Filtered()
	require.Len(t, got, 1)
	assert.Equal(t, "FX", got[0].Name)
	assert.Equal(t, devapitest.UserID, got[0].OwnerID)
}

func TestDomainsPage_CreateFailureLeavesListUnchanged(t *testing.T) {
	env := devapitest.New(t, true, devapitest.FailWith(http.MethodPost, api.PathDomains, http.StatusInternalServerError))
	p := NewDomainsPage(env.Client, env.Session, logging.Discard())
	ctx := context.Background()
	require.NoError(t, p.Refresh(ctx))
	before := p.Canonical()

	err := p.Create(ctx, model.CreateDomainRequest{Name: "FX", Description: "Foreign exchange"})
	var merr *api.MutationError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, http.StatusInternalServerError, merr.Status)
	assert.Equal(t, before, p.Canonical())
	assert.False(t, p.Stale())

	banner := BannerText(OpCreateDomain, err)
	assert.True(t, strings.HasPrefix(banner, "Failed to create domain"), banner)
	assert.Contains(t, banner, "500")
}

func TestDomainsPage_UpdateAndDelete(t *testing.T) {
	env := devapitest.New(t, true)
	p := NewDomainsPage(env.Client, env.Session, logging.Discard())
	ctx := context.Background()
	require.NoError(t, p.Refresh(ctx))
	target := p.Canonical()[3]

	approved := model.StatusApproved
	require.NoError(t, p.Update(ctx, model.UpdateDomainRequest{ID: target.ID, Status: &approved}))
	d, ok := p.Find(target.ID)
	require.True(t, ok)
	assert.Equal(t, model.StatusApproved, d.Status)

	require.NoError(t, p.Delete(ctx, target.ID))
	_, ok = p.Find(target.ID)
	assert.False(t, ok)
	assert.Len(t, p.Canonical(), 3)
}

func TestDiagramsPage_CreateStampsAuthor(t *testing.T) {
	env := devapitest.New(t, false)
	p := NewDiagramsPage(env.Client, env.Session, logging.Discard())
	ctx := context.Background()

	require.NoError(t, p.Create(ctx, model.CreateDiagramRequest{Name: "Flows", Type: "flowchart", Content: "graph LR; A-->B"}))
	got := p.Canonical()
	require.Len(t, got, 1)
	assert.Equal(t, devapitest.UserID, got[0].CreatedBy)

	p.SetFacet("type", "sequence")
	assert.Empty(t, p.Filtered())
}

func TestDiagramsPage_ValidationNeverSubmits(t *testing.T) {
	env := devapitest.New(t, false)
	p := NewDiagramsPage(env.Client, env.Session, logging.Discard())

	err := p.Create(context.Background(), model.CreateDiagramRequest{Name: "Flows", Type: "whiteboard", Content: "x"})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "type", verr.Field)
	assert.False(t, p.Loaded(), "no re-fetch after a rejected submit")
}

func TestApprovalsPage_TabsRefetchByStatus(t *testing.T) {
	env := devapitest.New(t, true)
	p := NewApprovalsPage(env.Client, env.Session, logging.Discard())
	ctx := context.Background()

	assert.Equal(t, model.StatusPendingApproval, p.Status())
	require.NoError(t, p.Refresh(ctx))
	require.Len(t, p.Canonical(), 1)
	assert.Equal(t, model.StatusPendingApproval, p.Canonical()[0].Status)

	p.NextTab()
	assert.Equal(t, model.StatusApproved, p.Status())
	require.NoError(t, p.Refresh(ctx))
	require.Len(t, p.Canonical(), 1)
	assert.Equal(t, "Ledger glossary", p.Canonical()[0].Title)

	require.True(t, p.SelectStatus(model.StatusDraft))
	p.NextTab()
	assert.Equal(t, model.StatusPendingApproval, p.Status(), "tabs wrap around")
	assert.False(t, p.SelectStatus("archived"))
}

func TestApprovalsPage_CreateShowsUpInPendingTab(t *testing.T) {
	env := devapitest.New(t, true)
	p := NewApprovalsPage(env.Client, env.Session, logging.Discard())
	ctx := context.Background()

	err := p.Create(ctx, model.CreateApprovalRequest{Title: "Review FX", ItemType: "domain", TargetIDs: []string{"dom-fx"}})
	require.NoError(t, err)
	assert.Len(t, p.Canonical(), 2)
}

func TestDashboard_LoadsBothBlocks(t *testing.T) {
	env := devapitest.New(t, true)
	d := NewDashboard(env.Client, env.Session, logging.Discard())
	require.NoError(t, d.Refresh(context.Background()))
	data := d.Data()
	assert.True(t, d.Loaded())
	assert.Equal(t, 4, data.Overview.Stats.TotalDomains)
	require.Len(t, data.Pending, 1)
	assert.False(t, data.LoadedAt.IsZero())
}

func TestDashboard_FailureKeepsPreviousSnapshot(t *testing.T) {
	var fail atomic.Bool
	env := devapitest.New(t, true, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if fail.Load() && r.URL.Path == api.PathMyPendingItems {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			next.ServeHTTP(w, r)
		})
	})
	d := NewDashboard(env.Client, env.Session, logging.Discard())
	ctx := context.Background()
	require.NoError(t, d.Refresh(ctx))
	before := d.Data()

	fail.Store(true)
	err := d.Refresh(ctx)
	var ferr *api.FetchError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, before, d.Data())
	assert.Equal(t, err, d.Err())
}

func TestBannerText(t *testing.T) {
	tests := []struct {
		name string
		op   string
		err  error
		want string
	}{
		{"nil", OpLoadDomains, nil, ""},
		{"discarded", OpLoadDomains, collection.ErrDiscarded, ""},
		{"validation", OpExtract, &model.ValidationError{Field: "source.url", Reason: "must look like https://github.com/<owner>/<repo>"},
			"Failed to start extraction: invalid source.url: must look like https://github.com/<owner>/<repo>"},
		{"timeout", OpLoadDiagrams, &api.TimeoutError{Op: "GET", URL: "http://localhost:3001/api/diagrams", After: 30 * time.Second},
			"Failed to load diagrams: the server did not respond within 30s"},
		{"network", OpLoadDomains, &api.NetworkError{Op: "GET", URL: "http://localhost:3001/api/knowledge/domains", Err: errors.New("connection refused")},
			"Failed to load domains: could not reach the server at localhost:3001"},
		{"fetch", OpLoadApprovals, &api.FetchError{Path: api.PathMyPendingItems, Status: 403, Message: "forbidden for role"},
			"Failed to load approvals: server returned 403 Forbidden (forbidden for role)"},
		{"mutation bare status", OpCreateDomain, &api.MutationError{Method: "POST", Path: api.PathDomains, Status: 500, Message: "Internal Server Error"},
			"Failed to create domain: server returned 500 Internal Server Error"},
		{"not logged in", OpLoadDashboard, session.ErrNotLoggedIn,
			"Failed to load dashboard: " + session.ErrNotLoggedIn.Error()},
		{"refresh after save", OpCreateDiagram, &collection.RefreshError{View: "diagrams", Err: &api.FetchError{Status: 502}},
			"Saved, but failed to reload diagrams: server returned 502 Bad Gateway"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BannerText(tt.op, tt.err))
		})
	}
}
