package devapi_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"catalog-cli/internal/api"
	"catalog-cli/internal/devapi"
	"catalog-cli/internal/devapi/devapitest"
	"catalog-cli/internal/logging"
	"catalog-cli/internal/model"
	"catalog-cli/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStub_DomainLifecycle(t *testing.T) {
	env := devapitest.New(t, false)
	ctx := context.Background()

	ds, err := env.Client.ListDomains(ctx, env.Session)
	require.NoError(t, err)
	assert.Empty(t, ds)

	ack, err := env.Client.CreateDomain(ctx, env.Session, model.CreateDomainRequest{
		Name: "Payments", Description: "Card flows", PriorityLevel: "high", OwnerID: env.Session.User.ID,
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(ack.ID, "dom-"), ack.ID)

	name := "Card Payments"
	_, err = env.Client.UpdateDomain(ctx, env.Session, model.UpdateDomainRequest{ID: ack.ID, Name: &name})
	require.NoError(t, err)

	ds, err = env.Client.ListDomains(ctx, env.Session)
	require.NoError(t, err)
	require.Len(t, ds, 1)
	assert.Equal(t, "Card Payments", ds[0].Name)
	assert.Equal(t, model.StatusDraft, ds[0].Status)
	assert.Equal(t, devapitest.UserID, ds[0].OwnerID)

	_, err = env.Client.DeleteDomain(ctx, env.Session, ack.ID)
	require.NoError(t, err)

	_, err = env.Client.DeleteDomain(ctx, env.Session, ack.ID)
	var merr *api.MutationError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, http.StatusNotFound, merr.Status)
}

func TestStub_RejectsMissingToken(t *testing.T) {
	env := devapitest.New(t, false)
	req, err := http.NewRequest(http.MethodGet, env.Server.URL+api.PathDomains, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp2, err := http.Get(env.Server.URL + "/health")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}

func TestStub_SeedAndApprovalsByStatus(t *testing.T) {
	env := devapitest.New(t, true)
	ctx := context.Background()

	for _, st := range model.Statuses() {
		items, err := env.Client.MyPendingItems(ctx, env.Session, st, devapitest.UserID)
		require.NoError(t, err, st)
		require.Len(t, items, 1, st)
		assert.Equal(t, st, items[0].Status)
	}

	other, err := env.Client.MyPendingItems(ctx, env.Session, model.StatusApproved, "someone-else")
	require.NoError(t, err)
	assert.Empty(t, other)

	_, err = env.Client.CreateApproval(ctx, env.Session, model.CreateApprovalRequest{
		Title: "Review payments", ItemType: "domain", RequesterID: devapitest.UserID, TargetIDs: []string{"dom-x"},
	})
	require.NoError(t, err)
	pending, err := env.Client.MyPendingItems(ctx, env.Session, model.StatusPendingApproval, devapitest.UserID)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestStub_CatalogStats(t *testing.T) {
	env := devapitest.New(t, true)
	ov, err := env.Client.CatalogStats(context.Background(), env.Session)
	require.NoError(t, err)
	assert.Equal(t, 4, ov.Stats.TotalDomains)
	assert.Equal(t, 2, ov.Stats.TotalDiagrams)
	assert.Equal(t, 1, ov.Stats.PendingApprovals)
	assert.Equal(t, 1, ov.Stats.ApprovedItems)
	assert.NotEmpty(t, ov.RecentActivities)
	assert.NotEmpty(t, ov.PopularResources)
}

func TestStub_DiagramsAndExtraction(t *testing.T) {
	env := devapitest.New(t, false)
	ctx := context.Background()

	_, err := env.Client.CreateDiagram(ctx, env.Session, model.CreateDiagramRequest{
		Name: "Flows", Type: "flowchart", Content: "graph LR; A-->B", CreatedBy: devapitest.UserID,
	})
	require.NoError(t, err)
	ds, err := env.Client.ListDiagrams(ctx, env.Session)
	require.NoError(t, err)
	require.Len(t, ds, 1)
	assert.Equal(t, "flowchart", ds[0].Type)

	ack, err := env.Client.ExtractFromSource(ctx, env.Session, model.ExtractionRequest{
		Source:           model.ExtractionSource{Type: "github", URL: "https://github.com/acme/ledger"},
		System:           model.ExtractionSystem{Name: "Ledger", Description: "GL", OwnerID: devapitest.UserID},
		ApprovalStrategy: model.ApprovalStrategyManual,
	})
	require.NoError(t, err)
	assert.Contains(t, ack.Message, "https://github.com/acme/ledger")

	ov, err := env.Client.CatalogStats(ctx, env.Session)
	require.NoError(t, err)
	assert.Equal(t, 1, ov.Stats.TotalSystems)
	assert.Equal(t, 1, ov.Stats.PendingApprovals)
}

func TestStub_ServerSideValidation(t *testing.T) {
	env := devapitest.New(t, false)
	// Bypass client validation to reach the handler.
	_, err := env.Client.Submit(context.Background(), env.Session, http.MethodPost, api.PathDomains, map[string]string{"name": "x"})
	var merr *api.MutationError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, http.StatusBadRequest, merr.Status)
	assert.Contains(t, merr.Message, "description")
}

func TestStub_SignedTokens(t *testing.T) {
	ctx := context.Background()
	store, err := devapi.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	h := devapi.NewServer(devapi.ServerConfig{Secret: "0123456789abcdef0123456789abcdef"}, store, logging.Discard()).Handler()
	env := devapitest.New(t, false, func(http.Handler) http.Handler { return h })

	_, err = env.Client.ListDomains(ctx, env.Session)
	var ferr *api.FetchError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, http.StatusUnauthorized, ferr.Status)

	tok, err := devapi.IssueToken("0123456789abcdef0123456789abcdef", session.User{ID: "u-9", Name: "Nine"}, time.Hour)
	require.NoError(t, err)
	sess, err := session.FromToken(tok, "")
	require.NoError(t, err)
	assert.Equal(t, "u-9", sess.User.ID)
	assert.Equal(t, "Nine", sess.User.Name)

	_, err = env.Client.ListDomains(ctx, sess)
	require.NoError(t, err)
}
