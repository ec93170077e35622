package catalog

import (
	"context"
	"log/slog"
	"strings"

	"catalog-cli/internal/collection"
	"catalog-cli/internal/model"
	"catalog-cli/internal/session"
)

var ApprovalFacets = []string{"item_type", "priority"}

// ApprovalTabs are the status tabs of the approvals page, in order.
func ApprovalTabs() []model.Status { return model.Statuses() }

func ApprovalProjection() collection.Projection[model.PendingItem] {
	return collection.Projection[model.PendingItem]{
		Text: func(p model.PendingItem) []string {
			return []string{p.Title, p.Description, p.ItemType}
		},
		Facets: map[string]func(model.PendingItem) string{
			"item_type": func(p model.PendingItem) string { return p.ItemType },
			"priority":  func(p model.PendingItem) string { return p.Priority },
		},
	}
}

// ApprovalsPage lists the session user's approval items for the active status tab.
type ApprovalsPage struct {
	*collection.View[model.PendingItem]

	client API
	sess   session.Session
	log    *slog.Logger
}

func NewApprovalsPage(client API, sess session.Session, logger *slog.Logger) *ApprovalsPage {
	p := &ApprovalsPage{client: client, sess: sess, log: logger.With("page", "approvals")}
	p.View = collection.New("approvals", func(ctx context.Context) ([]model.PendingItem, error) {
		return client.MyPendingItems(ctx, sess, p.Status(), sess.User.ID)
	}, ApprovalProjection(), logger)
	return p
}

// Status is the status of the active tab.
func (p *ApprovalsPage) Status() model.Status {
	tabs := ApprovalTabs()
	i := p.Filter().ActiveTab
	if i < 0 || i >= len(tabs) {
		return tabs[0]
	}
	return tabs[i]
}

// SelectTab switches the status tab. The caller re-fetches; results for the
// previous tab that are still in flight get discarded.
func (p *ApprovalsPage) SelectTab(i int) {
	n := len(ApprovalTabs())
	p.SetActiveTab(((i % n) + n) % n)
}

// SelectStatus switches to the tab for status.
func (p *ApprovalsPage) SelectStatus(status model.Status) bool {
	for i, st := range ApprovalTabs() {
		if st == status {
			p.SelectTab(i)
			return true
		}
	}
	return false
}

func (p *ApprovalsPage) NextTab() { p.SelectTab(p.Filter().ActiveTab + 1) }

// Create files an approval request on behalf of the session user.
func (p *ApprovalsPage) Create(ctx context.Context, req model.CreateApprovalRequest) error {
	if strings.TrimSpace(req.RequesterID) == "" {
		req.RequesterID = p.sess.User.ID
	}
	return p.Mutate(ctx, func(ctx context.Context) error {
		ack, err := p.client.CreateApproval(ctx, p.sess, req)
		if err == nil {
			p.log.InfoContext(ctx, "approval requested", slog.String("id", ack.ID), slog.String("title", req.Title))
		}
		return err
	})
}
