// Package catalog holds the per-page state for the catalog screens. Each page owns
// its own collection view; nothing is shared between pages.
package catalog

import (
	"context"

	"catalog-cli/internal/api"
	"catalog-cli/internal/model"
	"catalog-cli/internal/session"
)

// API is the subset of *api.Client the pages and the extraction wizard call.
type API interface {
	ListDomains(ctx context.Context, sess session.Session) ([]model.Domain, error)
	CreateDomain(ctx context.Context, sess session.Session, req model.CreateDomainRequest) (api.Ack, error)
	UpdateDomain(ctx context.Context, sess session.Session, req model.UpdateDomainRequest) (api.Ack, error)
	DeleteDomain(ctx context.Context, sess session.Session, id string) (api.Ack, error)
	ListDiagrams(ctx context.Context, sess session.Session) ([]model.Diagram, error)
	CreateDiagram(ctx context.Context, sess session.Session, req model.CreateDiagramRequest) (api.Ack, error)
	CatalogStats(ctx context.Context, sess session.Session) (model.CatalogOverview, error)
	MyPendingItems(ctx context.Context, sess session.Session, status model.Status, ownerID string) ([]model.PendingItem, error)
	CreateApproval(ctx context.Context, sess session.Session, req model.CreateApprovalRequest) (api.Ack, error)
	ExtractFromSource(ctx context.Context, sess session.Session, req model.ExtractionRequest) (api.Ack, error)
}

var _ API = (*api.Client)(nil)

// Operation names used in banners and logs.
const (
	OpLoadDomains    = "load domains"
	OpCreateDomain   = "create domain"
	OpUpdateDomain   = "update domain"
	OpDeleteDomain   = "delete domain"
	OpLoadDiagrams   = "load diagrams"
	OpCreateDiagram  = "create diagram"
	OpLoadApprovals  = "load approvals"
	OpCreateApproval = "create approval request"
	OpLoadDashboard  = "load dashboard"
	OpExtract        = "start extraction"
)
