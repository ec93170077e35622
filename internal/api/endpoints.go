package api

import (
	"context"
	"net/http"
	"net/url"

	"catalog-cli/internal/model"
	"catalog-cli/internal/session"
)

const (
	PathDomains         = "/api/knowledge/domains"
	PathDiagrams        = "/api/diagrams"
	PathCatalogStats    = "/api/knowledge/catalog-stats"
	PathMyPendingItems  = "/api/approvals/my-items"
	PathCreateApproval  = "/api/approvals/create"
	PathExtractFromRepo = "/api/knowledge-extraction/extract-from-source"
)

func DomainPath(id string) string { return PathDomains + "/" + url.PathEscape(id) }

func (c *Client) ListDomains(ctx context.Context, sess session.Session) ([]model.Domain, error) {
	var out []model.Domain
	if err := c.Fetch(ctx, sess, PathDomains, "domains", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateDomain(ctx context.Context, sess session.Session, req model.CreateDomainRequest) (Ack, error) {
	if err := req.Validate(); err != nil {
		return Ack{}, err
	}
	return c.Submit(ctx, sess, http.MethodPost, PathDomains, req)
}

func (c *Client) UpdateDomain(ctx context.Context, sess session.Session, req model.UpdateDomainRequest) (Ack, error) {
	if err := req.Validate(); err != nil {
		return Ack{}, err
	}
	return c.Submit(ctx, sess, http.MethodPut, DomainPath(req.ID), req)
}

func (c *Client) DeleteDomain(ctx context.Context, sess session.Session, id string) (Ack, error) {
	if id == "" {
		return Ack{}, &model.ValidationError{Field: "id", Reason: "required"}
	}
	return c.Submit(ctx, sess, http.MethodDelete, DomainPath(id), nil)
}

func (c *Client) ListDiagrams(ctx context.Context, sess session.Session) ([]model.Diagram, error) {
	var out []model.Diagram
	if err := c.Fetch(ctx, sess, PathDiagrams, "diagrams", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateDiagram(ctx context.Context, sess session.Session, req model.CreateDiagramRequest) (Ack, error) {
	if err := req.Validate(); err != nil {
		return Ack{}, err
	}
	return c.Submit(ctx, sess, http.MethodPost, PathDiagrams, req)
}

func (c *Client) CatalogStats(ctx context.Context, sess session.Session) (model.CatalogOverview, error) {
	var out model.CatalogOverview
	if err := c.Fetch(ctx, sess, PathCatalogStats, "", &out); err != nil {
		return model.CatalogOverview{}, err
	}
	return out, nil
}

// MyPendingItems lists approval items owned by ownerID, optionally narrowed to one status.
func (c *Client) MyPendingItems(ctx context.Context, sess session.Session, status model.Status, ownerID string) ([]model.PendingItem, error) {
	q := url.Values{}
	q.Set("status", string(status))
	q.Set("owner_id", ownerID)

	var out []model.PendingItem
	if err := c.Fetch(ctx, sess, PathMyPendingItems+"?"+q.Encode(), "items", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateApproval(ctx context.Context, sess session.Session, req model.CreateApprovalRequest) (Ack, error) {
	if err := req.Validate(); err != nil {
		return Ack{}, err
	}
	return c.Submit(ctx, sess, http.MethodPost, PathCreateApproval, req)
}

func (c *Client) ExtractFromSource(ctx context.Context, sess session.Session, req model.ExtractionRequest) (Ack, error) {
	if err := req.Validate(); err != nil {
		return Ack{}, err
	}
	return c.Submit(ctx, sess, http.MethodPost, PathExtractFromRepo, req)
}
