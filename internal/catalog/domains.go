package catalog

import (
	"context"
	"log/slog"
	"strings"

	"catalog-cli/internal/collection"
	"catalog-cli/internal/model"
	"catalog-cli/internal/session"
)

// DomainFacets are the facet filters offered on the domains page, in display order.
var DomainFacets = []string{"category", "priority_level", "region", "status"}

func DomainProjection() collection.Projection[model.Domain] {
	return collection.Projection[model.Domain]{
		Text: func(d model.Domain) []string {
			return []string{d.Name, d.Description, d.Category, d.Region}
		},
		Facets: map[string]func(model.Domain) string{
			"category":       func(d model.Domain) string { return d.Category },
			"priority_level": func(d model.Domain) string { return d.PriorityLevel },
			"region":         func(d model.Domain) string { return d.Region },
			"status":         func(d model.Domain) string { return string(d.Status) },
		},
	}
}

type DomainsPage struct {
	*collection.View[model.Domain]

	client API
	sess   session.Session
	log    *slog.Logger
}

func NewDomainsPage(client API, sess session.Session, logger *slog.Logger) *DomainsPage {
	p := &DomainsPage{client: client, sess: sess, log: logger.With("page", "domains")}
	p.View = collection.New("domains", func(ctx context.Context) ([]model.Domain, error) {
		return client.ListDomains(ctx, sess)
	}, DomainProjection(), logger)
	return p
}

// Create submits a new domain owned by the session user unless req names an owner.
func (p *DomainsPage) Create(ctx context.Context, req model.CreateDomainRequest) error {
	if strings.TrimSpace(req.OwnerID) == "" {
		req.OwnerID = p.sess.User.ID
	}
	return p.Mutate(ctx, func(ctx context.Context) error {
		ack, err := p.client.CreateDomain(ctx, p.sess, req)
		if err == nil {
			p.log.InfoContext(ctx, "domain created", slog.String("id", ack.ID), slog.String("name", req.Name))
		}
		return err
	})
}

func (p *DomainsPage) Update(ctx context.Context, req model.UpdateDomainRequest) error {
	return p.Mutate(ctx, func(ctx context.Context) error {
		_, err := p.client.UpdateDomain(ctx, p.sess, req)
		if err == nil {
			p.log.InfoContext(ctx, "domain updated", slog.String("id", req.ID))
		}
		return err
	})
}

func (p *DomainsPage) Delete(ctx context.Context, id string) error {
	return p.Mutate(ctx, func(ctx context.Context) error {
		_, err := p.client.DeleteDomain(ctx, p.sess, id)
		if err == nil {
			p.log.InfoContext(ctx, "domain deleted", slog.String("id", id))
		}
		return err
	})
}
