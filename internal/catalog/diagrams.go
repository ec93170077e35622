package catalog

import (
	"context"
	"log/slog"
	"strings"

	"catalog-cli/internal/collection"
	"catalog-cli/internal/model"
	"catalog-cli/internal/session"
)

var DiagramFacets = []string{"type", "status"}

func DiagramProjection() collection.Projection[model.Diagram] {
	return collection.Projection[model.Diagram]{
		Text: func(d model.Diagram) []string {
			return []string{d.Name, d.Description, d.Type}
		},
		Facets: map[string]func(model.Diagram) string{
			"type":   func(d model.Diagram) string { return d.Type },
			"status": func(d model.Diagram) string { return string(d.Status) },
		},
	}
}

type DiagramsPage struct {
	*collection.View[model.Diagram]

	client API
	sess   session.Session
	log    *slog.Logger
}

func NewDiagramsPage(client API, sess session.Session, logger *slog.Logger) *DiagramsPage {
	p := &DiagramsPage{client: client, sess: sess, log: logger.With("page", "diagrams")}
	p.View = collection.New("diagrams", func(ctx context.Context) ([]model.Diagram, error) {
		return client.ListDiagrams(ctx, sess)
	}, DiagramProjection(), logger)
	return p
}

// Create saves a diagram authored by the session user unless req says otherwise.
func (p *DiagramsPage) Create(ctx context.Context, req model.CreateDiagramRequest) error {
	if strings.TrimSpace(req.CreatedBy) == "" {
		req.CreatedBy = p.sess.User.ID
	}
	return p.Mutate(ctx, func(ctx context.Context) error {
		_, err := p.client.CreateDiagram(ctx, p.sess, req)
		if err == nil {
			p.log.InfoContext(ctx, "diagram created", slog.String("name", req.Name), slog.String("type", req.Type))
		}
		return err
	})
}
