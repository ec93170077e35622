package cli

import (
	"strings"

	"catalog-cli/internal/catalog"
	"catalog-cli/internal/model"

	"github.com/spf13/cobra"
)

func newDomainsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "domains",
		Aliases: []string{"domain"},
		Short:   "List and manage knowledge domains",
	}
	cmd.AddCommand(newDomainsListCmd(app))
	cmd.AddCommand(newDomainsCreateCmd(app))
	cmd.AddCommand(newDomainsUpdateCmd(app))
	cmd.AddCommand(newDomainsDeleteCmd(app))
	return cmd
}

func newDomainsListCmd(app *App) *cobra.Command {
	var search, category, priority, region, status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List domains (filters apply locally, like the TUI)",
		Example: strings.TrimSpace(`
catalog domains list --search kb
catalog domains list --priority high --status approved
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.remote(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			page := catalog.NewDomainsPage(e.client, e.sess, e.log)
			defer page.Close()
			if err := page.Refresh(cmd.Context()); err != nil {
				return writeFailure(cmd, catalog.OpLoadDomains, err)
			}

			page.SetSearch(search)
			page.SetFacet("category", category)
			page.SetFacet("priority_level", priority)
			page.SetFacet("region", region)
			page.SetFacet("status", status)

			return writeOut(cmd, app, listEnvelope(page.Filtered(), len(page.Canonical()), page.Filter()))
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive search over name, description, category, region")
	cmd.Flags().StringVar(&category, "category", "", "Exact category")
	cmd.Flags().StringVar(&priority, "priority", "", "Exact priority level (low|medium|high|critical)")
	cmd.Flags().StringVar(&region, "region", "", "Exact region")
	cmd.Flags().StringVar(&status, "status", "", "Exact status (draft|pending_approval|approved|rejected)")
	return cmd
}

func newDomainsCreateCmd(app *App) *cobra.Command {
	var req model.CreateDomainRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a domain owned by the current user",
		Example: strings.TrimSpace(`
catalog domains create --name Payments --description "Card flows" --priority high
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.remote(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			ack, err := e.client.CreateDomain(cmd.Context(), e.sess, withOwner(req, e.sess.User.ID))
			if err != nil {
				return writeFailure(cmd, catalog.OpCreateDomain, err)
			}
			return writeOut(cmd, app, map[string]any{"data": ack})
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Domain name (required)")
	cmd.Flags().StringVar(&req.Description, "description", "", "Description (required)")
	cmd.Flags().StringVar(&req.Category, "category", "", "Category")
	cmd.Flags().StringVar(&req.Region, "region", "", "Region")
	cmd.Flags().StringVar(&req.PriorityLevel, "priority", "", "Priority level (low|medium|high|critical)")
	cmd.Flags().StringVar(&req.OwnerID, "owner", "", "Owner user id (default: current user)")
	return cmd
}

func withOwner(req model.CreateDomainRequest, userID string) model.CreateDomainRequest {
	if strings.TrimSpace(req.OwnerID) == "" {
		req.OwnerID = userID
	}
	return req
}

func newDomainsUpdateCmd(app *App) *cobra.Command {
	var name, description, category, region, priority, status string

	cmd := &cobra.Command{
		Use:   "update <domain-id>",
		Short: "Update fields of a domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := model.UpdateDomainRequest{ID: strings.TrimSpace(args[0])}
			flags := cmd.Flags()
			set := func(flag string, v string) *string {
				if !flags.Changed(flag) {
					return nil
				}
				return &v
			}
			req.Name = set("name", name)
			req.Description = set("description", description)
			req.Category = set("category", category)
			req.Region = set("region", region)
			req.PriorityLevel = set("priority", priority)
			if flags.Changed("status") {
				st, err := model.ParseStatus(status)
				if err != nil {
					return writeErr(cmd, err)
				}
				req.Status = &st
			}

			e, err := app.remote(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			ack, err := e.client.UpdateDomain(cmd.Context(), e.sess, req)
			if err != nil {
				return writeFailure(cmd, catalog.OpUpdateDomain, err)
			}
			return writeOut(cmd, app, map[string]any{"data": ack})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&category, "category", "", "New category")
	cmd.Flags().StringVar(&region, "region", "", "New region")
	cmd.Flags().StringVar(&priority, "priority", "", "New priority level")
	cmd.Flags().StringVar(&status, "status", "", "New status")
	return cmd
}

func newDomainsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <domain-id>",
		Short: "Delete a domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.remote(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			ack, err := e.client.DeleteDomain(cmd.Context(), e.sess, strings.TrimSpace(args[0]))
			if err != nil {
				return writeFailure(cmd, catalog.OpDeleteDomain, err)
			}
			return writeOut(cmd, app, map[string]any{"data": ack})
		},
	}
}
