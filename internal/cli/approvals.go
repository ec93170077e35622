package cli

import (
	"strings"

	"catalog-cli/internal/catalog"
	"catalog-cli/internal/model"

	"github.com/spf13/cobra"
)

func newApprovalsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "approvals",
		Aliases: []string{"approval"},
		Short:   "List your approval items and file requests",
	}
	cmd.AddCommand(newApprovalsListCmd(app))
	cmd.AddCommand(newApprovalsCreateCmd(app))
	return cmd
}

func newApprovalsListCmd(app *App) *cobra.Command {
	var status, search, itemType, priority string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your items for one status tab",
		Example: strings.TrimSpace(`
catalog approvals list
catalog approvals list --status approved --search glossary
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := model.ParseStatus(status)
			if err != nil {
				return writeErr(cmd, err)
			}
			e, err := app.remote(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			page := catalog.NewApprovalsPage(e.client, e.sess, e.log)
			defer page.Close()
			page.SelectStatus(st)
			if err := page.Refresh(cmd.Context()); err != nil {
				return writeFailure(cmd, catalog.OpLoadApprovals, err)
			}
			page.SetSearch(search)
			page.SetFacet("item_type", itemType)
			page.SetFacet("priority", priority)

			out := listEnvelope(page.Filtered(), len(page.Canonical()), page.Filter())
			out["meta"].(map[string]any)["status"] = st
			return writeOut(cmd, app, out)
		},
	}

	cmd.Flags().StringVar(&status, "status", string(model.StatusPendingApproval), "Status tab (pending_approval|approved|rejected|draft)")
	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive search over title, description, type")
	cmd.Flags().StringVar(&itemType, "type", "", "Exact item type")
	cmd.Flags().StringVar(&priority, "priority", "", "Exact priority")
	return cmd
}

func newApprovalsCreateCmd(app *App) *cobra.Command {
	var req model.CreateApprovalRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Request approval for one or more catalog items",
		Example: strings.TrimSpace(`
catalog approvals create --title "Publish payments" --type domain --target dom-123
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.remote(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			if strings.TrimSpace(req.RequesterID) == "" {
				req.RequesterID = e.sess.User.ID
			}
			ack, err := e.client.CreateApproval(cmd.Context(), e.sess, req)
			if err != nil {
				return writeFailure(cmd, catalog.OpCreateApproval, err)
			}
			return writeOut(cmd, app, map[string]any{"data": ack})
		},
	}

	cmd.Flags().StringVar(&req.Title, "title", "", "Title (required)")
	cmd.Flags().StringVar(&req.Description, "description", "", "Description")
	cmd.Flags().StringVar(&req.ItemType, "type", "", "Item type, e.g. domain or diagram (required)")
	cmd.Flags().StringVar(&req.Priority, "priority", "", "Priority (low|medium|high|critical)")
	cmd.Flags().StringSliceVar(&req.TargetIDs, "target", nil, "Target item id (repeatable)")
	return cmd
}
