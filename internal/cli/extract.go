package cli

import (
	"strings"

	"catalog-cli/internal/catalog"
	"catalog-cli/internal/flow"
	"catalog-cli/internal/model"

	"github.com/spf13/cobra"
)

func newExtractCmd(app *App) *cobra.Command {
	var (
		url, branch             string
		name, description       string
		domainID                string
		noCode, noDocs, noDiags bool
		autoApprove             bool
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Start knowledge extraction from a GitHub repository",
		Long: strings.TrimSpace(`
Runs the extraction wizard non-interactively: source, system info, submit.

Each step is validated before the next one; nothing is sent to the server
until both steps pass.
`),
		Example: strings.TrimSpace(`
catalog extract --url https://github.com/acme/payments --name Payments --description "Card flows"
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.remote(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}

			w := flow.NewExtractionWizard(e.client, e.sess, e.log)
			w.SetSource(url, branch)
			w.SetOptions(model.ExtractionOptions{IncludeCode: !noCode, IncludeDocs: !noDocs, IncludeDiagrams: !noDiags})
			if err := w.Next(); err != nil {
				return writeFailure(cmd, catalog.OpExtract, err)
			}
			w.SetSystem(name, description, domainID)
			if autoApprove {
				w.SetApprovalStrategy(model.ApprovalStrategyAuto)
			}

			res, err := w.Run(cmd.Context())
			if err != nil {
				return writeFailure(cmd, catalog.OpExtract, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data":   res,
				"meta":   map[string]any{"request": w.Request()},
				"_hints": []string{"catalog approvals list"},
			})
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Repository URL, https://github.com/<owner>/<repo> (required)")
	cmd.Flags().StringVar(&branch, "branch", "main", "Branch to extract")
	cmd.Flags().StringVar(&name, "name", "", "System name (required)")
	cmd.Flags().StringVar(&description, "description", "", "System description (required)")
	cmd.Flags().StringVar(&domainID, "domain", "", "Domain id to attach the system to")
	cmd.Flags().BoolVar(&noCode, "no-code", false, "Skip source code")
	cmd.Flags().BoolVar(&noDocs, "no-docs", false, "Skip documentation")
	cmd.Flags().BoolVar(&noDiags, "no-diagrams", false, "Skip diagrams")
	cmd.Flags().BoolVar(&autoApprove, "auto-approve", false, "Approve the extracted system without review")
	return cmd
}
