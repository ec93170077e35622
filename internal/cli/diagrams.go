package cli

import (
	"io"
	"os"
	"strings"

	"catalog-cli/internal/catalog"
	"catalog-cli/internal/model"

	"github.com/spf13/cobra"
)

func newDiagramsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "diagrams",
		Aliases: []string{"diagram"},
		Short:   "List and save diagrams",
	}
	cmd.AddCommand(newDiagramsListCmd(app))
	cmd.AddCommand(newDiagramsCreateCmd(app))
	return cmd
}

func newDiagramsListCmd(app *App) *cobra.Command {
	var search, typ, status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved diagrams",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.remote(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			page := catalog.NewDiagramsPage(e.client, e.sess, e.log)
			defer page.Close()
			if err := page.Refresh(cmd.Context()); err != nil {
				return writeFailure(cmd, catalog.OpLoadDiagrams, err)
			}
			page.SetSearch(search)
			page.SetFacet("type", typ)
			page.SetFacet("status", status)
			return writeOut(cmd, app, listEnvelope(page.Filtered(), len(page.Canonical()), page.Filter()))
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive search over name, description, type")
	cmd.Flags().StringVar(&typ, "type", "", "Exact diagram type ("+strings.Join(model.DiagramTypes(), "|")+")")
	cmd.Flags().StringVar(&status, "status", "", "Exact status")
	return cmd
}

func newDiagramsCreateCmd(app *App) *cobra.Command {
	var req model.CreateDiagramRequest
	var file string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Save a diagram (content from --content or --file)",
		Example: strings.TrimSpace(`
catalog diagrams create --name "Payments flow" --type sequence --file flow.mmd
cat flow.mmd | catalog diagrams create --name "Payments flow" --type sequence --file -
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if f := strings.TrimSpace(file); f != "" {
				b, err := readContent(cmd, f)
				if err != nil {
					return writeErr(cmd, err)
				}
				req.Content = string(b)
			}

			e, err := app.remote(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			if strings.TrimSpace(req.CreatedBy) == "" {
				req.CreatedBy = e.sess.User.ID
			}
			ack, err := e.client.CreateDiagram(cmd.Context(), e.sess, req)
			if err != nil {
				return writeFailure(cmd, catalog.OpCreateDiagram, err)
			}
			return writeOut(cmd, app, map[string]any{"data": ack})
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Diagram name (required)")
	cmd.Flags().StringVar(&req.Type, "type", "", "Diagram type (required)")
	cmd.Flags().StringVar(&req.Description, "description", "", "Description")
	cmd.Flags().StringVar(&req.Content, "content", "", "Diagram source")
	cmd.Flags().StringVar(&file, "file", "", "Read diagram source from a file ('-' for stdin)")
	return cmd
}

func readContent(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
