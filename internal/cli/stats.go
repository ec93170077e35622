package cli

import (
	"catalog-cli/internal/catalog"

	"github.com/spf13/cobra"
)

func newStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "stats",
		Aliases: []string{"dashboard"},
		Short:   "Show catalog stats and your pending items",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.remote(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			d := catalog.NewDashboard(e.client, e.sess, e.log)
			if err := d.Refresh(cmd.Context()); err != nil {
				return writeFailure(cmd, catalog.OpLoadDashboard, err)
			}
			return writeOut(cmd, app, map[string]any{"data": d.Data()})
		},
	}
}
