package cli

import (
	"errors"
	"fmt"

	"catalog-cli/internal/api"
	"catalog-cli/internal/logging"
	"catalog-cli/internal/session"
	"catalog-cli/internal/tui"

	"github.com/spf13/cobra"
)

func runTUI(cmd *cobra.Command, app *App) error {
	cfg, err := app.loadConfig()
	if err != nil {
		return writeErr(cmd, err)
	}
	sess, err := app.session()
	if err != nil {
		if errors.Is(err, session.ErrNotLoggedIn) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Run `catalog login --token <token>` first, or `catalog serve-stub --seed` to try a local stub.")
		}
		return writeErr(cmd, err)
	}

	// The TUI owns the terminal; logs go to <config dir>/logs/catalog.log.
	f, err := logging.OpenFile()
	if err != nil {
		return writeErr(cmd, err)
	}
	defer f.Close()
	logger := logging.New(cfg.Log, f)

	client, err := api.New(api.Options{BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout}, logger)
	if err != nil {
		return writeErr(cmd, err)
	}
	logger.Info("tui start", "api", cfg.API.BaseURL, "user", sess.User.ID)

	return tui.Run(tui.Options{
		Client:    client,
		Session:   sess,
		Logger:    logger,
		Theme:     cfg.TUI.Theme,
		StartView: cfg.TUI.StartView,
	})
}
