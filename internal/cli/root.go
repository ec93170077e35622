package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"catalog-cli/internal/api"
	"catalog-cli/internal/catalog"
	"catalog-cli/internal/collection"
	"catalog-cli/internal/config"
	"catalog-cli/internal/format"
	"catalog-cli/internal/logging"
	"catalog-cli/internal/session"

	"github.com/spf13/cobra"
)

type App struct {
	ConfigPath string
	APIURL     string
	Token      string
	UserID     string
	Timeout    time.Duration
	PrettyJSON bool
	Format     string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "catalog",
		Short:        "Knowledge asset catalog CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  catalog

  # Scriptable commands
  catalog domains list --priority high
  catalog approvals list --status approved

  # Run a local stub API to try things out
  catalog serve-stub --seed
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("CATALOG_CONFIG", ""), "Path to config.yaml (default: <config dir>/config.yaml)")
	cmd.PersistentFlags().StringVar(&app.APIURL, "api-url", "", "API origin (overrides api.base_url and CATALOG_API_URL)")
	cmd.PersistentFlags().StringVar(&app.Token, "token", envOr("CATALOG_TOKEN", ""), "Bearer token (overrides the saved session)")
	cmd.PersistentFlags().StringVar(&app.UserID, "user-id", envOr("CATALOG_USER_ID", ""), "User id for opaque tokens")
	cmd.PersistentFlags().DurationVar(&app.Timeout, "timeout", 0, "Per-request timeout (overrides api.timeout)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("CATALOG_FORMAT", "json"), "Output format (json|yaml)")

	cmd.AddCommand(newDomainsCmd(app))
	cmd.AddCommand(newDiagramsCmd(app))
	cmd.AddCommand(newApprovalsCmd(app))
	cmd.AddCommand(newStatsCmd(app))
	cmd.AddCommand(newExtractCmd(app))
	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newServeStubCmd(app))

	return cmd
}

// loadConfig reads config.yaml + env, applies flag overrides, then validates.
func (app *App) loadConfig() (*config.Config, error) {
	cfg, err := config.Read(app.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := app.applyOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

// applyOverrides puts the flag values over file and env settings.
func (app *App) applyOverrides(cfg *config.Config) error {
	if u := strings.TrimSpace(app.APIURL); u != "" {
		if err := config.ValidateBaseURL(u); err != nil {
			return fmt.Errorf("--api-url: %w", err)
		}
		cfg.API.BaseURL = u
	}
	if app.Timeout < 0 {
		return errors.New("--timeout must be positive")
	}
	if app.Timeout > 0 {
		cfg.API.Timeout = app.Timeout
	}
	return nil
}

// session resolves credentials: --token / CATALOG_TOKEN first, then the saved session.
func (app *App) session() (session.Session, error) {
	if strings.TrimSpace(app.Token) != "" {
		return session.FromToken(app.Token, app.UserID)
	}
	s, err := session.Load()
	if err != nil {
		return session.Session{}, err
	}
	if s.Expired(time.Now()) {
		return session.Session{}, fmt.Errorf("session expired at %s; run `catalog login --token <token>`", s.ExpiresAt.Format(time.RFC3339))
	}
	return s, nil
}

// env is everything a remote command needs.
type env struct {
	cfg    *config.Config
	log    *slog.Logger
	client *api.Client
	sess   session.Session
}

func (app *App) remote(cmd *cobra.Command) (*env, error) {
	cfg, err := app.loadConfig()
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.Log, cmd.ErrOrStderr())
	sess, err := app.session()
	if err != nil {
		return nil, err
	}
	client, err := api.New(api.Options{BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout}, logger)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: logger, client: client, sess: sess}, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}

// listEnvelope wraps a filtered list with the counts and active filter.
func listEnvelope[T any](shown []T, total int, f collection.FilterState) map[string]any {
	if shown == nil {
		shown = []T{}
	}
	meta := map[string]any{"total": total, "shown": len(shown)}
	if f.SearchTerm != "" {
		meta["search"] = f.SearchTerm
	}
	if len(f.Facets) > 0 {
		meta["facets"] = f.Facets
	}
	return map[string]any{"data": shown, "meta": meta}
}

// writeFailure prints the banner line for a failed operation.
func writeFailure(cmd *cobra.Command, op string, err error) error {
	if msg := catalog.BannerText(op, err); msg != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), msg)
	}
	return err
}
