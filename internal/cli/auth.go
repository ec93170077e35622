package cli

import (
	"errors"
	"strings"
	"time"

	"catalog-cli/internal/session"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save a bearer token as the current session",
		Long: strings.TrimSpace(`
Saves the token from --token (or CATALOG_TOKEN) to <config dir>/session.json.

JWTs are decoded locally to pick up the user id (user_id or sub claim) and expiry.
For opaque tokens pass --user-id.
`),
		Example: strings.TrimSpace(`
catalog login --token "$TOKEN"
catalog login --token abc123 --user-id u-42
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(app.Token) == "" {
				return writeErr(cmd, errMissingFlag("login", "token"))
			}
			s, err := session.FromToken(app.Token, app.UserID)
			if err != nil {
				return writeErr(cmd, err)
			}
			if strings.TrimSpace(s.User.ID) == "" {
				return writeErr(cmd, errors.New("login: token carries no user id; pass --user-id"))
			}
			if s.Expired(time.Now()) {
				return writeErr(cmd, errors.New("login: token already expired"))
			}
			if err := session.Save(s); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": whoami(s)})
		},
	}
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := session.Clear(); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"loggedOut": true}})
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity the next request will use",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": whoami(s)})
		},
	}
}

// whoami never includes the token itself.
func whoami(s session.Session) map[string]any {
	out := map[string]any{"user": s.User}
	if !s.ExpiresAt.IsZero() {
		out["expiresAt"] = s.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return out
}
