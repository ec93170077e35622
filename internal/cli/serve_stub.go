package cli

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"catalog-cli/internal/config"
	"catalog-cli/internal/devapi"
	"catalog-cli/internal/logging"
	"catalog-cli/internal/session"

	"github.com/spf13/cobra"
)

func newServeStubCmd(app *App) *cobra.Command {
	var (
		addr   string
		dbPath string
		seed   bool
		secret string
		userID string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve-stub",
		Short: "Run a local stub of the catalog API (sqlite-backed)",
		Long: strings.TrimSpace(`
Serves the catalog REST endpoints from a local sqlite file so the CLI and TUI
can be tried without a real backend.

Without --secret any bearer token is accepted and the user id is read from the
token's claims. With --secret only HS256 tokens signed with it are accepted.
`),
		Example: strings.TrimSpace(`
catalog serve-stub --seed
catalog --api-url http://127.0.0.1:3001 login --token <printed token>
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			logger := logging.New(cfg.Log, cmd.ErrOrStderr())

			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				return writeErr(cmd, errMissingFlag("serve-stub", "addr"))
			}
			if strings.TrimSpace(dbPath) == "" {
				dir, err := config.Dir()
				if err != nil {
					return writeErr(cmd, err)
				}
				dbPath = filepath.Join(dir, "stub.db")
			}
			if dbPath != ":memory:" {
				if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
					return writeErr(cmd, err)
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, err := devapi.Open(ctx, dbPath)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer store.Close()
			if seed {
				if err := store.Seed(ctx, userID); err != nil {
					return writeErr(cmd, err)
				}
			}

			signingKey := secret
			if signingKey == "" {
				signingKey = randomKey()
			}
			token, err := devapi.IssueToken(signingKey, session.User{ID: userID, Name: "Stub User"}, ttl)
			if err != nil {
				return writeErr(cmd, err)
			}

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}
			actualAddr := ln.Addr().String()
			url := "http://" + actualAddr

			_ = writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"addr":      actualAddr,
					"url":       url,
					"db":        dbPath,
					"user":      userID,
					"token":     token,
					"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
				},
				"_hints": []string{
					"export CATALOG_API_URL=" + url,
					"catalog login --token " + token,
				},
			})
			fmt.Fprintf(cmd.ErrOrStderr(), "Catalog stub API running at %s (db=%s)\n", url, dbPath)

			srv := &http.Server{
				Handler:           devapi.NewServer(devapi.ServerConfig{Secret: secret}, store, logger).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Serve(ln) }()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return writeErr(cmd, err)
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return writeErr(cmd, err)
			}
			logger.Info("stub api stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:3001", "Bind address (host:port or :port)")
	cmd.Flags().StringVar(&dbPath, "db", "", "sqlite file (default: <config dir>/stub.db, or :memory:)")
	cmd.Flags().BoolVar(&seed, "seed", false, "Load the sample catalog when the database is empty")
	cmd.Flags().StringVar(&secret, "secret", envOr("CATALOG_STUB_SECRET", ""), "HS256 secret required on bearer tokens")
	cmd.Flags().StringVar(&userID, "user", "u-dev", "User id for the printed token and seeded items")
	cmd.Flags().DurationVar(&ttl, "token-ttl", 24*time.Hour, "Lifetime of the printed token")
	return cmd
}

func randomKey() string {
	var b [32]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
