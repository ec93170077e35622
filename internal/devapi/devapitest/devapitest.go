// Package devapitest starts the stub API on a temporary sqlite file for tests.
package devapitest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"catalog-cli/internal/api"
	"catalog-cli/internal/devapi"
	"catalog-cli/internal/logging"
	"catalog-cli/internal/session"
)

const UserID = "u-test"

// Env is a running stub API plus a client and session pointed at it.
type Env struct {
	Server  *httptest.Server
	Store   *devapi.Store
	Client  *api.Client
	Session session.Session
}

// Option wraps the stub handler, e.g. to inject failures.
type Option func(http.Handler) http.Handler

// New starts a stub API. When seed is true the sample catalog is loaded.
func New(t testing.TB, seed bool, opts ...Option) *Env {
	t.Helper()
	ctx := context.Background()

	store, err := devapi.Open(ctx, filepath.Join(t.TempDir(), "stub.db"))
	if err != nil {
		t.Fatalf("open stub store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if seed {
		if err := store.Seed(ctx, UserID); err != nil {
			t.Fatalf("seed stub store: %v", err)
		}
	}

	var h http.Handler = devapi.NewServer(devapi.ServerConfig{}, store, logging.Discard()).Handler()
	for _, o := range opts {
		h = o(h)
	}
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	client, err := api.New(api.Options{BaseURL: srv.URL, Timeout: 5 * time.Second}, logging.Discard())
	if err != nil {
		t.Fatalf("api client: %v", err)
	}
	return &Env{
		Server:  srv,
		Store:   store,
		Client:  client,
		Session: session.Session{Token: "test-token", User: session.User{ID: UserID, Name: "Test User"}},
	}
}

// FailWith answers requests matching method and path with status and a failure envelope.
func FailWith(method, path string, status int) Option {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == method && r.URL.Path == path {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				_, _ = w.Write([]byte(`{"success":false,"message":"internal server error"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
