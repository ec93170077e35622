package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"catalog-cli/internal/api"
	"catalog-cli/internal/devapi"
	"catalog-cli/internal/devapi/devapitest"
	"catalog-cli/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func runCLI(t *testing.T, stdin io.Reader, args ...string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

// isolate keeps config and session files inside a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CATALOG_CONFIG_DIR", dir)
	t.Setenv("CATALOG_TOKEN", "")
	t.Setenv("CATALOG_USER_ID", "")
	t.Setenv("CATALOG_API_URL", "")
	return dir
}

func against(env *devapitest.Env, args ...string) []string {
	base := []string{"--api-url", env.Server.URL, "--token", env.Session.Token, "--user-id", devapitest.UserID}
	return append(base, args...)
}

type listOut[T any] struct {
	Data []T `json:"data"`
	Meta struct {
		Total  int               `json:"total"`
		Shown  int               `json:"shown"`
		Search string            `json:"search"`
		Facets map[string]string `json:"facets"`
		Status string            `json:"status"`
	} `json:"meta"`
}

type named struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

func decodeOut[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(b, &out), string(b))
	return out
}

func TestDomainsList_FiltersLocally(t *testing.T) {
	isolate(t)
	env := devapitest.New(t, true)

	out, _, err := runCLI(t, nil, against(env, "domains", "list", "--search", "kb")...)
	require.NoError(t, err)
	got := decodeOut[listOut[named]](t, out)
	require.Len(t, got.Data, 1)
	assert.Equal(t, "KB은행", got.Data[0].Name)
	assert.Equal(t, 4, got.Meta.Total)
	assert.Equal(t, 1, got.Meta.Shown)
	assert.Equal(t, "kb", got.Meta.Search)

	out, _, err = runCLI(t, nil, against(env, "domains", "list", "--category", "banking", "--priority", "medium")...)
	require.NoError(t, err)
	got = decodeOut[listOut[named]](t, out)
	require.Len(t, got.Data, 1)
	assert.Equal(t, "Customer Onboarding", got.Data[0].Name)
	assert.Equal(t, map[string]string{"category": "banking", "priority_level": "medium"}, got.Meta.Facets)
}

func TestDomainsList_NoMatchesIsEmptyArray(t *testing.T) {
	isolate(t)
	env := devapitest.New(t, true)

	out, _, err := runCLI(t, nil, against(env, "domains", "list", "--region", "antarctica")...)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"data":[]`)
}

func TestDomainsCreateUpdateDelete(t *testing.T) {
	isolate(t)
	env := devapitest.New(t, false)

	out, _, err := runCLI(t, nil, against(env, "domains", "create", "--name", "Treasury", "--description", "Cash management", "--priority", "high")...)
	require.NoError(t, err)
	ack := decodeOut[struct{ Data api.Ack }](t, out)
	assert.True(t, ack.Data.Success)
	require.NotEmpty(t, ack.Data.ID)

	_, _, err = runCLI(t, nil, against(env, "domains", "update", ack.Data.ID, "--status", "approved")...)
	require.NoError(t, err)

	out, _, err = runCLI(t, nil, against(env, "domains", "list", "--status", "approved")...)
	require.NoError(t, err)
	got := decodeOut[listOut[named]](t, out)
	require.Len(t, got.Data, 1)
	assert.Equal(t, "Treasury", got.Data[0].Name)

	_, _, err = runCLI(t, nil, against(env, "domains", "delete", ack.Data.ID)...)
	require.NoError(t, err)
	out, _, err = runCLI(t, nil, against(env, "domains", "list")...)
	require.NoError(t, err)
	assert.Empty(t, decodeOut[listOut[named]](t, out).Data)
}

func TestDomainsUpdate_NothingToUpdateIsRejectedLocally(t *testing.T) {
	isolate(t)
	var hits atomic.Int32
	env := devapitest.New(t, true, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			next.ServeHTTP(w, r)
		})
	})

	_, stderr, err := runCLI(t, nil, against(env, "domains", "update", "dom-1")...)
	require.Error(t, err)
	assert.Contains(t, string(stderr), "Failed to update domain")
	assert.Zero(t, hits.Load())
}

func TestDomainsCreate_ServerFailurePrintsBanner(t *testing.T) {
	isolate(t)
	env := devapitest.New(t, true, devapitest.FailWith(http.MethodPost, api.PathDomains, http.StatusInternalServerError))

	out, stderr, err := runCLI(t, nil, against(env, "domains", "create", "--name", "FX", "--description", "Foreign exchange")...)
	var merr *api.MutationError
	require.ErrorAs(t, err, &merr)
	assert.Empty(t, out)
	assert.True(t, strings.HasPrefix(string(stderr), "Failed to create domain: server returned 500"), string(stderr))
}

func TestDiagramsCreate_FromStdin(t *testing.T) {
	isolate(t)
	env := devapitest.New(t, false)

	src := "sequenceDiagram\n  A->>B: pay\n"
	_, _, err := runCLI(t, strings.NewReader(src), against(env, "diagrams", "create", "--name", "Pay", "--type", "sequence", "--file", "-")...)
	require.NoError(t, err)

	out, _, err := runCLI(t, nil, against(env, "diagrams", "list", "--type", "sequence")...)
	require.NoError(t, err)
	var got struct {
		Data []struct {
			Name      string `json:"name"`
			Content   string `json:"content"`
			CreatedBy string `json:"created_by"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out, &got))
	require.Len(t, got.Data, 1)
	assert.Equal(t, src, got.Data[0].Content)
	assert.Equal(t, devapitest.UserID, got.Data[0].CreatedBy)
}

func TestApprovalsList_ByStatus(t *testing.T) {
	isolate(t)
	env := devapitest.New(t, true)

	out, _, err := runCLI(t, nil, against(env, "approvals", "list", "--status", "approved")...)
	require.NoError(t, err)
	got := decodeOut[listOut[named]](t, out)
	require.Len(t, got.Data, 1)
	assert.Equal(t, "Ledger glossary", got.Data[0].Title)
	assert.Equal(t, "approved", got.Meta.Status)

	_, _, err = runCLI(t, nil, against(env, "approvals", "list", "--status", "archived")...)
	require.Error(t, err)
}

func TestApprovalsCreate_ShowsUpAsPending(t *testing.T) {
	isolate(t)
	env := devapitest.New(t, true)

	_, _, err := runCLI(t, nil, against(env, "approvals", "create", "--title", "Publish FX", "--type", "domain", "--target", "dom-a", "--target", "dom-b")...)
	require.NoError(t, err)

	out, _, err := runCLI(t, nil, against(env, "approvals", "list", "--search", "fx")...)
	require.NoError(t, err)
	got := decodeOut[listOut[named]](t, out)
	require.Len(t, got.Data, 1)
	assert.Equal(t, "pending_approval", got.Data[0].Status)
}

func TestStats(t *testing.T) {
	isolate(t)
	env := devapitest.New(t, true)

	out, _, err := runCLI(t, nil, against(env, "stats")...)
	require.NoError(t, err)
	var got struct {
		Data struct {
			Overview struct {
				Stats struct {
					TotalDomains  int `json:"totalDomains"`
					TotalDiagrams int `json:"totalDiagrams"`
				} `json:"stats"`
			} `json:"overview"`
			Pending []named `json:"pending"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, 4, got.Data.Overview.Stats.TotalDomains)
	assert.Equal(t, 2, got.Data.Overview.Stats.TotalDiagrams)
	assert.Len(t, got.Data.Pending, 1)
}

func TestExtract_InvalidURLNeverSubmits(t *testing.T) {
	isolate(t)
	var hits atomic.Int32
	env := devapitest.New(t, false, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			next.ServeHTTP(w, r)
		})
	})

	_, stderr, err := runCLI(t, nil, against(env, "extract", "--url", "http://github.com/acme/ledger", "--name", "Ledger", "--description", "GL")...)
	require.Error(t, err)
	assert.Contains(t, string(stderr), "Failed to start extraction: invalid source.url")
	assert.Zero(t, hits.Load())
}

func TestExtract_FilesPendingApproval(t *testing.T) {
	isolate(t)
	env := devapitest.New(t, false)

	out, _, err := runCLI(t, nil, against(env, "extract", "--url", "https://github.com/acme/ledger", "--name", "Ledger", "--description", "General ledger")...)
	require.NoError(t, err)
	var got struct {
		Data struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
			ID      string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out, &got))
	assert.True(t, got.Data.Success)
	assert.Equal(t, "Extraction started for https://github.com/acme/ledger", got.Data.Message)

	out, _, err = runCLI(t, nil, against(env, "approvals", "list")...)
	require.NoError(t, err)
	assert.Len(t, decodeOut[listOut[named]](t, out).Data, 1)
}

func TestLoginWhoamiLogout(t *testing.T) {
	dir := isolate(t)

	token, err := devapi.IssueToken("secret", session.User{ID: "u-42", Name: "Ada"}, time.Hour)
	require.NoError(t, err)

	_, _, err = runCLI(t, nil, "login", "--token", token)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "session.json"))

	out, _, err := runCLI(t, nil, "whoami")
	require.NoError(t, err)
	assert.NotContains(t, string(out), token)
	var got struct {
		Data struct {
			User session.User `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, "u-42", got.Data.User.ID)
	assert.Equal(t, "Ada", got.Data.User.Name)

	_, _, err = runCLI(t, nil, "logout")
	require.NoError(t, err)
	_, _, err = runCLI(t, nil, "whoami")
	assert.ErrorIs(t, err, session.ErrNotLoggedIn)
}

func TestLogin_OpaqueTokenNeedsUserID(t *testing.T) {
	isolate(t)

	_, _, err := runCLI(t, nil, "login", "--token", "opaque")
	require.Error(t, err)

	_, _, err = runCLI(t, nil, "login", "--token", "opaque", "--user-id", "u-7")
	require.NoError(t, err)
}

func TestLogin_ExpiredTokenRejected(t *testing.T) {
	isolate(t)

	token, err := devapi.IssueToken("secret", session.User{ID: "u-42"}, -time.Minute)
	require.NoError(t, err)
	_, _, err = runCLI(t, nil, "login", "--token", token)
	require.Error(t, err)
}

func TestSavedSessionIsUsedForRemoteCommands(t *testing.T) {
	isolate(t)
	env := devapitest.New(t, true)

	_, _, err := runCLI(t, nil, "login", "--token", "opaque", "--user-id", devapitest.UserID)
	require.NoError(t, err)

	out, _, err := runCLI(t, nil, "--api-url", env.Server.URL, "approvals", "list")
	require.NoError(t, err)
	assert.Len(t, decodeOut[listOut[named]](t, out).Data, 1)
}

func TestRemoteCommand_NotLoggedIn(t *testing.T) {
	isolate(t)
	env := devapitest.New(t, true)

	_, stderr, err := runCLI(t, nil, "--api-url", env.Server.URL, "domains", "list")
	assert.ErrorIs(t, err, session.ErrNotLoggedIn)
	assert.Contains(t, string(stderr), "catalog login")
}

func TestRemoteCommand_UnreachableServer(t *testing.T) {
	isolate(t)

	_, stderr, err := runCLI(t, nil, "--api-url", "http://127.0.0.1:1", "--token", "t", "--user-id", "u", "--timeout", "2s", "domains", "list")
	var nerr *api.NetworkError
	require.ErrorAs(t, err, &nerr)
	assert.Contains(t, string(stderr), "Failed to load domains: could not reach the server at 127.0.0.1:1")
}

func TestConfigInitShowPath(t *testing.T) {
	dir := isolate(t)

	_, _, err := runCLI(t, nil, "--api-url", "https://catalog.example.com", "config", "init")
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "https://catalog.example.com")

	_, _, err = runCLI(t, nil, "config", "init")
	require.Error(t, err, "refuses to overwrite")

	out, _, err := runCLI(t, nil, "--format", "yaml", "config", "show")
	require.NoError(t, err)
	var shown struct {
		Data struct {
			API struct {
				BaseURL string `yaml:"base_url"`
			} `yaml:"api"`
		} `yaml:"data"`
	}
	require.NoError(t, yaml.Unmarshal(out, &shown))
	assert.Equal(t, "https://catalog.example.com", shown.Data.API.BaseURL)

	out, _, err = runCLI(t, nil, "config", "path")
	require.NoError(t, err)
	assert.Contains(t, string(out), `"exists":true`)
}

func TestConfig_RejectsBadAPIURL(t *testing.T) {
	isolate(t)

	_, _, err := runCLI(t, nil, "--api-url", "localhost:3001", "--token", "t", "--user-id", "u", "domains", "list")
	require.Error(t, err)
}

func TestAPIURLFlagOverridesEnv(t *testing.T) {
	isolate(t)
	env := devapitest.New(t, true)

	out, _, err := runCLI(t, nil, against(env, "domains", "list")...)
	require.NoError(t, err, "blank CATALOG_API_URL falls back to the default, then the flag wins")
	assert.Len(t, decodeOut[listOut[named]](t, out).Data, 4)

	t.Setenv("CATALOG_API_URL", "/not-absolute")
	out, _, err = runCLI(t, nil, against(env, "domains", "list")...)
	require.NoError(t, err)
	assert.Len(t, decodeOut[listOut[named]](t, out).Data, 4)

	_, _, err = runCLI(t, nil, "--token", "t", "--user-id", "u", "domains", "list")
	require.Error(t, err, "without the flag the bad env value is rejected")
}

func TestDocs(t *testing.T) {
	isolate(t)

	out, _, err := runCLI(t, nil, "docs")
	require.NoError(t, err)
	assert.Contains(t, string(out), `"topic":"filters"`)

	out, _, err = runCLI(t, nil, "docs", "extraction", "--raw")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "# Source extraction"))

	_, _, err = runCLI(t, nil, "docs", "nope")
	require.Error(t, err)
}
