package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	t.Setenv("CATALOG_CONFIG_DIR", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3001", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CATALOG_CONFIG_DIR", dir)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: https://catalog.example.com\n  timeout: 5s\n"), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://catalog.example.com", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)

	t.Setenv("CATALOG_API_URL", "https://staging.example.com")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://staging.example.com", cfg.API.BaseURL)
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_RejectsRelativeBaseURL(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CATALOG_CONFIG_DIR", dir)
	t.Setenv("CATALOG_API_URL", "/api")

	_, err := Load("")
	require.Error(t, err)
}

func TestSave_RoundTripsThroughLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CATALOG_CONFIG_DIR", dir)

	cfg, err := Load("")
	require.NoError(t, err)
	cfg.API.BaseURL = "https://catalog.internal"
	cfg.TUI.StartView = "approvals"
	require.NoError(t, Save("", cfg))

	got, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://catalog.internal", got.API.BaseURL)
	assert.Equal(t, "approvals", got.TUI.StartView)

	info, err := os.Stat(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoad_BlankEnvCountsAsUnset(t *testing.T) {
	t.Setenv("CATALOG_CONFIG_DIR", t.TempDir())
	t.Setenv("CATALOG_API_URL", "")
	t.Setenv("CATALOG_API_TIMEOUT", "  ")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3001", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)

	v, ok := os.LookupEnv("CATALOG_API_URL")
	assert.True(t, ok, "blank variables are put back")
	assert.Empty(t, v)
}

func TestRead_LeavesValidationToCaller(t *testing.T) {
	t.Setenv("CATALOG_CONFIG_DIR", t.TempDir())
	t.Setenv("CATALOG_API_URL", "/api")

	cfg, err := Read("")
	require.NoError(t, err)
	assert.Equal(t, "/api", cfg.API.BaseURL)
	require.Error(t, cfg.Validate())

	cfg.API.BaseURL = "https://catalog.example.com"
	require.NoError(t, cfg.Validate())
}
