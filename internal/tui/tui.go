// Package tui is the interactive terminal client for the catalog.
package tui

import (
	"log/slog"

	"catalog-cli/internal/catalog"
	"catalog-cli/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

type Options struct {
	Client  catalog.API
	Session session.Session
	Logger  *slog.Logger
	// Theme is light, dark or auto.
	Theme string
	// StartView is domains, diagrams, approvals or dashboard.
	StartView string
}

func Run(opts Options) error {
	applyColorProfilePreference()
	applyThemePreference(opts.Theme)

	m := newAppModel(opts)
	defer m.close()
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
