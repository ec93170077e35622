package tui

import (
	"strings"

	"catalog-cli/internal/catalog"
)

type view int

const (
	viewDomains view = iota
	viewDiagrams
	viewApprovals
	viewDashboard
)

// listViews are the views backed by a collection.
const listViews = 3

func (v view) String() string {
	switch v {
	case viewDomains:
		return "Domains"
	case viewDiagrams:
		return "Diagrams"
	case viewApprovals:
		return "Approvals"
	case viewDashboard:
		return "Dashboard"
	default:
		return "?"
	}
}

func (v view) isList() bool { return v >= 0 && int(v) < listViews }

func parseView(s string) view {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "diagrams":
		return viewDiagrams
	case "approvals":
		return viewApprovals
	case "dashboard", "stats":
		return viewDashboard
	default:
		return viewDomains
	}
}

type modalKind int

const (
	modalNone modalKind = iota
	modalSearch
	modalForm
	modalDetail
	modalConfirmDelete
	modalWizard
)

// loadedMsg carries a finished list read. apply commits it to the view and
// reports false when a newer read superseded it.
type loadedMsg struct {
	view  view
	err   error
	apply func() bool
}

type dashboardMsg struct {
	data catalog.DashboardData
	err  error
}

type savedMsg struct {
	view view
	op   string
	err  error
}

type extractDoneMsg struct {
	err error
}
