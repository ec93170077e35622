package tui

import (
	"context"
	"log/slog"

	"catalog-cli/internal/catalog"
	"catalog-cli/internal/model"
	"catalog-cli/internal/session"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type appModel struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    *slog.Logger
	client catalog.API
	sess   session.Session

	width  int
	height int

	view view

	domains   *catalog.DomainsPage
	diagrams  *catalog.DiagramsPage
	approvals *catalog.ApprovalsPage
	dashboard *catalog.Dashboard
	screens   [listViews]screen
	lists     [listViews]list.Model
	// facetSel is the facet the f key cycles, per list view.
	facetSel [listViews]int

	dashLoading bool
	dashStale   bool
	saving      bool

	spinner  spinner.Model
	spinning bool

	banner string

	modal      modalKind
	search     textinput.Model
	searchPrev string
	form       form
	detail     viewport.Model
	confirmID  string
	wizard     *wizardState

	initCmd tea.Cmd
}

const (
	headerLines = 4
	footerLines = 2
)

func newAppModel(opts Options) appModel {
	ctx, cancel := context.WithCancel(context.Background())
	logger := opts.Logger

	m := appModel{
		ctx:       ctx,
		cancel:    cancel,
		log:       logger.With("component", "tui"),
		client:    opts.Client,
		sess:      opts.Session,
		domains:   catalog.NewDomainsPage(opts.Client, opts.Session, logger),
		diagrams:  catalog.NewDiagramsPage(opts.Client, opts.Session, logger),
		approvals: catalog.NewApprovalsPage(opts.Client, opts.Session, logger),
		dashboard: catalog.NewDashboard(opts.Client, opts.Session, logger),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		search:    textinput.New(),
		detail:    viewport.New(0, 0),
		view:      parseView(opts.StartView),
	}
	m.search.Prompt = "/ "
	m.search.Placeholder = "search"
	m.search.Cursor.SetMode(cursor.CursorStatic)

	m.screens[viewDomains] = &pageScreen[model.Domain]{
		title:    "Domains",
		loadOp:   catalog.OpLoadDomains,
		view:     m.domains.View,
		facetSet: catalog.DomainFacets,
		row:      func(d model.Domain) list.Item { return domainItem{d: d} },
		markdown: domainMarkdown,
	}
	m.screens[viewDiagrams] = &pageScreen[model.Diagram]{
		title:    "Diagrams",
		loadOp:   catalog.OpLoadDiagrams,
		view:     m.diagrams.View,
		facetSet: catalog.DiagramFacets,
		row:      func(d model.Diagram) list.Item { return diagramItem{d: d} },
		markdown: diagramMarkdown,
	}
	m.screens[viewApprovals] = &pageScreen[model.PendingItem]{
		title:    "Approvals",
		loadOp:   catalog.OpLoadApprovals,
		view:     m.approvals.View,
		facetSet: catalog.ApprovalFacets,
		row:      func(p model.PendingItem) list.Item { return approvalItem{p: p} },
		markdown: approvalMarkdown,
	}
	for i := range m.lists {
		m.lists[i] = newList(nil)
	}

	m.initCmd = m.ensureLoaded()
	return m
}

func (m appModel) Init() tea.Cmd {
	return m.initCmd
}

// close stops in-flight requests and makes the views ignore late results.
func (m appModel) close() {
	m.cancel()
	for _, s := range m.screens {
		s.close()
	}
}

func (m appModel) currentScreen() (screen, bool) {
	if !m.view.isList() {
		return nil, false
	}
	return m.screens[m.view], true
}

func (m appModel) busy() bool {
	for _, s := range m.screens {
		if s.loading() {
			return true
		}
	}
	return m.dashLoading || m.saving || (m.wizard != nil && m.wizard.w.Busy())
}

// startSpinner returns the first tick unless the spinner is already running.
func (m *appModel) startSpinner() tea.Cmd {
	if m.spinning {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

// startLoad re-fetches v. Results of earlier reads of the same view are discarded.
func (m *appModel) startLoad(v view) tea.Cmd {
	if v == viewDashboard {
		if m.dashLoading {
			return nil
		}
		m.dashLoading = true
		d, ctx := m.dashboard, m.ctx
		return tea.Batch(func() tea.Msg {
			data, err := d.Fetch(ctx)
			return dashboardMsg{data: data, err: err}
		}, m.startSpinner())
	}
	return tea.Batch(m.screens[v].startLoad(m.ctx, v), m.startSpinner())
}

// ensureLoaded fetches the current view when it was never loaded or is stale.
func (m *appModel) ensureLoaded() tea.Cmd {
	if m.view == viewDashboard {
		if (!m.dashboard.Loaded() || m.dashStale) && !m.dashLoading {
			m.dashStale = false
			return m.startLoad(viewDashboard)
		}
		return nil
	}
	s := m.screens[m.view]
	if s.loading() {
		return nil
	}
	if !s.loaded() || s.stale() {
		return m.startLoad(m.view)
	}
	return nil
}

// syncList copies the derived list of v into its list widget.
func (m *appModel) syncList(v view) {
	if !v.isList() {
		return
	}
	setListItems(&m.lists[v], m.screens[v].rows())
}

func (m *appModel) resize() {
	w := m.width
	h := m.height - headerLines - footerLines
	if h < 3 {
		h = 3
	}
	for i := range m.lists {
		m.lists[i].SetSize(w, h)
	}
	m.detail.Width = modalBodyWidth(m.width)
	m.detail.Height = max(3, m.height-8)
}
