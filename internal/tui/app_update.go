package tui

import (
	"context"
	"errors"
	"log/slog"

	"catalog-cli/internal/catalog"
	"catalog-cli/internal/collection"
	"catalog-cli/internal/flow"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		if !msg.apply() {
			// Superseded by a newer read of the same view.
			return m, nil
		}
		s := m.screens[msg.view]
		if msg.err != nil {
			m.banner = catalog.BannerText(s.op(), msg.err)
		} else if m.view == msg.view {
			m.banner = ""
		}
		m.syncList(msg.view)
		return m, nil

	case dashboardMsg:
		m.dashLoading = false
		m.dashboard.Apply(msg.data, msg.err)
		if msg.err != nil {
			m.banner = catalog.BannerText(catalog.OpLoadDashboard, msg.err)
		} else if m.view == viewDashboard {
			m.banner = ""
		}
		return m, nil

	case savedMsg:
		return m.handleSaved(msg)

	case extractDoneMsg:
		if m.wizard == nil {
			return m, nil
		}
		if msg.err != nil {
			m.wizard.err = catalog.BannerText(catalog.OpExtract, msg.err)
			return m, m.wizard.focusFirst()
		}
		// The server filed a new approval item and counted a new system.
		m.approvals.MarkStale()
		m.dashStale = true
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.modal {
		case modalSearch:
			return m.updateSearch(msg)
		case modalForm:
			return m.updateForm(msg)
		case modalDetail:
			return m.updateDetail(msg)
		case modalConfirmDelete:
			return m.updateConfirmDelete(msg)
		case modalWizard:
			return m.updateWizard(msg)
		}
		return m.updateMain(msg)
	}
	return m, nil
}

func (m appModel) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s, isList := m.currentScreen()

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "esc":
		m.banner = ""
		return m, nil

	case "1", "2", "3", "4":
		m.view = view(msg.String()[0] - '1')
		m.syncList(m.view)
		return m, m.ensureLoaded()

	case "r":
		if m.view == viewDashboard {
			// startLoad ignores r while a read is running.
			return m, m.startLoad(viewDashboard)
		}
		if s.loading() {
			return m, nil
		}
		return m, m.startLoad(m.view)

	case "x":
		m.wizard = newWizardState(flow.NewExtractionWizard(m.client, m.sess, m.log))
		m.modal = modalWizard
		return m, m.wizard.focusFirst()
	}

	if !isList {
		return m, nil
	}

	switch msg.String() {
	case "/":
		m.searchPrev = s.filter().SearchTerm
		m.search.SetValue(m.searchPrev)
		m.search.CursorEnd()
		m.modal = modalSearch
		return m, m.search.Focus()

	case "F":
		if n := len(s.facets()); n > 0 {
			m.facetSel[m.view] = (m.facetSel[m.view] + 1) % n
		}
		return m, nil

	case "f":
		facets := s.facets()
		if len(facets) == 0 {
			return m, nil
		}
		name := facets[m.facetSel[m.view]]
		s.setFacet(name, nextFacetValue(s.facetValues(name), s.filter().Facets[name]))
		m.syncList(m.view)
		return m, nil

	case "c":
		s.clearFilters()
		m.syncList(m.view)
		return m, nil

	case "n":
		if m.saving {
			return m, nil
		}
		m.form = newForm(formKindFor(m.view))
		m.modal = modalForm
		return m, nil

	case "enter":
		it, ok := m.lists[m.view].SelectedItem().(identified)
		if !ok {
			return m, nil
		}
		md, ok := s.detail(it.id())
		if !ok {
			return m, nil
		}
		m.detail.SetContent(renderMarkdown(md, m.detail.Width))
		m.detail.GotoTop()
		m.modal = modalDetail
		return m, nil

	case "tab", "shift+tab":
		if m.view != viewApprovals {
			return m, nil
		}
		if msg.String() == "tab" {
			m.approvals.NextTab()
		} else {
			m.approvals.SelectTab(m.approvals.Filter().ActiveTab - 1)
		}
		// The new tab's read supersedes any read still running for the old one.
		return m, m.startLoad(viewApprovals)

	case "d":
		if m.view != viewDomains || m.saving {
			return m, nil
		}
		it, ok := m.lists[viewDomains].SelectedItem().(domainItem)
		if !ok {
			return m, nil
		}
		m.confirmID = it.d.ID
		m.modal = modalConfirmDelete
		return m, nil
	}

	var cmd tea.Cmd
	m.lists[m.view], cmd = m.lists[m.view].Update(msg)
	return m, cmd
}

func formKindFor(v view) formKind {
	switch v {
	case viewDiagrams:
		return formDiagram
	case viewApprovals:
		return formApproval
	default:
		return formDomain
	}
}

func (m appModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s, ok := m.currentScreen()
	if !ok {
		m.modal = modalNone
		return m, nil
	}
	switch msg.String() {
	case "enter":
		m.search.Blur()
		m.modal = modalNone
		return m, nil
	case "esc":
		s.setSearch(m.searchPrev)
		m.syncList(m.view)
		m.search.Blur()
		m.modal = modalNone
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	s.setSearch(m.search.Value())
	m.syncList(m.view)
	return m, cmd
}

func (m appModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.saving {
		// Only the submit in flight may close the dialog.
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.modal = modalNone
		m.form = form{}
		return m, nil
	case "tab", "down":
		return m, m.form.move(1)
	case "shift+tab", "up":
		return m, m.form.move(-1)
	case "enter":
		m.saving = true
		m.form.err = ""
		return m, tea.Batch(m.submitForm(), m.startSpinner())
	}
	return m, m.form.update(msg)
}

// submitForm returns the command that creates the record and re-fetches the list.
func (m appModel) submitForm() tea.Cmd {
	ctx, f := m.ctx, m.form
	switch f.kind {
	case formDiagram:
		p, req := m.diagrams, f.diagramRequest()
		return func() tea.Msg {
			return savedMsg{view: viewDiagrams, op: f.op(), err: p.Create(ctx, req)}
		}
	case formApproval:
		p, req := m.approvals, f.approvalRequest()
		return func() tea.Msg {
			return savedMsg{view: viewApprovals, op: f.op(), err: p.Create(ctx, req)}
		}
	default:
		p, req := m.domains, f.domainRequest()
		return func() tea.Msg {
			return savedMsg{view: viewDomains, op: f.op(), err: p.Create(ctx, req)}
		}
	}
}

func (m appModel) handleSaved(msg savedMsg) (tea.Model, tea.Cmd) {
	m.saving = false
	m.syncList(msg.view)

	var rerr *collection.RefreshError
	switch {
	case msg.err == nil:
		m.log.Info("saved", slog.String("op", msg.op))
		m.banner = ""
		m.closeSaveModal()
		m.dashStale = true
	case errors.As(msg.err, &rerr):
		// The change went through; only the reload failed.
		m.banner = catalog.BannerText(msg.op, msg.err)
		m.closeSaveModal()
		m.dashStale = true
	case errors.Is(msg.err, context.Canceled):
		m.closeSaveModal()
	default:
		text := catalog.BannerText(msg.op, msg.err)
		if m.modal == modalForm {
			m.form.err = text
		} else {
			m.banner = text
		}
	}
	return m, nil
}

func (m *appModel) closeSaveModal() {
	if m.modal == modalForm {
		m.form = form{}
	}
	if m.modal == modalForm || m.modal == modalConfirmDelete {
		m.modal = modalNone
	}
	m.confirmID = ""
}

func (m appModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "enter":
		m.modal = modalNone
		return m, nil
	}
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m appModel) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.saving {
		return m, nil
	}
	switch msg.String() {
	case "y", "enter":
		m.saving = true
		ctx, p, id := m.ctx, m.domains, m.confirmID
		return m, tea.Batch(func() tea.Msg {
			return savedMsg{view: viewDomains, op: catalog.OpDeleteDomain, err: p.Delete(ctx, id)}
		}, m.startSpinner())
	case "n", "esc":
		m.modal = modalNone
		m.confirmID = ""
	}
	return m, nil
}

func (m appModel) updateWizard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ws := m.wizard
	if ws.w.Busy() {
		return m, nil
	}

	if ws.w.Finished() {
		switch msg.String() {
		case "enter", "esc":
			m.wizard = nil
			m.modal = modalNone
			if m.view == viewApprovals || m.view == viewDashboard {
				return m, m.ensureLoaded()
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "esc":
		if err := ws.w.Back(); err != nil {
			m.wizard = nil
			m.modal = modalNone
			return m, nil
		}
		ws.err = ""
		return m, ws.focusFirst()
	case "tab", "down":
		return m, ws.move(1)
	case "shift+tab", "up":
		return m, ws.move(-1)
	case "ctrl+a":
		ws.toggleApproval()
		return m, nil
	case "ctrl+o":
		ws.toggleOption("code")
		return m, nil
	case "ctrl+d":
		ws.toggleOption("docs")
		return m, nil
	case "ctrl+g":
		ws.toggleOption("diagrams")
		return m, nil
	case "enter":
		cmd := ws.advance(m.ctx)
		if ws.w.Busy() {
			return m, tea.Batch(cmd, m.startSpinner())
		}
		return m, cmd
	}
	return m, ws.update(msg)
}
