package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"catalog-cli/internal/catalog"

	"github.com/charmbracelet/lipgloss"
)

func (m appModel) View() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	var body string
	if s, ok := m.currentScreen(); ok {
		body = m.renderListView(s)
	} else {
		body = m.renderDashboard()
	}

	switch m.modal {
	case modalForm:
		body = placeCentered(m.width, m.bodyHeight(), m.form.render(m.width, m.saving, m.spinner.View()))
	case modalDetail:
		body = placeCentered(m.width, m.bodyHeight(), renderModalBox(m.width, "Details", m.detail.View()))
	case modalConfirmDelete:
		body = placeCentered(m.width, m.bodyHeight(), m.renderConfirmDelete())
	case modalWizard:
		body = placeCentered(m.width, m.bodyHeight(), m.wizard.render(m.width, m.spinner.View()))
	}
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m appModel) bodyHeight() int {
	return max(3, m.height-headerLines-footerLines)
}

func (m appModel) renderHeader() string {
	tabs := make([]string, 0, 4)
	for v := viewDomains; v <= viewDashboard; v++ {
		label := fmt.Sprintf("%d %s", v+1, v)
		if v == m.view {
			tabs = append(tabs, styleTabActive().Render(label))
		} else {
			tabs = append(tabs, styleTab().Render(label))
		}
	}
	user := m.sess.User.Name
	if user == "" {
		user = m.sess.User.ID
	}
	right := styleChrome().Render("  " + dash(user))
	if m.busy() {
		right = m.spinner.View() + right
	}
	line := lipgloss.JoinHorizontal(lipgloss.Top, append(tabs, "  ", right)...)

	status := m.renderStatusLine()
	if m.banner != "" {
		status = styleBanner().Render(m.banner) + styleMuted().Render("  esc: dismiss")
	}
	return line + "\n" + status + "\n"
}

func (m appModel) renderStatusLine() string {
	s, ok := m.currentScreen()
	if !ok {
		if at := m.dashboard.Data().LoadedAt; !at.IsZero() {
			return styleMuted().Render("loaded " + at.Format(time.Kitchen))
		}
		return ""
	}
	f := s.filter()
	parts := []string{fmt.Sprintf("%d of %d", len(s.rows()), s.total())}
	if f.SearchTerm != "" {
		parts = append(parts, fmt.Sprintf("search %q", f.SearchTerm))
	}
	facets := s.facets()
	if len(facets) > 0 {
		sel := facets[m.facetSel[m.view]]
		keys := make([]string, 0, len(f.Facets))
		for k := range f.Facets {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, k+"="+f.Facets[k])
		}
		parts = append(parts, "f: "+sel)
	}
	return styleMuted().Render(strings.Join(parts, "  ·  "))
}

func (m appModel) renderListView(s screen) string {
	var b strings.Builder
	if m.view == viewApprovals {
		b.WriteString(m.renderApprovalTabs())
		b.WriteString("\n")
	}
	if m.modal == modalSearch {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}
	switch {
	case !s.loaded() && s.loading():
		b.WriteString(m.spinner.View() + " Loading " + strings.ToLower(s.name()) + "…")
	case !s.loaded():
		b.WriteString(styleMuted().Render("Nothing loaded yet. r: reload"))
	case len(m.lists[m.view].Items()) == 0:
		b.WriteString(styleMuted().Render("No matches. c: clear filters"))
	default:
		b.WriteString(m.lists[m.view].View())
	}
	return b.String()
}

func (m appModel) renderApprovalTabs() string {
	cur := m.approvals.Status()
	tabs := []string{}
	for _, st := range catalog.ApprovalTabs() {
		if st == cur {
			tabs = append(tabs, styleTabActive().Render(st.Label()))
		} else {
			tabs = append(tabs, styleTab().Render(st.Label()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m appModel) renderDashboard() string {
	if !m.dashboard.Loaded() {
		if m.dashLoading {
			return m.spinner.View() + " Loading dashboard…"
		}
		return styleMuted().Render("Nothing loaded yet. r: reload")
	}
	d := m.dashboard.Data()
	st := d.Overview.Stats
	head := lipgloss.NewStyle().Bold(true)

	lines := []string{
		head.Render("Catalog"),
		fmt.Sprintf("  %-18s %d", "Domains", st.TotalDomains),
		fmt.Sprintf("  %-18s %d", "Systems", st.TotalSystems),
		fmt.Sprintf("  %-18s %d", "Diagrams", st.TotalDiagrams),
		fmt.Sprintf("  %-18s %d", "Pending approvals", st.PendingApprovals),
		fmt.Sprintf("  %-18s %d", "Approved items", st.ApprovedItems),
		"",
		head.Render(fmt.Sprintf("Waiting for you (%d)", len(d.Pending))),
	}
	for _, p := range d.Pending {
		lines = append(lines, "  "+approvalItem{p: p}.Title())
	}
	if len(d.Overview.RecentActivities) > 0 {
		lines = append(lines, "", head.Render("Recent activity"))
		for _, a := range d.Overview.RecentActivities {
			lines = append(lines, fmt.Sprintf("  %s  %s %s", styleMuted().Render(dash(a.Timestamp)), a.Action, a.Target))
		}
	}
	if len(d.Overview.PopularResources) > 0 {
		lines = append(lines, "", head.Render("Popular"))
		for _, r := range d.Overview.PopularResources {
			lines = append(lines, fmt.Sprintf("  %-32s %s", r.Title, styleMuted().Render(fmt.Sprintf("%d views", r.Views))))
		}
	}
	return strings.Join(lines, "\n")
}

func (m appModel) renderConfirmDelete() string {
	name := m.confirmID
	if d, ok := m.domains.Find(m.confirmID); ok {
		name = d.Name
	}
	body := fmt.Sprintf("Delete domain %q?", name)
	if m.saving {
		body += "\n\n" + m.spinner.View() + " Deleting…"
	}
	return renderConfirmModal(m.width, "Delete domain", body)
}

func (m appModel) renderFooter() string {
	var help string
	switch {
	case m.modal != modalNone:
		help = ""
	case m.view == viewDashboard:
		help = "1-4: screens  r: reload  x: extract  q: quit"
	case m.view == viewApprovals:
		help = "/: search  f/F: facet  c: clear  n: new  enter: details  tab: status  r: reload  x: extract  q: quit"
	case m.view == viewDomains:
		help = "/: search  f/F: facet  c: clear  n: new  d: delete  enter: details  r: reload  x: extract  q: quit"
	default:
		help = "/: search  f/F: facet  c: clear  n: new  enter: details  r: reload  x: extract  q: quit"
	}
	return "\n" + styleMuted().Render(help)
}
