package tui

import (
	"strings"

	"catalog-cli/internal/catalog"
	"catalog-cli/internal/model"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type formKind int

const (
	formNone formKind = iota
	formDomain
	formDiagram
	formApproval
)

type formField struct {
	key   string
	label string
	input textinput.Model
}

// form is the "new item" dialog. It stays open until a submit succeeds.
type form struct {
	kind   formKind
	title  string
	fields []formField
	focus  int
	err    string
}

func newField(key, label, placeholder string) formField {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.CharLimit = 2000
	in.Cursor.SetMode(cursor.CursorStatic)
	return formField{key: key, label: label, input: in}
}

func newForm(kind formKind) form {
	f := form{kind: kind}
	switch kind {
	case formDomain:
		f.title = "New domain"
		f.fields = []formField{
			newField("name", "Name", "required"),
			newField("description", "Description", "required"),
			newField("category", "Category", "e.g. banking"),
			newField("region", "Region", "e.g. eu"),
			newField("priority_level", "Priority", strings.Join(model.PriorityLevels(), "|")),
		}
	case formDiagram:
		f.title = "New diagram"
		f.fields = []formField{
			newField("name", "Name", "required"),
			newField("type", "Type", strings.Join(model.DiagramTypes(), "|")),
			newField("description", "Description", ""),
			newField("content", "Content", "diagram source, required"),
		}
	case formApproval:
		f.title = "New approval request"
		f.fields = []formField{
			newField("title", "Title", "required"),
			newField("description", "Description", ""),
			newField("item_type", "Item type", "domain|diagram|system"),
			newField("priority", "Priority", strings.Join(model.PriorityLevels(), "|")),
			newField("targets", "Targets", "comma-separated ids, required"),
		}
	}
	if len(f.fields) > 0 {
		f.fields[0].input.Focus()
	}
	return f
}

func (f form) value(key string) string {
	for _, fl := range f.fields {
		if fl.key == key {
			return strings.TrimSpace(fl.input.Value())
		}
	}
	return ""
}

func (f *form) move(delta int) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	f.fields[f.focus].input.Blur()
	f.focus = (f.focus + delta + len(f.fields)) % len(f.fields)
	return f.fields[f.focus].input.Focus()
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

func (f form) op() string {
	switch f.kind {
	case formDiagram:
		return catalog.OpCreateDiagram
	case formApproval:
		return catalog.OpCreateApproval
	default:
		return catalog.OpCreateDomain
	}
}

func (f form) domainRequest() model.CreateDomainRequest {
	return model.CreateDomainRequest{
		Name:          f.value("name"),
		Description:   f.value("description"),
		Category:      f.value("category"),
		Region:        f.value("region"),
		PriorityLevel: f.value("priority_level"),
	}
}

func (f form) diagramRequest() model.CreateDiagramRequest {
	return model.CreateDiagramRequest{
		Name:        f.value("name"),
		Type:        f.value("type"),
		Description: f.value("description"),
		Content:     f.value("content"),
	}
}

func (f form) approvalRequest() model.CreateApprovalRequest {
	var targets []string
	for _, t := range strings.Split(f.value("targets"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			targets = append(targets, t)
		}
	}
	return model.CreateApprovalRequest{
		Title:       f.value("title"),
		Description: f.value("description"),
		ItemType:    f.value("item_type"),
		Priority:    f.value("priority"),
		TargetIDs:   targets,
	}
}

func (f form) render(width int, saving bool, spin string) string {
	bodyW := modalBodyWidth(width)
	labelW := 12
	lines := make([]string, 0, len(f.fields)+4)
	for i, fl := range f.fields {
		label := lipgloss.NewStyle().Width(labelW).Render(fl.label)
		if i == f.focus {
			label = lipgloss.NewStyle().Width(labelW).Bold(true).Render(fl.label)
		}
		in := fl.input
		in.Width = bodyW - labelW - 4
		lines = append(lines, label+" "+in.View())
	}
	lines = append(lines, "")
	switch {
	case saving:
		lines = append(lines, spin+" Saving…")
	case f.err != "":
		lines = append(lines, styleError().Width(bodyW-2).Render(f.err))
	}
	lines = append(lines, styleMuted().Render("tab/shift+tab: field   enter: save   esc: cancel"))
	return renderModalBox(width, f.title, strings.Join(lines, "\n"))
}
