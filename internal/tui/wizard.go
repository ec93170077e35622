package tui

import (
	"context"
	"fmt"
	"strings"

	"catalog-cli/internal/catalog"
	"catalog-cli/internal/flow"
	"catalog-cli/internal/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// wizardState is the extraction wizard dialog: the flow controller plus one
// input per field of the two input steps.
type wizardState struct {
	w      *flow.ExtractionWizard
	source []formField
	system []formField
	focus  int
	err    string
}

func newWizardState(w *flow.ExtractionWizard) *wizardState {
	ws := &wizardState{
		w: w,
		source: []formField{
			newField("url", "Repository", "https://github.com/<owner>/<repo>"),
			newField("branch", "Branch", "main"),
		},
		system: []formField{
			newField("name", "System", "required"),
			newField("description", "Description", "required"),
			newField("domain", "Domain id", "optional"),
		},
	}
	ws.source[0].input.Focus()
	return ws
}

// fields are the inputs of the current step; pending and result steps have none.
func (ws *wizardState) fields() []formField {
	switch ws.w.Current().Name {
	case flow.StepSourceConfig:
		return ws.source
	case flow.StepSystemInfo:
		return ws.system
	}
	return nil
}

func (ws *wizardState) value(key string) string {
	for _, fl := range append(append([]formField{}, ws.source...), ws.system...) {
		if fl.key == key {
			return strings.TrimSpace(fl.input.Value())
		}
	}
	return ""
}

func (ws *wizardState) focusFirst() tea.Cmd {
	fs := ws.fields()
	for i := range fs {
		fs[i].input.Blur()
	}
	ws.focus = 0
	if len(fs) == 0 {
		return nil
	}
	return fs[0].input.Focus()
}

func (ws *wizardState) move(delta int) tea.Cmd {
	fs := ws.fields()
	if len(fs) == 0 {
		return nil
	}
	fs[ws.focus].input.Blur()
	ws.focus = (ws.focus + delta + len(fs)) % len(fs)
	return fs[ws.focus].input.Focus()
}

func (ws *wizardState) update(msg tea.Msg) tea.Cmd {
	fs := ws.fields()
	if len(fs) == 0 {
		return nil
	}
	var cmd tea.Cmd
	fs[ws.focus].input, cmd = fs[ws.focus].input.Update(msg)
	return cmd
}

// apply copies the inputs of the current step into the request.
func (ws *wizardState) apply() {
	switch ws.w.Current().Name {
	case flow.StepSourceConfig:
		ws.w.SetSource(ws.value("url"), ws.value("branch"))
	case flow.StepSystemInfo:
		ws.w.SetSystem(ws.value("name"), ws.value("description"), ws.value("domain"))
	}
}

func (ws *wizardState) toggleApproval() {
	strategy := model.ApprovalStrategyAuto
	if ws.w.Request().ApprovalStrategy == model.ApprovalStrategyAuto {
		strategy = model.ApprovalStrategyManual
	}
	ws.w.SetApprovalStrategy(strategy)
}

func (ws *wizardState) toggleOption(which string) {
	opts := ws.w.Request().Options
	switch which {
	case "code":
		opts.IncludeCode = !opts.IncludeCode
	case "docs":
		opts.IncludeDocs = !opts.IncludeDocs
	case "diagrams":
		opts.IncludeDiagrams = !opts.IncludeDiagrams
	}
	ws.w.SetOptions(opts)
}

// advance moves past the current input step. From system-info it starts the
// submit and returns the command that performs it.
func (ws *wizardState) advance(ctx context.Context) tea.Cmd {
	ws.apply()
	ws.err = ""
	switch ws.w.Current().Name {
	case flow.StepSourceConfig:
		if err := ws.w.Next(); err != nil {
			ws.err = catalog.BannerText(catalog.OpExtract, err)
			return nil
		}
		return ws.focusFirst()
	case flow.StepSystemInfo:
		if err := ws.w.Begin(); err != nil {
			ws.err = catalog.BannerText(catalog.OpExtract, err)
			return nil
		}
		w := ws.w
		return func() tea.Msg {
			_, err := w.Extract(ctx)
			return extractDoneMsg{err: err}
		}
	}
	return nil
}

func (ws *wizardState) render(width int, spin string) string {
	bodyW := modalBodyWidth(width)
	steps := ws.w.Steps()
	cur := ws.w.Index()

	crumbs := make([]string, 0, len(steps))
	for i, st := range steps {
		label := fmt.Sprintf("%d %s", i+1, st.Name)
		if i == cur {
			crumbs = append(crumbs, styleTabActive().Render(label))
		} else {
			crumbs = append(crumbs, styleTab().Render(label))
		}
	}
	lines := []string{lipgloss.JoinHorizontal(lipgloss.Top, crumbs...), ""}

	labelW := 12
	for i, fl := range ws.fields() {
		label := lipgloss.NewStyle().Width(labelW).Render(fl.label)
		if i == ws.focus {
			label = lipgloss.NewStyle().Width(labelW).Bold(true).Render(fl.label)
		}
		in := fl.input
		in.Width = bodyW - labelW - 4
		lines = append(lines, label+" "+in.View())
	}

	req := ws.w.Request()
	help := "tab: field   enter: next   esc: close"
	switch steps[cur].Name {
	case flow.StepSourceConfig:
		lines = append(lines, "",
			fmt.Sprintf("%s code  %s docs  %s diagrams", check(req.Options.IncludeCode), check(req.Options.IncludeDocs), check(req.Options.IncludeDiagrams)))
		help = "tab: field   ctrl+o/ctrl+d/ctrl+g: toggle code/docs/diagrams   enter: next   esc: close"
	case flow.StepSystemInfo:
		lines = append(lines, "", "Approval: "+string(req.ApprovalStrategy))
		help = "tab: field   ctrl+a: approval   enter: extract   esc: back"
	case flow.StepExtracting:
		lines = append(lines, spin+" Extracting "+req.Source.URL+"…")
		help = "please wait"
	case flow.StepResult:
		res := ws.w.Result()
		lines = append(lines, styleOK().Render("Extraction started"))
		if res.Message != "" {
			lines = append(lines, res.Message)
		}
		if res.ID != "" {
			lines = append(lines, styleMuted().Render("id "+res.ID))
		}
		help = "enter/esc: close"
	}

	if ws.err != "" {
		lines = append(lines, "", styleError().Width(bodyW-2).Render(ws.err))
	}
	lines = append(lines, "", styleMuted().Width(bodyW-2).Render(help))
	return renderModalBox(width, "Extract from source", strings.Join(lines, "\n"))
}

func check(b bool) string {
	if b {
		return "[x]"
	}
	return "[ ]"
}
