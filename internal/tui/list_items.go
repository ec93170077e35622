package tui

import (
	"fmt"
	"strings"

	"catalog-cli/internal/model"

	"github.com/charmbracelet/bubbles/list"
)

type domainItem struct{ d model.Domain }

func (i domainItem) FilterValue() string { return i.d.Name }
func (i domainItem) id() string          { return i.d.ID }
func (i domainItem) Title() string {
	return columns(
		col(i.d.Name, 28),
		col(dash(i.d.Category), 12),
		col(dash(i.d.Region), 6),
		col(dash(i.d.PriorityLevel), 9),
		i.d.Status.Label(),
	)
}

type diagramItem struct{ d model.Diagram }

func (i diagramItem) FilterValue() string { return i.d.Name }
func (i diagramItem) id() string          { return i.d.ID }
func (i diagramItem) Title() string {
	return columns(col(i.d.Name, 32), col(dash(i.d.Type), 13), i.d.Status.Label())
}

type approvalItem struct{ p model.PendingItem }

func (i approvalItem) FilterValue() string { return i.p.Title }
func (i approvalItem) id() string          { return i.p.ID }
func (i approvalItem) Title() string {
	return columns(col(i.p.Title, 36), col(dash(i.p.ItemType), 10), dash(i.p.Priority))
}

type identified interface{ id() string }

func col(s string, w int) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > w {
		return string(r[:w-1]) + "…"
	}
	return s + strings.Repeat(" ", w-len([]rune(s)))
}

func columns(cols ...string) string { return strings.Join(cols, "  ") }

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func newList(items []list.Item) list.Model {
	l := list.New(items, newCompactItemDelegate(), 0, 0)
	// The app renders its own header and footer.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	// Filtering is the view's job, not the list's.
	l.SetFilteringEnabled(false)
	l.KeyMap.Quit.SetKeys()
	l.KeyMap.ForceQuit.SetKeys()

	cursorUp := append([]string{}, l.KeyMap.CursorUp.Keys()...)
	l.KeyMap.CursorUp.SetKeys(append(cursorUp, "ctrl+p")...)
	cursorDown := append([]string{}, l.KeyMap.CursorDown.Keys()...)
	l.KeyMap.CursorDown.SetKeys(append(cursorDown, "ctrl+n")...)
	return l
}

// setListItems replaces the rows and keeps the cursor on the same record when it survives.
func setListItems(l *list.Model, items []list.Item) {
	cur := ""
	if it, ok := l.SelectedItem().(identified); ok {
		cur = it.id()
	}
	l.SetItems(items)
	if cur == "" {
		return
	}
	for i, it := range items {
		if x, ok := it.(identified); ok && x.id() == cur {
			l.Select(i)
			return
		}
	}
}

func domainMarkdown(d model.Domain) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", d.Name)
	if d.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", d.Description)
	}
	fmt.Fprintf(&b, "| Field | Value |\n|---|---|\n")
	for _, kv := range [][2]string{
		{"ID", d.ID},
		{"Category", d.Category},
		{"Region", d.Region},
		{"Priority", d.PriorityLevel},
		{"Status", d.Status.Label()},
		{"Owner", d.OwnerID},
		{"Updated", d.UpdatedAt},
	} {
		fmt.Fprintf(&b, "| %s | %s |\n", kv[0], dash(kv[1]))
	}
	return b.String()
}

func diagramMarkdown(d model.Diagram) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", d.Name)
	fmt.Fprintf(&b, "*%s* · %s · by %s\n\n", dash(d.Type), d.Status.Label(), dash(d.CreatedBy))
	if d.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", d.Description)
	}
	if d.Content != "" {
		fmt.Fprintf(&b, "```\n%s\n```\n", strings.TrimRight(d.Content, "\n"))
	}
	return b.String()
}

func approvalMarkdown(p model.PendingItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Title)
	fmt.Fprintf(&b, "**%s** · %s · priority %s\n\n", p.Status.Label(), dash(p.ItemType), dash(p.Priority))
	if p.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", p.Description)
	}
	if len(p.TargetIDs) > 0 {
		b.WriteString("Targets:\n\n")
		for _, id := range p.TargetIDs {
			fmt.Fprintf(&b, "- `%s`\n", id)
		}
	}
	return b.String()
}
