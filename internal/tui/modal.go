package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const maxModalW = 72

func modalBodyWidth(width int) int {
	w := width - 8
	if w > maxModalW {
		w = maxModalW
	}
	if w < 20 {
		w = 20
	}
	return w
}

// renderModalBox draws title and content on the modal surface. No borders:
// some terminals show artifacts when bordered components sit on a colored background.
func renderModalBox(width int, title, content string) string {
	bodyW := modalBodyWidth(width)
	header := lipgloss.NewStyle().
		Width(bodyW).
		Bold(true).
		Foreground(colorSurfaceFg).
		Background(colorControlBg).
		Padding(0, 1).
		Render(title)
	body := lipgloss.NewStyle().
		Width(bodyW).
		Foreground(colorSurfaceFg).
		Background(colorSurfaceBg).
		Padding(1, 1).
		Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

func renderConfirmModal(width int, title, body string) string {
	help := styleMuted().Render("y/enter: confirm   n/esc: cancel")
	return renderModalBox(width, title, strings.Join([]string{body, "", help}, "\n"))
}

// placeCentered puts a modal in the middle of the screen.
func placeCentered(width, height int, s string) string {
	if width <= 0 || height <= 0 {
		return s
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, s)
}
