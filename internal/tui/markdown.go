package tui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

type rendererKey struct {
	style string
	width int
}

var mdMu sync.Mutex

// WithAutoStyle queries the terminal and can block, so the style is picked
// from the background setting instead.
var mdCache = map[rendererKey]*glamour.TermRenderer{}

func markdownRenderer(style string, width int) (*glamour.TermRenderer, error) {
	mdMu.Lock()
	defer mdMu.Unlock()
	k := rendererKey{style: style, width: width}
	if r, ok := mdCache[k]; ok {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(glamour.WithStandardStyle(style), glamour.WithWordWrap(width))
	if err != nil {
		return nil, err
	}
	mdCache[k] = r
	return r, nil
}

// renderMarkdown renders a record's detail page. The plain source is returned
// when rendering fails.
func renderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	r, err := markdownRenderer(markdownStyle(), max(width, 10))
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}
