package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"
	"github.com/evanschultz/ideas/internal/textwrap"
)

// previewKey identifies one rendered description.
type previewKey struct {
	description string
	width       int
}

// descriptionPreview renders idea descriptions as markdown for the list. The
// glamour renderer is rebuilt on width changes; the last output is cached
// because the list redraws on every key press while the selection rarely moves.
type descriptionPreview struct {
	width    int
	renderer *glamour.TermRenderer

	last     previewKey
	rendered string
}

// render returns description as styled lines no wider than width cells.
// When glamour fails the description falls back to the plain word wrap.
func (p *descriptionPreview) render(description string, width int) string {
	description = strings.TrimSpace(description)
	if description == "" {
		return ""
	}
	width = max(1, width)
	key := previewKey{description: description, width: width}
	if p.rendered != "" && p.last == key {
		return p.rendered
	}

	out, ok := p.glamour(description, width)
	if !ok {
		out = plainPreview(description, width)
	}
	p.last, p.rendered = key, out
	return out
}

func (p *descriptionPreview) glamour(description string, width int) (string, bool) {
	if p.renderer == nil || p.width != width {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "", false
		}
		p.renderer = renderer
		p.width = width
	}
	rendered, err := p.renderer.Render(description)
	if err != nil {
		return "", false
	}

	// glamour pads to its wrap width and adds a document margin; clip to the list column.
	lines := strings.Split(strings.Trim(rendered, "\n"), "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, " ")
		if ansi.StringWidth(line) > width {
			line = ansi.Truncate(line, width, "")
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n"), true
}

func plainPreview(description string, width int) string {
	lines := textwrap.Wrap(width, description)
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.Join(lines, "\n")
}
