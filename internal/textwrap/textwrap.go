// Package textwrap reflows a flat text buffer into fixed-width display lines
// and locates the caret for an editable field.
package textwrap

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// separator joins words on one line and terminates every non-empty line.
const separator = " "

// Position is a caret location in terminal cells, relative to the field origin.
type Position struct {
	Col int
	Row int
}

// layout is the result of one greedy pass.
type layout struct {
	lines []string
	// lastWidth is the cell width of the last line's words joined by separators.
	lastWidth int
	words     int
}

// Wrap splits text on whitespace and greedily packs the words into lines no wider
// than width. Every line that holds words keeps one trailing separator. A single
// word wider than width is placed alone on its own line and never split. The
// result always holds at least one line; text without words yields [""].
//
// Wrap panics when width is not positive.
func Wrap(width int, text string) []string {
	return wrap(width, text).lines
}

// CursorPosition reports where the caret sits after the last word of text once it
// is wrapped to width. Row is always len(Wrap(width, text))-1. Col is one past the
// trailing separator of the last line, or 0 when that line already fills the width
// and the next keystroke starts a fresh line.
//
// CursorPosition panics when width is not positive.
func CursorPosition(width int, text string) Position {
	l := wrap(width, text)
	row := len(l.lines) - 1
	if l.words == 0 {
		return Position{Col: 0, Row: row}
	}
	col := l.lastWidth + ansi.StringWidth(separator)
	if col >= width {
		col = 0
	}
	return Position{Col: col, Row: row}
}

func wrap(width int, text string) layout {
	if width <= 0 {
		panic(fmt.Sprintf("textwrap: width must be positive, got %d", width))
	}

	sepWidth := ansi.StringWidth(separator)
	var (
		out          layout
		current      []string
		currentWidth int
	)
	for _, word := range strings.Fields(text) {
		wordWidth := ansi.StringWidth(word)
		if len(current) > 0 && currentWidth+sepWidth+wordWidth > width {
			out.lines = append(out.lines, strings.Join(current, separator)+separator)
			current = current[:0]
			currentWidth = 0
		}
		if len(current) > 0 {
			currentWidth += sepWidth
		}
		current = append(current, word)
		currentWidth += wordWidth
		out.words++
	}

	if len(current) == 0 {
		out.lines = append(out.lines, "")
		return out
	}
	out.lines = append(out.lines, strings.Join(current, separator)+separator)
	out.lastWidth = currentWidth
	return out
}
