package tui

import (
	"context"
	"image/color"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/evanschultz/ideas/internal/app"
	"github.com/evanschultz/ideas/internal/modal"
	"github.com/evanschultz/ideas/internal/textwrap"
	"github.com/muesli/reflow/truncate"
)

// Service represents service data used by this package.
type Service interface {
	Store() (*app.Store, error)
	Persist(context.Context) error
	PersistActiveIndex(context.Context) error
}

// minModalWidth keeps the form usable on narrow terminals.
const minModalWidth = 24

// Model is the bubbletea model driving the idea list and its form.
type Model struct {
	svc     Service
	store   *app.Store
	machine *modal.Machine

	keys   keyMap
	help   help.Model
	md     *descriptionPreview
	ui     UIConfig
	logger Logger

	ready  bool
	width  int
	height int
	status string
	err    error
}

// loadedMsg carries the loaded store into Update.
type loadedMsg struct {
	store *app.Store
	err   error
}

// screenCursor is a terminal cursor position. ok is false when the cursor is hidden.
type screenCursor struct {
	x, y int
	ok   bool
}

// NewModel constructs a model over a loaded service.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		svc:    svc,
		status: "loading...",
		help:   h,
		keys:   newKeyMap(),
		md:     &descriptionPreview{},
		ui:     DefaultUIConfig(),
		logger: nopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.loadData
}

// Update applies one message. Persistence runs synchronously so writes keep key order.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.store = msg.store
		m.machine = modal.New(msg.store)
		m.status = "ready"
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	default:
		return m, nil
	}
}

// View handles view.
func (m Model) View() tea.View {
	content, cursor := m.render()
	v := tea.NewView(content)
	v.AltScreen = true
	if cursor.ok {
		v.Cursor = tea.NewCursor(cursor.x, cursor.y)
	}
	return v
}

// loadData loads required data for the current operation.
func (m Model) loadData() tea.Msg {
	store, err := m.svc.Store()
	return loadedMsg{store: store, err: err}
}

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.forceQuit) {
		return m.quit()
	}
	if m.machine == nil {
		if msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil
	}

	k, ok := translateKey(msg)
	if !ok {
		return m, nil
	}
	before, beforeFocus := m.machine.Mode(), m.machine.Focus()
	effect, err := m.machine.Handle(k)
	if err != nil {
		m.status = err.Error()
		m.logger.Error("apply key failed", "key", msg.String(), "mode", before.String(), "err", err)
		return m, nil
	}
	if after, afterFocus := m.machine.Mode(), m.machine.Focus(); after != before || afterFocus != beforeFocus {
		m.logger.Debug("input state changed",
			"key", msg.String(),
			"mode", before.String()+"->"+after.String(),
			"focus", beforeFocus.String()+"->"+afterFocus.String(),
		)
	}

	if effect.Persists(modal.PersistIdeas) {
		if err := m.svc.Persist(context.Background()); err != nil {
			m.status = "save failed: " + err.Error()
			m.logger.Error("persist ideas failed", "err", err)
		} else {
			m.status = commitStatus(before)
			m.logger.Info(m.status, "ideas", m.store.Len(), "active", m.store.Active())
		}
	}
	if effect.Quit {
		return m.quit()
	}
	return m, nil
}

// quit writes the active index and stops the program. A failed write is logged
// and does not block quitting.
func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.machine != nil {
		if err := m.svc.PersistActiveIndex(context.Background()); err != nil {
			m.status = "save index failed: " + err.Error()
			m.logger.Error("persist active index failed", "err", err)
		}
	}
	return m, tea.Quit
}

func commitStatus(mode modal.Mode) string {
	switch mode {
	case modal.ModeWrite:
		return "idea added"
	case modal.ModeEdit:
		return "idea updated"
	default:
		return "idea deleted"
	}
}

// translateKey maps a bubbletea key press onto the machine's key set.
func translateKey(msg tea.KeyPressMsg) (modal.Key, bool) {
	switch msg.Code {
	case tea.KeyEnter:
		return modal.Key{Code: modal.KeyEnter}, true
	case tea.KeyBackspace:
		return modal.Key{Code: modal.KeyBackspace}, true
	case tea.KeyTab:
		if msg.Mod != 0 {
			return modal.Key{}, false
		}
		return modal.Key{Code: modal.KeyTab}, true
	case tea.KeyEscape:
		return modal.Key{Code: modal.KeyEsc}, true
	case tea.KeyUp:
		return modal.Key{Code: modal.KeyUp}, true
	case tea.KeyDown:
		return modal.Key{Code: modal.KeyDown}, true
	case tea.KeyLeft:
		return modal.Key{Code: modal.KeyLeft}, true
	case tea.KeyRight:
		return modal.Key{Code: modal.KeyRight}, true
	}
	if msg.Text != "" && msg.Mod&(tea.ModCtrl|tea.ModAlt) == 0 {
		return modal.Text(msg.Text), true
	}
	return modal.Key{}, false
}

// render builds the screen and the terminal cursor position.
func (m Model) render() (string, screenCursor) {
	if m.err != nil {
		return "error: " + m.err.Error() + "\n\npress q to quit\n", screenCursor{}
	}
	if !m.ready || m.machine == nil {
		return "loading...", screenCursor{}
	}

	accent := lipgloss.Color("62")
	selected := lipgloss.Color("42")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)

	mode := m.machine.Mode()
	sections := []string{
		titleStyle.Render("ideas") + statusStyle.Render("  ["+mode.String()+"]"),
		m.renderList(accent, selected, muted, max(minModalWidth, m.width)),
	}
	if status := m.statusText(); status != "" {
		sections = append(sections, statusStyle.Render(status))
	}
	content := strings.Join(sections, "\n")

	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys.forMode(mode)))

	if m.height > 0 {
		content = fitLines(content, max(0, m.height-lipgloss.Height(helpLine)))
	}
	fullContent := content + "\n" + helpLine
	if !mode.Composing() {
		return fullContent, screenCursor{}
	}

	overlay, cursor := m.renderForm(accent, muted, dim, statusStyle)
	overlayHeight := lipgloss.Height(fullContent)
	if m.height > 0 {
		overlayHeight = m.height
	}
	fullContent, x, y := overlayOnContent(fullContent, overlay, max(1, m.width), max(1, overlayHeight))
	if cursor.ok {
		cursor.x += x
		cursor.y += y
	}
	return fullContent, cursor
}

// statusText returns the status worth showing, or "" while idle.
func (m Model) statusText() string {
	if strings.TrimSpace(m.status) == "" || m.status == "ready" {
		return ""
	}
	return m.status
}

// renderList draws the framed idea list. Only the active idea shows its description.
func (m Model) renderList(accent, selected, muted color.Color, width int) string {
	inner := max(1, width-4)
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	selectedStyle := lipgloss.NewStyle().Bold(true).Foreground(selected)
	mutedStyle := lipgloss.NewStyle().Foreground(muted)

	lines := []string{headerStyle.Render("Ideas"), ""}
	ideas := m.store.Ideas()
	if len(ideas) == 0 {
		lines = append(lines, mutedStyle.Render("No ideas yet. Press a to add one."))
	}
	active := m.store.Active()
	for i, idea := range ideas {
		if i != active {
			lines = append(lines, "  "+truncate.StringWithTail(idea.Title, uint(max(1, inner-2)), "…"))
			continue
		}
		for j, line := range textwrap.Wrap(max(1, inner-2), idea.Title) {
			prefix := "  "
			if j == 0 {
				prefix = "> "
			}
			lines = append(lines, selectedStyle.Render(prefix+strings.TrimRight(line, " ")))
		}
		if desc := m.renderDescription(idea.Description, inner-2); desc != "" {
			for _, line := range strings.Split(desc, "\n") {
				lines = append(lines, "  "+line)
			}
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Width(width).
		Render(strings.Join(lines, "\n"))
}

func (m Model) renderDescription(description string, width int) string {
	if strings.TrimSpace(description) == "" {
		return ""
	}
	width = max(1, width)
	if m.ui.MarkdownPreview && m.md != nil {
		return m.md.render(description, width)
	}
	return plainPreview(description, width)
}

// fieldWidth returns the inner width of the form's input boxes.
func (m Model) fieldWidth() int {
	modalWidth := max(minModalWidth, m.width*m.ui.ModalWidthPercent/100)
	if m.width > 0 {
		modalWidth = min(modalWidth, m.width)
	}
	// outer border and padding, then the box border
	return max(1, modalWidth-6)
}

// renderForm draws the Write/Edit form and the cursor relative to its top-left cell.
// The status line sits under the button so commit results stay visible while composing.
func (m Model) renderForm(accent, muted, dim color.Color, statusStyle lipgloss.Style) (string, screenCursor) {
	width := m.fieldWidth()
	mode := m.machine.Mode()
	focus := m.machine.Focus()

	title := textwrap.NewField(width)
	title.SetBuffer(m.machine.Title())
	description := textwrap.NewField(width)
	description.SetBuffer(m.machine.Description())

	titleLines := title.Lines()
	descLines := description.Lines()
	// heading, labels, box borders, spacer and button
	const chromeRows = 12
	descRows := max(3, len(descLines), m.height*m.ui.ModalHeightPercent/100-chromeRows-len(titleLines))

	heading, button := "New Idea", "+ Add Idea"
	if mode == modal.ModeEdit {
		heading, button = "Edit Idea", "Edit Idea"
	}
	headingStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	labelStyle := lipgloss.NewStyle().Foreground(muted)
	buttonStyle := lipgloss.NewStyle().Foreground(muted).Padding(0, 1)
	if focus == modal.FocusAdd {
		buttonStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(accent).Padding(0, 1)
	}
	borderFor := func(f modal.Focus) color.Color {
		if focus == f {
			return accent
		}
		return dim
	}

	var (
		sections []string
		row      int
		titleRow int
		descRow  int
	)
	add := func(s string) {
		sections = append(sections, s)
		row += lipgloss.Height(s)
	}
	add(headingStyle.Render(heading))
	add("")
	add(labelStyle.Render("Title"))
	titleRow = row
	add(renderFieldBox(titleLines, width, len(titleLines), borderFor(modal.FocusTitle)))
	add(labelStyle.Render("Description"))
	descRow = row
	add(renderFieldBox(descLines, width, descRows, borderFor(modal.FocusDescription)))
	add("")
	add(buttonStyle.Render(button))
	if status := m.statusText(); status != "" {
		add(statusStyle.Render(ansi.Truncate(status, width+2, "…")))
	}

	form := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Render(strings.Join(sections, "\n"))

	var (
		pos     textwrap.Position
		boxRow  int
		maxRows int
	)
	switch focus {
	case modal.FocusTitle:
		pos, boxRow, maxRows = title.Cursor(), titleRow, len(titleLines)
		if mode == modal.ModeEdit {
			pos = columnPosition(m.machine.Cursor(), width)
		}
	case modal.FocusDescription:
		pos, boxRow, maxRows = description.Cursor(), descRow, descRows
		if mode == modal.ModeEdit {
			pos = columnPosition(m.machine.Cursor(), width)
		}
	default:
		return form, screenCursor{}
	}
	pos.Row = min(pos.Row, maxRows-1)

	// form border and padding, then the box border
	return form, screenCursor{
		x:  3 + pos.Col,
		y:  2 + boxRow + pos.Row,
		ok: true,
	}
}

// columnPosition folds a flat column onto rows of width cells.
func columnPosition(col, width int) textwrap.Position {
	return textwrap.Position{Col: col % width, Row: col / width}
}

// renderFieldBox frames lines padded to width cells and at least rows lines.
func renderFieldBox(lines []string, width, rows int, border color.Color) string {
	padded := make([]string, 0, max(rows, len(lines)))
	for _, line := range lines {
		if ansi.StringWidth(line) > width {
			line = ansi.Truncate(line, width, "")
		}
		padded = append(padded, line+strings.Repeat(" ", width-ansi.StringWidth(line)))
	}
	for len(padded) < rows {
		padded = append(padded, strings.Repeat(" ", width))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Render(strings.Join(padded, "\n"))
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent centers overlay over base and returns the overlay's top-left cell.
// Each overlay row is spliced between the cut edges of the base row beneath it.
func overlayOnContent(base, overlay string, width, height int) (string, int, int) {
	baseLines := strings.Split(fitLines(base, height), "\n")
	overlayLines := strings.Split(overlay, "\n")
	overlayWidth := lipgloss.Width(overlay)
	x := max(0, (width-overlayWidth)/2)
	y := max(0, (height-len(overlayLines))/2)

	for i, line := range overlayLines {
		row := y + i
		if row >= len(baseLines) {
			break
		}
		under := baseLines[row]
		if gap := x + overlayWidth - ansi.StringWidth(under); gap > 0 {
			under += strings.Repeat(" ", gap)
		}
		if pad := overlayWidth - ansi.StringWidth(line); pad > 0 {
			line += strings.Repeat(" ", pad)
		}
		spliced := ansi.Cut(under, 0, x) + line + ansi.Cut(under, x+overlayWidth, width)
		baseLines[row] = ansi.Truncate(spliced, width, "")
	}
	return strings.Join(baseLines, "\n"), x, y
}
