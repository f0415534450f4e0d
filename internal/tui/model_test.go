package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/evanschultz/ideas/internal/app"
	"github.com/evanschultz/ideas/internal/domain"
	"github.com/evanschultz/ideas/internal/modal"
)

type fakeService struct {
	store        *app.Store
	storeErr     error
	persistErr   error
	indexErr     error
	persistCalls int
	indexCalls   int
	savedIndex   int
}

func newFakeService(ideas ...domain.Idea) *fakeService {
	return &fakeService{store: app.NewStore(ideas)}
}

func (f *fakeService) Store() (*app.Store, error) {
	if f.storeErr != nil {
		return nil, f.storeErr
	}
	return f.store, nil
}

func (f *fakeService) Persist(context.Context) error {
	f.persistCalls++
	return f.persistErr
}

func (f *fakeService) PersistActiveIndex(context.Context) error {
	f.indexCalls++
	if f.indexErr != nil {
		return f.indexErr
	}
	f.savedIndex = f.store.Active()
	return nil
}

type logEntry struct {
	level string
	msg   string
}

type fakeLogger struct {
	entries []logEntry
}

func (l *fakeLogger) Debug(msg string, _ ...any) {
	l.entries = append(l.entries, logEntry{level: "debug", msg: msg})
}

func (l *fakeLogger) Info(msg string, _ ...any) {
	l.entries = append(l.entries, logEntry{level: "info", msg: msg})
}

func (l *fakeLogger) Error(msg string, _ ...any) {
	l.entries = append(l.entries, logEntry{level: "error", msg: msg})
}

func (l *fakeLogger) has(level, fragment string) bool {
	for _, e := range l.entries {
		if e.level == level && strings.Contains(e.msg, fragment) {
			return true
		}
	}
	return false
}

func sampleIdeas() []domain.Idea {
	return []domain.Idea{
		domain.NewIdea("Garden planner", "Track **seeds** and watering"),
		domain.NewIdea("Bike rack", "Weld one from scrap"),
		domain.NewIdea("Recipe box", ""),
	}
}

// TestModelLoadsStore verifies the store is attached once loaded.
func TestModelLoadsStore(t *testing.T) {
	svc := newFakeService(sampleIdeas()...)
	m := loadReadyModel(t, NewModel(svc))
	if m.machine == nil || m.store != svc.store {
		t.Fatal("expected machine bound to the loaded store")
	}
	if m.machine.Mode() != modal.ModeRead {
		t.Fatalf("expected READ after load, got %s", m.machine.Mode())
	}
	out, _ := m.render()
	out = ansi.Strip(out)
	for _, want := range []string{"Ideas", "> Garden planner", "Bike rack", "Recipe box", "[READ]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in view, got\n%s", want, out)
		}
	}
}

// TestModelLoadErrorView verifies a failed load renders an error and q still quits.
func TestModelLoadErrorView(t *testing.T) {
	svc := newFakeService()
	svc.storeErr = app.ErrNotLoaded
	m := loadReadyModel(t, NewModel(svc))
	out, cursor := m.render()
	if !strings.Contains(out, "error:") || cursor.ok {
		t.Fatalf("expected error view without cursor, got %q", out)
	}

	_, cmd := m.Update(keyRune('q'))
	if cmd == nil {
		t.Fatal("expected quit cmd")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
	if svc.indexCalls != 0 {
		t.Fatalf("expected no index write without a store, got %d", svc.indexCalls)
	}
}

// TestModelLoadingView verifies the placeholder before the first window size.
func TestModelLoadingView(t *testing.T) {
	m := NewModel(newFakeService())
	out, _ := m.render()
	if out != "loading..." {
		t.Fatalf("expected loading view, got %q", out)
	}
	v := m.View()
	if v.Cursor != nil || !v.AltScreen {
		t.Fatal("expected alt screen view without cursor")
	}
}

// TestModelAddIdeaPersists verifies a committed draft is saved and announced.
func TestModelAddIdeaPersists(t *testing.T) {
	svc := newFakeService()
	logger := &fakeLogger{}
	m := loadReadyModel(t, NewModel(svc, WithLogger(logger)))

	m = applyMsg(t, m, keyRune('a'))
	m = typeText(t, m, "Hello")
	m = applyMsg(t, m, keyCode(tea.KeyTab))
	m = typeText(t, m, "World")
	m = applyMsg(t, m, keyCode(tea.KeyEnter))

	if svc.persistCalls != 1 {
		t.Fatalf("expected 1 persist call, got %d", svc.persistCalls)
	}
	idea, ok := svc.store.Idea(0)
	if !ok || idea.Title != "Hello" || idea.Description != "World" {
		t.Fatalf("unexpected stored idea %#v", idea)
	}
	if m.machine.Mode() != modal.ModeWrite || m.machine.Focus() != modal.FocusTitle {
		t.Fatalf("expected to stay in WRITE on title, got %s/%s", m.machine.Mode(), m.machine.Focus())
	}
	if m.status != "idea added" {
		t.Fatalf("unexpected status %q", m.status)
	}
	if !logger.has("info", "idea added") {
		t.Fatalf("expected info log, got %#v", logger.entries)
	}
}

// TestModelPersistFailureKeepsState verifies write failures surface without losing the idea.
func TestModelPersistFailureKeepsState(t *testing.T) {
	svc := newFakeService()
	svc.persistErr = errors.New("disk full")
	logger := &fakeLogger{}
	m := loadReadyModel(t, NewModel(svc, WithLogger(logger)))

	m = applyMsg(t, m, keyRune('i'))
	m = typeText(t, m, "Kept")
	m = applyMsg(t, m, keyCode(tea.KeyEnter))

	if svc.store.Len() != 1 {
		t.Fatalf("expected in-memory idea kept, got %d", svc.store.Len())
	}
	if !strings.Contains(m.status, "save failed: disk full") {
		t.Fatalf("unexpected status %q", m.status)
	}
	if !logger.has("error", "persist ideas failed") {
		t.Fatalf("expected error log, got %#v", logger.entries)
	}
	out, _ := m.render()
	if !strings.Contains(ansi.Strip(out), "save failed: disk full") {
		t.Fatal("expected status line in view")
	}
}

// TestModelLogsInputStateChanges verifies mode and focus transitions are logged at debug level.
func TestModelLogsInputStateChanges(t *testing.T) {
	logger := &fakeLogger{}
	m := loadReadyModel(t, NewModel(newFakeService(sampleIdeas()...), WithLogger(logger)))

	m = applyMsg(t, m, keyRune('j'))
	if logger.has("debug", "input state changed") {
		t.Fatalf("expected no transition log for navigation, got %#v", logger.entries)
	}
	m = applyMsg(t, m, keyRune('a'))
	m = typeText(t, m, "x")
	m = applyMsg(t, m, keyCode(tea.KeyTab))
	_ = applyMsg(t, m, keyCode(tea.KeyEscape))

	count := 0
	for _, e := range logger.entries {
		if e.level == "debug" && e.msg == "input state changed" {
			count++
		}
	}
	if count != 3 {
		t.Fatalf("expected 3 transition logs (enter write, tab, esc), got %d: %#v", count, logger.entries)
	}
}

// TestModelEditAndDelete verifies edit commits and delete both persist.
func TestModelEditAndDelete(t *testing.T) {
	svc := newFakeService(sampleIdeas()...)
	m := loadReadyModel(t, NewModel(svc))

	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune('e'))
	if m.machine.Mode() != modal.ModeEdit || m.machine.Title() != "Bike rack" {
		t.Fatalf("expected EDIT with loaded draft, got %s %q", m.machine.Mode(), m.machine.Title())
	}
	m = typeText(t, m, "s")
	m = applyMsg(t, m, keyCode(tea.KeyEnter))
	if idea, _ := svc.store.Idea(1); idea.Title != "Bike racks" {
		t.Fatalf("unexpected edited title %q", idea.Title)
	}
	if m.status != "idea updated" {
		t.Fatalf("unexpected status %q", m.status)
	}

	m = applyMsg(t, m, keyCode(tea.KeyEscape))
	m = applyMsg(t, m, keyRune('d'))
	if svc.store.Len() != 2 || svc.persistCalls != 2 {
		t.Fatalf("expected delete persisted, len=%d calls=%d", svc.store.Len(), svc.persistCalls)
	}
	if m.status != "idea deleted" {
		t.Fatalf("unexpected status %q", m.status)
	}
}

// TestModelQuitPersistsIndex verifies q writes the active index before quitting.
func TestModelQuitPersistsIndex(t *testing.T) {
	svc := newFakeService(sampleIdeas()...)
	m := loadReadyModel(t, NewModel(svc))
	m = applyMsg(t, m, keyCode(tea.KeyDown))
	m = applyMsg(t, m, keyCode(tea.KeyDown))

	_, cmd := m.Update(keyRune('q'))
	if cmd == nil {
		t.Fatal("expected quit cmd")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
	if svc.indexCalls != 1 || svc.savedIndex != 2 {
		t.Fatalf("expected index 2 saved once, got calls=%d index=%d", svc.indexCalls, svc.savedIndex)
	}
}

// TestModelQuitWithIndexFailure verifies a failed index write still quits.
func TestModelQuitWithIndexFailure(t *testing.T) {
	svc := newFakeService(sampleIdeas()...)
	svc.indexErr = errors.New("read-only")
	logger := &fakeLogger{}
	m := loadReadyModel(t, NewModel(svc, WithLogger(logger)))

	_, cmd := m.Update(keyRune('q'))
	if cmd == nil {
		t.Fatal("expected quit cmd")
	}
	if !logger.has("error", "persist active index failed") {
		t.Fatalf("expected error log, got %#v", logger.entries)
	}
}

// TestModelCtrlCQuitsFromAnyMode verifies ctrl+c quits while composing.
func TestModelCtrlCQuitsFromAnyMode(t *testing.T) {
	svc := newFakeService(sampleIdeas()...)
	m := loadReadyModel(t, NewModel(svc))
	m = applyMsg(t, m, keyRune('a'))
	m = typeText(t, m, "q")
	if m.machine.Title() != "q" {
		t.Fatalf("expected q typed into draft, got %q", m.machine.Title())
	}

	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected quit cmd")
	}
	if svc.indexCalls != 1 {
		t.Fatalf("expected index persisted on ctrl+c, got %d", svc.indexCalls)
	}
}

// TestTranslateKey verifies bubbletea key presses map onto machine keys.
func TestTranslateKey(t *testing.T) {
	cases := []struct {
		name string
		msg  tea.KeyPressMsg
		want modal.Key
		ok   bool
	}{
		{name: "rune", msg: keyRune('x'), want: modal.Rune('x'), ok: true},
		{name: "space", msg: tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}, want: modal.Rune(' '), ok: true},
		{name: "enter", msg: keyCode(tea.KeyEnter), want: modal.Key{Code: modal.KeyEnter}, ok: true},
		{name: "backspace", msg: keyCode(tea.KeyBackspace), want: modal.Key{Code: modal.KeyBackspace}, ok: true},
		{name: "tab", msg: keyCode(tea.KeyTab), want: modal.Key{Code: modal.KeyTab}, ok: true},
		{name: "shift tab", msg: tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift}, ok: false},
		{name: "esc", msg: keyCode(tea.KeyEscape), want: modal.Key{Code: modal.KeyEsc}, ok: true},
		{name: "up", msg: keyCode(tea.KeyUp), want: modal.Key{Code: modal.KeyUp}, ok: true},
		{name: "down", msg: keyCode(tea.KeyDown), want: modal.Key{Code: modal.KeyDown}, ok: true},
		{name: "left", msg: keyCode(tea.KeyLeft), want: modal.Key{Code: modal.KeyLeft}, ok: true},
		{name: "right", msg: keyCode(tea.KeyRight), want: modal.Key{Code: modal.KeyRight}, ok: true},
		{name: "ctrl rune", msg: tea.KeyPressMsg{Code: 'a', Mod: tea.ModCtrl}, ok: false},
		{name: "bare function key", msg: keyCode(tea.KeyF1), ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := translateKey(tc.msg)
			if ok != tc.ok {
				t.Fatalf("translateKey ok = %v, want %v", ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Fatalf("translateKey = %#v, want %#v", got, tc.want)
			}
		})
	}
}

// TestModelListRendering verifies selected and unselected idea rendering.
func TestModelListRendering(t *testing.T) {
	long := domain.NewIdea("An unusually long idea title that cannot fit", "")
	svc := newFakeService(domain.NewIdea("First", "plain *desc*"), long)
	m := NewModel(svc, WithUIConfig(UIConfig{ModalWidthPercent: 40, ModalHeightPercent: 40, MarkdownPreview: false}))
	m = applyMsg(t, applyCmd(t, m, m.Init()), tea.WindowSizeMsg{Width: 30, Height: 20})

	out, cursor := m.render()
	out = ansi.Strip(out)
	if cursor.ok {
		t.Fatal("expected no cursor in READ")
	}
	if !strings.Contains(out, "> First") || !strings.Contains(out, "plain *desc*") {
		t.Fatalf("expected selected idea with raw description, got\n%s", out)
	}
	if strings.Contains(out, "cannot fit") || !strings.Contains(out, "…") {
		t.Fatalf("expected unselected title truncated, got\n%s", out)
	}
	for _, want := range []string{"a/i", "new idea"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected help footer entry %q, got\n%s", want, out)
		}
	}
}

// TestModelMarkdownPreview verifies the active description goes through the markdown renderer.
func TestModelMarkdownPreview(t *testing.T) {
	svc := newFakeService(sampleIdeas()...)
	m := loadReadyModel(t, NewModel(svc))
	out, _ := m.render()
	out = ansi.Strip(out)
	if !strings.Contains(out, "seeds") {
		t.Fatalf("expected rendered description, got\n%s", out)
	}
	if strings.Contains(out, "**seeds**") {
		t.Fatalf("expected markdown emphasis rendered, got\n%s", out)
	}
}

// TestModelEmptyListView verifies the empty list hint.
func TestModelEmptyListView(t *testing.T) {
	m := loadReadyModel(t, NewModel(newFakeService()))
	out, _ := m.render()
	if !strings.Contains(ansi.Strip(out), "No ideas yet") {
		t.Fatalf("expected empty hint, got\n%s", out)
	}
}

// TestModelFormView verifies the form heading, button and focus cursor.
func TestModelFormView(t *testing.T) {
	svc := newFakeService(sampleIdeas()...)
	m := loadReadyModel(t, NewModel(svc, WithUIConfig(UIConfig{ModalWidthPercent: 40, ModalHeightPercent: 60, MarkdownPreview: true})))

	m = applyMsg(t, m, keyRune('a'))
	out, start := m.render()
	plain := ansi.Strip(out)
	for _, want := range []string{"New Idea", "Title", "Description", "+ Add Idea", "[WRITE]", "enter", "save"} {
		if !strings.Contains(plain, want) {
			t.Fatalf("expected %q in form view, got\n%s", want, plain)
		}
	}
	if !start.ok {
		t.Fatal("expected cursor while composing")
	}
	if v := m.View(); v.Cursor == nil {
		t.Fatal("expected view cursor while composing")
	}

	m = typeText(t, m, "Hello")
	_, c1 := m.render()
	m = typeText(t, m, " world")
	_, c2 := m.render()
	if c2.y != c1.y || c2.x-c1.x != 6 {
		t.Fatalf("expected cursor to advance by one word, got %+v -> %+v", c1, c2)
	}
	if c1.x-start.x != 6 {
		t.Fatalf("expected cursor after \"Hello \", got %+v from %+v", c1, start)
	}

	width := m.fieldWidth()
	m = typeText(t, m, " "+strings.Repeat("z", width-2))
	_, c3 := m.render()
	if c3.y != c2.y+1 {
		t.Fatalf("expected wrapped word on the next row, got %+v -> %+v", c2, c3)
	}

	m = applyMsg(t, m, keyCode(tea.KeyTab))
	_, c4 := m.render()
	if c4.y <= c3.y || c4.x != start.x {
		t.Fatalf("expected cursor at start of description box, got %+v", c4)
	}

	m = applyMsg(t, m, keyCode(tea.KeyTab))
	if m.machine.Focus() != modal.FocusAdd {
		t.Fatalf("expected Add focus, got %s", m.machine.Focus())
	}
	if _, c := m.render(); c.ok {
		t.Fatal("expected hidden cursor on the button")
	}
	if v := m.View(); v.Cursor != nil {
		t.Fatal("expected nil view cursor on the button")
	}
}

// TestModelComposeOverlayPlacement verifies the form is centered over a visible list
// and the terminal cursor lands right after the typed text.
func TestModelComposeOverlayPlacement(t *testing.T) {
	svc := newFakeService(sampleIdeas()...)
	m := loadReadyModel(t, NewModel(svc))

	m = applyMsg(t, m, keyRune('a'))
	m = typeText(t, m, "Hi")
	out, c := m.render()
	lines := strings.Split(ansi.Strip(out), "\n")
	if len(lines) != 40 {
		t.Fatalf("expected full-height view, got %d lines", len(lines))
	}
	for _, want := range []string{"[WRITE]", "Garden planner", "New Idea"} {
		if !strings.Contains(ansi.Strip(out), want) {
			t.Fatalf("expected %q visible while composing, got\n%s", want, ansi.Strip(out))
		}
	}
	if !strings.HasPrefix(lines[0], "ideas") {
		t.Fatalf("expected header on the first row, got %q", lines[0])
	}
	if c.x < 20 || c.y < 5 {
		t.Fatalf("expected cursor inside the centered form, got %+v", c)
	}
	row := []rune(lines[c.y])
	// "Hi " is the wrapped title line; the cursor sits after its trailing space.
	if got := string(row[c.x-3 : c.x-1]); got != "Hi" {
		t.Fatalf("expected typed text left of cursor, got %q in %q", got, lines[c.y])
	}
}

// TestOverlayOnContentKeepsBaseEdges verifies the base shows around the overlay.
func TestOverlayOnContentKeepsBaseEdges(t *testing.T) {
	base := strings.Join([]string{"0123456789", "abcdefghij", "ABCDEFGHIJ"}, "\n")
	out, x, y := overlayOnContent(base, "XX\nYY", 10, 4)
	if x != 4 || y != 1 {
		t.Fatalf("unexpected overlay origin (%d,%d)", x, y)
	}
	want := []string{"0123456789", "abcdXXghij", "ABCDYYGHIJ", ""}
	if got := strings.Split(out, "\n"); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected overlay %q", got)
	}
}

// TestModelEditCursorFollowsColumn verifies Edit places the cursor from the machine column.
func TestModelEditCursorFollowsColumn(t *testing.T) {
	svc := newFakeService(sampleIdeas()...)
	m := loadReadyModel(t, NewModel(svc))

	m = applyMsg(t, m, keyRune('e'))
	out, c1 := m.render()
	if !strings.Contains(ansi.Strip(out), "Edit Idea") {
		t.Fatalf("expected edit heading, got\n%s", ansi.Strip(out))
	}
	m = applyMsg(t, m, keyCode(tea.KeyLeft))
	_, c2 := m.render()
	if c2.x != c1.x-1 || c2.y != c1.y {
		t.Fatalf("expected cursor one cell left, got %+v -> %+v", c1, c2)
	}
	m = applyMsg(t, m, keyCode(tea.KeyRight))
	m = applyMsg(t, m, keyCode(tea.KeyRight))
	_, c3 := m.render()
	if c3.x != c1.x+1 {
		t.Fatalf("expected cursor one cell right of start, got %+v -> %+v", c1, c3)
	}
}

// TestColumnPosition verifies flat columns fold onto box rows.
func TestColumnPosition(t *testing.T) {
	if got := columnPosition(3, 10); got.Col != 3 || got.Row != 0 {
		t.Fatalf("unexpected position %+v", got)
	}
	if got := columnPosition(23, 10); got.Col != 3 || got.Row != 2 {
		t.Fatalf("unexpected position %+v", got)
	}
}

// TestFitLines verifies padding and truncation.
func TestFitLines(t *testing.T) {
	if got := fitLines("a\nb\nc", 2); got != "a\n…" {
		t.Fatalf("unexpected truncated lines %q", got)
	}
	if got := fitLines("a", 3); got != "a\n\n" {
		t.Fatalf("unexpected padded lines %q", got)
	}
	if got := fitLines("a", 0); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func loadReadyModel(t *testing.T, m Model) Model {
	t.Helper()
	return applyMsg(t, applyCmd(t, m, m.Init()), tea.WindowSizeMsg{Width: 120, Height: 40})
}

func applyMsg(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	out, ok := updated.(Model)
	if !ok {
		t.Fatalf("expected Model, got %T", updated)
	}
	return applyCmd(t, out, cmd)
}

func applyCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	out := m
	currentCmd := cmd
	for i := 0; i < 6 && currentCmd != nil; i++ {
		msg := currentCmd()
		updated, nextCmd := out.Update(msg)
		casted, ok := updated.(Model)
		if !ok {
			t.Fatalf("expected Model, got %T", updated)
		}
		out = casted
		currentCmd = nextCmd
	}
	return out
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		m = applyMsg(t, m, keyRune(r))
	}
	return m
}

func keyRune(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func keyCode(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}
