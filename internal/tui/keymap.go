package tui

import (
	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"github.com/evanschultz/ideas/internal/modal"
)

// keyMap represents key map data used by this package.
type keyMap struct {
	forceQuit key.Binding

	quit     key.Binding
	moveUp   key.Binding
	moveDown key.Binding
	addIdea  key.Binding
	editIdea key.Binding
	delete   key.Binding

	commit      key.Binding
	erase       key.Binding
	nextField   key.Binding
	back        key.Binding
	cursorLeft  key.Binding
	cursorRight key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		forceQuit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),

		quit:     key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		moveUp:   key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "previous")),
		moveDown: key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "next")),
		addIdea:  key.NewBinding(key.WithKeys("a", "i"), key.WithHelp("a/i", "new idea")),
		editIdea: key.NewBinding(key.WithKeys("e", "c"), key.WithHelp("e/c", "edit idea")),
		delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),

		commit:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		erase:       key.NewBinding(key.WithKeys("backspace"), key.WithHelp("backspace", "erase")),
		nextField:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		back:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		cursorLeft:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "cursor left")),
		cursorRight: key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "cursor right")),
	}
}

// forMode returns the bindings valid in mode for the help footer.
func (k keyMap) forMode(mode modal.Mode) help.KeyMap {
	if mode.Composing() {
		return composeKeys{k}
	}
	return readKeys{k}
}

type readKeys struct{ keyMap }

// ShortHelp handles short help.
func (k readKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.addIdea, k.editIdea, k.delete, k.moveUp, k.moveDown, k.quit}
}

// FullHelp handles full help.
func (k readKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.addIdea, k.editIdea, k.delete},
		{k.moveUp, k.moveDown},
		{k.quit, k.forceQuit},
	}
}

type composeKeys struct{ keyMap }

// ShortHelp handles short help.
func (k composeKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.commit, k.nextField, k.erase, k.back}
}

// FullHelp handles full help.
func (k composeKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.commit, k.nextField, k.erase, k.back},
		{k.cursorLeft, k.cursorRight},
		{k.forceQuit},
	}
}
