package modal

import (
	"fmt"
	"unicode/utf8"

	"github.com/evanschultz/ideas/internal/domain"
)

// draft buffer slots.
const (
	slotTitle = iota
	slotDescription
)

// Store is the idea list the machine commits into.
type Store interface {
	Len() int
	Active() int
	Select(int)
	Idea(int) (domain.Idea, bool)
	Add(title, description string)
	Remove(int) error
	Update(index int, title, description string) error
}

// PersistTarget flags which persisted state must be rewritten after a key.
type PersistTarget uint8

const (
	PersistNone  PersistTarget = 0
	PersistIdeas PersistTarget = 1 << iota
	PersistIndex
)

// Effect describes the side effects the caller must carry out after Handle.
type Effect struct {
	Persist PersistTarget
	Quit    bool
}

// Persists reports whether target must be written.
func (e Effect) Persists(target PersistTarget) bool {
	return e.Persist&target != 0
}

// Machine owns the input mode, form focus, draft buffer and cosmetic cursor column.
type Machine struct {
	store  Store
	mode   Mode
	focus  Focus
	draft  [2]string
	cursor int
}

// New constructs a machine in ModeRead over store.
func New(store Store) *Machine {
	return &Machine{store: store, mode: ModeRead, focus: FocusNone}
}

// Mode returns the current mode.
func (m *Machine) Mode() Mode {
	return m.mode
}

// Focus returns the current focus.
func (m *Machine) Focus() Focus {
	return m.focus
}

// Title returns the title draft.
func (m *Machine) Title() string {
	return m.draft[slotTitle]
}

// Description returns the description draft.
func (m *Machine) Description() string {
	return m.draft[slotDescription]
}

// Cursor returns the cosmetic cursor column moved by typing and Left/Right.
func (m *Machine) Cursor() int {
	return m.cursor
}

// Handle applies one key press and reports the side effects to perform.
// Keys without a binding in the current mode are ignored.
func (m *Machine) Handle(k Key) (Effect, error) {
	switch m.mode {
	case ModeRead:
		return m.handleRead(k)
	case ModeWrite, ModeEdit:
		return m.handleCompose(k)
	default:
		return Effect{}, fmt.Errorf("handle key in mode %d: unknown mode", m.mode)
	}
}

func (m *Machine) handleRead(k Key) (Effect, error) {
	switch {
	case k.is('q'):
		return Effect{Quit: true, Persist: PersistIndex}, nil

	case k.is('d'):
		if m.store.Len() == 0 {
			return Effect{}, nil
		}
		if err := m.store.Remove(m.store.Active()); err != nil {
			return Effect{}, err
		}
		return Effect{Persist: PersistIdeas}, nil

	case k.Code == KeyUp, k.is('k'):
		if active := m.store.Active(); active > 0 {
			m.store.Select(active - 1)
		}

	case k.Code == KeyDown, k.is('j'):
		if active := m.store.Active(); active < m.store.Len()-1 {
			m.store.Select(active + 1)
		}

	case k.is('e'), k.is('c'):
		m.focus = FocusTitle
		if idea, ok := m.store.Idea(m.store.Active()); ok {
			m.draft[slotTitle] = idea.Title
			m.draft[slotDescription] = idea.Description
		}
		m.cursor = utf8.RuneCountInString(m.draft[slotTitle])
		m.mode = ModeEdit

	case k.is('a'), k.is('i'):
		m.mode = ModeWrite
		m.focus = FocusTitle
	}
	return Effect{}, nil
}

func (m *Machine) handleCompose(k Key) (Effect, error) {
	switch k.Code {
	case KeyRune:
		if slot, ok := m.focus.slot(); ok {
			m.draft[slot] += k.Text
			m.cursor += utf8.RuneCountInString(k.Text)
		}

	case KeyEnter:
		return m.commit()

	case KeyBackspace:
		if slot, ok := m.focus.slot(); ok && m.draft[slot] != "" {
			_, size := utf8.DecodeLastRuneInString(m.draft[slot])
			m.draft[slot] = m.draft[slot][:len(m.draft[slot])-size]
			m.cursor = max(0, m.cursor-1)
		}

	case KeyTab:
		m.cycleFocus()

	case KeyEsc:
		if m.mode == ModeEdit {
			m.clearDraft()
		}
		m.mode = ModeRead
		m.focus = FocusNone

	case KeyLeft:
		m.cursor = max(0, m.cursor-1)

	case KeyRight:
		m.cursor++
	}
	return Effect{}, nil
}

// commit turns the draft into a store mutation. The mode is left unchanged.
func (m *Machine) commit() (Effect, error) {
	title, description := m.draft[slotTitle], m.draft[slotDescription]
	switch m.mode {
	case ModeWrite:
		m.store.Add(title, description)
	case ModeEdit:
		if err := m.store.Update(m.store.Active(), title, description); err != nil {
			return Effect{}, err
		}
	}
	m.clearDraft()
	m.focus = FocusTitle
	return Effect{Persist: PersistIdeas}, nil
}

// cycleFocus moves Title -> Description -> Add -> Title. Leaving Title needs a non-blank title.
func (m *Machine) cycleFocus() {
	switch m.focus {
	case FocusTitle:
		if !domain.NewIdea(m.draft[slotTitle], "").HasTitle() {
			return
		}
		m.focus = FocusDescription
		m.cursor = utf8.RuneCountInString(m.draft[slotDescription])
	case FocusDescription:
		m.focus = FocusAdd
		m.cursor = utf8.RuneCountInString(m.draft[slotDescription])
	case FocusAdd:
		m.focus = FocusTitle
		m.cursor = utf8.RuneCountInString(m.draft[slotTitle])
	}
}

func (m *Machine) clearDraft() {
	m.draft = [2]string{}
	m.cursor = 0
}
