// Package modal routes key events through the Read/Write/Edit input modes and
// the focus cycle of the idea form.
package modal

// Mode represents the top-level interaction state.
type Mode int

const (
	// ModeRead is the initial browsing mode.
	ModeRead Mode = iota
	// ModeWrite composes a new idea.
	ModeWrite
	// ModeEdit rewrites the selected idea.
	ModeEdit
)

// String returns the human-readable mode name.
func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "READ"
	case ModeWrite:
		return "WRITE"
	case ModeEdit:
		return "EDIT"
	default:
		return "UNKNOWN"
	}
}

// Composing reports whether the mode edits the draft buffer.
func (m Mode) Composing() bool {
	return m == ModeWrite || m == ModeEdit
}

// Focus is the form target receiving keystrokes. FocusNone only occurs in ModeRead.
type Focus int

const (
	FocusNone Focus = iota
	FocusTitle
	FocusDescription
	FocusAdd
)

// String returns the human-readable focus name.
func (f Focus) String() string {
	switch f {
	case FocusNone:
		return "none"
	case FocusTitle:
		return "title"
	case FocusDescription:
		return "description"
	case FocusAdd:
		return "add"
	default:
		return "unknown"
	}
}

// slot maps a text focus onto its draft buffer index.
func (f Focus) slot() (int, bool) {
	switch f {
	case FocusTitle:
		return slotTitle, true
	case FocusDescription:
		return slotDescription, true
	default:
		return 0, false
	}
}
