package modal

// KeyCode identifies a key independent of the terminal library.
type KeyCode int

const (
	KeyUnknown KeyCode = iota
	KeyRune
	KeyEnter
	KeyBackspace
	KeyTab
	KeyEsc
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
)

// Key is one press event. Text holds the printable characters for KeyRune.
type Key struct {
	Code KeyCode
	Text string
}

// Rune builds a printable key event.
func Rune(r rune) Key {
	return Key{Code: KeyRune, Text: string(r)}
}

// Text builds a printable key event carrying several characters, as produced by paste.
func Text(s string) Key {
	return Key{Code: KeyRune, Text: s}
}

// is reports whether k is the printable character r.
func (k Key) is(r rune) bool {
	return k.Code == KeyRune && k.Text == string(r)
}
