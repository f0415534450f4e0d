package textwrap

// Field holds the wrap geometry for one editable input box.
type Field struct {
	width  int
	buffer string
}

// NewField constructs a field wrapped to width.
func NewField(width int) *Field {
	return &Field{width: width}
}

// SetWidth sets the inner width of the field in cells.
func (f *Field) SetWidth(width int) {
	f.width = width
}

// Width returns the inner width of the field in cells.
func (f *Field) Width() int {
	return f.width
}

// SetBuffer replaces the text shown in the field.
func (f *Field) SetBuffer(buffer string) {
	f.buffer = buffer
}

// Buffer returns the text shown in the field.
func (f *Field) Buffer() string {
	return f.buffer
}

// Lines returns the wrapped display lines.
func (f *Field) Lines() []string {
	return Wrap(f.width, f.buffer)
}

// Cursor returns the caret position for the current buffer.
func (f *Field) Cursor() Position {
	return CursorPosition(f.width, f.buffer)
}
