// Package textedit implements the in-canvas text buffer: cursor movement,
// insertion and deletion, and the blinking caret.
package textedit

import (
	"image/color"
	"strings"
	"time"

	"snaptrace/src/annotation"
	"snaptrace/src/geometry"
)

// BlinkInterval is how often the caret toggles visibility.
const BlinkInterval = 500 * time.Millisecond

// NewItem is the Editing value for a session that will create a new text
// item on commit.
const NewItem = -1

// Session is one open text edit. Cursor is a code-point offset into Buffer.
type Session struct {
	Buffer   []rune
	Cursor   int
	Visible  bool
	Editing  int
	Pos      geometry.Point
	FontSize float64
	Color    color.NRGBA
}

// Start opens a session for a new item at pos.
func Start(pos geometry.Point, size float64, c color.NRGBA) *Session {
	return &Session{Editing: NewItem, Pos: pos, FontSize: size, Color: c, Visible: true}
}

// Edit opens a session preloaded with an existing item's text and the cursor
// at the end.
func Edit(index int, t annotation.TextItem) *Session {
	buf := []rune(t.Text)
	return &Session{
		Buffer:   buf,
		Cursor:   len(buf),
		Editing:  index,
		Pos:      t.Pos,
		FontSize: t.FontSize,
		Color:    t.Color,
		Visible:  true,
	}
}

func (s *Session) Text() string { return string(s.Buffer) }

// Item is the text item the session would commit.
func (s *Session) Item() annotation.TextItem {
	return annotation.TextItem{Text: s.Text(), Pos: s.Pos, Color: s.Color, FontSize: s.FontSize}
}

// IsNew reports whether commit appends rather than overwrites.
func (s *Session) IsNew() bool { return s.Editing == NewItem }

// Committable reports whether the buffer holds anything besides whitespace.
func (s *Session) Committable() bool {
	return strings.TrimSpace(string(s.Buffer)) != ""
}

func (s *Session) Insert(r ...rune) {
	tail := append([]rune(nil), s.Buffer[s.Cursor:]...)
	s.Buffer = append(append(s.Buffer[:s.Cursor], r...), tail...)
	s.Cursor += len(r)
	s.Visible = true
}

func (s *Session) InsertString(text string) { s.Insert([]rune(text)...) }

// Newline embeds a line break at the cursor.
func (s *Session) Newline() { s.Insert('\n') }

// Backspace removes the rune before the cursor.
func (s *Session) Backspace() {
	if s.Cursor == 0 {
		return
	}
	s.Buffer = append(s.Buffer[:s.Cursor-1], s.Buffer[s.Cursor:]...)
	s.Cursor--
	s.Visible = true
}

// Delete removes the rune under the cursor.
func (s *Session) Delete() {
	if s.Cursor >= len(s.Buffer) {
		return
	}
	s.Buffer = append(s.Buffer[:s.Cursor], s.Buffer[s.Cursor+1:]...)
	s.Visible = true
}

func (s *Session) Left() {
	if s.Cursor > 0 {
		s.Cursor--
	}
	s.Visible = true
}

func (s *Session) Right() {
	if s.Cursor < len(s.Buffer) {
		s.Cursor++
	}
	s.Visible = true
}

func (s *Session) Home() {
	s.Cursor = 0
	s.Visible = true
}

func (s *Session) End() {
	s.Cursor = len(s.Buffer)
	s.Visible = true
}

// Blink toggles caret visibility; call every BlinkInterval.
func (s *Session) Blink() { s.Visible = !s.Visible }

// CaretLine returns the line index containing the cursor and the text on that
// line before the cursor, for positioning the caret.
func (s *Session) CaretLine() (int, string) {
	line := 0
	start := 0
	for i := 0; i < s.Cursor; i++ {
		if s.Buffer[i] == '\n' {
			line++
			start = i + 1
		}
	}
	return line, string(s.Buffer[start:s.Cursor])
}
