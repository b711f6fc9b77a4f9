package engine

import (
	"math"
	"unicode"

	"snaptrace/src/annotation"
	"snaptrace/src/geometry"
	"snaptrace/src/hittest"
	"snaptrace/src/textedit"
)

// Button is a pointer button.
type Button int

const (
	Primary Button = iota
	Secondary
	Middle
)

// Mods is a set of held modifier keys.
type Mods uint8

const (
	ModCtrl Mods = 1 << iota
	ModShift
)

func (m Mods) Ctrl() bool  { return m&ModCtrl != 0 }
func (m Mods) Shift() bool { return m&ModShift != 0 }

// Key is a non-printable key, or KeyRune for a character.
type Key int

const (
	KeyRune Key = iota
	KeyEnter
	KeyEscape
	KeyBackspace
	KeyDelete
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
)

var toolKeys = map[rune]Tool{
	'r': ToolRectangle,
	'c': ToolCircle,
	'a': ToolArrow,
	'l': ToolLine,
	'p': ToolPencil,
	't': ToolText,
	'e': ToolEraser,
	'n': ToolCounter,
}

// PointerDown handles a button press at screen point s. Presses during a live
// gesture are ignored.
func (e *Engine) PointerDown(b Button, s geometry.Point, _ Mods) {
	if e.g.kind != gestureIdle {
		return
	}
	d := e.vp.ToDocument(s)
	switch b {
	case Middle:
		e.g = gestureState{kind: gesturePanning, button: b, screen: s, last: s}
	case Secondary:
		e.rightPress(s, d)
	case Primary:
		e.primaryPress(s, d)
	}
}

func (e *Engine) rightPress(s, d geometry.Point) {
	hit := hittest.Test(e.store, d, e.vp, e.measurer)
	if !hit.OK() {
		e.selected = nil
	} else {
		e.selectRef(hit.Ref)
	}
	e.g = gestureState{kind: gestureRightPending, button: Secondary, press: d, screen: s}
}

func (e *Engine) primaryPress(s, d geometry.Point) {
	switch e.tool {
	case ToolCounter:
		e.store.AddCounter(d, e.color, e.width)
		e.commit()
	case ToolEraser:
		e.g = gestureState{kind: gestureErasing, button: Primary, press: d, screen: s}
		e.eraseAt(d)
	case ToolText:
		switch {
		case e.typing != nil:
			e.finishTyping()
		case !e.armed:
			e.armed = true
		default:
			e.selected = nil
			e.typing = textedit.Start(d, newTextSize(e.width), e.color)
		}
	default:
		if e.selected != nil {
			hit := hittest.Selected(e.store, *e.selected, d, e.vp, e.measurer)
			switch hit.Part {
			case hittest.Handle:
				e.g = gestureState{kind: gestureResizing, button: Primary, press: d, screen: s,
					corner: hit.Corner, orig: e.captureOriginal(hit.Ref)}
				return
			case hittest.Body:
				e.g = gestureState{kind: gestureMoving, button: Primary, press: d, screen: s,
					orig: e.captureOriginal(hit.Ref)}
				return
			}
		}
		e.selected = nil
		e.g = gestureState{kind: gestureDrawing, button: Primary, press: d, screen: s}
		if e.tool == ToolPencil {
			e.g.draft = []geometry.Point{d}
		} else {
			e.g.draft = []geometry.Point{d, d}
		}
	}
}

// newTextSize is the font size of text typed with the text tool.
func newTextSize(width float64) float64 { return math.Max(8, width+8) }

// PointerMove handles pointer motion with any button held.
func (e *Engine) PointerMove(s geometry.Point, _ Mods) {
	d := e.vp.ToDocument(s)
	switch e.g.kind {
	case gesturePanning:
		e.vp.PanBy(s.Sub(e.g.last))
		e.g.last = s
	case gestureDrawing:
		if e.tool == ToolPencil {
			e.g.draft = append(e.g.draft, d)
		} else {
			e.g.draft[1] = d
		}
	case gestureErasing:
		e.eraseAt(d)
	case gestureResizing:
		e.resizeTo(e.g.orig, e.g.corner, d)
	case gestureMoving, gestureRightMoving:
		e.moveTo(e.g.orig, d.Sub(e.g.press))
	case gestureRightPending:
		if e.selected == nil || s.Manhattan(e.g.screen) <= DragThreshold {
			return
		}
		ref := *e.selected
		if e.typing != nil && !(ref.List == annotation.Texts && e.typing.Editing == ref.Index) {
			e.typing = nil
			e.armed = false
		}
		e.g.kind = gestureRightMoving
		e.g.orig = e.captureOriginal(ref)
		e.moveTo(e.g.orig, d.Sub(e.g.press))
	}
}

// PointerUp finishes the gesture started by button b.
func (e *Engine) PointerUp(b Button, s geometry.Point, _ Mods) {
	if e.g.kind == gestureIdle || e.g.button != b {
		return
	}
	g := e.g
	e.g = gestureState{}
	switch g.kind {
	case gestureDrawing:
		e.finishDrawing(g.draft)
	case gestureResizing, gestureMoving, gestureRightMoving:
		if e.moved(g.orig) {
			e.commit()
		}
	case gestureRightPending:
		e.rightClick()
	}
}

func (e *Engine) finishDrawing(draft []geometry.Point) {
	kind, ok := e.tool.shapeKind()
	if !ok {
		return
	}
	if kind == annotation.Pencil {
		if len(draft) < 2 {
			return
		}
	} else if draft[0] == draft[1] {
		return
	}
	e.store.AddShape(annotation.Shape{Kind: kind, Color: e.color, Width: e.width, Points: draft})
	e.commit()
}

// rightClick opens the selected text for editing when the text tool is
// active.
func (e *Engine) rightClick() {
	if e.tool != ToolText || e.selected == nil || e.selected.List != annotation.Texts {
		return
	}
	if e.typing != nil && !e.typing.IsNew() && e.typing.Editing == e.selected.Index {
		return
	}
	e.finishTyping()
	if e.selected == nil {
		return
	}
	idx := e.selected.Index
	e.typing = textedit.Edit(idx, e.store.Text(idx))
}

// Scroll zooms around s with Ctrl held, otherwise pans by delta.
func (e *Engine) Scroll(s, delta geometry.Point, m Mods) {
	if !m.Ctrl() {
		e.vp.PanBy(delta)
		return
	}
	switch {
	case delta.Y > 0:
		e.vp.ZoomAt(s, ZoomInStep)
	case delta.Y < 0:
		e.vp.ZoomAt(s, ZoomOutStep)
	}
}

// KeyPress handles a key; r is the character for KeyRune. It reports whether
// the key was consumed.
func (e *Engine) KeyPress(k Key, r rune, m Mods) bool {
	if e.typing != nil {
		return e.typingKey(k, r, m)
	}
	switch k {
	case KeyEscape:
		if e.g.kind != gestureIdle {
			e.abortGesture()
		} else {
			e.selected = nil
		}
		return true
	case KeyDelete:
		return e.DeleteSelected()
	case KeyRune:
		lr := unicode.ToLower(r)
		if m.Ctrl() {
			switch lr {
			case 'z':
				e.Undo()
				return true
			case 'y':
				e.Redo()
				return true
			}
			return false
		}
		if t, ok := toolKeys[lr]; ok {
			e.SetTool(t)
			return true
		}
	}
	return false
}

func (e *Engine) typingKey(k Key, r rune, m Mods) bool {
	s := e.typing
	switch k {
	case KeyRune:
		if m.Ctrl() || !unicode.IsPrint(r) {
			return false
		}
		s.Insert(r)
	case KeyEnter:
		if m.Shift() {
			s.Newline()
		} else {
			e.finishTyping()
		}
	case KeyEscape:
		e.cancelTyping()
	case KeyBackspace:
		s.Backspace()
	case KeyDelete:
		s.Delete()
	case KeyLeft:
		s.Left()
	case KeyRight:
		s.Right()
	case KeyHome:
		s.Home()
	case KeyEnd:
		s.End()
	default:
		return false
	}
	return true
}

// FocusLost saves an open text session and drops any live gesture.
func (e *Engine) FocusLost() {
	e.abortGesture()
	e.finishTyping()
}

// Cancel abandons the live gesture, or the text session when no gesture is
// active. Nothing is committed.
func (e *Engine) Cancel() {
	if e.g.kind != gestureIdle {
		e.abortGesture()
		return
	}
	e.cancelTyping()
}

// BlinkTick toggles the caret; the host calls it every
// textedit.BlinkInterval. It reports whether a redraw is needed.
func (e *Engine) BlinkTick() bool {
	if e.typing == nil {
		return false
	}
	e.typing.Blink()
	return true
}

// Typing returns the open text session.
func (e *Engine) Typing() (*textedit.Session, bool) {
	return e.typing, e.typing != nil
}

// finishTyping commits the open session if it has content and disarms the
// text tool. Emptying an existing item removes it.
func (e *Engine) finishTyping() {
	s := e.typing
	if s == nil {
		return
	}
	e.typing = nil
	e.armed = false
	switch {
	case s.IsNew() && s.Committable():
		e.store.AddText(s.Item())
	case s.IsNew():
		return
	case s.Editing >= e.store.Len(annotation.Texts):
		return
	case s.Committable():
		if e.store.Text(s.Editing).Text == s.Text() {
			return
		}
		e.store.SetText(s.Editing, s.Text())
	default:
		ref := annotation.Ref{List: annotation.Texts, Index: s.Editing}
		e.store.RemoveAt(ref)
		e.removed(ref)
	}
	e.commit()
}

func (e *Engine) cancelTyping() {
	if e.typing == nil {
		return
	}
	e.typing = nil
	e.armed = false
}
