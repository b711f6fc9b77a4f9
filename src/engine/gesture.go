package engine

import (
	"snaptrace/src/annotation"
	"snaptrace/src/geometry"
	"snaptrace/src/hittest"
)

type gestureKind int

const (
	gestureIdle gestureKind = iota
	gestureDrawing
	gestureErasing
	gestureResizing
	gestureMoving
	gestureRightPending
	gestureRightMoving
	gesturePanning
)

// original is the pre-gesture geometry of the annotation a gesture mutates.
type original struct {
	ref    annotation.Ref
	points []geometry.Point
	pos    geometry.Point
}

// gestureState is everything a single press-to-release gesture needs.
type gestureState struct {
	kind   gestureKind
	button Button
	press  geometry.Point // document space
	screen geometry.Point // press position, screen space
	last   geometry.Point // previous screen position, for panning
	draft  []geometry.Point
	corner geometry.Corner
	orig   *original
}

// State is the externally visible interaction state.
type State int

const (
	Idle State = iota
	Selecting
	Selected
	Drawing
	Erasing
	Resizing
	MovingViaDrag
	Panning
	Typing
)

var stateNames = [...]string{"idle", "selecting", "selected", "drawing", "erasing", "resizing", "moving", "panning", "typing"}

func (s State) String() string { return stateNames[s] }

// State reports what the engine is doing right now. A live gesture takes
// precedence over an open text session.
func (e *Engine) State() State {
	switch e.g.kind {
	case gestureDrawing:
		return Drawing
	case gestureErasing:
		return Erasing
	case gestureResizing:
		return Resizing
	case gestureMoving, gestureRightMoving:
		return MovingViaDrag
	case gestureRightPending:
		return Selecting
	case gesturePanning:
		return Panning
	}
	if e.typing != nil {
		return Typing
	}
	if e.selected != nil {
		return Selected
	}
	return Idle
}

func (e *Engine) captureOriginal(ref annotation.Ref) *original {
	o := &original{ref: ref}
	switch ref.List {
	case annotation.Shapes:
		o.points = e.store.Shape(ref.Index).Points
	case annotation.Texts:
		o.pos = e.store.Text(ref.Index).Pos
	case annotation.Counters:
		o.pos = e.store.Counter(ref.Index).Pos
	}
	return o
}

// restore puts o back into the store.
func (e *Engine) restore(o *original) {
	switch o.ref.List {
	case annotation.Shapes:
		e.store.UpdateShapePoints(o.ref.Index, o.points)
	case annotation.Texts:
		e.store.SetTextPos(o.ref.Index, o.pos)
		if e.typing != nil && e.typing.Editing == o.ref.Index {
			e.typing.Pos = o.pos
		}
	case annotation.Counters:
		e.store.SetCounterPos(o.ref.Index, o.pos)
	}
}

// moveTo translates the annotation in o by delta from its original position.
func (e *Engine) moveTo(o *original, delta geometry.Point) {
	switch o.ref.List {
	case annotation.Shapes:
		pts := make([]geometry.Point, len(o.points))
		for i, p := range o.points {
			pts[i] = p.Add(delta)
		}
		e.store.UpdateShapePoints(o.ref.Index, pts)
	case annotation.Texts:
		e.store.SetTextPos(o.ref.Index, o.pos.Add(delta))
		if e.typing != nil && !e.typing.IsNew() && e.typing.Editing == o.ref.Index {
			e.typing.Pos = o.pos.Add(delta)
		}
	case annotation.Counters:
		e.store.SetCounterPos(o.ref.Index, o.pos.Add(delta))
	}
}

// resizeTo drags corner c of the original shape to p. Box kinds keep the
// opposite corner fixed; lines and arrows move the endpoint nearest c.
func (e *Engine) resizeTo(o *original, c geometry.Corner, p geometry.Point) {
	sh := e.store.Shape(o.ref.Index)
	pts := append([]geometry.Point(nil), o.points...)
	switch sh.Kind {
	case annotation.Line, annotation.Arrow:
		grabbed := geometry.RectFromPoints(pts[0], pts[1]).Corners()[c]
		if pts[0].Distance(grabbed) <= pts[1].Distance(grabbed) {
			pts[0] = p
		} else {
			pts[1] = p
		}
	default:
		anchor := geometry.RectFromPoints(pts[0], pts[1]).Opposite(c)
		pts = []geometry.Point{anchor, p}
	}
	e.store.UpdateShapePoints(o.ref.Index, pts)
}

// moved reports whether the annotation differs from its original geometry.
func (e *Engine) moved(o *original) bool {
	switch o.ref.List {
	case annotation.Shapes:
		now := e.store.Shape(o.ref.Index).Points
		if len(now) != len(o.points) {
			return true
		}
		for i := range now {
			if now[i] != o.points[i] {
				return true
			}
		}
		return false
	case annotation.Texts:
		return e.store.Text(o.ref.Index).Pos != o.pos
	case annotation.Counters:
		return e.store.Counter(o.ref.Index).Pos != o.pos
	}
	return false
}

// abortGesture drops any live gesture, putting mutated geometry back and
// leaving no history entry.
func (e *Engine) abortGesture() {
	if e.g.orig != nil && e.g.orig.ref.Index < e.store.Len(e.g.orig.ref.List) {
		e.restore(e.g.orig)
	}
	e.g = gestureState{}
}

// eraseAt removes everything the eraser touches at p in one commit.
func (e *Engine) eraseAt(p geometry.Point) {
	radius := e.vp.Len(hittest.PencilTolerance)
	if r := 2 * e.width; r > radius {
		radius = r
	}
	refs := hittest.EraseTargets(e.store, p, radius, e.measurer)
	if len(refs) == 0 {
		return
	}
	for _, r := range refs {
		e.store.RemoveAt(r)
		e.removed(r)
	}
	e.selected = nil
	e.commit()
}
