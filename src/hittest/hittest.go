// Package hittest maps a document point to the annotation under it and to the
// resize handle of a selected shape.
package hittest

import (
	"math"
	"strings"

	"snaptrace/src/annotation"
	"snaptrace/src/geometry"
)

const (
	// PencilTolerance is the pick radius around pencil samples, in screen pixels.
	PencilTolerance = 5.0
	// HandleSize is the side of a resize handle hit-box, in screen pixels.
	HandleSize = 8.0
)

// Measurer reports the document-space box a text item occupies.
type Measurer interface {
	TextBounds(t annotation.TextItem) geometry.Rect
}

// Part says which part of an annotation was hit.
type Part int

const (
	None Part = iota
	Body
	Handle
)

func (p Part) String() string {
	switch p {
	case Body:
		return "body"
	case Handle:
		return "handle"
	}
	return "none"
}

// Hit is the result of a query. Corner is meaningful only for Handle.
type Hit struct {
	Ref    annotation.Ref
	Part   Part
	Corner geometry.Corner
}

func (h Hit) OK() bool { return h.Part != None }

// Test returns the topmost annotation at p, preferring counters, then text,
// then shapes. Within a list, later items win.
func Test(s *annotation.Store, p geometry.Point, vp geometry.Viewport, m Measurer) Hit {
	counters := s.Counters()
	for i := len(counters) - 1; i >= 0; i-- {
		if CounterContains(counters[i], p) {
			return Hit{Ref: annotation.Ref{List: annotation.Counters, Index: i}, Part: Body}
		}
	}
	texts := s.Texts()
	for i := len(texts) - 1; i >= 0; i-- {
		if m.TextBounds(texts[i]).Contains(p) {
			return Hit{Ref: annotation.Ref{List: annotation.Texts, Index: i}, Part: Body}
		}
	}
	shapes := s.Shapes()
	for i := len(shapes) - 1; i >= 0; i-- {
		if ShapeContains(shapes[i], p, vp.Len(PencilTolerance)) {
			return Hit{Ref: annotation.Ref{List: annotation.Shapes, Index: i}, Part: Body}
		}
	}
	return Hit{}
}

// Selected tests p against one already-selected annotation, checking its
// handles before its body.
func Selected(s *annotation.Store, ref annotation.Ref, p geometry.Point, vp geometry.Viewport, m Measurer) Hit {
	if ref.Index < 0 || ref.Index >= s.Len(ref.List) {
		return Hit{}
	}
	switch ref.List {
	case annotation.Shapes:
		sh := s.Shape(ref.Index)
		if c, ok := HandleAt(sh, p, vp); ok {
			return Hit{Ref: ref, Part: Handle, Corner: c}
		}
		if ShapeContains(sh, p, vp.Len(PencilTolerance)) {
			return Hit{Ref: ref, Part: Body}
		}
	case annotation.Texts:
		if m.TextBounds(s.Text(ref.Index)).Contains(p) {
			return Hit{Ref: ref, Part: Body}
		}
	case annotation.Counters:
		if CounterContains(s.Counter(ref.Index), p) {
			return Hit{Ref: ref, Part: Body}
		}
	}
	return Hit{}
}

// HandleAt reports which corner handle of sh, if any, contains p.
func HandleAt(sh annotation.Shape, p geometry.Point, vp geometry.Viewport) (geometry.Corner, bool) {
	if !sh.Kind.Resizable() || len(sh.Points) < 2 {
		return 0, false
	}
	half := vp.Len(HandleSize / 2)
	for i, c := range sh.Bounds().Corners() {
		if math.Abs(p.X-c.X) <= half && math.Abs(p.Y-c.Y) <= half {
			return geometry.Corner(i), true
		}
	}
	return 0, false
}

// ShapeContains applies the per-kind containment rule. tol is the pencil pick
// radius in document units.
func ShapeContains(sh annotation.Shape, p geometry.Point, tol float64) bool {
	if sh.Kind == annotation.Pencil {
		return nearPath(sh.Points, p, tol)
	}
	if len(sh.Points) < 2 {
		return false
	}
	return sh.Bounds().Contains(p)
}

func nearPath(pts []geometry.Point, p geometry.Point, r float64) bool {
	for _, q := range pts {
		if q.Distance(p) <= r {
			return true
		}
	}
	return false
}

func CounterContains(c annotation.Counter, p geometry.Point) bool {
	return c.Pos.Distance(p) <= c.Radius()
}

// EraseTargets lists every annotation the eraser removes at p. radius is the
// pencil pick radius in document units. Results are grouped by list with
// indices in descending order so they can be removed in sequence.
func EraseTargets(s *annotation.Store, p geometry.Point, radius float64, m Measurer) []annotation.Ref {
	var out []annotation.Ref
	shapes := s.Shapes()
	for i := len(shapes) - 1; i >= 0; i-- {
		if ShapeContains(shapes[i], p, radius) {
			out = append(out, annotation.Ref{List: annotation.Shapes, Index: i})
		}
	}
	texts := s.Texts()
	for i := len(texts) - 1; i >= 0; i-- {
		if m.TextBounds(texts[i]).Contains(p) {
			out = append(out, annotation.Ref{List: annotation.Texts, Index: i})
		}
	}
	counters := s.Counters()
	for i := len(counters) - 1; i >= 0; i-- {
		if CounterContains(counters[i], p) {
			out = append(out, annotation.Ref{List: annotation.Counters, Index: i})
		}
	}
	return out
}

// Estimate is a font-free Measurer using fixed advance and line height
// ratios. It is used when no real font metrics are available.
type Estimate struct{}

func (Estimate) TextBounds(t annotation.TextItem) geometry.Rect {
	lines := strings.Split(t.Text, "\n")
	widest := 0
	for _, l := range lines {
		if n := len([]rune(l)); n > widest {
			widest = n
		}
	}
	lineH := t.FontSize * 1.2
	top := t.Pos.Y - t.FontSize*0.8
	return geometry.Rect{
		Min: geometry.Pt(t.Pos.X-2, top-2),
		Max: geometry.Pt(t.Pos.X+float64(widest)*t.FontSize*0.6+2, top+lineH*float64(len(lines))+2),
	}
}

// Advance is the width of a single line of text.
func (Estimate) Advance(text string, size float64) float64 {
	return float64(len([]rune(text))) * size * 0.6
}

// Metrics returns the ascent and line height for size.
func (Estimate) Metrics(size float64) (ascent, lineHeight float64) {
	return size * 0.8, size * 1.2
}
