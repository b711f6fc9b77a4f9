package engine

import (
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"snaptrace/src/annotation"
	"snaptrace/src/geometry"
	"snaptrace/src/render"
)

// Painter is the drawing surface the engine paints onto. All coordinates are
// document space; the painter applies its own view transform. Stroke widths
// are document widths rendered with cosmetic semantics.
type Painter interface {
	DrawImage(img image.Image, dst geometry.Rect)
	StrokeRect(r geometry.Rect, c color.NRGBA, width float64)
	StrokeEllipse(r geometry.Rect, c color.NRGBA, width float64)
	StrokePolyline(pts []geometry.Point, c color.NRGBA, width float64)
	FillPolygon(pts []geometry.Point, c color.NRGBA)
	FillCircle(center geometry.Point, radius float64, c color.NRGBA)
	DrawText(text string, baseline geometry.Point, size float64, c color.NRGBA, bold bool)
	DrawTextCentered(text string, center geometry.Point, size float64, c color.NRGBA, bold bool)
	DashedRect(r geometry.Rect)
	DashedCircle(center geometry.Point, radius float64)
	Handle(at geometry.Point)
}

const (
	counterFillAlpha = 50
	counterRingGap   = 4
	pencilSelectPad  = 5
)

// Paint draws the document with live gesture feedback: the shape being
// drawn, the open text session and the selection.
func (e *Engine) Paint(p Painter) {
	e.paintDocument(p, e.vp, true)
	if e.g.kind == gestureDrawing {
		if kind, ok := e.tool.shapeKind(); ok {
			paintShape(p, e.vp, annotation.Shape{Kind: kind, Color: e.color, Width: e.width, Points: e.g.draft})
		}
	}
	if e.typing != nil {
		e.paintTyping(p)
	}
	if e.selected != nil && e.selected.Index < e.store.Len(e.selected.List) {
		e.paintSelection(p, *e.selected)
	}
}

// RenderToRaster flattens the document onto a copy of the bitmap at 1:1,
// ignoring the viewport. Open text sessions and selection are not drawn.
func (e *Engine) RenderToRaster() *image.RGBA {
	b := bitmapBounds(e.bitmap)
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	r := render.NewRaster(dst, geometry.NewViewport())
	e.paintDocument(r, geometry.NewViewport(), false)
	return dst
}

// paintDocument draws the bitmap and annotations. When live, the text item
// under an open edit session is skipped so the session can draw it instead.
func (e *Engine) paintDocument(p Painter, vp geometry.Viewport, live bool) {
	if e.bitmap != nil {
		doc := e.DocumentSize()
		p.DrawImage(e.bitmap, geometry.Rect{Max: geometry.Pt(doc.W, doc.H)})
	}
	for _, sh := range e.store.Shapes() {
		paintShape(p, vp, sh)
	}
	for i, t := range e.store.Texts() {
		if e.typing != nil && !e.typing.IsNew() && e.typing.Editing == i && live {
			continue
		}
		p.DrawText(t.Text, t.Pos, t.FontSize, t.Color, false)
	}
	for _, c := range e.store.Counters() {
		fill := c.Color
		fill.A = counterFillAlpha
		p.FillCircle(c.Pos, c.Radius(), fill)
		p.DrawTextCentered(strconv.Itoa(c.Number), c.Pos, c.Size+10, c.Color, true)
	}
}

func paintShape(p Painter, vp geometry.Viewport, sh annotation.Shape) {
	if len(sh.Points) < 2 {
		return
	}
	switch sh.Kind {
	case annotation.Rectangle:
		p.StrokeRect(sh.Bounds(), sh.Color, sh.Width)
	case annotation.Circle:
		p.StrokeEllipse(sh.Bounds(), sh.Color, sh.Width)
	case annotation.Line:
		p.StrokePolyline(sh.Points[:2], sh.Color, sh.Width)
	case annotation.Arrow:
		p.StrokePolyline(sh.Points[:2], sh.Color, sh.Width)
		p.FillPolygon(arrowHead(vp, sh), sh.Color)
	case annotation.Pencil:
		p.StrokePolyline(sh.Points, sh.Color, sh.Width)
	case annotation.Image:
		if sh.Picture != nil {
			p.DrawImage(sh.Picture, sh.Bounds())
		}
	}
}

// arrowHead returns the triangle at the end of an arrow, sized from the
// on-screen pen width so it stays readable at any zoom.
func arrowHead(vp geometry.Viewport, sh annotation.Shape) []geometry.Point {
	start, end := sh.Points[0], sh.Points[1]
	size := math.Max(8, (vp.PenWidth(sh.Width)*3+12)/vp.Zoom)
	angle := math.Atan2(end.Y-start.Y, end.X-start.X)
	wing := func(a float64) geometry.Point {
		return geometry.Pt(end.X-size*math.Cos(a), end.Y-size*math.Sin(a))
	}
	return []geometry.Point{end, wing(angle - math.Pi/6), wing(angle + math.Pi/6)}
}

func (e *Engine) paintTyping(p Painter) {
	s := e.typing
	text := s.Text()
	if text != "" {
		p.DrawText(text, s.Pos, s.FontSize, s.Color, false)
	}
	if !s.Visible {
		return
	}
	line, before := s.CaretLine()
	ascent, lineH := e.measurer.Metrics(s.FontSize)
	x := s.Pos.X + e.measurer.Advance(before, s.FontSize)
	top := s.Pos.Y - ascent + float64(line)*lineH
	p.StrokePolyline([]geometry.Point{geometry.Pt(x, top), geometry.Pt(x, top+lineH)}, s.Color, 1)
}

func (e *Engine) paintSelection(p Painter, ref annotation.Ref) {
	switch ref.List {
	case annotation.Shapes:
		sh := e.store.Shape(ref.Index)
		if sh.Kind == annotation.Pencil {
			p.DashedRect(sh.Bounds().Inset(pencilSelectPad))
			return
		}
		r := sh.Bounds()
		p.DashedRect(r)
		for _, c := range r.Corners() {
			p.Handle(c)
		}
	case annotation.Texts:
		t := e.store.Text(ref.Index)
		if e.typing != nil && e.typing.Editing == ref.Index {
			t = e.typing.Item()
			if strings.TrimSpace(t.Text) == "" {
				return
			}
		}
		p.DashedRect(e.measurer.TextBounds(t))
	case annotation.Counters:
		c := e.store.Counter(ref.Index)
		p.DashedCircle(c.Pos, c.Radius()+counterRingGap)
	}
}
