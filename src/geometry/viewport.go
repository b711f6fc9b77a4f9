package geometry

import "math"

// Viewport is the pan/zoom view transform. It is never part of the undoable
// document.
type Viewport struct {
	Zoom float64
	Pan  Point
}

// NewViewport returns the identity transform.
func NewViewport() Viewport {
	return Viewport{Zoom: 1}
}

func (v Viewport) ToDocument(s Point) Point {
	return s.Sub(v.Pan).Scale(1 / v.Zoom)
}

func (v Viewport) ToScreen(d Point) Point {
	return d.Scale(v.Zoom).Add(v.Pan)
}

// ClampZoom saturates z to [MinZoom, MaxZoom].
func ClampZoom(z float64) float64 {
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}

// ZoomAt multiplies the zoom by factor, keeping the document point under the
// screen point s fixed.
func (v *Viewport) ZoomAt(s Point, factor float64) {
	anchor := v.ToDocument(s)
	v.Zoom = ClampZoom(v.Zoom * factor)
	v.Pan = s.Sub(anchor.Scale(v.Zoom))
}

// PanBy shifts the view by a screen-space delta.
func (v *Viewport) PanBy(d Point) {
	v.Pan = v.Pan.Add(d)
}

// Fit scales the image to fit inside view without upscaling and centres it.
func (v *Viewport) Fit(view, image Size) {
	if image.W <= 0 || image.H <= 0 || view.W <= 0 || view.H <= 0 {
		*v = NewViewport()
		return
	}
	z := math.Min(math.Min(view.W/image.W, view.H/image.H), 1)
	v.Zoom = ClampZoom(z)
	v.Pan = Point{
		X: math.Max(0, (view.W-image.W*v.Zoom)/2),
		Y: math.Max(0, (view.H-image.H*v.Zoom)/2),
	}
}

// PenWidth converts a document stroke width to the on-screen pixel width under
// cosmetic semantics: max(1, round(w/zoom)).
func (v Viewport) PenWidth(w float64) float64 {
	return math.Max(1, math.Round(w/v.Zoom))
}

// Len converts a screen length to document units.
func (v Viewport) Len(screen float64) float64 {
	return screen / v.Zoom
}
