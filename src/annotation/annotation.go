// Package annotation is the undoable document edited on the canvas: shapes,
// text items and counters, each in its own ordered list.
package annotation

import (
	"fmt"
	"image"
	"image/color"

	"snaptrace/src/geometry"
)

// Kind is the variant of a Shape.
type Kind int

const (
	Rectangle Kind = iota
	Circle
	Line
	Arrow
	Pencil
	Image
)

func (k Kind) String() string {
	switch k {
	case Rectangle:
		return "rectangle"
	case Circle:
		return "circle"
	case Line:
		return "line"
	case Arrow:
		return "arrow"
	case Pencil:
		return "pencil"
	case Image:
		return "image"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// TwoPoint reports whether shapes of this kind are defined by a corner pair.
func (k Kind) TwoPoint() bool { return k != Pencil }

// Resizable reports whether shapes of this kind expose corner handles.
func (k Kind) Resizable() bool { return k != Pencil }

// Shape is a vector annotation. Points holds the raw corner pair for
// two-point kinds or the sampled path for Pencil. Picture is set only for
// Image and is never modified after creation.
type Shape struct {
	Kind    Kind
	Color   color.NRGBA
	Width   float64
	Points  []geometry.Point
	Picture image.Image
}

// Bounds is the normalised bounding rectangle of the shape.
func (s Shape) Bounds() geometry.Rect {
	if s.Kind.TwoPoint() && len(s.Points) >= 2 {
		return geometry.RectFromPoints(s.Points[0], s.Points[1])
	}
	return geometry.BoundingRect(s.Points)
}

func (s Shape) clone() Shape {
	c := s
	c.Points = append([]geometry.Point(nil), s.Points...)
	return c
}

// TextItem is a possibly multi-line string anchored at the baseline of its
// first line.
type TextItem struct {
	Text     string
	Pos      geometry.Point
	Color    color.NRGBA
	FontSize float64
}

// Counter is a numbered marker. Size is fixed at creation.
type Counter struct {
	Number int
	Pos    geometry.Point
	Color  color.NRGBA
	Size   float64
}

// Radius is the highlight radius, which is also the hit radius.
func (c Counter) Radius() float64 { return 10 + c.Size }

// List names one of the three document lists.
type List int

const (
	Shapes List = iota
	Texts
	Counters
)

func (l List) String() string {
	switch l {
	case Shapes:
		return "shape"
	case Texts:
		return "text"
	case Counters:
		return "counter"
	}
	return fmt.Sprintf("list(%d)", int(l))
}

// Ref identifies one annotation by list and index.
type Ref struct {
	List  List
	Index int
}

func (r Ref) String() string { return fmt.Sprintf("%s#%d", r.List, r.Index) }

// IndexError is the panic value for an out-of-range mutation.
type IndexError struct {
	Op  string
	Ref Ref
	Len int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("annotation: %s: index %d out of range for %s list of length %d",
		e.Op, e.Ref.Index, e.Ref.List, e.Len)
}
