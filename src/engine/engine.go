// Package engine is the annotation canvas: it owns the document, the view
// transform and the gesture state, and turns pointer and keyboard events into
// document edits with undo history.
package engine

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"strings"

	"snaptrace/src/annotation"
	"snaptrace/src/geometry"
	"snaptrace/src/history"
	"snaptrace/src/hittest"
	"snaptrace/src/imageio"
	"snaptrace/src/render"
	"snaptrace/src/textedit"
)

const (
	DefaultStrokeWidth  = 2
	DefaultCounterStart = 1
	DropFontSize        = 12
	// DragThreshold is the Manhattan distance in screen pixels a right-button
	// press must travel before it becomes a move.
	DragThreshold = 5
	ZoomInStep    = 1.1
	ZoomOutStep   = 0.9
)

var DefaultColor = color.NRGBA{R: 255, A: 255}

// Tool decides what a primary-button press starts.
type Tool int

const (
	ToolRectangle Tool = iota
	ToolCircle
	ToolLine
	ToolArrow
	ToolPencil
	ToolText
	ToolEraser
	ToolCounter
)

var toolNames = [...]string{"rectangle", "circle", "line", "arrow", "pencil", "text", "eraser", "counter"}

func (t Tool) String() string {
	if t >= 0 && int(t) < len(toolNames) {
		return toolNames[t]
	}
	return fmt.Sprintf("tool(%d)", int(t))
}

// ParseTool maps a tool name to a Tool.
func ParseTool(name string) (Tool, bool) {
	for i, n := range toolNames {
		if n == name {
			return Tool(i), true
		}
	}
	return 0, false
}

// shapeKind reports the shape a drawing tool produces.
func (t Tool) shapeKind() (annotation.Kind, bool) {
	switch t {
	case ToolRectangle:
		return annotation.Rectangle, true
	case ToolCircle:
		return annotation.Circle, true
	case ToolLine:
		return annotation.Line, true
	case ToolArrow:
		return annotation.Arrow, true
	case ToolPencil:
		return annotation.Pencil, true
	}
	return 0, false
}

// Measurer supplies text metrics for hit-testing and caret placement.
type Measurer interface {
	hittest.Measurer
	Advance(text string, size float64) float64
	Metrics(size float64) (ascent, lineHeight float64)
}

// Options configures a new Engine. Zero values fall back to defaults.
type Options struct {
	MaxUndo      int
	CounterStart int
	StrokeWidth  float64
	Color        color.NRGBA
	Measurer     Measurer
	// OnChange runs after every committed document mutation.
	OnChange func()
	// Warn receives resource failures meant for the user.
	Warn func(msg string)
}

// Engine is single-threaded: every method must be called from the goroutine
// that owns the editor window.
type Engine struct {
	store    *annotation.Store
	hist     *history.History[annotation.Snapshot]
	vp       geometry.Viewport
	viewSize geometry.Size
	bitmap   image.Image
	source   image.Rectangle

	tool  Tool
	color color.NRGBA
	width float64

	selected *annotation.Ref
	g        gestureState
	typing   *textedit.Session
	armed    bool

	measurer Measurer
	opts     Options
}

// New opens an editor on bitmap.
func New(bitmap image.Image, opts Options) *Engine {
	if opts.MaxUndo <= 0 {
		opts.MaxUndo = history.DefaultMaxEntries
	}
	if opts.StrokeWidth < 1 {
		opts.StrokeWidth = DefaultStrokeWidth
	}
	if opts.Color == (color.NRGBA{}) {
		opts.Color = DefaultColor
	}
	if opts.CounterStart == 0 {
		opts.CounterStart = DefaultCounterStart
	}
	e := &Engine{
		tool:     ToolRectangle,
		color:    opts.Color,
		width:    opts.StrokeWidth,
		measurer: opts.Measurer,
		opts:     opts,
	}
	if e.measurer == nil {
		e.measurer = render.NewMeasurer()
	}
	e.OpenEditor(bitmap, bitmapBounds(bitmap))
	return e
}

func bitmapBounds(img image.Image) image.Rectangle {
	if img == nil {
		return image.Rectangle{}
	}
	return img.Bounds()
}

// OpenEditor starts over with an empty document on bitmap. Tool, colour and
// width settings carry over.
func (e *Engine) OpenEditor(bitmap image.Image, sourceRegion image.Rectangle) {
	e.bitmap = bitmap
	e.source = sourceRegion
	e.store = annotation.NewStore(e.opts.CounterStart)
	e.hist = history.New(e.store.Snapshot(), e.opts.MaxUndo)
	e.vp = geometry.NewViewport()
	e.selected = nil
	e.g = gestureState{}
	e.typing = nil
	e.armed = false
	if e.viewSize.W > 0 && e.viewSize.H > 0 {
		e.FitToViewport(e.viewSize)
	}
}

// SourceRegion is the screen rectangle the bitmap was captured from.
func (e *Engine) SourceRegion() image.Rectangle { return e.source }

// Bitmap returns the captured image under the annotations.
func (e *Engine) Bitmap() image.Image { return e.bitmap }

// DocumentSize is the bitmap size in document units.
func (e *Engine) DocumentSize() geometry.Size {
	b := bitmapBounds(e.bitmap)
	return geometry.Size{W: float64(b.Dx()), H: float64(b.Dy())}
}

// Store exposes the document read-only by convention; mutate only through
// Engine methods.
func (e *Engine) Store() *annotation.Store { return e.store }

func (e *Engine) Measurer() Measurer { return e.measurer }

func (e *Engine) Tool() Tool { return e.tool }

// SetTool switches tools. An open text session is committed and the text tool
// is disarmed.
func (e *Engine) SetTool(t Tool) {
	if t == e.tool {
		return
	}
	e.abortGesture()
	e.finishTyping()
	e.tool = t
	e.armed = false
}

func (e *Engine) Color() color.NRGBA { return e.color }

func (e *Engine) SetColor(c color.NRGBA) { e.color = c }

func (e *Engine) StrokeWidth() float64 { return e.width }

// SetStrokeWidth saturates at 1.
func (e *Engine) SetStrokeWidth(w float64) { e.width = math.Max(1, w) }

// CounterStart is the configured first counter number.
func (e *Engine) CounterStart() int { return e.store.CounterStart() }

// NextCounter is the number the next counter will show.
func (e *Engine) NextCounter() int { return e.store.NextCounter() }

// SetCounterStart changes the start and next number without a history entry.
func (e *Engine) SetCounterStart(n int) {
	e.store.SetCounterStart(n)
}

// ResetCounter restarts numbering from the configured start.
func (e *Engine) ResetCounter() {
	e.store.ResetCounter()
	e.commit()
}

func (e *Engine) CanUndo() bool { return e.hist.CanUndo() }

func (e *Engine) CanRedo() bool { return e.hist.CanRedo() }

// Undo restores the previous snapshot. An open text session is discarded and
// the selection cleared.
func (e *Engine) Undo() bool {
	e.abortGesture()
	e.typing = nil
	snap, err := e.hist.Undo()
	if err != nil {
		return false
	}
	e.store.Restore(snap)
	e.selected = nil
	e.changed()
	return true
}

func (e *Engine) Redo() bool {
	e.abortGesture()
	e.typing = nil
	snap, err := e.hist.Redo()
	if err != nil {
		return false
	}
	e.store.Restore(snap)
	e.selected = nil
	e.changed()
	return true
}

// Selection returns the selected annotation, if any.
func (e *Engine) Selection() (annotation.Ref, bool) {
	if e.selected == nil {
		return annotation.Ref{}, false
	}
	return *e.selected, true
}

func (e *Engine) ClearSelection() { e.selected = nil }

func (e *Engine) selectRef(r annotation.Ref) {
	ref := r
	e.selected = &ref
}

// DeleteSelected removes the selected annotation.
func (e *Engine) DeleteSelected() bool {
	if e.selected == nil || e.g.kind != gestureIdle {
		return false
	}
	ref := *e.selected
	if ref.Index >= e.store.Len(ref.List) {
		e.selected = nil
		return false
	}
	e.store.RemoveAt(ref)
	e.removed(ref)
	e.selected = nil
	e.commit()
	return true
}

// DropText places text at a screen point without the text tool's arming step.
func (e *Engine) DropText(at geometry.Point, text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	e.store.AddText(annotation.TextItem{
		Text:     text,
		Pos:      e.vp.ToDocument(at),
		Color:    e.color,
		FontSize: DropFontSize,
	})
	e.commit()
	return true
}

// ImportImage decodes the file at path and places it as an image annotation.
// On failure the document is unchanged and the error is also passed to
// Options.Warn.
func (e *Engine) ImportImage(path string) error {
	img, err := imageio.Load(path)
	if err != nil {
		e.warn(fmt.Sprintf("Could not load image %s: %v", path, err))
		return err
	}
	e.AddImage(img)
	return nil
}

// AddImage places img centred in the visible area, scaled down to fit in half
// of the document's shorter side.
func (e *Engine) AddImage(img image.Image) {
	doc := e.DocumentSize()
	limit := math.Min(doc.W, doc.H) / 2
	if limit <= 0 {
		limit = math.Max(doc.W, doc.H)
	}
	size := imageio.ScaleToFit(img.Bounds().Size(), limit)
	center := geometry.Pt(doc.W/2, doc.H/2)
	if e.viewSize.W > 0 && e.viewSize.H > 0 {
		center = e.vp.ToDocument(geometry.Pt(e.viewSize.W/2, e.viewSize.H/2))
	}
	half := geometry.Pt(size.W/2, size.H/2)
	idx := e.store.AddShape(annotation.Shape{
		Kind:    annotation.Image,
		Color:   e.color,
		Width:   e.width,
		Points:  []geometry.Point{center.Sub(half), center.Add(half)},
		Picture: img,
	})
	e.selectRef(annotation.Ref{List: annotation.Shapes, Index: idx})
	e.commit()
}

func (e *Engine) Viewport() geometry.Viewport { return e.vp }

// SetViewportSize records the on-screen canvas size used for centring.
func (e *Engine) SetViewportSize(s geometry.Size) { e.viewSize = s }

// FitToViewport fits the bitmap into view without upscaling.
func (e *Engine) FitToViewport(view geometry.Size) {
	e.viewSize = view
	e.vp.Fit(view, e.DocumentSize())
}

// Flush commits an open text session, for use before export.
func (e *Engine) Flush() { e.finishTyping() }

// commit records the current document in history.
func (e *Engine) commit() {
	e.hist.Push(e.store.Snapshot())
	e.changed()
}

func (e *Engine) changed() {
	if e.opts.OnChange != nil {
		e.opts.OnChange()
	}
}

func (e *Engine) warn(msg string) {
	log.Printf("Engine: %s", msg)
	if e.opts.Warn != nil {
		e.opts.Warn(msg)
	}
}

// removed keeps the selection and any text session pointing at the right
// items after ref was deleted.
func (e *Engine) removed(ref annotation.Ref) {
	if e.selected != nil && e.selected.List == ref.List {
		switch {
		case e.selected.Index == ref.Index:
			e.selected = nil
		case e.selected.Index > ref.Index:
			e.selected.Index--
		}
	}
	if ref.List == annotation.Texts && e.typing != nil && !e.typing.IsNew() {
		switch {
		case e.typing.Editing == ref.Index:
			e.typing = nil
		case e.typing.Editing > ref.Index:
			e.typing.Editing--
		}
	}
}
