package gui

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"snaptrace/src/engine"
	"snaptrace/src/geometry"
	"snaptrace/src/render"
)

var backdrop = color.NRGBA{R: 48, G: 48, B: 48, A: 255}

// Canvas is the editor surface. It forwards fyne input to the engine and
// paints the engine through a raster. All methods run on the fyne goroutine.
type Canvas struct {
	widget.BaseWidget

	eng    *engine.Engine
	raster *canvas.Raster
	mods   engine.Mods
	scale  float64
	fitted bool

	// OnUpdate runs after any input that may have changed what is shown.
	OnUpdate func()
}

var (
	_ fyne.Widget       = (*Canvas)(nil)
	_ fyne.Focusable    = (*Canvas)(nil)
	_ fyne.Scrollable   = (*Canvas)(nil)
	_ desktop.Mouseable = (*Canvas)(nil)
	_ desktop.Hoverable = (*Canvas)(nil)
	_ desktop.Keyable   = (*Canvas)(nil)
)

func NewCanvas(eng *engine.Engine) *Canvas {
	c := &Canvas{eng: eng, scale: 1}
	c.raster = canvas.NewRaster(c.draw)
	c.raster.ScaleMode = canvas.ImageScalePixels
	c.ExtendBaseWidget(c)
	return c
}

func (c *Canvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(c.raster)
}

func (c *Canvas) MinSize() fyne.Size { return fyne.NewSize(320, 240) }

// draw renders at device pixels; input positions are scaled to match.
func (c *Canvas) draw(w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w <= 0 || h <= 0 {
		return dst
	}
	if sz := c.Size(); sz.Width > 0 {
		c.scale = float64(w) / float64(sz.Width)
	}
	view := geometry.Size{W: float64(w), H: float64(h)}
	if !c.fitted {
		c.eng.FitToViewport(view)
		c.fitted = true
	} else {
		c.eng.SetViewportSize(view)
	}
	r := render.NewRaster(dst, c.eng.Viewport())
	r.Clear(backdrop)
	c.eng.Paint(r)
	return dst
}

// Fit re-fits the document on the next frame.
func (c *Canvas) Fit() {
	c.fitted = false
	c.update()
}

func (c *Canvas) update() {
	c.raster.Refresh()
	if c.OnUpdate != nil {
		c.OnUpdate()
	}
}

func (c *Canvas) toScreen(p fyne.Position) geometry.Point {
	return geometry.Pt(float64(p.X)*c.scale, float64(p.Y)*c.scale)
}

// Center is the middle of the visible canvas in screen pixels.
func (c *Canvas) Center() geometry.Point {
	sz := c.Size()
	return c.toScreen(fyne.NewPos(sz.Width/2, sz.Height/2))
}

func (c *Canvas) MouseDown(ev *desktop.MouseEvent) {
	if cv := fyne.CurrentApp().Driver().CanvasForObject(c); cv != nil {
		cv.Focus(c)
	}
	b, ok := translateButton(ev.Button)
	if !ok {
		return
	}
	c.eng.PointerDown(b, c.toScreen(ev.Position), translateMods(ev.Modifier))
	c.update()
}

func (c *Canvas) MouseUp(ev *desktop.MouseEvent) {
	b, ok := translateButton(ev.Button)
	if !ok {
		return
	}
	c.eng.PointerUp(b, c.toScreen(ev.Position), translateMods(ev.Modifier))
	c.update()
}

func (c *Canvas) MouseIn(*desktop.MouseEvent) {}

func (c *Canvas) MouseMoved(ev *desktop.MouseEvent) {
	c.eng.PointerMove(c.toScreen(ev.Position), translateMods(ev.Modifier))
	if c.eng.State() != engine.Idle {
		c.update()
	}
}

func (c *Canvas) MouseOut() {}

func (c *Canvas) Scrolled(ev *fyne.ScrollEvent) {
	delta := geometry.Pt(float64(ev.Scrolled.DX)*c.scale, float64(ev.Scrolled.DY)*c.scale)
	c.eng.Scroll(c.toScreen(ev.Position), delta, c.mods)
	c.update()
}

func (c *Canvas) FocusGained() {}

func (c *Canvas) FocusLost() {
	c.mods = 0
	c.eng.FocusLost()
	c.update()
}

func (c *Canvas) TypedRune(r rune) {
	if c.eng.KeyPress(engine.KeyRune, r, 0) {
		c.update()
	}
}

func (c *Canvas) TypedKey(ev *fyne.KeyEvent) {
	k, ok := translateKey(ev.Name)
	if !ok {
		return
	}
	if c.eng.KeyPress(k, 0, c.mods) {
		c.update()
	}
}

func (c *Canvas) KeyDown(ev *fyne.KeyEvent) {
	if m, ok := modifierKey(ev.Name); ok {
		c.mods |= m
	}
}

func (c *Canvas) KeyUp(ev *fyne.KeyEvent) {
	if m, ok := modifierKey(ev.Name); ok {
		c.mods &^= m
	}
}

// Shortcut sends a Ctrl+letter chord to the engine.
func (c *Canvas) Shortcut(r rune) {
	if c.eng.KeyPress(engine.KeyRune, r, engine.ModCtrl) {
		c.update()
	}
}
