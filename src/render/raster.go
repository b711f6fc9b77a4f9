// Package render rasterises annotations onto an *image.RGBA with
// golang.org/x/image: vector fills for strokes, opentype Go fonts for text
// and x/image/draw for scaled bitmaps.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"snaptrace/src/geometry"
)

var (
	SelectionColor = color.NRGBA{R: 0, G: 150, B: 255, A: 255}
	HandleFill     = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

const (
	selectionWidth = 2
	dashOn         = 10
	dashOff        = 6
	handleSize     = 8
	ellipseSteps   = 72
)

// Raster paints document-space primitives onto dst through a viewport.
type Raster struct {
	dst   *image.RGBA
	vp    geometry.Viewport
	fonts *Fonts
}

func NewRaster(dst *image.RGBA, vp geometry.Viewport) *Raster {
	return &Raster{dst: dst, vp: vp, fonts: SharedFonts()}
}

func (r *Raster) screen(p geometry.Point) geometry.Point { return r.vp.ToScreen(p) }

func (r *Raster) screenRect(d geometry.Rect) image.Rectangle {
	a, b := r.screen(d.Min), r.screen(d.Max)
	return image.Rect(int(math.Round(a.X)), int(math.Round(a.Y)), int(math.Round(b.X)), int(math.Round(b.Y)))
}

// Clear fills the whole surface with c.
func (r *Raster) Clear(c color.Color) {
	draw.Draw(r.dst, r.dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

func (r *Raster) DrawImage(img image.Image, dst geometry.Rect) {
	sr := r.screenRect(dst)
	if sr.Empty() || !sr.Overlaps(r.dst.Bounds()) {
		return
	}
	if sr.Size() == img.Bounds().Size() {
		draw.Draw(r.dst, sr, img, img.Bounds().Min, draw.Over)
		return
	}
	// Scale only the visible part so deep zoom stays bounded by the surface.
	vis := sr.Intersect(r.dst.Bounds())
	sx := float64(img.Bounds().Dx()) / float64(sr.Dx())
	sy := float64(img.Bounds().Dy()) / float64(sr.Dy())
	src := image.Rect(
		img.Bounds().Min.X+int(math.Floor(float64(vis.Min.X-sr.Min.X)*sx)),
		img.Bounds().Min.Y+int(math.Floor(float64(vis.Min.Y-sr.Min.Y)*sy)),
		img.Bounds().Min.X+int(math.Ceil(float64(vis.Max.X-sr.Min.X)*sx)),
		img.Bounds().Min.Y+int(math.Ceil(float64(vis.Max.Y-sr.Min.Y)*sy)),
	).Intersect(img.Bounds())
	xdraw.ApproxBiLinear.Scale(r.dst, vis, img, src, xdraw.Over, nil)
}

func (r *Raster) StrokeRect(d geometry.Rect, c color.NRGBA, width float64) {
	c4 := d.Corners()
	r.StrokePolyline([]geometry.Point{c4[0], c4[1], c4[3], c4[2], c4[0]}, c, width)
}

func (r *Raster) StrokeEllipse(d geometry.Rect, c color.NRGBA, width float64) {
	r.StrokePolyline(ellipse(d, ellipseSteps), c, width)
}

func ellipse(d geometry.Rect, steps int) []geometry.Point {
	center := d.Center()
	rx, ry := d.Width()/2, d.Height()/2
	pts := make([]geometry.Point, 0, steps+1)
	for i := 0; i <= steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		pts = append(pts, geometry.Pt(center.X+rx*math.Cos(a), center.Y+ry*math.Sin(a)))
	}
	return pts
}

// StrokePolyline strokes pts with round joins at the cosmetic width.
func (r *Raster) StrokePolyline(pts []geometry.Point, c color.NRGBA, width float64) {
	if len(pts) == 0 {
		return
	}
	half := r.vp.PenWidth(width) / 2
	sp := make([]geometry.Point, len(pts))
	for i, p := range pts {
		sp[i] = r.screen(p)
	}
	var polys [][]geometry.Point
	for i := 1; i < len(sp); i++ {
		if q := segmentQuad(sp[i-1], sp[i], half); q != nil {
			polys = append(polys, q)
		}
	}
	if half >= 1 || len(sp) == 1 {
		for _, p := range sp {
			polys = append(polys, disc(p, math.Max(half, 0.5)))
		}
	}
	r.fill(polys, c)
}

func segmentQuad(a, b geometry.Point, half float64) []geometry.Point {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return nil
	}
	n := geometry.Pt(-dy/l*half, dx/l*half)
	return []geometry.Point{a.Add(n), b.Add(n), b.Sub(n), a.Sub(n)}
}

func disc(center geometry.Point, radius float64) []geometry.Point {
	steps := int(math.Max(8, math.Min(64, radius*4)))
	return ellipse(geometry.Rect{
		Min: geometry.Pt(center.X-radius, center.Y-radius),
		Max: geometry.Pt(center.X+radius, center.Y+radius),
	}, steps)
}

func (r *Raster) FillPolygon(pts []geometry.Point, c color.NRGBA) {
	sp := make([]geometry.Point, len(pts))
	for i, p := range pts {
		sp[i] = r.screen(p)
	}
	r.fill([][]geometry.Point{sp}, c)
}

func (r *Raster) FillCircle(center geometry.Point, radius float64, c color.NRGBA) {
	r.fill([][]geometry.Point{disc(r.screen(center), radius*r.vp.Zoom)}, c)
}

// fill rasterises screen-space polygons as one coverage mask so overlaps do
// not double-blend. Every polygon is wound the same way so coverage adds.
func (r *Raster) fill(polys [][]geometry.Point, c color.NRGBA) {
	var all []geometry.Point
	for _, p := range polys {
		all = append(all, p...)
	}
	if len(all) < 3 {
		return
	}
	bb := geometry.BoundingRect(all)
	box := image.Rect(int(math.Floor(bb.Min.X)), int(math.Floor(bb.Min.Y)),
		int(math.Ceil(bb.Max.X))+1, int(math.Ceil(bb.Max.Y))+1).Intersect(r.dst.Bounds())
	if box.Empty() {
		return
	}
	z := vector.NewRasterizer(box.Dx(), box.Dy())
	ox, oy := float64(box.Min.X), float64(box.Min.Y)
	for _, p := range polys {
		if len(p) < 3 {
			continue
		}
		if signedArea(p) < 0 {
			p = reversed(p)
		}
		z.MoveTo(float32(p[0].X-ox), float32(p[0].Y-oy))
		for _, q := range p[1:] {
			z.LineTo(float32(q.X-ox), float32(q.Y-oy))
		}
		z.ClosePath()
	}
	z.Draw(r.dst, box, image.NewUniform(c), image.Point{})
}

func signedArea(p []geometry.Point) float64 {
	a := 0.0
	for i := range p {
		j := (i + 1) % len(p)
		a += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	return a / 2
}

func reversed(p []geometry.Point) []geometry.Point {
	out := make([]geometry.Point, len(p))
	for i := range p {
		out[len(p)-1-i] = p[i]
	}
	return out
}

func (r *Raster) DrawText(text string, baseline geometry.Point, size float64, c color.NRGBA, bold bool) {
	face := r.fonts.Face(size*r.vp.Zoom, bold)
	lineH := toFloat(face.Metrics().Height)
	origin := r.screen(baseline)
	d := &font.Drawer{Dst: r.dst, Src: image.NewUniform(c), Face: face}
	for i, line := range strings.Split(text, "\n") {
		d.Dot = fixed.Point26_6{
			X: fixed.Int26_6(origin.X * 64),
			Y: fixed.Int26_6((origin.Y + float64(i)*lineH) * 64),
		}
		d.DrawString(line)
	}
}

// DrawTextCentered draws a single line centred on center. A light outline in
// the contrasting colour keeps it legible on any background.
func (r *Raster) DrawTextCentered(text string, center geometry.Point, size float64, c color.NRGBA, bold bool) {
	face := r.fonts.Face(size*r.vp.Zoom, bold)
	met := face.Metrics()
	w := toFloat(font.MeasureString(face, text))
	s := r.screen(center)
	dot := fixed.Point26_6{
		X: fixed.Int26_6((s.X - w/2) * 64),
		Y: fixed.Int26_6((s.Y + (toFloat(met.CapHeight))/2) * 64),
	}
	if met.CapHeight == 0 {
		dot.Y = fixed.Int26_6((s.Y + toFloat(met.Ascent-met.Descent)/2) * 64)
	}
	halo := Contrast(c)
	halo.A = c.A / 2
	d := &font.Drawer{Dst: r.dst, Src: image.NewUniform(halo), Face: face}
	for _, off := range [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		d.Dot = dot.Add(fixed.P(off[0], off[1]))
		d.DrawString(text)
	}
	d.Src = image.NewUniform(c)
	d.Dot = dot
	d.DrawString(text)
}

// Contrast picks black or white, whichever reads better against c.
func Contrast(c color.NRGBA) color.NRGBA {
	cf, _ := colorful.MakeColor(color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
	l, _, _ := cf.Lab()
	if l > 0.6 {
		return color.NRGBA{A: 255}
	}
	return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
}

func (r *Raster) DashedRect(d geometry.Rect) {
	c4 := d.Corners()
	r.dashed([]geometry.Point{c4[0], c4[1], c4[3], c4[2], c4[0]})
}

func (r *Raster) DashedCircle(center geometry.Point, radius float64) {
	r.dashed(ellipse(geometry.Rect{
		Min: geometry.Pt(center.X-radius, center.Y-radius),
		Max: geometry.Pt(center.X+radius, center.Y+radius),
	}, ellipseSteps))
}

// dashed strokes a document-space path with the selection pen, dashing in
// screen space.
func (r *Raster) dashed(pts []geometry.Point) {
	half := float64(selectionWidth) / 2
	var polys [][]geometry.Point
	phase := 0.0
	for i := 1; i < len(pts); i++ {
		a, b := r.screen(pts[i-1]), r.screen(pts[i])
		l := a.Distance(b)
		for t := 0.0; t < l; {
			period := math.Mod(phase, dashOn+dashOff)
			on := period < dashOn
			step := dashOn - period
			if !on {
				step = dashOn + dashOff - period
			}
			step = math.Min(step, l-t)
			if on {
				p0 := a.Add(b.Sub(a).Scale(t / l))
				p1 := a.Add(b.Sub(a).Scale((t + step) / l))
				if q := segmentQuad(p0, p1, half); q != nil {
					polys = append(polys, q)
				}
			}
			t += step
			phase += step
		}
	}
	r.fill(polys, SelectionColor)
}

// Handle draws a fixed-size square resize handle centred on at.
func (r *Raster) Handle(at geometry.Point) {
	s := r.screen(at)
	h := float64(handleSize) / 2
	sq := []geometry.Point{
		geometry.Pt(s.X-h, s.Y-h), geometry.Pt(s.X+h, s.Y-h),
		geometry.Pt(s.X+h, s.Y+h), geometry.Pt(s.X-h, s.Y+h),
	}
	r.fill([][]geometry.Point{sq}, SelectionColor)
	inner := []geometry.Point{
		geometry.Pt(s.X-h+1, s.Y-h+1), geometry.Pt(s.X+h-1, s.Y-h+1),
		geometry.Pt(s.X+h-1, s.Y+h-1), geometry.Pt(s.X-h+1, s.Y+h-1),
	}
	r.fill([][]geometry.Point{inner}, HandleFill)
}
