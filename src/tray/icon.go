package tray

import (
	"image"
	"image/color"
	"sync"

	"snaptrace/src/export"
	"snaptrace/src/geometry"
	"snaptrace/src/render"
)

const iconSize = 32

var (
	iconOnce sync.Once
	iconPNG  []byte
	iconErr  error
)

// Icon returns the tray icon as PNG: a dashed selection frame with a red
// arrow, drawn with the editor's own rasterizer.
func Icon() ([]byte, error) {
	iconOnce.Do(func() {
		iconPNG, iconErr = export.EncodePNG(drawIcon())
	})
	return iconPNG, iconErr
}

func drawIcon() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	r := render.NewRaster(img, geometry.NewViewport())
	r.DashedRect(geometry.Rect{Min: geometry.Pt(3, 3), Max: geometry.Pt(23, 19)})
	red := color.NRGBA{R: 220, G: 30, B: 30, A: 255}
	tip := geometry.Pt(27, 27)
	r.StrokePolyline([]geometry.Point{geometry.Pt(12, 12), tip}, red, 3)
	r.FillPolygon([]geometry.Point{tip, geometry.Pt(18, 24), geometry.Pt(24, 18)}, red)
	return img
}
