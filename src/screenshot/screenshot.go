package screenshot

import (
	"errors"
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

var ErrNoDisplay = errors.New("no active displays found")

// Region is a rectangle in virtual-screen coordinates.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

// RegionOf converts an image rectangle to a Region.
func RegionOf(r image.Rectangle) Region {
	return Region{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

func (r Region) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

// Displays returns the bounds of every active display, primary first.
func Displays() ([]image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, ErrNoDisplay
	}
	out := make([]image.Rectangle, n)
	for i := range out {
		out[i] = screenshot.GetDisplayBounds(i)
	}
	return out, nil
}

// VirtualBounds is the union of all display bounds.
func VirtualBounds() (image.Rectangle, error) {
	ds, err := Displays()
	if err != nil {
		return image.Rectangle{}, err
	}
	return union(ds), nil
}

func union(rs []image.Rectangle) image.Rectangle {
	var u image.Rectangle
	for i, r := range rs {
		if i == 0 {
			u = r
			continue
		}
		u = u.Union(r)
	}
	return u
}

// CaptureRegion grabs the pixels of region.
func CaptureRegion(region Region) (*image.RGBA, error) {
	if region.Width <= 0 || region.Height <= 0 {
		return nil, fmt.Errorf("invalid region dimensions: width=%d, height=%d", region.Width, region.Height)
	}
	img, err := screenshot.CaptureRect(region.Rect())
	if err != nil {
		return nil, fmt.Errorf("failed to capture region %s: %w", region, err)
	}
	return img, nil
}

// CaptureDisplay grabs display i.
func CaptureDisplay(i int) (*image.RGBA, Region, error) {
	ds, err := Displays()
	if err != nil {
		return nil, Region{}, err
	}
	if i < 0 || i >= len(ds) {
		return nil, Region{}, fmt.Errorf("display %d out of range (have %d)", i, len(ds))
	}
	r := RegionOf(ds[i])
	img, err := CaptureRegion(r)
	return img, r, err
}
