package screenshot

import (
	"image"
	"testing"
)

func TestCaptureRegionRejectsEmpty(t *testing.T) {
	if _, err := CaptureRegion(Region{Width: 0, Height: 10}); err == nil {
		t.Error("Expected error for invalid region dimensions")
	}
}

func TestCaptureRegion(t *testing.T) {
	img, err := CaptureRegion(Region{X: 0, Y: 0, Width: 100, Height: 100})
	if err != nil {
		t.Skipf("no display available: %v", err)
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 100 {
		t.Errorf("captured %v", img.Bounds())
	}
}

func TestRegionRoundTrip(t *testing.T) {
	r := image.Rect(-1920, 0, 0, 1080)
	if got := RegionOf(r).Rect(); got != r {
		t.Fatalf("got %v want %v", got, r)
	}
	if s := RegionOf(r).String(); s != "1920x1080+-1920+0" {
		t.Fatalf("String() = %q", s)
	}
}

func TestUnion(t *testing.T) {
	got := union([]image.Rectangle{image.Rect(0, 0, 100, 100), image.Rect(100, -50, 300, 50)})
	if got != image.Rect(0, -50, 300, 100) {
		t.Fatalf("union = %v", got)
	}
}
