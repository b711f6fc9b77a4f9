package geometry

import (
	"math"
	"testing"
)

func near(a, b Point) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func TestTransformRoundTrip(t *testing.T) {
	v := Viewport{Zoom: 2.5, Pan: Pt(13, -7)}
	d := Pt(40, 25)
	if got := v.ToDocument(v.ToScreen(d)); !near(got, d) {
		t.Fatalf("round trip = %v, want %v", got, d)
	}
}

func TestZoomAtKeepsAnchor(t *testing.T) {
	cases := []struct {
		name   string
		zoom   float64
		factor float64
	}{
		{"in from 1", 1, 1.1},
		{"out from 1", 1, 0.9},
		{"in near max", 4.9, 1.1},
		{"out near min", 0.105, 0.9},
		{"at min", MinZoom, 0.9},
		{"at max", MaxZoom, 1.1},
	}
	s := Pt(321, 123)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := Viewport{Zoom: tc.zoom, Pan: Pt(50, 60)}
			before := v.ToDocument(s)
			v.ZoomAt(s, tc.factor)
			if v.Zoom < MinZoom || v.Zoom > MaxZoom {
				t.Fatalf("zoom %v out of range", v.Zoom)
			}
			if after := v.ToDocument(s); !near(before, after) {
				t.Fatalf("anchor moved: before %v after %v", before, after)
			}
		})
	}
}

func TestFit(t *testing.T) {
	var v Viewport
	v.Fit(Size{W: 800, H: 600}, Size{W: 1600, H: 600})
	if v.Zoom != 0.5 {
		t.Fatalf("zoom = %v, want 0.5", v.Zoom)
	}
	if !near(v.Pan, Pt(0, 150)) {
		t.Fatalf("pan = %v", v.Pan)
	}

	v.Fit(Size{W: 800, H: 600}, Size{W: 200, H: 100})
	if v.Zoom != 1 {
		t.Fatalf("small image upscaled to %v", v.Zoom)
	}
	if !near(v.Pan, Pt(300, 250)) {
		t.Fatalf("pan = %v", v.Pan)
	}
}

func TestPenWidth(t *testing.T) {
	cases := []struct {
		zoom, w, want float64
	}{
		{1, 2, 2},
		{2, 2, 1},
		{4, 2, 1},
		{0.5, 3, 6},
		{0.1, 1, 10},
	}
	for _, tc := range cases {
		v := Viewport{Zoom: tc.zoom}
		if got := v.PenWidth(tc.w); got != tc.want {
			t.Errorf("PenWidth(%v) at zoom %v = %v, want %v", tc.w, tc.zoom, got, tc.want)
		}
	}
}

func TestRectFromPointsNormalises(t *testing.T) {
	r := RectFromPoints(Pt(10, 2), Pt(3, 8))
	if r.Min != Pt(3, 2) || r.Max != Pt(10, 8) {
		t.Fatalf("got %+v", r)
	}
	if !r.Contains(Pt(3, 8)) || r.Contains(Pt(11, 5)) {
		t.Fatal("containment wrong at edges")
	}
	if r.Opposite(TopLeft) != r.Max {
		t.Fatal("opposite of top-left should be max")
	}
}
