package engine

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"snaptrace/src/annotation"
	"snaptrace/src/geometry"
	"snaptrace/src/hittest"
)

func newTestEngine(t *testing.T) (*Engine, *int) {
	t.Helper()
	changes := 0
	bitmap := image.NewRGBA(image.Rect(0, 0, 400, 300))
	e := New(bitmap, Options{
		Measurer: hittest.Estimate{},
		OnChange: func() { changes++ },
	})
	return e, &changes
}

func pt(x, y float64) geometry.Point { return geometry.Pt(x, y) }

func drag(e *Engine, b Button, from, to geometry.Point) {
	e.PointerDown(b, from, 0)
	e.PointerMove(to, 0)
	e.PointerUp(b, to, 0)
}

func click(e *Engine, b Button, at geometry.Point) {
	e.PointerDown(b, at, 0)
	e.PointerUp(b, at, 0)
}

func typeText(e *Engine, s string) {
	for _, r := range s {
		e.KeyPress(KeyRune, r, 0)
	}
}

func TestDrawRectangleCommits(t *testing.T) {
	e, changes := newTestEngine(t)
	drag(e, Primary, pt(10, 10), pt(60, 40))
	if e.Store().Len(annotation.Shapes) != 1 {
		t.Fatalf("shapes = %d", e.Store().Len(annotation.Shapes))
	}
	if !e.CanUndo() || *changes != 1 {
		t.Fatalf("canUndo=%v changes=%d", e.CanUndo(), *changes)
	}
	if e.State() != Idle {
		t.Fatalf("state = %v", e.State())
	}
}

func TestZeroExtentShapeIsDiscarded(t *testing.T) {
	for _, tool := range []Tool{ToolRectangle, ToolCircle, ToolLine, ToolArrow, ToolPencil} {
		t.Run(tool.String(), func(t *testing.T) {
			e, changes := newTestEngine(t)
			e.SetTool(tool)
			click(e, Primary, pt(20, 20))
			if e.Store().Len(annotation.Shapes) != 0 || e.CanUndo() || *changes != 0 {
				t.Fatalf("click created shape: shapes=%d canUndo=%v", e.Store().Len(annotation.Shapes), e.CanUndo())
			}
		})
	}
}

func TestPencilSamplesEveryMove(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SetTool(ToolPencil)
	e.PointerDown(Primary, pt(0, 0), 0)
	for i := 1; i <= 4; i++ {
		e.PointerMove(pt(float64(i*5), 0), 0)
	}
	e.PointerUp(Primary, pt(20, 0), 0)
	if got := len(e.Store().Shape(0).Points); got != 5 {
		t.Fatalf("points = %d, want 5", got)
	}
}

func TestUndoRedoSequence(t *testing.T) {
	e, _ := newTestEngine(t)
	var snaps []annotation.Snapshot
	snaps = append(snaps, e.Store().Snapshot())
	for i := 0; i < 3; i++ {
		off := float64(i * 50)
		drag(e, Primary, pt(off, off), pt(off+30, off+30))
		snaps = append(snaps, e.Store().Snapshot())
	}
	for n := 3; n >= 1; n-- {
		if !e.Undo() {
			t.Fatalf("undo %d failed", n)
		}
		if !e.Store().Snapshot().Equal(snaps[n-1]) {
			t.Fatalf("after undo document != snapshot %d", n-1)
		}
	}
	if e.Undo() {
		t.Fatal("undo past the initial state")
	}
	if !e.Redo() || !e.Store().Snapshot().Equal(snaps[1]) {
		t.Fatal("redo did not restore the undone state")
	}

	drag(e, Primary, pt(200, 200), pt(250, 250))
	if e.CanRedo() || e.Redo() {
		t.Fatal("new commit must clear redo")
	}
}

func TestEmptyTextIsNotCommitted(t *testing.T) {
	for _, buf := range []string{"", "   ", " \t "} {
		e, _ := newTestEngine(t)
		e.SetTool(ToolText)
		click(e, Primary, pt(50, 50)) // arm
		click(e, Primary, pt(50, 50)) // start
		if e.State() != Typing {
			t.Fatalf("state = %v, want typing", e.State())
		}
		typeText(e, buf)
		e.KeyPress(KeyEnter, 0, 0)
		if e.Store().Len(annotation.Texts) != 0 || e.CanUndo() {
			t.Fatalf("buffer %q committed", buf)
		}
	}
}

func TestTextToolArmingAndCommit(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SetStrokeWidth(4)
	e.SetTool(ToolText)

	click(e, Primary, pt(50, 50))
	if _, ok := e.Typing(); ok {
		t.Fatal("first click after switching tools must only arm")
	}
	click(e, Primary, pt(50, 50))
	typeText(e, "one")
	e.KeyPress(KeyEnter, 0, ModShift)
	typeText(e, "two")
	e.KeyPress(KeyEnter, 0, 0)

	if e.Store().Len(annotation.Texts) != 1 {
		t.Fatalf("texts = %d", e.Store().Len(annotation.Texts))
	}
	item := e.Store().Text(0)
	if item.Text != "one\ntwo" || item.FontSize != 12 {
		t.Fatalf("item = %+v", item)
	}

	// Committing disarms: the next click arms again.
	click(e, Primary, pt(100, 100))
	if _, ok := e.Typing(); ok {
		t.Fatal("text tool should need re-arming after commit")
	}
}

func TestClickWhileTypingCommits(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SetTool(ToolText)
	click(e, Primary, pt(50, 50))
	click(e, Primary, pt(50, 50))
	typeText(e, "hi")
	click(e, Primary, pt(200, 200))
	if e.Store().Len(annotation.Texts) != 1 {
		t.Fatal("click while typing must commit")
	}
	if _, ok := e.Typing(); ok {
		t.Fatal("click while typing must not open a new session")
	}
}

func TestEscapeDiscardsAndFocusLossSaves(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SetTool(ToolText)
	click(e, Primary, pt(50, 50))
	click(e, Primary, pt(50, 50))
	typeText(e, "gone")
	e.KeyPress(KeyEscape, 0, 0)
	if e.Store().Len(annotation.Texts) != 0 {
		t.Fatal("escape committed text")
	}

	click(e, Primary, pt(50, 50))
	click(e, Primary, pt(50, 50))
	typeText(e, "kept")
	e.FocusLost()
	if e.Store().Len(annotation.Texts) != 1 || e.Store().Text(0).Text != "kept" {
		t.Fatal("focus loss must save the buffer")
	}
}

func TestSwitchingToolCommitsText(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SetTool(ToolText)
	click(e, Primary, pt(50, 50))
	click(e, Primary, pt(50, 50))
	typeText(e, "x")
	e.SetTool(ToolRectangle)
	if e.Store().Len(annotation.Texts) != 1 {
		t.Fatal("tool switch must commit the open session")
	}
}

func TestEraserRemovesOverlapInOneCommit(t *testing.T) {
	e, changes := newTestEngine(t)
	drag(e, Primary, pt(0, 0), pt(100, 100))
	e.DropText(pt(40, 50), "note")
	before := e.hist.Len()
	*changes = 0

	e.SetTool(ToolEraser)
	click(e, Primary, pt(45, 47))

	if e.Store().Len(annotation.Shapes) != 0 || e.Store().Len(annotation.Texts) != 0 {
		t.Fatalf("shapes=%d texts=%d", e.Store().Len(annotation.Shapes), e.Store().Len(annotation.Texts))
	}
	if e.hist.Len() != before+1 || *changes != 1 {
		t.Fatalf("history grew by %d, changes %d", e.hist.Len()-before, *changes)
	}
}

func TestEraserMissIsNoop(t *testing.T) {
	e, _ := newTestEngine(t)
	drag(e, Primary, pt(0, 0), pt(10, 10))
	before := e.hist.Len()
	e.SetTool(ToolEraser)
	click(e, Primary, pt(300, 200))
	if e.hist.Len() != before {
		t.Fatal("miss produced a history entry")
	}
}

func TestRightDragThreshold(t *testing.T) {
	e, _ := newTestEngine(t)
	drag(e, Primary, pt(10, 10), pt(60, 60))
	before := e.hist.Len()

	// 2+2 = 4 pixels: below the threshold.
	drag(e, Secondary, pt(30, 30), pt(32, 32))
	ref, ok := e.Selection()
	if !ok || ref.List != annotation.Shapes {
		t.Fatal("right press should select the shape")
	}
	if e.Store().Shape(0).Points[0] != pt(10, 10) || e.hist.Len() != before {
		t.Fatal("sub-threshold drag moved the shape")
	}

	e.PointerDown(Secondary, pt(30, 30), 0)
	e.PointerMove(pt(33, 33), 0)
	e.PointerMove(pt(40, 35), 0)
	e.PointerMove(pt(50, 50), 0)
	if e.State() != MovingViaDrag {
		t.Fatalf("state = %v", e.State())
	}
	e.PointerUp(Secondary, pt(50, 50), 0)

	if got := e.Store().Shape(0).Points; got[0] != pt(30, 30) || got[1] != pt(80, 80) {
		t.Fatalf("moved points = %v", got)
	}
	if e.hist.Len() != before+1 {
		t.Fatalf("drag produced %d history entries", e.hist.Len()-before)
	}
}

func TestRightPressOnNothingClears(t *testing.T) {
	e, _ := newTestEngine(t)
	drag(e, Primary, pt(10, 10), pt(60, 60))
	click(e, Secondary, pt(30, 30))
	click(e, Secondary, pt(300, 250))
	if _, ok := e.Selection(); ok {
		t.Fatal("selection survived a click on empty canvas")
	}
}

func TestRightDragDiscardsOtherTextSession(t *testing.T) {
	e, _ := newTestEngine(t)
	e.DropText(pt(200, 200), "fixed")
	drag(e, Primary, pt(10, 10), pt(60, 60))
	e.SetTool(ToolText)
	click(e, Primary, pt(150, 100))
	click(e, Primary, pt(150, 100))
	typeText(e, "draft")

	drag(e, Secondary, pt(30, 30), pt(50, 50))
	if _, ok := e.Typing(); ok {
		t.Fatal("session on another item survived the drag")
	}
	if e.Store().Len(annotation.Texts) != 1 {
		t.Fatal("draft text must be discarded, not saved")
	}
}

func TestRightClickEditsTextInPlace(t *testing.T) {
	e, _ := newTestEngine(t)
	e.DropText(pt(100, 100), "abc")
	e.SetTool(ToolText)
	click(e, Secondary, pt(105, 98))
	s, ok := e.Typing()
	if !ok || s.IsNew() || s.Cursor != 3 {
		t.Fatalf("in-place edit not opened: %+v", s)
	}
	typeText(e, "d")
	e.KeyPress(KeyEnter, 0, 0)
	if e.Store().Len(annotation.Texts) != 1 || e.Store().Text(0).Text != "abcd" {
		t.Fatalf("texts = %+v", e.Store().Texts())
	}
}

func TestCounterSequenceAndFixedSize(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SetCounterStart(5)
	if e.CanUndo() {
		t.Fatal("setting the counter start must not create history")
	}
	e.SetTool(ToolCounter)
	widths := []float64{2, 6, 9}
	for i, w := range widths {
		e.SetStrokeWidth(w)
		click(e, Primary, pt(float64(50+i*60), 50))
	}
	e.SetStrokeWidth(20)
	for i, c := range e.Store().Counters() {
		if c.Number != 5+i {
			t.Errorf("counter %d number %d", i, c.Number)
		}
		if c.Size != widths[i] {
			t.Errorf("counter %d size %v, want %v", i, c.Size, widths[i])
		}
	}
	e.ResetCounter()
	if e.NextCounter() != 5 || !e.CanUndo() {
		t.Fatal("reset should restart at 5 with a history entry")
	}
}

func TestResizeByHandle(t *testing.T) {
	e, _ := newTestEngine(t)
	drag(e, Primary, pt(10, 10), pt(50, 50))
	click(e, Secondary, pt(30, 30))
	before := e.hist.Len()

	drag(e, Primary, pt(50, 50), pt(90, 70))
	got := e.Store().Shape(0)
	if r := got.Bounds(); r.Min != pt(10, 10) || r.Max != pt(90, 70) {
		t.Fatalf("bounds after resize = %+v", r)
	}
	if e.hist.Len() != before+1 {
		t.Fatal("resize should commit once")
	}
	if e.Store().Len(annotation.Shapes) != 1 {
		t.Fatal("resize must not draw a new shape")
	}
}

func TestResizeLineMovesNearestEndpoint(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SetTool(ToolLine)
	drag(e, Primary, pt(50, 10), pt(10, 50))
	click(e, Secondary, pt(30, 30))
	// Bottom-left corner of the box is the second endpoint.
	drag(e, Primary, pt(10, 50), pt(0, 80))
	pts := e.Store().Shape(0).Points
	if pts[0] != pt(50, 10) || pts[1] != pt(0, 80) {
		t.Fatalf("points = %v", pts)
	}
}

func TestEscapeCancelsGestureWithoutCommit(t *testing.T) {
	e, _ := newTestEngine(t)
	drag(e, Primary, pt(10, 10), pt(50, 50))
	click(e, Secondary, pt(30, 30))
	before := e.hist.Len()

	e.PointerDown(Primary, pt(30, 30), 0)
	e.PointerMove(pt(80, 80), 0)
	e.KeyPress(KeyEscape, 0, 0)
	e.PointerUp(Primary, pt(80, 80), 0)

	if e.Store().Shape(0).Points[0] != pt(10, 10) {
		t.Fatal("cancel did not restore geometry")
	}
	if e.hist.Len() != before {
		t.Fatal("cancel left a history entry")
	}
	if e.State() != Selected {
		t.Fatalf("state = %v, want selected", e.State())
	}

	e.PointerDown(Primary, pt(200, 200), 0)
	e.PointerMove(pt(250, 250), 0)
	e.Cancel()
	e.PointerUp(Primary, pt(250, 250), 0)
	if e.Store().Len(annotation.Shapes) != 1 {
		t.Fatal("cancelled draw left a shape")
	}
}

func TestMiddlePanAndScroll(t *testing.T) {
	e, _ := newTestEngine(t)
	drag(e, Middle, pt(10, 10), pt(40, 30))
	if e.Viewport().Pan != pt(30, 20) || e.CanUndo() {
		t.Fatalf("pan = %v", e.Viewport().Pan)
	}
	e.Scroll(pt(0, 0), pt(0, -15), 0)
	if e.Viewport().Pan != pt(30, 5) {
		t.Fatalf("scroll pan = %v", e.Viewport().Pan)
	}

	s := pt(123, 77)
	anchor := e.Viewport().ToDocument(s)
	e.Scroll(s, pt(0, 1), ModCtrl)
	if e.Viewport().Zoom != 1.1 {
		t.Fatalf("zoom = %v", e.Viewport().Zoom)
	}
	got := e.Viewport().ToDocument(s)
	if d := got.Distance(anchor); d > 1e-9 {
		t.Fatalf("anchor drifted by %v", d)
	}
}

func TestDeleteSelected(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SetTool(ToolCounter)
	click(e, Primary, pt(50, 50))
	click(e, Secondary, pt(50, 50))
	if !e.KeyPress(KeyDelete, 0, 0) {
		t.Fatal("delete not handled")
	}
	if e.Store().Len(annotation.Counters) != 0 {
		t.Fatal("counter not deleted")
	}
	e.Undo()
	if e.Store().Len(annotation.Counters) != 1 {
		t.Fatal("undo did not restore deleted counter")
	}
}

func TestShortcuts(t *testing.T) {
	e, _ := newTestEngine(t)
	e.KeyPress(KeyRune, 'n', 0)
	if e.Tool() != ToolCounter {
		t.Fatalf("tool = %v", e.Tool())
	}
	click(e, Primary, pt(10, 10))
	e.KeyPress(KeyRune, 'z', ModCtrl)
	if e.Store().Len(annotation.Counters) != 0 {
		t.Fatal("ctrl+z did not undo")
	}
	e.KeyPress(KeyRune, 'y', ModCtrl)
	if e.Store().Len(annotation.Counters) != 1 {
		t.Fatal("ctrl+y did not redo")
	}
}

func TestImportImage(t *testing.T) {
	e, changes := newTestEngine(t)
	var warned string
	e.opts.Warn = func(msg string) { warned = msg }

	bad := filepath.Join(t.TempDir(), "bad.png")
	if err := os.WriteFile(bad, []byte("junk"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := e.ImportImage(bad); err == nil || warned == "" {
		t.Fatalf("err=%v warned=%q", err, warned)
	}
	if e.Store().Len(annotation.Shapes) != 0 || *changes != 0 {
		t.Fatal("failed import changed the document")
	}

	good := filepath.Join(t.TempDir(), "pic.png")
	f, err := os.Create(good)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 600, 300))); err != nil {
		t.Fatal(err)
	}
	f.Close()
	if err := e.ImportImage(good); err != nil {
		t.Fatal(err)
	}
	sh := e.Store().Shape(0)
	r := sh.Bounds()
	if sh.Kind != annotation.Image || r.Width() != 150 || r.Height() != 75 {
		t.Fatalf("image shape %v bounds %+v", sh.Kind, r)
	}
	if r.Center() != pt(200, 150) {
		t.Fatalf("image centre = %v", r.Center())
	}
}

func TestRenderToRasterIgnoresViewport(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SetColor(color.NRGBA{R: 255, A: 255})
	e.SetStrokeWidth(4)
	e.SetTool(ToolLine)
	drag(e, Primary, pt(10, 10), pt(100, 10))
	e.Scroll(pt(0, 0), pt(0, 1), ModCtrl)
	e.Scroll(pt(0, 0), pt(0, 50), 0)

	out := e.RenderToRaster()
	if out.Bounds().Dx() != 400 || out.Bounds().Dy() != 300 {
		t.Fatalf("bounds = %v", out.Bounds())
	}
	if c := out.RGBAAt(50, 10); c.R < 200 {
		t.Fatalf("line missing at document position: %v", c)
	}
}
