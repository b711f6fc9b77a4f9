package session

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"snaptrace/src/screenshot"
	"snaptrace/src/singleinstance"
)

type recordingTarget struct {
	img     *image.RGBA
	failure error
}

func (r *recordingTarget) OnSuccess(img *image.RGBA, _ screenshot.Region) (string, error) {
	r.img = img
	return "ok", nil
}

func (r *recordingTarget) OnFailure(err error) error {
	r.failure = err
	return nil
}

func fixedRegion(r screenshot.Region) RegionSelectorFunc {
	return func(context.Context) (screenshot.Region, bool, error) { return r, false, nil }
}

func fakeCapture(_ context.Context, r screenshot.Region) (*image.RGBA, error) {
	return image.NewRGBA(image.Rect(0, 0, r.Width, r.Height)), nil
}

func TestExecuteDelivers(t *testing.T) {
	target := &recordingTarget{}
	res, err := Execute(context.Background(), Options{
		SelectRegion: fixedRegion(screenshot.Region{Width: 8, Height: 6}),
		Capture:      fakeCapture,
		Target:       target,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.ID == "" || res.Message != "ok" {
		t.Fatalf("result = %+v", res)
	}
	if target.img == nil || target.img.Bounds().Dx() != 8 {
		t.Fatal("target did not get the capture")
	}
}

func TestExecuteCancelled(t *testing.T) {
	target := &recordingTarget{}
	_, err := Execute(context.Background(), Options{
		SelectRegion: func(context.Context) (screenshot.Region, bool, error) { return screenshot.Region{}, true, nil },
		Capture:      fakeCapture,
		Target:       target,
	})
	if !errors.Is(err, ErrSelectionCancelled) || !errors.Is(target.failure, ErrSelectionCancelled) {
		t.Fatalf("err = %v, failure = %v", err, target.failure)
	}
}

func TestExecuteCaptureError(t *testing.T) {
	boom := errors.New("boom")
	target := &recordingTarget{}
	_, err := Execute(context.Background(), Options{
		SelectRegion: fixedRegion(screenshot.Region{Width: 1, Height: 1}),
		Capture:      func(context.Context, screenshot.Region) (*image.RGBA, error) { return nil, boom },
		Target:       target,
	})
	if !errors.Is(err, boom) || target.failure == nil {
		t.Fatalf("err = %v", err)
	}
}

func TestFileTarget(t *testing.T) {
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for _, want := range []string{"cap.png", "cap_1.png"} {
		if _, err := (FileTarget{Dir: dir, Base: "cap"}).OnSuccess(img, screenshot.Region{}); err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(filepath.Join(dir, want)); err != nil {
			t.Fatalf("missing %s", want)
		}
	}
}

type fakeConn struct {
	success, failure string
}

func (c *fakeConn) Request() singleinstance.Request { return singleinstance.Request{} }
func (c *fakeConn) RespondSuccess(msg string) error { c.success = msg; return nil }
func (c *fakeConn) RespondError(msg string) error   { c.failure = msg; return nil }
func (c *fakeConn) Close() error                    { return nil }

func TestDelegatedTarget(t *testing.T) {
	conn := &fakeConn{}
	d := DelegatedTarget{Conn: conn, Sink: &recordingTarget{}}
	if _, err := d.OnSuccess(image.NewRGBA(image.Rect(0, 0, 1, 1)), screenshot.Region{}); err != nil {
		t.Fatal(err)
	}
	if conn.success != "ok" {
		t.Fatalf("client got %q", conn.success)
	}
	_ = d.OnFailure(errors.New("display gone"))
	if conn.failure != "display gone" {
		t.Fatalf("client error %q", conn.failure)
	}
}
