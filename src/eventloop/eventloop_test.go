package eventloop

import (
	"context"
	"image"
	"sync"
	"testing"
	"time"

	"snaptrace/src/config"
	"snaptrace/src/overlay"
	"snaptrace/src/screenshot"
	"snaptrace/src/singleinstance"
)

type fakeServer struct {
	conns chan singleinstance.Conn
}

func newFakeServer() *fakeServer { return &fakeServer{conns: make(chan singleinstance.Conn, 1)} }

func (s *fakeServer) Start(context.Context) error { return nil }
func (s *fakeServer) Port() int                   { return 0 }
func (s *fakeServer) Close() error                { return nil }
func (s *fakeServer) Next(ctx context.Context) (singleinstance.Conn, error) {
	select {
	case c := <-s.conns:
		return c, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type fakeConn struct {
	req    singleinstance.Request
	mu     sync.Mutex
	reply  string
	failed bool
	closed chan struct{}
}

func (c *fakeConn) Request() singleinstance.Request { return c.req }
func (c *fakeConn) RespondSuccess(msg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reply = msg
	return nil
}
func (c *fakeConn) RespondError(msg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reply, c.failed = msg, true
	return nil
}
func (c *fakeConn) Close() error { close(c.closed); return nil }

func fakeCapture(_ context.Context, r screenshot.Region) (*image.RGBA, error) {
	return image.NewRGBA(image.Rect(0, 0, r.Width, r.Height)), nil
}

type cancelSelector struct{}

func (cancelSelector) Select(context.Context) (screenshot.Region, bool, error) {
	return screenshot.Region{}, true, nil
}

func TestTriggerOpensEditor(t *testing.T) {
	opened := make(chan *image.RGBA, 1)
	l := New(&config.Config{}, Options{
		Selector: overlay.Fixed{Width: 20, Height: 10},
		Capture:  fakeCapture,
		Server:   newFakeServer(),
		Editor:   func(img *image.RGBA, _ screenshot.Region) { opened <- img },
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go func() { _ = l.Run(ctx) }()

	l.Trigger()
	select {
	case img := <-opened:
		if img.Bounds().Dx() != 20 {
			t.Fatalf("editor got %v", img.Bounds())
		}
	case <-ctx.Done():
		t.Fatal("editor never opened")
	}
}

func TestDelegatedFileCapture(t *testing.T) {
	dir := t.TempDir()
	srv := newFakeServer()
	l := New(&config.Config{SaveDir: dir, BaseFilename: "shot"}, Options{
		Selector: overlay.Fixed{Width: 4, Height: 4},
		Capture:  fakeCapture,
		Server:   srv,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go func() { _ = l.Run(ctx) }()

	conn := &fakeConn{req: singleinstance.Request{Mode: singleinstance.ModeFile}, closed: make(chan struct{})}
	srv.conns <- conn
	select {
	case <-conn.closed:
	case <-ctx.Done():
		t.Fatal("connection never closed")
	}
	conn.mu.Lock()
	defer conn.mu.Unlock()
	if conn.failed || conn.reply == "" {
		t.Fatalf("reply = %q failed=%v", conn.reply, conn.failed)
	}
}

func TestDelegatedCancelled(t *testing.T) {
	srv := newFakeServer()
	l := New(&config.Config{}, Options{Selector: cancelSelector{}, Capture: fakeCapture, Server: srv})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go func() { _ = l.Run(ctx) }()

	conn := &fakeConn{closed: make(chan struct{})}
	srv.conns <- conn
	<-conn.closed
	conn.mu.Lock()
	defer conn.mu.Unlock()
	if !conn.failed || conn.reply != "selection cancelled" {
		t.Fatalf("reply = %q failed=%v", conn.reply, conn.failed)
	}
}

func TestStartHotkeyRejectsBadCombo(t *testing.T) {
	l := New(nil, Options{Server: newFakeServer()})
	if _, err := l.StartHotkey("Ctrl+Bogus"); err == nil {
		t.Fatal("expected error")
	}
	if l.Deadline() != DefaultDeadline {
		t.Fatalf("deadline = %v", l.Deadline())
	}
}
