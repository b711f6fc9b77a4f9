package eventloop

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"snaptrace/src/config"
	"snaptrace/src/hotkey"
	"snaptrace/src/notification"
	"snaptrace/src/overlay"
	"snaptrace/src/screenshot"
	"snaptrace/src/session"
	"snaptrace/src/singleinstance"
	"snaptrace/src/tray"
	"snaptrace/src/worker"
)

const DefaultDeadline = 10 * time.Second

var ErrBusy = errors.New("busy, please retry")

// EditorFunc opens a capture in the annotation editor. It is called on the
// loop goroutine and must not block on the UI.
type EditorFunc func(img *image.RGBA, region screenshot.Region)

type Options struct {
	Selector overlay.Selector
	Capture  worker.CaptureFunc
	Server   singleinstance.Server
	Editor   EditorFunc
	Deadline time.Duration
}

// Loop is the single-threaded coordinator for hotkey, tray and delegated
// capture requests.
type Loop struct {
	selector       overlay.Selector
	pool           *worker.Pool
	srv            singleinstance.Server
	editor         EditorFunc
	cfg            *config.Config
	busy           bool
	results        chan result
	requests       chan struct{}
	defaultTooltip string
	deadline       time.Duration
}

type result struct {
	img    *image.RGBA
	region screenshot.Region
	err    error
	target session.ResultTarget
	closer func()
	cancel context.CancelFunc
}

type requestCallbacks struct {
	onBusy        func()
	onSelectError func(err error)
	onCancelled   func()
}

// New creates a loop. Zero Options fields fall back to the configured
// display selector, a screen grab and a TCP server.
func New(cfg *config.Config, opts Options) *Loop {
	if cfg == nil {
		cfg = &config.Config{CaptureScope: config.ScopeAll}
	}
	if opts.Selector == nil {
		opts.Selector = overlay.NewSelector(cfg.CaptureScope)
	}
	if opts.Server == nil {
		opts.Server = singleinstance.NewServer()
	}
	if opts.Deadline <= 0 {
		opts.Deadline = DefaultDeadline
	}
	return &Loop{
		selector:       opts.Selector,
		pool:           worker.New(0, opts.Capture),
		srv:            opts.Server,
		editor:         opts.Editor,
		cfg:            cfg,
		results:        make(chan result, 1),
		requests:       make(chan struct{}, 4),
		defaultTooltip: "SnapTrace",
		deadline:       opts.Deadline,
	}
}

func (l *Loop) SetDefaultTooltip(tt string) { l.defaultTooltip = tt }

func (l *Loop) setBusy(b bool) {
	l.busy = b
	if b {
		tray.UpdateTooltip("SnapTrace: capturing...")
	} else {
		tray.UpdateTooltip(l.defaultTooltip)
	}
}

// Trigger asks the loop for an editor capture. Safe from any goroutine;
// extra triggers while the queue is full are dropped.
func (l *Loop) Trigger() {
	select {
	case l.requests <- struct{}{}:
	default:
	}
}

// StartHotkey registers the global capture hotkey. The returned func
// unregisters it.
func (l *Loop) StartHotkey(text string) (func(), error) {
	combo, err := hotkey.Parse(text)
	if err != nil {
		return func() {}, fmt.Errorf("hotkey %q: %w", text, err)
	}
	return hotkey.Listen(combo, l.Trigger), nil
}

// Run starts the resident server and processes requests until ctx ends.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.srv.Start(ctx); err != nil {
		return err
	}
	defer l.srv.Close()
	if p := l.srv.Port(); p > 0 {
		log.Printf("Resident listening on 127.0.0.1:%d", p)
		tray.SetAboutExtra(fmt.Sprintf("Resident TCP port: %d", p))
	}
	defer l.pool.Close()

	reqCh := make(chan singleinstance.Conn, 4)
	go func() {
		defer close(reqCh)
		for {
			conn, err := l.srv.Next(ctx)
			if err != nil {
				return
			}
			select {
			case reqCh <- conn:
			case <-ctx.Done():
				_ = conn.Close()
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.requests:
			l.handleTrigger(ctx)
		case conn, ok := <-reqCh:
			if !ok {
				return nil
			}
			l.handleConn(ctx, conn)
		case res := <-l.results:
			l.handleResult(res)
		}
	}
}

// sinkFor maps a delegated request mode to its delivery target.
func (l *Loop) sinkFor(req singleinstance.Request) session.ResultTarget {
	switch req.Mode {
	case singleinstance.ModeClipboard:
		return session.ClipboardTarget{}
	case singleinstance.ModeFile:
		return session.FileTarget{Path: req.Path, Dir: l.cfg.SaveDir, Base: l.cfg.BaseFilename}
	}
	return session.EditorTarget{Open: l.editor}
}

func (l *Loop) handleConn(ctx context.Context, conn singleinstance.Conn) {
	target := session.DelegatedTarget{Conn: conn, Sink: l.sinkFor(conn.Request())}
	fail := func(err error) {
		_ = target.OnFailure(err)
		_ = conn.Close()
	}
	l.startRequest(ctx, target, func() { _ = conn.Close() }, requestCallbacks{
		onBusy:        func() { fail(ErrBusy) },
		onSelectError: func(err error) { fail(fmt.Errorf("select region: %w", err)) },
		onCancelled:   func() { fail(session.ErrSelectionCancelled) },
	})
}

func (l *Loop) handleTrigger(ctx context.Context) {
	log.Printf("handleTrigger: called")
	l.startRequest(ctx, session.EditorTarget{Open: l.editor}, nil, requestCallbacks{
		onBusy: func() {
			log.Printf("handleTrigger: busy, skipping")
			notification.Show("SnapTrace", "Busy, please retry")
		},
		onSelectError: func(err error) {
			log.Printf("handleTrigger: selection error: %v", err)
			notification.Show("SnapTrace", "Selection error")
		},
		onCancelled: func() {
			log.Printf("handleTrigger: selection cancelled")
		},
	})
}

func (l *Loop) handleResult(res result) {
	defer func() {
		l.setBusy(false)
		if res.cancel != nil {
			res.cancel()
		}
		if res.closer != nil {
			res.closer()
		}
	}()
	if res.err != nil {
		log.Printf("handleResult: capture error: %v", res.err)
		_ = res.target.OnFailure(res.err)
		return
	}
	msg, err := res.target.OnSuccess(res.img, res.region)
	if err != nil {
		log.Printf("handleResult: delivery error: %v", err)
		_ = res.target.OnFailure(err)
		notification.Show("SnapTrace", err.Error())
		return
	}
	log.Printf("handleResult: %s", msg)
}

func (l *Loop) startRequest(ctx context.Context, target session.ResultTarget, closer func(), callbacks requestCallbacks) {
	if l.busy {
		if callbacks.onBusy != nil {
			callbacks.onBusy()
		}
		return
	}

	region, cancelled, err := l.selector.Select(ctx)
	if err != nil {
		if callbacks.onSelectError != nil {
			callbacks.onSelectError(err)
		}
		return
	}
	if cancelled {
		if callbacks.onCancelled != nil {
			callbacks.onCancelled()
		}
		return
	}

	jobCtx, cancel := context.WithTimeout(ctx, l.deadline)
	l.setBusy(true)
	submitted := l.pool.Submit(jobCtx, region, func(img *image.RGBA, err error) {
		l.results <- result{img: img, region: region, err: err, target: target, closer: closer, cancel: cancel}
	})
	if !submitted {
		cancel()
		l.setBusy(false)
		if callbacks.onBusy != nil {
			callbacks.onBusy()
		}
	}
}

func (l *Loop) Deadline() time.Duration { return l.deadline }
