package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"snaptrace/src/config"
	"snaptrace/src/eventloop"
	"snaptrace/src/gui"
	"snaptrace/src/logutil"
	"snaptrace/src/overlay"
	"snaptrace/src/runtimeinit"
	"snaptrace/src/screenshot"
	"snaptrace/src/session"
	"snaptrace/src/singleinstance"
	"snaptrace/src/tray"
)

type mainOptions struct {
	capture    string
	out        string
	hotkey     string
	saveDir    string
	configPath string
}

func main() {
	enableDPIAwareness()
	// fyne needs the main goroutine pinned to the main OS thread.
	runtime.LockOSThread()

	if err := runWithArgs(normalizeLegacyArgs(os.Args)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"snaptrace"}
	}
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "snaptrace",
		Short:         "Capture the screen and annotate it",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(*opts)
		},
	}
	cmd.Flags().StringVar(&opts.capture, "capture", "", "Capture once and exit: editor, clipboard or file")
	cmd.Flags().StringVar(&opts.out, "out", "", "Output PNG for --capture file (default: next free name in the save folder)")
	cmd.Flags().StringVar(&opts.hotkey, "hotkey", "", "Override the capture hotkey")
	cmd.Flags().StringVar(&opts.saveDir, "save-dir", "", "Override the save folder")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to a .env style config file")
	return cmd
}

var legacyFlags = []string{"capture", "out", "hotkey", "save-dir", "config"}

// normalizeLegacyArgs maps single-dash long flags (-capture) to cobra's
// double-dash form.
func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	normalized := make([]string, len(args))
	copy(normalized, args)
	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, f := range legacyFlags {
			if arg == "-"+f || strings.HasPrefix(arg, "-"+f+"=") {
				normalized[i] = "-" + arg
				break
			}
		}
	}
	return normalized
}

func (o mainOptions) loadOptions() config.LoadOptions {
	return config.LoadOptions{EnvPath: o.configPath, HotkeyOverride: o.hotkey, SaveDirOverride: o.saveDir}
}

func parseCaptureMode(s string) (singleinstance.Request, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "editor":
		return singleinstance.Request{Mode: singleinstance.ModeEditor}, nil
	case "clipboard":
		return singleinstance.Request{Mode: singleinstance.ModeClipboard}, nil
	case "file":
		return singleinstance.Request{Mode: singleinstance.ModeFile}, nil
	}
	return singleinstance.Request{}, fmt.Errorf("unknown capture mode %q (want editor, clipboard or file)", s)
}

func run(opts mainOptions) error {
	if opts.capture != "" {
		req, err := parseCaptureMode(opts.capture)
		if err != nil {
			return err
		}
		req.Path = opts.out
		// Load the config early so SINGLEINSTANCE_PORT_* apply to the scan.
		_, _ = config.LoadWithOptions(opts.loadOptions())
		var fallbackErr error
		handleCaptureWithDelegation(req, singleinstance.NewClient(), func() {
			fallbackErr = runStandalone(opts, req)
		})
		return fallbackErr
	}
	return runResident(opts, false)
}

type captureClient interface {
	TryCapture(ctx context.Context, req singleinstance.Request) (bool, string, error)
}

// handleCaptureWithDelegation hands req to a resident instance and calls
// fallback when there is none or delegation fails.
func handleCaptureWithDelegation(req singleinstance.Request, client captureClient, fallback func()) {
	delegated, msg, err := client.TryCapture(context.Background(), req)
	if err != nil {
		log.Printf("Delegation error: %v; falling back to standalone", err)
		fallback()
		return
	}
	if delegated {
		log.Printf("Delegated to resident: %s", msg)
		if msg != "" {
			fmt.Println(msg)
		}
		return
	}
	log.Printf("No resident detected, running standalone")
	fallback()
}

// runStandalone captures without a resident. Editor captures start a
// resident that opens the editor immediately.
func runStandalone(opts mainOptions, req singleinstance.Request) error {
	if req.Mode == singleinstance.ModeEditor {
		return runResident(opts, true)
	}
	cfg, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions:      opts.loadOptions(),
		SetupLogging:     setupLogging,
		RequireDisplay:   true,
		RequireClipboard: req.Mode == singleinstance.ModeClipboard,
	})
	if err != nil {
		return err
	}
	var target session.ResultTarget = session.ClipboardTarget{}
	if req.Mode == singleinstance.ModeFile {
		target = session.FileTarget{Path: req.Path, Dir: cfg.SaveDir, Base: cfg.BaseFilename}
	}
	res, err := session.Execute(context.Background(), session.Options{
		SelectRegion: overlay.NewSelector(cfg.CaptureScope).Select,
		Target:       target,
	})
	if err != nil {
		return err
	}
	fmt.Println(res.Message)
	return nil
}

func setupLogging(enableFileLogging bool) {
	logutil.Setup(enableFileLogging, "")
}

// preflight fails fast when another resident already owns the start port.
func preflight() error {
	startPort, _ := singleinstance.PortRange()
	addr := fmt.Sprintf("127.0.0.1:%d", startPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if port, ok := singleinstance.DetectResidentPort(ctx); ok {
			return fmt.Errorf("snaptrace is already running on port %d", port)
		}
		return fmt.Errorf("port %d is in use: %w", startPort, err)
	}
	// Released so the event loop can bind it.
	_ = listener.Close()
	log.Printf("Pre-flight: port %d free", startPort)
	return nil
}

func runResident(opts mainOptions, captureNow bool) error {
	_, _ = config.LoadWithOptions(opts.loadOptions())
	if err := preflight(); err != nil {
		return err
	}
	cfg, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions:       opts.loadOptions(),
		SetupLogging:      setupLogging,
		RequireDisplay:    true,
		ShowBlockingError: true,
	})
	if err != nil {
		return err
	}
	logDisplays()
	log.Printf("SnapTrace initialized; hotkey %s, saving to %s", cfg.Hotkey, cfg.SaveDir)
	tray.SetAboutHotkey(cfg.Hotkey)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := gui.New(cfg)
	loop := eventloop.New(cfg, eventloop.Options{Editor: app.OpenEditor})
	tooltip := fmt.Sprintf("SnapTrace - Press %s to capture", cfg.Hotkey)
	loop.SetDefaultTooltip(tooltip)

	trayIcon, err := tray.New(tray.Config{
		Title:        "SnapTrace",
		Tooltip:      tooltip,
		OnCapture:    loop.Trigger,
		OnOpenFolder: func() { app.OpenFolder(cfg.SaveDir) },
		OnExit:       cancel,
	})
	if err != nil {
		return err
	}
	go trayIcon.Run()
	defer trayIcon.Destroy()

	stopHotkey, err := loop.StartHotkey(cfg.Hotkey)
	if err != nil {
		log.Printf("Hotkey disabled: %v", err)
	}
	defer stopHotkey()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return loop.Run(gctx) })
	g.Go(func() error {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(ch)
		select {
		case <-ch:
			cancel()
		case <-gctx.Done():
		}
		return nil
	})
	go func() {
		<-gctx.Done()
		app.Quit()
	}()
	if captureNow {
		go func() {
			// Give the loop a moment to bind before the first capture.
			time.Sleep(200 * time.Millisecond)
			loop.Trigger()
		}()
	}

	app.Run()
	cancel()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("event loop stopped: %v", err)
		return err
	}
	return nil
}

func logDisplays() {
	ds, err := screenshot.Displays()
	if err != nil {
		log.Printf("MONITOR: %v", err)
		return
	}
	for i, d := range ds {
		log.Printf("MONITOR: display %d %s", i, screenshot.RegionOf(d))
	}
	if vb, err := screenshot.VirtualBounds(); err == nil {
		log.Printf("MONITOR: virtual screen %s", screenshot.RegionOf(vb))
	}
}
