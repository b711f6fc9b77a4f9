package tray

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/getlantern/systray"
)

// Config describes the tray menu. Callbacks run on the systray goroutine.
type Config struct {
	Title        string
	Tooltip      string
	OnCapture    func()
	OnOpenFolder func()
	OnExit       func()
}

type Tray struct {
	cfg Config
}

var (
	mu          sync.Mutex
	ready       bool
	aboutHotkey string
	aboutExtra  string
)

func New(cfg Config) (*Tray, error) {
	if cfg.Title == "" {
		cfg.Title = "SnapTrace"
	}
	if cfg.Tooltip == "" {
		cfg.Tooltip = cfg.Title
	}
	return &Tray{cfg: cfg}, nil
}

// Run blocks until Destroy or the Quit item.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) Destroy() {
	systray.Quit()
}

func (t *Tray) onReady() {
	if icon, err := Icon(); err == nil {
		systray.SetIcon(icon)
	} else {
		log.Printf("Tray: icon render failed: %v", err)
	}
	systray.SetTitle(t.cfg.Title)
	systray.SetTooltip(t.cfg.Tooltip)

	mCapture := systray.AddMenuItem("Capture", "Capture the screen and annotate")
	mFolder := systray.AddMenuItem("Open Save Folder", "Show saved screenshots")
	mAbout := systray.AddMenuItem("About", "About SnapTrace")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Quit SnapTrace")

	mu.Lock()
	ready = true
	mu.Unlock()

	go func() {
		for {
			select {
			case <-mCapture.ClickedCh:
				if t.cfg.OnCapture != nil {
					t.cfg.OnCapture()
				}
			case <-mFolder.ClickedCh:
				if t.cfg.OnOpenFolder != nil {
					t.cfg.OnOpenFolder()
				}
			case <-mAbout.ClickedCh:
				log.Printf("Tray: %s", strings.ReplaceAll(AboutText(), "\n", "; "))
				systray.SetTooltip(AboutText())
			case <-mQuit.ClickedCh:
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {
	mu.Lock()
	ready = false
	mu.Unlock()
	if t.cfg.OnExit != nil {
		t.cfg.OnExit()
	}
}

// UpdateTooltip changes the tooltip of a running tray. It is a no-op
// before the tray is ready.
func UpdateTooltip(text string) {
	mu.Lock()
	defer mu.Unlock()
	if ready {
		systray.SetTooltip(text)
	}
}

func SetAboutHotkey(combo string) {
	mu.Lock()
	defer mu.Unlock()
	aboutHotkey = combo
}

func SetAboutExtra(extra string) {
	mu.Lock()
	defer mu.Unlock()
	aboutExtra = extra
}

func AboutText() string {
	mu.Lock()
	defer mu.Unlock()
	var b strings.Builder
	b.WriteString("SnapTrace - capture and annotate")
	if aboutHotkey != "" {
		fmt.Fprintf(&b, "\nHotkey: %s", aboutHotkey)
	}
	if aboutExtra != "" {
		b.WriteString("\n" + aboutExtra)
	}
	return b.String()
}
