// Package gui hosts the fyne editor windows.
package gui

import (
	"image"
	"log"
	"net/url"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"snaptrace/src/config"
	"snaptrace/src/notification"
	"snaptrace/src/screenshot"
)

const appID = "io.snaptrace.editor"

// App owns the fyne application. Run must be called on the main goroutine.
type App struct {
	fyne fyne.App
	cfg  *config.Config
}

func New(cfg *config.Config) *App {
	a := app.NewWithID(appID)
	notification.Use(a)
	return newApp(a, cfg)
}

func newApp(a fyne.App, cfg *config.Config) *App {
	if cfg == nil {
		cfg = &config.Config{}
	}
	return &App{fyne: a, cfg: cfg}
}

// Run blocks in the fyne main loop. It keeps running with no windows open
// so later captures can open editors.
func (a *App) Run() {
	// The driver exits once its last window closes; a never-shown host
	// window keeps it alive between editors.
	host := a.fyne.NewWindow("SnapTrace")
	host.SetCloseIntercept(host.Hide)
	a.fyne.Lifecycle().SetOnStarted(func() { log.Printf("GUI: started") })
	a.fyne.Run()
}

func (a *App) Quit() {
	fyne.Do(a.fyne.Quit)
}

// OpenEditor opens an editor window on img. Safe from any goroutine.
func (a *App) OpenEditor(img *image.RGBA, region screenshot.Region) {
	fyne.Do(func() {
		newEditorWindow(a.fyne, a.cfg, img, region).Show()
	})
}

// OpenFolder shows dir in the platform file manager.
func (a *App) OpenFolder(dir string) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		log.Printf("GUI: bad folder %q: %v", dir, err)
		return
	}
	u := &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	if err := a.fyne.OpenURL(u); err != nil {
		log.Printf("GUI: open %s: %v", u, err)
		notification.Show("SnapTrace", "Could not open "+abs)
	}
}
