package gui

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/google/uuid"

	"snaptrace/src/clipboard"
	"snaptrace/src/config"
	"snaptrace/src/engine"
	"snaptrace/src/export"
	"snaptrace/src/imageio"
	"snaptrace/src/notification"
	"snaptrace/src/screenshot"
	"snaptrace/src/textedit"
)

var toolLabels = []string{"Rectangle", "Circle", "Line", "Arrow", "Pencil", "Text", "Eraser", "Counter"}

// editorWindow is one capture being annotated.
type editorWindow struct {
	id     string
	win    fyne.Window
	cfg    *config.Config
	eng    *engine.Engine
	canvas *Canvas

	tool    *widget.Select
	width   *widget.Slider
	counter *widget.Entry
	status  *widget.Label
	undo    *widget.ToolbarAction
	redo    *widget.ToolbarAction

	stop chan struct{}
}

func newEditorWindow(a fyne.App, cfg *config.Config, img *image.RGBA, region screenshot.Region) *editorWindow {
	e := &editorWindow{id: uuid.NewString(), cfg: cfg, stop: make(chan struct{})}
	e.win = a.NewWindow(fmt.Sprintf("SnapTrace - %s", region))
	e.eng = engine.New(img, engine.Options{
		MaxUndo:      cfg.MaxUndoStates,
		CounterStart: cfg.CounterStart,
		StrokeWidth:  float64(cfg.PenSize),
		Color:        cfg.Color,
		Warn:         e.warn,
	})
	e.eng.OpenEditor(img, region.Rect())
	e.canvas = NewCanvas(e.eng)
	e.canvas.OnUpdate = e.sync
	e.status = widget.NewLabel("")

	e.win.SetContent(container.NewBorder(e.toolbar(), e.status, e.quickTexts(), nil, e.canvas))
	e.win.Resize(initialSize(img))
	e.win.SetOnDropped(e.dropped)
	e.win.SetOnClosed(func() {
		close(e.stop)
		log.Printf("Editor %s: closed", e.id)
	})
	e.shortcuts()
	go e.blink()
	log.Printf("Editor %s: opened %s", e.id, region)
	return e
}

func (e *editorWindow) Show() {
	e.win.Show()
	e.win.RequestFocus()
	e.win.Canvas().Focus(e.canvas)
	e.sync()
}

func initialSize(img image.Image) fyne.Size {
	b := img.Bounds()
	w := min(float32(b.Dx()), 1280)
	h := min(float32(b.Dy()), 800)
	return fyne.NewSize(max(w, 480)+160, max(h, 320)+80)
}

func (e *editorWindow) toolbar() fyne.CanvasObject {
	e.tool = widget.NewSelect(toolLabels, func(s string) {
		for i, l := range toolLabels {
			if l == s && e.eng.Tool() != engine.Tool(i) {
				e.eng.SetTool(engine.Tool(i))
				e.canvas.update()
			}
		}
	})
	e.width = widget.NewSlider(1, 20)
	e.width.Step = 1
	e.width.SetValue(e.eng.StrokeWidth())
	e.width.OnChanged = func(v float64) { e.eng.SetStrokeWidth(v) }

	e.counter = widget.NewEntry()
	e.counter.SetText(strconv.Itoa(e.eng.CounterStart()))
	e.counter.OnSubmitted = func(s string) {
		n, err := strconv.Atoi(s)
		if err != nil {
			e.counter.SetText(strconv.Itoa(e.eng.CounterStart()))
			return
		}
		e.eng.SetCounterStart(n)
		e.sync()
	}

	e.undo = widget.NewToolbarAction(theme.ContentUndoIcon(), func() {
		e.eng.Undo()
		e.canvas.update()
	})
	e.redo = widget.NewToolbarAction(theme.ContentRedoIcon(), func() {
		e.eng.Redo()
		e.canvas.update()
	})
	bar := widget.NewToolbar(
		e.undo,
		e.redo,
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ColorPaletteIcon(), e.pickColor),
		widget.NewToolbarAction(theme.FileImageIcon(), e.importImage),
		widget.NewToolbarAction(theme.DeleteIcon(), func() {
			e.eng.DeleteSelected()
			e.canvas.update()
		}),
		widget.NewToolbarAction(theme.ZoomFitIcon(), e.canvas.Fit),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentCopyIcon(), e.copy),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), e.save),
	)
	resetCounter := widget.NewButton("Reset #", func() {
		e.eng.ResetCounter()
		e.canvas.update()
	})
	return container.NewHBox(
		e.tool,
		widget.NewLabel("Width"),
		container.NewGridWrap(fyne.NewSize(120, e.width.MinSize().Height), e.width),
		widget.NewLabel("Counter"),
		container.NewGridWrap(fyne.NewSize(60, e.counter.MinSize().Height), e.counter),
		resetCounter,
		bar,
	)
}

func (e *editorWindow) quickTexts() fyne.CanvasObject {
	texts := e.cfg.QuickTexts
	if len(texts) == 0 {
		return nil
	}
	list := widget.NewList(
		func() int { return len(texts) },
		func() fyne.CanvasObject { return widget.NewLabel("quick text") },
		func(id widget.ListItemID, o fyne.CanvasObject) { o.(*widget.Label).SetText(texts[id]) },
	)
	list.OnSelected = func(id widget.ListItemID) {
		e.eng.DropText(e.canvas.Center(), texts[id])
		list.Unselect(id)
		e.win.Canvas().Focus(e.canvas)
		e.canvas.update()
	}
	return list
}

func (e *editorWindow) shortcuts() {
	for _, r := range []rune{'z', 'y'} {
		key := fyne.KeyName(string(r - 'a' + 'A'))
		e.win.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: key, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) {
			e.canvas.Shortcut(r)
		})
	}
	e.win.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) { e.save() })
	e.win.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyC, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) { e.copy() })
	e.win.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyV, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) { e.paste() })
}

// blink drives the caret until the window closes.
func (e *editorWindow) blink() {
	t := time.NewTicker(textedit.BlinkInterval)
	defer t.Stop()
	for {
		select {
		case <-e.stop:
			return
		case <-t.C:
			fyne.Do(func() {
				if e.eng.BlinkTick() {
					e.canvas.raster.Refresh()
				}
			})
		}
	}
}

// sync mirrors engine settings into the toolbar and status line.
func (e *editorWindow) sync() {
	if label := toolLabels[e.eng.Tool()]; e.tool.Selected != label {
		e.tool.SetSelected(label)
	}
	if e.win.Canvas().Focused() != e.counter {
		e.counter.SetText(strconv.Itoa(e.eng.CounterStart()))
	}
	vp := e.eng.Viewport()
	e.status.SetText(fmt.Sprintf("%s | %s | zoom %.0f%% | next #%d",
		e.eng.Tool(), e.eng.State(), vp.Zoom*100, e.eng.NextCounter()))
}

func (e *editorWindow) pickColor() {
	picker := dialog.NewColorPicker("Colour", "Annotation colour", func(c color.Color) {
		e.eng.SetColor(color.NRGBAModel.Convert(c).(color.NRGBA))
	}, e.win)
	picker.Advanced = true
	picker.Show()
}

func (e *editorWindow) importImage() {
	d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil || r == nil {
			return
		}
		path := r.URI().Path()
		_ = r.Close()
		if e.eng.ImportImage(path) == nil {
			e.canvas.update()
		}
	}, e.win)
	d.SetFilter(storage.NewExtensionFileFilter(imageio.Extensions))
	d.Show()
}

func (e *editorWindow) dropped(_ fyne.Position, uris []fyne.URI) {
	for _, u := range uris {
		if !imageio.Supported(u.Path()) {
			e.warn("Not an image: " + u.Name())
			continue
		}
		_ = e.eng.ImportImage(u.Path())
	}
	e.canvas.update()
}

// paste drops clipboard text at the view centre.
func (e *editorWindow) paste() {
	if _, typing := e.eng.Typing(); typing {
		return
	}
	text, err := clipboard.ReadText()
	if err != nil {
		log.Printf("Editor %s: paste: %v", e.id, err)
		return
	}
	if e.eng.DropText(e.canvas.Center(), text) {
		e.canvas.update()
	}
}

func (e *editorWindow) flatten() *image.RGBA {
	e.eng.Flush()
	e.canvas.update()
	return e.eng.RenderToRaster()
}

func (e *editorWindow) save() {
	path, err := export.SaveNext(e.cfg.SaveDir, e.cfg.BaseFilename, e.flatten())
	if err != nil {
		e.warn(fmt.Sprintf("Save failed: %v", err))
		return
	}
	log.Printf("Editor %s: saved %s", e.id, path)
	notification.Show("SnapTrace", "Saved "+path)
}

func (e *editorWindow) copy() {
	if err := clipboard.WriteImage(e.flatten()); err != nil {
		e.warn(fmt.Sprintf("Copy failed: %v", err))
		return
	}
	notification.Show("SnapTrace", "Copied to clipboard")
}

func (e *editorWindow) warn(msg string) {
	log.Printf("Editor %s: %s", e.id, msg)
	dialog.ShowError(fmt.Errorf("%s", msg), e.win)
}
