package ui

import (
	"context"
	"log"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"WebCanvas/internal/config"
	"WebCanvas/internal/session"
	"WebCanvas/internal/store"
)

const (
	AppID         = "io.webcanvas.editor"
	lastCanvasKey = "lastCanvasID"
)

// App owns the window and switches it between the landing and editor pages.
type App struct {
	fyneApp  fyne.App
	win      fyne.Window
	cfg      config.Config
	sessions *session.Manager

	mu     sync.Mutex
	route  Route
	editor *editorPage
}

// NewApp builds the main window on a.
func NewApp(a fyne.App, cfg config.Config, st store.Store) *App {
	w := a.NewWindow("WebCanvas")
	w.Resize(fyne.NewSize(1280, 900))

	ui := &App{
		fyneApp:  a,
		win:      w,
		cfg:      cfg,
		sessions: session.NewManager(st, cfg.Store.Timeout.Duration, cfg.Editor.AutosaveInterval.Duration),
	}

	w.Canvas().SetOnTypedKey(ui.typedKey)
	w.Canvas().SetOnTypedRune(ui.typedRune)
	for _, k := range []fyne.KeyName{fyne.KeyS, fyne.KeyD, fyne.KeyK} {
		w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: k, Modifier: fyne.KeyModifierShortcutDefault}, ui.shortcut)
	}
	w.SetOnClosed(func() { ui.leave(true) })
	return ui
}

// RunApp opens the editor window at target and blocks until it closes.
func RunApp(cfg config.Config, st store.Store, target string) {
	ui := NewApp(app.NewWithID(AppID), cfg, st)
	ui.Navigate(target)
	ui.win.ShowAndRun()
}

// Navigate switches the window to target, a route path or deep link.
func (a *App) Navigate(target string) {
	route := ParseRoute(target)
	a.leave(false)

	a.mu.Lock()
	a.route = route
	a.mu.Unlock()
	log.Printf("[UI] Navigating to %s", route.Path())

	switch route.Page {
	case PageEditor:
		a.win.SetTitle("WebCanvas - " + route.CanvasID)
		a.openEditor(route.CanvasID)
	default:
		a.win.SetTitle("WebCanvas")
		a.win.SetContent(newLandingPage(a).object)
	}
}

// Route returns the page currently shown.
func (a *App) Route() Route {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.route
}

// LastCanvasID is the canvas created most recently on this machine.
func (a *App) LastCanvasID() string {
	return a.fyneApp.Preferences().String(lastCanvasKey)
}

func (a *App) SetLastCanvasID(id string) {
	a.fyneApp.Preferences().SetString(lastCanvasKey, id)
}

func (a *App) openEditor(id string) {
	progress := widget.NewProgressBarInfinite()
	a.win.SetContent(container.NewCenter(container.NewVBox(widget.NewLabel("Loading canvas..."), progress)))

	go func() {
		sess, err := a.sessions.Open(context.Background(), id)
		fyne.Do(func() {
			if a.Route() != (Route{Page: PageEditor, CanvasID: id}) {
				return
			}
			if err != nil {
				log.Printf("[UI] Cannot open canvas %s: %v", id, err)
				dialog.ShowError(err, a.win)
				a.Navigate("/")
				return
			}
			page := newEditorPage(a, sess)
			a.mu.Lock()
			a.editor = page
			a.mu.Unlock()
			a.win.SetContent(page.object)
		})
	}()
}

// leave stops the current editor page, saving pending changes. With wait
// set the save finishes before leave returns.
func (a *App) leave(wait bool) {
	a.mu.Lock()
	page := a.editor
	a.editor = nil
	a.mu.Unlock()
	if page != nil {
		page.close(wait)
	}
}

func (a *App) currentEditor() *editorPage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.editor
}

func (a *App) typedKey(ev *fyne.KeyEvent) {
	if page := a.currentEditor(); page != nil {
		page.handleKey(string(ev.Name), false)
	}
}

func (a *App) typedRune(r rune) {
	if r != '?' {
		return
	}
	if page := a.currentEditor(); page != nil {
		page.handleKey(string(r), false)
	}
}

func (a *App) shortcut(s fyne.Shortcut) {
	cs, ok := s.(*desktop.CustomShortcut)
	if !ok {
		return
	}
	if page := a.currentEditor(); page != nil {
		page.handleKey(string(cs.KeyName), true)
	}
}
