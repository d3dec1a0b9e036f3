package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"WebCanvas/internal/editor"
	"WebCanvas/internal/export"
	"WebCanvas/internal/scene"
	"WebCanvas/internal/session"
)

const loadFailedNotice = "Could not load the saved canvas. Started a blank one; saving will overwrite it."

type editorPage struct {
	app     *App
	session *session.Session
	editor  *editor.Editor
	canvas  *CanvasWidget
	toolbar *toolbar
	status  *widget.Label
	help    fyne.CanvasObject
	object  fyne.CanvasObject

	width, height float64
	cancel        context.CancelFunc
	done          chan struct{}
}

func newEditorPage(a *App, sess *session.Session) *editorPage {
	cfg := a.cfg.Editor
	p := &editorPage{
		app:     a,
		session: sess,
		editor:  editor.New(sess.Scene),
		status:  widget.NewLabel(session.StatusIdle.String()),
		width:   float64(cfg.Width),
		height:  float64(cfg.Height),
		done:    make(chan struct{}),
	}

	p.canvas = NewCanvasWidget(p.editor, cfg.Width, cfg.Height)
	p.canvas.OnEditText = p.editText
	p.toolbar = newToolbar(p.editor, toolbarActions{
		Save:      p.save,
		Download:  p.download,
		ExportPDF: p.exportPDF,
		Clear:     p.confirmClear,
		Share:     p.share,
		Help:      p.toggleHelp,
	})
	p.help = newHelpPanel(p.closeHelp)

	p.editor.OnChange = func() {
		sess.Saver.MarkDirty()
		p.canvas.Refresh()
	}
	p.editor.OnToolChange = func(t editor.Tool) {
		p.toolbar.setActive(t)
		p.canvas.Refresh()
	}
	p.editor.OnTextCreated = p.editText
	p.editor.OnSelect = func(string) { p.canvas.Refresh() }
	sess.Saver.OnStatus(func(st session.Status, err error) {
		fyne.Do(func() { p.setStatus(st, err) })
	})

	if sess.LoadErr != nil {
		p.status.SetText(loadFailedNotice)
	}

	idLabel := widget.NewLabel("Canvas " + sess.ID)
	footer := container.NewBorder(nil, nil, idLabel, nil, p.status)
	board := container.NewStack(container.NewScroll(p.canvas), p.help)
	p.object = container.NewBorder(p.toolbar.object, footer, nil, nil, board)

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	go func() {
		defer close(p.done)
		sess.Saver.Run(ctx)
	}()
	return p
}

func (p *editorPage) setStatus(st session.Status, err error) {
	switch {
	case st == session.StatusFailed && err != nil:
		p.status.SetText("Save failed: " + err.Error())
	case st == session.StatusSaving:
		p.status.SetText("Saving...")
	default:
		p.status.SetText(st.String())
	}
}

func (p *editorPage) handleKey(key string, shortcut bool) {
	switch p.editor.HandleKey(key, shortcut) {
	case editor.CommandSave:
		p.save()
	case editor.CommandDownload:
		p.download()
	case editor.CommandClear:
		p.confirmClear()
	case editor.CommandToggleHelp:
		p.toggleHelp()
	case editor.CommandCloseHelp:
		p.closeHelp()
	}
}

func (p *editorPage) save() {
	go func() {
		err := p.session.Saver.Save(context.Background())
		switch {
		case errors.Is(err, session.ErrSaveInProgress):
			fyne.Do(func() { p.status.SetText("Save already in progress") })
		case err != nil:
			fyne.Do(func() { dialog.ShowError(fmt.Errorf("save failed: %w", err), p.app.win) })
		}
	}()
}

func (p *editorPage) download() {
	p.saveFile(export.FileName(p.session.ID), func(w io.Writer) error {
		return export.PNG(w, p.editor.Scene().Snapshot(), p.width, p.height, p.app.cfg.Editor.ExportScale)
	})
}

func (p *editorPage) exportPDF() {
	p.saveFile(export.PDFFileName(p.session.ID), func(w io.Writer) error {
		return export.PDF(w, p.editor.Scene().Snapshot(), p.width, p.height)
	})
}

func (p *editorPage) saveFile(name string, write func(io.Writer) error) {
	d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, p.app.win)
			return
		}
		if wc == nil {
			return
		}
		defer wc.Close()
		if err := write(wc); err != nil {
			log.Printf("[UI] Export of %s failed: %v", name, err)
			dialog.ShowError(err, p.app.win)
			return
		}
		log.Printf("[UI] Exported %s", wc.URI())
		p.status.SetText("Exported " + name)
	}, p.app.win)
	d.SetFileName(name)
	d.Show()
}

func (p *editorPage) confirmClear() {
	dialog.ShowConfirm("Clear canvas", "Remove every object from the canvas?", func(ok bool) {
		if ok {
			p.editor.Clear()
		}
	}, p.app.win)
}

func (p *editorPage) share() {
	link := ShareLink(p.session.ID)
	p.app.fyneApp.Clipboard().SetContent(link)
	p.status.SetText("Copied " + link)
}

func (p *editorPage) toggleHelp() {
	if p.help.Visible() {
		p.help.Hide()
	} else {
		p.help.Show()
	}
}

func (p *editorPage) closeHelp() {
	p.help.Hide()
}

func (p *editorPage) editText(s scene.Shape) {
	entry := widget.NewEntry()
	entry.SetText(s.Text)
	items := []*widget.FormItem{widget.NewFormItem("Text", entry)}
	dialog.ShowForm("Edit text", "OK", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		if err := p.editor.SetText(s.ID, entry.Text); err != nil {
			dialog.ShowError(err, p.app.win)
		}
	}, p.app.win)
}

// close stops autosave and writes pending changes. With wait set it
// blocks until the final save returns.
func (p *editorPage) close(wait bool) {
	p.cancel()
	<-p.done

	saver := p.session.Saver
	saver.OnStatus(nil)
	if !saver.Dirty() {
		return
	}
	flush := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := saver.Save(ctx); err != nil {
			log.Printf("[UI] Final save of canvas %s failed: %v", p.session.ID, err)
		}
	}
	if wait {
		flush()
		return
	}
	go flush()
}
