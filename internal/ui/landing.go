package ui

import (
	"context"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const (
	createLabel   = "Create a New Canvas"
	creatingLabel = "Creating Canvas..."
	createFailed  = "Failed to create a new canvas. Please try again."
)

type landingPage struct {
	app      *App
	creating bool
	create   *widget.Button
	resume   *widget.Button
	object   fyne.CanvasObject
}

func newLandingPage(a *App) *landingPage {
	p := &landingPage{app: a}

	title := canvas.NewText("WebCanvas", theme.Color(theme.ColorNameForeground))
	title.TextSize = 36
	title.TextStyle = fyne.TextStyle{Bold: true}
	subtitle := widget.NewLabel("A simple and intuitive 2D canvas editor")
	subtitle.Alignment = fyne.TextAlignCenter

	p.create = widget.NewButtonWithIcon(createLabel, theme.ContentAddIcon(), p.onCreate)
	p.create.Importance = widget.HighImportance

	content := container.NewVBox(container.NewCenter(title), subtitle, p.create)
	if last := a.LastCanvasID(); last != "" {
		p.resume = widget.NewButtonWithIcon("Resume last canvas", theme.HistoryIcon(), func() {
			a.Navigate(CanvasPath(last))
		})
		content.Add(p.resume)
	}
	p.object = container.NewCenter(content)
	return p
}

func (p *landingPage) onCreate() {
	if p.creating {
		return
	}
	p.creating = true
	p.create.SetText(creatingLabel)
	p.create.Disable()

	go func() {
		id, err := p.app.sessions.Create(context.Background())
		fyne.Do(func() {
			if err != nil {
				log.Printf("[UI] Error creating new canvas: %v", err)
				dialog.ShowInformation("Error", createFailed, p.app.win)
				p.creating = false
				p.create.SetText(createLabel)
				p.create.Enable()
				return
			}
			p.app.SetLastCanvasID(id)
			p.app.Navigate(CanvasPath(id))
		})
	}()
}
