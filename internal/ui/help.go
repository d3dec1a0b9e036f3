package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"WebCanvas/internal/editor"
)

// newHelpPanel lists the keyboard shortcuts. It starts hidden.
func newHelpPanel(onClose func()) fyne.CanvasObject {
	grid := container.NewGridWithColumns(2)
	for _, b := range editor.Bindings() {
		grid.Add(widget.NewLabelWithStyle(b.Keys, fyne.TextAlignLeading, fyne.TextStyle{Monospace: true}))
		grid.Add(widget.NewLabel(b.Description))
	}
	closeButton := widget.NewButtonWithIcon("Close", theme.CancelIcon(), onClose)
	card := widget.NewCard("Keyboard shortcuts", "Press ? to toggle, Esc to close",
		container.NewVBox(grid, closeButton))
	panel := container.NewCenter(card)
	panel.Hide()
	return panel
}
