package ui

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"WebCanvas/internal/editor"
	"WebCanvas/internal/scene"
)

// Palette is the set of swatches offered in the toolbar.
var Palette = []string{"#000000", "#ef4444", "#22c55e", "#3b82f6", "#eab308", "#a855f7", "#ffffff"}

type colorSwatch struct {
	widget.BaseWidget
	Hex      string
	OnTapped func(string)
}

func newColorSwatch(hex string, tapped func(string)) *colorSwatch {
	s := &colorSwatch{Hex: hex, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(scene.ColorOr(s.Hex, color.Black))
	rect.SetMinSize(fyne.NewSize(24, 24))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Hex)
	}
}

func toolIcon(t editor.Tool) fyne.Resource {
	switch t {
	case editor.ToolRectangle:
		return theme.CheckButtonIcon()
	case editor.ToolCircle:
		return theme.RadioButtonIcon()
	case editor.ToolText:
		return theme.DocumentIcon()
	case editor.ToolPen:
		return theme.DocumentCreateIcon()
	}
	return theme.NavigateNextIcon()
}

// toolbar holds the editor controls and keeps the active tool highlighted.
type toolbar struct {
	editor  *editor.Editor
	buttons map[editor.Tool]*widget.Button
	color   *canvas.Rectangle
	width   *widget.Label
	slider  *widget.Slider
	object  fyne.CanvasObject
}

type toolbarActions struct {
	Save, Download, ExportPDF, Clear, Share, Help func()
}

func newToolbar(ed *editor.Editor, actions toolbarActions) *toolbar {
	tb := &toolbar{editor: ed, buttons: make(map[editor.Tool]*widget.Button)}

	tools := container.NewHBox()
	for _, t := range editor.Tools() {
		t := t
		b := widget.NewButtonWithIcon(fmt.Sprintf("%s (%s)", t, t.Shortcut()), toolIcon(t), func() {
			ed.SetTool(t)
		})
		tb.buttons[t] = b
		tools.Add(b)
	}

	tb.color = canvas.NewRectangle(scene.ColorOr(ed.Style().Color, color.Black))
	tb.color.SetMinSize(fyne.NewSize(24, 24))
	onColorTapped := func(hex string) {
		if err := ed.SetColor(hex); err == nil {
			tb.color.FillColor = scene.ColorOr(hex, color.Black)
			tb.color.Refresh()
		}
	}
	swatches := container.NewHBox()
	for _, hex := range Palette {
		swatches.Add(newColorSwatch(hex, onColorTapped))
	}

	tb.width = widget.NewLabel("")
	tb.slider = widget.NewSlider(float64(editor.MinBrushWidth), float64(editor.MaxBrushWidth))
	tb.slider.Step = 1
	tb.slider.SetValue(float64(ed.Style().BrushWidth))
	tb.slider.OnChanged = func(v float64) {
		ed.SetBrushWidth(float32(v))
		tb.width.SetText(fmt.Sprintf("%.0fpx", v))
	}
	tb.width.SetText(fmt.Sprintf("%.0fpx", ed.Style().BrushWidth))
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), tb.slider)

	actionBar := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentSaveIcon(), actions.Save),
		widget.NewToolbarAction(theme.DownloadIcon(), actions.Download),
		widget.NewToolbarAction(theme.FileIcon(), actions.ExportPDF),
		widget.NewToolbarAction(theme.ContentCopyIcon(), actions.Share),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DeleteIcon(), actions.Clear),
		widget.NewToolbarAction(theme.HelpIcon(), actions.Help),
	)

	tb.object = container.NewVBox(
		container.NewHBox(widget.NewLabel("Tool:"), tools, layout.NewSpacer(), actionBar),
		container.NewHBox(
			widget.NewLabel("Color:"), tb.color, swatches,
			widget.NewSeparator(),
			widget.NewLabel("Brush:"), sliderContainer, tb.width,
		),
	)
	tb.setActive(ed.Tool())
	return tb
}

// setActive highlights the button for t.
func (tb *toolbar) setActive(t editor.Tool) {
	for tool, b := range tb.buttons {
		if tool == t {
			b.Importance = widget.HighImportance
		} else {
			b.Importance = widget.MediumImportance
		}
		b.Refresh()
	}
}
