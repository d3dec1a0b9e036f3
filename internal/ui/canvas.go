package ui

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"WebCanvas/internal/editor"
	"WebCanvas/internal/scene"
)

var selectionColor = color.NRGBA{R: 59, G: 130, B: 246, A: 255}

// CanvasWidget shows a scene and feeds pointer input to an editor.
type CanvasWidget struct {
	widget.BaseWidget
	editor *editor.Editor
	size   fyne.Size

	mu      sync.Mutex
	pressed bool

	// OnEditText is called when a text object is double-tapped.
	OnEditText func(s scene.Shape)
}

var _ fyne.Widget = (*CanvasWidget)(nil)
var _ fyne.Draggable = (*CanvasWidget)(nil)
var _ fyne.DoubleTappable = (*CanvasWidget)(nil)
var _ desktop.Mouseable = (*CanvasWidget)(nil)

// NewCanvasWidget returns a widget of the given logical canvas size.
func NewCanvasWidget(ed *editor.Editor, width, height float32) *CanvasWidget {
	c := &CanvasWidget{editor: ed, size: fyne.NewSize(width, height)}
	c.ExtendBaseWidget(c)
	return c
}

func toPoint(p fyne.Position) scene.Point {
	return scene.Point{X: p.X, Y: p.Y}
}

func (c *CanvasWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	c.mu.Lock()
	c.pressed = true
	c.mu.Unlock()
	c.editor.PointerDown(toPoint(e.Position))
	c.Refresh()
}

func (c *CanvasWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary || !c.release() {
		return
	}
	c.editor.PointerUp(toPoint(e.Position))
	c.Refresh()
}

func (c *CanvasWidget) Dragged(e *fyne.DragEvent) {
	c.mu.Lock()
	pressed := c.pressed
	c.mu.Unlock()
	if !pressed {
		return
	}
	c.editor.PointerMove(toPoint(e.Position))
	c.Refresh()
}

// DragEnd finishes the gesture where the last drag event left it. The
// toolkit may deliver MouseUp as well; whichever comes first wins.
func (c *CanvasWidget) DragEnd() {
	if !c.release() {
		return
	}
	c.editor.EndGesture()
	c.Refresh()
}

func (c *CanvasWidget) DoubleTapped(e *fyne.PointEvent) {
	if c.editor.Tool() != editor.ToolSelect || c.OnEditText == nil {
		return
	}
	id, ok := c.editor.Scene().HitTest(toPoint(e.Position))
	if !ok {
		return
	}
	if s, ok := c.editor.Scene().Get(id); ok && s.Kind == scene.KindText {
		c.OnEditText(s)
	}
}

// release clears the pressed flag and reports whether it was set.
func (c *CanvasWidget) release() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	was := c.pressed
	c.pressed = false
	return was
}

func (c *CanvasWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &canvasRenderer{canvas: c, background: canvas.NewRectangle(color.White)}
	r.rebuild()
	return r
}

type canvasRenderer struct {
	canvas     *CanvasWidget
	background *canvas.Rectangle
	objects    []fyne.CanvasObject
}

func (r *canvasRenderer) rebuild() {
	sc := r.canvas.editor.Scene()
	r.background.FillColor = scene.ColorOr(sc.Background(), color.White)
	r.background.Resize(r.canvas.size)

	objects := []fyne.CanvasObject{r.background}
	for _, s := range sc.Shapes() {
		objects = append(objects, shapeObjects(s)...)
	}
	if s, ok := r.canvas.editor.Drawing(); ok {
		objects = append(objects, shapeObjects(s)...)
	}
	if id := sc.Selected(); id != "" {
		if s, ok := sc.Get(id); ok {
			objects = append(objects, selectionOutline(s.Bounds()))
		}
	}
	r.objects = objects
}

func (r *canvasRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *canvasRenderer) Refresh() {
	r.rebuild()
	canvas.Refresh(r.canvas)
}

func (r *canvasRenderer) Layout(fyne.Size) {
	r.background.Resize(r.canvas.size)
}

func (r *canvasRenderer) MinSize() fyne.Size {
	return r.canvas.size
}

func (r *canvasRenderer) Destroy() {}

// shapeObjects converts a shape into Fyne canvas objects.
func shapeObjects(s scene.Shape) []fyne.CanvasObject {
	switch s.Kind {
	case scene.KindRect:
		rect := canvas.NewRectangle(scene.ColorOr(s.Fill, color.Transparent))
		rect.StrokeColor = scene.ColorOr(s.Stroke, color.Transparent)
		rect.StrokeWidth = s.StrokeWidth
		rect.Move(fyne.NewPos(s.Left, s.Top))
		rect.Resize(fyne.NewSize(s.Width, s.Height))
		return []fyne.CanvasObject{rect}

	case scene.KindCircle:
		circle := canvas.NewCircle(scene.ColorOr(s.Fill, color.Transparent))
		circle.StrokeColor = scene.ColorOr(s.Stroke, color.Transparent)
		circle.StrokeWidth = s.StrokeWidth
		circle.Move(fyne.NewPos(s.Left, s.Top))
		circle.Resize(fyne.NewSize(2*s.Radius, 2*s.Radius))
		return []fyne.CanvasObject{circle}

	case scene.KindText:
		text := canvas.NewText(s.Text, scene.ColorOr(s.Fill, color.Black))
		text.TextSize = s.FontSize
		if text.TextSize <= 0 {
			text.TextSize = scene.DefaultFontSize
		}
		text.Move(fyne.NewPos(s.Left, s.Top))
		text.Resize(text.MinSize())
		return []fyne.CanvasObject{text}

	case scene.KindPath:
		col := scene.ColorOr(s.Stroke, color.Black)
		segments := make([]fyne.CanvasObject, 0, len(s.Points))
		for i := 1; i < len(s.Points); i++ {
			line := canvas.NewLine(col)
			line.StrokeWidth = s.StrokeWidth
			line.Position1 = fyne.NewPos(s.Points[i-1].X, s.Points[i-1].Y)
			line.Position2 = fyne.NewPos(s.Points[i].X, s.Points[i].Y)
			segments = append(segments, line)
		}
		return segments
	}
	return nil
}

func selectionOutline(b scene.Rect) fyne.CanvasObject {
	outline := canvas.NewRectangle(color.Transparent)
	outline.StrokeColor = selectionColor
	outline.StrokeWidth = 1
	outline.Move(fyne.NewPos(b.Min.X-4, b.Min.Y-4))
	outline.Resize(fyne.NewSize(b.Width()+8, b.Height()+8))
	return outline
}
