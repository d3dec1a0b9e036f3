package editor

import (
	"fmt"
	"log"
	"sync"

	"WebCanvas/internal/scene"
)

const (
	DefaultColor      = "#000000"
	DefaultBrushWidth = float32(5)
	MinBrushWidth     = float32(1)
	MaxBrushWidth     = float32(50)

	defaultRectWidth  = float32(100)
	defaultRectHeight = float32(80)
	defaultRadius     = float32(50)
	defaultStroke     = float32(2)
	placeholderText   = "Text"
)

// Style is applied to newly created shapes and the active brush.
type Style struct {
	Color      string
	BrushWidth float32
}

// Editor maps pointer and key input onto a scene according to the active tool.
type Editor struct {
	scene *scene.Scene

	mu    sync.Mutex
	tool  Tool
	style Style

	pressed bool
	dragID  string
	last    scene.Point
	moved   bool
	stroke  *scene.Shape

	// OnChange fires after every scene mutation.
	OnChange func()
	// OnToolChange fires when the active tool changes, including the
	// automatic revert to select after a shape is placed.
	OnToolChange func(Tool)
	// OnTextCreated fires when the text tool places a new text object.
	OnTextCreated func(s scene.Shape)
	// OnSelect fires when the selected object changes; id is empty when
	// nothing is selected.
	OnSelect func(id string)
}

// New wires an editor to sc. It takes over sc's event callbacks.
func New(sc *scene.Scene) *Editor {
	e := &Editor{
		scene: sc,
		tool:  ToolSelect,
		style: Style{Color: DefaultColor, BrushWidth: DefaultBrushWidth},
	}
	changed := func() {
		if e.OnChange != nil {
			e.OnChange()
		}
	}
	sc.OnObjectAdded = func(scene.Shape) { changed() }
	sc.OnObjectModified = func(scene.Shape) { changed() }
	sc.OnPathCreated = func(scene.Shape) { changed() }
	sc.OnTextChanged = func(scene.Shape) { changed() }
	sc.OnObjectRemoved = func(string) { changed() }
	sc.OnCleared = changed
	sc.OnSelection = func(id string) {
		if e.OnSelect != nil {
			e.OnSelect(id)
		}
	}
	return e
}

func (e *Editor) Scene() *scene.Scene {
	return e.scene
}

func (e *Editor) Tool() Tool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tool
}

// SetTool switches the active tool, dropping any unfinished stroke.
func (e *Editor) SetTool(t Tool) {
	if !t.Valid() {
		log.Printf("[EDITOR] Ignoring invalid tool %d", int(t))
		return
	}
	e.mu.Lock()
	if e.tool == t {
		e.mu.Unlock()
		return
	}
	e.tool = t
	e.pressed = false
	e.stroke = nil
	e.dragID = ""
	e.mu.Unlock()

	if t != ToolSelect {
		e.scene.Select("")
	}
	if e.OnToolChange != nil {
		e.OnToolChange(t)
	}
}

func (e *Editor) Style() Style {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.style
}

// SetColor sets the color used for new shapes and brush strokes.
func (e *Editor) SetColor(hex string) error {
	c, err := scene.NormalizeColor(hex)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.style.Color = c
	e.mu.Unlock()
	return nil
}

// SetBrushWidth sets the width of strokes drawn from now on, clamped to
// [MinBrushWidth, MaxBrushWidth]. Existing strokes keep their width.
func (e *Editor) SetBrushWidth(w float32) {
	w = max(MinBrushWidth, min(MaxBrushWidth, w))
	e.mu.Lock()
	e.style.BrushWidth = w
	e.mu.Unlock()
}

// PointerDown handles a primary-button press at p in canvas coordinates.
func (e *Editor) PointerDown(p scene.Point) {
	e.scene.PointerDown(p)

	e.mu.Lock()
	tool, style := e.tool, e.style
	e.pressed = true
	e.last = p
	e.moved = false
	e.dragID = ""
	e.mu.Unlock()

	switch tool {
	case ToolSelect:
		id, _ := e.scene.HitTest(p)
		e.scene.Select(id)
		e.mu.Lock()
		e.dragID = id
		e.mu.Unlock()

	case ToolRectangle:
		e.place(scene.Shape{
			Kind:        scene.KindRect,
			Left:        p.X,
			Top:         p.Y,
			Width:       defaultRectWidth,
			Height:      defaultRectHeight,
			Fill:        style.Color,
			Stroke:      style.Color,
			StrokeWidth: defaultStroke,
		})

	case ToolCircle:
		e.place(scene.Shape{
			Kind:        scene.KindCircle,
			Left:        p.X,
			Top:         p.Y,
			Radius:      defaultRadius,
			Fill:        style.Color,
			Stroke:      style.Color,
			StrokeWidth: defaultStroke,
		})

	case ToolText:
		s := e.place(scene.Shape{
			Kind:     scene.KindText,
			Left:     p.X,
			Top:      p.Y,
			Text:     placeholderText,
			FontSize: scene.DefaultFontSize,
			Fill:     style.Color,
		})
		if e.OnTextCreated != nil {
			e.OnTextCreated(s)
		}

	case ToolPen:
		e.mu.Lock()
		e.stroke = &scene.Shape{
			ID:          scene.NewID(),
			Kind:        scene.KindPath,
			Left:        p.X,
			Top:         p.Y,
			Points:      []scene.Point{p},
			Stroke:      style.Color,
			StrokeWidth: style.BrushWidth,
		}
		e.mu.Unlock()
	}
}

// PointerMove handles pointer motion while the button is held.
func (e *Editor) PointerMove(p scene.Point) {
	e.mu.Lock()
	if !e.pressed {
		e.mu.Unlock()
		return
	}
	dx, dy := p.X-e.last.X, p.Y-e.last.Y
	e.last = p
	switch {
	case e.stroke != nil:
		e.stroke.Points = append(e.stroke.Points, p)
		e.mu.Unlock()
	case e.dragID != "":
		id := e.dragID
		e.moved = e.moved || dx != 0 || dy != 0
		e.mu.Unlock()
		e.scene.Translate(id, dx, dy)
	default:
		e.mu.Unlock()
	}
}

// PointerUp finishes the gesture. Calling it without a matching
// PointerDown is a no-op.
func (e *Editor) PointerUp(p scene.Point) {
	e.mu.Lock()
	if !e.pressed {
		e.mu.Unlock()
		return
	}
	if p != e.last && (e.stroke != nil || e.dragID != "") {
		e.mu.Unlock()
		e.PointerMove(p)
		e.mu.Lock()
	}
	e.pressed = false
	stroke := e.stroke
	e.stroke = nil
	dragID, moved := e.dragID, e.moved
	e.dragID = ""
	e.mu.Unlock()

	if stroke != nil && len(stroke.Points) > 1 {
		e.scene.Add(*stroke)
	}
	if dragID != "" && moved {
		e.scene.Touch(dragID)
	}
}

// EndGesture finishes the current gesture at the last reported position.
func (e *Editor) EndGesture() {
	e.mu.Lock()
	last := e.last
	e.mu.Unlock()
	e.PointerUp(last)
}

// Drawing reports the in-progress stroke, if any, for live preview.
func (e *Editor) Drawing() (scene.Shape, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stroke == nil {
		return scene.Shape{}, false
	}
	s := *e.stroke
	s.Points = append([]scene.Point(nil), e.stroke.Points...)
	return s, true
}

// SetText updates a text object's content.
func (e *Editor) SetText(id, text string) error {
	if err := e.scene.SetText(id, text); err != nil {
		return fmt.Errorf("set text: %w", err)
	}
	return nil
}

// DeleteSelected removes the selected object and reports whether one existed.
func (e *Editor) DeleteSelected() bool {
	id := e.scene.Selected()
	if id == "" {
		return false
	}
	return e.scene.Remove(id)
}

// Clear removes every object.
func (e *Editor) Clear() {
	e.scene.Clear()
}

// place inserts s, selects it and reverts to the select tool.
func (e *Editor) place(s scene.Shape) scene.Shape {
	e.mu.Lock()
	e.pressed = false
	e.mu.Unlock()

	s = e.scene.Add(s)
	e.SetTool(ToolSelect)
	e.scene.Select(s.ID)
	return s
}
