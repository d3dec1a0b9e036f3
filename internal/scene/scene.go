package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"sync"
)

const (
	SnapshotVersion   = "1"
	DefaultBackground = "#ffffff"
	DefaultFontSize   = float32(24)
)

// Snapshot is the serialized form of a scene.
type Snapshot struct {
	Version    string  `json:"version"`
	Background string  `json:"background"`
	Objects    []Shape `json:"objects"`
}

// Scene is the live shape tree of one canvas. Shapes are kept in z-order,
// last on top. All methods are safe for concurrent use; event callbacks
// run after the lock is released.
type Scene struct {
	mu         sync.RWMutex
	shapes     []*Shape
	selected   string
	background string

	OnPointerDown    func(p Point)
	OnObjectAdded    func(s Shape)
	OnObjectModified func(s Shape)
	OnPathCreated    func(s Shape)
	OnTextChanged    func(s Shape)
	OnObjectRemoved  func(id string)
	OnCleared        func()
	OnSelection      func(id string)
}

func New() *Scene {
	return &Scene{background: DefaultBackground}
}

// PointerDown reports a press in canvas coordinates to listeners.
func (sc *Scene) PointerDown(p Point) {
	if sc.OnPointerDown != nil {
		sc.OnPointerDown(p)
	}
}

// Add appends s on top. A missing id is filled in.
func (sc *Scene) Add(s Shape) Shape {
	if s.ID == "" {
		s.ID = NewID()
	}
	stored := s.clone()
	sc.mu.Lock()
	sc.shapes = append(sc.shapes, &stored)
	sc.mu.Unlock()

	if s.Kind == KindPath && sc.OnPathCreated != nil {
		sc.OnPathCreated(s)
	} else if sc.OnObjectAdded != nil {
		sc.OnObjectAdded(s)
	}
	return s
}

// Get returns a copy of the shape with id.
func (sc *Scene) Get(id string) (Shape, bool) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	if s := sc.find(id); s != nil {
		return s.clone(), true
	}
	return Shape{}, false
}

// Move translates a shape by (dx, dy) and reports it as modified.
func (sc *Scene) Move(id string, dx, dy float32) bool {
	sc.mu.Lock()
	s := sc.find(id)
	if s == nil {
		sc.mu.Unlock()
		return false
	}
	s.translate(dx, dy)
	moved := s.clone()
	sc.mu.Unlock()

	if sc.OnObjectModified != nil {
		sc.OnObjectModified(moved)
	}
	return true
}

// Translate moves a shape without emitting an event. Used while a drag is
// still in progress; the caller reports the final position with Touch.
func (sc *Scene) Translate(id string, dx, dy float32) bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	s := sc.find(id)
	if s == nil {
		return false
	}
	s.translate(dx, dy)
	return true
}

// Touch emits object-modified for id without changing it.
func (sc *Scene) Touch(id string) {
	s, ok := sc.Get(id)
	if ok && sc.OnObjectModified != nil {
		sc.OnObjectModified(s)
	}
}

// SetText replaces the text of a text shape.
func (sc *Scene) SetText(id, text string) error {
	sc.mu.Lock()
	s := sc.find(id)
	if s == nil {
		sc.mu.Unlock()
		return fmt.Errorf("no shape %s", id)
	}
	if s.Kind != KindText {
		sc.mu.Unlock()
		return fmt.Errorf("shape %s is %s, not text", id, s.Kind)
	}
	if s.Text == text {
		sc.mu.Unlock()
		return nil
	}
	s.Text = text
	changed := s.clone()
	sc.mu.Unlock()

	if sc.OnTextChanged != nil {
		sc.OnTextChanged(changed)
	}
	return nil
}

// Remove deletes the shape with id.
func (sc *Scene) Remove(id string) bool {
	sc.mu.Lock()
	idx := -1
	for i, s := range sc.shapes {
		if s.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		sc.mu.Unlock()
		return false
	}
	sc.shapes = append(sc.shapes[:idx], sc.shapes[idx+1:]...)
	if sc.selected == id {
		sc.selected = ""
	}
	sc.mu.Unlock()

	if sc.OnObjectRemoved != nil {
		sc.OnObjectRemoved(id)
	}
	return true
}

// Clear removes every shape and resets the background.
func (sc *Scene) Clear() {
	sc.mu.Lock()
	sc.shapes = nil
	sc.selected = ""
	sc.background = DefaultBackground
	sc.mu.Unlock()

	if sc.OnCleared != nil {
		sc.OnCleared()
	}
}

// Select marks id as the active object. An empty id clears the selection.
func (sc *Scene) Select(id string) {
	sc.mu.Lock()
	if id != "" && sc.find(id) == nil {
		id = ""
	}
	changed := sc.selected != id
	sc.selected = id
	sc.mu.Unlock()

	if changed && sc.OnSelection != nil {
		sc.OnSelection(id)
	}
}

func (sc *Scene) Selected() string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.selected
}

// HitTest returns the id of the top-most shape whose bounds contain p.
func (sc *Scene) HitTest(p Point) (string, bool) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	for i := len(sc.shapes) - 1; i >= 0; i-- {
		if sc.shapes[i].Bounds().Contains(p) {
			return sc.shapes[i].ID, true
		}
	}
	return "", false
}

// Shapes returns copies of all shapes in z-order.
func (sc *Scene) Shapes() []Shape {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	out := make([]Shape, 0, len(sc.shapes))
	for _, s := range sc.shapes {
		out = append(out, s.clone())
	}
	return out
}

func (sc *Scene) Len() int {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return len(sc.shapes)
}

func (sc *Scene) Background() string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.background
}

// Bounds returns the union of all shape bounds, or false for an empty scene.
func (sc *Scene) Bounds() (Rect, bool) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	if len(sc.shapes) == 0 {
		return Rect{}, false
	}
	r := sc.shapes[0].Bounds()
	for _, s := range sc.shapes[1:] {
		r = r.Union(s.Bounds())
	}
	return r, true
}

// Snapshot captures the current state.
func (sc *Scene) Snapshot() Snapshot {
	return Snapshot{
		Version:    SnapshotVersion,
		Background: sc.Background(),
		Objects:    sc.Shapes(),
	}
}

func (sc *Scene) MarshalJSON() ([]byte, error) {
	return json.Marshal(sc.Snapshot())
}

// Load replaces the scene with data. Empty data or JSON null yields an
// empty scene. No events are emitted.
func (sc *Scene) Load(data []byte) error {
	snap, err := DecodeSnapshot(data)
	if err != nil {
		return err
	}
	shapes := make([]*Shape, 0, len(snap.Objects))
	for i := range snap.Objects {
		s := snap.Objects[i].clone()
		shapes = append(shapes, &s)
	}

	sc.mu.Lock()
	sc.shapes = shapes
	sc.selected = ""
	sc.background = snap.Background
	sc.mu.Unlock()

	log.Printf("[SCENE] Loaded %d objects", len(shapes))
	return nil
}

// DecodeSnapshot parses and validates a serialized scene.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	snap := Snapshot{Version: SnapshotVersion, Background: DefaultBackground}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return snap, nil
	}
	if err := json.Unmarshal(trimmed, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version != SnapshotVersion {
		return Snapshot{}, fmt.Errorf("unsupported snapshot version %q", snap.Version)
	}
	if snap.Background == "" {
		snap.Background = DefaultBackground
	}
	seen := make(map[string]bool, len(snap.Objects))
	for i := range snap.Objects {
		if err := snap.Objects[i].Validate(); err != nil {
			return Snapshot{}, err
		}
		if seen[snap.Objects[i].ID] {
			return Snapshot{}, fmt.Errorf("duplicate shape id %s", snap.Objects[i].ID)
		}
		seen[snap.Objects[i].ID] = true
	}
	return snap, nil
}

func (sc *Scene) find(id string) *Shape {
	for _, s := range sc.shapes {
		if s.ID == id {
			return s
		}
	}
	return nil
}
