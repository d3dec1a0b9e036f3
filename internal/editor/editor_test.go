package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WebCanvas/internal/scene"
)

func newEditor() (*Editor, *scene.Scene, *int) {
	sc := scene.New()
	e := New(sc)
	changes := 0
	e.OnChange = func() { changes++ }
	return e, sc, &changes
}

func drag(e *Editor, pts ...scene.Point) {
	e.PointerDown(pts[0])
	for _, p := range pts[1:] {
		e.PointerMove(p)
	}
	e.PointerUp(pts[len(pts)-1])
}

func TestDefaults(t *testing.T) {
	e, _, _ := newEditor()
	assert.Equal(t, ToolSelect, e.Tool())
	assert.Equal(t, Style{Color: DefaultColor, BrushWidth: DefaultBrushWidth}, e.Style())
}

func TestRectangleClickInsertsOneAndReverts(t *testing.T) {
	e, sc, changes := newEditor()
	var tools []Tool
	e.OnToolChange = func(t Tool) { tools = append(tools, t) }

	e.SetTool(ToolRectangle)
	e.PointerDown(scene.Point{X: 40, Y: 60})
	e.PointerUp(scene.Point{X: 40, Y: 60})

	shapes := sc.Shapes()
	require.Len(t, shapes, 1)
	assert.Equal(t, scene.KindRect, shapes[0].Kind)
	assert.Equal(t, float32(40), shapes[0].Left)
	assert.Equal(t, float32(60), shapes[0].Top)
	assert.Equal(t, ToolSelect, e.Tool())
	assert.Equal(t, shapes[0].ID, sc.Selected())
	assert.Equal(t, []Tool{ToolRectangle, ToolSelect}, tools)
	assert.Equal(t, 1, *changes)
}

func TestCircleUsesCurrentColor(t *testing.T) {
	e, sc, _ := newEditor()
	require.NoError(t, e.SetColor("#3B82F6"))
	e.SetTool(ToolCircle)
	e.PointerDown(scene.Point{X: 1, Y: 1})

	shapes := sc.Shapes()
	require.Len(t, shapes, 1)
	assert.Equal(t, scene.KindCircle, shapes[0].Kind)
	assert.Equal(t, "#3b82f6", shapes[0].Fill)
	assert.Equal(t, ToolSelect, e.Tool())
}

func TestTextToolReportsNewText(t *testing.T) {
	e, sc, _ := newEditor()
	var created scene.Shape
	e.OnTextCreated = func(s scene.Shape) { created = s }

	e.SetTool(ToolText)
	e.PointerDown(scene.Point{X: 5, Y: 5})

	require.Equal(t, 1, sc.Len())
	assert.Equal(t, scene.KindText, created.Kind)
	assert.Equal(t, placeholderText, created.Text)
	assert.Equal(t, ToolSelect, e.Tool())

	require.NoError(t, e.SetText(created.ID, "hello"))
	s, _ := sc.Get(created.ID)
	assert.Equal(t, "hello", s.Text)
}

func TestPenDragProducesOnePathAndStaysActive(t *testing.T) {
	e, sc, changes := newEditor()
	e.SetTool(ToolPen)
	drag(e, scene.Point{X: 0, Y: 0}, scene.Point{X: 5, Y: 5}, scene.Point{X: 10, Y: 4})

	shapes := sc.Shapes()
	require.Len(t, shapes, 1)
	assert.Equal(t, scene.KindPath, shapes[0].Kind)
	assert.Len(t, shapes[0].Points, 3)
	assert.Equal(t, ToolPen, e.Tool())
	assert.Equal(t, 1, *changes)
}

func TestPenClickWithoutMotionDrawsNothing(t *testing.T) {
	e, sc, _ := newEditor()
	e.SetTool(ToolPen)
	e.PointerDown(scene.Point{X: 3, Y: 3})
	e.PointerUp(scene.Point{X: 3, Y: 3})
	assert.Equal(t, 0, sc.Len())
}

func TestPenPreviewWhileDrawing(t *testing.T) {
	e, _, _ := newEditor()
	e.SetTool(ToolPen)
	_, ok := e.Drawing()
	assert.False(t, ok)

	e.PointerDown(scene.Point{X: 0, Y: 0})
	e.PointerMove(scene.Point{X: 1, Y: 1})
	s, ok := e.Drawing()
	require.True(t, ok)
	assert.Len(t, s.Points, 2)
	e.PointerUp(scene.Point{X: 1, Y: 1})
	_, ok = e.Drawing()
	assert.False(t, ok)
}

func TestBrushWidthAffectsLaterStrokesOnly(t *testing.T) {
	e, sc, _ := newEditor()
	e.SetTool(ToolPen)
	drag(e, scene.Point{X: 0, Y: 0}, scene.Point{X: 10, Y: 10})
	e.SetBrushWidth(20)
	drag(e, scene.Point{X: 20, Y: 20}, scene.Point{X: 30, Y: 30})

	shapes := sc.Shapes()
	require.Len(t, shapes, 2)
	assert.Equal(t, DefaultBrushWidth, shapes[0].StrokeWidth)
	assert.Equal(t, float32(20), shapes[1].StrokeWidth)
}

func TestBrushWidthClamped(t *testing.T) {
	e, _, _ := newEditor()
	e.SetBrushWidth(0)
	assert.Equal(t, MinBrushWidth, e.Style().BrushWidth)
	e.SetBrushWidth(500)
	assert.Equal(t, MaxBrushWidth, e.Style().BrushWidth)
}

func TestSetColorRejectsGarbage(t *testing.T) {
	e, _, _ := newEditor()
	assert.Error(t, e.SetColor("blue"))
	assert.Equal(t, DefaultColor, e.Style().Color)
}

func TestSelectDragMovesShape(t *testing.T) {
	e, sc, changes := newEditor()
	sc.Add(scene.Shape{ID: "r", Kind: scene.KindRect, Width: 50, Height: 50})
	*changes = 0

	drag(e, scene.Point{X: 10, Y: 10}, scene.Point{X: 20, Y: 15}, scene.Point{X: 30, Y: 30})

	s, _ := sc.Get("r")
	assert.Equal(t, float32(20), s.Left)
	assert.Equal(t, float32(20), s.Top)
	assert.Equal(t, "r", sc.Selected())
	assert.Equal(t, 1, *changes)
}

func TestSelectClickWithoutMoveIsNotAChange(t *testing.T) {
	e, sc, changes := newEditor()
	sc.Add(scene.Shape{ID: "r", Kind: scene.KindRect, Width: 50, Height: 50})
	*changes = 0

	e.PointerDown(scene.Point{X: 10, Y: 10})
	e.PointerUp(scene.Point{X: 10, Y: 10})
	assert.Equal(t, "r", sc.Selected())
	assert.Equal(t, 0, *changes)

	e.PointerDown(scene.Point{X: 400, Y: 400})
	e.PointerUp(scene.Point{X: 400, Y: 400})
	assert.Empty(t, sc.Selected())
}

func TestPointerUpWithoutDownIsNoop(t *testing.T) {
	e, sc, changes := newEditor()
	e.SetTool(ToolPen)
	e.PointerUp(scene.Point{X: 1, Y: 1})
	e.PointerMove(scene.Point{X: 2, Y: 2})
	assert.Equal(t, 0, sc.Len())
	assert.Equal(t, 0, *changes)
}

func TestSwitchingToolDropsUnfinishedStroke(t *testing.T) {
	e, sc, _ := newEditor()
	e.SetTool(ToolPen)
	e.PointerDown(scene.Point{X: 0, Y: 0})
	e.PointerMove(scene.Point{X: 5, Y: 5})
	e.SetTool(ToolSelect)
	e.PointerUp(scene.Point{X: 9, Y: 9})
	assert.Equal(t, 0, sc.Len())
}

func TestDeleteSelectedAndClear(t *testing.T) {
	e, sc, _ := newEditor()
	assert.False(t, e.DeleteSelected())

	sc.Add(scene.Shape{ID: "a", Kind: scene.KindRect, Width: 5, Height: 5})
	sc.Add(scene.Shape{ID: "b", Kind: scene.KindRect, Left: 100, Width: 5, Height: 5})
	sc.Select("a")
	assert.True(t, e.DeleteSelected())
	assert.Equal(t, 1, sc.Len())

	e.Clear()
	assert.Equal(t, 0, sc.Len())
}

func TestEndGestureFinishesAtLastPosition(t *testing.T) {
	e, sc, _ := newEditor()
	e.SetTool(ToolPen)
	e.PointerDown(scene.Point{X: 0, Y: 0})
	e.PointerMove(scene.Point{X: 10, Y: 5})
	e.PointerMove(scene.Point{X: 20, Y: 10})
	e.EndGesture()

	shapes := sc.Shapes()
	require.Len(t, shapes, 1)
	pts := shapes[0].Points
	assert.Equal(t, scene.Point{X: 20, Y: 10}, pts[len(pts)-1])

	_, drawing := e.Drawing()
	assert.False(t, drawing)

	// A second end for the same gesture adds nothing.
	e.EndGesture()
	assert.Equal(t, 1, sc.Len())
}

func TestSelectionChangesAreReported(t *testing.T) {
	e, sc, _ := newEditor()
	sc.Add(scene.Shape{ID: "r", Kind: scene.KindRect, Width: 50, Height: 50})
	var selections []string
	e.OnSelect = func(id string) { selections = append(selections, id) }

	e.PointerDown(scene.Point{X: 10, Y: 10})
	e.PointerUp(scene.Point{X: 10, Y: 10})
	// Clicking the same object again is not a change.
	e.PointerDown(scene.Point{X: 20, Y: 20})
	e.PointerUp(scene.Point{X: 20, Y: 20})
	e.PointerDown(scene.Point{X: 400, Y: 400})
	e.PointerUp(scene.Point{X: 400, Y: 400})

	assert.Equal(t, []string{"r", ""}, selections)
}
