package scene

import (
	"fmt"
	"image/color"

	"github.com/google/uuid"
	"github.com/lucasb-eyer/go-colorful"
)

// Kind is the type tag written into snapshots.
type Kind string

const (
	KindRect   Kind = "rect"
	KindCircle Kind = "circle"
	KindText   Kind = "text"
	KindPath   Kind = "path"
)

// Point is a position in canvas coordinates.
type Point struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

func (p Point) Add(dx, dy float32) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	Min, Max Point
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

func (r Rect) Union(o Rect) Rect {
	return Rect{
		Min: Point{X: min(r.Min.X, o.Min.X), Y: min(r.Min.Y, o.Min.Y)},
		Max: Point{X: max(r.Max.X, o.Max.X), Y: max(r.Max.Y, o.Max.Y)},
	}
}

func (r Rect) Width() float32  { return r.Max.X - r.Min.X }
func (r Rect) Height() float32 { return r.Max.Y - r.Min.Y }

// Shape is one object on the canvas. Which geometry fields are used
// depends on Kind; Left/Top is always the top-left corner.
type Shape struct {
	ID          string  `json:"id"`
	Kind        Kind    `json:"type"`
	Left        float32 `json:"left"`
	Top         float32 `json:"top"`
	Width       float32 `json:"width,omitempty"`
	Height      float32 `json:"height,omitempty"`
	Radius      float32 `json:"radius,omitempty"`
	Text        string  `json:"text,omitempty"`
	FontSize    float32 `json:"fontSize,omitempty"`
	Points      []Point `json:"points,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	Fill        string  `json:"fill,omitempty"`
	StrokeWidth float32 `json:"strokeWidth,omitempty"`
}

// NewID returns a fresh shape id.
func NewID() string {
	return uuid.NewString()
}

// Bounds returns the shape's bounding box including half the stroke.
func (s *Shape) Bounds() Rect {
	pad := s.StrokeWidth / 2
	switch s.Kind {
	case KindCircle:
		return Rect{
			Min: Point{X: s.Left - pad, Y: s.Top - pad},
			Max: Point{X: s.Left + 2*s.Radius + pad, Y: s.Top + 2*s.Radius + pad},
		}
	case KindText:
		w, h := s.TextSize()
		return Rect{Min: Point{X: s.Left, Y: s.Top}, Max: Point{X: s.Left + w, Y: s.Top + h}}
	case KindPath:
		if len(s.Points) == 0 {
			return Rect{Min: Point{X: s.Left, Y: s.Top}, Max: Point{X: s.Left, Y: s.Top}}
		}
		r := Rect{Min: s.Points[0], Max: s.Points[0]}
		for _, p := range s.Points[1:] {
			r = r.Union(Rect{Min: p, Max: p})
		}
		r.Min = r.Min.Add(-pad, -pad)
		r.Max = r.Max.Add(pad, pad)
		return r
	default:
		return Rect{
			Min: Point{X: s.Left - pad, Y: s.Top - pad},
			Max: Point{X: s.Left + s.Width + pad, Y: s.Top + s.Height + pad},
		}
	}
}

// TextSize estimates the box of a text shape. Exact metrics belong to the
// renderer; this is only used for selection.
func (s *Shape) TextSize() (float32, float32) {
	size := s.FontSize
	if size <= 0 {
		size = DefaultFontSize
	}
	return float32(len([]rune(s.Text))) * size * 0.6, size * 1.2
}

func (s *Shape) translate(dx, dy float32) {
	s.Left += dx
	s.Top += dy
	for i := range s.Points {
		s.Points[i] = s.Points[i].Add(dx, dy)
	}
}

func (s *Shape) clone() Shape {
	c := *s
	if s.Points != nil {
		c.Points = append([]Point(nil), s.Points...)
	}
	return c
}

// Validate checks the fields a snapshot must carry for the shape's kind.
func (s *Shape) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("shape without id")
	}
	switch s.Kind {
	case KindRect:
		if s.Width < 0 || s.Height < 0 {
			return fmt.Errorf("shape %s: negative size", s.ID)
		}
	case KindCircle:
		if s.Radius < 0 {
			return fmt.Errorf("shape %s: negative radius", s.ID)
		}
	case KindText:
	case KindPath:
		if len(s.Points) == 0 {
			return fmt.Errorf("shape %s: path without points", s.ID)
		}
	default:
		return fmt.Errorf("shape %s: unknown type %q", s.ID, s.Kind)
	}
	for _, c := range []string{s.Stroke, s.Fill} {
		if c == "" {
			continue
		}
		if _, err := ParseColor(c); err != nil {
			return fmt.Errorf("shape %s: %w", s.ID, err)
		}
	}
	return nil
}

// ParseColor parses a #rrggbb color.
func ParseColor(hex string) (color.NRGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("bad color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// NormalizeColor returns hex in lower-case #rrggbb form.
func NormalizeColor(hex string) (string, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return "", fmt.Errorf("bad color %q: %w", hex, err)
	}
	return c.Hex(), nil
}

// ColorOr parses hex, falling back when it is empty or invalid.
func ColorOr(hex string, fallback color.Color) color.Color {
	if hex == "" {
		return fallback
	}
	c, err := ParseColor(hex)
	if err != nil {
		return fallback
	}
	return c
}
