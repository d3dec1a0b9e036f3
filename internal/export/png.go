// Package export renders canvas snapshots to image and document files.
package export

import (
	"fmt"
	"image/color"
	"io"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"WebCanvas/internal/scene"
)

// DefaultScale is the resolution multiplier used for PNG downloads.
const DefaultScale = 2.0

// FileName is the download name for a canvas PNG.
func FileName(canvasID string) string {
	return fmt.Sprintf("canvas-%s.png", canvasID)
}

var (
	fontOnce sync.Once
	fontTTF  *truetype.Font
	fontErr  error
)

func regularFont() (*truetype.Font, error) {
	fontOnce.Do(func() {
		fontTTF, fontErr = truetype.Parse(goregular.TTF)
	})
	return fontTTF, fontErr
}

// PNG draws snap onto a width x height canvas scaled by scale and writes
// it to w as PNG.
func PNG(w io.Writer, snap scene.Snapshot, width, height, scale float64) error {
	if width <= 0 || height <= 0 || scale <= 0 {
		return fmt.Errorf("invalid export size %gx%g@%g", width, height, scale)
	}
	ttf, err := regularFont()
	if err != nil {
		return fmt.Errorf("failed to parse font: %w", err)
	}

	dc := gg.NewContext(int(width*scale), int(height*scale))
	dc.Scale(scale, scale)
	dc.SetColor(scene.ColorOr(snap.Background, color.White))
	dc.Clear()
	dc.SetLineCapRound()
	dc.SetLineJoinRound()

	for _, s := range snap.Objects {
		drawShape(dc, ttf, s)
	}
	return dc.EncodePNG(w)
}

func drawShape(dc *gg.Context, ttf *truetype.Font, s scene.Shape) {
	switch s.Kind {
	case scene.KindRect:
		dc.DrawRectangle(float64(s.Left), float64(s.Top), float64(s.Width), float64(s.Height))
		fillAndStroke(dc, s)

	case scene.KindCircle:
		r := float64(s.Radius)
		dc.DrawCircle(float64(s.Left)+r, float64(s.Top)+r, r)
		fillAndStroke(dc, s)

	case scene.KindText:
		size := float64(s.FontSize)
		if size <= 0 {
			size = float64(scene.DefaultFontSize)
		}
		dc.SetFontFace(truetype.NewFace(ttf, &truetype.Options{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		}))
		dc.SetColor(scene.ColorOr(s.Fill, color.Black))
		dc.DrawStringAnchored(s.Text, float64(s.Left), float64(s.Top), 0, 1)

	case scene.KindPath:
		if len(s.Points) < 2 {
			return
		}
		dc.MoveTo(float64(s.Points[0].X), float64(s.Points[0].Y))
		for _, p := range s.Points[1:] {
			dc.LineTo(float64(p.X), float64(p.Y))
		}
		dc.SetColor(scene.ColorOr(s.Stroke, color.Black))
		dc.SetLineWidth(float64(s.StrokeWidth))
		dc.Stroke()
	}
}

func fillAndStroke(dc *gg.Context, s scene.Shape) {
	if s.Fill != "" {
		dc.SetColor(scene.ColorOr(s.Fill, color.Black))
		if s.Stroke != "" && s.StrokeWidth > 0 {
			dc.FillPreserve()
		} else {
			dc.Fill()
			return
		}
	}
	if s.Stroke != "" && s.StrokeWidth > 0 {
		dc.SetColor(scene.ColorOr(s.Stroke, color.Black))
		dc.SetLineWidth(float64(s.StrokeWidth))
		dc.Stroke()
		return
	}
	dc.ClearPath()
}
