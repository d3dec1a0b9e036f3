package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"WebCanvas/internal/scene"
)

// PDFFileName is the download name for a canvas PDF.
func PDFFileName(canvasID string) string {
	return fmt.Sprintf("canvas-%s.pdf", canvasID)
}

// PDF writes snap as a single vector page the size of the canvas, one
// canvas unit per point.
func PDF(w io.Writer, snap scene.Snapshot, width, height float64) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid export size %gx%g", width, height)
	}
	orientation := "P"
	if width > height {
		orientation = "L"
	}
	p := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: width, Ht: height},
	})
	p.SetMargins(0, 0, 0)
	p.SetAutoPageBreak(false, 0)
	p.AddPage()
	p.SetLineCapStyle("round")
	p.SetLineJoinStyle("round")

	if bg, err := scene.ParseColor(snap.Background); err == nil {
		p.SetFillColor(int(bg.R), int(bg.G), int(bg.B))
		p.Rect(0, 0, width, height, "F")
	}

	for _, s := range snap.Objects {
		style := pdfStyle(p, s)
		switch s.Kind {
		case scene.KindRect:
			p.Rect(float64(s.Left), float64(s.Top), float64(s.Width), float64(s.Height), style)
		case scene.KindCircle:
			r := float64(s.Radius)
			p.Circle(float64(s.Left)+r, float64(s.Top)+r, r, style)
		case scene.KindText:
			size := float64(s.FontSize)
			if size <= 0 {
				size = float64(scene.DefaultFontSize)
			}
			p.SetFont("Helvetica", "", size)
			p.Text(float64(s.Left), float64(s.Top)+size, s.Text)
		case scene.KindPath:
			for i := 1; i < len(s.Points); i++ {
				p.Line(
					float64(s.Points[i-1].X), float64(s.Points[i-1].Y),
					float64(s.Points[i].X), float64(s.Points[i].Y),
				)
			}
		}
	}
	return p.Output(w)
}

// pdfStyle sets draw, fill and text colors for s and returns the gofpdf
// style string for closed shapes.
func pdfStyle(p *gofpdf.Fpdf, s scene.Shape) string {
	style := ""
	if c, err := scene.ParseColor(s.Fill); err == nil {
		p.SetFillColor(int(c.R), int(c.G), int(c.B))
		p.SetTextColor(int(c.R), int(c.G), int(c.B))
		style += "F"
	}
	if c, err := scene.ParseColor(s.Stroke); err == nil && s.StrokeWidth > 0 {
		p.SetDrawColor(int(c.R), int(c.G), int(c.B))
		p.SetLineWidth(float64(s.StrokeWidth))
		style = "D" + style
	}
	if style == "" {
		p.SetDrawColor(0, 0, 0)
		p.SetTextColor(0, 0, 0)
		style = "D"
	}
	return style
}
