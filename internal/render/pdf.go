package render

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/inamate/diagrams/internal/engine"
	"github.com/inamate/diagrams/internal/geom"
)

// pxToPt maps viewport pixels to PDF points (96 dpi to 72 dpi).
const pxToPt = 0.75

// WritePDF draws the primitives as vector PDF on a page sized to the diagram.
func WritePDF(w io.Writer, r *engine.Result) error {
	p := layoutPage(r)
	if p.width <= 0 || p.height <= 0 {
		return fmt.Errorf("pdf: empty %gx%g surface", p.width, p.height)
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: p.width * pxToPt, Ht: p.height * pxToPt},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(true)
	pdf.SetCreator("diagrams", true)
	pdf.AddPage()
	pdf.SetLineCapStyle("round")
	pdf.SetLineJoinStyle("round")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, prim := range r.Primitives {
		if prim.Kind == engine.KindText {
			for _, line := range prim.Lines() {
				pdfText(pdf, tr, line.Text, line.X, line.Y, prim.FontSize, prim.Bold, prim.Align, prim.Style.Fill, prim.Style.Alpha())
			}
			continue
		}
		pdfShape(pdf, prim)
	}
	for i, line := range p.caption {
		pdfText(pdf, tr, line, p.width/2, p.captionY(i), captionSize, false, engine.AlignMiddle, "#374151", 1)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("pdf: %w", err)
	}
	return pdf.Output(w)
}

func pt(v float64) float64 { return v * pxToPt }

func pdfShape(pdf *gofpdf.Fpdf, p engine.Primitive) {
	style := ""
	if c, ok := parseColor(fillOf(p)); ok {
		pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
		style += "F"
	}
	if c, ok := parseColor(p.Style.Stroke); ok && p.Style.StrokeWidth > 0 {
		pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
		pdf.SetLineWidth(pt(p.Style.StrokeWidth))
		dash := make([]float64, len(p.Style.Dash))
		for i, d := range p.Style.Dash {
			dash[i] = pt(d)
		}
		pdf.SetDashPattern(dash, 0)
		style += "D"
	}
	if style == "" {
		return
	}
	pdf.SetAlpha(p.Style.Alpha(), "Normal")
	defer pdf.SetAlpha(1, "Normal")

	switch p.Kind {
	case engine.KindMarker:
		pdf.Circle(pt(p.Center.X), pt(p.Center.Y), pt(p.Radius), style)
		return
	case engine.KindArc:
		// gofpdf angles turn counter-clockwise on the page, screen angles clockwise
		from := geom.Polar(p.Center, p.Radius, p.StartAngle)
		if p.Wedge {
			pdf.MoveTo(pt(p.Center.X), pt(p.Center.Y))
			pdf.LineTo(pt(from.X), pt(from.Y))
		} else {
			pdf.MoveTo(pt(from.X), pt(from.Y))
		}
		pdf.ArcTo(pt(p.Center.X), pt(p.Center.Y), pt(p.Radius), pt(p.Radius), 0, -p.StartAngle, -(p.StartAngle + p.Sweep))
		if p.Wedge {
			pdf.ClosePath()
		}
	default:
		if len(p.Points) < 2 {
			return
		}
		pdf.MoveTo(pt(p.Points[0].X), pt(p.Points[0].Y))
		for _, q := range p.Points[1:] {
			pdf.LineTo(pt(q.X), pt(q.Y))
		}
		if p.Kind == engine.KindPolygon || p.Kind == engine.KindRegion {
			pdf.ClosePath()
		}
	}
	pdf.DrawPath(style)
}

func pdfText(pdf *gofpdf.Fpdf, tr func(string) string, s string, x, y, size float64, bold bool, align engine.Align, fill string, alpha float64) {
	if size <= 0 {
		size = engine.DefaultFontSize
	}
	fontStyle := ""
	if bold {
		fontStyle = "B"
	}
	pdf.SetFont("Helvetica", fontStyle, pt(size))
	c, ok := parseColor(fill)
	if !ok {
		c.R, c.G, c.B = 0x11, 0x18, 0x27
	}
	pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
	pdf.SetAlpha(alpha, "Normal")
	defer pdf.SetAlpha(1, "Normal")

	s = tr(plainText(s))
	width := pdf.GetStringWidth(s)
	x = pt(x)
	switch align {
	case engine.AlignMiddle, "":
		x -= width / 2
	case engine.AlignEnd:
		x -= width
	}
	// Text takes a baseline; drop by roughly a third of the size to center
	pdf.Text(x, pt(y)+pt(size)*0.35, s)
}
