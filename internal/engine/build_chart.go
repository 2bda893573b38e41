package engine

import (
	"math"
	"strings"

	"github.com/inamate/diagrams/internal/diagram"
	"github.com/inamate/diagrams/internal/geom"
	"github.com/inamate/diagrams/internal/numeric"
)

// --- pieChart ---

// PieStart is the screen angle of the first sector's leading edge (12 o'clock).
const PieStart = -90.0

func layoutPie(_ diagram.PieChart, v geom.Viewport) (*geom.Frame, error) {
	return geom.PixelFrame(v), nil
}

func pieGeometry(p diagram.PieChart, v geom.Viewport) (geom.Point, float64) {
	top := 0.0
	if p.Title != "" {
		top = 12
	}
	r := math.Max(math.Min(v.Width, v.Height-top)/2-v.Padding, 10)
	return geom.Pt(v.Width/2, (v.Height+top)/2), r
}

func buildPie(p diagram.PieChart, c *canvas) {
	center, r := pieGeometry(p, c.frame.Viewport)
	for _, s := range p.Sectors {
		if s.Angle <= 0 {
			continue
		}
		c.wedge("sector", center, r, PieStart+s.Start, s.Angle, Style{Fill: s.Color, Stroke: colorPaper, StrokeWidth: 1.5})
	}
	for _, s := range p.Sectors {
		if s.Angle <= 0 {
			continue
		}
		lines := []string{s.Label}
		switch {
		case p.ShowCalculations:
			lines = append(lines, p.Calculation(s))
		case p.ShowAngles:
			lines = append(lines, numeric.FormatDegrees(s.Angle))
		}
		if p.ShowPercentages {
			lines = append(lines, numeric.FormatPercent(s.Percent))
		}
		bis := PieStart + s.Start + s.Angle/2
		c.label("sectorLabel", geom.Polar(center, 0.6*r, bis), center, strings.Join(lines, "\n"), AlignMiddle)
	}
	c.title(p.Title)
}

// --- barModel ---

const (
	maxUnitWidth = 48.0
	labelMargin  = 12.0
)

// barLayout positions bars along u (the unit axis) and v (across bars).
type barLayout struct {
	vertical bool
	w, h     float64
	origin   float64
	ppu      float64
	thick    float64
	gap      float64
	first    float64
	maxUnits float64
	totalW   float64
}

func widest(texts []string, size float64) float64 {
	w := 0.0
	for _, t := range texts {
		tw, _ := MeasureText(t, size)
		w = math.Max(w, tw)
	}
	return w
}

func newBarLayout(m diagram.BarModel, v geom.Viewport) barLayout {
	var names, totals, brackets []string
	for _, b := range m.Bars {
		names = append(names, b.Label)
		totals = append(totals, b.TotalLabel)
	}
	for _, b := range m.Brackets {
		brackets = append(brackets, b.Label)
	}
	titleH := 0.0
	if m.Title != "" {
		titleH = 28
	}
	n := float64(len(m.Bars))
	l := barLayout{vertical: m.Vertical, maxUnits: m.MaxUnits(), totalW: widest(totals, DefaultFontSize)}
	if l.totalW > 0 {
		l.totalW += labelMargin
	}
	bracketSpace := 0.0
	if len(m.Brackets) > 0 {
		bracketSpace = 30 + widest(brackets, DefaultFontSize)
	}

	if !m.Vertical {
		l.thick, l.gap = 40, 24
		l.w = v.Width
		l.h = 2*v.Padding + titleH + n*l.thick + (n-1)*l.gap
		l.origin = v.Padding
		if lw := widest(names, DefaultFontSize); lw > 0 {
			l.origin += lw + labelMargin
		}
		l.first = v.Padding + titleH
		room := l.w - l.origin - v.Padding - l.totalW - bracketSpace
		l.ppu = math.Min(maxUnitWidth, math.Max(room, 1)/l.maxUnits)
		return l
	}

	l.thick, l.gap = 56, 28
	span := n*l.thick + (n-1)*l.gap
	l.w = math.Max(320, 2*v.Padding+span)
	l.h = 380
	l.origin = v.Padding + 20
	l.first = (l.w - span) / 2
	room := l.h - l.origin - v.Padding - titleH - 20
	if len(m.Brackets) > 0 {
		room -= 36
	}
	l.ppu = math.Min(maxUnitWidth, math.Max(room, 1)/l.maxUnits)
	return l
}

// box is the rectangle of bar i between unit positions u0 and u1.
func (l barLayout) box(i int, u0, u1 float64) geom.Rect {
	v0 := l.first + float64(i)*(l.thick+l.gap)
	if !l.vertical {
		return geom.Rect{X: l.origin + u0*l.ppu, Y: v0, Width: (u1 - u0) * l.ppu, Height: l.thick}
	}
	return geom.Rect{X: v0, Y: l.h - l.origin - u1*l.ppu, Width: l.thick, Height: (u1 - u0) * l.ppu}
}

// cut is the line across bar i at unit position u.
func (l barLayout) cut(i int, u float64) (geom.Point, geom.Point) {
	r := l.box(i, u, u)
	if !l.vertical {
		return geom.Pt(r.X, r.Y), geom.Pt(r.X, r.MaxY())
	}
	return geom.Pt(r.X, r.Y), geom.Pt(r.MaxX(), r.Y)
}

func layoutBarModel(m diagram.BarModel, v geom.Viewport) (*geom.Frame, error) {
	l := newBarLayout(m, v)
	return geom.PixelFrame(geom.Viewport{Width: l.w, Height: l.h, Padding: v.Padding}), nil
}

func buildBarModel(m diagram.BarModel, c *canvas) {
	l := newBarLayout(m, c.frame.Viewport)
	for i, bar := range m.Bars {
		u := 0.0
		for _, seg := range bar.Segments {
			if seg.Units > 0 {
				r := l.box(i, u, u+seg.Units)
				c.rect("segment", r, Style{Fill: seg.Color, Stroke: colorInk, StrokeWidth: 1.5})
				if m.ShowUnitDividers && l.ppu >= 6 && seg.Units > 1 && seg.Units <= 50 {
					for k := 1.0; k < seg.Units; k++ {
						a, b := l.cut(i, u+k)
						c.line("divider", a, b, Style{Stroke: colorInk, StrokeWidth: 1, Dash: []float64{3, 3}})
					}
				}
				if seg.Label != "" {
					c.text("segmentLabel", r.Center(), seg.Label, DefaultFontSize, AlignMiddle, colorInk)
				}
			}
			u += seg.Units
		}

		whole := l.box(i, 0, bar.Units)
		if !l.vertical {
			c.text("barLabel", geom.Pt(l.origin-8, whole.Center().Y), bar.Label, DefaultFontSize, AlignEnd, colorInk)
			c.text("totalLabel", geom.Pt(whole.MaxX()+8, whole.Center().Y), bar.TotalLabel, DefaultFontSize, AlignStart, colorInk)
		} else {
			c.text("barLabel", geom.Pt(whole.Center().X, l.h-l.origin+14), bar.Label, DefaultFontSize, AlignMiddle, colorInk)
			c.text("totalLabel", geom.Pt(whole.Center().X, whole.MinY()-12), bar.TotalLabel, DefaultFontSize, AlignMiddle, colorInk)
		}
	}

	for _, br := range m.Brackets {
		r0, r1 := l.box(br.From, 0, l.maxUnits), l.box(br.To, 0, l.maxUnits)
		if !l.vertical {
			bx := l.origin + l.maxUnits*l.ppu + l.totalW + 10
			c.polyline("bracket", []geom.Point{{bx, r0.MinY()}, {bx + 8, r0.MinY()}, {bx + 8, r1.MaxY()}, {bx, r1.MaxY()}}, thinStroke)
			c.text("bracketLabel", geom.Pt(bx+14, (r0.MinY()+r1.MaxY())/2), br.Label, DefaultFontSize, AlignStart, colorInk)
			continue
		}
		by := r0.MinY() - 30
		c.polyline("bracket", []geom.Point{{r0.MinX(), by}, {r0.MinX(), by - 8}, {r1.MaxX(), by - 8}, {r1.MaxX(), by}}, thinStroke)
		c.text("bracketLabel", geom.Pt((r0.MinX()+r1.MaxX())/2, by-20), br.Label, DefaultFontSize, AlignMiddle, colorInk)
	}
	c.title(m.Title)
}
