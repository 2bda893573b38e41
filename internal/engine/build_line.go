package engine

import (
	"math"

	"github.com/inamate/diagrams/internal/diagram"
	"github.com/inamate/diagrams/internal/geom"
	"github.com/inamate/diagrams/internal/numeric"
)

// --- numberLine ---

const (
	markerRadius = 6.0
	arrowLength  = 14.0
)

func layoutNumberLine(n diagram.NumberLine, v geom.Viewport) (*geom.Frame, error) {
	return geom.NewFrame(geom.Domain{MinX: n.Min, MaxX: n.Max, MinY: -1, MaxY: 1}, v, false)
}

// arrowHead draws a filled head with its tip at tip, pointing along dir (±1 on x).
func (c *canvas) arrowHead(role string, tip geom.Point, dir float64, color string) {
	back := tip.X - dir*9
	c.polygon(role, []geom.Point{tip, {back, tip.Y - 5}, {back, tip.Y + 5}}, Style{Stroke: color, StrokeWidth: 1, Fill: color})
}

func buildNumberLine(n diagram.NumberLine, c *canvas) {
	f := c.frame
	y0 := f.Y(0)
	left, right := f.X(n.Min), f.X(n.Max)
	lineStyle := Style{Stroke: colorInk, StrokeWidth: 2}

	c.line("axis", geom.Pt(left, y0), geom.Pt(right, y0), lineStyle)
	if n.ShowArrows {
		c.line("arrow", geom.Pt(left, y0), geom.Pt(left-arrowLength, y0), lineStyle)
		c.arrowHead("arrowHead", geom.Pt(left-arrowLength-4, y0), -1, colorInk)
		c.line("arrow", geom.Pt(right, y0), geom.Pt(right+arrowLength, y0), lineStyle)
		c.arrowHead("arrowHead", geom.Pt(right+arrowLength+4, y0), 1, colorInk)
	}

	// thin out labels on dense axes, the ticks themselves all stay
	every := max(1, int(math.Ceil(float64(len(n.Ticks))/21)))
	for i, t := range n.Ticks {
		x := f.X(t)
		size, style := 6.0, thinStroke
		integer := math.Abs(t-math.Round(t)) < numeric.Epsilon
		bold := n.HighlightIntegers && integer
		if bold {
			size, style = 9, Style{Stroke: colorInk, StrokeWidth: 2}
		}
		c.line("tick", geom.Pt(x, y0-size), geom.Pt(x, y0+size), style)
		if i%every != 0 && !bold {
			continue
		}
		c.add(Primitive{
			Kind:     KindText,
			Role:     "tickLabel",
			Center:   geom.Pt(x, y0+22),
			Text:     numeric.Format(t),
			Align:    AlignMiddle,
			FontSize: 11,
			Bold:     bold,
			Style:    Style{Fill: colorInk},
		})
	}

	for _, iv := range n.Intervals {
		s, e := n.Min, n.Max
		if iv.Start != nil {
			s = *iv.Start
		}
		if iv.End != nil {
			e = *iv.End
		}
		a, b := geom.Pt(f.X(s), y0), geom.Pt(f.X(e), y0)
		c.line("interval", a, b, Style{Stroke: iv.Color, StrokeWidth: 6, Opacity: 0.8})
		if iv.Start != nil {
			c.marker("endpoint", a, markerRadius, iv.StartInclusive, iv.Color)
		} else {
			c.arrowHead("intervalArrow", a.Add(geom.Pt(-4, 0)), -1, iv.Color)
		}
		if iv.End != nil {
			c.marker("endpoint", b, markerRadius, iv.EndInclusive, iv.Color)
		} else {
			c.arrowHead("intervalArrow", b.Add(geom.Pt(4, 0)), 1, iv.Color)
		}
		mid := a.Mid(b)
		c.label("intervalLabel", mid.Add(geom.Pt(0, -22)), mid, iv.Label, AlignMiddle)
	}

	for _, p := range n.Points {
		at := geom.Pt(f.X(p.Value), y0)
		if p.Style != diagram.PointNone {
			c.marker("point", at, markerRadius, p.Style == diagram.PointClosed, p.Color)
		}
		c.label("pointLabel", at.Add(geom.Pt(0, -20)), at, p.Label, AlignMiddle)
	}
	c.title(n.Title)
}

// --- fractionBar ---

const (
	rowHeight  = 48.0
	rowGap     = 36.0
	wholeGap   = 12.0
	fractionFS = 16.0
)

func fractionTop(b diagram.FractionBar, v geom.Viewport) float64 {
	if b.Title != "" {
		return v.Padding + 28
	}
	return v.Padding
}

func layoutFractionBar(b diagram.FractionBar, v geom.Viewport) (*geom.Frame, error) {
	n := float64(len(b.Rows))
	v.Height = fractionTop(b, v) + n*rowHeight + (n-1)*rowGap + v.Padding
	return geom.PixelFrame(v), nil
}

// buildFractionBar shares one unit width across rows so the fractions compare
// by length.
func buildFractionBar(b diagram.FractionBar, c *canvas) {
	v := c.frame.Viewport
	labelCol := 0.0
	if b.ShowLabels {
		var names []string
		for _, r := range b.Rows {
			names = append(names, r.Label)
		}
		labelCol = widest(names, fractionFS) + 16
	}
	wholes := 1
	for _, r := range b.Rows {
		wholes = max(wholes, r.Wholes)
	}
	x0 := v.Padding + labelCol
	unit := (v.Width - x0 - v.Padding - float64(wholes-1)*wholeGap) / float64(wholes)
	top := fractionTop(b, v)

	for ri, row := range b.Rows {
		y := top + float64(ri)*(rowHeight+rowGap)
		cell := unit / float64(row.Den)
		for w := 0; w < row.Wholes; w++ {
			left := x0 + float64(w)*(unit+wholeGap)
			for k := 0; k < row.Den; k++ {
				filled := w*row.Den+k < row.Num
				s := Style{Stroke: colorInk, StrokeWidth: 1, Fill: colorPaper}
				if filled {
					s.Fill = row.Color
				}
				r := geom.Rect{X: left + float64(k)*cell, Y: y, Width: cell, Height: rowHeight}
				c.add(Primitive{Kind: KindPolygon, Role: "cell", Points: r.Corners(), Filled: filled, Style: s})
			}
			c.rect("whole", geom.Rect{X: left, Y: y, Width: unit, Height: rowHeight}, Style{Stroke: colorInk, StrokeWidth: 2.5})
		}
		if b.ShowLabels {
			c.text("fractionLabel", geom.Pt(x0-12, y+rowHeight/2), row.Label, fractionFS, AlignEnd, colorInk)
		}
	}
	c.title(b.Title)
}
