package engine

import (
	"math"
	"strings"

	"github.com/inamate/diagrams/internal/diagram"
	"github.com/inamate/diagrams/internal/geom"
	"github.com/inamate/diagrams/internal/numeric"
)

const (
	termFS       = 22.0
	termGap      = 10.0
	algebraRow   = 48.0
	coefficientH = 20.0
)

// token is one highlighted piece of a row of the expression.
type token struct {
	text  string
	color string
	value float64
	role  string
}

// signedText writes a term with its sign as an operator, or as a leading minus
// when it opens the row.
func signedText(t numeric.Term, first bool) string {
	switch {
	case first && t.Sign < 0:
		return "−" + t.Text
	case first:
		return t.Text
	case t.Sign < 0:
		return "− " + t.Text
	}
	return "+ " + t.Text
}

func expressionRow(a diagram.AlgebraExpression) []token {
	var row []token
	for i, t := range a.Terms {
		color := colorInk
		if g := a.GroupOf(t); g >= 0 {
			color = a.Groups[g].Color
		}
		row = append(row, token{text: signedText(t, i == 0), color: color, value: t.Value(), role: "term"})
	}
	return row
}

// groupedRow lists the like terms side by side, each group in brackets when it
// holds more than one term.
func groupedRow(a diagram.AlgebraExpression) []token {
	var row []token
	for gi, g := range a.Groups {
		var parts []string
		for i, t := range g.Terms {
			parts = append(parts, signedText(t, i == 0))
		}
		text := strings.Join(parts, " ")
		if len(g.Terms) > 1 {
			text = "(" + text + ")"
		}
		if gi > 0 {
			text = "+ " + text
		}
		row = append(row, token{text: text, color: g.Color, value: g.Sum, role: "group"})
	}
	return row
}

func rowWidth(row []token) float64 {
	w := 0.0
	for i, t := range row {
		tw, _ := MeasureText(t.text, termFS)
		w += tw
		if i > 0 {
			w += termGap
		}
	}
	return w
}

type algebraLayout struct {
	rows    [][]token
	heights []float64
	top     float64
}

func newAlgebraLayout(a diagram.AlgebraExpression, v geom.Viewport) algebraLayout {
	l := algebraLayout{top: v.Padding}
	if a.Title != "" {
		l.top += 28
	}
	first := algebraRow
	if a.ShowCoefficients {
		first += coefficientH
	}
	l.rows = append(l.rows, expressionRow(a))
	l.heights = append(l.heights, first)
	if a.ShowBreakdown {
		l.rows = append(l.rows, groupedRow(a), []token{{text: "= " + a.Simplified, color: colorInk, role: "simplified"}})
		l.heights = append(l.heights, algebraRow, algebraRow)
	}
	return l
}

func layoutAlgebra(a diagram.AlgebraExpression, v geom.Viewport) (*geom.Frame, error) {
	l := newAlgebraLayout(a, v)
	span := 0.0
	for _, row := range l.rows {
		span = math.Max(span, rowWidth(row))
	}
	v.Width = math.Max(v.Width, span+2*v.Padding)
	v.Height = l.top + v.Padding
	for _, h := range l.heights {
		v.Height += h
	}
	return geom.PixelFrame(v), nil
}

func buildAlgebra(a diagram.AlgebraExpression, c *canvas) {
	v := c.frame.Viewport
	l := newAlgebraLayout(a, v)
	y := l.top
	for ri, row := range l.rows {
		cy := y + algebraRow/2
		x := (v.Width - rowWidth(row)) / 2
		for _, t := range row {
			w, h := MeasureText(t.text, termFS)
			center := geom.Pt(x+w/2, cy)
			if a.HighlightLikeTerms && t.role != "simplified" {
				box := geom.Rect{X: x - 4, Y: cy - h/2 - 4, Width: w + 8, Height: h + 8}
				c.rect("termHighlight", box, Style{Stroke: t.color, StrokeWidth: 1, Fill: t.color, Opacity: 0.2})
			}
			c.text(t.role, center, t.text, termFS, AlignMiddle, colorInk)
			if ri == 0 && a.ShowCoefficients {
				c.text("coefficient", geom.Pt(center.X, cy+h/2+14), numeric.Format(t.value), 11, AlignMiddle, colorMuted)
			}
			x += w + termGap
		}
		y += l.heights[ri]
	}
	c.title(a.Title)
}
