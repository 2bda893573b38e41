package engine

import (
	"fmt"
	"math"

	"github.com/inamate/diagrams/internal/diagram"
	"github.com/inamate/diagrams/internal/geom"
	"github.com/inamate/diagrams/internal/numeric"
)

const (
	// Samples is the number of intervals a function graph is evaluated on.
	Samples = 400
	// GuardFraction widens the y window, as a share of its height, before a sample
	// counts as running off to an asymptote.
	GuardFraction = 0.25
	maxGridLines  = 40
	maxTickLabels = 12
	tickSize      = 4.0
	tickFontSize  = 10.0
)

// plane draws the grid, axes and tick labels of a coordinate plane.
func (c *canvas) plane(showGrid bool, xStep, yStep float64, xText func(float64) string) {
	f := c.frame
	d := f.Domain
	xs := numeric.Ticks(d.MinX, d.MaxX, xStep)
	ys := numeric.Ticks(d.MinY, d.MaxY, yStep)

	if showGrid {
		for _, x := range xs {
			c.line("grid", f.ToView(geom.Pt(x, d.MinY)), f.ToView(geom.Pt(x, d.MaxY)), gridStroke)
		}
		for _, y := range ys {
			c.line("grid", f.ToView(geom.Pt(d.MinX, y)), f.ToView(geom.Pt(d.MaxX, y)), gridStroke)
		}
	}

	ax := numeric.Clamp(0, d.MinY, d.MaxY)
	ay := numeric.Clamp(0, d.MinX, d.MaxX)
	c.line("axis", f.ToView(geom.Pt(d.MinX, ax)), f.ToView(geom.Pt(d.MaxX, ax)), axisStroke)
	c.line("axis", f.ToView(geom.Pt(ay, d.MinY)), f.ToView(geom.Pt(ay, d.MaxY)), axisStroke)

	every := func(n int) int { return max(1, (n+maxTickLabels-1)/maxTickLabels) }
	xEvery, yEvery := every(len(xs)), every(len(ys))
	for i, x := range xs {
		p := f.ToView(geom.Pt(x, ax))
		c.line("tick", p.Add(geom.Pt(0, -tickSize)), p.Add(geom.Pt(0, tickSize)), axisStroke)
		if i%xEvery == 0 && !(x == ay && ax == 0) {
			c.text("tickLabel", p.Add(geom.Pt(0, 14)), xText(x), tickFontSize, AlignMiddle, colorMuted)
		}
	}
	for i, y := range ys {
		p := f.ToView(geom.Pt(ay, y))
		c.line("tick", p.Add(geom.Pt(-tickSize, 0)), p.Add(geom.Pt(tickSize, 0)), axisStroke)
		if i%yEvery == 0 && !(y == ax && ay == 0) {
			c.text("tickLabel", p.Add(geom.Pt(-8, 0)), numeric.Format(y), tickFontSize, AlignEnd, colorMuted)
		}
	}

	c.text("axisLabel", f.ToView(geom.Pt(d.MaxX, ax)).Add(geom.Pt(12, 0)), "x", DefaultFontSize, AlignStart, colorInk)
	c.text("axisLabel", f.ToView(geom.Pt(ay, d.MaxY)).Add(geom.Pt(0, -12)), "y", DefaultFontSize, AlignMiddle, colorInk)
}

func (c *canvas) title(text string) {
	if text == "" {
		return
	}
	v := c.frame.Viewport
	c.text("title", geom.Pt(v.Width/2, math.Max(v.Padding/2, 12)), text, 15, AlignMiddle, colorInk)
}

// --- functionGraph ---

func layoutFunctionGraph(g diagram.FunctionGraph, v geom.Viewport) (*geom.Frame, error) {
	return geom.NewFrame(g.Domain, v, false)
}

// sampleCurve evaluates the function across the x range and splits the samples
// into runs wherever the function is undefined, leaves the guard band or jumps
// across a discontinuity between neighbouring samples. The runs are clipped to
// the domain and stay in domain units.
func sampleCurve(g diagram.FunctionGraph) [][]geom.Point {
	d := g.Domain
	span := d.MaxY - d.MinY
	guard := span * GuardFraction
	lo, hi := d.MinY-guard, d.MaxY+guard

	var runs [][]geom.Point
	var cur []geom.Point
	flush := func() {
		if len(cur) >= 2 {
			runs = append(runs, cur)
		}
		cur = nil
	}
	for i := 0; i <= Samples; i++ {
		x := numeric.Lerp(d.MinX, d.MaxX, float64(i)/Samples)
		y, ok := g.Expr.Eval(x)
		if !ok || y < lo || y > hi {
			flush()
			continue
		}
		p := geom.Pt(x, y)
		if n := len(cur); n > 0 && math.Abs(y-cur[n-1].Y) > span/2 && !continuous(g, cur[n-1], p) {
			flush()
		}
		cur = append(cur, p)
	}
	flush()

	var clipped [][]geom.Point
	r := d.Rect()
	for _, run := range runs {
		clipped = append(clipped, r.ClipPolyline(run)...)
	}
	return clipped
}

// continuous checks the midpoint of a steep step: a real curve passes between
// its neighbours, a pole or jump does not.
func continuous(g diagram.FunctionGraph, a, b geom.Point) bool {
	m, ok := g.Expr.Eval((a.X + b.X) / 2)
	if !ok {
		return false
	}
	lo, hi := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
	return m >= lo && m <= hi
}

func buildFunctionGraph(g diagram.FunctionGraph, c *canvas) {
	f := c.frame
	d := g.Domain

	xStep := numeric.GridStep(d.MaxX-d.MinX, maxGridLines)
	xText := numeric.Format
	if g.Degrees {
		xStep = degreeStep(d.MaxX - d.MinX)
		xText = numeric.FormatDegrees
	}
	c.plane(g.ShowGrid, xStep, numeric.GridStep(d.MaxY-d.MinY, maxGridLines), xText)

	style := Style{Stroke: g.Color, StrokeWidth: 2.5}
	runs := sampleCurve(g)
	for _, run := range runs {
		c.polyline("curve", f.ToViewAll(run), style)
	}
	if g.Label != "" && len(runs) > 0 {
		last := runs[len(runs)-1]
		end := f.ToView(last[len(last)-1])
		c.label("curveLabel", end.Add(geom.Pt(-8, -14)), end, g.Label, AlignEnd)
	}

	if g.ShowPoints {
		for _, pt := range g.Points {
			if !pt.Defined || !d.Contains(geom.Pt(pt.X, pt.Y)) {
				continue
			}
			at := f.ToView(geom.Pt(pt.X, pt.Y))
			c.marker("point", at, 4.5, true, g.Color)
			text := pt.Label
			if text == "" {
				text = fmt.Sprintf("(%s, %s)", xText(pt.X), numeric.Format(pt.Y))
			}
			c.label("pointLabel", at.Add(geom.Pt(10, -12)), at, text, AlignStart)
		}
	}
	c.title(g.Title)
}

// degreeStep picks 30, 45 or 90 degree ticks.
func degreeStep(span float64) float64 {
	switch {
	case span > 720:
		return 180
	case span > 360:
		return 90
	case span > 180:
		return 45
	}
	return 30
}

// --- linearInequalityGrapher ---

func layoutInequality(l diagram.LinearInequality, v geom.Viewport) (*geom.Frame, error) {
	return geom.NewFrame(l.Domain, v, false)
}

// referencePoint is where each inequality is tested to pick its side: the test
// point when there is one, else the domain center, moved off the boundary if it
// lies on it.
func referencePoint(l diagram.LinearInequality, q diagram.Inequality) geom.Point {
	onLine := func(p geom.Point) bool { return math.Abs(q.Residual(p)) < numeric.Epsilon }
	if l.TestPoint != nil && !onLine(l.TestPoint.Point) {
		return l.TestPoint.Point
	}
	ref := l.Domain.Center()
	if onLine(ref) {
		span := math.Min(l.Domain.MaxX-l.Domain.MinX, l.Domain.MaxY-l.Domain.MinY)
		ref = ref.Add(geom.Pt(q.A, q.B).Unit().Mul(span / 4))
	}
	return ref
}

// solutionRegion intersects the domain with the solution half-plane of every
// inequality. It returns nil when nothing of the domain solves the system.
func solutionRegion(l diagram.LinearInequality) []geom.Point {
	poly := l.Domain.Polygon()
	for _, q := range l.Inequalities {
		ref := referencePoint(l, q)
		side := 1
		if q.Residual(ref) < 0 {
			side = -1
		}
		if !q.Satisfies(ref) {
			side = -side
		}
		poly = geom.ClipHalfPlane(poly, q.A, q.B, q.C, side)
		if len(poly) < 3 || unitArea(l.Domain, poly) < numeric.Epsilon {
			return nil
		}
	}
	return poly
}

// unitArea measures poly in fractions of the domain, so slivers count as empty
// at any domain scale.
func unitArea(d geom.Domain, poly []geom.Point) float64 {
	sx, sy := d.MaxX-d.MinX, d.MaxY-d.MinY
	unit := make([]geom.Point, len(poly))
	for i, p := range poly {
		unit[i] = geom.Pt((p.X-d.MinX)/sx, (p.Y-d.MinY)/sy)
	}
	return math.Abs(geom.PolygonArea(unit))
}

// boundary returns the visible part of A·x + B·y = C inside the domain.
func boundary(d geom.Domain, q diagram.Inequality) (geom.Point, geom.Point, bool) {
	p0 := geom.Pt(q.C/q.A, 0)
	if q.B != 0 {
		p0 = geom.Pt(0, q.C/q.B)
	}
	return d.Rect().ClipLine(p0, geom.Pt(q.B, -q.A))
}

const systemFill = "#8b5cf6"

func buildInequality(l diagram.LinearInequality, c *canvas) {
	f := c.frame
	c.plane(l.ShowGrid, l.GridStep, l.GridStep, numeric.Format)

	region := solutionRegion(l)
	if region != nil {
		fill := systemFill
		if len(l.Inequalities) == 1 {
			fill = l.Inequalities[0].Color
		}
		c.region("region", f.ToViewAll(region), Style{Fill: fill, Opacity: l.ShadeOpacity})
	} else {
		mid := f.ToView(l.Domain.Center())
		c.label("empty", mid, mid, "no solutions in view", AlignMiddle)
	}

	center := f.ToView(l.Domain.Center())
	if region != nil {
		center = f.ToView(geom.Centroid(region...))
	}
	for _, q := range l.Inequalities {
		a, b, ok := boundary(l.Domain, q)
		if !ok {
			continue
		}
		va, vb := f.ToView(a), f.ToView(b)
		s := Style{Stroke: q.Color, StrokeWidth: 2.5}
		if q.Dashed() {
			s.Dash = dashed
		}
		c.line("boundary", va, vb, s)

		text := q.Label
		if text == "" {
			text = q.String()
		}
		at := vb.Add(va.Sub(vb).Unit().Mul(50))
		c.label("equation", at.Add(va.Sub(vb).Perp().Unit().Mul(14)), center, text, AlignMiddle)
	}

	if tp := l.TestPoint; tp != nil {
		color := colorFail
		if tp.Satisfied {
			color = colorPass
		}
		if l.Domain.Contains(tp.Point) {
			at := f.ToView(tp.Point)
			c.marker("testPoint", at, 5, true, color)
		}
		at := f.ToView(geom.Pt(numeric.Clamp(tp.Point.X, l.Domain.MinX, l.Domain.MaxX), numeric.Clamp(tp.Point.Y, l.Domain.MinY, l.Domain.MaxY)))
		c.labels = append(c.labels, LabelAnchor{
			At:       at.Add(geom.Pt(10, 16)),
			Away:     at,
			Text:     verdict(l, tp),
			Align:    AlignStart,
			Role:     "verdict",
			FontSize: DefaultFontSize,
			Color:    color,
		})
	}
	c.title(l.Title)
}

// verdict spells out the test-point check, e.g. "(0, 0): 0 ≥ 6 is false ✗".
func verdict(l diagram.LinearInequality, tp *diagram.TestPoint) string {
	name := fmt.Sprintf("(%s, %s)", numeric.Format(tp.Point.X), numeric.Format(tp.Point.Y))
	if tp.Label != "" {
		name = tp.Label + name
	}
	mark := "✓"
	if !tp.Satisfied {
		mark = "✗"
	}
	if len(l.Inequalities) == 1 {
		q := l.Inequalities[0]
		lhs := q.A*tp.Point.X + q.B*tp.Point.Y
		return fmt.Sprintf("%s: %s %s %s is %t %s", name, numeric.Format(lhs), q.Op.Symbol(), numeric.Format(q.C), tp.Satisfied, mark)
	}
	if tp.Satisfied {
		return name + " is a solution " + mark
	}
	return name + " is not a solution " + mark
}
