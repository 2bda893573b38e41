package engine

import (
	"github.com/inamate/diagrams/internal/diagram"
	"github.com/inamate/diagrams/internal/geom"
	"github.com/inamate/diagrams/internal/numeric"
)

const (
	triangleBase   = 200.0
	angleRadius    = 26.0
	exteriorRadius = 34.0
	trianglePad    = 0.14
)

var triangleFill = Style{Stroke: colorInk, StrokeWidth: 2, Fill: "#eff6ff"}

// apexFrom returns the third vertex of the triangle on base p0-p1 with angle a0
// at p0 and a1 at p1, on the left of p0→p1 when up is set.
func apexFrom(p0, p1 geom.Point, a0, a1 float64, up bool) geom.Point {
	a2 := 180 - a0 - a1
	side := p0.Dist(p1) * numeric.SinDeg(a1) / numeric.SinDeg(a2)
	rot := a0
	if !up {
		rot = -a0
	}
	dir := geom.RotateDegrees(rot).Apply(p1.Sub(p0).Unit())
	return p0.Add(dir.Mul(side))
}

// angleText is the label of an angle: an explicit label wins, given angles show
// their value and derived ones are left for the reader.
func angleText(label string, value float64, given bool) string {
	switch {
	case label != "":
		return label
	case given:
		return numeric.FormatDegrees(value)
	}
	return "?"
}

// vertexLabel places a vertex name just outside the figure.
func (c *canvas) vertexLabel(name string, at, center geom.Point) {
	dir := at.Sub(center).Unit()
	c.label("vertex", at.Add(dir.Mul(16)), center, name, AlignMiddle)
}

func (c *canvas) markAngle(role string, vertex, p1, p2 geom.Point, r float64, text string, s Style) {
	bis := c.angleMark(role, vertex, p1, p2, r, s)
	c.label(role+"Label", geom.Polar(vertex, r+16, bis), vertex, text, AlignMiddle)
}

func fitTriangle(pts []geom.Point, v geom.Viewport) (*geom.Frame, error) {
	return geom.NewFrame(padDomain(geom.DomainOf(pts), trianglePad), v, true)
}

// --- rightTriangle ---

// rightTriangleVertices puts θ at the origin, the right angle on the x axis and the
// third vertex above it, with a hypotenuse of triangleBase.
func rightTriangleVertices(rt diagram.RightTriangle) []geom.Point {
	adj := triangleBase * numeric.CosDeg(rt.Theta())
	opp := triangleBase * numeric.SinDeg(rt.Theta())
	return []geom.Point{{0, 0}, {adj, 0}, {adj, opp}}
}

func layoutRightTriangle(rt diagram.RightTriangle, v geom.Viewport) (*geom.Frame, error) {
	return fitTriangle(rightTriangleVertices(rt), v)
}

func sideText(value, kind string, showKind bool) string {
	switch {
	case showKind && value != "":
		return value + " (" + kind + ")"
	case showKind:
		return kind
	}
	return value
}

func buildRightTriangle(rt diagram.RightTriangle, c *canvas) {
	pts := c.frame.ToViewAll(rightTriangleVertices(rt))
	a, b, t := pts[0], pts[1], pts[2]
	center := geom.Centroid(a, b, t)

	c.polygon("triangle", pts, triangleFill)

	sides := map[string][2]geom.Point{
		"adjacent":   {a, b},
		"opposite":   {b, t},
		"hypotenuse": {a, t},
	}
	if seg, ok := sides[rt.HighlightSide]; ok {
		c.line("highlight", seg[0], seg[1], highlighted)
	}
	if rt.ShowRightAngle {
		c.rightAngleMark("rightAngle", b, a, t, 14)
	}
	if rt.ShowAngleMark {
		text := rt.AngleLabel
		if text == "" {
			text = "θ"
			if rt.AngleGiven {
				text = numeric.FormatDegrees(rt.Theta())
			}
		}
		c.markAngle("angleMark", a, b, t, angleRadius+4, text, Style{Stroke: colorHighlight, StrokeWidth: 2})
	}

	c.sideLabel("adjacent", a, b, center, sideText(rt.Adjacent, "adjacent", rt.ShowSideTypeLabels))
	c.sideLabel("opposite", b, t, center, sideText(rt.Opposite, "opposite", rt.ShowSideTypeLabels))
	c.sideLabel("hypotenuse", a, t, center, sideText(rt.Hypotenuse, "hypotenuse", rt.ShowSideTypeLabels))
}

// --- extendedLineTriangle ---

// extendedLineVertices lays the extended side along the x axis, the apex above it
// and D beyond the extended end, then applies the rotation.
func extendedLineVertices(e diagram.ExtendedLineTriangle) ([3]geom.Point, geom.Point) {
	var tri [3]geom.Point
	apex := e.Apex()
	tri[e.From] = geom.Pt(0, 0)
	tri[e.Through] = geom.Pt(triangleBase, 0)
	tri[apex] = apexFrom(tri[e.From], tri[e.Through], e.Angles[e.From], e.Angles[e.Through], true)
	d := tri[e.Through].Add(geom.Pt(e.ExtensionLength, 0))

	if e.Rotation != 0 {
		m := geom.RotateAbout(e.Rotation, geom.Centroid(tri[:]...))
		for i := range tri {
			tri[i] = m.Apply(tri[i])
		}
		d = m.Apply(d)
	}
	return tri, d
}

func layoutExtendedLine(e diagram.ExtendedLineTriangle, v geom.Viewport) (*geom.Frame, error) {
	tri, d := extendedLineVertices(e)
	return fitTriangle(append(tri[:], d), v)
}

func buildExtendedLine(e diagram.ExtendedLineTriangle, c *canvas) {
	triD, dD := extendedLineVertices(e)
	tri := c.frame.ToViewAll(triD[:])
	d := c.frame.ToView(dD)
	center := geom.Centroid(tri...)
	apex := e.Apex()

	c.polygon("triangle", tri, triangleFill)
	c.line("extension", tri[e.Through], d, inkStroke)

	if e.ShowExteriorAngle {
		text := e.ExteriorLabel
		if text == "" {
			text = angleText("", e.Exterior, e.Given[e.Through])
		}
		c.markAngle("exteriorAngle", tri[e.Through], d, tri[apex], exteriorRadius, text,
			Style{Stroke: colorHighlight, StrokeWidth: 2, Fill: colorHighlight, Opacity: 0.3})
	}

	for i := range tri {
		text := e.AngleLabels[i]
		if text == "" && !e.Given[i] {
			continue
		}
		p1, p2 := tri[(i+1)%3], tri[(i+2)%3]
		c.markAngle("angle", tri[i], p1, p2, angleRadius, angleText(text, e.Angles[i], e.Given[i]), thinStroke)
	}

	for i := range tri {
		c.vertexLabel(e.Vertices[i], tri[i], center)
	}
	dir := d.Sub(tri[e.Through]).Unit()
	c.label("vertex", d.Add(dir.Mul(14)), tri[e.Through], e.Vertices[3], AlignMiddle)

	c.sideLabel("side", tri[0], tri[1], center, e.Sides[0])
	c.sideLabel("side", tri[1], tri[2], center, e.Sides[1])
	c.sideLabel("side", tri[0], tri[2], center, e.Sides[2])
}

// --- adjacentTriangles ---

// adjacentVertices puts the shared edge on the x axis with the first triangle
// above it and the second below; the horizontal layout turns the edge upright so
// the triangles sit side by side.
func adjacentVertices(a diagram.AdjacentTriangles) ([3]geom.Point, [3]geom.Point) {
	place := func(t diagram.Triangle, up bool) [3]geom.Point {
		var pts [3]geom.Point
		s0, s1 := geom.Pt(0, 0), geom.Pt(triangleBase, 0)
		pts[t.Shared[0]] = s0
		pts[t.Shared[1]] = s1
		pts[t.Apex] = apexFrom(s0, s1, t.Angles[t.Shared[0]], t.Angles[t.Shared[1]], up)
		return pts
	}
	first, second := place(a.First, true), place(a.Second, false)
	if a.Layout == "horizontal" {
		m := geom.RotateAbout(90, geom.Pt(triangleBase/2, 0))
		for i := range first {
			first[i] = m.Apply(first[i])
			second[i] = m.Apply(second[i])
		}
	}
	return first, second
}

func layoutAdjacent(a diagram.AdjacentTriangles, v geom.Viewport) (*geom.Frame, error) {
	first, second := adjacentVertices(a)
	return fitTriangle(append(first[:], second[:]...), v)
}

func buildAdjacent(a diagram.AdjacentTriangles, c *canvas) {
	firstD, secondD := adjacentVertices(a)
	tris := []diagram.Triangle{a.First, a.Second}
	pts := [][]geom.Point{c.frame.ToViewAll(firstD[:]), c.frame.ToViewAll(secondD[:])}
	fills := []string{"#eff6ff", "#fef3c7"}
	center := geom.Centroid(append(append([]geom.Point{}, pts[0]...), pts[1]...)...)

	for k := range tris {
		c.polygon([]string{"triangle1", "triangle2"}[k], pts[k], Style{Stroke: colorInk, StrokeWidth: 2, Fill: fills[k]})
	}
	s0, s1 := pts[0][a.First.Shared[0]], pts[0][a.First.Shared[1]]
	c.line("sharedSide", s0, s1, Style{Stroke: colorInk, StrokeWidth: 2.5})

	for k, t := range tris {
		p := pts[k]
		if t.ShowEqualSides {
			switch t.Type {
			case "isosceles":
				c.tick("equalSide", p[t.Apex], p[t.Shared[0]], 1)
				c.tick("equalSide", p[t.Apex], p[t.Shared[1]], 1)
			case "equilateral":
				for i := range p {
					c.tick("equalSide", p[i], p[(i+1)%3], 1)
				}
			}
		}
		if t.Type == "right" {
			for i := range p {
				if numeric.AnglesEqual(t.Angles[i], 90) {
					c.rightAngleMark("rightAngle", p[i], p[(i+1)%3], p[(i+2)%3], 12)
				}
			}
		}
	}

	// highlights go under the angle marks
	for k, t := range tris {
		p := pts[k]
		for i := range p {
			j := (i + 1) % 3
			if a.HighlightSide != "" && (a.HighlightSide == t.Vertices[i]+t.Vertices[j] || a.HighlightSide == t.Vertices[j]+t.Vertices[i]) {
				c.line("highlight", p[i], p[j], highlighted)
			}
		}
	}

	for k, t := range tris {
		p := pts[k]
		for i := range p {
			p1, p2 := p[(i+1)%3], p[(i+2)%3]
			style := thinStroke
			role := "angle"
			if highlightsAngle(a.HighlightAngle, t, i) {
				style = Style{Stroke: colorHighlight, StrokeWidth: 2, Fill: colorHighlight, Opacity: 0.35}
				role = "highlightAngle"
			} else if !a.ShowAngles {
				continue
			}
			text := ""
			if a.ShowAngles {
				text = angleText(t.AngleLabels[i], t.Angles[i], t.Given[i])
			}
			c.markAngle(role, p[i], p1, p2, angleRadius, text, style)
		}
	}

	seen := map[string]bool{}
	for k, t := range tris {
		for i, name := range t.Vertices {
			if seen[name] {
				continue
			}
			seen[name] = true
			c.vertexLabel(name, pts[k][i], center)
		}
	}
}

// highlightsAngle matches a highlight request against vertex i of t. A single
// vertex name selects that vertex in every triangle; a three-vertex name such as
// "BAC" selects the angle at its middle vertex in the triangle holding all three.
func highlightsAngle(spec string, t diagram.Triangle, i int) bool {
	if spec == "" {
		return false
	}
	if spec == t.Vertices[i] {
		return true
	}
	r := []rune(spec)
	if len(r) != 3 || string(r[1]) != t.Vertices[i] {
		return false
	}
	others := map[string]bool{t.Vertices[(i+1)%3]: true, t.Vertices[(i+2)%3]: true}
	return others[string(r[0])] && others[string(r[2])]
}
