package engine

import (
	"math"

	"github.com/inamate/diagrams/internal/geom"
	"github.com/inamate/diagrams/internal/numeric"
)

// Shared paint.
const (
	colorInk       = "#111827"
	colorMuted     = "#6b7280"
	colorGrid      = "#e5e7eb"
	colorAxis      = "#374151"
	colorHighlight = "#f59e0b"
	colorPaper     = "#ffffff"
	colorPass      = "#16a34a"
	colorFail      = "#dc2626"
)

var (
	inkStroke   = Style{Stroke: colorInk, StrokeWidth: 2}
	thinStroke  = Style{Stroke: colorInk, StrokeWidth: 1}
	gridStroke  = Style{Stroke: colorGrid, StrokeWidth: 1}
	axisStroke  = Style{Stroke: colorAxis, StrokeWidth: 1.5}
	highlighted = Style{Stroke: colorHighlight, StrokeWidth: 4}
	dashed      = []float64{6, 4}
)

// canvas collects the output of one builder.
type canvas struct {
	frame     *geom.Frame
	prims     []Primitive
	labels    []LabelAnchor
	obstacles []geom.Rect
}

func newCanvas(f *geom.Frame) *canvas {
	return &canvas{frame: f}
}

func (c *canvas) add(p Primitive) {
	c.prims = append(c.prims, p)
}

func (c *canvas) line(role string, a, b geom.Point, s Style) {
	c.add(Primitive{Kind: KindLine, Role: role, Points: []geom.Point{a, b}, Style: s})
}

func (c *canvas) polyline(role string, pts []geom.Point, s Style) {
	c.add(Primitive{Kind: KindPolyline, Role: role, Points: pts, Style: s})
}

func (c *canvas) polygon(role string, pts []geom.Point, s Style) {
	c.add(Primitive{Kind: KindPolygon, Role: role, Points: pts, Style: s})
}

func (c *canvas) rect(role string, r geom.Rect, s Style) {
	c.polygon(role, r.Corners(), s)
}

func (c *canvas) region(role string, pts []geom.Point, s Style) {
	c.add(Primitive{Kind: KindRegion, Role: role, Points: pts, Style: s})
}

func (c *canvas) arc(role string, center geom.Point, r, start, sweep float64, s Style) {
	c.add(Primitive{Kind: KindArc, Role: role, Center: center, Radius: r, StartAngle: start, Sweep: sweep, Style: s})
}

func (c *canvas) wedge(role string, center geom.Point, r, start, sweep float64, s Style) {
	c.add(Primitive{Kind: KindArc, Role: role, Center: center, Radius: r, StartAngle: start, Sweep: sweep, Wedge: true, Style: s})
}

func (c *canvas) marker(role string, at geom.Point, r float64, filled bool, color string) {
	s := Style{Stroke: color, StrokeWidth: 2, Fill: colorPaper}
	if filled {
		s.Fill = color
	}
	c.add(Primitive{Kind: KindMarker, Role: role, Center: at, Radius: r, Filled: filled, Style: s})
}

// text places fixed text that the label pass must route around.
func (c *canvas) text(role string, at geom.Point, text string, size float64, align Align, color string) {
	p := Primitive{Kind: KindText, Role: role, Center: at, Text: text, FontSize: size, Align: align, Style: Style{Fill: color}}
	c.add(p)
	c.obstacles = append(c.obstacles, p.Bounds())
}

func (c *canvas) label(role string, at, away geom.Point, text string, align Align) {
	if text == "" {
		return
	}
	c.labels = append(c.labels, LabelAnchor{At: at, Away: away, Text: text, Align: align, Role: role, FontSize: DefaultFontSize, Color: colorInk})
}

// angleMark draws the arc of the interior angle at vertex between the rays to p1
// and p2 and returns the screen direction of its bisector.
func (c *canvas) angleMark(role string, vertex, p1, p2 geom.Point, r float64, s Style) float64 {
	start, sweep := angleBetween(vertex, p1, p2)
	if s.Fill != "" {
		c.wedge(role, vertex, r, start, sweep, s)
	} else {
		c.arc(role, vertex, r, start, sweep, s)
	}
	return start + sweep/2
}

// rightAngleMark draws the small square at vertex.
func (c *canvas) rightAngleMark(role string, vertex, p1, p2 geom.Point, size float64) {
	u := p1.Sub(vertex).Unit().Mul(size)
	v := p2.Sub(vertex).Unit().Mul(size)
	c.polyline(role, []geom.Point{vertex.Add(u), vertex.Add(u).Add(v), vertex.Add(v)}, thinStroke)
}

// tick draws a short mark across the middle of a-b; n marks equal sides.
func (c *canvas) tick(role string, a, b geom.Point, n int) {
	dir := b.Sub(a).Unit()
	normal := dir.Perp()
	mid := a.Mid(b)
	for i := 0; i < n; i++ {
		off := dir.Mul((float64(i) - float64(n-1)/2) * 5)
		p := mid.Add(off)
		c.line(role, p.Add(normal.Mul(6)), p.Sub(normal.Mul(6)), thinStroke)
	}
}

// sideLabel anchors text beside segment a-b, on the side away from inside.
func (c *canvas) sideLabel(role string, a, b, inside geom.Point, text string) {
	mid := a.Mid(b)
	n := b.Sub(a).Perp().Unit()
	if n.Dot(inside.Sub(mid)) > 0 {
		n = n.Mul(-1)
	}
	c.label(role, mid.Add(n.Mul(16)), mid, text, AlignMiddle)
}

// angleBetween returns the start and signed sweep, in screen degrees, of the
// smaller angle at vertex from the ray to p1 to the ray to p2.
func angleBetween(vertex, p1, p2 geom.Point) (float64, float64) {
	a1 := p1.Sub(vertex).Angle()
	a2 := p2.Sub(vertex).Angle()
	sweep := math.Mod(a2-a1+540, 360) - 180
	return a1, sweep
}

// padDomain grows d by frac of its larger side on every edge, so thin shapes
// keep a usable margin.
func padDomain(d geom.Domain, frac float64) geom.Domain {
	m := math.Max(d.MaxX-d.MinX, d.MaxY-d.MinY) * frac
	if m < numeric.Epsilon {
		m = 1
	}
	return geom.Domain{MinX: d.MinX - m, MaxX: d.MaxX + m, MinY: d.MinY - m, MaxY: d.MaxY + m}
}

// finish runs the label pass and returns the primitives with the labels appended
// as text.
func (c *canvas) finish() ([]Primitive, []LabelAnchor) {
	bounds := c.frame.Bounds().Inset(4)
	placed := placeLabels(c.labels, c.obstacles, bounds)
	prims := c.prims
	for _, l := range placed {
		prims = append(prims, Primitive{
			Kind:     KindText,
			Role:     l.Role,
			Center:   l.At,
			Text:     l.Text,
			Align:    l.Align,
			FontSize: l.FontSize,
			Style:    Style{Fill: l.Color},
		})
	}
	return prims, placed
}
