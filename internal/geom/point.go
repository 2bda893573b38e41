package geom

import "math"

// Point is a 2D position. Whether it is in domain or viewport space depends on who
// holds it; primitives only ever carry viewport points.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func Pt(x, y float64) Point { return Point{x, y} }

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Mul(s float64) Point { return Point{p.X * s, p.Y * s} }
func (p Point) Dot(q Point) float64 { return p.X*q.X + p.Y*q.Y }
func (p Point) Cross(q Point) float64 { return p.X*q.Y - p.Y*q.X }
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }
func (p Point) Dist(q Point) float64 { return p.Sub(q).Len() }
func (p Point) Mid(q Point) Point { return Point{(p.X + q.X) / 2, (p.Y + q.Y) / 2} }
func (p Point) Lerp(q Point, t float64) Point {
	return Point{p.X + (q.X-p.X)*t, p.Y + (q.Y-p.Y)*t}
}

// Unit returns the unit vector in the direction of p, or the zero vector.
func (p Point) Unit() Point {
	l := p.Len()
	if l == 0 {
		return Point{}
	}
	return Point{p.X / l, p.Y / l}
}

// Perp returns p rotated a quarter turn.
func (p Point) Perp() Point { return Point{-p.Y, p.X} }

// Angle returns the direction of p in degrees.
func (p Point) Angle() float64 {
	return math.Atan2(p.Y, p.X) * 180 / math.Pi
}

// Polar returns the point at distance r from c in direction deg.
func Polar(c Point, r, deg float64) Point {
	rad := deg * math.Pi / 180
	return Point{c.X + r*math.Cos(rad), c.Y + r*math.Sin(rad)}
}

// Centroid returns the average of the points.
func Centroid(pts ...Point) Point {
	var c Point
	if len(pts) == 0 {
		return c
	}
	for _, p := range pts {
		c = c.Add(p)
	}
	return c.Mul(1 / float64(len(pts)))
}

// PolygonContains reports whether p is strictly inside the polygon (even-odd rule).
func PolygonContains(poly []Point, p Point) bool {
	inside := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// PolygonArea returns the signed area of the polygon.
func PolygonArea(poly []Point) float64 {
	area := 0.0
	for i := range poly {
		j := (i + 1) % len(poly)
		area += poly[i].Cross(poly[j])
	}
	return area / 2
}

// ArcPoints samples an arc into a polyline. Angles are in degrees; the sweep may be
// negative.
func ArcPoints(c Point, r, start, sweep float64, segments int) []Point {
	if segments < 1 {
		segments = 1
	}
	out := make([]Point, segments+1)
	for i := 0; i <= segments; i++ {
		out[i] = Polar(c, r, start+sweep*float64(i)/float64(segments))
	}
	return out
}
