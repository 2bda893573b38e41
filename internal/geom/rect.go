package geom

import "math"

// Rect is an axis-aligned box.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains checks if a point is inside the rect (edges included).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// IsEmpty checks if the rect has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Union returns the smallest rect containing both rects.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}
	minX := min(r.X, other.X)
	minY := min(r.Y, other.Y)
	maxX := max(r.X+r.Width, other.X+other.Width)
	maxY := max(r.Y+r.Height, other.Y+other.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Intersects reports whether two rects overlap with positive area.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.Width && o.X < r.X+r.Width && r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

// Center returns the center point of the rect.
func (r Rect) Center() Point {
	return Point{r.X + r.Width/2, r.Y + r.Height/2}
}

// Inset shrinks the rect by d on every side.
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X + d, Y: r.Y + d, Width: r.Width - 2*d, Height: r.Height - 2*d}
}

// Corners returns the four corners clockwise from (X, Y).
func (r Rect) Corners() []Point {
	return []Point{
		{r.X, r.Y},
		{r.X + r.Width, r.Y},
		{r.X + r.Width, r.Y + r.Height},
		{r.X, r.Y + r.Height},
	}
}

func (r Rect) MinX() float64 { return r.X }
func (r Rect) MaxX() float64 { return r.X + r.Width }
func (r Rect) MinY() float64 { return r.Y }
func (r Rect) MaxY() float64 { return r.Y + r.Height }

// Bounds returns the bounding box of the points.
func Bounds(pts []Point) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// ClipSegment clips the segment a-b to the rect (Liang-Barsky). It returns false
// when nothing of the segment lies inside.
func (r Rect) ClipSegment(a, b Point) (Point, Point, bool) {
	return r.clipParametric(a, b.Sub(a), 0, 1)
}

// ClipLine clips the infinite line through p with direction dir to the rect.
func (r Rect) ClipLine(p, dir Point) (Point, Point, bool) {
	return r.clipParametric(p, dir, math.Inf(-1), math.Inf(1))
}

func (r Rect) clipParametric(p, d Point, t0, t1 float64) (Point, Point, bool) {
	checks := [4][2]float64{
		{-d.X, p.X - r.MinX()},
		{d.X, r.MaxX() - p.X},
		{-d.Y, p.Y - r.MinY()},
		{d.Y, r.MaxY() - p.Y},
	}
	for _, c := range checks {
		pk, qk := c[0], c[1]
		if pk == 0 {
			if qk < 0 {
				return Point{}, Point{}, false
			}
			continue
		}
		t := qk / pk
		if pk < 0 {
			if t > t1 {
				return Point{}, Point{}, false
			}
			t0 = math.Max(t0, t)
		} else {
			if t < t0 {
				return Point{}, Point{}, false
			}
			t1 = math.Min(t1, t)
		}
	}
	if math.IsInf(t0, 0) || math.IsInf(t1, 0) || t0 > t1 {
		return Point{}, Point{}, false
	}
	return p.Add(d.Mul(t0)), p.Add(d.Mul(t1)), true
}

// ClipPolyline clips a polyline to the rect and returns the visible runs.
func (r Rect) ClipPolyline(pts []Point) [][]Point {
	var runs [][]Point
	var cur []Point
	for i := 0; i+1 < len(pts); i++ {
		a, b, ok := r.ClipSegment(pts[i], pts[i+1])
		if !ok {
			if len(cur) > 1 {
				runs = append(runs, cur)
			}
			cur = nil
			continue
		}
		if len(cur) == 0 || cur[len(cur)-1] != a {
			if len(cur) > 1 {
				runs = append(runs, cur)
			}
			cur = []Point{a}
		}
		cur = append(cur, b)
		if b != pts[i+1] {
			runs = append(runs, cur)
			cur = nil
		}
	}
	if len(cur) > 1 {
		runs = append(runs, cur)
	}
	return runs
}

// ClipHalfPlane keeps the part of a convex polygon where a*x + b*y - c has the
// given sign (+1 keeps >= 0, -1 keeps <= 0). Sutherland-Hodgman against one edge.
func ClipHalfPlane(poly []Point, a, b, c float64, sign int) []Point {
	s := float64(sign)
	f := func(p Point) float64 { return s * (a*p.X + b*p.Y - c) }
	var out []Point
	for i := range poly {
		cur, next := poly[i], poly[(i+1)%len(poly)]
		fc, fn := f(cur), f(next)
		if fc >= 0 {
			out = append(out, cur)
		}
		if (fc >= 0) != (fn >= 0) {
			t := fc / (fc - fn)
			out = append(out, cur.Lerp(next, t))
		}
	}
	return out
}
