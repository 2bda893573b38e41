package engine

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/inamate/diagrams/internal/geom"
)

// DrawCommand is a single drawing operation for a Canvas2D front end. A client
// replays the list in order onto its context.
type DrawCommand struct {
	Op          string        `json:"op"`             // "path" or "text"
	Role        string        `json:"role,omitempty"` // for hit correlation
	Path        []PathCommand `json:"path,omitempty"`
	Fill        string        `json:"fill,omitempty"`
	Stroke      string        `json:"stroke,omitempty"`
	StrokeWidth float64       `json:"strokeWidth,omitempty"`
	Opacity     float64       `json:"opacity,omitempty"`
	Dash        []float64     `json:"dash,omitempty"`
	Text        string        `json:"text,omitempty"`
	X           float64       `json:"x,omitempty"`
	Y           float64       `json:"y,omitempty"`
	Align       string        `json:"align,omitempty"`
	Font        string        `json:"font,omitempty"`
}

// PathCommand is one path segment in Canvas2D form: ["M", x, y], ["L", x, y],
// ["A", cx, cy, r, startRad, endRad, anticlockwise] or ["Z"].
type PathCommand []any

// Compile turns a rendered diagram into draw commands in paint order.
func Compile(r *Result) []DrawCommand {
	if r == nil {
		return nil
	}
	commands := make([]DrawCommand, 0, len(r.Primitives))
	for _, p := range r.Primitives {
		if p.Kind == KindText {
			font := strconv.FormatFloat(p.FontSize, 'f', -1, 64) + "px sans-serif"
			if p.Bold {
				font = "bold " + font
			}
			for _, line := range p.Lines() {
				commands = append(commands, DrawCommand{
					Op:      "text",
					Role:    p.Role,
					Text:    line.Text,
					X:       line.X,
					Y:       line.Y,
					Align:   canvasAlign(p.Align),
					Font:    font,
					Fill:    p.Style.Fill,
					Opacity: p.Style.Alpha(),
				})
			}
			continue
		}
		commands = append(commands, DrawCommand{
			Op:          "path",
			Role:        p.Role,
			Path:        primitivePath(p),
			Fill:        fillOf(p),
			Stroke:      p.Style.Stroke,
			StrokeWidth: p.Style.StrokeWidth,
			Opacity:     p.Style.Alpha(),
			Dash:        p.Style.Dash,
		})
	}
	return commands
}

func primitivePath(p Primitive) []PathCommand {
	var path []PathCommand
	switch p.Kind {
	case KindArc:
		a0, a1 := rad(p.StartAngle), rad(p.StartAngle+p.Sweep)
		if p.Wedge {
			path = append(path, PathCommand{"M", p.Center.X, p.Center.Y})
		}
		path = append(path, PathCommand{"A", p.Center.X, p.Center.Y, p.Radius, a0, a1, p.Sweep < 0})
		if p.Wedge {
			path = append(path, PathCommand{"Z"})
		}
	case KindMarker:
		path = append(path, PathCommand{"A", p.Center.X, p.Center.Y, p.Radius, 0.0, 2 * math.Pi, false})
	default:
		for i, pt := range p.Points {
			op := "L"
			if i == 0 {
				op = "M"
			}
			path = append(path, PathCommand{op, pt.X, pt.Y})
		}
		if p.Kind == KindPolygon || p.Kind == KindRegion {
			path = append(path, PathCommand{"Z"})
		}
	}
	return path
}

// fillOf leaves open shapes unfilled whatever their style says.
func fillOf(p Primitive) string {
	switch p.Kind {
	case KindLine, KindPolyline:
		return ""
	case KindArc:
		if !p.Wedge {
			return ""
		}
	}
	return p.Style.Fill
}

func rad(deg float64) float64 { return deg * math.Pi / 180 }

func canvasAlign(a Align) string {
	switch a {
	case AlignStart:
		return "left"
	case AlignEnd:
		return "right"
	}
	return "center"
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// HitTest returns the role of the topmost primitive under (x, y), or "" when
// the point hits nothing. Text and markers hit on their boxes, closed shapes on
// their interior and strokes within a few pixels.
func HitTest(r *Result, x, y float64) string {
	if r == nil {
		return ""
	}
	pt := geom.Pt(x, y)
	for i := len(r.Primitives) - 1; i >= 0; i-- {
		if hits(r.Primitives[i], pt) {
			return r.Primitives[i].Role
		}
	}
	return ""
}

const hitSlop = 4.0

func hits(p Primitive, pt geom.Point) bool {
	switch p.Kind {
	case KindText, KindMarker:
		return p.Bounds().Inset(-hitSlop / 2).Contains(pt)
	case KindPolygon, KindRegion:
		if p.Style.Fill != "" && geom.PolygonContains(p.Points, pt) {
			return true
		}
		return nearPath(p, pt, true)
	case KindArc:
		d := p.Center.Dist(pt)
		near := math.Abs(d-p.Radius) <= hitSlop
		if p.Wedge {
			near = d <= p.Radius
		}
		return near && withinSweep(pt.Sub(p.Center).Angle()-p.StartAngle, p.Sweep)
	}
	return nearPath(p, pt, false)
}

func nearPath(p Primitive, pt geom.Point, closed bool) bool {
	n := len(p.Points)
	limit := hitSlop + p.Style.StrokeWidth/2
	for i := 0; i+1 < n; i++ {
		if segmentDist(p.Points[i], p.Points[i+1], pt) <= limit {
			return true
		}
	}
	return closed && n > 2 && segmentDist(p.Points[n-1], p.Points[0], pt) <= limit
}

// withinSweep reports whether the offset angle from the start of an arc falls
// inside its sweep, whichever way it turns.
func withinSweep(offset, sweep float64) bool {
	if math.Abs(sweep) >= 360 {
		return true
	}
	o := math.Mod(offset, 360)
	if o < 0 {
		o += 360
	}
	if sweep >= 0 {
		return o <= sweep
	}
	return o == 0 || o-360 >= sweep
}

func segmentDist(a, b, p geom.Point) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Dist(a)
	}
	t := math.Max(0, math.Min(1, p.Sub(a).Dot(ab)/l2))
	return p.Dist(a.Add(ab.Mul(t)))
}

// SelectionBounds returns the combined box of every primitive with the given role.
func SelectionBounds(r *Result, role string) geom.Rect {
	var out geom.Rect
	if r == nil {
		return out
	}
	for _, p := range r.ByRole(role) {
		out = out.Union(p.Bounds())
	}
	return out
}
