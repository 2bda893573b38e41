package engine

import (
	"github.com/inamate/diagrams/internal/diagram"
	"github.com/inamate/diagrams/internal/geom"
)

// Kind is the drawing operation of a primitive.
type Kind string

const (
	KindLine     Kind = "line"
	KindPolyline Kind = "polyline"
	KindArc      Kind = "arc"
	KindPolygon  Kind = "polygon"
	KindRegion   Kind = "filledRegion"
	KindText     Kind = "text"
	KindMarker   Kind = "pointMarker"
)

// Align is the horizontal anchor of a text primitive.
type Align string

const (
	AlignStart  Align = "start"
	AlignMiddle Align = "middle"
	AlignEnd    Align = "end"
)

// Style is the paint of a primitive. A zero Opacity means fully opaque.
type Style struct {
	Stroke      string    `json:"stroke,omitempty"`
	Fill        string    `json:"fill,omitempty"`
	StrokeWidth float64   `json:"strokeWidth,omitempty"`
	Opacity     float64   `json:"opacity,omitempty"`
	Dash        []float64 `json:"dash,omitempty"`
}

// Alpha returns the effective opacity.
func (s Style) Alpha() float64 {
	if s.Opacity <= 0 {
		return 1
	}
	return s.Opacity
}

// Primitive is one device-independent drawing instruction in viewport pixels
// (y grows downwards). Arc angles are in degrees, 0 pointing right and positive
// sweeping clockwise on screen.
type Primitive struct {
	Kind       Kind         `json:"kind"`
	Role       string       `json:"role,omitempty"`
	Points     []geom.Point `json:"points,omitempty"`
	Center     geom.Point   `json:"center"`
	Radius     float64      `json:"radius,omitempty"`
	StartAngle float64      `json:"startAngle,omitempty"`
	Sweep      float64      `json:"sweep,omitempty"`
	Wedge      bool         `json:"wedge,omitempty"`
	Filled     bool         `json:"filled,omitempty"`
	Text       string       `json:"text,omitempty"`
	Align      Align        `json:"align,omitempty"`
	FontSize   float64      `json:"fontSize,omitempty"`
	Bold       bool         `json:"bold,omitempty"`
	Style      Style        `json:"style"`
}

// Bounds returns the viewport box the primitive covers.
func (p Primitive) Bounds() geom.Rect {
	switch p.Kind {
	case KindArc:
		pts := geom.ArcPoints(p.Center, p.Radius, p.StartAngle, p.Sweep, 16)
		if p.Wedge {
			pts = append(pts, p.Center)
		}
		return geom.Bounds(pts)
	case KindMarker:
		return geom.Rect{X: p.Center.X - p.Radius, Y: p.Center.Y - p.Radius, Width: 2 * p.Radius, Height: 2 * p.Radius}
	case KindText:
		return textBox(p.Center, p.Text, p.FontSize, p.Align)
	}
	return geom.Bounds(p.Points)
}

// LabelAnchor is a piece of text attached to a viewport point. Builders emit
// anchors; the label pass moves them apart and turns them into text primitives.
type LabelAnchor struct {
	At       geom.Point `json:"at"`
	Text     string     `json:"text"`
	Align    Align      `json:"align"`
	Role     string     `json:"role,omitempty"`
	FontSize float64    `json:"fontSize,omitempty"`
	Color    string     `json:"color,omitempty"`
	// Away is the point the label is pushed away from when it collides.
	Away geom.Point `json:"-"`
}

// Result is a rendered diagram. Results may be shared through the page cache and
// must be treated as read-only.
type Result struct {
	Tool       diagram.Tool         `json:"toolName"`
	Key        string               `json:"key"`
	Width      float64              `json:"width"`
	Height     float64              `json:"height"`
	Primitives []Primitive          `json:"primitives"`
	Labels     []LabelAnchor        `json:"labels"`
	Caption    string               `json:"caption,omitempty"`
	Error      *diagram.RenderError `json:"error,omitempty"`
}

// ByRole returns the primitives with the given role in paint order.
func (r *Result) ByRole(role string) []Primitive {
	var out []Primitive
	for _, p := range r.Primitives {
		if p.Role == role {
			out = append(out, p)
		}
	}
	return out
}

// Label returns the first placed label with the given role.
func (r *Result) Label(role string) (LabelAnchor, bool) {
	for _, l := range r.Labels {
		if l.Role == role {
			return l, true
		}
	}
	return LabelAnchor{}, false
}
