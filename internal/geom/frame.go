package geom

import (
	"fmt"

	"github.com/inamate/diagrams/internal/numeric"
)

// Domain is a rectangle in mathematical coordinates (y grows upwards).
type Domain struct {
	MinX float64 `json:"minX"`
	MaxX float64 `json:"maxX"`
	MinY float64 `json:"minY"`
	MaxY float64 `json:"maxY"`
}

// Contains reports whether p lies in the domain, edges included.
func (d Domain) Contains(p Point) bool {
	return p.X >= d.MinX && p.X <= d.MaxX && p.Y >= d.MinY && p.Y <= d.MaxY
}

// Center returns the geometric center of the domain.
func (d Domain) Center() Point {
	return Point{d.MinX + (d.MaxX-d.MinX)/2, d.MinY + (d.MaxY-d.MinY)/2}
}

// Rect returns the domain as a Rect in domain units.
func (d Domain) Rect() Rect {
	return Rect{X: d.MinX, Y: d.MinY, Width: d.MaxX - d.MinX, Height: d.MaxY - d.MinY}
}

// Polygon returns the domain corners counter-clockwise from the lower left.
func (d Domain) Polygon() []Point {
	return []Point{{d.MinX, d.MinY}, {d.MaxX, d.MinY}, {d.MaxX, d.MaxY}, {d.MinX, d.MaxY}}
}

// Grow expands the domain by frac of its size on every side.
func (d Domain) Grow(frac float64) Domain {
	dx, dy := (d.MaxX-d.MinX)*frac, (d.MaxY-d.MinY)*frac
	return Domain{d.MinX - dx, d.MaxX + dx, d.MinY - dy, d.MaxY + dy}
}

// DomainOf returns the bounding domain of the points.
func DomainOf(pts []Point) Domain {
	b := Bounds(pts)
	return Domain{b.MinX(), b.MaxX(), b.MinY(), b.MaxY()}
}

// Viewport is the fixed-size drawing surface, in pixels, with y growing downwards.
type Viewport struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Padding float64 `json:"padding"`
}

// Frame maps one diagram's domain onto its viewport. Each render pass builds its own.
type Frame struct {
	Domain   Domain
	Viewport Viewport

	toView   Matrix2D
	toDomain Matrix2D
	sx, sy   float64
}

// NewFrame builds the affine mapping from d onto the padded area of v. With
// preserveAspect the smaller scale is used on both axes and the plot is centered.
func NewFrame(d Domain, v Viewport, preserveAspect bool) (*Frame, error) {
	if err := numeric.CheckRange(d.MinX, d.MaxX); err != nil {
		return nil, fmt.Errorf("x domain: %w", err)
	}
	if err := numeric.CheckRange(d.MinY, d.MaxY); err != nil {
		return nil, fmt.Errorf("y domain: %w", err)
	}
	innerW := v.Width - 2*v.Padding
	innerH := v.Height - 2*v.Padding
	if innerW <= 0 || innerH <= 0 {
		return nil, fmt.Errorf("%w: viewport %gx%g leaves no room inside padding %g",
			numeric.ErrInvalidRange, v.Width, v.Height, v.Padding)
	}

	sx := innerW / (d.MaxX - d.MinX)
	sy := innerH / (d.MaxY - d.MinY)
	var ox, oy float64
	if preserveAspect {
		s := min(sx, sy)
		ox = (innerW - s*(d.MaxX-d.MinX)) / 2
		oy = (innerH - s*(d.MaxY-d.MinY)) / 2
		sx, sy = s, s
	}

	// x' = pad + ox + (x - minX)*sx
	// y' = height - pad - oy - (y - minY)*sy
	toView := Matrix2D{
		sx, 0,
		0, -sy,
		v.Padding + ox - d.MinX*sx,
		v.Height - v.Padding - oy + d.MinY*sy,
	}
	toDomain, ok := toView.Invert()
	if !ok {
		return nil, fmt.Errorf("%w: singular frame", numeric.ErrInvalidRange)
	}
	return &Frame{Domain: d, Viewport: v, toView: toView, toDomain: toDomain, sx: sx, sy: sy}, nil
}

// PixelFrame returns a frame whose domain is the viewport itself in y-up units.
// Builders that lay out in pixels use the viewport directly and ignore the mapping.
func PixelFrame(v Viewport) *Frame {
	f, err := NewFrame(Domain{0, v.Width, 0, v.Height}, Viewport{Width: v.Width, Height: v.Height}, false)
	if err != nil {
		// only reachable for a zero-sized viewport
		return &Frame{Viewport: v, toView: Identity(), toDomain: Identity(), sx: 1, sy: 1}
	}
	f.Viewport.Padding = v.Padding
	return f
}

// Refit returns a frame over the same viewport for a new domain.
func (f *Frame) Refit(d Domain, preserveAspect bool) (*Frame, error) {
	return NewFrame(d, f.Viewport, preserveAspect)
}

// ToView maps a domain point to viewport pixels.
func (f *Frame) ToView(p Point) Point { return f.toView.Apply(p) }

// ToDomain maps a viewport pixel back to the domain.
func (f *Frame) ToDomain(p Point) Point { return f.toDomain.Apply(p) }

// ToViewAll maps a list of domain points.
func (f *Frame) ToViewAll(pts []Point) []Point { return f.toView.ApplyAll(pts) }

// X maps a domain x coordinate.
func (f *Frame) X(x float64) float64 { return f.toView[0]*x + f.toView[4] }

// Y maps a domain y coordinate.
func (f *Frame) Y(y float64) float64 { return f.toView[3]*y + f.toView[5] }

// ScaleX is the number of pixels per domain unit along x.
func (f *Frame) ScaleX() float64 { return f.sx }

// ScaleY is the number of pixels per domain unit along y.
func (f *Frame) ScaleY() float64 { return f.sy }

// Matrix exposes the domain-to-viewport transform.
func (f *Frame) Matrix() Matrix2D { return f.toView }

// PlotArea is the domain rectangle in viewport pixels.
func (f *Frame) PlotArea() Rect {
	return Bounds(f.ToViewAll(f.Domain.Polygon()))
}

// Bounds is the full viewport rectangle.
func (f *Frame) Bounds() Rect {
	return Rect{Width: f.Viewport.Width, Height: f.Viewport.Height}
}

// Inner is the viewport minus its padding.
func (f *Frame) Inner() Rect {
	return f.Bounds().Inset(f.Viewport.Padding)
}
