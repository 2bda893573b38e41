package geom

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/diagrams/internal/numeric"
)

func assertPoint(t *testing.T, want, got Point) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-9, "x")
	assert.InDelta(t, want.Y, got.Y, 1e-9, "y")
}

func TestMatrixInvertRoundTrip(t *testing.T) {
	m := Translate(10, -4).Multiply(RotateDegrees(30)).Multiply(Scale(2, 3))
	inv, ok := m.Invert()
	require.True(t, ok)
	assert.True(t, m.Multiply(inv).IsIdentity())

	_, ok = Scale(0, 1).Invert()
	assert.False(t, ok)
}

func TestRotateAbout(t *testing.T) {
	m := RotateAbout(90, Pt(1, 1))
	assertPoint(t, Pt(1, 2), m.Apply(Pt(2, 1)))
}

func TestFrameMapsCornersWithInvertedY(t *testing.T) {
	f, err := NewFrame(Domain{-5, 5, -5, 5}, Viewport{Width: 500, Height: 500, Padding: 60}, false)
	require.NoError(t, err)

	assertPoint(t, Pt(60, 440), f.ToView(Pt(-5, -5)))
	assertPoint(t, Pt(440, 60), f.ToView(Pt(5, 5)))
	assertPoint(t, Pt(250, 250), f.ToView(Pt(0, 0)))
	assert.InDelta(t, 250.0, f.X(0), 1e-9)
	assert.InDelta(t, 60.0, f.Y(5), 1e-9)

	assertPoint(t, Pt(2, -3), f.ToDomain(f.ToView(Pt(2, -3))))
}

func TestFramePreserveAspectCenters(t *testing.T) {
	f, err := NewFrame(Domain{0, 10, 0, 5}, Viewport{Width: 300, Height: 300, Padding: 0}, true)
	require.NoError(t, err)
	assert.Equal(t, f.ScaleX(), f.ScaleY())
	assert.InDelta(t, 30.0, f.ScaleX(), 1e-9)
	// 5 units tall at 30px = 150px, centered in 300
	assertPoint(t, Pt(0, 225), f.ToView(Pt(0, 0)))
	assertPoint(t, Pt(300, 75), f.ToView(Pt(10, 5)))
}

func TestFrameRejectsDegenerateDomain(t *testing.T) {
	_, err := NewFrame(Domain{1, 1, 0, 1}, Viewport{Width: 100, Height: 100}, false)
	assert.True(t, errors.Is(err, numeric.ErrInvalidRange))

	_, err = NewFrame(Domain{0, 1, 0, 1}, Viewport{Width: 100, Height: 100, Padding: 60}, false)
	assert.True(t, errors.Is(err, numeric.ErrInvalidRange))
}

func TestFrameHandlesExtremeScales(t *testing.T) {
	f, err := NewFrame(Domain{0, 1e-9, 0, 1e12}, Viewport{Width: 400, Height: 400, Padding: 20}, false)
	require.NoError(t, err)
	p := f.ToView(Pt(1e-9, 1e12))
	assert.InDelta(t, 380.0, p.X, 1e-6)
	assert.InDelta(t, 20.0, p.Y, 1e-6)
}

func TestClipLine(t *testing.T) {
	r := Rect{X: -5, Y: -5, Width: 10, Height: 10}
	// 2x + 3y = 6 through (0, 2) with direction (3, -2)
	a, b, ok := r.ClipLine(Pt(0, 2), Pt(3, -2))
	require.True(t, ok)
	for _, p := range []Point{a, b} {
		assert.InDelta(t, 6.0, 2*p.X+3*p.Y, 1e-9)
		assert.True(t, r.Inset(-1e-9).Contains(p))
	}

	_, _, ok = r.ClipLine(Pt(0, 20), Pt(1, 0))
	assert.False(t, ok)
}

func TestClipPolyline(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	runs := r.ClipPolyline([]Point{{-5, 5}, {5, 5}, {5, 15}, {8, 15}, {8, 5}})
	require.Len(t, runs, 2)
	assertPoint(t, Pt(0, 5), runs[0][0])
	assertPoint(t, Pt(5, 10), runs[0][len(runs[0])-1])
	assertPoint(t, Pt(8, 10), runs[1][0])
	assertPoint(t, Pt(8, 5), runs[1][1])
}

func TestClipHalfPlane(t *testing.T) {
	square := Domain{-5, 5, -5, 5}.Polygon()
	// keep x >= 0
	half := ClipHalfPlane(square, 1, 0, 0, 1)
	assert.InDelta(t, 50.0, PolygonArea(half), 1e-9)
	assert.True(t, PolygonContains(half, Pt(2, 0)))
	assert.False(t, PolygonContains(half, Pt(-2, 0)))
}

func TestRectIntersects(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	assert.True(t, a.Intersects(Rect{X: 5, Y: 5, Width: 10, Height: 10}))
	assert.False(t, a.Intersects(Rect{X: 10, Y: 0, Width: 5, Height: 5}))
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 15, Height: 15}, a.Union(Rect{X: 5, Y: 5, Width: 10, Height: 10}))
}
