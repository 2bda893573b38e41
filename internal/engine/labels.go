package engine

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/inamate/diagrams/internal/geom"
)

// DefaultFontSize is the label size in pixels.
const DefaultFontSize = 13

// LineHeight is the line spacing as a multiple of the font size.
const LineHeight = 1.25

const (
	labelGap      = 2.0
	labelStep     = 4.0
	labelAttempts = 16
)

// MeasureText returns the width and height of a (possibly multi-line) label. It
// uses the metrics of the fixed 7x13 face scaled to size, so layout does not
// depend on which fonts the renderer has.
func MeasureText(text string, size float64) (float64, float64) {
	if size <= 0 {
		size = DefaultFontSize
	}
	scale := size / float64(basicfont.Face7x13.Height)
	lines := strings.Split(text, "\n")
	w := 0.0
	for _, line := range lines {
		adv := font.MeasureString(basicfont.Face7x13, line)
		w = max(w, float64(adv)/64*scale)
	}
	return w, float64(len(lines)) * size * LineHeight
}

// textBox is the box of a text block vertically centered on at.
func textBox(at geom.Point, text string, size float64, align Align) geom.Rect {
	w, h := MeasureText(text, size)
	x := at.X
	switch align {
	case AlignMiddle, "":
		x -= w / 2
	case AlignEnd:
		x -= w
	}
	return geom.Rect{X: x, Y: at.Y - h/2, Width: w, Height: h}
}

// placeLabels resolves overlaps in input order: a label that hits an earlier one,
// or an obstacle, is pushed away from its Away point in small steps, then
// clamped inside bounds.
func placeLabels(labels []LabelAnchor, obstacles []geom.Rect, bounds geom.Rect) []LabelAnchor {
	placed := make([]geom.Rect, 0, len(labels)+len(obstacles))
	placed = append(placed, obstacles...)
	out := make([]LabelAnchor, 0, len(labels))

	for _, l := range labels {
		if l.FontSize == 0 {
			l.FontSize = DefaultFontSize
		}
		dir := l.At.Sub(l.Away).Unit()
		if dir == (geom.Point{}) {
			dir = geom.Pt(0, -1)
		}
		box := textBox(l.At, l.Text, l.FontSize, l.Align)
		for i := 0; i < labelAttempts && collides(box, placed); i++ {
			l.At = l.At.Add(dir.Mul(labelStep))
			box = textBox(l.At, l.Text, l.FontSize, l.Align)
		}

		shift := geom.Point{}
		if box.MinX() < bounds.MinX() {
			shift.X = bounds.MinX() - box.MinX()
		} else if box.MaxX() > bounds.MaxX() {
			shift.X = bounds.MaxX() - box.MaxX()
		}
		if box.MinY() < bounds.MinY() {
			shift.Y = bounds.MinY() - box.MinY()
		} else if box.MaxY() > bounds.MaxY() {
			shift.Y = bounds.MaxY() - box.MaxY()
		}
		l.At = l.At.Add(shift)
		box = textBox(l.At, l.Text, l.FontSize, l.Align)

		placed = append(placed, box)
		out = append(out, l)
	}
	return out
}

func collides(box geom.Rect, placed []geom.Rect) bool {
	grown := box.Inset(-labelGap)
	for _, p := range placed {
		if grown.Intersects(p) {
			return true
		}
	}
	return false
}

// TextLine is one line of a text primitive, centered vertically on Y.
type TextLine struct {
	Text string
	X, Y float64
}

// Lines splits a text primitive into its lines, stacked around its center.
func (p Primitive) Lines() []TextLine {
	size := p.FontSize
	if size <= 0 {
		size = DefaultFontSize
	}
	lines := strings.Split(p.Text, "\n")
	step := size * LineHeight
	top := p.Center.Y - step*float64(len(lines))/2
	out := make([]TextLine, len(lines))
	for i, l := range lines {
		out[i] = TextLine{Text: l, X: p.Center.X, Y: top + step*(float64(i)+0.5)}
	}
	return out
}
