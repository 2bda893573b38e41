package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/inamate/diagrams/internal/engine"
)

// WritePNG rasterizes the shapes of the SVG form with oksvg and draws the text
// with the built-in 7x13 face, so no font files are needed.
func WritePNG(w io.Writer, r *engine.Result) error {
	img, err := Raster(r)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// Raster draws the result into an RGBA image at one pixel per unit.
func Raster(r *engine.Result) (*image.RGBA, error) {
	p := layoutPage(r)
	wi, hi := int(math.Ceil(p.width)), int(math.Ceil(p.height))
	if wi <= 0 || hi <= 0 {
		return nil, fmt.Errorf("raster: empty %gx%g surface", p.width, p.height)
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(SVG(r)), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("raster: parse svg: %w", err)
	}
	icon.SetTarget(0, 0, p.width, p.height)

	img := image.NewRGBA(image.Rect(0, 0, wi, hi))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	scanner := rasterx.NewScannerGV(wi, hi, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(wi, hi, scanner), 1)

	// oksvg skips <text>, so labels are drawn directly.
	for _, prim := range r.Primitives {
		if prim.Kind != engine.KindText {
			continue
		}
		c, ok := parseColor(prim.Style.Fill)
		if !ok {
			c = color.RGBA{0x11, 0x18, 0x27, 0xff}
		}
		c.A = uint8(255 * prim.Style.Alpha())
		for _, line := range prim.Lines() {
			drawText(img, line.Text, line.X, line.Y, prim.Align, c)
		}
	}
	caption := color.RGBA{0x37, 0x41, 0x51, 0xff}
	for i, line := range p.caption {
		drawText(img, line, p.width/2, p.captionY(i), engine.AlignMiddle, caption)
	}
	return img, nil
}

// drawText writes one line vertically centered on y.
func drawText(img draw.Image, s string, x, y float64, align engine.Align, c color.Color) {
	s = plainText(s)
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: img, Src: image.NewUniform(c), Face: face}
	width := float64(d.MeasureString(s)) / 64
	switch align {
	case engine.AlignMiddle, "":
		x -= width / 2
	case engine.AlignEnd:
		x -= width
	}
	m := face.Metrics()
	baseline := y + float64(m.Ascent-m.Descent)/64/2
	d.Dot = fixed.P(int(math.Round(x)), int(math.Round(baseline)))
	d.DrawString(s)
}
