// Package render writes engine results out as SVG, PNG or PDF.
package render

import (
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/inamate/diagrams/internal/engine"
)

// Format is an output encoding.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

// ParseFormat accepts a format name or file extension, case-insensitively. An
// empty string means SVG.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")); f {
	case "":
		return FormatSVG, nil
	case FormatSVG, FormatPNG, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("unsupported format %q", s)
}

// ContentType is the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	}
	return "image/svg+xml"
}

// Extension is the file extension, with the dot.
func (f Format) Extension() string { return "." + string(f) }

// Write encodes r in the given format.
func Write(w io.Writer, r *engine.Result, f Format) error {
	switch f {
	case FormatSVG, "":
		return WriteSVG(w, r)
	case FormatPNG:
		return WritePNG(w, r)
	case FormatPDF:
		return WritePDF(w, r)
	}
	return fmt.Errorf("unsupported format %q", f)
}

const (
	captionSize = 13.0
	captionPad  = 10.0
)

// page is the output surface: the diagram with its caption band underneath.
type page struct {
	width    float64
	height   float64
	figure   float64 // height of the diagram itself
	caption  []string
	lineStep float64
}

func layoutPage(r *engine.Result) page {
	p := page{width: r.Width, height: r.Height, figure: r.Height, lineStep: captionSize * engine.LineHeight}
	if r.Caption == "" {
		return p
	}
	p.caption = wrap(r.Caption, r.Width-2*captionPad, captionSize)
	p.height += 2*captionPad + float64(len(p.caption))*p.lineStep
	return p
}

// captionY is the vertical center of caption line i.
func (p page) captionY(i int) float64 {
	return p.figure + captionPad + p.lineStep*(float64(i)+0.5)
}

// wrap breaks text into lines no wider than width, splitting on spaces. A single
// word wider than width gets a line of its own.
func wrap(text string, width, size float64) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		cur := ""
		for _, word := range strings.Fields(para) {
			next := word
			if cur != "" {
				next = cur + " " + word
			}
			if w, _ := engine.MeasureText(next, size); w > width && cur != "" {
				lines = append(lines, cur)
				next = word
			}
			cur = next
		}
		lines = append(lines, cur)
	}
	return lines
}

// parseColor reads #rgb, #rrggbb or an SVG color name. ok is false for "none"
// and anything unreadable.
func parseColor(s string) (color.RGBA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "none" || s == "transparent" {
		return color.RGBA{}, false
	}
	if c, ok := colornames.Map[s]; ok {
		return c, true
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return color.RGBA{}, false
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}

// plainFallbacks spell out glyphs the built-in raster and PDF fonts lack.
var plainFallbacks = map[rune]string{
	'−': "-",
	'≤': "<=",
	'≥': ">=",
	'θ': "theta",
	'π': "pi",
	'✓': "(yes)",
	'✗': "(no)",
	'∞': "inf",
	'…': "...",
	'–': "-",
	'—': "-",
}

// plainText keeps Latin-1 text and replaces everything else with an ASCII
// spelling, or "?".
func plainText(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r < 0x100:
			b.WriteRune(r)
		case plainFallbacks[r] != "":
			b.WriteString(plainFallbacks[r])
		default:
			b.WriteByte('?')
		}
	}
	return b.String()
}
