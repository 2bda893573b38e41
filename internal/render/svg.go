package render

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/inamate/diagrams/internal/engine"
	"github.com/inamate/diagrams/internal/geom"
)

const fontFamily = "Helvetica, Arial, sans-serif"

// SVG returns the result as a standalone SVG document.
func SVG(r *engine.Result) []byte {
	var buf bytes.Buffer
	_ = WriteSVG(&buf, r)
	return buf.Bytes()
}

// WriteSVG writes a standalone SVG document. Output depends only on r, so equal
// results give byte-identical documents.
func WriteSVG(w io.Writer, r *engine.Result) error {
	bw := bufio.NewWriter(w)
	p := layoutPage(r)

	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s"`,
		num(p.width), num(p.height), num(p.width), num(p.height))
	if r.Tool != "" {
		fmt.Fprintf(bw, ` data-tool="%s"`, escape(string(r.Tool)))
	}
	bw.WriteString(">\n")
	fmt.Fprintf(bw, `<rect x="0" y="0" width="%s" height="%s" fill="#ffffff"/>`+"\n", num(p.width), num(p.height))

	for _, prim := range r.Primitives {
		if prim.Kind == engine.KindText {
			writeText(bw, prim)
			continue
		}
		d := pathData(prim)
		if d == "" {
			continue
		}
		fmt.Fprintf(bw, `<path d="%s"%s`, d, paint(prim))
		if prim.Role != "" {
			fmt.Fprintf(bw, ` class="%s"`, escape(prim.Role))
		}
		bw.WriteString("/>\n")
	}

	for i, line := range p.caption {
		fmt.Fprintf(bw, `<text class="caption" x="%s" y="%s" text-anchor="middle" dominant-baseline="central" font-family="%s" font-size="%s" font-style="italic" fill="#374151">%s</text>`+"\n",
			num(p.width/2), num(p.captionY(i)), fontFamily, num(captionSize), escape(line))
	}
	bw.WriteString("</svg>\n")
	return bw.Flush()
}

func writeText(w *bufio.Writer, p engine.Primitive) {
	anchor := "middle"
	switch p.Align {
	case engine.AlignStart:
		anchor = "start"
	case engine.AlignEnd:
		anchor = "end"
	}
	weight := ""
	if p.Bold {
		weight = ` font-weight="bold"`
	}
	for _, line := range p.Lines() {
		fmt.Fprintf(w, `<text class="%s" x="%s" y="%s" text-anchor="%s" dominant-baseline="central" font-family="%s" font-size="%s"%s fill="%s"%s>%s</text>`+"\n",
			escape(p.Role), num(line.X), num(line.Y), anchor, fontFamily, num(p.FontSize), weight,
			colorOr(p.Style.Fill, "#111827"), opacity(p.Style), escape(line.Text))
	}
}

// paint renders the stroke and fill attributes of a shape.
func paint(p engine.Primitive) string {
	var b strings.Builder
	fill := fillOf(p)
	if fill == "" {
		b.WriteString(` fill="none"`)
	} else {
		fmt.Fprintf(&b, ` fill="%s"`, escape(fill))
	}
	if p.Style.Stroke != "" && p.Style.StrokeWidth > 0 {
		fmt.Fprintf(&b, ` stroke="%s" stroke-width="%s" stroke-linecap="round" stroke-linejoin="round"`,
			escape(p.Style.Stroke), num(p.Style.StrokeWidth))
		if len(p.Style.Dash) > 0 {
			parts := make([]string, len(p.Style.Dash))
			for i, d := range p.Style.Dash {
				parts[i] = num(d)
			}
			fmt.Fprintf(&b, ` stroke-dasharray="%s"`, strings.Join(parts, " "))
		}
	}
	b.WriteString(opacity(p.Style))
	return b.String()
}

func opacity(s engine.Style) string {
	if a := s.Alpha(); a < 1 {
		return fmt.Sprintf(` opacity="%s"`, num(a))
	}
	return ""
}

// fillOf leaves lines, polylines and open arcs unfilled.
func fillOf(p engine.Primitive) string {
	switch p.Kind {
	case engine.KindLine, engine.KindPolyline:
		return ""
	case engine.KindArc:
		if !p.Wedge {
			return ""
		}
	}
	return p.Style.Fill
}

// pathData builds the SVG path of a non-text primitive.
func pathData(p engine.Primitive) string {
	var b strings.Builder
	switch p.Kind {
	case engine.KindArc:
		if p.Wedge {
			fmt.Fprintf(&b, "M%s %s ", num(p.Center.X), num(p.Center.Y))
			from := geom.Polar(p.Center, p.Radius, p.StartAngle)
			fmt.Fprintf(&b, "L%s %s ", num(from.X), num(from.Y))
		} else {
			from := geom.Polar(p.Center, p.Radius, p.StartAngle)
			fmt.Fprintf(&b, "M%s %s ", num(from.X), num(from.Y))
		}
		arcTo(&b, p.Center, p.Radius, p.StartAngle, p.Sweep)
		if p.Wedge {
			b.WriteString("Z")
		}
	case engine.KindMarker:
		circle(&b, p.Center, p.Radius)
	default:
		if len(p.Points) < 2 {
			return ""
		}
		for i, pt := range p.Points {
			op := "L"
			if i == 0 {
				op = "M"
			}
			fmt.Fprintf(&b, "%s%s %s ", op, num(pt.X), num(pt.Y))
		}
		if p.Kind == engine.KindPolygon || p.Kind == engine.KindRegion {
			b.WriteString("Z")
		}
	}
	return strings.TrimSpace(b.String())
}

// arcTo appends arc segments from the current point, which must be at the start
// angle. Sweeps of a full turn or more are split in two.
func arcTo(b *strings.Builder, c geom.Point, r, start, sweep float64) {
	if math.Abs(sweep) >= 360 {
		half := math.Copysign(180, sweep)
		arcTo(b, c, r, start, half)
		arcTo(b, c, r, start+half, half)
		return
	}
	to := geom.Polar(c, r, start+sweep)
	large, dir := 0, 0
	if math.Abs(sweep) > 180 {
		large = 1
	}
	if sweep > 0 {
		dir = 1
	}
	fmt.Fprintf(b, "A%s %s 0 %d %d %s %s ", num(r), num(r), large, dir, num(to.X), num(to.Y))
}

func circle(b *strings.Builder, c geom.Point, r float64) {
	fmt.Fprintf(b, "M%s %s ", num(c.X-r), num(c.Y))
	fmt.Fprintf(b, "A%s %s 0 1 0 %s %s ", num(r), num(r), num(c.X+r), num(c.Y))
	fmt.Fprintf(b, "A%s %s 0 1 0 %s %s Z", num(r), num(r), num(c.X-r), num(c.Y))
}

// num formats a coordinate with at most two decimals.
func num(v float64) string {
	v = math.Round(v*100) / 100
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func colorOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return escape(s)
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
