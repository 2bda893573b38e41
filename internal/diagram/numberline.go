package diagram

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/inamate/diagrams/internal/numeric"
)

type IntervalParams struct {
	Start          *float64 `json:"start"`
	End            *float64 `json:"end"`
	StartInclusive *bool    `json:"startInclusive"`
	EndInclusive   *bool    `json:"endInclusive"`
	Color          string   `json:"color"`
	Label          string   `json:"label"`
}

type LinePointParams struct {
	Value float64 `json:"value"`
	Style string  `json:"style"`
	Label string  `json:"label"`
	Color string  `json:"color"`
}

type NumberLineParams struct {
	Min               *float64          `json:"min"`
	Max               *float64          `json:"max"`
	Step              *float64          `json:"step"`
	Intervals         []IntervalParams  `json:"intervals"`
	Points            []LinePointParams `json:"points"`
	ShowArrows        *bool             `json:"showArrows"`
	HighlightIntegers *bool             `json:"highlightIntegers"`
	Title             string            `json:"title"`
}

// PointStyle selects the glyph of a point on a number line.
type PointStyle string

const (
	PointClosed PointStyle = "closed"
	PointOpen   PointStyle = "open"
	PointNone   PointStyle = "none"
)

// Interval is a highlighted stretch of the line. A nil bound runs off that end
// of the axis.
type Interval struct {
	Start          *float64
	End            *float64
	StartInclusive bool
	EndInclusive   bool
	Color          string
	Label          string
}

type LinePoint struct {
	Value float64
	Style PointStyle
	Label string
	Color string
}

type NumberLine struct {
	Min               float64
	Max               float64
	Step              float64
	Ticks             []float64
	Intervals         []Interval
	Points            []LinePoint
	ShowArrows        bool
	HighlightIntegers bool
	Title             string
}

func (NumberLine) Tool() Tool { return ToolNumberLine }

// maxTicks bounds the tick count so a tiny step cannot flood the axis.
const maxTicks = 200

func normalizeNumberLine(raw json.RawMessage) (Normalized, error) {
	const tool = ToolNumberLine
	var p NumberLineParams
	if err := decodeParams(tool, raw, &p); err != nil {
		return nil, err
	}

	n := NumberLine{
		Min:               floatOr(p.Min, -5),
		Max:               floatOr(p.Max, 5),
		ShowArrows:        boolOr(p.ShowArrows, true),
		HighlightIntegers: boolOr(p.HighlightIntegers, false),
		Title:             p.Title,
	}
	if err := rangeError(tool, "min", n.Min, n.Max); err != nil {
		return nil, err
	}

	span := n.Max - n.Min
	n.Step = floatOr(p.Step, numeric.NiceStep(span, 10))
	if !numeric.IsFinite(n.Step) || n.Step <= 0 {
		return nil, invalid(tool, "step", KindNegativeMeasure, "step must be positive, got %s", numeric.Format(n.Step))
	}
	if span/n.Step > maxTicks {
		return nil, invalid(tool, "step", KindInvalidRange, "step %s gives more than %d ticks", numeric.Format(n.Step), maxTicks)
	}
	n.Ticks = numeric.Ticks(n.Min, n.Max, n.Step)

	for i, ip := range p.Intervals {
		field := fmt.Sprintf("intervals[%d]", i)
		iv := Interval{
			Start:          ip.Start,
			End:            ip.End,
			StartInclusive: boolOr(ip.StartInclusive, true),
			EndInclusive:   boolOr(ip.EndInclusive, true),
			Color:          stringOr(ip.Color, "#2563eb"),
			Label:          ip.Label,
		}
		if iv.Start == nil && iv.End == nil {
			return nil, invalid(tool, field, KindInvalidRange, "interval needs a start or an end")
		}
		if iv.Start != nil && iv.End != nil && *iv.Start >= *iv.End {
			return nil, invalid(tool, field, KindInvalidRange, "start %s must be less than end %s", numeric.Format(*iv.Start), numeric.Format(*iv.End))
		}
		for j, b := range []*float64{iv.Start, iv.End} {
			if b != nil && (*b < n.Min || *b > n.Max) {
				name := [2]string{"start", "end"}[j]
				return nil, invalid(tool, field+"."+name, KindInvalidRange, "%s lies outside [%s, %s]", numeric.Format(*b), numeric.Format(n.Min), numeric.Format(n.Max))
			}
		}
		n.Intervals = append(n.Intervals, iv)
	}

	for i, pp := range p.Points {
		field := fmt.Sprintf("points[%d]", i)
		style := PointStyle(strings.ToLower(stringOr(pp.Style, string(PointClosed))))
		switch style {
		case PointClosed, PointOpen, PointNone:
		case "filled":
			style = PointClosed
		default:
			return nil, invalid(tool, field+".style", KindInvalidParameter, "expected open, closed or none, got %q", pp.Style)
		}
		if pp.Value < n.Min || pp.Value > n.Max {
			return nil, invalid(tool, field+".value", KindInvalidRange, "%s lies outside [%s, %s]", numeric.Format(pp.Value), numeric.Format(n.Min), numeric.Format(n.Max))
		}
		n.Points = append(n.Points, LinePoint{Value: pp.Value, Style: style, Label: pp.Label, Color: stringOr(pp.Color, "#111827")})
	}
	return n, nil
}
