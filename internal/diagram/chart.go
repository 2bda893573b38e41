package diagram

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/inamate/diagrams/internal/numeric"
)

// Palette is the default fill cycle for categorical diagrams.
var Palette = []string{"#3b82f6", "#f97316", "#10b981", "#eab308", "#8b5cf6", "#ec4899", "#14b8a6", "#ef4444"}

// --- pieChart ---

type PieDatum struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

type PieChartParams struct {
	Labels           []string   `json:"labels"`
	Frequencies      []float64  `json:"frequencies"`
	Angles           []float64  `json:"angles"`
	Data             []PieDatum `json:"data"`
	Colors           []string   `json:"colors"`
	Title            string     `json:"title"`
	ShowAngles       *bool      `json:"showAngles"`
	ShowPercentages  *bool      `json:"showPercentages"`
	ShowCalculations *bool      `json:"showCalculations"`
}

// Sector is one wedge. Angles are in degrees, measured clockwise from 12 o'clock
// by the builder; Start and End are cumulative.
type Sector struct {
	Label   string
	Value   float64
	Angle   float64
	Start   float64
	End     float64
	Percent float64
	Color   string
}

type PieChart struct {
	Sectors          []Sector
	Total            float64
	FromAngles       bool
	Title            string
	ShowAngles       bool
	ShowPercentages  bool
	ShowCalculations bool
}

func (PieChart) Tool() Tool { return ToolPieChart }

func normalizePieChart(raw json.RawMessage) (Normalized, error) {
	const tool = ToolPieChart
	var p PieChartParams
	if err := decodeParams(tool, raw, &p); err != nil {
		return nil, err
	}

	field := "frequencies"
	values := p.Frequencies
	labels := p.Labels
	colors := p.Colors
	fromAngles := false
	switch {
	case len(p.Data) > 0:
		field = "data"
		values, labels, colors = nil, nil, nil
		for _, d := range p.Data {
			values = append(values, d.Value)
			labels = append(labels, d.Label)
			colors = append(colors, d.Color)
		}
	case len(p.Frequencies) == 0 && len(p.Angles) > 0:
		field = "angles"
		values = p.Angles
		fromAngles = true
	}

	if len(values) == 0 {
		return nil, invalid(tool, field, KindInvalidRange, "no categories given")
	}
	if len(labels) > len(values) {
		return nil, invalid(tool, "labels", KindInvalidParameter, "%d labels for %d values", len(labels), len(values))
	}

	total := 0.0
	for i, v := range values {
		if !numeric.IsFinite(v) || v < 0 {
			return nil, invalid(tool, fmt.Sprintf("%s[%d]", field, i), KindNegativeMeasure, "value must be non-negative, got %s", numeric.Format(v))
		}
		total += v
	}
	if total <= 0 {
		return nil, invalid(tool, field, KindInvalidRange, "values sum to zero")
	}
	if fromAngles && !numeric.SumsTo(360, values...) {
		return nil, invalid(tool, "angles", KindInconsistentAngles, "sector angles sum to %s, not 360°", numeric.FormatDegrees(total))
	}

	pie := PieChart{
		Total:            total,
		FromAngles:       fromAngles,
		Title:            p.Title,
		ShowAngles:       boolOr(p.ShowAngles, true),
		ShowPercentages:  boolOr(p.ShowPercentages, false),
		ShowCalculations: boolOr(p.ShowCalculations, false),
	}
	start := 0.0
	for i, v := range values {
		s := Sector{
			Label:   fmt.Sprintf("Category %d", i+1),
			Value:   v,
			Angle:   360 * v / total,
			Start:   start,
			Percent: v / total,
			Color:   Palette[i%len(Palette)],
		}
		if i < len(labels) && labels[i] != "" {
			s.Label = labels[i]
		}
		if i < len(colors) && colors[i] != "" {
			s.Color = colors[i]
		}
		s.End = math.Min(start+s.Angle, 360)
		if i == len(values)-1 {
			s.End = 360
		}
		s.Angle = s.End - start
		start = s.End
		pie.Sectors = append(pie.Sectors, s)
	}
	return pie, nil
}

// Calculation renders the frequency-to-angle working for a sector, e.g.
// "12/40 × 360° = 108°".
func (p PieChart) Calculation(s Sector) string {
	if p.FromAngles {
		return numeric.FormatDegrees(s.Angle)
	}
	return fmt.Sprintf("%s/%s × 360° = %s", numeric.Format(s.Value), numeric.Format(p.Total), numeric.FormatDegrees(s.Angle))
}

// --- barModel ---

type SegmentParams struct {
	Value *float64 `json:"value"`
	Units *float64 `json:"units"`
	Label string   `json:"label"`
	Color string   `json:"color"`
}

type BarParams struct {
	Label      string          `json:"label"`
	Segments   []SegmentParams `json:"segments"`
	TotalLabel string          `json:"totalLabel"`
}

type BracketParams struct {
	From  int    `json:"from"`
	To    int    `json:"to"`
	Label string `json:"label"`
}

type BarModelParams struct {
	Bars             []BarParams     `json:"bars"`
	Brackets         []BracketParams `json:"brackets"`
	Orientation      string          `json:"orientation"`
	ShowUnitDividers *bool           `json:"showUnitDividers"`
	Title            string          `json:"title"`
}

type Segment struct {
	Value    float64
	HasValue bool
	Units    float64
	Label    string
	Color    string
}

type Bar struct {
	Label      string
	Segments   []Segment
	Units      float64
	TotalLabel string
}

// Bracket groups the bars From..To inclusive under a label.
type Bracket struct {
	From  int
	To    int
	Label string
}

type BarModel struct {
	Bars             []Bar
	Brackets         []Bracket
	Vertical         bool
	ShowUnitDividers bool
	Title            string
}

func (BarModel) Tool() Tool { return ToolBarModel }

// MaxUnits returns the unit count of the longest bar.
func (m BarModel) MaxUnits() float64 {
	longest := 0.0
	for _, b := range m.Bars {
		if b.Units > longest {
			longest = b.Units
		}
	}
	return longest
}

func normalizeBarModel(raw json.RawMessage) (Normalized, error) {
	const tool = ToolBarModel
	var p BarModelParams
	if err := decodeParams(tool, raw, &p); err != nil {
		return nil, err
	}
	if len(p.Bars) == 0 {
		return nil, invalid(tool, "bars", KindInvalidParameter, "at least one bar is required")
	}

	m := BarModel{ShowUnitDividers: boolOr(p.ShowUnitDividers, true), Title: p.Title}
	switch strings.ToLower(stringOr(p.Orientation, "horizontal")) {
	case "horizontal":
	case "vertical":
		m.Vertical = true
	default:
		return nil, invalid(tool, "orientation", KindInvalidParameter, "expected horizontal or vertical, got %q", p.Orientation)
	}

	color := 0
	for i, bp := range p.Bars {
		if len(bp.Segments) == 0 {
			return nil, invalid(tool, fmt.Sprintf("bars[%d].segments", i), KindInvalidParameter, "bar has no segments")
		}
		bar := Bar{Label: bp.Label, TotalLabel: bp.TotalLabel}
		for j, sp := range bp.Segments {
			field := fmt.Sprintf("bars[%d].segments[%d]", i, j)
			seg := Segment{Units: floatOr(sp.Units, 1), Label: sp.Label, Color: sp.Color}
			if seg.Units < 0 || !numeric.IsFinite(seg.Units) {
				return nil, invalid(tool, field+".units", KindNegativeMeasure, "units must be non-negative, got %s", numeric.Format(seg.Units))
			}
			if sp.Value != nil {
				if *sp.Value < 0 {
					return nil, invalid(tool, field+".value", KindNegativeMeasure, "value must be non-negative, got %s", numeric.Format(*sp.Value))
				}
				seg.Value, seg.HasValue = *sp.Value, true
				if seg.Label == "" {
					seg.Label = numeric.Format(seg.Value)
				}
			}
			if seg.Color == "" {
				seg.Color = Palette[color%len(Palette)]
				color++
			}
			bar.Units += seg.Units
			bar.Segments = append(bar.Segments, seg)
		}
		if bar.Units <= 0 {
			return nil, invalid(tool, fmt.Sprintf("bars[%d].segments", i), KindInvalidRange, "bar has zero total units")
		}
		m.Bars = append(m.Bars, bar)
	}

	for i, bp := range p.Brackets {
		field := fmt.Sprintf("brackets[%d]", i)
		if bp.From < 0 || bp.To >= len(m.Bars) {
			return nil, invalid(tool, field, KindInvalidRange, "bar index out of range [0, %d]", len(m.Bars)-1)
		}
		if bp.From > bp.To {
			return nil, invalid(tool, field, KindInvalidRange, "from %d is after to %d", bp.From, bp.To)
		}
		m.Brackets = append(m.Brackets, Bracket{From: bp.From, To: bp.To, Label: bp.Label})
	}
	return m, nil
}
