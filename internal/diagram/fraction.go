package diagram

import (
	"encoding/json"

	"github.com/inamate/diagrams/internal/numeric"
)

type FractionBarParams struct {
	Fraction1  string `json:"fraction1"`
	Fraction2  string `json:"fraction2"`
	Label1     string `json:"label1"`
	Label2     string `json:"label2"`
	Color1     string `json:"color1"`
	Color2     string `json:"color2"`
	ShowLabels *bool  `json:"showLabels"`
	Title      string `json:"title"`
}

// FractionRow is one fraction drawn as Wholes bars of Den cells each, with the
// first Num cells filled left to right.
type FractionRow struct {
	numeric.Fraction
	Label  string
	Color  string
	Wholes int
}

type FractionBar struct {
	Rows       []FractionRow
	ShowLabels bool
	Title      string
}

func (FractionBar) Tool() Tool { return ToolFractionBar }

// maxCells keeps a bar legible.
const maxCells = 100

func normalizeFractionBar(raw json.RawMessage) (Normalized, error) {
	const tool = ToolFractionBar
	var p FractionBarParams
	if err := decodeParams(tool, raw, &p); err != nil {
		return nil, err
	}
	if p.Fraction1 == "" {
		return nil, invalid(tool, "fraction1", KindInvalidParameter, "fraction1 is required")
	}

	fb := FractionBar{ShowLabels: boolOr(p.ShowLabels, true), Title: p.Title}
	inputs := []struct{ field, src, label, color, defColor string }{
		{"fraction1", p.Fraction1, p.Label1, p.Color1, "#3b82f6"},
		{"fraction2", p.Fraction2, p.Label2, p.Color2, "#f97316"},
	}
	for _, in := range inputs {
		if in.src == "" {
			continue
		}
		f, err := numeric.ParseFraction(in.src)
		if err != nil {
			ve := invalid(tool, in.field, KindInvalidParameter, "%s", err.Error())
			ve.Err = err
			return nil, ve
		}
		switch {
		case f.Den == 0:
			return nil, invalid(tool, in.field, KindInvalidRange, "denominator is zero")
		case f.Den < 0 || f.Num < 0:
			return nil, invalid(tool, in.field, KindNegativeMeasure, "%s is negative", f)
		case f.Den > maxCells:
			return nil, invalid(tool, in.field, KindInvalidRange, "denominator %d exceeds %d", f.Den, maxCells)
		case f.Num > maxCells*4:
			return nil, invalid(tool, in.field, KindInvalidRange, "%s needs too many cells", f)
		}
		wholes := (f.Num + f.Den - 1) / f.Den
		if wholes < 1 {
			wholes = 1
		}
		if wholes*f.Den > maxCells*4 {
			return nil, invalid(tool, in.field, KindInvalidRange, "%s needs too many cells", f)
		}
		fb.Rows = append(fb.Rows, FractionRow{
			Fraction: f,
			Label:    stringOr(in.label, f.String()),
			Color:    stringOr(in.color, in.defColor),
			Wholes:   wholes,
		})
	}
	return fb, nil
}
