package diagram

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Normalized is the validated, derived form of a tool's parameters. Builders only
// ever see these.
type Normalized interface {
	Tool() Tool
}

type normalizer func(raw json.RawMessage) (Normalized, error)

var normalizers = map[Tool]normalizer{
	ToolRightTriangle:        normalizeRightTriangle,
	ToolExtendedLineTriangle: normalizeExtendedLineTriangle,
	ToolAdjacentTriangles:    normalizeAdjacentTriangles,
	ToolFunctionGraph:        normalizeFunctionGraph,
	ToolLinearInequality:     normalizeLinearInequality,
	ToolPieChart:             normalizePieChart,
	ToolBarModel:             normalizeBarModel,
	ToolNumberLine:           normalizeNumberLine,
	ToolFractionBar:          normalizeFractionBar,
	ToolAlgebraExpression:    normalizeAlgebraExpression,
}

// Normalize checks raw parameters against the tool's contract and fills in the
// derived fields. Failures are *ValidationError.
func Normalize(tool Tool, raw json.RawMessage) (Normalized, error) {
	fn, ok := normalizers[tool]
	if !ok {
		return nil, &ValidationError{Tool: tool, Field: "toolName", Kind: KindUnknownTool, Reason: fmt.Sprintf("unknown tool %q", tool)}
	}
	return fn(raw)
}

func decodeParams(tool Tool, raw json.RawMessage, dst any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = []byte("{}")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		field := ""
		if te, ok := err.(*json.UnmarshalTypeError); ok {
			field = te.Field
		}
		return &ValidationError{Tool: tool, Field: field, Kind: KindInvalidParameter, Reason: err.Error(), Err: err}
	}
	return nil
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func stringOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
