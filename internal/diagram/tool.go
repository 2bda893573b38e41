package diagram

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Tool names a diagram variant. The set is closed.
type Tool string

const (
	ToolRightTriangle        Tool = "rightTriangle"
	ToolExtendedLineTriangle Tool = "extendedLineTriangle"
	ToolAdjacentTriangles    Tool = "adjacentTriangles"
	ToolFunctionGraph        Tool = "functionGraph"
	ToolLinearInequality     Tool = "linearInequalityGrapher"
	ToolPieChart             Tool = "pieChart"
	ToolBarModel             Tool = "barModel"
	ToolNumberLine           Tool = "numberLine"
	ToolFractionBar          Tool = "fractionBar"
	ToolAlgebraExpression    Tool = "algebraExpression"
)

// AllTools lists every supported tool in a stable order.
var AllTools = []Tool{
	ToolRightTriangle,
	ToolExtendedLineTriangle,
	ToolAdjacentTriangles,
	ToolFunctionGraph,
	ToolLinearInequality,
	ToolPieChart,
	ToolBarModel,
	ToolNumberLine,
	ToolFractionBar,
	ToolAlgebraExpression,
}

// Known reports whether t is one of AllTools.
func (t Tool) Known() bool {
	for _, k := range AllTools {
		if k == t {
			return true
		}
	}
	return false
}

// Spec is one diagram request: which tool to draw, its parameters and an optional
// caption that is attached to the output verbatim.
type Spec struct {
	Tool       Tool            `json:"toolName"`
	Parameters json.RawMessage `json:"parameters"`
	Caption    string          `json:"caption,omitempty"`
}

// ParseSpec decodes a spec from JSON.
func ParseSpec(data []byte) (Spec, error) {
	var s Spec
	if err := json.Unmarshal(data, &s); err != nil {
		return Spec{}, &ValidationError{Kind: KindInvalidParameter, Reason: fmt.Sprintf("decode spec: %v", err)}
	}
	return s, nil
}

// Key is a structural hash of (toolName, parameters). Key order and whitespace in
// the parameter JSON do not affect it; the caption is excluded.
func (s Spec) Key() string {
	h := sha256.New()
	h.Write([]byte(s.Tool))
	h.Write([]byte{0})
	h.Write(canonicalJSON(s.Parameters))
	return hex.EncodeToString(h.Sum(nil))
}

// canonicalJSON re-encodes a JSON value with sorted object keys. Invalid JSON is
// returned unchanged so it still hashes deterministically.
func canonicalJSON(raw json.RawMessage) []byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return []byte("null")
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return trimmed
	}
	out, err := json.Marshal(v)
	if err != nil {
		return trimmed
	}
	return out
}
