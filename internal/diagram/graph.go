package diagram

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/inamate/diagrams/internal/geom"
	"github.com/inamate/diagrams/internal/numeric"
)

// --- functionGraph ---

type MarkedPointParams struct {
	X     float64  `json:"x"`
	Y     *float64 `json:"y"`
	Label string   `json:"label"`
}

type FunctionGraphParams struct {
	Expression string              `json:"expression"`
	XMin       *float64            `json:"xMin"`
	XMax       *float64            `json:"xMax"`
	YMin       *float64            `json:"yMin"`
	YMax       *float64            `json:"yMax"`
	Points     []MarkedPointParams `json:"points"`
	XAxisMode  string              `json:"xAxisMode"`
	ShowPoints *bool               `json:"showPoints"`
	ShowGrid   *bool               `json:"showGrid"`
	Color      string              `json:"color"`
	Label      string              `json:"label"`
	Title      string              `json:"title"`
}

// MarkedPoint is a highlighted point on a graph. Defined is false when the
// function has no value at X and no explicit Y was given.
type MarkedPoint struct {
	X       float64
	Y       float64
	Label   string
	Defined bool
}

type FunctionGraph struct {
	Expr       *numeric.Expr
	Domain     geom.Domain
	AutoY      bool
	Degrees    bool
	Points     []MarkedPoint
	ShowPoints bool
	ShowGrid   bool
	Color      string
	Label      string
	Title      string
}

func (FunctionGraph) Tool() Tool { return ToolFunctionGraph }

const autoRangeSamples = 200

func normalizeFunctionGraph(raw json.RawMessage) (Normalized, error) {
	const tool = ToolFunctionGraph
	var p FunctionGraphParams
	if err := decodeParams(tool, raw, &p); err != nil {
		return nil, err
	}

	if strings.TrimSpace(p.Expression) == "" {
		return nil, invalid(tool, "expression", KindExpressionParse, "expression is empty")
	}
	expr, err := numeric.ParseExpr(p.Expression)
	if err != nil {
		ve := invalid(tool, "expression", KindExpressionParse, "%s", err.Error())
		ve.Err = err
		return nil, ve
	}

	degrees := false
	switch strings.ToLower(stringOr(p.XAxisMode, "numeric")) {
	case "numeric", "radians":
	case "degrees":
		degrees = true
	default:
		return nil, invalid(tool, "xAxisMode", KindInvalidParameter, "expected numeric or degrees, got %q", p.XAxisMode)
	}
	expr.Degrees = degrees

	defMin, defMax := -5.0, 5.0
	if degrees {
		defMin, defMax = 0, 360
	}
	xMin, xMax := floatOr(p.XMin, defMin), floatOr(p.XMax, defMax)
	if err := rangeError(tool, "xMin", xMin, xMax); err != nil {
		return nil, err
	}

	g := FunctionGraph{
		Expr:       expr,
		Degrees:    degrees,
		ShowPoints: boolOr(p.ShowPoints, len(p.Points) > 0),
		ShowGrid:   boolOr(p.ShowGrid, true),
		Color:      stringOr(p.Color, "#2563eb"),
		Label:      p.Label,
		Title:      p.Title,
	}

	var yMin, yMax float64
	if p.YMin == nil || p.YMax == nil {
		g.AutoY = true
		autoMin, autoMax := autoRange(expr, xMin, xMax)
		yMin, yMax = floatOr(p.YMin, autoMin), floatOr(p.YMax, autoMax)
		// one bound was pinned past the sampled range
		if yMin >= yMax {
			if p.YMin != nil {
				yMax = yMin + (autoMax - autoMin)
			} else {
				yMin = yMax - (autoMax - autoMin)
			}
		}
	} else {
		yMin, yMax = *p.YMin, *p.YMax
	}
	if err := rangeError(tool, "yMin", yMin, yMax); err != nil {
		return nil, err
	}
	g.Domain = geom.Domain{MinX: xMin, MaxX: xMax, MinY: yMin, MaxY: yMax}

	for i, mp := range p.Points {
		if !numeric.IsFinite(mp.X) {
			return nil, invalid(tool, fmt.Sprintf("points[%d].x", i), KindInvalidRange, "x must be finite")
		}
		pt := MarkedPoint{X: mp.X, Label: mp.Label}
		if mp.Y != nil {
			pt.Y, pt.Defined = *mp.Y, numeric.IsFinite(*mp.Y)
		} else {
			pt.Y, pt.Defined = expr.Eval(mp.X)
		}
		g.Points = append(g.Points, pt)
	}
	return g, nil
}

// autoRange picks a y window from the 5th to 95th percentile of sampled values,
// padded by 10%, so a single asymptote does not flatten the rest of the curve.
func autoRange(expr *numeric.Expr, lo, hi float64) (float64, float64) {
	ys := make([]float64, 0, autoRangeSamples+1)
	for i := 0; i <= autoRangeSamples; i++ {
		x := numeric.Lerp(lo, hi, float64(i)/autoRangeSamples)
		if y, ok := expr.Eval(x); ok {
			ys = append(ys, y)
		}
	}
	if len(ys) < 2 {
		return -5, 5
	}
	sort.Float64s(ys)
	yLo := ys[int(math.Floor(0.05*float64(len(ys)-1)))]
	yHi := ys[int(math.Ceil(0.95*float64(len(ys)-1)))]
	if yHi-yLo < numeric.Epsilon {
		return yLo - 1, yHi + 1
	}
	pad := (yHi - yLo) * 0.1
	return yLo - pad, yHi + pad
}

func rangeError(tool Tool, field string, lo, hi float64) error {
	if err := numeric.CheckRange(lo, hi); err != nil {
		ve := invalid(tool, field, KindInvalidRange, "%s", err.Error())
		ve.Err = err
		return ve
	}
	return nil
}

// --- linearInequalityGrapher ---

type InequalityParams struct {
	CoefficientX   *float64 `json:"coefficientX"`
	CoefficientY   *float64 `json:"coefficientY"`
	Constant       float64  `json:"constant"`
	InequalityType string   `json:"inequalityType"`
	Color          string   `json:"color"`
	Label          string   `json:"label"`
}

type TestPointParams struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label"`
}

// LinearInequalityParams accepts either a single inequality at the top level or a
// system under "inequalities".
type LinearInequalityParams struct {
	InequalityParams
	Inequalities []InequalityParams `json:"inequalities"`
	XMin         *float64           `json:"xMin"`
	XMax         *float64           `json:"xMax"`
	YMin         *float64           `json:"yMin"`
	YMax         *float64           `json:"yMax"`
	TestPoint    *TestPointParams   `json:"testPoint"`
	ShowGrid     *bool              `json:"showGrid"`
	ShadeOpacity *float64           `json:"shadeOpacity"`
	Title        string             `json:"title"`
}

// Relation is an inequality operator.
type Relation string

const (
	Less         Relation = "<"
	LessEqual    Relation = "<="
	Greater      Relation = ">"
	GreaterEqual Relation = ">="
)

// Strict reports whether the boundary itself is excluded.
func (r Relation) Strict() bool { return r == Less || r == Greater }

// Symbol is the typeset form of the operator.
func (r Relation) Symbol() string {
	switch r {
	case LessEqual:
		return "≤"
	case GreaterEqual:
		return "≥"
	}
	return string(r)
}

func parseRelation(s string) (Relation, bool) {
	switch strings.TrimSpace(s) {
	case "<", "lt":
		return Less, true
	case "<=", "≤", "le":
		return LessEqual, true
	case ">", "gt":
		return Greater, true
	case ">=", "≥", "ge":
		return GreaterEqual, true
	}
	return "", false
}

// Orientation classifies the boundary line.
type Orientation string

const (
	Vertical   Orientation = "vertical"
	Horizontal Orientation = "horizontal"
	Oblique    Orientation = "oblique"
)

// Inequality is A·x + B·y (op) C with A and B not both zero.
type Inequality struct {
	A, B, C     float64
	Op          Relation
	Orientation Orientation
	Color       string
	Label       string
}

// Residual returns A·x + B·y − C.
func (q Inequality) Residual(p geom.Point) float64 {
	return q.A*p.X + q.B*p.Y - q.C
}

// Satisfies evaluates the inequality at p. Points on the boundary satisfy the
// non-strict relations only.
func (q Inequality) Satisfies(p geom.Point) bool {
	r := q.Residual(p)
	onLine := math.Abs(r) <= numeric.Epsilon*math.Max(1, math.Abs(q.C))
	switch q.Op {
	case Less:
		return r < 0 && !onLine
	case LessEqual:
		return r < 0 || onLine
	case Greater:
		return r > 0 && !onLine
	default:
		return r > 0 || onLine
	}
}

// Dashed reports the boundary style: dashed for strict relations, solid otherwise.
func (q Inequality) Dashed() bool { return q.Op.Strict() }

// BoundaryStyle returns "dashed" or "solid".
func (q Inequality) BoundaryStyle() string {
	if q.Dashed() {
		return "dashed"
	}
	return "solid"
}

// Sign is +1 when the solution side has positive residual, else −1.
func (q Inequality) Sign() int {
	if q.Op == Greater || q.Op == GreaterEqual {
		return 1
	}
	return -1
}

// String formats the inequality as it is taught, e.g. "2x + 3y ≥ 6".
func (q Inequality) String() string {
	var b strings.Builder
	if q.A != 0 {
		b.WriteString(numeric.FormatTerm(q.A, "x"))
	}
	if q.B != 0 {
		term := numeric.FormatTerm(q.B, "y")
		switch {
		case b.Len() == 0:
			b.WriteString(term)
		case q.B < 0:
			b.WriteString(" - " + strings.TrimPrefix(term, "-"))
		default:
			b.WriteString(" + " + term)
		}
	}
	fmt.Fprintf(&b, " %s %s", q.Op.Symbol(), numeric.Format(q.C))
	return b.String()
}

// TestPoint is a point checked against every inequality in the system.
type TestPoint struct {
	Point     geom.Point
	Label     string
	Satisfied bool
}

type LinearInequality struct {
	Inequalities []Inequality
	Domain       geom.Domain
	TestPoint    *TestPoint
	ShowGrid     bool
	GridStep     float64
	ShadeOpacity float64
	Title        string
}

func (LinearInequality) Tool() Tool { return ToolLinearInequality }

// Satisfies reports whether p solves every inequality of the system.
func (l LinearInequality) Satisfies(p geom.Point) bool {
	for _, q := range l.Inequalities {
		if !q.Satisfies(p) {
			return false
		}
	}
	return true
}

var inequalityPalette = []string{"#2563eb", "#dc2626", "#16a34a", "#9333ea"}

func normalizeLinearInequality(raw json.RawMessage) (Normalized, error) {
	const tool = ToolLinearInequality
	var p LinearInequalityParams
	if err := decodeParams(tool, raw, &p); err != nil {
		return nil, err
	}

	items := p.Inequalities
	prefix := "inequalities[%d]."
	if len(items) == 0 {
		items = []InequalityParams{p.InequalityParams}
		prefix = ""
	}

	out := LinearInequality{
		ShowGrid:     boolOr(p.ShowGrid, true),
		ShadeOpacity: floatOr(p.ShadeOpacity, 0.4),
		Title:        p.Title,
	}
	if out.ShadeOpacity < 0 || out.ShadeOpacity > 1 {
		return nil, invalid(tool, "shadeOpacity", KindInvalidRange, "opacity must be within [0, 1], got %s", numeric.Format(out.ShadeOpacity))
	}

	for i, ip := range items {
		field := func(name string) string {
			if prefix == "" {
				return name
			}
			return fmt.Sprintf(prefix, i) + name
		}
		q, err := normalizeInequality(tool, ip, field)
		if err != nil {
			return nil, err
		}
		if q.Color == "" {
			q.Color = inequalityPalette[i%len(inequalityPalette)]
		}
		out.Inequalities = append(out.Inequalities, q)
	}

	d := geom.Domain{
		MinX: floatOr(p.XMin, -10), MaxX: floatOr(p.XMax, 10),
		MinY: floatOr(p.YMin, -10), MaxY: floatOr(p.YMax, 10),
	}
	if err := rangeError(tool, "xMin", d.MinX, d.MaxX); err != nil {
		return nil, err
	}
	if err := rangeError(tool, "yMin", d.MinY, d.MaxY); err != nil {
		return nil, err
	}
	out.Domain = d
	out.GridStep = numeric.GridStep(math.Max(d.MaxX-d.MinX, d.MaxY-d.MinY), 40)

	if tp := p.TestPoint; tp != nil {
		if !numeric.IsFinite(tp.X) || !numeric.IsFinite(tp.Y) {
			return nil, invalid(tool, "testPoint", KindInvalidRange, "test point must be finite")
		}
		pt := geom.Pt(tp.X, tp.Y)
		out.TestPoint = &TestPoint{Point: pt, Label: tp.Label, Satisfied: out.Satisfies(pt)}
	}
	return out, nil
}

var errBothZero = errors.New("coefficientX and coefficientY are both zero")

func normalizeInequality(tool Tool, p InequalityParams, field func(string) string) (Inequality, error) {
	q := Inequality{
		A:     floatOr(p.CoefficientX, 0),
		B:     floatOr(p.CoefficientY, 0),
		C:     p.Constant,
		Color: p.Color,
		Label: p.Label,
	}
	if q.A == 0 && q.B == 0 {
		ve := invalid(tool, field("coefficientX"), KindDegenerateInequality, "%s", errBothZero.Error())
		ve.Err = errBothZero
		return q, ve
	}

	op, ok := parseRelation(stringOr(p.InequalityType, "<="))
	if !ok {
		return q, invalid(tool, field("inequalityType"), KindInvalidParameter, "expected one of < <= > >=, got %q", p.InequalityType)
	}
	q.Op = op

	switch {
	case q.B == 0:
		q.Orientation = Vertical
	case q.A == 0:
		q.Orientation = Horizontal
	default:
		q.Orientation = Oblique
	}
	return q, nil
}
