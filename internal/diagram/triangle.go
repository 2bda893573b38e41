package diagram

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/inamate/diagrams/internal/numeric"
)

// completeAngles applies the angle-sum law to a triangle's three (nullable) angles.
// Exactly one missing angle is derived; two or more missing is underdetermined;
// three given angles must add up to 180.
func completeAngles(tool Tool, fields [3]string, given [3]*float64) ([3]float64, [3]bool, error) {
	var out [3]float64
	var known [3]bool
	missing := -1
	nulls := 0
	sum := 0.0
	for i, a := range given {
		if a == nil {
			nulls++
			if missing < 0 {
				missing = i
			}
			continue
		}
		if !numeric.IsFinite(*a) || *a <= 0 {
			return out, known, invalid(tool, fields[i], KindNegativeMeasure, "angle must be positive, got %s", numeric.Format(*a))
		}
		if *a >= 180 {
			return out, known, invalid(tool, fields[i], KindInconsistentAngles, "angle %s leaves no room for the other two", numeric.FormatDegrees(*a))
		}
		out[i] = *a
		known[i] = true
		sum += *a
	}

	switch nulls {
	case 0:
		if !numeric.SumsTo(180, out[:]...) {
			return out, known, invalid(tool, strings.Join(fields[:], ","), KindInconsistentAngles,
				"angles sum to %s, not 180°", numeric.FormatDegrees(sum))
		}
	case 1:
		rest := 180 - sum
		if rest <= numeric.AngleTolerance {
			return out, known, invalid(tool, fields[missing], KindInconsistentAngles,
				"the given angles already sum to %s", numeric.FormatDegrees(sum))
		}
		out[missing] = rest
	default:
		return out, known, invalid(tool, fields[missing], KindUnderdeterminedTriangle,
			"%d of 3 angles are missing; at most one can be derived", nulls)
	}
	return out, known, nil
}

func ptr(v float64) *float64 { return &v }

// --- rightTriangle ---

// RightTriangleParams is the raw input of rightTriangle. Side values are labels;
// numeric labels ("6", "10 cm") can stand in for a missing angle.
type RightTriangleParams struct {
	Angle              *float64 `json:"angle"`
	AngleLabel         string   `json:"angleLabel"`
	Hypotenuse         string   `json:"hypotenuse"`
	Opposite           string   `json:"opposite"`
	Adjacent           string   `json:"adjacent"`
	HighlightSide      string   `json:"highlightSide"`
	ShowAngleMark      *bool    `json:"showAngleMark"`
	ShowRightAngle     *bool    `json:"showRightAngle"`
	ShowSideTypeLabels *bool    `json:"showSideTypeLabels"`
}

// RightTriangle has its marked angle θ at vertex 0, the right angle at vertex 1
// and the remaining angle at vertex 2.
type RightTriangle struct {
	Angles             [3]float64
	AngleGiven         bool
	AngleLabel         string
	Hypotenuse         string
	Opposite           string
	Adjacent           string
	HighlightSide      string
	ShowAngleMark      bool
	ShowRightAngle     bool
	ShowSideTypeLabels bool
}

func (RightTriangle) Tool() Tool { return ToolRightTriangle }

// Theta returns the marked acute angle.
func (r RightTriangle) Theta() float64 { return r.Angles[0] }

var rightTriangleFields = [3]string{"angle", "rightAngle", "remainingAngle"}

func normalizeRightTriangle(raw json.RawMessage) (Normalized, error) {
	const tool = ToolRightTriangle
	var p RightTriangleParams
	if err := decodeParams(tool, raw, &p); err != nil {
		return nil, err
	}

	side := strings.ToLower(stringOr(p.HighlightSide, "none"))
	switch side {
	case "none", "opposite", "adjacent", "hypotenuse":
	default:
		return nil, invalid(tool, "highlightSide", KindInvalidParameter, "unknown side %q", p.HighlightSide)
	}

	theta := p.Angle
	if theta == nil {
		solved, ok, err := solveRightAngle(p)
		if err != nil {
			return nil, err
		}
		if ok {
			theta = &solved
		}
	}

	angles, known, err := completeAngles(tool, rightTriangleFields, [3]*float64{theta, ptr(90), nil})
	if err != nil {
		return nil, err
	}

	return RightTriangle{
		Angles:             angles,
		AngleGiven:         p.Angle != nil && known[0],
		AngleLabel:         p.AngleLabel,
		Hypotenuse:         p.Hypotenuse,
		Opposite:           p.Opposite,
		Adjacent:           p.Adjacent,
		HighlightSide:      side,
		ShowAngleMark:      boolOr(p.ShowAngleMark, true),
		ShowRightAngle:     boolOr(p.ShowRightAngle, true),
		ShowSideTypeLabels: boolOr(p.ShowSideTypeLabels, false),
	}, nil
}

// solveRightAngle recovers θ from two numeric side labels.
func solveRightAngle(p RightTriangleParams) (float64, bool, error) {
	const tool = ToolRightTriangle
	hyp, hasHyp := numeric.LeadingNumber(p.Hypotenuse)
	opp, hasOpp := numeric.LeadingNumber(p.Opposite)
	adj, hasAdj := numeric.LeadingNumber(p.Adjacent)
	sides := []struct {
		field string
		val   float64
		ok    bool
	}{{"hypotenuse", hyp, hasHyp}, {"opposite", opp, hasOpp}, {"adjacent", adj, hasAdj}}
	for _, s := range sides {
		if s.ok && s.val <= 0 {
			return 0, false, invalid(tool, s.field, KindNegativeMeasure, "side must be positive, got %s", numeric.Format(s.val))
		}
	}

	switch {
	case hasOpp && hasHyp:
		if opp >= hyp {
			return 0, false, invalid(tool, "opposite", KindInvalidRange, "opposite %s must be shorter than hypotenuse %s", numeric.Format(opp), numeric.Format(hyp))
		}
		a, _ := numeric.AsinDeg(opp / hyp)
		return a, true, nil
	case hasAdj && hasHyp:
		if adj >= hyp {
			return 0, false, invalid(tool, "adjacent", KindInvalidRange, "adjacent %s must be shorter than hypotenuse %s", numeric.Format(adj), numeric.Format(hyp))
		}
		a, _ := numeric.AcosDeg(adj / hyp)
		return a, true, nil
	case hasOpp && hasAdj:
		return numeric.Atan2Deg(opp, adj), true, nil
	}
	return 0, false, nil
}

// --- extendedLineTriangle ---

type ExtendedLineTriangleParams struct {
	VertexA            string   `json:"vertexA"`
	VertexB            string   `json:"vertexB"`
	VertexC            string   `json:"vertexC"`
	VertexD            string   `json:"vertexD"`
	ExtendedSide       string   `json:"extendedSide"`
	AngleA             *float64 `json:"angleA"`
	AngleB             *float64 `json:"angleB"`
	AngleC             *float64 `json:"angleC"`
	AngleALabel        string   `json:"angleALabel"`
	AngleBLabel        string   `json:"angleBLabel"`
	AngleCLabel        string   `json:"angleCLabel"`
	ExteriorAngleLabel string   `json:"exteriorAngleLabel"`
	SideAB             string   `json:"sideAB"`
	SideBC             string   `json:"sideBC"`
	SideAC             string   `json:"sideAC"`
	ShowExteriorAngle  *bool    `json:"showExteriorAngle"`
	ExtensionLength    *float64 `json:"extensionLength"`
	Rotation           float64  `json:"rotation"`
}

// ExtendedLineTriangle is triangle ABC with side From→Through produced beyond
// Through to D. Indices 0, 1, 2 stand for A, B, C.
type ExtendedLineTriangle struct {
	Vertices          [4]string
	Angles            [3]float64
	Given             [3]bool
	AngleLabels       [3]string
	From              int
	Through           int
	Exterior          float64
	ExteriorLabel     string
	Sides             [3]string // AB, BC, AC
	ShowExteriorAngle bool
	ExtensionLength   float64 // in the units of a 200-long base side
	Rotation          float64
}

func (ExtendedLineTriangle) Tool() Tool { return ToolExtendedLineTriangle }

// Apex returns the vertex that is not on the extended side.
func (e ExtendedLineTriangle) Apex() int { return 3 - e.From - e.Through }

func normalizeExtendedLineTriangle(raw json.RawMessage) (Normalized, error) {
	const tool = ToolExtendedLineTriangle
	var p ExtendedLineTriangleParams
	if err := decodeParams(tool, raw, &p); err != nil {
		return nil, err
	}

	side := strings.ToUpper(stringOr(p.ExtendedSide, "BC"))
	from, through, ok := parseSide(side)
	if !ok {
		return nil, invalid(tool, "extendedSide", KindInvalidParameter, "expected one of BC, CB, AC, CA, AB, BA, got %q", p.ExtendedSide)
	}

	angles, given, err := completeAngles(tool, [3]string{"angleA", "angleB", "angleC"}, [3]*float64{p.AngleA, p.AngleB, p.AngleC})
	if err != nil {
		return nil, err
	}

	ext := floatOr(p.ExtensionLength, 70)
	if ext <= 0 || !numeric.IsFinite(ext) {
		return nil, invalid(tool, "extensionLength", KindNegativeMeasure, "extension must be positive, got %s", numeric.Format(ext))
	}

	return ExtendedLineTriangle{
		Vertices: [4]string{
			stringOr(p.VertexA, "A"), stringOr(p.VertexB, "B"),
			stringOr(p.VertexC, "C"), stringOr(p.VertexD, "D"),
		},
		Angles:            angles,
		Given:             given,
		AngleLabels:       [3]string{p.AngleALabel, p.AngleBLabel, p.AngleCLabel},
		From:              from,
		Through:           through,
		Exterior:          180 - angles[through],
		ExteriorLabel:     p.ExteriorAngleLabel,
		Sides:             [3]string{p.SideAB, p.SideBC, p.SideAC},
		ShowExteriorAngle: boolOr(p.ShowExteriorAngle, true),
		ExtensionLength:   ext,
		Rotation:          p.Rotation,
	}, nil
}

func parseSide(s string) (int, int, bool) {
	if len(s) != 2 {
		return 0, 0, false
	}
	a, b := strings.IndexByte("ABC", s[0]), strings.IndexByte("ABC", s[1])
	if a < 0 || b < 0 || a == b {
		return 0, 0, false
	}
	return a, b, true
}

// --- adjacentTriangles ---

type TriangleParams struct {
	Vertices       []string   `json:"vertices"`
	Angles         []*float64 `json:"angles"`
	AngleLabels    []string   `json:"angleLabels"`
	Type           string     `json:"type"`
	ShowEqualSides bool       `json:"showEqualSides"`
}

type AdjacentTrianglesParams struct {
	Triangle1      TriangleParams `json:"triangle1"`
	Triangle2      TriangleParams `json:"triangle2"`
	SharedVertices []string       `json:"sharedVertices"`
	Layout         string         `json:"layout"`
	HighlightAngle string         `json:"highlightAngle"`
	HighlightSide  string         `json:"highlightSide"`
	ShowAngles     *bool          `json:"showAngles"`
}

// Triangle is one member of an adjacent pair. Shared holds the indices of the two
// shared vertices in SharedVertices order; Apex is the remaining vertex.
type Triangle struct {
	Vertices       [3]string
	Angles         [3]float64
	Given          [3]bool
	AngleLabels    [3]string
	Type           string
	ShowEqualSides bool
	Shared         [2]int
	Apex           int
}

type AdjacentTriangles struct {
	First          Triangle
	Second         Triangle
	Shared         [2]string
	Layout         string
	HighlightAngle string
	HighlightSide  string
	ShowAngles     bool
}

func (AdjacentTriangles) Tool() Tool { return ToolAdjacentTriangles }

func normalizeAdjacentTriangles(raw json.RawMessage) (Normalized, error) {
	const tool = ToolAdjacentTriangles
	var p AdjacentTrianglesParams
	if err := decodeParams(tool, raw, &p); err != nil {
		return nil, err
	}

	shared := p.SharedVertices
	if len(shared) == 0 {
		shared = []string{"A", "C"}
	}
	if len(shared) != 2 || shared[0] == shared[1] {
		return nil, invalid(tool, "sharedVertices", KindInvalidParameter, "need two distinct shared vertices, got %v", p.SharedVertices)
	}
	sharedPair := [2]string{shared[0], shared[1]}

	first, err := normalizeTriangle(tool, "triangle1", p.Triangle1, [3]string{"A", "B", "C"}, sharedPair)
	if err != nil {
		return nil, err
	}
	second, err := normalizeTriangle(tool, "triangle2", p.Triangle2, [3]string{"A", "C", "D"}, sharedPair)
	if err != nil {
		return nil, err
	}

	layout := strings.ToLower(stringOr(p.Layout, "horizontal"))
	if layout != "horizontal" && layout != "vertical" {
		return nil, invalid(tool, "layout", KindInvalidParameter, "expected horizontal or vertical, got %q", p.Layout)
	}

	return AdjacentTriangles{
		First:          first,
		Second:         second,
		Shared:         sharedPair,
		Layout:         layout,
		HighlightAngle: p.HighlightAngle,
		HighlightSide:  p.HighlightSide,
		ShowAngles:     boolOr(p.ShowAngles, true),
	}, nil
}

func normalizeTriangle(tool Tool, name string, p TriangleParams, defaults [3]string, shared [2]string) (Triangle, error) {
	t := Triangle{Type: strings.ToLower(stringOr(p.Type, "general")), ShowEqualSides: p.ShowEqualSides}

	if len(p.Vertices) != 0 && len(p.Vertices) != 3 {
		return t, invalid(tool, name+".vertices", KindInvalidParameter, "need 3 vertices, got %d", len(p.Vertices))
	}
	for i := range t.Vertices {
		t.Vertices[i] = defaults[i]
		if len(p.Vertices) == 3 {
			t.Vertices[i] = p.Vertices[i]
		}
	}
	if len(p.Angles) > 3 {
		return t, invalid(tool, name+".angles", KindInvalidParameter, "need at most 3 angles, got %d", len(p.Angles))
	}
	for i := 0; i < len(p.AngleLabels) && i < 3; i++ {
		t.AngleLabels[i] = p.AngleLabels[i]
	}

	t.Apex = -1
	t.Shared = [2]int{-1, -1}
	for i, v := range t.Vertices {
		switch v {
		case shared[0]:
			t.Shared[0] = i
		case shared[1]:
			t.Shared[1] = i
		default:
			t.Apex = i
		}
	}
	if t.Shared[0] < 0 || t.Shared[1] < 0 || t.Apex < 0 {
		return t, invalid(tool, "sharedVertices", KindInvalidParameter,
			"%s vertices %v must contain both %s and %s", name, t.Vertices, shared[0], shared[1])
	}

	var given [3]*float64
	for i := 0; i < len(p.Angles); i++ {
		given[i] = p.Angles[i]
	}
	base0, base1 := t.Shared[0], t.Shared[1]
	switch t.Type {
	case "general":
	case "equilateral":
		for i := range given {
			if given[i] != nil && !numeric.AnglesEqual(*given[i], 60) {
				return t, invalid(tool, fmt.Sprintf("%s.angles[%d]", name, i), KindInconsistentAngles,
					"equilateral triangle has all angles 60°, got %s", numeric.FormatDegrees(*given[i]))
			}
			given[i] = ptr(60)
		}
	case "isosceles":
		switch {
		case given[base0] == nil && given[base1] != nil:
			given[base0] = ptr(*given[base1])
		case given[base1] == nil && given[base0] != nil:
			given[base1] = ptr(*given[base0])
		case given[base0] == nil && given[base1] == nil && given[t.Apex] != nil:
			b := (180 - *given[t.Apex]) / 2
			given[base0], given[base1] = ptr(b), ptr(b)
		}
		if given[base0] != nil && given[base1] != nil && !numeric.AnglesEqual(*given[base0], *given[base1]) {
			return t, invalid(tool, name+".angles", KindInconsistentAngles, "isosceles base angles differ")
		}
	case "right":
		nulls := 0
		hasRight := false
		for _, a := range given {
			if a == nil {
				nulls++
			} else if numeric.AnglesEqual(*a, 90) {
				hasRight = true
			}
		}
		if !hasRight && given[t.Apex] == nil && nulls >= 2 {
			given[t.Apex] = ptr(90)
		}
	default:
		return t, invalid(tool, name+".type", KindInvalidParameter, "unknown triangle type %q", p.Type)
	}

	fields := [3]string{}
	for i := range fields {
		fields[i] = fmt.Sprintf("%s.angles[%d]", name, i)
	}
	angles, known, err := completeAngles(tool, fields, given)
	if err != nil {
		return t, err
	}
	t.Angles = angles
	for i := range known {
		t.Given[i] = i < len(p.Angles) && p.Angles[i] != nil
	}
	return t, nil
}
