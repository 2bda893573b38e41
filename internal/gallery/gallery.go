package gallery

import (
	"encoding/json"
	"slices"
	"sync"

	"github.com/inamate/diagrams/internal/diagram"
	"github.com/inamate/diagrams/internal/typeid"
)

// Sample is a ready-made lesson diagram.
type Sample struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Title string       `json:"title"`
	Spec  diagram.Spec `json:"spec"`
}

type sampleDef struct {
	name    string
	title   string
	tool    diagram.Tool
	caption string
	params  string
}

var defs = []sampleDef{
	{
		name:    "right-triangle-sohcahtoa",
		title:   "Naming the sides",
		tool:    diagram.ToolRightTriangle,
		caption: "Opposite, adjacent and hypotenuse relative to θ.",
		params:  `{"angle":35,"hypotenuse":"10 cm","opposite":"x","highlightSide":"opposite","showSideTypeLabels":true}`,
	},
	{
		name:    "exterior-angle",
		title:   "Exterior angle of a triangle",
		tool:    diagram.ToolExtendedLineTriangle,
		caption: "The exterior angle equals the sum of the two opposite interior angles.",
		params:  `{"angleA":50,"angleB":60,"extendedSide":"BC","exteriorAngleLabel":"x"}`,
	},
	{
		name:    "kite-triangles",
		title:   "Two triangles on a shared side",
		tool:    diagram.ToolAdjacentTriangles,
		caption: "Triangles ABC and ACD share side AC.",
		params:  `{"triangle1":{"vertices":["A","B","C"],"angles":[40,null,null],"type":"isosceles","showEqualSides":true},"triangle2":{"vertices":["A","C","D"],"angles":[30,70,null]},"highlightAngle":"D"}`,
	},
	{
		name:    "reciprocal",
		title:   "y = 1/x",
		tool:    diagram.ToolFunctionGraph,
		caption: "The curve never meets either axis.",
		params:  `{"expression":"1/x","xMin":-5,"xMax":5,"yMin":-5,"yMax":5,"label":"y = 1/x"}`,
	},
	{
		name:    "sine-degrees",
		title:   "y = sin x",
		tool:    diagram.ToolFunctionGraph,
		params:  `{"expression":"sin(x)","xAxisMode":"degrees","xMin":0,"xMax":360,"points":[{"x":90,"label":"max"}]}`,
	},
	{
		name:    "inequality-test-point",
		title:   "2x + 3y ≥ 6",
		tool:    diagram.ToolLinearInequality,
		caption: "Testing the origin shows which side to shade.",
		params:  `{"coefficientX":2,"coefficientY":3,"constant":6,"inequalityType":">=","testPoint":{"x":0,"y":0}}`,
	},
	{
		name:   "inequality-system",
		title:  "A system of inequalities",
		tool:   diagram.ToolLinearInequality,
		params: `{"inequalities":[{"coefficientX":1,"coefficientY":1,"constant":4,"inequalityType":"<="},{"coefficientX":1,"coefficientY":-1,"constant":0,"inequalityType":">"}],"testPoint":{"x":1,"y":0,"label":"P"}}`,
	},
	{
		name:    "favourite-sports",
		title:   "Favourite sports",
		tool:    diagram.ToolPieChart,
		caption: "40 students were asked.",
		params:  `{"labels":["Football","Tennis","Swimming","Other"],"frequencies":[12,8,14,6],"showCalculations":true}`,
	},
	{
		name:   "ratio-bar",
		title:  "Sharing in the ratio 3 : 2",
		tool:   diagram.ToolBarModel,
		params: `{"bars":[{"label":"Ali","segments":[{"units":3,"label":"?"}],"totalLabel":"£45"},{"label":"Ben","segments":[{"units":2}]}],"brackets":[{"from":0,"to":1,"label":"£75"}]}`,
	},
	{
		name:    "solution-set",
		title:   "-2 < x ≤ 3",
		tool:    diagram.ToolNumberLine,
		caption: "Open circle: not included. Filled circle: included.",
		params:  `{"min":-5,"max":5,"intervals":[{"start":-2,"end":3,"startInclusive":false}],"highlightIntegers":true}`,
	},
	{
		name:   "compare-fractions",
		title:  "Comparing 3/8 and 1/2",
		tool:   diagram.ToolFractionBar,
		params: `{"fraction1":"3/8","fraction2":"1/2","showLabels":true}`,
	},
	{
		name:   "like-terms",
		title:  "Collecting like terms",
		tool:   diagram.ToolAlgebraExpression,
		params: `{"expression":"5x + 3y - 2x + 4 - 2y + 6","showBreakdown":true}`,
	},
}

// Samples returns the gallery, one or more diagrams per tool, in a stable order.
// IDs are assigned once per process.
func Samples() []Sample {
	return slices.Clone(samples())
}

var samples = sync.OnceValue(func() []Sample {
	out := make([]Sample, 0, len(defs))
	for _, d := range defs {
		out = append(out, Sample{
			ID:    typeid.NewSampleID(),
			Name:  d.name,
			Title: d.title,
			Spec: diagram.Spec{
				Tool:       d.tool,
				Parameters: json.RawMessage(d.params),
				Caption:    d.caption,
			},
		})
	}
	return out
})

// Find returns the sample with the given name or ID.
func Find(name string) (Sample, bool) {
	for _, s := range samples() {
		if s.Name == name || s.ID == name {
			return s, true
		}
	}
	return Sample{}, false
}
