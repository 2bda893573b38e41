package engine

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/diagrams/internal/diagram"
	"github.com/inamate/diagrams/internal/gallery"
	"github.com/inamate/diagrams/internal/geom"
)

func spec(tool diagram.Tool, params string) diagram.Spec {
	return diagram.Spec{Tool: tool, Parameters: json.RawMessage(params)}
}

func mustRender(t *testing.T, e *Engine, tool diagram.Tool, params string) *Result {
	t.Helper()
	r, err := e.Render(spec(tool, params))
	require.NoError(t, err)
	require.NotNil(t, r)
	return r
}

func TestTableCoversEveryTool(t *testing.T) {
	for _, tool := range diagram.AllTools {
		_, ok := Viewport(tool)
		assert.True(t, ok, tool)
	}
	assert.Len(t, table, len(diagram.AllTools))
}

func TestGalleryRenders(t *testing.T) {
	e := New(Options{})
	seen := map[diagram.Tool]bool{}
	for _, s := range gallery.Samples() {
		t.Run(s.Name, func(t *testing.T) {
			r, err := e.Render(s.Spec)
			require.NoError(t, err)
			assert.NotEmpty(t, r.Primitives)
			assert.Equal(t, s.Spec.Caption, r.Caption)
			assert.Positive(t, r.Width)
			assert.Positive(t, r.Height)
		})
		seen[s.Spec.Tool] = true
	}
	assert.Len(t, seen, len(diagram.AllTools))
}

func TestRenderIsDeterministic(t *testing.T) {
	for _, s := range gallery.Samples() {
		a, err := New(Options{}).Render(s.Spec)
		require.NoError(t, err)
		b, err := New(Options{}).Render(s.Spec)
		require.NoError(t, err)
		assert.Equal(t, a, b, s.Name)
	}
}

func TestLabelsStayInside(t *testing.T) {
	for _, s := range gallery.Samples() {
		r, err := New(Options{}).Render(s.Spec)
		require.NoError(t, err)
		bounds := geom.Rect{Width: r.Width, Height: r.Height}
		for _, l := range r.Labels {
			box := textBox(l.At, l.Text, l.FontSize, l.Align)
			assert.True(t, bounds.Contains(geom.Pt(box.MinX(), box.MinY())) && bounds.Contains(geom.Pt(box.MaxX(), box.MaxY())),
				"%s: label %q at %v", s.Name, l.Text, l.At)
		}
	}
}

func TestCacheServesStructurallyEqualSpecs(t *testing.T) {
	e := New(Options{})
	a := spec(diagram.ToolPieChart, `{"labels":["a","b"],"frequencies":[1,3]}`)
	a.Caption = "first"
	b := spec(diagram.ToolPieChart, `{ "frequencies": [1, 3], "labels": ["a", "b"] }`)
	b.Caption = "second"

	ra, err := e.Render(a)
	require.NoError(t, err)
	rb, err := e.Render(b)
	require.NoError(t, err)

	assert.Equal(t, "first", ra.Caption)
	assert.Equal(t, "second", rb.Caption)
	assert.Equal(t, ra.Primitives, rb.Primitives)
	assert.Equal(t, CacheStats{Entries: 1, Hits: 1, Misses: 1}, e.Cache().Stats())
}

func TestFailuresAreNotCached(t *testing.T) {
	e := New(Options{})
	_, err := e.Render(spec(diagram.ToolPieChart, `{"labels":[],"frequencies":[]}`))
	require.Error(t, err)
	assert.Equal(t, diagram.KindInvalidRange, diagram.KindOf(err))
	assert.Zero(t, e.Cache().Len())
}

func TestUnknownToolPlaceholder(t *testing.T) {
	_, err := New(Options{}).Render(spec("vennDiagram", `{}`))
	require.Error(t, err)
	var re *diagram.RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, diagram.KindUnknownTool, re.Kind)

	p := Placeholder(err)
	require.NotNil(t, p.Error)
	assert.Equal(t, diagram.KindUnknownTool, p.Error.Kind)
	assert.Len(t, p.ByRole("placeholder"), 1)
	kind := p.ByRole("placeholderKind")
	require.Len(t, kind, 1)
	assert.Equal(t, "UnknownTool (toolName)", kind[0].Text)
}

func TestPlaceholderNamesField(t *testing.T) {
	_, err := New(Options{}).Render(spec(diagram.ToolRightTriangle, `{"angle":-10}`))
	require.Error(t, err)
	p := Placeholder(err)
	assert.Equal(t, diagram.ToolRightTriangle, p.Tool)
	assert.Equal(t, "NegativeMeasure (angle)", p.ByRole("placeholderKind")[0].Text)
	assert.Equal(t, "rightTriangle unavailable", p.ByRole("placeholderTitle")[0].Text)
	assert.NotNil(t, Placeholder(nil).Error)
}

func TestPagesTeardown(t *testing.T) {
	pages := NewPages(Options{})
	e := pages.For("page_1")
	assert.Same(t, e, pages.For("page_1"))
	assert.NotSame(t, e, pages.For("page_2"))

	mustRender(t, e, diagram.ToolFractionBar, `{"fraction1":"1/2"}`)
	assert.Equal(t, 1, e.Cache().Len())

	pages.Teardown("page_1")
	assert.Zero(t, e.Cache().Len())
	assert.Equal(t, 1, pages.Len())
	assert.NotSame(t, e, pages.For("page_1"))

	pages.TeardownAll()
	assert.Zero(t, pages.Len())
}

func TestPlotSizeOption(t *testing.T) {
	e := New(Options{PlotWidth: 640, PlotHeight: 480})
	r := mustRender(t, e, diagram.ToolFunctionGraph, `{"expression":"x^2"}`)
	assert.Equal(t, 640.0, r.Width)
	assert.Equal(t, 480.0, r.Height)

	r = mustRender(t, e, diagram.ToolPieChart, `{"labels":["a"],"frequencies":[1]}`)
	assert.Equal(t, 440.0, r.Width)
}

func TestRightTriangleMarks(t *testing.T) {
	r := mustRender(t, New(Options{}), diagram.ToolRightTriangle, `{"angle":30,"highlightSide":"hypotenuse"}`)
	assert.Len(t, r.ByRole("triangle"), 1)
	assert.Len(t, r.ByRole("rightAngle"), 1)
	assert.Len(t, r.ByRole("highlight"), 1)
	l, ok := r.Label("angleMarkLabel")
	require.True(t, ok)
	assert.Equal(t, "30°", l.Text)
}

func TestExteriorAngle(t *testing.T) {
	r := mustRender(t, New(Options{}), diagram.ToolExtendedLineTriangle, `{"angleA":50,"angleB":60,"extendedSide":"BC"}`)
	arcs := r.ByRole("exteriorAngle")
	require.Len(t, arcs, 1)
	assert.InDelta(t, 110, math.Abs(arcs[0].Sweep), 1e-6)
	l, ok := r.Label("exteriorAngleLabel")
	require.True(t, ok)
	assert.Equal(t, "?", l.Text)
}

func TestInequalityShadesAwayFromOrigin(t *testing.T) {
	r := mustRender(t, New(Options{}), diagram.ToolLinearInequality,
		`{"coefficientX":2,"coefficientY":3,"constant":6,"inequalityType":">=","testPoint":{"x":0,"y":0}}`)

	regions := r.ByRole("region")
	require.Len(t, regions, 1)
	// domain is ±10 on a 500px plot with 50px padding
	origin := geom.Pt(250, 250)
	assert.False(t, geom.PolygonContains(regions[0].Points, origin))
	assert.True(t, geom.PolygonContains(regions[0].Points, geom.Pt(350, 150)))

	boundary := r.ByRole("boundary")
	require.Len(t, boundary, 1)
	assert.Empty(t, boundary[0].Style.Dash)

	marker := r.ByRole("testPoint")
	require.Len(t, marker, 1)
	assert.Equal(t, colorFail, marker[0].Style.Stroke)
	v, ok := r.Label("verdict")
	require.True(t, ok)
	assert.Contains(t, v.Text, "is false")
}

func TestStrictInequalityIsDashed(t *testing.T) {
	r := mustRender(t, New(Options{}), diagram.ToolLinearInequality, `{"coefficientX":1,"coefficientY":-1,"constant":0,"inequalityType":"<"}`)
	boundary := r.ByRole("boundary")
	require.Len(t, boundary, 1)
	assert.Equal(t, dashed, boundary[0].Style.Dash)
}

func TestReciprocalSplitsAtPole(t *testing.T) {
	r := mustRender(t, New(Options{}), diagram.ToolFunctionGraph, `{"expression":"1/x","xMin":-5,"xMax":5}`)
	runs := r.ByRole("curve")
	require.GreaterOrEqual(t, len(runs), 2)

	// x = 0 maps to the middle of the plot
	pole := 250.0
	for _, run := range runs {
		left := run.Points[0].X < pole
		for _, p := range run.Points {
			assert.Equal(t, left, p.X < pole, "run crosses the pole")
			assert.GreaterOrEqual(t, p.Y, 50-1e-6)
			assert.LessOrEqual(t, p.Y, 450+1e-6)
		}
	}
}

func TestPieSweepsSumTo360(t *testing.T) {
	r := mustRender(t, New(Options{}), diagram.ToolPieChart, `{"labels":["a","b","c"],"frequencies":[1,1,1]}`)
	sectors := r.ByRole("sector")
	require.Len(t, sectors, 3)
	total := 0.0
	for _, s := range sectors {
		assert.True(t, s.Wedge)
		total += s.Sweep
	}
	assert.InDelta(t, 360, total, 1e-9)
	assert.Equal(t, PieStart, sectors[0].StartAngle)
	assert.InDelta(t, PieStart+360, sectors[2].StartAngle+sectors[2].Sweep, 1e-9)
}

func TestFractionCellsFillLeftToRight(t *testing.T) {
	r := mustRender(t, New(Options{}), diagram.ToolFractionBar, `{"fraction1":"3/8"}`)
	cells := r.ByRole("cell")
	require.Len(t, cells, 8)
	for i, c := range cells {
		assert.Equal(t, i < 3, c.Filled, "cell %d", i)
		if i > 0 {
			assert.Greater(t, c.Points[0].X, cells[i-1].Points[0].X)
		}
	}
}

func TestImproperFractionUsesWholeBars(t *testing.T) {
	r := mustRender(t, New(Options{}), diagram.ToolFractionBar, `{"fraction1":"5/4","fraction2":"1/2"}`)
	assert.Len(t, r.ByRole("cell"), 8+2)
	assert.Len(t, r.ByRole("whole"), 2+1)
}

func TestNumberLineClosedEndpoints(t *testing.T) {
	r := mustRender(t, New(Options{}), diagram.ToolNumberLine,
		`{"min":0,"max":1,"points":[{"value":0,"style":"closed"},{"value":1,"style":"closed"}]}`)
	axis := r.ByRole("axis")
	require.Len(t, axis, 1)
	points := r.ByRole("point")
	require.Len(t, points, 2)
	for i, p := range points {
		assert.True(t, p.Filled)
		assert.InDelta(t, axis[0].Points[i].X, p.Center.X, 1e-9)
		assert.InDelta(t, axis[0].Points[i].Y, p.Center.Y, 1e-9)
	}
}

func TestNumberLineOpenInterval(t *testing.T) {
	r := mustRender(t, New(Options{}), diagram.ToolNumberLine, `{"intervals":[{"start":-2,"startInclusive":false}]}`)
	ends := r.ByRole("endpoint")
	require.Len(t, ends, 1)
	assert.False(t, ends[0].Filled)
	assert.Len(t, r.ByRole("intervalArrow"), 1)
}

func TestBarModel(t *testing.T) {
	params := `{"bars":[{"label":"A","segments":[{"units":3}]},{"label":"B","segments":[{"units":1,"label":"x"},{"units":1}]}],"brackets":[{"from":0,"to":1,"label":"total"}]}`
	for _, orientation := range []string{"horizontal", "vertical"} {
		t.Run(orientation, func(t *testing.T) {
			var p map[string]any
			require.NoError(t, json.Unmarshal([]byte(params), &p))
			p["orientation"] = orientation
			raw, err := json.Marshal(p)
			require.NoError(t, err)

			r := mustRender(t, New(Options{}), diagram.ToolBarModel, string(raw))
			segs := r.ByRole("segment")
			require.Len(t, segs, 3)
			assert.Len(t, r.ByRole("divider"), 2)
			assert.Len(t, r.ByRole("bracket"), 1)

			// one unit is the same length in every bar
			a := geom.Bounds(segs[0].Points)
			b := geom.Bounds(segs[1].Points)
			if orientation == "horizontal" {
				assert.InDelta(t, a.Width/3, b.Width, 1e-9)
			} else {
				assert.InDelta(t, a.Height/3, b.Height, 1e-9)
			}
		})
	}
}

func TestAlgebraBreakdown(t *testing.T) {
	r := mustRender(t, New(Options{}), diagram.ToolAlgebraExpression, `{"expression":"5x + 3y - 2x + 4 - 2y + 6","showBreakdown":true}`)
	terms := r.ByRole("term")
	require.Len(t, terms, 6)
	assert.Equal(t, "5x", terms[0].Text)
	assert.Equal(t, "− 2x", terms[2].Text)
	assert.Len(t, r.ByRole("group"), 3)
	simplified := r.ByRole("simplified")
	require.Len(t, simplified, 1)
	assert.Equal(t, "= 3x + y + 10", simplified[0].Text)

	// like terms share a highlight color
	hl := r.ByRole("termHighlight")
	require.Len(t, hl, 6+3)
	assert.Equal(t, hl[0].Style.Fill, hl[2].Style.Fill)
	assert.NotEqual(t, hl[0].Style.Fill, hl[1].Style.Fill)
}

func TestCompileAndHitTest(t *testing.T) {
	r := mustRender(t, New(Options{}), diagram.ToolPieChart, `{"labels":["a","b"],"frequencies":[1,1],"showPercentages":true}`)
	cmds := Compile(r)
	require.NotEmpty(t, cmds)
	assert.Equal(t, "path", cmds[0].Op)
	assert.Equal(t, "M", cmds[0].Path[0][0])
	assert.Equal(t, "A", cmds[0].Path[1][0])
	assert.Equal(t, []any{"Z"}, []any(cmds[0].Path[2]))

	js, err := DrawCommandsToJSON(cmds)
	require.NoError(t, err)
	assert.Contains(t, js, `"role":"sector"`)

	// a point inside the right half, clear of the labels
	center := geom.Pt(r.Width/2, r.Height/2)
	assert.Equal(t, "sector", HitTest(r, center.X+30, center.Y-100))
	assert.Equal(t, "", HitTest(r, 2, 2))

	f := mustRender(t, New(Options{}), diagram.ToolFractionBar, `{"fraction1":"3/8"}`)
	cell := f.ByRole("cell")[0]
	at := geom.Bounds(cell.Points).Center()
	assert.Equal(t, "cell", HitTest(f, at.X, at.Y))
	assert.False(t, SelectionBounds(f, "cell").IsEmpty())
}

// renderWithin renders on a fresh engine and fails the test if it hangs.
func renderWithin(t *testing.T, s diagram.Spec) (*Result, error) {
	t.Helper()
	type outcome struct {
		r   *Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		r, err := New(Options{}).Render(s)
		done <- outcome{r, err}
	}()
	select {
	case o := <-done:
		return o.r, o.err
	case <-time.After(5 * time.Second):
		t.Fatalf("%s did not render within 5s", s.Tool)
		return nil, nil
	}
}

func TestExtremeRangesRenderOrFailTyped(t *testing.T) {
	tests := []struct {
		name   string
		tool   diagram.Tool
		params string
	}{
		{"graph huge offset", diagram.ToolFunctionGraph, `{"expression":"x","xMin":1e15,"xMax":1.000000000000001e15}`},
		{"graph huge span", diagram.ToolFunctionGraph, `{"expression":"sin(x)","xMin":-1e300,"xMax":1e300,"yMin":-2,"yMax":2}`},
		{"graph tiny span", diagram.ToolFunctionGraph, `{"expression":"x^2","xMin":0,"xMax":1e-10}`},
		{"graph overflowing span", diagram.ToolFunctionGraph, `{"expression":"x","xMin":-1e308,"xMax":1e308}`},
		{"inequality huge offset", diagram.ToolLinearInequality, `{"coefficientX":1,"coefficientY":1,"constant":2e16,"inequalityType":"<","xMin":1e16,"xMax":1.000000000000002e16,"yMin":1e16,"yMax":1.000000000000002e16}`},
		{"inequality huge span", diagram.ToolLinearInequality, `{"coefficientX":2,"coefficientY":3,"constant":6,"inequalityType":">=","xMin":-1e300,"xMax":1e300,"yMin":-1e300,"yMax":1e300}`},
		{"inequality tiny span", diagram.ToolLinearInequality, `{"coefficientX":1,"coefficientY":-1,"constant":0,"inequalityType":"<=","xMin":0,"xMax":1e-10,"yMin":0,"yMax":1e-10}`},
		{"number line huge offset", diagram.ToolNumberLine, `{"min":1e16,"max":1.000000000000002e16,"step":1}`},
		{"number line huge span", diagram.ToolNumberLine, `{"min":-1e300,"max":1e300}`},
		{"number line tiny span", diagram.ToolNumberLine, `{"min":0,"max":1e-10}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := renderWithin(t, spec(tt.tool, tt.params))
			if err != nil {
				var re *diagram.RenderError
				require.ErrorAs(t, err, &re)
				assert.NotEmpty(t, re.Kind)
				return
			}
			require.NotNil(t, r)
			assert.NotEmpty(t, r.Primitives)
			assert.NotEmpty(t, Compile(r))
		})
	}
}

func TestUndrawableRangesNameTheirField(t *testing.T) {
	tests := []struct {
		tool   diagram.Tool
		params string
		field  string
	}{
		{diagram.ToolNumberLine, `{"min":1e16,"max":1.000000000000002e16,"step":1}`, "min"},
		{diagram.ToolFunctionGraph, `{"expression":"1/x","xMin":1e15,"xMax":1.000000000000001e15}`, "xMin"},
		{diagram.ToolFunctionGraph, `{"expression":"x","xMin":-1e308,"xMax":1e308,"yMin":-1,"yMax":1}`, "xMin"},
		{diagram.ToolLinearInequality, `{"coefficientX":1,"coefficientY":1,"constant":0,"inequalityType":"<","yMin":-1e308,"yMax":1e308}`, "yMin"},
	}
	for _, tt := range tests {
		_, err := renderWithin(t, spec(tt.tool, tt.params))
		var re *diagram.RenderError
		require.ErrorAs(t, err, &re, tt.params)
		assert.Equal(t, diagram.KindInvalidRange, re.Kind, tt.params)
		assert.Equal(t, tt.field, re.Field, tt.params)
	}
}

func TestInequalityShadesTinyDomains(t *testing.T) {
	r := mustRender(t, New(Options{}), diagram.ToolLinearInequality,
		`{"coefficientX":1,"coefficientY":-1,"constant":0,"inequalityType":"<=","xMin":0,"xMax":1e-6,"yMin":0,"yMax":1e-6}`)
	assert.Len(t, r.ByRole("region"), 1)
}
