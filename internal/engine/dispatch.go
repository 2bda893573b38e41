package engine

import (
	"fmt"

	"github.com/inamate/diagrams/internal/diagram"
	"github.com/inamate/diagrams/internal/geom"
)

// entry pairs the layout that picks a diagram's frame with the builder that draws
// into it.
type entry struct {
	layout func(n diagram.Normalized, v geom.Viewport) (*geom.Frame, error)
	build  func(n diagram.Normalized, c *canvas)
	// viewport is the default drawing surface for the tool.
	viewport geom.Viewport
	// plot marks tools whose viewport follows the configured plot size.
	plot bool
}

func bind[T diagram.Normalized](v geom.Viewport, plot bool, layout func(T, geom.Viewport) (*geom.Frame, error), build func(T, *canvas)) entry {
	return entry{
		viewport: v,
		plot:     plot,
		layout: func(n diagram.Normalized, v geom.Viewport) (*geom.Frame, error) {
			t, ok := n.(T)
			if !ok {
				return nil, fmt.Errorf("layout: unexpected %T", n)
			}
			return layout(t, v)
		},
		build: func(n diagram.Normalized, c *canvas) { build(n.(T), c) },
	}
}

// table maps every tool to its builder. It is checked for completeness against
// diagram.AllTools in tests.
var table = map[diagram.Tool]entry{
	diagram.ToolRightTriangle:        bind(geom.Viewport{Width: 420, Height: 340, Padding: 40}, false, layoutRightTriangle, buildRightTriangle),
	diagram.ToolExtendedLineTriangle: bind(geom.Viewport{Width: 480, Height: 340, Padding: 40}, false, layoutExtendedLine, buildExtendedLine),
	diagram.ToolAdjacentTriangles:    bind(geom.Viewport{Width: 480, Height: 400, Padding: 40}, false, layoutAdjacent, buildAdjacent),
	diagram.ToolFunctionGraph:        bind(geom.Viewport{Width: 500, Height: 500, Padding: 50}, true, layoutFunctionGraph, buildFunctionGraph),
	diagram.ToolLinearInequality:     bind(geom.Viewport{Width: 500, Height: 500, Padding: 50}, true, layoutInequality, buildInequality),
	diagram.ToolPieChart:             bind(geom.Viewport{Width: 440, Height: 440, Padding: 50}, false, layoutPie, buildPie),
	diagram.ToolBarModel:             bind(geom.Viewport{Width: 560, Height: 0, Padding: 30}, false, layoutBarModel, buildBarModel),
	diagram.ToolNumberLine:           bind(geom.Viewport{Width: 600, Height: 130, Padding: 40}, false, layoutNumberLine, buildNumberLine),
	diagram.ToolFractionBar:          bind(geom.Viewport{Width: 520, Height: 0, Padding: 30}, false, layoutFractionBar, buildFractionBar),
	diagram.ToolAlgebraExpression:    bind(geom.Viewport{Width: 600, Height: 0, Padding: 30}, false, layoutAlgebra, buildAlgebra),
}

// Viewport returns the default drawing surface for a tool.
func Viewport(tool diagram.Tool) (geom.Viewport, bool) {
	e, ok := table[tool]
	return e.viewport, ok
}
