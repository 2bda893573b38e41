package engine

import (
	"fmt"
	"log/slog"

	"github.com/inamate/diagrams/internal/diagram"
	"github.com/inamate/diagrams/internal/geom"
)

// Options configures an Engine.
type Options struct {
	// PlotWidth and PlotHeight resize the coordinate-plane tools (function graphs
	// and inequalities). Zero keeps the defaults.
	PlotWidth  float64
	PlotHeight float64
	Logger     *slog.Logger
}

// Engine renders diagram specs for one page. It owns that page's memo cache, so
// engines must not be shared across pages.
type Engine struct {
	cache  *Cache
	opts   Options
	logger *slog.Logger
}

// New creates an engine with an empty cache.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cache: NewCache(), opts: opts, logger: logger}
}

// Cache exposes the page cache.
func (e *Engine) Cache() *Cache { return e.cache }

// Validate normalizes a spec without drawing it.
func (e *Engine) Validate(spec diagram.Spec) (diagram.Normalized, error) {
	n, err := diagram.Normalize(spec.Tool, spec.Parameters)
	if err != nil {
		return nil, diagram.AsRenderError(spec.Tool, err)
	}
	return n, nil
}

// Render draws a spec. Structurally identical specs are served from the page
// cache. Every failure is a *diagram.RenderError; the caller can draw
// Placeholder(err) in its place.
func (e *Engine) Render(spec diagram.Spec) (*Result, error) {
	key := spec.Key()
	if r, ok := e.cache.Get(key); ok {
		return withCaption(r, spec.Caption), nil
	}

	r, err := e.render(spec, key)
	if err != nil {
		re := diagram.AsRenderError(spec.Tool, err)
		e.logger.Debug("diagram render failed", "tool", spec.Tool, "kind", re.Kind, "field", re.Field, "reason", re.Reason)
		return nil, re
	}
	e.cache.Put(key, r)
	e.logger.Debug("diagram rendered", "tool", spec.Tool, "key", key[:12], "primitives", len(r.Primitives))
	return withCaption(r, spec.Caption), nil
}

func (e *Engine) render(spec diagram.Spec, key string) (*Result, error) {
	ent, ok := table[spec.Tool]
	if !ok {
		return nil, &diagram.RenderError{Kind: diagram.KindUnknownTool, Tool: spec.Tool, Field: "toolName", Reason: fmt.Sprintf("unknown tool %q", spec.Tool)}
	}
	n, err := diagram.Normalize(spec.Tool, spec.Parameters)
	if err != nil {
		return nil, err
	}

	v := ent.viewport
	if ent.plot {
		if e.opts.PlotWidth > 0 {
			v.Width = e.opts.PlotWidth
		}
		if e.opts.PlotHeight > 0 {
			v.Height = e.opts.PlotHeight
		}
	}
	f, err := ent.layout(n, v)
	if err != nil {
		return nil, &diagram.RenderError{Kind: diagram.KindInvalidRange, Tool: spec.Tool, Reason: err.Error(), Err: err}
	}

	c := newCanvas(f)
	ent.build(n, c)
	prims, labels := c.finish()
	return &Result{
		Tool:       spec.Tool,
		Key:        key,
		Width:      f.Viewport.Width,
		Height:     f.Viewport.Height,
		Primitives: prims,
		Labels:     labels,
	}, nil
}

// withCaption returns a shallow copy carrying the caption of this request; the
// cached result itself is never modified.
func withCaption(r *Result, caption string) *Result {
	out := *r
	out.Caption = caption
	return &out
}

// Placeholder is drawn in place of a diagram that failed to render. It names the
// error kind and field.
func Placeholder(err error) *Result {
	re := diagram.AsRenderError("", err)
	if re == nil {
		re = &diagram.RenderError{Kind: diagram.KindInvalidParameter, Reason: "no error given"}
	}
	v := geom.Viewport{Width: 420, Height: 140, Padding: 12}
	f := geom.PixelFrame(v)
	c := newCanvas(f)
	c.add(Primitive{
		Kind:   KindPolygon,
		Role:   "placeholder",
		Points: f.Inner().Corners(),
		Style:  Style{Stroke: colorFail, StrokeWidth: 2, Fill: "#fef2f2", Dash: dashed},
	})

	title := "Diagram unavailable"
	if re.Tool != "" {
		title = fmt.Sprintf("%s unavailable", re.Tool)
	}
	detail := string(re.Kind)
	if re.Field != "" {
		detail += " (" + re.Field + ")"
	}
	mid := v.Width / 2
	c.text("placeholderTitle", geom.Pt(mid, 44), title, 16, AlignMiddle, colorFail)
	c.text("placeholderKind", geom.Pt(mid, 72), detail, DefaultFontSize, AlignMiddle, colorInk)
	c.text("placeholderReason", geom.Pt(mid, 98), truncate(re.Reason, 56), 11, AlignMiddle, colorMuted)

	prims, _ := c.finish()
	return &Result{Tool: re.Tool, Width: v.Width, Height: v.Height, Primitives: prims, Error: re}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
