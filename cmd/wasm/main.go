//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/inamate/diagrams/internal/diagram"
	"github.com/inamate/diagrams/internal/engine"
	"github.com/inamate/diagrams/internal/render"
)

// The browser hosts a single page, so one engine serves it until clearPage.
var (
	eng   = engine.New(engine.Options{})
	slots = map[string]*engine.Result{}
)

func main() {
	api := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	api.Set("render", js.FuncOf(renderSlot))
	api.Set("removeSlot", js.FuncOf(removeSlot))
	api.Set("clearPage", js.FuncOf(clearPage))

	// --- Queries (frontend ← engine) ---
	api.Set("svg", js.FuncOf(svg))
	api.Set("hitTest", js.FuncOf(hitTest))
	api.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	api.Set("getCacheStats", js.FuncOf(getCacheStats))
	api.Set("tools", js.FuncOf(tools))

	js.Global().Set("diagramEngine", api)
	js.Global().Set("diagramWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errorValue(msg string) js.Value {
	return js.ValueOf(map[string]interface{}{"error": msg})
}

type renderResponse struct {
	Commands []engine.DrawCommand `json:"commands"`
	Width    float64              `json:"width"`
	Height   float64              `json:"height"`
	Caption  string               `json:"caption,omitempty"`
	Error    *diagram.RenderError `json:"error,omitempty"`
}

// renderSlot(slot, specJSON) draws a spec and returns canvas commands as JSON.
// Failures draw the placeholder and carry the error.
func renderSlot(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorValue("usage: render(slot, specJSON)")
	}
	slot := args[0].String()

	spec, err := diagram.ParseSpec([]byte(args[1].String()))
	var res *engine.Result
	if err == nil {
		res, err = eng.Render(spec)
	}
	resp := renderResponse{}
	if err != nil {
		resp.Error = diagram.AsRenderError(spec.Tool, err)
		res = engine.Placeholder(resp.Error)
	}
	slots[slot] = res

	resp.Commands = engine.Compile(res)
	resp.Width, resp.Height, resp.Caption = res.Width, res.Height, res.Caption
	data, err := json.Marshal(resp)
	if err != nil {
		return errorValue(err.Error())
	}
	return js.ValueOf(string(data))
}

func removeSlot(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	delete(slots, args[0].String())
	return nil
}

// clearPage tears the page down: every slot and the whole cache.
func clearPage(this js.Value, args []js.Value) interface{} {
	clear(slots)
	eng.Cache().Clear()
	return nil
}

func svg(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf("")
	}
	res, ok := slots[args[0].String()]
	if !ok {
		return js.ValueOf("")
	}
	return js.ValueOf(string(render.SVG(res)))
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return js.ValueOf("")
	}
	res, ok := slots[args[0].String()]
	if !ok {
		return js.ValueOf("")
	}
	return js.ValueOf(engine.HitTest(res, args[1].Float(), args[2].Float()))
}

func getSelectionBounds(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("null")
	}
	res, ok := slots[args[0].String()]
	if !ok {
		return js.ValueOf("null")
	}
	b := engine.SelectionBounds(res, args[1].String())
	data, _ := json.Marshal(b)
	return js.ValueOf(string(data))
}

func getCacheStats(this js.Value, args []js.Value) interface{} {
	data, _ := json.Marshal(eng.Cache().Stats())
	return js.ValueOf(string(data))
}

func tools(this js.Value, args []js.Value) interface{} {
	names := make([]interface{}, len(diagram.AllTools))
	for i, t := range diagram.AllTools {
		names[i] = string(t)
	}
	return js.ValueOf(names)
}
