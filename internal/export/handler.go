// Package export serves one-off diagram renders over HTTP.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/inamate/diagrams/internal/diagram"
	"github.com/inamate/diagrams/internal/engine"
	"github.com/inamate/diagrams/internal/gallery"
	"github.com/inamate/diagrams/internal/render"
)

const (
	maxSpecSize  = 1 << 20 // 1MB
	maxPageIDLen = 64
	// ErrorHeader names the error kind of a placeholder response.
	ErrorHeader = "X-Diagram-Error"
)

type Handler struct {
	pages *engine.Pages
	opts  engine.Options
}

// NewHandler renders through pages when a request names a page, and through a
// throwaway engine otherwise.
func NewHandler(pages *engine.Pages, opts engine.Options) *Handler {
	return &Handler{pages: pages, opts: opts}
}

func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/render", h.Render).Methods("POST")
	r.HandleFunc("/validate", h.Validate).Methods("POST")
	r.HandleFunc("/gallery", h.Gallery).Methods("GET")
	r.HandleFunc("/gallery/{name}", h.GallerySample).Methods("GET")
	r.HandleFunc("/pages/{pageId}", h.PageStats).Methods("GET")
	r.HandleFunc("/pages/{pageId}", h.TeardownPage).Methods("DELETE")
}

func (h *Handler) engineFor(r *http.Request) (*engine.Engine, error) {
	page := r.URL.Query().Get("page")
	if page == "" {
		return engine.New(h.opts), nil
	}
	if len(page) > maxPageIDLen {
		return nil, fmt.Errorf("page id longer than %d bytes", maxPageIDLen)
	}
	return h.pages.For(page), nil
}

func readSpec(w http.ResponseWriter, r *http.Request) (diagram.Spec, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSpecSize))
	if err != nil {
		return diagram.Spec{}, fmt.Errorf("read body: %w", err)
	}
	return diagram.ParseSpec(body)
}

// Render handles POST /render?format=svg|png|pdf&page=<id>&download=1. A spec
// that cannot be drawn answers 422 with the placeholder in the requested format.
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	format, err := render.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	eng, err := h.engineFor(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	spec, err := readSpec(w, r)
	status := http.StatusOK
	var res *engine.Result
	if err == nil {
		res, err = eng.Render(spec)
	}
	if err != nil {
		re := diagram.AsRenderError(spec.Tool, err)
		slog.Info("render rejected", "tool", spec.Tool, "kind", re.Kind, "field", re.Field)
		w.Header().Set(ErrorHeader, string(re.Kind))
		res = engine.Placeholder(re)
		status = http.StatusUnprocessableEntity
	}

	if r.URL.Query().Get("download") != "" {
		name := Slug(spec.Caption, Slug(string(spec.Tool), "diagram")) + format.Extension()
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	}
	writeResult(w, status, res, format)
}

// writeResult encodes fully before writing, so an encoder error can still
// become a 500.
func writeResult(w http.ResponseWriter, status int, res *engine.Result, format render.Format) {
	var buf bytes.Buffer
	if err := render.Write(&buf, res, format); err != nil {
		slog.Error("encode diagram failed", "error", err, "format", format)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

type validateResponse struct {
	Valid bool                 `json:"valid"`
	Tool  diagram.Tool         `json:"toolName,omitempty"`
	Key   string               `json:"key,omitempty"`
	Error *diagram.RenderError `json:"error,omitempty"`
}

// Validate checks a spec without drawing it.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	spec, err := readSpec(w, r)
	if err == nil {
		_, err = engine.New(h.opts).Validate(spec)
	}
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, validateResponse{Error: diagram.AsRenderError(spec.Tool, err)})
		return
	}
	writeJSON(w, http.StatusOK, validateResponse{Valid: true, Tool: spec.Tool, Key: spec.Key()})
}

func (h *Handler) Gallery(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, gallery.Samples())
}

// GallerySample renders one sample by name or id.
func (h *Handler) GallerySample(w http.ResponseWriter, r *http.Request) {
	format, err := render.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s, ok := gallery.Find(mux.Vars(r)["name"])
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	res, err := h.pages.For("gallery").Render(s.Spec)
	if err != nil {
		slog.Error("gallery sample failed", "sample", s.Name, "error", err)
		writeResult(w, http.StatusInternalServerError, engine.Placeholder(err), format)
		return
	}
	writeResult(w, http.StatusOK, res, format)
}

func (h *Handler) PageStats(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.pages.Lookup(mux.Vars(r)["pageId"])
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no such page"})
		return
	}
	writeJSON(w, http.StatusOK, eng.Cache().Stats())
}

// TeardownPage drops a page's cache once the page is closed.
func (h *Handler) TeardownPage(w http.ResponseWriter, r *http.Request) {
	h.pages.Teardown(mux.Vars(r)["pageId"])
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
