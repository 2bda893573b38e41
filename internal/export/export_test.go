package export

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/diagrams/internal/diagram"
	"github.com/inamate/diagrams/internal/engine"
	"github.com/inamate/diagrams/internal/gallery"
)

const lineSpec = `{"toolName":"numberLine","parameters":{"min":-5,"max":5,"points":[{"value":2}]},"caption":"Où est 2 ?"}`

func newServer() (*mux.Router, *engine.Pages) {
	pages := engine.NewPages(engine.Options{})
	r := mux.NewRouter()
	NewHandler(pages, engine.Options{}).Routes(r)
	return r, pages
}

func send(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func TestSlug(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Où est 2 ?", "ou-est-2"},
		{"Brüche über Zahlen", "bruche-uber-zahlen"},
		{"  --  ", "fallback"},
		{"x² + 3x", "x-3x"},
		{strings.Repeat("a", 100), strings.Repeat("a", maxSlugLen)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slug(tt.in, "fallback"), tt.in)
	}
}

func TestRenderFormats(t *testing.T) {
	srv, _ := newServer()

	rec := send(srv, http.MethodPost, "/render", lineSpec)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `class="caption"`)

	rec = send(srv, http.MethodPost, "/render?format=png", lineSpec)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = send(srv, http.MethodPost, "/render?format=pdf&download=1", lineSpec)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="ou-est-2.pdf"`, rec.Header().Get("Content-Disposition"))

	rec = send(srv, http.MethodPost, "/render?format=bmp", lineSpec)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRenderFailureServesPlaceholder(t *testing.T) {
	srv, _ := newServer()

	rec := send(srv, http.MethodPost, "/render", `{"toolName":"pieChart","parameters":{"frequencies":[2,-1]}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, string(diagram.KindNegativeMeasure), rec.Header().Get(ErrorHeader))
	assert.Contains(t, rec.Body.String(), "NegativeMeasure (frequencies[1])")

	rec = send(srv, http.MethodPost, "/render", `{not json`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, string(diagram.KindInvalidParameter), rec.Header().Get(ErrorHeader))

	rec = send(srv, http.MethodPost, "/render?download=1", `{"toolName":"sketch","parameters":{}}`)
	assert.Equal(t, string(diagram.KindUnknownTool), rec.Header().Get(ErrorHeader))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="sketch.svg"`)
}

func TestPageCacheLifecycle(t *testing.T) {
	srv, pages := newServer()

	for range 3 {
		rec := send(srv, http.MethodPost, "/render?page=lesson-1", lineSpec)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := send(srv, http.MethodGet, "/pages/lesson-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats engine.CacheStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, engine.CacheStats{Entries: 1, Hits: 2, Misses: 1}, stats)

	rec = send(srv, http.MethodDelete, "/pages/lesson-1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, pages.Len())
	rec = send(srv, http.MethodGet, "/pages/lesson-1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = send(srv, http.MethodPost, "/render?page="+strings.Repeat("p", maxPageIDLen+1), lineSpec)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidate(t *testing.T) {
	srv, _ := newServer()

	rec := send(srv, http.MethodPost, "/validate", lineSpec)
	require.Equal(t, http.StatusOK, rec.Code)
	var ok validateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ok))
	assert.True(t, ok.Valid)
	assert.Len(t, ok.Key, 64)

	rec = send(srv, http.MethodPost, "/validate", `{"toolName":"numberLine","parameters":{"min":5,"max":1}}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var bad validateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bad))
	assert.False(t, bad.Valid)
	require.NotNil(t, bad.Error)
	assert.Equal(t, diagram.KindInvalidRange, bad.Error.Kind)
}

func TestGallery(t *testing.T) {
	srv, _ := newServer()

	rec := send(srv, http.MethodGet, "/gallery", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var samples []gallery.Sample
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &samples))
	assert.Len(t, samples, len(gallery.Samples()))

	rec = send(srv, http.MethodGet, "/gallery/"+samples[0].Name, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<svg")

	rec = send(srv, http.MethodGet, "/gallery/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
