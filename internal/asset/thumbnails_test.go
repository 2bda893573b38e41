package asset

import (
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/diagrams/internal/diagram"
	"github.com/inamate/diagrams/internal/engine"
)

func TestSaveServeDelete(t *testing.T) {
	dir := t.TempDir()
	store := NewThumbnails(dir)

	r, err := engine.New(engine.Options{}).Render(diagram.Spec{
		Tool:       diagram.ToolPieChart,
		Parameters: json.RawMessage(`{"labels":["a","b"],"frequencies":[1,3]}`),
	})
	require.NoError(t, err)

	thumb, err := store.Save(r)
	require.NoError(t, err)
	assert.Equal(t, ThumbnailWidth, thumb.Width)
	assert.Regexp(t, `^/thumbnails/thumb_.*\.png$`, thumb.URL)

	f, err := os.Open(filepath.Join(dir, thumb.ID+".png"))
	require.NoError(t, err)
	img, err := png.Decode(f)
	f.Close()
	require.NoError(t, err)
	assert.Equal(t, thumb.Height, img.Bounds().Dy())

	rec := httptest.NewRecorder()
	store.Serve().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, thumb.URL, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "immutable")

	require.NoError(t, store.Delete(thumb.ID))
	assert.ErrorIs(t, store.Delete(thumb.ID), ErrNotFound)
	assert.Error(t, store.Delete("../etc/passwd"))
}
