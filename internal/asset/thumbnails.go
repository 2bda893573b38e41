package asset

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	"github.com/inamate/diagrams/internal/engine"
	"github.com/inamate/diagrams/internal/render"
	"github.com/inamate/diagrams/internal/typeid"
)

// ThumbnailWidth is the width of stored previews; height keeps the aspect ratio.
const ThumbnailWidth = 240

var ErrNotFound = errors.New("thumbnail not found")

// Thumbnails stores PNG previews of library diagrams on disk.
type Thumbnails struct {
	dir string
}

// NewThumbnails creates a store that keeps files in dir.
func NewThumbnails(dir string) *Thumbnails {
	if err := os.MkdirAll(dir, 0755); err != nil {
		slog.Error("create thumbnail dir", "error", err, "dir", dir)
	}
	return &Thumbnails{dir: dir}
}

// Thumbnail describes a stored preview.
type Thumbnail struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Save rasterizes r, scales it to ThumbnailWidth and writes it under a new ID.
func (t *Thumbnails) Save(r *engine.Result) (*Thumbnail, error) {
	full, err := render.Raster(r)
	if err != nil {
		return nil, fmt.Errorf("rasterize: %w", err)
	}
	src := full.Bounds()
	w := min(ThumbnailWidth, src.Dx())
	h := max(1, src.Dy()*w/src.Dx())
	small := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(small, small.Bounds(), full, src, draw.Src, nil)

	id := typeid.NewThumbnailID()
	filename := id + ".png"
	path := filepath.Join(t.dir, filename)
	out, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create thumbnail file: %w", err)
	}
	defer out.Close()

	if err := png.Encode(out, small); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return &Thumbnail{ID: id, URL: "/thumbnails/" + filename, Width: w, Height: h}, nil
}

// Serve returns an http.Handler for /thumbnails/ with caching headers.
func (t *Thumbnails) Serve() http.Handler {
	fs := http.FileServer(http.Dir(t.dir))
	return http.StripPrefix("/thumbnails/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// IDs are never reused, so files are immutable
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		fs.ServeHTTP(w, r)
	}))
}

// Delete removes a stored thumbnail.
func (t *Thumbnails) Delete(id string) error {
	if err := typeid.Validate(id, typeid.PrefixThumbnail); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(t.dir, id+".png")); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
