// Package library stores the diagrams lesson authors save for reuse.
package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/inamate/diagrams/internal/asset"
	"github.com/inamate/diagrams/internal/diagram"
	"github.com/inamate/diagrams/internal/engine"
	"github.com/inamate/diagrams/internal/typeid"
)

var (
	ErrNotFound  = errors.New("diagram not found")
	ErrForbidden = errors.New("forbidden")
	ErrNoTitle   = errors.New("title is required")
)

const maxTitleLen = 200

// Thumbnailer writes previews for saved diagrams. asset.Thumbnails is the real one.
type Thumbnailer interface {
	Save(r *engine.Result) (*asset.Thumbnail, error)
	Delete(id string) error
}

type Service struct {
	store  Store
	thumbs Thumbnailer
	engine *engine.Engine
}

// NewService creates a library. thumbs may be nil to skip previews.
func NewService(store Store, thumbs Thumbnailer, opts engine.Options) *Service {
	return &Service{store: store, thumbs: thumbs, engine: engine.New(opts)}
}

type Diagram struct {
	ID           string       `json:"id"`
	OwnerID      string       `json:"ownerId"`
	Title        string       `json:"title"`
	Spec         diagram.Spec `json:"spec"`
	ThumbnailURL string       `json:"thumbnailUrl,omitempty"`
	CreatedAt    string       `json:"createdAt"`
	UpdatedAt    string       `json:"updatedAt"`
}

// Create validates and renders spec before storing it, so the library only
// ever holds diagrams that draw. Failures come back as *diagram.RenderError.
func (s *Service) Create(ctx context.Context, ownerID, title string, spec diagram.Spec) (*Diagram, error) {
	title, err := cleanTitle(title)
	if err != nil {
		return nil, err
	}
	r, err := s.engine.Render(spec)
	if err != nil {
		return nil, err
	}

	rec, err := s.store.Insert(ctx, Record{
		ID:          typeid.NewDiagramID(),
		OwnerID:     ownerID,
		Title:       title,
		Spec:        spec,
		SpecKey:     r.Key,
		ThumbnailID: s.thumbnail(r),
	})
	if err != nil {
		return nil, fmt.Errorf("insert diagram: %w", err)
	}
	return toDiagram(rec), nil
}

func (s *Service) Get(ctx context.Context, id, userID string) (*Diagram, error) {
	rec, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return toDiagram(rec), nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Diagram, error) {
	recs, err := s.store.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list diagrams: %w", err)
	}
	out := make([]Diagram, len(recs))
	for i, rec := range recs {
		out[i] = *toDiagram(rec)
	}
	return out, nil
}

// Update replaces the title and spec. The thumbnail is redrawn only when the
// spec changed structurally.
func (s *Service) Update(ctx context.Context, id, userID, title string, spec diagram.Spec) (*Diagram, error) {
	rec, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if rec.Title, err = cleanTitle(title); err != nil {
		return nil, err
	}
	r, err := s.engine.Render(spec)
	if err != nil {
		return nil, err
	}

	old := rec.ThumbnailID
	if r.Key != rec.SpecKey || old == "" {
		rec.ThumbnailID = s.thumbnail(r)
	}
	rec.Spec = spec
	rec.SpecKey = r.Key

	updated, err := s.store.Update(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("update diagram: %w", err)
	}
	if old != "" && old != updated.ThumbnailID {
		s.dropThumbnail(old)
	}
	return toDiagram(updated), nil
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	rec, err := s.owned(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if rec.ThumbnailID != "" {
		s.dropThumbnail(rec.ThumbnailID)
	}
	return nil
}

// Render draws a saved diagram through the library's own cache.
func (s *Service) Render(ctx context.Context, id, userID string) (*engine.Result, error) {
	rec, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return s.engine.Render(rec.Spec)
}

func (s *Service) owned(ctx context.Context, id, userID string) (Record, error) {
	if typeid.Validate(id, typeid.PrefixDiagram) != nil {
		return Record{}, ErrNotFound
	}
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("get diagram: %w", err)
	}
	if rec.OwnerID != userID {
		return Record{}, ErrForbidden
	}
	return rec, nil
}

// thumbnail returns the id of a fresh preview, or "" when there is no store or
// rasterizing failed. A missing preview never blocks a save.
func (s *Service) thumbnail(r *engine.Result) string {
	if s.thumbs == nil {
		return ""
	}
	t, err := s.thumbs.Save(r)
	if err != nil {
		slog.Warn("thumbnail failed", "tool", r.Tool, "error", err)
		return ""
	}
	return t.ID
}

func (s *Service) dropThumbnail(id string) {
	if s.thumbs == nil {
		return
	}
	if err := s.thumbs.Delete(id); err != nil && !errors.Is(err, asset.ErrNotFound) {
		slog.Warn("delete thumbnail failed", "thumbnail", id, "error", err)
	}
}

func cleanTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrNoTitle
	}
	if r := []rune(title); len(r) > maxTitleLen {
		title = string(r[:maxTitleLen])
	}
	return title, nil
}

func toDiagram(rec Record) *Diagram {
	d := &Diagram{
		ID:        rec.ID,
		OwnerID:   rec.OwnerID,
		Title:     rec.Title,
		Spec:      rec.Spec,
		CreatedAt: rec.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt: rec.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if rec.ThumbnailID != "" {
		d.ThumbnailURL = "/thumbnails/" + rec.ThumbnailID + ".png"
	}
	return d
}
