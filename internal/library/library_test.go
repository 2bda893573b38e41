package library

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/diagrams/internal/asset"
	"github.com/inamate/diagrams/internal/auth"
	"github.com/inamate/diagrams/internal/diagram"
	"github.com/inamate/diagrams/internal/engine"
)

type memStore struct {
	mu   sync.Mutex
	recs map[string]Record
	tick time.Time
}

func newMemStore() *memStore {
	return &memStore{recs: map[string]Record{}, tick: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *memStore) now() time.Time {
	m.tick = m.tick.Add(time.Second)
	return m.tick
}

func (m *memStore) Insert(_ context.Context, rec Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.CreatedAt = m.now()
	rec.UpdatedAt = rec.CreatedAt
	m.recs[rec.ID] = rec
	return rec, nil
}

func (m *memStore) Get(_ context.Context, id string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (m *memStore) ListByOwner(_ context.Context, ownerID string) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Record
	for _, rec := range m.recs {
		if rec.OwnerID == ownerID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *memStore) Update(_ context.Context, rec Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recs[rec.ID]; !ok {
		return Record{}, ErrNotFound
	}
	rec.UpdatedAt = m.now()
	m.recs[rec.ID] = rec
	return rec, nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recs[id]; !ok {
		return ErrNotFound
	}
	delete(m.recs, id)
	return nil
}

type fakeThumbs struct {
	saved   int
	deleted []string
	fail    bool
}

func (f *fakeThumbs) Save(r *engine.Result) (*asset.Thumbnail, error) {
	if f.fail {
		return nil, errors.New("disk full")
	}
	f.saved++
	id := "thumb_" + string(rune('a'+f.saved))
	return &asset.Thumbnail{ID: id, URL: "/thumbnails/" + id + ".png"}, nil
}

func (f *fakeThumbs) Delete(id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func pieSpec(freqs string) diagram.Spec {
	return diagram.Spec{
		Tool:       diagram.ToolPieChart,
		Parameters: json.RawMessage(`{"labels":["a","b"],"frequencies":` + freqs + `}`),
	}
}

func TestServiceLifecycle(t *testing.T) {
	thumbs := &fakeThumbs{}
	s := NewService(newMemStore(), thumbs, engine.Options{})
	ctx := context.Background()

	d, err := s.Create(ctx, "user_a", "  Favourite fruit ", pieSpec("[1,2]"))
	require.NoError(t, err)
	assert.Equal(t, "Favourite fruit", d.Title)
	assert.Regexp(t, `^dgm_`, d.ID)
	assert.Equal(t, "/thumbnails/thumb_b.png", d.ThumbnailURL)

	_, err = s.Get(ctx, d.ID, "user_b")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = s.Get(ctx, "dgm_01h455vb4pex5vsknk084sn02q", "user_a")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, "not-an-id", "user_a")
	assert.ErrorIs(t, err, ErrNotFound)

	// same structure, new title: thumbnail kept
	d2, err := s.Update(ctx, d.ID, "user_a", "Fruit", diagram.Spec{
		Tool:       diagram.ToolPieChart,
		Parameters: json.RawMessage(`{ "frequencies":[1,2], "labels":["a","b"] }`),
	})
	require.NoError(t, err)
	assert.Equal(t, d.ThumbnailURL, d2.ThumbnailURL)
	assert.Equal(t, 1, thumbs.saved)

	// new data: thumbnail redrawn and the old one dropped
	d3, err := s.Update(ctx, d.ID, "user_a", "Fruit", pieSpec("[2,2]"))
	require.NoError(t, err)
	assert.NotEqual(t, d.ThumbnailURL, d3.ThumbnailURL)
	assert.Equal(t, []string{"thumb_b"}, thumbs.deleted)

	r, err := s.Render(ctx, d.ID, "user_a")
	require.NoError(t, err)
	assert.Len(t, r.ByRole("sector"), 2)

	list, err := s.List(ctx, "user_a")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.Delete(ctx, d.ID, "user_a"))
	assert.Equal(t, []string{"thumb_b", "thumb_c"}, thumbs.deleted)
	_, err = s.Get(ctx, d.ID, "user_a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceRejectsBrokenSpecs(t *testing.T) {
	s := NewService(newMemStore(), nil, engine.Options{})
	ctx := context.Background()

	_, err := s.Create(ctx, "user_a", "Bad", pieSpec("[1,-2]"))
	var re *diagram.RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, diagram.KindNegativeMeasure, re.Kind)

	_, err = s.Create(ctx, "user_a", "   ", pieSpec("[1,2]"))
	assert.ErrorIs(t, err, ErrNoTitle)

	list, err := s.List(ctx, "user_a")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestThumbnailFailureDoesNotBlockSave(t *testing.T) {
	s := NewService(newMemStore(), &fakeThumbs{fail: true}, engine.Options{})
	d, err := s.Create(context.Background(), "user_a", "No preview", pieSpec("[1,2]"))
	require.NoError(t, err)
	assert.Empty(t, d.ThumbnailURL)
}

func newRouter(s *Service, userID string) *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/diagrams").Subrouter()
	api.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), auth.Principal{AuthorID: userID, Scopes: []string{auth.ScopeLibrary}})))
		})
	})
	NewHandler(s).Routes(api)
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func TestHandlerCRUD(t *testing.T) {
	s := NewService(newMemStore(), nil, engine.Options{})
	owner := newRouter(s, "user_a")
	other := newRouter(s, "user_b")

	rec := do(t, owner, http.MethodPost, "/api/diagrams", saveRequest{Title: "Pie", Spec: pieSpec("[1,2]")})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var d Diagram
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))

	rec = do(t, owner, http.MethodGet, "/api/diagrams", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var list []Diagram
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = do(t, other, http.MethodGet, "/api/diagrams/"+d.ID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, owner, http.MethodGet, "/api/diagrams/"+d.ID+"/render?format=svg", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `class="sector"`)

	rec = do(t, owner, http.MethodGet, "/api/diagrams/"+d.ID+"/render?format=gif", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, owner, http.MethodPut, "/api/diagrams/"+d.ID, saveRequest{Title: "Pie", Spec: pieSpec("[]")})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body struct {
		Detail diagram.RenderError `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, diagram.ToolPieChart, body.Detail.Tool)

	rec = do(t, owner, http.MethodDelete, "/api/diagrams/"+d.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, owner, http.MethodGet, "/api/diagrams/"+d.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, owner, http.MethodPost, "/api/diagrams", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
