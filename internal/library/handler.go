package library

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/inamate/diagrams/internal/auth"
	"github.com/inamate/diagrams/internal/diagram"
	"github.com/inamate/diagrams/internal/render"
)

const maxBodySize = 1 << 20

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the CRUD endpoints on r, which must already require auth.
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("", h.List).Methods("GET")
	r.HandleFunc("", h.Create).Methods("POST")
	r.HandleFunc("/{diagramId}", h.Get).Methods("GET")
	r.HandleFunc("/{diagramId}", h.Update).Methods("PUT")
	r.HandleFunc("/{diagramId}", h.Delete).Methods("DELETE")
	r.HandleFunc("/{diagramId}/render", h.Render).Methods("GET")
}

type saveRequest struct {
	Title string       `json:"title"`
	Spec  diagram.Spec `json:"spec"`
}

func decodeSave(w http.ResponseWriter, r *http.Request) (saveRequest, bool) {
	var req saveRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return req, false
	}
	return req, true
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSave(w, r)
	if !ok {
		return
	}
	d, err := h.service.Create(r.Context(), auth.AuthorIDFromContext(r.Context()), req.Title, req.Spec)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Get(r.Context(), mux.Vars(r)["diagramId"], auth.AuthorIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ds, err := h.service.List(r.Context(), auth.AuthorIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSave(w, r)
	if !ok {
		return
	}
	d, err := h.service.Update(r.Context(), mux.Vars(r)["diagramId"], auth.AuthorIDFromContext(r.Context()), req.Title, req.Spec)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), mux.Vars(r)["diagramId"], auth.AuthorIDFromContext(r.Context())); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Render serves a saved diagram in the format named by ?format=.
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	format, err := render.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	res, err := h.service.Render(r.Context(), mux.Vars(r)["diagramId"], auth.AuthorIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	if err := render.Write(w, res, format); err != nil {
		slog.Error("write diagram failed", "error", err, "format", format)
	}
}

func handleServiceError(w http.ResponseWriter, err error) {
	var re *diagram.RenderError
	switch {
	case errors.As(err, &re):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": re.Error(), "detail": re})
	case errors.Is(err, ErrNoTitle):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	default:
		slog.Error("library error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
