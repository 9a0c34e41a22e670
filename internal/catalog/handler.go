package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	apperrors "github.com/loresearch/lore-search/internal/pkg/errors"
)

// Handler exposes the catalog proxy endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a catalog handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers catalog proxy routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/characters", h.handlePage(func(ctx context.Context, page int) (any, error) {
		return h.svc.CharactersPage(ctx, page)
	}))
	mux.HandleFunc("GET /v1/characters/{id}", h.handleByID(func(ctx context.Context, id int) (any, error) {
		return h.svc.Character(ctx, id)
	}))

	mux.HandleFunc("GET /v1/locations", h.handlePage(func(ctx context.Context, page int) (any, error) {
		return h.svc.LocationsPage(ctx, page)
	}))
	mux.HandleFunc("GET /v1/locations/{id}", h.handleByID(func(ctx context.Context, id int) (any, error) {
		return h.svc.Location(ctx, id)
	}))

	mux.HandleFunc("GET /v1/episodes", h.handlePage(func(ctx context.Context, page int) (any, error) {
		return h.svc.EpisodesPage(ctx, page)
	}))
	mux.HandleFunc("GET /v1/episodes/{id}", h.handleByID(func(ctx context.Context, id int) (any, error) {
		return h.svc.Episode(ctx, id)
	}))
}

func (h *Handler) handlePage(fetch func(ctx context.Context, page int) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := 1
		if raw := r.URL.Query().Get("page"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				apperrors.WriteError(w, apperrors.InvalidRequestError("page must be a positive integer"))
				return
			}
			page = parsed
		}

		result, err := fetch(r.Context(), page)
		if err != nil {
			apperrors.WriteError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func (h *Handler) handleByID(fetch func(ctx context.Context, id int) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(r.PathValue("id"))
		if err != nil || id < 1 {
			apperrors.WriteError(w, apperrors.InvalidRequestError("id must be a positive integer"))
			return
		}

		result, err := fetch(r.Context(), id)
		if err != nil {
			apperrors.WriteError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
