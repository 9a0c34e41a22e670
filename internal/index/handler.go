package index

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/loresearch/lore-search/internal/catalog"
	apperrors "github.com/loresearch/lore-search/internal/pkg/errors"
)

// Handler exposes the search and indexing endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates an index handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers search routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/search", h.handleSearch)
	mux.HandleFunc("POST /v1/search/index", h.handleIndex)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		apperrors.WriteError(w, apperrors.InvalidRequestError("query parameter is required"))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			apperrors.WriteError(w, apperrors.InvalidRequestError("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	resp, err := h.svc.SearchQuery(r.Context(), query, limit)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

type indexRequest struct {
	ID                int    `json:"id"`
	Type              string `json:"type"`
	AdditionalContext string `json:"additional_context,omitempty"`
}

type indexResponse struct {
	ID         string             `json:"id"`
	EntityID   int                `json:"entity_id"`
	EntityType catalog.EntityType `json:"entity_type"`
	Context    string             `json:"context"`
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	var req indexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, apperrors.InvalidRequestError("invalid JSON body"))
		return
	}

	entityType, err := catalog.ParseEntityType(req.Type)
	if err != nil {
		apperrors.WriteError(w, apperrors.ValidationError(err.Error()))
		return
	}

	rec, err := h.svc.IndexEntity(r.Context(), entityType, req.ID, req.AdditionalContext)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, indexResponse{
		ID:         pointID(rec.EntityType, rec.EntityID),
		EntityID:   rec.EntityID,
		EntityType: rec.EntityType,
		Context:    rec.Context,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
