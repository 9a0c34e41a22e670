package notes

import (
	"encoding/json"
	"net/http"
	"strconv"

	apperrors "github.com/loresearch/lore-search/internal/pkg/errors"
)

// Handler exposes CRUD endpoints for character notes.
type Handler struct {
	store *Store
}

// NewHandler creates a notes handler.
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes registers notes routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/notes", h.handleCreate)
	mux.HandleFunc("GET /v1/notes/character/{character_id}", h.handleListByCharacter)
	mux.HandleFunc("GET /v1/notes/{note_id}", h.handleGet)
	mux.HandleFunc("PUT /v1/notes/{note_id}", h.handleUpdate)
	mux.HandleFunc("DELETE /v1/notes/{note_id}", h.handleDelete)
}

type createRequest struct {
	CharacterID int    `json:"character_id"`
	Content     string `json:"content"`
}

type updateRequest struct {
	Content string `json:"content"`
}

type listResponse struct {
	Notes []Note `json:"notes"`
	Total int    `json:"total"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, apperrors.InvalidRequestError("invalid JSON body"))
		return
	}

	note, err := h.store.Create(r.Context(), req.CharacterID, req.Content)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, note)
}

func (h *Handler) handleListByCharacter(w http.ResponseWriter, r *http.Request) {
	characterID, err := strconv.Atoi(r.PathValue("character_id"))
	if err != nil || characterID < 1 {
		apperrors.WriteError(w, apperrors.InvalidRequestError("character_id must be a positive integer"))
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			apperrors.WriteError(w, apperrors.InvalidRequestError("limit must be between 1 and 100"))
			return
		}
		limit = parsed
	}

	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			apperrors.WriteError(w, apperrors.InvalidRequestError("offset must be a non-negative integer"))
			return
		}
		offset = parsed
	}

	notes, total, err := h.store.ListByCharacter(r.Context(), characterID, limit, offset)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	if notes == nil {
		notes = []Note{}
	}

	writeJSON(w, http.StatusOK, listResponse{Notes: notes, Total: total})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	note, err := h.store.Get(r.Context(), id)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, note)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, apperrors.InvalidRequestError("invalid JSON body"))
		return
	}

	note, err := h.store.Update(r.Context(), id, req.Content)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, note)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		apperrors.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func noteID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("note_id"), 10, 64)
	if err != nil || id < 1 {
		apperrors.WriteError(w, apperrors.InvalidRequestError("note_id must be a positive integer"))
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
