package eval

import (
	"encoding/json"
	"net/http"

	"github.com/loresearch/lore-search/internal/catalog"
	apperrors "github.com/loresearch/lore-search/internal/pkg/errors"
)

// Handler exposes the evaluation endpoints.
type Handler struct {
	svc     *Service
	catalog *catalog.Service
}

// NewHandler creates an evaluation handler.
func NewHandler(svc *Service, catalogSvc *catalog.Service) *Handler {
	return &Handler{svc: svc, catalog: catalogSvc}
}

// RegisterRoutes registers evaluation routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/evaluate/backstory", h.handleBackstory)
	mux.HandleFunc("POST /v1/evaluate/story", h.handleStory)
}

type backstoryRequest struct {
	GeneratedOutput          string             `json:"generated_output"`
	ExpectedOutput           string             `json:"expected_output,omitempty"`
	ExpectedOutputEmbeddings []float32          `json:"expected_output_embeddings,omitempty"`
	CharacterID              int                `json:"character_id,omitempty"`
	Character                *catalog.Character `json:"character,omitempty"`
	Weights                  map[string]float64 `json:"weights,omitempty"`
	UseLLMJudge              bool               `json:"use_llm_judge,omitempty"`
}

func (h *Handler) handleBackstory(w http.ResponseWriter, r *http.Request) {
	var req backstoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, apperrors.InvalidRequestError("invalid JSON body"))
		return
	}
	if req.GeneratedOutput == "" {
		apperrors.WriteError(w, apperrors.ValidationError("generated_output is required"))
		return
	}

	character := req.Character
	if character == nil {
		if req.CharacterID < 1 {
			apperrors.WriteError(w, apperrors.ValidationError("character or character_id is required"))
			return
		}
		fetched, err := h.catalog.Character(r.Context(), req.CharacterID)
		if err != nil {
			apperrors.WriteError(w, err)
			return
		}
		character = fetched
	}

	evaluator, err := NewBackstoryEvaluator(character)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	h.evaluate(w, r, evaluator, Request{
		Generated:         req.GeneratedOutput,
		Expected:          req.ExpectedOutput,
		ExpectedEmbedding: req.ExpectedOutputEmbeddings,
		Weights:           req.Weights,
		UseJudge:          req.UseLLMJudge,
	})
}

type storyRequest struct {
	GeneratedOutput          string             `json:"generated_output"`
	ExpectedOutput           string             `json:"expected_output,omitempty"`
	ExpectedOutputEmbeddings []float32          `json:"expected_output_embeddings,omitempty"`
	LocationID               int                `json:"location_id,omitempty"`
	Location                 *catalog.Location  `json:"location,omitempty"`
	Weights                  map[string]float64 `json:"weights,omitempty"`
	UseLLMJudge              bool               `json:"use_llm_judge,omitempty"`
}

func (h *Handler) handleStory(w http.ResponseWriter, r *http.Request) {
	var req storyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, apperrors.InvalidRequestError("invalid JSON body"))
		return
	}
	if req.GeneratedOutput == "" {
		apperrors.WriteError(w, apperrors.ValidationError("generated_output is required"))
		return
	}

	location := req.Location
	if location == nil {
		if req.LocationID < 1 {
			apperrors.WriteError(w, apperrors.ValidationError("location or location_id is required"))
			return
		}
		fetched, err := h.catalog.Location(r.Context(), req.LocationID)
		if err != nil {
			apperrors.WriteError(w, err)
			return
		}
		location = fetched
	}

	evaluator, err := NewStoryEvaluator(location)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	h.evaluate(w, r, evaluator, Request{
		Generated:         req.GeneratedOutput,
		Expected:          req.ExpectedOutput,
		ExpectedEmbedding: req.ExpectedOutputEmbeddings,
		Weights:           req.Weights,
		UseJudge:          req.UseLLMJudge,
	})
}

func (h *Handler) evaluate(w http.ResponseWriter, r *http.Request, evaluator Evaluator, req Request) {
	result, err := h.svc.Evaluate(r.Context(), evaluator, req)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(result)
}
