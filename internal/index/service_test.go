package index

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/loresearch/lore-search/internal/catalog"
	apperrors "github.com/loresearch/lore-search/internal/pkg/errors"
)

// fakeEmbedder returns canned vectors keyed by a substring of the input.
type fakeEmbedder struct {
	vectors map[string][]float32
	def     []float32
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	for key, vec := range f.vectors {
		if strings.Contains(text, key) {
			return vec, nil
		}
	}
	return f.def, nil
}

func newTestCatalog(t *testing.T, responses map[string]string) *catalog.Service {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query string `json:"query"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		for key, resp := range responses {
			if strings.Contains(req.Query, key) {
				w.Write([]byte(resp))
				return
			}
		}
		w.Write([]byte(`{"data":null,"errors":[{"message":"404: Not Found"}]}`))
	}))
	t.Cleanup(srv.Close)

	return catalog.NewService(catalog.NewClient(srv.URL, 5*time.Second), nil, nil)
}

const rickCharacterJSON = `{"data":{"character":{
	"id":"1","name":"Rick Sanchez","status":"Alive","species":"Human",
	"type":"","gender":"Male",
	"origin":{"name":"Earth (C-137)","type":"Planet","dimension":"Dimension C-137"},
	"location":{"name":"Citadel of Ricks","type":"Space station","dimension":"unknown"},
	"image":"rick.jpeg","episode":[{"name":"Pilot","air_date":"December 2, 2013"}],
	"created":"2017-11-04"}}}`

func TestIndexEntityBuildsContext(t *testing.T) {
	store := NewMemoryStore()
	embedder := &fakeEmbedder{def: []float32{1, 0}}
	catalogSvc := newTestCatalog(t, map[string]string{"character(id:": rickCharacterJSON})

	svc := NewService(store, embedder, catalogSvc, nil, nil, Options{})

	rec, err := svc.IndexEntity(context.Background(), catalog.EntityCharacter, 1, "extra notes")
	if err != nil {
		t.Fatalf("IndexEntity() error = %v", err)
	}

	if !strings.HasPrefix(rec.Context, "entity_type: character\n") {
		t.Errorf("context should start with the type tag: %q", rec.Context)
	}
	if !strings.Contains(rec.Context, "Rick Sanchez") {
		t.Errorf("context missing entity summary: %q", rec.Context)
	}
	if !strings.HasSuffix(rec.Context, "extra notes") {
		t.Errorf("context should end with the additional context: %q", rec.Context)
	}
	if store.Len() != 1 {
		t.Errorf("store.Len() = %d, want 1", store.Len())
	}
}

func TestIndexEntityNoAdditionalContext(t *testing.T) {
	store := NewMemoryStore()
	embedder := &fakeEmbedder{def: []float32{1, 0}}
	catalogSvc := newTestCatalog(t, map[string]string{"character(id:": rickCharacterJSON})

	svc := NewService(store, embedder, catalogSvc, nil, nil, Options{})

	rec, err := svc.IndexEntity(context.Background(), catalog.EntityCharacter, 1, "")
	if err != nil {
		t.Fatalf("IndexEntity() error = %v", err)
	}
	if strings.HasSuffix(rec.Context, "\n") || strings.HasSuffix(rec.Context, " ") {
		t.Errorf("context should be trimmed: %q", rec.Context)
	}
}

func TestIndexEntityValidation(t *testing.T) {
	svc := NewService(NewMemoryStore(), &fakeEmbedder{def: []float32{1}}, newTestCatalog(t, nil), nil, nil, Options{})

	if _, err := svc.IndexEntity(context.Background(), catalog.EntityCharacter, 0, ""); !apperrors.IsValidation(err) {
		t.Errorf("IndexEntity(id=0) error = %v, want validation", err)
	}
}

func TestSearchQueryRanksAndEnriches(t *testing.T) {
	store := NewMemoryStore()

	// Indexed record sits at cosine 0.9 from the query vector
	store.Upsert(context.Background(), Record{
		EntityID:   1,
		EntityType: catalog.EntityCharacter,
		Context:    "entity_type: character\nCharacter Name: Rick Sanchez",
		Embedding:  []float32{0.9, 0.4358898943540674},
	})

	embedder := &fakeEmbedder{vectors: map[string][]float32{"Rick": {1, 0}}}
	catalogSvc := newTestCatalog(t, map[string]string{"character(id:": rickCharacterJSON})

	svc := NewService(store, embedder, catalogSvc, nil, nil, Options{})

	resp, err := svc.SearchQuery(context.Background(), "Rick", 5)
	if err != nil {
		t.Fatalf("SearchQuery() error = %v", err)
	}

	if resp.Info.TotalResults != 1 || len(resp.Results) != 1 {
		t.Fatalf("results = %+v", resp)
	}

	hit := resp.Results[0]
	if math.Abs(hit.Score-0.9) > 1e-6 {
		t.Errorf("Score = %v, want ~0.9", hit.Score)
	}
	if hit.EntityID != 1 || hit.EntityType != catalog.EntityCharacter {
		t.Errorf("hit = %+v", hit)
	}

	character, ok := hit.EntityData.(*catalog.Character)
	if !ok {
		t.Fatalf("EntityData = %T, want *catalog.Character", hit.EntityData)
	}
	if character.Name != "Rick Sanchez" {
		t.Errorf("enriched name = %q", character.Name)
	}
}

func TestSearchQueryEnrichmentDegrades(t *testing.T) {
	store := NewMemoryStore()
	store.Upsert(context.Background(), Record{
		EntityID:   99999,
		EntityType: catalog.EntityCharacter,
		Embedding:  []float32{1, 0},
	})

	embedder := &fakeEmbedder{def: []float32{1, 0}}
	catalogSvc := newTestCatalog(t, nil) // every fetch returns not found

	svc := NewService(store, embedder, catalogSvc, nil, nil, Options{})

	resp, err := svc.SearchQuery(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("SearchQuery() error = %v, enrichment failure must not fail the query", err)
	}

	if len(resp.Results) != 1 {
		t.Fatalf("results = %+v", resp.Results)
	}
	payload, ok := resp.Results[0].EntityData.(map[string]any)
	if !ok || len(payload) != 0 {
		t.Errorf("EntityData = %v, want empty payload on enrichment failure", resp.Results[0].EntityData)
	}
}

func TestSearchQueryValidation(t *testing.T) {
	svc := NewService(NewMemoryStore(), &fakeEmbedder{def: []float32{1}}, newTestCatalog(t, nil), nil, nil, Options{})

	if _, err := svc.SearchQuery(context.Background(), "   ", 5); !apperrors.IsValidation(err) {
		t.Errorf("SearchQuery(blank) error = %v, want validation", err)
	}
}

func TestSearchQueryLimitClamped(t *testing.T) {
	store := NewMemoryStore()
	for i := 1; i <= 5; i++ {
		store.Upsert(context.Background(), Record{
			EntityID:   i,
			EntityType: catalog.EntityCharacter,
			Embedding:  []float32{1, 0},
		})
	}

	embedder := &fakeEmbedder{def: []float32{1, 0}}
	catalogSvc := newTestCatalog(t, map[string]string{"character(id:": rickCharacterJSON})

	svc := NewService(store, embedder, catalogSvc, nil, nil, Options{DefaultLimit: 2, MaxLimit: 3})

	// Zero limit falls back to the default
	resp, err := svc.SearchQuery(context.Background(), "q", 0)
	if err != nil {
		t.Fatalf("SearchQuery() error = %v", err)
	}
	if len(resp.Results) != 2 {
		t.Errorf("default limit: got %d results, want 2", len(resp.Results))
	}

	// Oversized limit clamps to the max
	resp, err = svc.SearchQuery(context.Background(), "q", 100)
	if err != nil {
		t.Fatalf("SearchQuery() error = %v", err)
	}
	if len(resp.Results) != 3 {
		t.Errorf("max limit: got %d results, want 3", len(resp.Results))
	}
}
