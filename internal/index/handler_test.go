package index

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/loresearch/lore-search/internal/catalog"
)

func newIndexServer(t *testing.T) (*httptest.Server, *MemoryStore) {
	t.Helper()

	store := NewMemoryStore()
	embedder := &fakeEmbedder{def: []float32{1, 0}}
	catalogSvc := newTestCatalog(t, map[string]string{"character(id:": rickCharacterJSON})

	svc := NewService(store, embedder, catalogSvc, nil, nil, Options{})
	handler := NewHandler(svc)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, store
}

func TestHandleIndexThenSearch(t *testing.T) {
	srv, store := newIndexServer(t)

	resp, err := http.Post(srv.URL+"/v1/search/index", "application/json",
		strings.NewReader(`{"id": 1, "type": "character", "additional_context": "genius inventor"}`))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("index status = %d, want 200", resp.StatusCode)
	}

	var indexed indexResponse
	if err := json.NewDecoder(resp.Body).Decode(&indexed); err != nil {
		t.Fatalf("decoding index response: %v", err)
	}
	if indexed.EntityID != 1 || indexed.EntityType != catalog.EntityCharacter {
		t.Errorf("index response = %+v", indexed)
	}
	if indexed.ID == "" {
		t.Error("index response missing point ID")
	}
	if store.Len() != 1 {
		t.Errorf("store.Len() = %d", store.Len())
	}

	searchResp, err := http.Get(srv.URL + "/v1/search?query=Rick&limit=5")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer searchResp.Body.Close()

	if searchResp.StatusCode != http.StatusOK {
		t.Fatalf("search status = %d, want 200", searchResp.StatusCode)
	}

	var result SearchResponse
	if err := json.NewDecoder(searchResp.Body).Decode(&result); err != nil {
		t.Fatalf("decoding search response: %v", err)
	}
	if result.Info.Query != "Rick" || result.Info.TotalResults != 1 {
		t.Errorf("info = %+v", result.Info)
	}
}

func TestHandleSearchMissingQuery(t *testing.T) {
	srv, _ := newIndexServer(t)

	resp, err := http.Get(srv.URL + "/v1/search")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandleIndexInvalidType(t *testing.T) {
	srv, _ := newIndexServer(t)

	resp, err := http.Post(srv.URL+"/v1/search/index", "application/json",
		strings.NewReader(`{"id": 1, "type": "planet"}`))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
