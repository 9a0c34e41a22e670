package eval

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newEvalServer(t *testing.T) *httptest.Server {
	t.Helper()

	svc := NewService(nil, nil, nil, nil)
	handler := NewHandler(svc, nil)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHandleBackstoryInlineCharacter(t *testing.T) {
	srv := newEvalServer(t)

	body := `{
		"generated_output": "Rick Sanchez is a Human who is Alive. He was born long ago. Now he drinks.",
		"character": {
			"id": "1", "name": "Rick Sanchez", "status": "Alive", "species": "Human",
			"gender": "Male",
			"origin": {"name": "Earth (C-137)", "dimension": "Dimension C-137"},
			"location": {"name": "Citadel of Ricks", "dimension": "unknown"}
		}
	}`

	resp, err := http.Post(srv.URL+"/v1/evaluate/backstory", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	overall, ok := result.EvaluationMetrics[MetricOverallScore]
	if !ok {
		t.Fatal("response missing overall_score")
	}
	if overall < 0 || overall > 1 {
		t.Errorf("overall_score = %v, want [0,1]", overall)
	}
	if _, ok := result.EvaluationMetrics[MetricFactualConsistency]; !ok {
		t.Error("response missing factual_consistency")
	}
}

func TestHandleBackstoryMissingGenerated(t *testing.T) {
	srv := newEvalServer(t)

	resp, err := http.Post(srv.URL+"/v1/evaluate/backstory", "application/json",
		strings.NewReader(`{"character_id": 1}`))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandleBackstoryMissingCharacter(t *testing.T) {
	srv := newEvalServer(t)

	resp, err := http.Post(srv.URL+"/v1/evaluate/backstory", "application/json",
		strings.NewReader(`{"generated_output": "some text"}`))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandleStoryInlineLocation(t *testing.T) {
	srv := newEvalServer(t)

	body := `{
		"generated_output": "An adventure began at the Citadel of Ricks. Rick Sanchez fought and escaped. Then Morty Smith discovered a portal.",
		"location": {
			"id": "3", "name": "Citadel of Ricks", "type": "Space station", "dimension": "unknown",
			"residents": [
				{"id": "1", "name": "Rick Sanchez", "status": "Alive", "species": "Human"},
				{"id": "2", "name": "Morty Smith", "status": "Alive", "species": "Human"}
			]
		}
	}`

	resp, err := http.Post(srv.URL+"/v1/evaluate/story", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	if got := result.EvaluationMetrics[MetricResidentRelevance]; got != 1.0 {
		t.Errorf("resident_relevance = %v, want 1.0 with two residents mentioned", got)
	}
}

func TestHandleStoryInvalidJSON(t *testing.T) {
	srv := newEvalServer(t)

	resp, err := http.Post(srv.URL+"/v1/evaluate/story", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
