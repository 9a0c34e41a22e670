package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "github.com/loresearch/lore-search/internal/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *AzureClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewAzureClient(Options{
		Endpoint:            srv.URL,
		APIKey:              "test-key",
		CompletionDeploy:    "gpt-4o",
		EmbeddingDeploy:     "text-embedding-3-small",
		EmbeddingDimensions: 4,
	}, nil)
	if err != nil {
		t.Fatalf("NewAzureClient() error = %v", err)
	}
	return client
}

func TestNewAzureClientValidation(t *testing.T) {
	if _, err := NewAzureClient(Options{APIKey: "k"}, nil); !apperrors.IsValidation(err) {
		t.Errorf("missing endpoint error = %v, want validation", err)
	}
	if _, err := NewAzureClient(Options{Endpoint: "https://example.openai.azure.com"}, nil); !apperrors.IsValidation(err) {
		t.Errorf("missing API key error = %v, want validation", err)
	}
}

func TestComplete(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("api-key")
		json.NewDecoder(r.Body).Decode(&gotBody)

		json.NewEncoder(w).Encode(map[string]any{
			"model": "gpt-4o",
			"choices": []map[string]any{{
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": "a fine story"},
			}},
			"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		})
	})

	resp, err := client.Complete(context.Background(), "You judge stories.", "Judge this.",
		CompletionOptions{Temperature: 0.2, MaxTokens: 256, JSONResponse: true})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if resp.Text != "a fine story" {
		t.Errorf("Text = %q", resp.Text)
	}
	if resp.FinishReason != "stop" || resp.Usage.TotalTokens != 15 {
		t.Errorf("resp = %+v", resp)
	}
	if gotPath != "/openai/deployments/gpt-4o/chat/completions" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("api-key header = %q", gotKey)
	}
	if rf, ok := gotBody["response_format"].(map[string]any); !ok || rf["type"] != "json_object" {
		t.Errorf("response_format = %v", gotBody["response_format"])
	}
	msgs, _ := gotBody["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("messages = %v", msgs)
	}
}

func TestCompleteNoChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})

	_, err := client.Complete(context.Background(), "s", "u", CompletionOptions{})
	if err == nil || !strings.Contains(err.Error(), "no choices") {
		t.Errorf("Complete() error = %v, want no choices", err)
	}
}

func TestCompleteProviderFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":"429"}}`, http.StatusTooManyRequests)
	})

	_, err := client.Complete(context.Background(), "s", "u", CompletionOptions{})
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeProvider {
		t.Errorf("Complete() error = %v, want provider error", err)
	}
}

func TestEmbed(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)

		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float32{0.1, 0.2, 0.3, 0.4}}},
		})
	})

	vec, err := client.Embed(context.Background(), "entity_type: character Character Name: Rick Sanchez")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vec) != 4 || vec[0] != 0.1 {
		t.Errorf("Embed() = %v", vec)
	}
	if gotPath != "/openai/deployments/text-embedding-3-small/embeddings" {
		t.Errorf("path = %q", gotPath)
	}
	if dims, _ := gotBody["dimensions"].(float64); dims != 4 {
		t.Errorf("dimensions = %v", gotBody["dimensions"])
	}
}

func TestEmbedEmptyInput(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty input")
	})

	if _, err := client.Embed(context.Background(), "  \n "); !apperrors.IsValidation(err) {
		t.Errorf("Embed(blank) error = %v, want validation", err)
	}
}
