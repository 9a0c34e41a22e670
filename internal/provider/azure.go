// Package provider implements the Azure OpenAI chat completion and embedding
// client used by evaluation and indexing.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/loresearch/lore-search/internal/pkg/errors"
	"github.com/loresearch/lore-search/internal/pkg/logger"
)

// Options configures an Azure OpenAI client.
type Options struct {
	Endpoint            string
	APIKey              string
	APIVersion          string
	CompletionDeploy    string
	EmbeddingDeploy     string
	EmbeddingDimensions int
	Timeout             time.Duration
}

// AzureClient talks to the Azure OpenAI REST API.
type AzureClient struct {
	opts   Options
	client *http.Client
	log    *logger.Logger
}

// NewAzureClient validates the options and creates a client. Missing endpoint
// or API key is a configuration error, never a silent fallback.
func NewAzureClient(opts Options, log *logger.Logger) (*AzureClient, error) {
	if opts.Endpoint == "" {
		return nil, apperrors.ValidationError("provider endpoint is required")
	}
	if opts.APIKey == "" {
		return nil, apperrors.ValidationError("provider API key is required")
	}
	if opts.APIVersion == "" {
		opts.APIVersion = "2024-02-01"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	if log == nil {
		log = logger.Default()
	}

	return &AzureClient{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
		log:    log,
	}, nil
}

// CompletionOptions control a single chat completion call.
type CompletionOptions struct {
	Temperature  float64
	MaxTokens    int
	JSONResponse bool
}

// Usage reports token consumption for one call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompletionResponse is the result of a chat completion call.
type CompletionResponse struct {
	Text         string `json:"text"`
	Model        string `json:"model"`
	FinishReason string `json:"finish_reason"`
	Usage        Usage  `json:"usage"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		FinishReason string      `json:"finish_reason"`
		Message      chatMessage `json:"message"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

// Complete runs a chat completion with a system and a user message.
func (c *AzureClient) Complete(ctx context.Context, system, user string, opts CompletionOptions) (*CompletionResponse, error) {
	reqBody := chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
	if opts.JSONResponse {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	var resp chatResponse
	if err := c.post(ctx, c.opts.CompletionDeploy, "chat/completions", reqBody, &resp); err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, apperrors.ProviderError("completion returned no choices", nil)
	}

	choice := resp.Choices[0]
	c.log.Debug("completion finished",
		"model", resp.Model,
		"finish_reason", choice.FinishReason,
		"total_tokens", resp.Usage.TotalTokens)

	return &CompletionResponse{
		Text:         choice.Message.Content,
		Model:        resp.Model,
		FinishReason: choice.FinishReason,
		Usage:        resp.Usage,
	}, nil
}

type embeddingRequest struct {
	Input      string `json:"input"`
	Dimensions int    `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the embedding vector for a single text.
func (c *AzureClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.ValidationError("embedding input must not be empty")
	}

	reqBody := embeddingRequest{
		Input:      text,
		Dimensions: c.opts.EmbeddingDimensions,
	}

	var resp embeddingResponse
	if err := c.post(ctx, c.opts.EmbeddingDeploy, "embeddings", reqBody, &resp); err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, apperrors.ProviderError("embedding returned no data", nil)
	}

	return resp.Data[0].Embedding, nil
}

func (c *AzureClient) post(ctx context.Context, deployment, operation string, reqBody, out any) error {
	if deployment == "" {
		return apperrors.ValidationError(fmt.Sprintf("no deployment configured for %s", operation))
	}

	endpoint := fmt.Sprintf("%s/openai/deployments/%s/%s?api-version=%s",
		strings.TrimRight(c.opts.Endpoint, "/"),
		url.PathEscape(deployment),
		operation,
		url.QueryEscape(c.opts.APIVersion))

	body, err := json.Marshal(reqBody)
	if err != nil {
		return apperrors.InternalError("encoding provider request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return apperrors.InternalError("creating provider request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.opts.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return apperrors.ProviderError("provider request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return apperrors.ProviderError(
			fmt.Sprintf("provider returned status %d", resp.StatusCode), nil).
			WithDetail("body", string(snippet))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.ProviderError("decoding provider response", err)
	}

	return nil
}
