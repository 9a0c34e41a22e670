package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/loresearch/lore-search/internal/pkg/errors"
)

// DefaultGraphQLURL is the public catalog endpoint.
const DefaultGraphQLURL = "https://rickandmortyapi.com/graphql"

// Client executes GraphQL queries against the catalog API.
type Client struct {
	url    string
	client *http.Client
}

// NewClient creates a catalog client. An empty URL falls back to the public
// endpoint.
func NewClient(url string, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultGraphQLURL
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

// Execute runs a GraphQL query and decodes the data payload into out.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return apperrors.InternalError("encoding graphql request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return apperrors.InternalError("creating graphql request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return apperrors.ExternalServiceError("catalog request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Read a little of the body for diagnostics
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return apperrors.ExternalServiceError(
			fmt.Sprintf("catalog returned status %d", resp.StatusCode), nil).
			WithDetail("body", string(snippet))
	}

	var gqlResp graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&gqlResp); err != nil {
		return apperrors.ExternalServiceError("decoding catalog response", err)
	}

	if len(gqlResp.Errors) > 0 {
		messages := make([]string, len(gqlResp.Errors))
		for i, e := range gqlResp.Errors {
			messages[i] = e.Message
		}
		msg := strings.Join(messages, "; ")
		if isNotFoundMessage(msg) {
			return apperrors.NotFoundError("catalog entity")
		}
		return apperrors.ExternalServiceError("catalog query failed: "+msg, nil)
	}

	if out != nil {
		if err := json.Unmarshal(gqlResp.Data, out); err != nil {
			return apperrors.ExternalServiceError("decoding catalog data", err)
		}
	}

	return nil
}

// isNotFoundMessage matches the catalog's "404: Not Found" style errors for
// unknown IDs so enrichment can degrade instead of failing.
func isNotFoundMessage(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "not found") || strings.Contains(lower, "404")
}
