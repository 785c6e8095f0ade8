package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"graph-explorer/backend/internal/graph"
	apperrors "graph-explorer/backend/pkg/errors"
	"graph-explorer/backend/pkg/logger"
)

const maxErrorBody = 512

// APIClient fetches fragments from the HTTP graph API.
type APIClient struct {
	endpoint   string
	apiKey     string
	apiToken   string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

// APIOption configures an APIClient.
type APIOption func(*APIClient)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(client *http.Client) APIOption {
	return func(c *APIClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewAPIClient creates a client for the graph API at endpoint. Every fetch is
// bounded by timeout.
func NewAPIClient(endpoint, apiKey, apiToken string, timeout time.Duration, opts ...APIOption) *APIClient {
	c := &APIClient{
		endpoint:   endpoint,
		apiKey:     apiKey,
		apiToken:   apiToken,
		timeout:    timeout,
		httpClient: &http.Client{},
		logger:     logger.With("api_client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type apiResponse struct {
	Data *struct {
		Nodes         []graph.RawNode         `json:"nodes"`
		Relationships []graph.RawRelationship `json:"relationships"`
	} `json:"data"`
}

// Fetch implements Fetcher.
func (c *APIClient) Fetch(ctx context.Context, req Request) (*graph.Fragment, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.NewTransport(c.endpoint, 0, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("X-API-Key", c.apiKey)
	}
	if c.apiToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classify("graph API request", c.endpoint, c.timeout, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("Graph API returned non-2xx status",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(snippet)),
		)
		return nil, apperrors.NewTransport(c.endpoint, resp.StatusCode, fmt.Errorf("%s", bytes.TrimSpace(snippet)))
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify("graph API response", c.endpoint, c.timeout, err)
	}

	var decoded apiResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, apperrors.NewMalformedResponse("invalid JSON", err)
	}
	if decoded.Data == nil {
		return nil, apperrors.NewMalformedResponse("missing data", nil)
	}
	if decoded.Data.Nodes == nil {
		return nil, apperrors.NewMalformedResponse("missing nodes", nil)
	}

	fragment := &graph.Fragment{
		Nodes:         decoded.Data.Nodes,
		Relationships: decoded.Data.Relationships,
	}
	if fragment.Relationships == nil {
		fragment.Relationships = []graph.RawRelationship{}
	}

	c.logger.Debug("Fetched fragment",
		zap.String("query", req.Query),
		zap.String("node_type", req.NodeType()),
		zap.Int("nodes", len(fragment.Nodes)),
		zap.Int("relationships", len(fragment.Relationships)),
		zap.Duration("latency", time.Since(start)),
	)
	return fragment, nil
}
