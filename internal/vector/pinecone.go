// Package vector provides a Pinecone REST client for the product similarity index.
package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SearchHit is one ranked match from the similarity index. Content carries
// the indexed text (the product description); Metadata is a loosely typed
// projection of the product fields that were attached at sync time.
type SearchHit struct {
	Content  string
	Metadata map[string]any
}

// Vector is an embedding with its ID and metadata, ready to upsert.
type Vector struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ContentKey is the metadata key holding the indexed text. Matches the text
// key the index was originally populated with.
const ContentKey = "description"

const defaultControlURL = "https://api.pinecone.io"

// Client talks to the Pinecone control plane (index management).
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Config holds Pinecone client configuration.
type Config struct {
	APIKey  string
	BaseURL string // Default: https://api.pinecone.io
	Cloud   string // Serverless cloud, e.g. "aws"
	Region  string // Serverless region, e.g. "us-east-1"
	Timeout time.Duration
}

// NewClient creates a new control-plane client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("pinecone API key is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultControlURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
	}, nil
}

// indexDescription is the control-plane view of an index.
type indexDescription struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
	Host      string `json:"host"`
	Status    struct {
		Ready bool   `json:"ready"`
		State string `json:"state"`
	} `json:"status"`
}

type indexList struct {
	Indexes []indexDescription `json:"indexes"`
}

type createIndexRequest struct {
	Name      string    `json:"name"`
	Dimension int       `json:"dimension"`
	Metric    string    `json:"metric"`
	Spec      indexSpec `json:"spec"`
}

type indexSpec struct {
	Serverless serverlessSpec `json:"serverless"`
}

type serverlessSpec struct {
	Cloud  string `json:"cloud"`
	Region string `json:"region"`
}

// Index returns a data-plane handle for an existing index.
func (c *Client) Index(ctx context.Context, name string) (*Index, error) {
	desc, err := c.describeIndex(ctx, name)
	if err != nil {
		return nil, err
	}
	return c.indexFromHost(desc.Host), nil
}

// EnsureIndex returns a data-plane handle for the named index, creating a
// serverless index with the given dimension and cosine metric if it does not
// exist yet. It blocks until the index reports ready and verifies that the
// existing dimension matches the embedding model's output.
func (c *Client) EnsureIndex(ctx context.Context, name string, dimension int, cloud, region string) (*Index, error) {
	exists, err := c.indexExists(ctx, name)
	if err != nil {
		return nil, err
	}

	if !exists {
		req := createIndexRequest{
			Name:      name,
			Dimension: dimension,
			Metric:    "cosine",
			Spec:      indexSpec{Serverless: serverlessSpec{Cloud: cloud, Region: region}},
		}
		if err := c.do(ctx, http.MethodPost, c.baseURL+"/indexes", req, nil); err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
	}

	desc, err := c.waitReady(ctx, name)
	if err != nil {
		return nil, err
	}

	if desc.Dimension != dimension {
		return nil, fmt.Errorf(
			"index %q has dimension %d but the embedding model outputs %d; recreate the index with the correct dimension",
			name, desc.Dimension, dimension,
		)
	}

	return c.indexFromHost(desc.Host), nil
}

func (c *Client) indexExists(ctx context.Context, name string) (bool, error) {
	var list indexList
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/indexes", nil, &list); err != nil {
		return false, fmt.Errorf("list indexes: %w", err)
	}
	for _, idx := range list.Indexes {
		if idx.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) describeIndex(ctx context.Context, name string) (*indexDescription, error) {
	var desc indexDescription
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/indexes/"+name, nil, &desc); err != nil {
		return nil, fmt.Errorf("describe index %q: %w", name, err)
	}
	return &desc, nil
}

// waitReady polls until the index status reports ready.
func (c *Client) waitReady(ctx context.Context, name string) (*indexDescription, error) {
	for {
		desc, err := c.describeIndex(ctx, name)
		if err != nil {
			return nil, err
		}
		if desc.Status.Ready {
			return desc, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Second):
		}
	}
}

func (c *Client) indexFromHost(host string) *Index {
	baseURL := host
	if baseURL != "" && !hasScheme(baseURL) {
		baseURL = "https://" + baseURL
	}
	return &Index{
		httpClient: c.httpClient,
		baseURL:    baseURL,
		apiKey:     c.apiKey,
	}
}

func hasScheme(s string) bool {
	return len(s) > 8 && (s[:7] == "http://" || s[:8] == "https://")
}

// Index talks to the Pinecone data plane of a single index.
type Index struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewIndex creates a data-plane handle directly from a host URL. Used by
// tests and by deployments that pin the index host.
func NewIndex(host, apiKey string, timeout time.Duration) *Index {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if host != "" && !hasScheme(host) {
		host = "https://" + host
	}
	return &Index{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    host,
		apiKey:     apiKey,
	}
}

type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	Namespace       string    `json:"namespace,omitempty"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

type queryResponse struct {
	Matches []struct {
		ID       string         `json:"id"`
		Score    float64        `json:"score"`
		Metadata map[string]any `json:"metadata"`
	} `json:"matches"`
}

// Query returns the top-K hits for the given query embedding, in rank order.
func (i *Index) Query(ctx context.Context, vector []float32, topK int, namespace string) ([]SearchHit, error) {
	req := queryRequest{
		Vector:          vector,
		TopK:            topK,
		Namespace:       namespace,
		IncludeMetadata: true,
	}

	var resp queryResponse
	if err := i.do(ctx, i.baseURL+"/query", req, &resp); err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	hits := make([]SearchHit, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		content := ""
		if s, ok := m.Metadata[ContentKey].(string); ok {
			content = s
		}
		hits = append(hits, SearchHit{Content: content, Metadata: m.Metadata})
	}
	return hits, nil
}

type upsertRequest struct {
	Vectors   []Vector `json:"vectors"`
	Namespace string   `json:"namespace,omitempty"`
}

// Upsert writes vectors into the index.
func (i *Index) Upsert(ctx context.Context, vectors []Vector, namespace string) error {
	if len(vectors) == 0 {
		return nil
	}

	req := upsertRequest{Vectors: vectors, Namespace: namespace}
	if err := i.do(ctx, i.baseURL+"/vectors/upsert", req, nil); err != nil {
		return fmt.Errorf("upsert vectors: %w", err)
	}
	return nil
}

func (i *Index) do(ctx context.Context, url string, body, out any) error {
	return doJSON(ctx, i.httpClient, http.MethodPost, url, i.apiKey, body, out)
}

func (c *Client) do(ctx context.Context, method, url string, body, out any) error {
	return doJSON(ctx, c.httpClient, method, url, c.apiKey, body, out)
}

// doJSON performs a JSON request with the Pinecone API key header.
func doJSON(ctx context.Context, client *http.Client, method, url, apiKey string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Api-Key", apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
