package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultGenAIBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// genAIProvider calls the Generative Language API (AI Studio key path).
type genAIProvider struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	dimension  int
}

func newGenAIProvider(cfg Config) (*genAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GOOGLE_API_KEY is not set")
	}

	model := cfg.Model
	if model == "" {
		model = "embedding-001"
	}

	dimension := cfg.Dimension
	if dimension <= 0 {
		dimension = 768
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGenAIBaseURL
	}

	return &genAIProvider{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		model:      model,
		dimension:  dimension,
	}, nil
}

type genAIPart struct {
	Text string `json:"text"`
}

type genAIContent struct {
	Parts []genAIPart `json:"parts"`
}

type genAIEmbedRequest struct {
	Model   string       `json:"model"`
	Content genAIContent `json:"content"`
}

type genAIBatchEmbedRequest struct {
	Requests []genAIEmbedRequest `json:"requests"`
}

type genAIEmbedding struct {
	Values []float32 `json:"values"`
}

type genAIBatchEmbedResponse struct {
	Embeddings []genAIEmbedding `json:"embeddings"`
}

type genAIEmbedResponse struct {
	Embedding genAIEmbedding `json:"embedding"`
}

// EmbedDocuments embeds a batch of texts with one batchEmbedContents call.
func (p *genAIProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	req := genAIBatchEmbedRequest{Requests: make([]genAIEmbedRequest, 0, len(texts))}
	for _, text := range texts {
		req.Requests = append(req.Requests, genAIEmbedRequest{
			Model:   "models/" + p.model,
			Content: genAIContent{Parts: []genAIPart{{Text: text}}},
		})
	}

	url := fmt.Sprintf("%s/models/%s:batchEmbedContents?key=%s", p.baseURL, p.model, p.apiKey)

	var resp genAIBatchEmbedResponse
	if err := p.post(ctx, url, req, &resp); err != nil {
		return nil, err
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}

	embeddings := make([][]float32, len(texts))
	for i, e := range resp.Embeddings {
		embeddings[i] = e.Values
	}
	return embeddings, nil
}

// EmbedQuery embeds a single query text.
func (p *genAIProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	req := genAIEmbedRequest{
		Model:   "models/" + p.model,
		Content: genAIContent{Parts: []genAIPart{{Text: text}}},
	}

	url := fmt.Sprintf("%s/models/%s:embedContent?key=%s", p.baseURL, p.model, p.apiKey)

	var resp genAIEmbedResponse
	if err := p.post(ctx, url, req, &resp); err != nil {
		return nil, err
	}

	if len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return resp.Embedding.Values, nil
}

// Model returns the model being used.
func (p *genAIProvider) Model() string {
	return p.model
}

// Dimension returns the embedding dimension.
func (p *genAIProvider) Dimension() int {
	return p.dimension
}

func (p *genAIProvider) post(ctx context.Context, url string, body, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

var _ Provider = (*genAIProvider)(nil)
