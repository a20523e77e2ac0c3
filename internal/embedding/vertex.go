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

// vertexProvider calls the Vertex AI prediction API. Authentication uses a
// short-lived OAuth access token supplied through configuration; refreshing
// the token is the deployment's concern.
type vertexProvider struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	model       string
	dimension   int
}

func newVertexProvider(cfg Config) (*vertexProvider, error) {
	if cfg.Project == "" {
		return nil, fmt.Errorf("GOOGLE_CLOUD_PROJECT is not set")
	}

	location := cfg.Location
	if location == "" {
		location = "us-central1"
	}

	model := cfg.Model
	if model == "" {
		model = "text-embedding-004"
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
		baseURL = fmt.Sprintf(
			"https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/publishers/google/models/%s",
			location, cfg.Project, location, model,
		)
	}

	return &vertexProvider{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		accessToken: cfg.AccessToken,
		model:       model,
		dimension:   dimension,
	}, nil
}

type vertexInstance struct {
	Content string `json:"content"`
}

type vertexPredictRequest struct {
	Instances []vertexInstance `json:"instances"`
}

type vertexPredictResponse struct {
	Predictions []struct {
		Embeddings struct {
			Values []float32 `json:"values"`
		} `json:"embeddings"`
	} `json:"predictions"`
}

// EmbedDocuments embeds a batch of texts with one predict call.
func (p *vertexProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	req := vertexPredictRequest{Instances: make([]vertexInstance, 0, len(texts))}
	for _, text := range texts {
		req.Instances = append(req.Instances, vertexInstance{Content: text})
	}

	jsonBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+":predict", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.accessToken)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var predictResp vertexPredictResponse
	if err := json.Unmarshal(respBody, &predictResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if len(predictResp.Predictions) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(predictResp.Predictions))
	}

	embeddings := make([][]float32, len(texts))
	for i, pred := range predictResp.Predictions {
		embeddings[i] = pred.Embeddings.Values
	}
	return embeddings, nil
}

// EmbedQuery embeds a single query text.
func (p *vertexProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := p.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return embeddings[0], nil
}

// Model returns the model being used.
func (p *vertexProvider) Model() string {
	return p.model
}

// Dimension returns the embedding dimension.
func (p *vertexProvider) Dimension() int {
	return p.dimension
}

var _ Provider = (*vertexProvider)(nil)
