package embedding

import (
	"context"
	"math"
)

// MockProvider generates deterministic embeddings for tests.
type MockProvider struct {
	dimension int
	// Err, when set, is returned by every call. Lets tests exercise the
	// degraded retrieval path.
	Err error
}

// NewMockProvider creates a mock provider with the given dimension.
func NewMockProvider(dimension int) *MockProvider {
	if dimension <= 0 {
		dimension = 768
	}
	return &MockProvider{dimension: dimension}
}

// EmbedDocuments generates hash-based embeddings, one per text.
func (m *MockProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if m.Err != nil {
		return nil, m.Err
	}

	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, m.dimension)
		for j, r := range text {
			v[j%m.dimension] += float32(r) / 1000.0
		}
		embeddings[i] = normalize(v)
	}
	return embeddings, nil
}

// EmbedQuery generates a hash-based embedding for one text.
func (m *MockProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if m.Err != nil {
		return nil, m.Err
	}

	embeddings, err := m.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// Model returns the mock model name.
func (m *MockProvider) Model() string {
	return "mock-embedding-model"
}

// Dimension returns the embedding dimension.
func (m *MockProvider) Dimension() int {
	return m.dimension
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(1.0 / math.Sqrt(sum))
	for i := range v {
		v[i] *= norm
	}
	return v
}

var _ Provider = (*MockProvider)(nil)
