package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SelectsBackend(t *testing.T) {
	p, err := New(Config{Provider: "vertex", Project: "shop-prod"})
	require.NoError(t, err)
	assert.IsType(t, &vertexProvider{}, p)

	p, err = New(Config{Provider: "genai", APIKey: "ai-key"})
	require.NoError(t, err)
	assert.IsType(t, &genAIProvider{}, p)

	// "google" is an alias for the AI Studio key path.
	p, err = New(Config{Provider: "google", APIKey: "ai-key"})
	require.NoError(t, err)
	assert.IsType(t, &genAIProvider{}, p)

	// Default is Vertex.
	p, err = New(Config{Project: "shop-prod"})
	require.NoError(t, err)
	assert.IsType(t, &vertexProvider{}, p)
}

func TestNew_FailsFastOnMissingCredentials(t *testing.T) {
	_, err := New(Config{Provider: "vertex"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_CLOUD_PROJECT")

	_, err = New(Config{Provider: "genai"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_API_KEY")

	_, err = New(Config{Provider: "bedrock"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}

func TestGenAIProvider_EmbedDocuments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "batchEmbedContents")
		assert.Equal(t, "ai-key", r.URL.Query().Get("key"))

		var req genAIBatchEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Requests, 2)
		assert.Equal(t, "models/embedding-001", req.Requests[0].Model)

		w.Write([]byte(`{"embeddings": [{"values": [0.1, 0.2]}, {"values": [0.3, 0.4]}]}`))
	}))
	defer srv.Close()

	p, err := New(Config{Provider: "genai", APIKey: "ai-key", BaseURL: srv.URL})
	require.NoError(t, err)

	got, err := p.EmbedDocuments(context.Background(), []string{"red shoes", "blue shirt"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []float32{0.1, 0.2}, got[0])
	assert.Equal(t, []float32{0.3, 0.4}, got[1])
}

func TestGenAIProvider_EmbedQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "embedContent")
		w.Write([]byte(`{"embedding": {"values": [0.5, 0.6]}}`))
	}))
	defer srv.Close()

	p, err := New(Config{Provider: "genai", APIKey: "ai-key", BaseURL: srv.URL})
	require.NoError(t, err)

	got, err := p.EmbedQuery(context.Background(), "show me sneakers")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.6}, got)
}

func TestVertexProvider_EmbedDocuments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, ":predict")
		assert.Equal(t, "Bearer oauth-token", r.Header.Get("Authorization"))

		var req vertexPredictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Instances, 1)
		assert.Equal(t, "red shoes", req.Instances[0].Content)

		w.Write([]byte(`{"predictions": [{"embeddings": {"values": [0.7, 0.8]}}]}`))
	}))
	defer srv.Close()

	p, err := New(Config{
		Provider:    "vertex",
		Project:     "shop-prod",
		AccessToken: "oauth-token",
		BaseURL:     srv.URL + "/v1/models/text-embedding-004",
	})
	require.NoError(t, err)

	got, err := p.EmbedDocuments(context.Background(), []string{"red shoes"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []float32{0.7, 0.8}, got[0])
}

func TestMockProvider_Deterministic(t *testing.T) {
	m := NewMockProvider(8)

	a, err := m.EmbedQuery(context.Background(), "vans era")
	require.NoError(t, err)
	b, err := m.EmbedQuery(context.Background(), "vans era")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 8)
}
