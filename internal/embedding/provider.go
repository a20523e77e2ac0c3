// Package embedding provides query and document embedding via Google models.
//
// Two backends are supported: Vertex AI (the enterprise path, authenticated
// with an OAuth access token) and the Generative Language API (AI Studio key
// path). The backend is selected once at startup from configuration and never
// branched on per request.
package embedding

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Provider generates embeddings for documents and queries.
type Provider interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Model() string
	Dimension() int
}

// Config holds embedding provider configuration.
type Config struct {
	Provider  string // "vertex" (default) or "genai"/"google"
	Model     string
	Dimension int
	Timeout   time.Duration
	BaseURL   string // override for tests; defaults depend on the backend

	// Vertex settings.
	Project     string
	Location    string
	AccessToken string

	// GenAI settings.
	APIKey string
}

// New selects and constructs the configured backend. Unsupported provider
// names and missing credentials are startup errors.
func New(cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "vertex":
		return newVertexProvider(cfg)
	case "genai", "google":
		return newGenAIProvider(cfg)
	default:
		return nil, fmt.Errorf("unsupported embeddings provider: %s", cfg.Provider)
	}
}
