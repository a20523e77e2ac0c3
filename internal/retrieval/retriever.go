// Package retrieval turns a free-text product query into a formatted context
// block grounded in the similarity index.
package retrieval

import (
	"context"

	"github.com/shopsense-ai/catalog-assistant/internal/observability"
	"github.com/shopsense-ai/catalog-assistant/internal/vector"
)

// DefaultTopK bounds the candidates fetched per query. It has to be large
// enough to serve "list all matching items" queries.
const DefaultTopK = 10

// Embedder is the slice of the embedding provider the retriever needs.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Querier is the slice of the index client the retriever needs.
type Querier interface {
	Query(ctx context.Context, vector []float32, topK int, namespace string) ([]vector.SearchHit, error)
}

// Retriever fetches top-K product hits for a query. Failures from the
// embedding provider or the index degrade to an empty result: "no relevant
// context" is always a valid outcome and must never crash the caller.
type Retriever struct {
	logger    *observability.Logger
	embedder  Embedder
	index     Querier
	namespace string
	topK      int
}

// NewRetriever creates a retriever. topK <= 0 selects DefaultTopK.
func NewRetriever(logger *observability.Logger, embedder Embedder, index Querier, namespace string, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{
		logger:    logger.WithComponent("retriever"),
		embedder:  embedder,
		index:     index,
		namespace: namespace,
		topK:      topK,
	}
}

// TopK returns the configured candidate bound.
func (r *Retriever) TopK() int {
	return r.topK
}

// Retrieve returns the top-K hits for the query, in rank order. The slice is
// empty when the upstream is unavailable or nothing matched.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) []vector.SearchHit {
	if k <= 0 {
		k = r.topK
	}

	queryVec, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).Warn().Err(err).Msg("Query embedding failed, returning no context")
		return nil
	}

	hits, err := r.index.Query(ctx, queryVec, k, r.namespace)
	if err != nil {
		r.logger.WithContext(ctx).Warn().Err(err).Msg("Index query failed, returning no context")
		return nil
	}

	return hits
}
