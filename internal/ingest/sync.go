package ingest

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopsense-ai/catalog-assistant/internal/catalog"
	"github.com/shopsense-ai/catalog-assistant/internal/embedding"
	"github.com/shopsense-ai/catalog-assistant/internal/observability"
	"github.com/shopsense-ai/catalog-assistant/internal/pricing"
	"github.com/shopsense-ai/catalog-assistant/internal/vector"
)

// defaultBatchPause spaces out upsert batches so the sync stays under the
// embedding API's request-per-minute quota.
const defaultBatchPause = 500 * time.Millisecond

// ProductSource is the slice of the store the syncer needs.
type ProductSource interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
}

// Upserter is the slice of the index the syncer needs.
type Upserter interface {
	Upsert(ctx context.Context, vectors []vector.Vector, namespace string) error
}

// Syncer embeds every catalog product and upserts it into the similarity
// index. A full sync replaces vectors in place: vector IDs are the product
// IDs, so re-running the sync overwrites stale entries rather than
// duplicating them.
type Syncer struct {
	logger    *observability.Logger
	store     ProductSource
	embedder  embedding.Provider
	index     Upserter
	namespace string
	batchSize int

	// BatchPause is the delay between batches. Tests set it to zero.
	BatchPause time.Duration

	// OnBatch, when set, is called after each upserted batch with the number
	// of products synced so far and the total.
	OnBatch func(done, total int)
}

// NewSyncer creates a syncer over the given store, embedder and index.
func NewSyncer(logger *observability.Logger, store ProductSource, embedder embedding.Provider, index Upserter, namespace string, batchSize int) *Syncer {
	if batchSize < 1 {
		batchSize = 32
	}
	return &Syncer{
		logger:     logger.WithComponent("sync"),
		store:      store,
		embedder:   embedder,
		index:      index,
		namespace:  namespace,
		batchSize:  batchSize,
		BatchPause: defaultBatchPause,
	}
}

// Sync embeds and upserts the whole catalog, returning the number of products
// synced. It fails fast: a single preflight embedding call verifies the
// credentials before any batch work starts, and the first failing batch
// aborts the run.
func (s *Syncer) Sync(ctx context.Context) (int, error) {
	if _, err := s.embedder.EmbedQuery(ctx, "preflight"); err != nil {
		return 0, fmt.Errorf("embedding preflight: %w", err)
	}

	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("list products: %w", err)
	}
	if len(products) == 0 {
		s.logger.Warn().Msg("Catalog is empty, nothing to sync")
		return 0, nil
	}

	s.logger.Info().
		Int("products", len(products)).
		Int("batch_size", s.batchSize).
		Msg("Starting catalog sync")

	synced := 0
	for start := 0; start < len(products); start += s.batchSize {
		end := start + s.batchSize
		if end > len(products) {
			end = len(products)
		}
		batch := products[start:end]

		texts := make([]string, len(batch))
		for i, p := range batch {
			texts[i] = productText(p)
		}

		embeddings, err := s.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return synced, fmt.Errorf("embed batch at offset %d: %w", start, err)
		}
		if len(embeddings) != len(batch) {
			return synced, fmt.Errorf("embed batch at offset %d: got %d embeddings for %d texts", start, len(embeddings), len(batch))
		}

		vectors := make([]vector.Vector, len(batch))
		for i, p := range batch {
			vectors[i] = vector.Vector{
				ID:       strconv.FormatInt(p.ID, 10),
				Values:   embeddings[i],
				Metadata: productMetadata(p, texts[i]),
			}
		}

		if err := s.index.Upsert(ctx, vectors, s.namespace); err != nil {
			return synced, fmt.Errorf("upsert batch at offset %d: %w", start, err)
		}

		synced += len(batch)
		if s.OnBatch != nil {
			s.OnBatch(synced, len(products))
		}

		if s.BatchPause > 0 && synced < len(products) {
			select {
			case <-ctx.Done():
				return synced, ctx.Err()
			case <-time.After(s.BatchPause):
			}
		}
	}

	s.logger.Info().Int("synced", synced).Msg("Catalog sync complete")
	return synced, nil
}

// productText builds the text that gets embedded for a product: every
// populated attribute, labeled, in a stable order.
func productText(p catalog.Product) string {
	parts := []string{"Name: " + p.Name}
	if p.Brand != nil {
		parts = append(parts, "Brand: "+*p.Brand)
	}
	if p.Gender != nil {
		parts = append(parts, "Gender: "+*p.Gender)
	}
	if p.PrimaryColor != nil {
		parts = append(parts, "Color: "+*p.PrimaryColor)
	}
	if p.Description != nil {
		parts = append(parts, "Description: "+*p.Description)
	}
	return strings.Join(parts, ". ")
}

// productMetadata builds the metadata attached to a product's vector. The
// content key carries the text the retrieval side surfaces; price_display is
// precomputed here so queries never re-derive it.
func productMetadata(p catalog.Product, text string) map[string]any {
	meta := map[string]any{
		"id":   strconv.FormatInt(p.ID, 10),
		"name": p.Name,
	}

	content := text
	if p.Description != nil {
		content = *p.Description
	}
	meta[vector.ContentKey] = content

	if p.Brand != nil {
		meta["brand"] = *p.Brand
	}
	if p.Gender != nil {
		meta["gender"] = *p.Gender
	}
	if p.PrimaryColor != nil {
		meta["primaryColor"] = *p.PrimaryColor
	}
	if p.Price != nil {
		meta["price"] = *p.Price
		if display, ok := pricing.Display(*p.Price, pricing.DefaultCurrency); ok {
			meta["price_display"] = display
		}
	}
	return meta
}
