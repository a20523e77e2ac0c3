package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopsense-ai/catalog-assistant/internal/catalog"
	"github.com/shopsense-ai/catalog-assistant/internal/embedding"
	"github.com/shopsense-ai/catalog-assistant/internal/observability"
	"github.com/shopsense-ai/catalog-assistant/internal/vector"
)

type stubSource struct {
	products []catalog.Product
	err      error
}

func (s *stubSource) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	return s.products, s.err
}

type recordingUpserter struct {
	batches    [][]vector.Vector
	namespaces []string
	err        error
}

func (u *recordingUpserter) Upsert(ctx context.Context, vectors []vector.Vector, namespace string) error {
	if u.err != nil {
		return u.err
	}
	u.batches = append(u.batches, vectors)
	u.namespaces = append(u.namespaces, namespace)
	return nil
}

func sampleProducts(n int) []catalog.Product {
	products := make([]catalog.Product, n)
	for i := range products {
		products[i] = catalog.Product{ID: int64(i + 1), Name: "Product"}
	}
	return products
}

func newTestSyncer(source ProductSource, index Upserter, batchSize int) *Syncer {
	s := NewSyncer(observability.Nop(), source, embedding.NewMockProvider(8), index, "products", batchSize)
	s.BatchPause = 0
	return s
}

func TestSyncer_SyncBatches(t *testing.T) {
	index := &recordingUpserter{}
	syncer := newTestSyncer(&stubSource{products: sampleProducts(5)}, index, 2)

	var progress [][2]int
	syncer.OnBatch = func(done, total int) { progress = append(progress, [2]int{done, total}) }

	n, err := syncer.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	// 5 products at batch size 2 means batches of 2, 2 and 1.
	require.Len(t, index.batches, 3)
	assert.Len(t, index.batches[0], 2)
	assert.Len(t, index.batches[1], 2)
	assert.Len(t, index.batches[2], 1)
	assert.Equal(t, []string{"products", "products", "products"}, index.namespaces)
	assert.Equal(t, [][2]int{{2, 5}, {4, 5}, {5, 5}}, progress)

	// Vector IDs are the product IDs.
	assert.Equal(t, "1", index.batches[0][0].ID)
	assert.Equal(t, "5", index.batches[2][0].ID)
}

func TestSyncer_VectorMetadata(t *testing.T) {
	brand := "Vans"
	gender := "Men"
	color := "White"
	price := "3999"
	desc := "Classic skate shoe"

	index := &recordingUpserter{}
	syncer := newTestSyncer(&stubSource{products: []catalog.Product{{
		ID:           7,
		Name:         "Era",
		Brand:        &brand,
		Gender:       &gender,
		Price:        &price,
		Description:  &desc,
		PrimaryColor: &color,
	}}}, index, 32)

	_, err := syncer.Sync(context.Background())
	require.NoError(t, err)
	require.Len(t, index.batches, 1)

	meta := index.batches[0][0].Metadata
	assert.Equal(t, "7", meta["id"])
	assert.Equal(t, "Era", meta["name"])
	assert.Equal(t, "Vans", meta["brand"])
	assert.Equal(t, "Men", meta["gender"])
	assert.Equal(t, "White", meta["primaryColor"])
	assert.Equal(t, "3999", meta["price"])
	assert.Equal(t, "$39.99", meta["price_display"])
	assert.Equal(t, desc, meta[vector.ContentKey])

	values := index.batches[0][0].Values
	assert.Len(t, values, 8)
}

func TestSyncer_MetadataOmitsEmptyFields(t *testing.T) {
	index := &recordingUpserter{}
	syncer := newTestSyncer(&stubSource{products: []catalog.Product{{ID: 1, Name: "Mystery Item"}}}, index, 32)

	_, err := syncer.Sync(context.Background())
	require.NoError(t, err)

	meta := index.batches[0][0].Metadata
	assert.NotContains(t, meta, "brand")
	assert.NotContains(t, meta, "price")
	assert.NotContains(t, meta, "price_display")

	// Without a description the embedded text doubles as the content.
	assert.Equal(t, "Name: Mystery Item", meta[vector.ContentKey])
}

func TestSyncer_EmptyCatalog(t *testing.T) {
	index := &recordingUpserter{}
	syncer := newTestSyncer(&stubSource{}, index, 32)

	n, err := syncer.Sync(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, index.batches)
}

func TestSyncer_PreflightFailureAbortsBeforeListing(t *testing.T) {
	embedder := embedding.NewMockProvider(8)
	embedder.Err = errors.New("401 unauthorized")

	// A source that fails loudly proves the preflight short-circuits first.
	source := &stubSource{err: errors.New("should not be reached")}
	syncer := NewSyncer(observability.Nop(), source, embedder, &recordingUpserter{}, "", 32)
	syncer.BatchPause = 0

	_, err := syncer.Sync(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "preflight")
}

func TestSyncer_UpsertFailureAborts(t *testing.T) {
	index := &recordingUpserter{err: errors.New("503 unavailable")}
	syncer := newTestSyncer(&stubSource{products: sampleProducts(3)}, index, 32)

	n, err := syncer.Sync(context.Background())
	require.Error(t, err)
	assert.Zero(t, n)
}
