package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopsense-ai/catalog-assistant/internal/observability"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(observability.Nop(), StoreConfig{
		Driver: "sqlite",
		DSN:    "file:" + t.TempDir() + "/catalog.db",
	})
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_ConnectIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assert.False(t, store.Connected())

	require.NoError(t, store.Connect(ctx))
	assert.True(t, store.Connected())

	// A second Connect must not reopen or error.
	require.NoError(t, store.Connect(ctx))
	assert.True(t, store.Connected())
}

func TestStore_CloseWhenNeverConnected(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestStore_OperationsRequireConnect(t *testing.T) {
	store := newTestStore(t)

	_, err := store.ListProducts(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)

	err = store.InsertProduct(context.Background(), &Product{Name: "Era"})
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestStore_InsertAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Connect(ctx))

	require.NoError(t, store.InsertProduct(ctx, &Product{
		Name:         "Era",
		Brand:        strPtr("Vans"),
		Gender:       strPtr("Men"),
		Price:        strPtr("3999"),
		Description:  strPtr("Classic skate shoe"),
		PrimaryColor: strPtr("White"),
	}))
	require.NoError(t, store.InsertProduct(ctx, &Product{Name: "Mystery Item"}))

	count, err := store.CountProducts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	products, err := store.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "Era", products[0].Name)
	require.NotNil(t, products[0].Brand)
	assert.Equal(t, "Vans", *products[0].Brand)
	assert.Equal(t, "3999", *products[0].Price)

	// Optional columns come back as nils, not empty strings.
	assert.Equal(t, "Mystery Item", products[1].Name)
	assert.Nil(t, products[1].Brand)
	assert.Nil(t, products[1].Price)
}
