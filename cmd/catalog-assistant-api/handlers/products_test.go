package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopsense-ai/catalog-assistant/internal/catalog"
	"github.com/shopsense-ai/catalog-assistant/internal/observability"
)

type stubProductService struct {
	views []catalog.ProductView
	err   error
}

func (s *stubProductService) ListProducts(ctx context.Context) ([]catalog.ProductView, error) {
	return s.views, s.err
}

func strPtr(s string) *string { return &s }

func TestProductsHandler_List(t *testing.T) {
	display := "$39.99"
	handler := NewProductsHandler(observability.Nop(), &stubProductService{views: []catalog.ProductView{
		{
			Product:      catalog.Product{ID: 1, Name: "Era", Brand: strPtr("Vans"), Price: strPtr("3999")},
			PriceDisplay: &display,
		},
		{
			Product: catalog.Product{ID: 2, Name: "Mystery Item"},
		},
	}})

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)

	assert.Equal(t, "Era", resp[0]["name"])
	assert.Equal(t, "$39.99", resp[0]["price_display"])

	// Undecorated rows carry an explicit null, not an omitted key.
	_, present := resp[1]["price_display"]
	assert.True(t, present)
	assert.Nil(t, resp[1]["price_display"])
}

func TestProductsHandler_StoreFailure(t *testing.T) {
	handler := NewProductsHandler(observability.Nop(), &stubProductService{err: errors.New("connection refused")})

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "DB error: connection refused", resp["error"])
}
