package handlers

import (
	"context"
	"net/http"

	"github.com/shopsense-ai/catalog-assistant/internal/catalog"
	"github.com/shopsense-ai/catalog-assistant/internal/observability"
)

// ProductService lists decorated catalog rows.
type ProductService interface {
	ListProducts(ctx context.Context) ([]catalog.ProductView, error)
}

// ProductsHandler handles product listing requests.
type ProductsHandler struct {
	logger  *observability.Logger
	service ProductService
}

// NewProductsHandler creates a products handler.
func NewProductsHandler(logger *observability.Logger, service ProductService) *ProductsHandler {
	return &ProductsHandler{
		logger:  logger.WithComponent("products-handler"),
		service: service,
	}
}

// List handles GET /products. A store failure fails the whole request; there
// are no partial listings.
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	products, err := h.service.ListProducts(ctx)
	if err != nil {
		h.logger.WithContext(ctx).Error().Err(err).Msg("Product listing failed")
		writeError(w, http.StatusInternalServerError, "DB error: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, products)
}
