package catalog

import (
	"context"

	"github.com/shopsense-ai/catalog-assistant/internal/pricing"
)

// ProductLister is the slice of the store the listing service needs.
type ProductLister interface {
	ListProducts(ctx context.Context) ([]Product, error)
}

// ListingService serves the product listing endpoint: one full fetch per
// call, each row decorated with its normalized display price.
type ListingService struct {
	store ProductLister
}

// NewListingService creates a listing service over the given store.
func NewListingService(store ProductLister) *ListingService {
	return &ListingService{store: store}
}

// ListProducts fetches all catalog rows and computes price_display for each.
// A store failure surfaces whole; there are no partial results.
func (s *ListingService) ListProducts(ctx context.Context) ([]ProductView, error) {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		view := ProductView{Product: p}
		if p.Price != nil {
			if display, ok := pricing.Display(*p.Price, pricing.DefaultCurrency); ok {
				view.PriceDisplay = &display
			}
		}
		views = append(views, view)
	}
	return views, nil
}
