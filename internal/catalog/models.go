// Package catalog provides the product store and listing service.
package catalog

// Product is one catalog row. All attributes except the name are optional;
// the raw price is stored as text because the dataset mixes encodings
// (cents-integers from the legacy load, dollar floats from newer ones).
type Product struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Brand        *string `json:"brand"`
	Gender       *string `json:"gender"`
	Price        *string `json:"price"`
	Description  *string `json:"description"`
	PrimaryColor *string `json:"primaryColor"`
}

// ProductView is a product decorated with its normalized display price.
// PriceDisplay is an explicit null when the raw price is absent or
// unparsable, never an omitted key.
type ProductView struct {
	Product
	PriceDisplay *string `json:"price_display"`
}
