package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopsense-ai/catalog-assistant/internal/catalog"
	"github.com/shopsense-ai/catalog-assistant/internal/observability"
)

type recordingWriter struct {
	products []catalog.Product
	err      error
}

func (w *recordingWriter) InsertProduct(ctx context.Context, p *catalog.Product) error {
	if w.err != nil {
		return w.err
	}
	w.products = append(w.products, *p)
	return nil
}

const sampleCSV = `ProductName,ProductBrand,Gender,Price,Description,PrimaryColor
Era,Vans,Men,3999,Classic skate shoe,White
Air Max 90,Nike,Women,129900,Iconic runner,
,Puma,Men,5000,Headless row,Black
Suede Classic,Puma,,,,
`

func TestLoader_Load(t *testing.T) {
	writer := &recordingWriter{}
	loader := NewLoader(observability.Nop(), writer)

	var progress []int
	loader.OnRow = func(n int) { progress = append(progress, n) }

	n, err := loader.Load(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []int{1, 2, 3}, progress)

	require.Len(t, writer.products, 3)

	first := writer.products[0]
	assert.Equal(t, "Era", first.Name)
	require.NotNil(t, first.Brand)
	assert.Equal(t, "Vans", *first.Brand)
	require.NotNil(t, first.Price)
	assert.Equal(t, "3999", *first.Price)
	require.NotNil(t, first.PrimaryColor)
	assert.Equal(t, "White", *first.PrimaryColor)

	// Empty cells become nils.
	second := writer.products[1]
	assert.Equal(t, "Air Max 90", second.Name)
	assert.Nil(t, second.PrimaryColor)

	sparse := writer.products[2]
	assert.Equal(t, "Suede Classic", sparse.Name)
	assert.Nil(t, sparse.Gender)
	assert.Nil(t, sparse.Price)
	assert.Nil(t, sparse.Description)
}

func TestLoader_ColumnsMatchedByName(t *testing.T) {
	// Reordered columns plus an extra one the loader does not know about.
	csvData := `Price,Extra,ProductName,ProductBrand
1250,ignored,Old Skool,Vans
`
	writer := &recordingWriter{}
	loader := NewLoader(observability.Nop(), writer)

	n, err := loader.Load(context.Background(), strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	p := writer.products[0]
	assert.Equal(t, "Old Skool", p.Name)
	require.NotNil(t, p.Price)
	assert.Equal(t, "1250", *p.Price)
}

func TestLoader_AcceptsBothColorSpellings(t *testing.T) {
	for _, header := range []string{"PrimaryColor", "PrimaryColour"} {
		csvData := "ProductName," + header + "\nEra,White\n"
		writer := &recordingWriter{}
		loader := NewLoader(observability.Nop(), writer)

		n, err := loader.Load(context.Background(), strings.NewReader(csvData))
		require.NoError(t, err)
		require.Equal(t, 1, n)

		p := writer.products[0]
		require.NotNil(t, p.PrimaryColor, "header %s", header)
		assert.Equal(t, "White", *p.PrimaryColor)
	}
}

func TestLoader_MissingNameColumn(t *testing.T) {
	csvData := `Brand,Price
Vans,3999
`
	loader := NewLoader(observability.Nop(), &recordingWriter{})

	_, err := loader.Load(context.Background(), strings.NewReader(csvData))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ProductName")
}

func TestLoader_StoreFailureAborts(t *testing.T) {
	loader := NewLoader(observability.Nop(), &recordingWriter{err: errors.New("disk full")})

	n, err := loader.Load(context.Background(), strings.NewReader(sampleCSV))
	require.Error(t, err)
	assert.Equal(t, 0, n)
}
