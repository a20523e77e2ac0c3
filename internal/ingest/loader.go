// Package ingest loads the product catalog from CSV and syncs it into the
// similarity index.
package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopsense-ai/catalog-assistant/internal/catalog"
	"github.com/shopsense-ai/catalog-assistant/internal/observability"
)

// ProductWriter is the slice of the store the loader needs.
type ProductWriter interface {
	InsertProduct(ctx context.Context, p *catalog.Product) error
}

// Loader reads product rows from a CSV export and writes them to the store.
//
// The CSV is expected to carry a header row; columns are matched by name, so
// column order and extra columns do not matter. Empty cells become NULLs.
type Loader struct {
	logger *observability.Logger
	store  ProductWriter

	// OnRow, when set, is called after each successfully inserted row with
	// the running count. Used by the CLI to drive its progress bar.
	OnRow func(n int)
}

// Column names as they appear in the dataset export. Some exports spell the
// color column the British way, so both are accepted.
const (
	colName            = "ProductName"
	colBrand           = "ProductBrand"
	colGender          = "Gender"
	colPrice           = "Price"
	colDescription     = "Description"
	colPrimaryColor    = "PrimaryColor"
	colPrimaryColorAlt = "PrimaryColour"
)

// NewLoader creates a CSV loader over the given store.
func NewLoader(logger *observability.Logger, store ProductWriter) *Loader {
	return &Loader{
		logger: logger.WithComponent("ingest"),
		store:  store,
	}
}

// LoadFile loads products from a CSV file on disk.
func (l *Loader) LoadFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return l.Load(ctx, f)
}

// Load reads CSV rows from r and inserts one product per row. It returns the
// number of rows inserted. Rows with an empty product name are skipped; a
// malformed record or a store failure aborts the load.
func (l *Loader) Load(ctx context.Context, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	if _, ok := columns[colName]; !ok {
		return 0, fmt.Errorf("csv header is missing the %s column", colName)
	}

	inserted := 0
	skipped := 0
	for {
		if err := ctx.Err(); err != nil {
			return inserted, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return inserted, fmt.Errorf("read csv record: %w", err)
		}

		name := cell(record, columns, colName)
		if name == nil {
			skipped++
			continue
		}

		product := &catalog.Product{
			Name:         *name,
			Brand:        cell(record, columns, colBrand),
			Gender:       cell(record, columns, colGender),
			Price:        cell(record, columns, colPrice),
			Description:  cell(record, columns, colDescription),
			PrimaryColor: cell(record, columns, colPrimaryColor, colPrimaryColorAlt),
		}

		if err := l.store.InsertProduct(ctx, product); err != nil {
			return inserted, fmt.Errorf("insert product %q: %w", product.Name, err)
		}

		inserted++
		if l.OnRow != nil {
			l.OnRow(inserted)
		}
	}

	l.logger.Info().
		Int("inserted", inserted).
		Int("skipped", skipped).
		Msg("Catalog load complete")
	return inserted, nil
}

// cell returns the trimmed value of the first named column present in the
// header, or nil when no column matches or the cell is empty.
func cell(record []string, columns map[string]int, names ...string) *string {
	for _, name := range names {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			continue
		}
		v := strings.TrimSpace(record[i])
		if v == "" {
			return nil
		}
		return &v
	}
	return nil
}
