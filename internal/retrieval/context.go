package retrieval

import (
	"strings"

	"github.com/shopsense-ai/catalog-assistant/internal/pricing"
	"github.com/shopsense-ai/catalog-assistant/internal/vector"
)

// NoContextFound is returned when no rows survive formatting. The generation
// prompt treats it as a valid "nothing relevant" grounding block.
const NoContextFound = "No relevant context found."

// missingValue fills attributes the index never carried for a hit.
const missingValue = "N/A"

// metadataAliases maps each row attribute to its metadata keys, newest schema
// first. The capitalized variants come from an older ingestion version that
// copied CSV column names verbatim.
var metadataAliases = map[string][]string{
	"name":        {"name", "ProductName"},
	"brand":       {"brand", "ProductBrand"},
	"gender":      {"gender", "Gender"},
	"color":       {"primaryColor", "PrimaryColor"},
	"description": {"description", "Description"},
	"price":       {"price", "Price"},
}

// priceDisplayKey holds the display string precomputed at sync time.
const priceDisplayKey = "price_display"

// shortContextRows caps the context when the query does not ask for a full
// listing.
const shortContextRows = 3

// ContextRow is the normalized view of a search hit. Price is always a
// display string; raw numeric prices never reach the prompt unformatted.
type ContextRow struct {
	Name        string
	Brand       string
	Gender      string
	Color       string
	Price       string
	Description string
}

// newContextRow resolves a hit's loosely typed metadata into a row using the
// alias table.
func newContextRow(hit vector.SearchHit) ContextRow {
	row := ContextRow{
		Name:   metadataField(hit.Metadata, "name"),
		Brand:  metadataField(hit.Metadata, "brand"),
		Gender: metadataField(hit.Metadata, "gender"),
		Color:  metadataField(hit.Metadata, "color"),
		Price:  resolvePrice(hit.Metadata),
	}

	if desc := strings.TrimSpace(hit.Content); desc != "" {
		row.Description = desc
	} else {
		row.Description = metadataField(hit.Metadata, "description")
	}

	return row
}

func metadataField(md map[string]any, attr string) string {
	for _, key := range metadataAliases[attr] {
		if s, ok := md[key].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return missingValue
}

// resolvePrice prefers the precomputed display price, then normalizes the
// raw price field, then gives up.
func resolvePrice(md map[string]any) string {
	if s, ok := md[priceDisplayKey].(string); ok && strings.TrimSpace(s) != "" {
		return s
	}

	for _, key := range metadataAliases["price"] {
		if raw, ok := md[key]; ok {
			if display, ok := pricing.Display(raw, pricing.DefaultCurrency); ok {
				return display
			}
		}
	}

	return missingValue
}

// BuildContext renders search hits into the grounding block for the
// generation prompt. A brand hint filters rows (unless that would empty the
// set entirely); duplicate (brand, name) pairs collapse to the first seen;
// the result is capped at three rows unless listAll is set.
//
// The output carries each row twice, as an itemized entry and as a pipe-
// delimited summary line. The duplication biases the model toward
// enumerating every item instead of summarizing.
func BuildContext(hits []vector.SearchHit, brand string, listAll bool) string {
	rows := make([]ContextRow, 0, len(hits))
	for _, hit := range hits {
		rows = append(rows, newContextRow(hit))
	}

	if brand != "" {
		filtered := make([]ContextRow, 0, len(rows))
		for _, row := range rows {
			if strings.EqualFold(row.Brand, brand) {
				filtered = append(filtered, row)
			}
		}
		// A wrong-brand match beats an empty answer: only apply the
		// filter when something survives it.
		if len(filtered) > 0 {
			rows = filtered
		}
	}

	rows = dedupeRows(rows)

	if !listAll && len(rows) > shortContextRows {
		rows = rows[:shortContextRows]
	}

	if len(rows) == 0 {
		return NoContextFound
	}

	var sb strings.Builder
	sb.WriteString("Items:\n")
	for _, row := range rows {
		sb.WriteString("- ")
		sb.WriteString(row.Brand)
		sb.WriteString(" ")
		sb.WriteString(row.Name)
		sb.WriteString(" (")
		sb.WriteString(row.Color)
		sb.WriteString(", ")
		sb.WriteString(row.Gender)
		sb.WriteString("), Price: ")
		sb.WriteString(row.Price)
		sb.WriteString("\n  ")
		sb.WriteString(row.Description)
		sb.WriteString("\n")
	}

	sb.WriteString("\nSummary:\n")
	for _, row := range rows {
		sb.WriteString(row.Brand)
		sb.WriteString(" | ")
		sb.WriteString(row.Name)
		sb.WriteString(" | ")
		sb.WriteString(row.Color)
		sb.WriteString(" | ")
		sb.WriteString(row.Gender)
		sb.WriteString(" | ")
		sb.WriteString(row.Price)
		sb.WriteString("\n")
	}

	return sb.String()
}

// dedupeRows drops rows whose case-insensitive (brand, name) pair was
// already seen, preserving retrieval-rank order.
func dedupeRows(rows []ContextRow) []ContextRow {
	seen := make(map[string]struct{}, len(rows))
	out := rows[:0]
	for _, row := range rows {
		key := strings.ToLower(row.Brand) + "\x00" + strings.ToLower(row.Name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, row)
	}
	return out
}
