// Package pricing normalizes raw catalog price values into display strings.
//
// The catalog mixes encodings: legacy rows store the price as an integer
// count of minor currency units (3999 means $39.99), while freshly loaded
// rows may carry a dollar float or a numeric string. The encoding is guessed
// from the runtime type alone, which is a known limitation of the dataset.
package pricing

import (
	"encoding/json"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCurrency is the symbol used when the caller does not supply one.
const DefaultCurrency = "$"

var printer = message.NewPrinter(language.English)

// Display converts a raw stored price into a human-readable currency string.
// Integer values are interpreted as minor units (cents); floats as major
// units (dollars); numeric strings follow their literal form. The second
// return value is false when the input is absent or unparsable. Display is
// total: it never panics and never returns an error.
func Display(value any, currency string) (string, bool) {
	if currency == "" {
		currency = DefaultCurrency
	}

	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return displayString(v, currency)
	case json.Number:
		return displayString(v.String(), currency)
	case int:
		return fromMinorUnits(int64(v), currency)
	case int8:
		return fromMinorUnits(int64(v), currency)
	case int16:
		return fromMinorUnits(int64(v), currency)
	case int32:
		return fromMinorUnits(int64(v), currency)
	case int64:
		return fromMinorUnits(v, currency)
	case uint:
		return fromMinorUnits(int64(v), currency)
	case uint8:
		return fromMinorUnits(int64(v), currency)
	case uint16:
		return fromMinorUnits(int64(v), currency)
	case uint32:
		return fromMinorUnits(int64(v), currency)
	case uint64:
		return fromMinorUnits(int64(v), currency)
	case float32:
		return fromMajorUnits(float64(v), currency)
	case float64:
		return fromMajorUnits(v, currency)
	default:
		// Maps, slices and anything else are not prices.
		return "", false
	}
}

// displayString parses a trimmed numeric string and re-dispatches it as an
// integer (no decimal point) or a float (one decimal point).
func displayString(s, currency string) (string, bool) {
	s = strings.TrimSpace(s)
	if !isDecimalNumeral(s) {
		return "", false
	}

	if strings.Contains(s, ".") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return "", false
		}
		return fromMajorUnits(f, currency)
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return "", false
	}
	return fromMinorUnits(n, currency)
}

// isDecimalNumeral reports whether s consists of digits with at most one
// decimal point. Signs are rejected: catalog prices are non-negative.
func isDecimalNumeral(s string) bool {
	if s == "" {
		return false
	}
	dots := 0
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
			if dots > 1 {
				return false
			}
		default:
			return false
		}
	}
	return digits > 0
}

func fromMinorUnits(cents int64, currency string) (string, bool) {
	if cents < 0 {
		return "", false
	}
	return render(float64(cents)/100.0, currency), true
}

func fromMajorUnits(amount float64, currency string) (string, bool) {
	if amount < 0 {
		return "", false
	}
	return render(amount, currency), true
}

// render formats with a thousands separator and exactly two decimal digits.
func render(amount float64, currency string) string {
	return currency + printer.Sprintf("%.2f", amount)
}
