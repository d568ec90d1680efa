package parser

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount converts a statement amount string like "₹ 1,234.56" or
// "Rs. 534.00" to a decimal. Currency glyphs, separators, and the mojibake
// rupee sign some extractors emit are stripped first.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	for _, junk := range []string{"₹", "â‚¹", "Rs.", "Rs", "INR", "£", "$", "€", ",", " ", " "} {
		s = strings.ReplaceAll(s, junk, "")
	}
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return d, nil
}

func containsAny(text string, needles []string) bool {
	lower := strings.ToLower(text)
	for _, needle := range needles {
		if strings.Contains(lower, strings.ToLower(needle)) {
			return true
		}
	}
	return false
}

// collapseSpaces squeezes runs of whitespace inside merchant names that
// coordinate-based extraction tends to produce.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
