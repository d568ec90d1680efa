package parser

import (
	"regexp"
	"strings"
	"time"

	"cardlens/internal/models"
)

// HDFCParser handles HDFC Bank credit card statement PDFs (Tata Neu, Swiggy).
//
// HDFC statements list transactions as:
//   DATE & TIME | TRANSACTION DESCRIPTION | Base NeuCoins | AMOUNT | PI
// Example line: "20/11/2025| 20:40 WESTSIDEMUMBAI + 22 C 2,244.00 l"
//
// Rows with "+" before the amount marker are credits and are skipped, as are
// bill payment rows (PAYMENT / BPPY). HDFC pre-categorizes some merchants;
// that issuer category is kept and wins over keyword inference downstream.
type HDFCParser struct{}

func (p *HDFCParser) IssuerName() string {
	return "HDFC Bank"
}

const hdfcDateLayout = "02/01/2006"

// hdfcTxnPattern: DATE| TIME  DESCRIPTION  [+ COINS]  [+-]C AMOUNT
var hdfcTxnPattern = regexp.MustCompile(
	`(\d{2}/\d{2}/\d{4})\|\s*(\d{2}:\d{2})\s+(.+?)(?:\s+\+\s*\d+)?\s*([+-]?\s*C)\s*([\d,]+(?:\.\d{2})?)`,
)

func (p *HDFCParser) Parse(pages []string) ([]models.Transaction, error) {
	var txns []models.Transaction
	for _, page := range pages {
		for _, line := range strings.Split(page, "\n") {
			if strings.Contains(strings.ToUpper(line), "PAYMENT") || strings.Contains(line, "BPPY") {
				continue
			}

			m := hdfcTxnPattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			// "+" before the C marker means a credit back to the card.
			if strings.HasPrefix(strings.TrimSpace(m[4]), "+") {
				continue
			}

			date, err := time.Parse(hdfcDateLayout, m[1])
			if err != nil {
				continue
			}
			amount, err := parseAmount(m[5])
			if err != nil {
				continue
			}

			merchant := collapseSpaces(m[3])
			txns = append(txns, models.Transaction{
				Date:     date,
				Merchant: merchant,
				Amount:   amount,
				Category: hdfcIssuerCategory(merchant),
				Issuer:   models.IssuerHDFC,
			})
		}
	}
	return txns, nil
}

// hdfcIssuerCategory maps merchants HDFC itself categorizes. Empty means no
// issuer category; the keyword categorizer decides later.
func hdfcIssuerCategory(merchant string) string {
	lower := strings.ToLower(merchant)
	switch {
	case containsAny(lower, []string{"westside", "zara", "h&m", "max fashion"}):
		return "Apparels"
	case containsAny(lower, []string{"zomato", "swiggy", "bistro", "restaurant"}):
		return "Restaurant"
	case containsAny(lower, []string{"blink", "bigbasket", "dmart", "grofers"}):
		return "Groceries"
	case containsAny(lower, []string{"uber", "ola", "rapido"}):
		return "Transport"
	}
	return ""
}
