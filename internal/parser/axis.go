package parser

import (
	"regexp"
	"strings"
	"time"

	"cardlens/internal/models"
)

// AxisParser handles Axis Bank credit card statement PDFs.
//
// Axis statements list transactions as:
//   Date | Transaction Details | Amount (INR) | Debit/Credit
// Example line: "09 Dec '25 FLIPKART PAYMENTS,BANGALORE ₹ 534.00 Debit"
//
// Only debit rows are kept: credits on a card statement are refunds or
// bill payments, not spending.
type AxisParser struct{}

func (p *AxisParser) IssuerName() string {
	return "Axis Bank"
}

const axisDateLayout = "2 Jan '06"

// axisTxnPattern: DATE  DETAILS  ₹AMOUNT  Debit|Credit
var axisTxnPattern = regexp.MustCompile(
	`(\d{1,2}\s+[A-Za-z]{3}\s+'\d{2})\s+(.+?)\s+(?:₹|â‚¹|Rs\.?|INR)?\s*([\d,]+\.?\d*)\s+(Debit|Credit)\b`,
)

func (p *AxisParser) Parse(pages []string) ([]models.Transaction, error) {
	var txns []models.Transaction
	for _, page := range pages {
		for _, line := range strings.Split(page, "\n") {
			m := axisTxnPattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if m[4] != "Debit" {
				continue
			}

			date, err := time.Parse(axisDateLayout, m[1])
			if err != nil {
				// Malformed date: skip the line, best effort per file.
				continue
			}
			amount, err := parseAmount(m[3])
			if err != nil {
				continue
			}

			txns = append(txns, models.Transaction{
				Date:     date,
				Merchant: collapseSpaces(m[2]),
				Amount:   amount,
				Issuer:   models.IssuerAxis,
			})
		}
	}
	return txns, nil
}
