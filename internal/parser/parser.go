package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"cardlens/internal/category"
	"cardlens/internal/models"
)

// Parser extracts transaction rows from the text of one issuer's statements.
type Parser interface {
	// Parse takes raw text from PDF pages and returns normalized transactions.
	Parse(pages []string) ([]models.Transaction, error)
	// IssuerName returns the human-readable issuer name.
	IssuerName() string
}

// New returns the parser for the given issuer.
func New(issuer models.IssuerType) (Parser, error) {
	switch issuer {
	case models.IssuerAxis:
		return &AxisParser{}, nil
	case models.IssuerHDFC:
		return &HDFCParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported issuer: %q", issuer)
	}
}

// DetectIssuer identifies the issuer from statement text.
func DetectIssuer(pages []string) (models.IssuerType, error) {
	combined := strings.Join(pages, "\n")
	if containsAny(combined, []string{"Axis Bank", "axisbank"}) {
		return models.IssuerAxis, nil
	}
	if containsAny(combined, []string{"HDFC Bank", "hdfcbank"}) {
		return models.IssuerHDFC, nil
	}
	return "", models.ErrUnknownIssuer
}

var (
	hdfcCardPattern = regexp.MustCompile(`(?s)(.+?)\s+HDFC\s+BANK\s+CREDIT\s+CARD\s+STATEMENT`)
	axisCardPattern = regexp.MustCompile(`AXIS\s+(.+?)\s+CREDIT\s+CARD`)
)

// DetectCard identifies the card product from statement text.
func DetectCard(pages []string) string {
	upper := strings.ToUpper(strings.Join(pages, "\n"))

	if m := hdfcCardPattern.FindStringSubmatch(upper); m != nil {
		prefix := collapseSpaces(m[1])
		switch {
		case strings.Contains(prefix, "SWIGGY"):
			return "HDFC Swiggy"
		case strings.Contains(prefix, "NEU"): // Tata Neu, Neu Plus, ...
			return "HDFC Tata Neu"
		default:
			return "HDFC Credit Card"
		}
	}

	if m := axisCardPattern.FindStringSubmatch(upper); m != nil {
		if strings.Contains(m[1], "FLIPKART") {
			return "Axis Flipkart"
		}
		return "Axis Credit Card"
	}

	return "Unknown Card"
}

// ParseStatement runs the full pipeline for one statement's extracted pages:
// issuer detection, row parsing, categorization, and card/statement stamping.
// Every returned transaction traces back to the returned statement's ID.
func ParseStatement(pages []string, fileName string) (*models.Statement, error) {
	issuer, err := DetectIssuer(pages)
	if err != nil {
		return nil, err
	}

	p, err := New(issuer)
	if err != nil {
		return nil, err
	}

	txns, err := p.Parse(pages)
	if err != nil {
		return nil, fmt.Errorf("parsing %s statement: %w", p.IssuerName(), err)
	}
	if len(txns) == 0 {
		return nil, models.ErrNoTransactions
	}

	st := &models.Statement{
		ID:         uuid.NewString(),
		Card:       DetectCard(pages),
		Issuer:     issuer,
		FileName:   fileName,
		UploadedAt: time.Now().UTC(),
	}

	var first, last time.Time
	for i := range txns {
		txns[i].Card = st.Card
		txns[i].Statement = st.ID
		txns[i].Category = category.Categorize(txns[i].Merchant, txns[i].Category)
		if first.IsZero() || txns[i].Date.Before(first) {
			first = txns[i].Date
		}
		if last.IsZero() || txns[i].Date.After(last) {
			last = txns[i].Date
		}
	}
	st.Period = first.Format("02 Jan 06") + " to " + last.Format("02 Jan 06")
	st.Transactions = txns

	return st, nil
}
