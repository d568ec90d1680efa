package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cardlens/internal/models"
)

const dateFormat = "2006-01-02"

// columns is the stable export schema for normalized transactions.
var columns = []string{"Date", "Merchant", "Amount", "Category", "Issuer", "Card", "Statement"}

// CSVWriter writes normalized transactions to CSV.
type CSVWriter struct {
	// IncludeMeta prepends "#"-prefixed metadata rows before the header.
	IncludeMeta bool
}

// WriteToFile writes transactions to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, txns []models.Transaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, txns)
}

// Write writes transactions in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, txns []models.Transaction) error {
	cw := csv.NewWriter(out)
	defer cw.Flush()

	if w.IncludeMeta {
		var total decimal.Decimal
		for _, txn := range txns {
			total = total.Add(txn.Amount)
		}
		cw.Write([]string{"# Exported", time.Now().UTC().Format(dateFormat)})
		cw.Write([]string{"# Transactions", fmt.Sprintf("%d", len(txns))})
		cw.Write([]string{"# Total", total.StringFixed(2)})
	}

	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, txn := range txns {
		row := []string{
			txn.Date.Format(dateFormat),
			txn.Merchant,
			txn.Amount.StringFixed(2),
			txn.Category,
			string(txn.Issuer),
			txn.Card,
			txn.Statement,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}

	return cw.Error()
}

// Read parses a CSV produced by Write back into transactions. Metadata rows
// are skipped. This is the round-trip counterpart used to verify exports are
// lossless.
func Read(in io.Reader) ([]models.Transaction, error) {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1 // metadata rows have two fields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	var txns []models.Transaction
	headerSeen := false
	for i, rec := range records {
		if len(rec) > 0 && strings.HasPrefix(rec[0], "#") {
			continue
		}
		if !headerSeen {
			headerSeen = true
			continue
		}
		if len(rec) != len(columns) {
			return nil, fmt.Errorf("row %d: got %d fields, want %d", i+1, len(rec), len(columns))
		}

		date, err := time.Parse(dateFormat, rec[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing date %q: %w", i+1, rec[0], err)
		}
		amount, err := decimal.NewFromString(rec[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing amount %q: %w", i+1, rec[2], err)
		}

		txns = append(txns, models.Transaction{
			Date:      date,
			Merchant:  rec[1],
			Amount:    amount,
			Category:  rec[3],
			Issuer:    models.IssuerType(rec[4]),
			Card:      rec[5],
			Statement: rec[6],
		})
	}
	return txns, nil
}
