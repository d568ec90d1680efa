package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a single normalized credit card charge.
type Transaction struct {
	Date      time.Time       `json:"date"`
	Merchant  string          `json:"merchant"`
	Amount    decimal.Decimal `json:"amount"` // signed; spending is positive
	Category  string          `json:"category"`
	Issuer    IssuerType      `json:"issuer"`
	Card      string          `json:"card"`
	Statement string          `json:"statement"` // ID of the source statement
}

// IssuerType identifies the supported credit card issuers.
type IssuerType string

const (
	IssuerAxis IssuerType = "axis"
	IssuerHDFC IssuerType = "hdfc"
)

// Statement is one parsed PDF bill covering a single billing period for one card.
type Statement struct {
	ID           string        `json:"id"`
	Card         string        `json:"card"`
	Issuer       IssuerType    `json:"issuer"`
	FileName     string        `json:"fileName"`
	Period       string        `json:"period,omitempty"`
	UploadedAt   time.Time     `json:"uploadedAt"`
	Transactions []Transaction `json:"transactions"`
}

// Total sums the statement's transaction amounts.
func (s Statement) Total() decimal.Decimal {
	var total decimal.Decimal
	for _, txn := range s.Transactions {
		total = total.Add(txn.Amount)
	}
	return total
}

var (
	// ErrUnknownIssuer is returned when statement text matches no supported issuer.
	ErrUnknownIssuer = errors.New("could not detect issuer from statement content")
	// ErrNoTransactions is returned when a statement parses to zero rows.
	ErrNoTransactions = errors.New("no transactions found in statement")
)
