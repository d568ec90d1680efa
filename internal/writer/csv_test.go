package writer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardlens/internal/models"
)

func sampleTxns() []models.Transaction {
	return []models.Transaction{
		{
			Date:      time.Date(2025, 12, 9, 0, 0, 0, 0, time.UTC),
			Merchant:  "FLIPKART PAYMENTS,BANGALORE",
			Amount:    decimal.RequireFromString("534.00"),
			Category:  "Shopping",
			Issuer:    models.IssuerAxis,
			Card:      "Axis Flipkart",
			Statement: "stmt-1",
		},
		{
			Date:      time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC),
			Merchant:  "WESTSIDEMUMBAI",
			Amount:    decimal.RequireFromString("2244.00"),
			Category:  "Apparels",
			Issuer:    models.IssuerHDFC,
			Card:      "HDFC Tata Neu",
			Statement: "stmt-2",
		},
	}
}

func TestCSVRoundTrip(t *testing.T) {
	txns := sampleTxns()

	var buf bytes.Buffer
	w := &CSVWriter{}
	require.NoError(t, w.Write(&buf, txns))

	got, err := Read(&buf)
	require.NoError(t, err)
	require.Len(t, got, len(txns))

	for i := range txns {
		assert.True(t, got[i].Date.Equal(txns[i].Date), "row %d date", i)
		assert.Equal(t, txns[i].Merchant, got[i].Merchant, "row %d merchant", i)
		assert.True(t, got[i].Amount.Equal(txns[i].Amount), "row %d amount", i)
		assert.Equal(t, txns[i].Category, got[i].Category, "row %d category", i)
		assert.Equal(t, txns[i].Issuer, got[i].Issuer, "row %d issuer", i)
		assert.Equal(t, txns[i].Card, got[i].Card, "row %d card", i)
		assert.Equal(t, txns[i].Statement, got[i].Statement, "row %d statement", i)
	}
}

func TestCSVRoundTrip_WithMeta(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{IncludeMeta: true}
	require.NoError(t, w.Write(&buf, sampleTxns()))

	out := buf.String()
	assert.Contains(t, out, "# Transactions,2")
	assert.Contains(t, out, "# Total,2778.00")

	got, err := Read(strings.NewReader(out))
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestWrite_MerchantWithComma(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{}
	require.NoError(t, w.Write(&buf, sampleTxns()))

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, "FLIPKART PAYMENTS,BANGALORE", got[0].Merchant)
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{}
	require.NoError(t, w.Write(&buf, nil))

	assert.Equal(t, "Date,Merchant,Amount,Category,Issuer,Card,Statement\n", buf.String())

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRead_BadAmount(t *testing.T) {
	in := "Date,Merchant,Amount,Category,Issuer,Card,Statement\n2025-12-09,SHOP,notanumber,Other,axis,Axis Flipkart,stmt-1\n"
	_, err := Read(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing amount")
}
