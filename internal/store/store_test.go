package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardlens/internal/config"
	"cardlens/internal/models"
)

func storeTestConfig(backend string) *config.Config {
	return &config.Config{
		StoreBackend: backend,
		SQLiteDBPath: "ignored.db",
		SessionTTL:   time.Hour,
	}
}

func testStatement(id, card string, issuer models.IssuerType, amounts ...string) models.Statement {
	st := models.Statement{
		ID:         id,
		Card:       card,
		Issuer:     issuer,
		FileName:   id + ".pdf",
		Period:     "01 Dec 25 to 31 Dec 25",
		UploadedAt: time.Date(2025, 12, 31, 10, 0, 0, 0, time.UTC),
	}
	for i, a := range amounts {
		st.Transactions = append(st.Transactions, models.Transaction{
			Date:      time.Date(2025, 12, i+1, 0, 0, 0, 0, time.UTC),
			Merchant:  "MERCHANT",
			Amount:    decimal.RequireFromString(a),
			Category:  "Other",
			Issuer:    issuer,
			Card:      card,
			Statement: id,
		})
	}
	return st
}

// Both backends must satisfy the same contract.
func TestStoreContract(t *testing.T) {
	backends := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemory(time.Hour)
		},
		"sqlite": func(t *testing.T) Store {
			s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
			require.NoError(t, err)
			return s
		},
	}

	for name, newStore := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)
			defer s.Close()

			// Empty session
			sts, err := s.Statements(ctx, "sess-1")
			require.NoError(t, err)
			assert.Empty(t, sts)

			txns, err := s.Transactions(ctx, "sess-1")
			require.NoError(t, err)
			assert.Empty(t, txns)

			// Add two statements
			require.NoError(t, s.AddStatement(ctx, "sess-1", testStatement("st-a", "Axis Flipkart", models.IssuerAxis, "100.00", "250.50")))
			require.NoError(t, s.AddStatement(ctx, "sess-1", testStatement("st-b", "HDFC Tata Neu", models.IssuerHDFC, "999.99")))

			sts, err = s.Statements(ctx, "sess-1")
			require.NoError(t, err)
			require.Len(t, sts, 2)
			assert.Equal(t, "st-a", sts[0].ID)
			assert.Equal(t, "Axis Flipkart", sts[0].Card)
			assert.Equal(t, models.IssuerAxis, sts[0].Issuer)
			assert.Equal(t, "01 Dec 25 to 31 Dec 25", sts[0].Period)
			require.Len(t, sts[0].Transactions, 2)
			assert.Equal(t, "250.50", sts[0].Transactions[1].Amount.StringFixed(2))

			// Combined rows, ordered by date, each tracing to its statement
			txns, err = s.Transactions(ctx, "sess-1")
			require.NoError(t, err)
			require.Len(t, txns, 3)
			for i := 1; i < len(txns); i++ {
				assert.False(t, txns[i].Date.Before(txns[i-1].Date), "rows out of order")
			}
			byStmt := map[string]int{}
			for _, txn := range txns {
				byStmt[txn.Statement]++
			}
			assert.Equal(t, 2, byStmt["st-a"])
			assert.Equal(t, 1, byStmt["st-b"])

			// Sessions are isolated
			other, err := s.Transactions(ctx, "sess-2")
			require.NoError(t, err)
			assert.Empty(t, other)

			// Clear removes only the target session
			require.NoError(t, s.AddStatement(ctx, "sess-2", testStatement("st-c", "Axis Flipkart", models.IssuerAxis, "5.00")))
			require.NoError(t, s.Clear(ctx, "sess-1"))

			txns, err = s.Transactions(ctx, "sess-1")
			require.NoError(t, err)
			assert.Empty(t, txns)

			other, err = s.Transactions(ctx, "sess-2")
			require.NoError(t, err)
			assert.Len(t, other, 1)
		})
	}
}

func TestMemory_SweepExpired(t *testing.T) {
	m := NewMemory(time.Millisecond)
	defer m.Close()

	ctx := context.Background()
	require.NoError(t, m.AddStatement(ctx, "sess-old", testStatement("st-a", "Axis Flipkart", models.IssuerAxis, "1.00")))

	time.Sleep(5 * time.Millisecond)
	m.sweepExpired()

	m.mu.Lock()
	_, exists := m.sessions["sess-old"]
	m.mu.Unlock()
	assert.False(t, exists, "expired session should be swept")
}

func TestNew_UnknownBackend(t *testing.T) {
	cfg := storeTestConfig("nope")
	_, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store backend")
}

func TestNew_Memory(t *testing.T) {
	s, err := New(storeTestConfig("memory"))
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &Memory{}, s)
}
