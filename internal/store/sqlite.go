package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"cardlens/internal/models"
)

const sqliteDateFormat = "2006-01-02"

// SQLite persists session uploads across restarts.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at dbPath and applies
// pending migrations.
func NewSQLite(dbPath string) (*SQLite, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLite) AddStatement(ctx context.Context, sessionID string, st models.Statement) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO statements (id, session_id, card, issuer, file_name, period, uploaded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		st.ID, sessionID, st.Card, string(st.Issuer), st.FileName, st.Period,
		st.UploadedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert statement %s: %w", st.ID, err)
	}

	for _, txn := range st.Transactions {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO transactions (statement_id, session_id, txn_date, merchant, amount, category, issuer, card)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			st.ID, sessionID, txn.Date.Format(sqliteDateFormat), txn.Merchant,
			txn.Amount.String(), txn.Category, string(txn.Issuer), txn.Card)
		if err != nil {
			return fmt.Errorf("insert transaction for statement %s: %w", st.ID, err)
		}
	}

	return tx.Commit()
}

func (s *SQLite) Statements(ctx context.Context, sessionID string) ([]models.Statement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, card, issuer, file_name, period, uploaded_at
		 FROM statements WHERE session_id = ? ORDER BY uploaded_at, id`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("query statements: %w", err)
	}
	defer rows.Close()

	var sts []models.Statement
	for rows.Next() {
		var st models.Statement
		var issuer, uploadedAt string
		if err := rows.Scan(&st.ID, &st.Card, &issuer, &st.FileName, &st.Period, &uploadedAt); err != nil {
			return nil, fmt.Errorf("scan statement: %w", err)
		}
		st.Issuer = models.IssuerType(issuer)
		if t, perr := time.Parse(time.RFC3339, uploadedAt); perr == nil {
			st.UploadedAt = t
		}
		sts = append(sts, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate statements: %w", err)
	}

	for i := range sts {
		txns, err := s.statementTransactions(ctx, sts[i].ID)
		if err != nil {
			return nil, err
		}
		sts[i].Transactions = txns
	}
	return sts, nil
}

func (s *SQLite) statementTransactions(ctx context.Context, statementID string) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT statement_id, txn_date, merchant, amount, category, issuer, card
		 FROM transactions WHERE statement_id = ? ORDER BY txn_date, id`,
		statementID)
	if err != nil {
		return nil, fmt.Errorf("query transactions for statement %s: %w", statementID, err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func (s *SQLite) Transactions(ctx context.Context, sessionID string) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT statement_id, txn_date, merchant, amount, category, issuer, card
		 FROM transactions WHERE session_id = ? ORDER BY txn_date, id`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	txns, err := scanTransactions(rows)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(txns, func(i, j int) bool { return txns[i].Date.Before(txns[j].Date) })
	return txns, nil
}

func scanTransactions(rows *sql.Rows) ([]models.Transaction, error) {
	var txns []models.Transaction
	for rows.Next() {
		var txn models.Transaction
		var date, amount, issuer string
		if err := rows.Scan(&txn.Statement, &date, &txn.Merchant, &amount, &txn.Category, &issuer, &txn.Card); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t, err := time.Parse(sqliteDateFormat, date)
		if err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", date, err)
		}
		txn.Date = t
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse stored amount %q: %w", amount, err)
		}
		txn.Amount = d
		txn.Issuer = models.IssuerType(issuer)
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}

func (s *SQLite) Clear(ctx context.Context, sessionID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete transactions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM statements WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete statements: %w", err)
	}
	return tx.Commit()
}
