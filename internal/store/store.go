// Package store keeps each session's uploaded statements. The default
// backend is in-memory with TTL expiry; the sqlite backend persists
// statements across restarts for users who want that.
package store

import (
	"context"
	"fmt"

	"cardlens/internal/config"
	"cardlens/internal/models"
)

// Store is the per-session statement buffer.
type Store interface {
	// AddStatement saves a parsed statement for a session.
	AddStatement(ctx context.Context, sessionID string, st models.Statement) error
	// Statements returns the session's statements, oldest upload first.
	Statements(ctx context.Context, sessionID string) ([]models.Statement, error)
	// Transactions returns all of the session's rows, ordered by date.
	Transactions(ctx context.Context, sessionID string) ([]models.Transaction, error)
	// Clear removes everything stored for a session.
	Clear(ctx context.Context, sessionID string) error
	// Close releases backend resources.
	Close() error
}

// New builds the store selected by the configuration.
func New(cfg *config.Config) (Store, error) {
	switch cfg.StoreBackend {
	case "memory":
		return NewMemory(cfg.SessionTTL), nil
	case "sqlite":
		return NewSQLite(cfg.SQLiteDBPath)
	default:
		return nil, fmt.Errorf("unknown store backend: %q", cfg.StoreBackend)
	}
}
