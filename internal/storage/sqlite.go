package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Sidd1721986/Elite-App/internal/shared"
)

// SQLiteStore persists items in the kv_items table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore applies pending migrations and wraps db.
func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	if err := shared.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to migrate storage: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// GetItem retrieves the value stored under key
func (s *SQLiteStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_items WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query item %s: %w", key, err)
	}
	return value, true, nil
}

// SetItem inserts or replaces the value stored under key
func (s *SQLiteStore) SetItem(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO kv_items (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	if _, err := s.db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to store item %s: %w", key, err)
	}
	return nil
}

// RemoveItem deletes key. Removing a missing key is not an error.
func (s *SQLiteStore) RemoveItem(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_items WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to remove item %s: %w", key, err)
	}
	return nil
}

// Reset rolls back every applied migration and reapplies them, dropping all stored items.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	for {
		err := shared.RollbackMigration(ctx, s.db)
		if errors.Is(err, shared.ErrNoMigrations) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to reset storage: %w", err)
		}
	}
	if err := shared.RunMigrations(ctx, s.db); err != nil {
		return fmt.Errorf("failed to migrate storage: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
