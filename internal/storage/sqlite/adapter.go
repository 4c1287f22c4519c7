// Package sqlite provides a SQLite-backed settings store used by the
// database token store.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Adapter wraps a SQLite database exposing simple key-value settings access
type Adapter struct {
	db *sql.DB
}

// NewAdapter opens (or creates) the SQLite database at the given path and
// migrates the settings schema.
func NewAdapter(databasePath string) (*Adapter, error) {
	if databasePath == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := sql.Open("sqlite3", databasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	adapter := &Adapter{db: db}

	if err := adapter.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return adapter, nil
}

func (a *Adapter) migrate() error {
	_, err := a.db.Exec(`CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	return err
}

// GetSetting retrieves a value by key, returns empty string if not found
func (a *Adapter) GetSetting(key string) (string, error) {
	var value string
	err := a.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil // Setting doesn't exist
	}
	return value, err
}

// SetSetting stores a key-value pair, overwriting any existing value
func (a *Adapter) SetSetting(key, value string) error {
	_, err := a.db.Exec(`INSERT OR REPLACE INTO settings (key, value, updated_at)
					  VALUES (?, ?, CURRENT_TIMESTAMP)`, key, value)
	return err
}

// Close closes the underlying database connection
func (a *Adapter) Close() error {
	return a.db.Close()
}
