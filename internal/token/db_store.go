package token

import (
	"context"
	"encoding/json"

	"lead-bridge/internal/common/errors"
	"lead-bridge/internal/common/logging"
)

const settingKey = "crm_token"

// SettingsStorage defines the key-value storage operations the DBStore needs.
// This abstracts the underlying database so the store works with any
// settings-table backend.
type SettingsStorage interface {
	// GetSetting retrieves a value by key, returns empty string if not found
	GetSetting(key string) (string, error)
	// SetSetting stores a key-value pair, overwrites existing values
	SetSetting(key, value string) error
}

// DBStore persists the token pair as JSON in a database settings table
type DBStore struct {
	store SettingsStorage
}

// NewDBStore creates a database-backed token store
func NewDBStore(store SettingsStorage) *DBStore {
	return &DBStore{store: store}
}

// Read loads the current token record from the settings table
func (s *DBStore) Read(ctx context.Context) (*Token, error) {
	data, err := s.store.GetSetting(settingKey)
	if err != nil {
		return nil, errors.PersistenceError("failed to read token from database", err)
	}

	if data == "" {
		return nil, nil
	}

	var tok Token
	if err := json.Unmarshal([]byte(data), &tok); err != nil {
		logging.Warn("Stored token is corrupted, treating as empty",
			logging.Field{Key: "key", Value: settingKey},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, nil
	}

	return &tok, nil
}

// Write persists the full token record, replacing the previous one
func (s *DBStore) Write(ctx context.Context, tok *Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return errors.PersistenceError("failed to serialize token", err)
	}

	if err := s.store.SetSetting(settingKey, string(data)); err != nil {
		return errors.PersistenceError("failed to write token to database", err)
	}

	return nil
}
