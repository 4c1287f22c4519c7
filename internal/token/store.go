package token

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"lead-bridge/internal/common/errors"
	"lead-bridge/internal/common/logging"
)

// Store defines the contract for persisting the current token pair.
//
// Read returns (nil, nil) when no token has been persisted yet. A corrupted
// record also reads as no token: it is logged and never escalated, so a bad
// write can never take the integration endpoint down. Write always persists
// the complete record, replacing whatever was stored before.
type Store interface {
	Read(ctx context.Context) (*Token, error)
	Write(ctx context.Context, tok *Token) error
}

// FileStore persists the token pair as a single JSON document on disk.
//
// Writes go through a temp file followed by an atomic rename, guarded by a
// mutex, so a concurrent request can never observe a half-written record.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a file-backed token store at the given path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Read loads the current token record from disk
func (s *FileStore) Read(ctx context.Context) (*Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.PersistenceError("failed to read token file", err)
	}

	var tok Token
	if err := json.Unmarshal(data, &tok); err != nil {
		logging.Warn("Token file is corrupted, treating as empty",
			logging.Field{Key: "path", Value: s.path},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, nil
	}

	return &tok, nil
}

// Write persists the full token record, atomically replacing the previous one
func (s *FileStore) Write(ctx context.Context, tok *Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return errors.PersistenceError("failed to serialize token", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return errors.PersistenceError("failed to write token file", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return errors.PersistenceError("failed to replace token file", err)
	}

	return nil
}

// Path returns the absolute path of the backing file, for logging
func (s *FileStore) Path() string {
	abs, err := filepath.Abs(s.path)
	if err != nil {
		return s.path
	}
	return abs
}

// MemoryStore is a mutex-guarded in-memory token store for tests and
// development.
type MemoryStore struct {
	mu  sync.RWMutex
	tok *Token
}

// NewMemoryStore creates an empty in-memory token store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Read returns the stored token, or (nil, nil) if none was written
func (s *MemoryStore) Read(ctx context.Context) (*Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tok == nil {
		return nil, nil
	}
	copied := *s.tok
	return &copied, nil
}

// Write replaces the stored token
func (s *MemoryStore) Write(ctx context.Context, tok *Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *tok
	s.tok = &copied
	return nil
}
