// Package localstore is the device-local persistence layer: two typed
// document tables (projects, sessions) plus a small key-value state table,
// all backed by an embedded SQLite database. When the database cannot be
// opened the store degrades to an in-memory map and every operation keeps
// working with ephemeral semantics; callers never see a storage error from
// an unavailable medium.
package localstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/existflow/zebra/internal/logger"
	_ "modernc.org/sqlite"
)

// Store is the device-local record store
type Store struct {
	mu  sync.Mutex
	db  *sql.DB
	mem *memStore // non-nil when the durable medium is unavailable
}

// DefaultPath returns the default database path (~/.zebra/zebra.db)
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".zebra", "zebra.db"), nil
}

// Open opens the store at path. It never fails: if the database cannot be
// opened or migrated the returned store runs in memory only.
func Open(path string) *Store {
	db, err := openDB(path)
	if err != nil {
		logger.Warn("local store unavailable, running in memory",
			logger.F("path", path), logger.F("error", err))
		return &Store{mem: newMemStore()}
	}
	return &Store{db: db}
}

// OpenDefault opens the store at the default path
func OpenDefault() *Store {
	path, err := DefaultPath()
	if err != nil {
		logger.Warn("local store unavailable, running in memory", logger.F("error", err))
		return &Store{mem: newMemStore()}
	}
	return Open(path)
}

func openDB(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			db.Close()
			return nil, fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return db, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    data TEXT NOT NULL
);`,
	`CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    data TEXT NOT NULL
);`,
	`CREATE TABLE IF NOT EXISTS state (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);`,
}

// Available reports whether the durable medium is in use. A false return
// means the store is ephemeral; it is informational only.
func (s *Store) Available() bool {
	return s.db != nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// State reads a value from the key-value state table
func (s *Store) State(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mem != nil {
		v, ok := s.mem.state[key]
		return v, ok
	}

	var value string
	err := s.db.QueryRow(`SELECT value FROM state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false
	}
	if err != nil {
		logger.Error("state read failed", logger.F("key", key), logger.F("error", err))
		return "", false
	}
	return value, true
}

// SetState writes a value to the key-value state table
func (s *Store) SetState(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mem != nil {
		s.mem.state[key] = value
		return nil
	}

	_, err := s.db.Exec(
		`INSERT INTO state (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("write state %q: %w", key, err)
	}
	return nil
}

// DeleteState removes a value from the key-value state table
func (s *Store) DeleteState(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mem != nil {
		delete(s.mem.state, key)
		return nil
	}

	if _, err := s.db.Exec(`DELETE FROM state WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete state %q: %w", key, err)
	}
	return nil
}

type memStore struct {
	projects map[string]string
	sessions map[string]string
	state    map[string]string
}

func newMemStore() *memStore {
	return &memStore{
		projects: make(map[string]string),
		sessions: make(map[string]string),
		state:    make(map[string]string),
	}
}
