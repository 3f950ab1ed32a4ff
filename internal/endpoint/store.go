package endpoint

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"
	"time"
)

//go:embed schema.sql
var schemaFS embed.FS

// StorageKey is the fixed slot the backend endpoint lives under.
const StorageKey = "code_analyzer_api_url"

// Store is the persistence port for the single endpoint slot.
type Store interface {
	// Get returns the stored value. ok is false when nothing was stored yet.
	Get(ctx context.Context) (value string, ok bool, err error)
	// Set overwrites the stored value.
	Set(ctx context.Context, value string) error
}

// MemoryStore keeps the slot in process memory.
type MemoryStore struct {
	mu     sync.Mutex
	value  string
	stored bool
	writes int
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Get(_ context.Context) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, m.stored, nil
}

func (m *MemoryStore) Set(_ context.Context, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = value
	m.stored = true
	m.writes++
	return nil
}

// Writes returns how many times Set was called.
func (m *MemoryStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// SQLiteStore persists the slot in a key/value settings table.
type SQLiteStore struct {
	db  *sql.DB
	key string
}

// NewSQLiteStore runs the embedded schema against db and returns a store
// bound to StorageKey.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return nil, fmt.Errorf("failed to execute schema: %w", err)
	}

	return &SQLiteStore{db: db, key: StorageKey}, nil
}

func (s *SQLiteStore) Get(ctx context.Context) (string, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ? LIMIT 1`, s.key)

	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("select setting: %w", err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.key, value, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert setting: %w", err)
	}
	return nil
}
