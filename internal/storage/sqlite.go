package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/meur/moonshade/internal/events"
	"github.com/meur/moonshade/internal/models"
)

// DefaultKey is the record key the admin console has always used
const DefaultKey = "moonshade_events_ui_v1"

// Store persists the events document and share links in SQLite
type Store struct {
	db  *sql.DB
	key string
}

// New creates a new Store with SQLite
func New(dbPath, key string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if key == "" {
		key = DefaultKey
	}

	store := &Store{db: db, key: key}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate runs database migrations
func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			key TEXT PRIMARY KEY,
			body TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS shares (
			code TEXT PRIMARY KEY,
			token TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// --- Document ---

// Load returns the persisted document, or nil if none was saved
func (s *Store) Load(ctx context.Context) (*models.Document, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE key = ?`, s.key).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var doc models.Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("decode stored document: %w", err)
	}
	return &doc, nil
}

// Save replaces the persisted document
func (s *Store) Save(ctx context.Context, doc *models.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (key, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`, s.key, string(body), time.Now())
	return err
}

// Clear removes the persisted document
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE key = ?`, s.key)
	return err
}

// --- Share links ---

// PutShare stores a share token under code. Codes are never overwritten.
func (s *Store) PutShare(ctx context.Context, code, token string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shares (code, token, created_at) VALUES (?, ?, ?)
	`, code, token, time.Now())
	var sqlErr sqlite3.Error
	if errors.As(err, &sqlErr) && sqlErr.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("share %q: %w", code, events.ErrShareCodeTaken)
	}
	return err
}

// GetShare returns the token stored under code, or "" if unknown
func (s *Store) GetShare(ctx context.Context, code string) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx, `SELECT token FROM shares WHERE code = ?`, code).Scan(&token)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return token, nil
}
