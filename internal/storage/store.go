// Package storage persists a tournament's structured snapshot to
// Postgres as a single jsonb column, grounded in the teacher's
// repository layer: database/sql with lib/pq as the driver, jsonb
// marshaled through json.RawMessage, and sql.NullTime for the optional
// timestamp. The consistency validator runs immediately before every
// write — a snapshot that fails it is never persisted.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/matchforge/swiss-engine/internal/consistency"
	"github.com/matchforge/swiss-engine/internal/domain"
)

// Store is a single-tournament Postgres-backed snapshot store. The
// system manages exactly one live tournament at a time, so there's one
// row, keyed by a fixed id.
type Store struct {
	db *sql.DB
}

// New wraps an already-opened *sql.DB.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens a Postgres connection pool via lib/pq and wraps it.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open: %w", err)
	}
	return New(db), nil
}

// EnsureSchema creates the snapshot table if it doesn't already exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tournament_snapshots (
	id         INTEGER PRIMARY KEY,
	snapshot   JSONB NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`
	_, err := s.db.ExecContext(ctx, ddl)
	if err != nil {
		return fmt.Errorf("storage: ensure schema: %w", err)
	}
	return nil
}

const singletonID = 1

// Save validates t's structured/textual consistency, then upserts its
// snapshot. It refuses to persist a tournament that fails validation.
func (s *Store) Save(ctx context.Context, t *domain.Tournament) error {
	if err := consistency.Validate(t); err != nil {
		return fmt.Errorf("storage: refusing to persist inconsistent tournament: %w", err)
	}

	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("storage: marshal snapshot: %w", err)
	}

	const q = `
INSERT INTO tournament_snapshots (id, snapshot, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET snapshot = EXCLUDED.snapshot, updated_at = EXCLUDED.updated_at`
	_, err = s.db.ExecContext(ctx, q, singletonID, json.RawMessage(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("storage: save: %w", err)
	}
	return nil
}

// Load reads the current snapshot, returning (nil, nil) if none has ever
// been saved.
func (s *Store) Load(ctx context.Context) (*domain.Tournament, error) {
	const q = `SELECT snapshot, updated_at FROM tournament_snapshots WHERE id = $1`

	var raw json.RawMessage
	var updatedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, q, singletonID).Scan(&raw, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: load: %w", err)
	}

	var t domain.Tournament
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("storage: unmarshal snapshot: %w", err)
	}
	return &t, nil
}

// Clear removes the stored snapshot, used by the reinit operation.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tournament_snapshots WHERE id = $1`, singletonID)
	if err != nil {
		return fmt.Errorf("storage: clear: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
