// Package localstore keeps the last known server snapshot of each
// collection in a local SQLite database, so the app can show data
// immediately on startup before the first refresh completes.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"keepsake/internal/localstore/migrations"
)

// ErrNoSnapshot is returned by Load when no snapshot of the requested
// kind has been saved yet.
var ErrNoSnapshot = errors.New("no snapshot")

// Store is a kind-keyed snapshot mirror. One row per collection.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the snapshot database at dsn and
// runs pending migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate snapshot db: %w", err)
	}
	return &Store{db: db}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// Save upserts the snapshot for one collection kind as JSON.
func (s *Store) Save(ctx context.Context, kind string, records any) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", kind, err)
	}
	query := `INSERT INTO snapshots (kind, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(kind) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`
	if _, err := s.db.ExecContext(ctx, query, kind, payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("save snapshot %s: %w", kind, err)
	}
	return nil
}

// Load decodes the saved snapshot for kind into out (a pointer to a
// slice of records).
func (s *Store) Load(ctx context.Context, kind string, out any) error {
	var payload []byte
	query := `SELECT payload FROM snapshots WHERE kind = ?`
	err := s.db.QueryRowContext(ctx, query, kind).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNoSnapshot
	}
	if err != nil {
		return fmt.Errorf("load snapshot %s: %w", kind, err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode snapshot %s: %w", kind, err)
	}
	return nil
}

// UpdatedAt reports when the snapshot for kind was last saved.
func (s *Store) UpdatedAt(ctx context.Context, kind string) (time.Time, error) {
	var at time.Time
	query := `SELECT updated_at FROM snapshots WHERE kind = ?`
	err := s.db.QueryRowContext(ctx, query, kind).Scan(&at)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrNoSnapshot
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("snapshot age %s: %w", kind, err)
	}
	return at, nil
}

// Delete removes the snapshot for kind. Missing rows are not an error.
func (s *Store) Delete(ctx context.Context, kind string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE kind = ?`, kind); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", kind, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
