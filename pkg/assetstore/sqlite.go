package assetstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps assets in a single table of a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS assets (
			id TEXT PRIMARY KEY,
			blob BLOB NOT NULL,
			mime_type TEXT NOT NULL,
			width INTEGER NOT NULL DEFAULT 0,
			height INTEGER NOT NULL DEFAULT 0,
			byte_size INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// Put upserts rec.
func (s *SQLiteStore) Put(ctx context.Context, rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assets (id, blob, mime_type, width, height, byte_size, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			blob = excluded.blob,
			mime_type = excluded.mime_type,
			width = excluded.width,
			height = excluded.height,
			byte_size = excluded.byte_size,
			created_at = excluded.created_at`,
		rec.ID, rec.Blob, rec.MimeType, rec.Width, rec.Height, rec.ByteSize, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to put asset %s: %w", rec.ID, err)
	}
	return nil
}

// Get reads the record for id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Record, error) {
	rec := Record{ID: id}
	err := s.db.QueryRowContext(ctx,
		`SELECT blob, mime_type, width, height, byte_size, created_at FROM assets WHERE id = ?`, id,
	).Scan(&rec.Blob, &rec.MimeType, &rec.Width, &rec.Height, &rec.ByteSize, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset %s: %w", id, err)
	}
	return &rec, nil
}

// GetAllKeys returns every stored id in sorted order.
func (s *SQLiteStore) GetAllKeys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM assets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Delete removes id.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM assets WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete asset %s: %w", id, err)
	}
	return nil
}

// Count returns the number of stored assets.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assets`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)
