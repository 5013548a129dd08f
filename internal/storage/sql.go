package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLBackend keeps records in a single kv table of a SQLite database.
type SQLBackend struct {
	db *sql.DB
}

var _ Backend = (*SQLBackend)(nil)

func NewSQLiteBackend(ctx context.Context, path string) (*SQLBackend, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite serialises writers anyway; one connection keeps :memory: usable.
	db.SetMaxOpenConns(1)

	q := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.ExecContext(ctx, q); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}

	return &SQLBackend{db: db}, nil
}

func (s *SQLBackend) Close() error {
	return s.db.Close()
}

func (s *SQLBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?;`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLBackend) Set(ctx context.Context, key string, value []byte) error {
	q := `
	INSERT OR REPLACE INTO kv (key, value, updated_at)
	VALUES (?, ?, CURRENT_TIMESTAMP);
	`
	if _, err := s.db.ExecContext(ctx, q, key, value); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *SQLBackend) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?;`, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
