// Package store persists extracted records in SQLite, keyed by SKU.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dgallion1/reportgest/internal/record"
)

// ErrNotFound is returned when no record exists for a SKU.
var ErrNotFound = errors.New("record not found")

// Store is a SQLite-backed record store.
type Store struct {
	db   *sql.DB
	path string
}

// Entry is a stored record's listing view.
type Entry struct {
	SKU       string    `json:"sku"`
	File      string    `json:"file"`
	Title     string    `json:"title"`
	Failed    bool      `json:"failed"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Open opens or creates the database at path, creating its directory.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=10000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	s := &Store{db: db, path: path}
	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS records (
		sku TEXT PRIMARY KEY,
		file TEXT NOT NULL,
		title TEXT NOT NULL,
		failed INTEGER NOT NULL DEFAULT 0,
		data TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_records_updated ON records(updated_at);
	`)
	return err
}

// Put inserts or replaces the record under its SKU. failed marks records
// produced with an assembly error.
func (s *Store) Put(ctx context.Context, rec *record.Record, failed bool) error {
	if rec == nil || rec.SKU == "" {
		return fmt.Errorf("put record: missing sku")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", rec.SKU, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (sku, file, title, failed, data, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(sku) DO UPDATE SET
			file = excluded.file,
			title = excluded.title,
			failed = excluded.failed,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		rec.SKU, rec.File, rec.Title, failed, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("put record %s: %w", rec.SKU, err)
	}
	return nil
}

// Get returns the record stored under sku.
func (s *Store) Get(ctx context.Context, sku string) (*record.Record, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM records WHERE sku = ?`, sku).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, sku)
	}
	if err != nil {
		return nil, fmt.Errorf("get record %s: %w", sku, err)
	}
	var rec record.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", sku, err)
	}
	return &rec, nil
}

// List returns up to limit entries, most recently updated first. A limit of
// zero or less returns all entries.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT sku, file, title, failed, updated_at FROM records ORDER BY updated_at DESC, sku`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.SKU, &e.File, &e.Title, &e.Failed, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes the record stored under sku.
func (s *Store) Delete(ctx context.Context, sku string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE sku = ?`, sku)
	if err != nil {
		return fmt.Errorf("delete record %s: %w", sku, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete record %s: %w", sku, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, sku)
	}
	return nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}
