// Package db manages the SQLite file that holds the serialized ledger records.
//
// The store is a plain key-value table: each key is a slot holding one JSON
// record. Which key is "the" record is decided by the persist package.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver with database/sql
)

// DB wraps a *sql.DB with the path it was opened from.
type DB struct {
	db   *sql.DB
	path string
}

// Slot describes a stored record without its body.
type Slot struct {
	Key       string
	Size      int
	UpdatedAt time.Time
}

// Open opens (or creates) the SQLite database at path and initialises the schema.
func Open(path string) (*DB, error) {
	sqldb, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("db.Open: %w", err)
	}
	d := &DB{db: sqldb, path: path}
	if err := d.createSchema(); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("db.Open createSchema: %w", err)
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Path returns the file the database was opened from.
func (d *DB) Path() string { return d.path }

// ---------------------------------------------------------------------------
// Schema
// ---------------------------------------------------------------------------

func (d *DB) createSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS slots (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	for _, s := range stmts {
		if _, err := d.db.Exec(s); err != nil {
			return fmt.Errorf("createSchema exec: %w\nSQL: %s", err, s)
		}
	}

	// Migration: stores created before slot timestamps lack updated_at.
	rows, err := d.db.Query("PRAGMA table_info(slots)")
	if err != nil {
		return err
	}
	cols := make(map[string]bool)
	for rows.Next() {
		var cid int
		var name, typ string
		var notNull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			rows.Close()
			return err
		}
		cols[name] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	if !cols["updated_at"] {
		if _, err := d.db.Exec("ALTER TABLE slots ADD COLUMN updated_at TEXT NOT NULL DEFAULT ''"); err != nil {
			return fmt.Errorf("migration updated_at: %w", err)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Slots
// ---------------------------------------------------------------------------

// Get returns the record stored under key, or ("", false, nil) if there is none.
func (d *DB) Get(key string) (string, bool, error) {
	var val string
	err := d.db.QueryRow(`SELECT value FROM slots WHERE key = ?`, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("db.Get: %w", err)
	}
	return val, true, nil
}

// Put upserts the record stored under key.
func (d *DB) Put(key, value string) error {
	_, err := d.db.Exec(
		`INSERT OR REPLACE INTO slots (key, value, updated_at) VALUES (?, ?, ?)`,
		key, value, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("db.Put: %w", err)
	}
	return nil
}

// Delete removes the record stored under key.
// Returns true if a record was found and deleted.
func (d *DB) Delete(key string) (bool, error) {
	res, err := d.db.Exec(`DELETE FROM slots WHERE key = ?`, key)
	if err != nil {
		return false, fmt.Errorf("db.Delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// List returns every slot, most recently written first.
func (d *DB) List() ([]Slot, error) {
	rows, err := d.db.Query(
		`SELECT key, length(value), updated_at FROM slots ORDER BY updated_at DESC, key`,
	)
	if err != nil {
		return nil, fmt.Errorf("db.List: %w", err)
	}
	defer rows.Close()

	var out []Slot
	for rows.Next() {
		var s Slot
		var updated string
		if err := rows.Scan(&s.Key, &s.Size, &updated); err != nil {
			return nil, fmt.Errorf("db.List: scan: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, updated); err == nil {
			s.UpdatedAt = t
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ---------------------------------------------------------------------------
// Meta
// ---------------------------------------------------------------------------

// GetMeta returns the value for key, or ("", false, nil) if not set.
func (d *DB) GetMeta(key string) (string, bool, error) {
	var val string
	err := d.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// SetMeta upserts a key-value pair in the meta table.
func (d *DB) SetMeta(key, value string) error {
	_, err := d.db.Exec(
		`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, key, value,
	)
	return err
}
