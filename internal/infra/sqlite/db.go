// Package sqlite provides the persistent key-value store backing the
// daily-problem engine. Uses WAL mode for concurrent reads and crash-safe
// writes. The store exposes the narrow get/set/remove/list contract the
// engine was designed against — no transactions, no atomic multi-key
// writes — so every caller has to tolerate torn multi-key state.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)

	"github.com/cfdaily/cfdaily/internal/domain"
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode and a 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// SQLite is single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// The engine's entire state lives in one KV table: per-day
		// problem caches, per-identity streak ledgers, the rating cache,
		// and the current-identity marker.
		`CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_kv_updated ON kv(updated_at)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── KV Contract ────────────────────────────────────────────────────────────

// Get returns the raw value for key, or domain.ErrNotFound.
func (d *DB) Get(key string) (string, error) {
	var value string
	err := d.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: get %s: %v", domain.ErrStoreUnavailable, key, err)
	}
	return value, nil
}

// Set stores value under key, overwriting any previous value.
// Writes race with last-write-wins semantics; that is the accepted
// conflict-resolution policy for this store.
func (d *DB) Set(key, value string, updatedAt int64) error {
	err := retryOp(defaultRetryConfig, func() error {
		_, err := d.db.Exec(
			`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
			key, value, updatedAt,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: set %s: %v", domain.ErrStoreUnavailable, key, err)
	}
	return nil
}

// SetIfAbsent stores value under key only when the key does not exist.
// Returns true when the write happened. This gives the per-day global
// problem cache its write-once property without transactions.
func (d *DB) SetIfAbsent(key, value string, updatedAt int64) (bool, error) {
	var written bool
	err := retryOp(defaultRetryConfig, func() error {
		res, err := d.db.Exec(
			`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO NOTHING`,
			key, value, updatedAt,
		)
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		written = n > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%w: set-if-absent %s: %v", domain.ErrStoreUnavailable, key, err)
	}
	return written, nil
}

// Remove deletes the given keys. Missing keys are not an error.
func (d *DB) Remove(keys ...string) error {
	err := retryOp(defaultRetryConfig, func() error {
		for _, k := range keys {
			if _, err := d.db.Exec(`DELETE FROM kv WHERE key = ?`, k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: remove: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// ListKeys returns all keys with the given prefix ("" for all keys).
func (d *DB) ListKeys(prefix string) ([]string, error) {
	rows, err := d.db.Query(
		`SELECT key FROM kv WHERE key LIKE ? || '%' ORDER BY key`, prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: list keys: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("%w: scan key: %v", domain.ErrStoreUnavailable, err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// RemoveOlderThan deletes keys with the given prefix not touched since
// cutoff (unix seconds). Used by the startup sweep of stale per-day
// caches. Returns the number of keys removed.
func (d *DB) RemoveOlderThan(prefix string, cutoff int64) (int, error) {
	var n int64
	err := retryOp(defaultRetryConfig, func() error {
		res, err := d.db.Exec(
			`DELETE FROM kv WHERE key LIKE ? || '%' AND updated_at < ?`, prefix, cutoff,
		)
		if err != nil {
			return err
		}
		n, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: sweep %s: %v", domain.ErrStoreUnavailable, prefix, err)
	}
	return int(n), nil
}

// ─── JSON Helpers ───────────────────────────────────────────────────────────

// GetJSON unmarshals the stored value for key into v.
func (d *DB) GetJSON(key string, v any) error {
	raw, err := d.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// SetJSON marshals v and stores it under key.
func (d *DB) SetJSON(key string, v any, updatedAt int64) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return d.Set(key, string(raw), updatedAt)
}

// SetJSONIfAbsent marshals v and stores it only when key does not exist.
func (d *DB) SetJSONIfAbsent(key string, v any, updatedAt int64) (bool, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return false, fmt.Errorf("encode %s: %w", key, err)
	}
	return d.SetIfAbsent(key, string(raw), updatedAt)
}
