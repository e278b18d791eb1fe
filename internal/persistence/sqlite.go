package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps save blobs in a SQLite database.
type SQLiteStore struct {
	conn *sqlx.DB
}

// SaveRecord is one row of the write log.
type SaveRecord struct {
	Key     string    `db:"key" json:"key"`
	Bytes   int       `db:"bytes" json:"bytes"`
	SavedAt time.Time `db:"saved_at" json:"savedAt"`
}

// OpenSQLite opens or creates a SQLite database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	conn.SetMaxOpenConns(1)

	db := &SQLiteStore{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *SQLiteStore) Close() error {
	return db.conn.Close()
}

func (db *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS saves (
		key TEXT PRIMARY KEY,
		blob BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS save_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		key TEXT NOT NULL,
		bytes INTEGER NOT NULL,
		saved_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_save_log_key ON save_log(key);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Load returns the blob stored under key.
func (db *SQLiteStore) Load(ctx context.Context, key string) ([]byte, error) {
	var blob []byte
	err := db.conn.GetContext(ctx, &blob, "SELECT blob FROM saves WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return blob, nil
}

// Save replaces the blob under key and appends to the write log.
func (db *SQLiteStore) Save(ctx context.Context, key string, blob []byte) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UnixMilli()
	if _, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO saves (key, blob, updated_at) VALUES (?, ?, ?)",
		key, blob, now,
	); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO save_log (key, bytes, saved_at) VALUES (?, ?, ?)",
		key, len(blob), now,
	); err != nil {
		return fmt.Errorf("log save %s: %w", key, err)
	}
	return tx.Commit()
}

// Delete removes key. Deleting a missing key is not an error.
func (db *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := db.conn.ExecContext(ctx, "DELETE FROM saves WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// RecentSaves returns the most recent writes, newest first.
func (db *SQLiteStore) RecentSaves(ctx context.Context, limit int) ([]SaveRecord, error) {
	var rows []struct {
		Key     string `db:"key"`
		Bytes   int    `db:"bytes"`
		SavedAt int64  `db:"saved_at"`
	}
	err := db.conn.SelectContext(ctx, &rows,
		"SELECT key, bytes, saved_at FROM save_log ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	out := make([]SaveRecord, len(rows))
	for i, r := range rows {
		out[i] = SaveRecord{Key: r.Key, Bytes: r.Bytes, SavedAt: time.UnixMilli(r.SavedAt)}
	}
	return out, nil
}

// PruneLog keeps only the newest keep log rows.
func (db *SQLiteStore) PruneLog(ctx context.Context, keep int) error {
	_, err := db.conn.ExecContext(ctx,
		"DELETE FROM save_log WHERE id NOT IN (SELECT id FROM save_log ORDER BY id DESC LIMIT ?)",
		keep,
	)
	return err
}
