package env

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// TableStore is a Go-level sqlite key/value store for Table values,
// reachable through OpenTableStore; no builtin of the Language exposes it.
// It uses a pure-Go sqlite driver so the compiled output stays a single static binary with
// no cgo dependency, unlike a C sqlite binding would require.
type TableStore struct {
	db *sql.DB
}

// OpenTableStore opens (creating if absent) a sqlite-backed key/value
// store used to durably persist a Table value between program runs.
func OpenTableStore(path string) (*TableStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("db.open: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS blang_table (
		bucket TEXT NOT NULL,
		k TEXT NOT NULL,
		v TEXT NOT NULL,
		PRIMARY KEY (bucket, k)
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("db.open: %w", err)
	}
	return &TableStore{db: db}, nil
}

// Save writes every entry of a table, already rendered to key/value text by
// the per-type __print function, into bucket.
func (s *TableStore) Save(bucket string, entries map[string]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM blang_table WHERE bucket = ?`, bucket); err != nil {
		tx.Rollback()
		return err
	}
	for k, v := range entries {
		if _, err := tx.Exec(`INSERT INTO blang_table (bucket, k, v) VALUES (?, ?, ?)`, bucket, k, v); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Load returns the raw key/value text pairs stored under bucket, for the
// lowered Table constructor to re-parse via the key/value types' parse
// routines.
func (s *TableStore) Load(bucket string) (map[string]string, error) {
	rows, err := s.db.Query(`SELECT k, v FROM blang_table WHERE bucket = ?`, bucket)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

// Close releases the underlying sqlite connection.
func (s *TableStore) Close() error { return s.db.Close() }
