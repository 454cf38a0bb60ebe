package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLite is the durable backend. Values live in a single key/value table.
type SQLite struct {
	path    string
	readDB  *sql.DB
	writeDB *sql.DB
}

var _ Backend = (*SQLite)(nil)

func OpenSQLite(dbPath string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	s := &SQLite{path: dbPath, readDB: readDB, writeDB: writeDB}
	if err := s.init(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) init() error {
	_, err := s.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS entries (
			key        TEXT PRIMARY KEY,
			value      BLOB NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	var errs []error
	if s.readDB != nil {
		errs = append(errs, s.readDB.Close())
	}
	if s.writeDB != nil {
		errs = append(errs, s.writeDB.Close())
	}
	return errors.Join(errs...)
}

func (s *SQLite) Load(key string) ([]byte, bool, error) {
	var value []byte
	err := s.readDB.QueryRow("SELECT value FROM entries WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLite) Store(key string, value []byte) error {
	_, err := s.writeDB.Exec(`
		INSERT INTO entries (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Remove(key string) error {
	if _, err := s.writeDB.Exec("DELETE FROM entries WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// Keys lists stored keys starting with prefix. substr avoids LIKE wildcard
// handling for prefixes containing '_'.
func (s *SQLite) Keys(prefix string) ([]string, error) {
	rows, err := s.readDB.Query(
		"SELECT key FROM entries WHERE substr(key, 1, ?) = ? ORDER BY key",
		len(prefix), prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Size returns the database file size in bytes.
func (s *SQLite) Size() (int64, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
