package memserver

import (
	"database/sql"
	"encoding/json"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS memory (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// SQLiteBackend persists keys across restarts.
type SQLiteBackend struct {
	db *sql.DB
}

func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}

	return &SQLiteBackend{db: db}, nil
}

func (b *SQLiteBackend) Set(key string, value json.RawMessage) error {
	_, err := b.db.Exec(`REPLACE INTO memory (key, value) VALUES (?, ?)`,
		key, string(value))
	return err
}

func (b *SQLiteBackend) Get(key string) (json.RawMessage, bool, error) {
	var value string
	err := b.db.QueryRow(`SELECT value FROM memory WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return json.RawMessage(value), true, nil
}

func (b *SQLiteBackend) Clear() error {
	_, err := b.db.Exec(`DELETE FROM memory`)
	return err
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
