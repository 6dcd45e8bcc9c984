package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/desk/market"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	name TEXT PRIMARY KEY,
	record TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS market (
	date TEXT PRIMARY KEY,
	snapshot TEXT NOT NULL
);
`

// SQLite backs the account store and the market snapshot store with a
// single SQLite file.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) ReadAccount(name string) ([]byte, bool, error) {
	var record string
	err := s.db.QueryRow(`SELECT record FROM accounts WHERE name = ?`, name).Scan(&record)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(record), true, nil
}

func (s *SQLite) WriteAccount(name string, record []byte) error {
	_, err := s.db.Exec(`REPLACE INTO accounts (name, record) VALUES (?, ?)`,
		name, string(record))
	return err
}

func (s *SQLite) ReadSnapshot(date string) (market.Snapshot, bool, error) {
	var raw string
	err := s.db.QueryRow(`SELECT snapshot FROM market WHERE date = ?`, date).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var snap market.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, false, fmt.Errorf("decode snapshot for %s: %w", date, err)
	}
	return snap, true, nil
}

func (s *SQLite) WriteSnapshot(date string, snap market.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot for %s: %w", date, err)
	}
	_, err = s.db.Exec(`REPLACE INTO market (date, snapshot) VALUES (?, ?)`,
		date, string(raw))
	return err
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
