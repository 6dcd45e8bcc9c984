package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/desk/pkg/id"
)

// SQLite is a Logger backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) Log(name, category, message string) error {
	_, err := j.db.Exec(`
		INSERT INTO logs (id, time, name, category, message)
		VALUES (?, ?, ?, ?, ?)`,
		id.New(), time.Now().UTC(), name, category, message,
	)
	return err
}

// Recent returns the most recent entries for an account, newest first.
func (j *SQLite) Recent(name string, limit int) ([]Entry, error) {
	rows, err := j.db.Query(`
		SELECT id, time, name, category, message
		FROM logs
		WHERE name = ?
		ORDER BY time DESC, id DESC
		LIMIT ?`, name, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Time, &e.Name, &e.Category, &e.Message); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan logs: %w", err)
	}
	return out, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
