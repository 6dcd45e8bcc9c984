package journal

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "logs.db")

	j, err := NewSQLite(path)
	require.NoError(t, err)

	return j, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='logs'`).Scan(&name)
	assert.NoError(t, err)
	assert.Equal(t, "logs", name)
}

func TestSQLiteLogAndRecent(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	require.NoError(t, j.Log("alice", CategoryAudit, "bought 10 AAPL"))
	require.NoError(t, j.Log("alice", CategoryRisk, "buy rejected: insufficient funds"))
	require.NoError(t, j.Log("bob", CategoryAudit, "deposited 500"))

	entries, err := j.Recent("alice", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	assert.Equal(t, CategoryRisk, entries[0].Category)
	assert.Equal(t, CategoryAudit, entries[1].Category)
	for _, e := range entries {
		assert.Equal(t, "alice", e.Name)
		assert.NotEmpty(t, e.ID)
		assert.False(t, e.Time.IsZero())
	}
}

func TestSQLiteRecentLimit(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	for i := 0; i < 5; i++ {
		require.NoError(t, j.Log("carol", CategoryAudit, "entry"))
	}

	entries, err := j.Recent("carol", 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}
