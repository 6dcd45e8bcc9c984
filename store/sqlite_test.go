package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/desk/market"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()

	s, err := NewSQLite(filepath.Join(t.TempDir(), "desk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestSQLiteAccountRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestSQLite(t)

	_, ok, err := s.ReadAccount("alice")
	require.NoError(t, err)
	assert.False(t, ok, "absent account must read as not found")

	require.NoError(t, s.WriteAccount("alice", []byte(`{"balance":10000}`)))

	record, ok, err := s.ReadAccount("alice")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"balance":10000}`, string(record))
}

func TestSQLiteAccountReplace(t *testing.T) {
	t.Parallel()

	s := newTestSQLite(t)

	require.NoError(t, s.WriteAccount("alice", []byte(`{"balance":10000}`)))
	require.NoError(t, s.WriteAccount("alice", []byte(`{"balance":8990}`)))

	record, ok, err := s.ReadAccount("alice")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"balance":8990}`, string(record))
}

func TestSQLiteSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestSQLite(t)

	_, ok, err := s.ReadSnapshot("2026-08-31")
	require.NoError(t, err)
	assert.False(t, ok)

	snap := market.Snapshot{"AAPL": 187.5, "MSFT": 250.25}
	require.NoError(t, s.WriteSnapshot("2026-08-31", snap))

	got, ok, err := s.ReadSnapshot("2026-08-31")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, snap, got)
}

func TestMemoryMatchesSQLiteContract(t *testing.T) {
	t.Parallel()

	m := NewMemory()

	_, ok, err := m.ReadAccount("alice")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.WriteAccount("alice", []byte("v1")))
	require.NoError(t, m.WriteAccount("alice", []byte("v2")))

	record, ok, err := m.ReadAccount("alice")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v2", string(record))

	require.NoError(t, m.WriteSnapshot("2026-08-31", market.Snapshot{"AAPL": 100}))

	snap, ok, err := m.ReadSnapshot("2026-08-31")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 100.0, snap["AAPL"])

	// Mutating the returned snapshot must not leak into the store.
	snap["AAPL"] = 1
	again, _, err := m.ReadSnapshot("2026-08-31")
	require.NoError(t, err)
	assert.Equal(t, 100.0, again["AAPL"])
}
