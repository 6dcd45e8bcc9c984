package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVLog(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs.csv")

	j, err := NewCSV(path)
	require.NoError(t, err)

	require.NoError(t, j.Log("alice", CategoryAudit, "bought 10 AAPL"))
	require.NoError(t, j.Log("alice", CategoryError, "feed down"))
	require.NoError(t, j.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + 2 entries

	assert.Equal(t, []string{"id", "time", "name", "category", "message"}, rows[0])
	assert.Equal(t, "alice", rows[1][2])
	assert.Equal(t, CategoryAudit, rows[1][3])
	assert.Equal(t, CategoryError, rows[2][3])
}
