package memserver

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, backend Backend, input string) []string {
	t.Helper()

	var out bytes.Buffer
	s := New(backend, zerolog.Nop())
	require.NoError(t, s.Serve(strings.NewReader(input), &out))

	return strings.Split(strings.TrimSpace(out.String()), "\n")
}

func TestSetGetClear(t *testing.T) {
	t.Parallel()

	lines := serve(t, NewMemoryBackend(), strings.Join([]string{
		`{"action":"set","key":"alice","value":{"balance":10000}}`,
		`{"action":"get","key":"alice"}`,
		`{"action":"get","key":"missing"}`,
		`{"action":"clear"}`,
		`{"action":"get","key":"alice"}`,
	}, "\n")+"\n")

	require.Len(t, lines, 5)
	assert.JSONEq(t, `{"status":"ok"}`, lines[0])
	assert.JSONEq(t, `{"value":{"balance":10000}}`, lines[1])
	assert.JSONEq(t, `{"value":null}`, lines[2])
	assert.JSONEq(t, `{"status":"cleared"}`, lines[3])
	assert.JSONEq(t, `{"value":null}`, lines[4])
}

func TestBadInputDoesNotAbort(t *testing.T) {
	t.Parallel()

	lines := serve(t, NewMemoryBackend(), strings.Join([]string{
		`not json at all`,
		`{"action":"dance"}`,
		`{"action":"set","key":"k","value":1}`,
	}, "\n")+"\n")

	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], `"error"`)
	assert.JSONEq(t, `{"error":"unknown action"}`, lines[1])
	assert.JSONEq(t, `{"status":"ok"}`, lines[2])
}

func TestSQLiteBackendPersists(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "memory.db")

	b, err := NewSQLiteBackend(path)
	require.NoError(t, err)

	lines := serve(t, b, `{"action":"set","key":"k","value":"v"}`+"\n")
	assert.JSONEq(t, `{"status":"ok"}`, lines[0])
	require.NoError(t, b.Close())

	// Reopen: the key survives the restart.
	b2, err := NewSQLiteBackend(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b2.Close() })

	lines = serve(t, b2, `{"action":"get","key":"k"}`+"\n")
	assert.JSONEq(t, `{"value":"v"}`, lines[0])
}
