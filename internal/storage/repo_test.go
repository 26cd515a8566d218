package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *SQLStore {
	t.Helper()
	s, err := Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testKV(t *testing.T, kv KV) {
	ctx := context.Background()

	_, err := kv.Get(ctx, "kenshi_owned")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Set(ctx, "kenshi_owned", `["A1"]`))
	v, err := kv.Get(ctx, "kenshi_owned")
	require.NoError(t, err)
	assert.Equal(t, `["A1"]`, v)

	require.NoError(t, kv.Set(ctx, "kenshi_owned", `["A1","B2"]`))
	v, err = kv.Get(ctx, "kenshi_owned")
	require.NoError(t, err)
	assert.Equal(t, `["A1","B2"]`, v)

	require.NoError(t, kv.Delete(ctx, "kenshi_owned"))
	_, err = kv.Get(ctx, "kenshi_owned")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, kv.Delete(ctx, "kenshi_owned"))
}

func TestSQLStore(t *testing.T) {
	testKV(t, openMemory(t))
}

func TestMemoryKV(t *testing.T) {
	testKV(t, NewMemoryKV())
}

func TestEnsureTablesIsIdempotent(t *testing.T) {
	s := openMemory(t)
	require.NoError(t, s.EnsureTables())
	require.NoError(t, s.DropTables())
	require.NoError(t, s.EnsureTables())
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("postgres", "x")
	assert.Error(t, err)
}

func TestSqliteDSNKeepsExistingQuery(t *testing.T) {
	assert.Equal(t, ":memory:", sqliteDSN(":memory:"))
	assert.Equal(t, "kenshi.db?"+sqliteParams, sqliteDSN("kenshi.db"))
	assert.Equal(t, "file:kenshi.db?cache=shared&"+sqliteParams, sqliteDSN("file:kenshi.db?cache=shared"))
}

func TestOpenFileDSNWithQuery(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "kenshi.db") + "?cache=shared"
	s, err := Open("sqlite3", dsn)
	require.NoError(t, err)
	defer s.Close()

	testKV(t, s)
}
