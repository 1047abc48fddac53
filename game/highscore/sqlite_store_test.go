package highscore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T, limit int) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "data", "scores.db"), limit)
	if err != nil {
		// go-sqlite3 needs cgo.
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_RanksAndPrunes(t *testing.T) {
	ctx := context.Background()
	store := openTestSQLite(t, 2)

	require.NoError(t, store.Add(ctx, Entry{Date: "2024-02-01", Time: "08:00:00", Moves: 110, Runtime: 300.5, Seed: 9}))
	require.NoError(t, store.Add(ctx, Entry{Date: "2024-01-01", Time: "08:00:00", Moves: 110, Runtime: 200, Seed: 7}))
	require.NoError(t, store.Add(ctx, Entry{Date: "2024-03-01", Time: "08:00:00", Moves: 150, Runtime: 100, Seed: 1}))

	entries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{Date: "2024-01-01", Time: "08:00:00", Moves: 110, Runtime: 200, Seed: 7}, entries[0])
	assert.Equal(t, int64(9), entries[1].Seed)

	var count int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM high_scores`).Scan(&count))
	assert.Equal(t, 2, count)
}

func TestSQLiteStore_ClearAndReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "scores.db")
	store, err := OpenSQLiteStore(path, 0)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	require.NoError(t, store.Add(ctx, Entry{Date: "2024-01-01", Time: "08:00:00", Moves: 90}))
	require.NoError(t, store.Close())

	// Migrations are idempotent.
	store, err = OpenSQLiteStore(path, 0)
	require.NoError(t, err)
	defer store.Close()

	entries, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, store.Clear(ctx))
	entries, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
