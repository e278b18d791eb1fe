package persistence

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	sqlite, err := OpenSQLite(filepath.Join(dir, "wizard.db"))
	require.NoError(t, err)
	file, err := OpenFileStore(filepath.Join(dir, "saves"))
	require.NoError(t, err)

	stores := map[string]Store{
		"sqlite": sqlite,
		"file":   file,
		"memory": NewMemoryStore(),
	}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Load(ctx, "k")
			assert.True(t, errors.Is(err, ErrNotFound))

			require.NoError(t, store.Save(ctx, "k", []byte(`{"a":1}`)))
			require.NoError(t, store.Save(ctx, "k", []byte(`{"a":2}`)))
			got, err := store.Load(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, `{"a":2}`, string(got))

			require.NoError(t, store.Delete(ctx, "k"))
			require.NoError(t, store.Delete(ctx, "k"), "deleting twice is fine")
			_, err = store.Load(ctx, "k")
			assert.True(t, errors.Is(err, ErrNotFound))
		})
	}
}

func TestSQLiteRecentSaves(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "wizard.db"))
	require.NoError(t, err)
	defer db.Close()

	for _, blob := range []string{"a", "bb", "ccc"} {
		require.NoError(t, db.Save(ctx, SaveKey, []byte(blob)))
	}
	recent, err := db.RecentSaves(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 3, recent[0].Bytes)
	assert.Equal(t, SaveKey, recent[1].Key)

	require.NoError(t, db.PruneLog(ctx, 1))
	recent, err = db.RecentSaves(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestFileStoreRejectsPathKeys(t *testing.T) {
	fs, err := OpenFileStore(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, fs.Save(context.Background(), "../escape", []byte("x")))
}

func TestOpenStoreUnknownBackend(t *testing.T) {
	_, err := OpenStore("floppy", "")
	assert.Error(t, err)
}
