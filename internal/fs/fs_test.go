package fs

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS(t *testing.T) {
	tmp := t.TempDir()
	lfs := LocalFS{}

	dir := filepath.Join(tmp, "subdir")
	require.NoError(t, lfs.MkdirAll(dir, 0o755))

	path := filepath.Join(dir, "a.gpti")
	f, err := lfs.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	require.NoError(t, err)
	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())

	renamed := filepath.Join(dir, "b.gpti")
	require.NoError(t, lfs.Rename(path, renamed))

	entries, err := lfs.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "b.gpti", entries[0].Name())

	f, err = lfs.OpenFile(renamed, os.O_RDONLY, 0)
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "hello", string(data))

	require.NoError(t, lfs.Remove(renamed))
	_, err = lfs.OpenFile(renamed, os.O_RDONLY, 0)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFaultyFS(t *testing.T) {
	dir := t.TempDir()
	create := func(ffs *FaultyFS, name string) File {
		t.Helper()
		f, err := ffs.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		require.NoError(t, err)
		return f
	}

	t.Run("FailAfterBytes", func(t *testing.T) {
		ffs := NewFaultyFS(nil)
		ffs.AddRule("limited", Fault{FailAfterBytes: 4})

		f := create(ffs, "limited.bin")
		_, err := f.Write([]byte("abc"))
		require.NoError(t, err)
		_, err = f.Write([]byte("de"))
		assert.ErrorIs(t, err, ErrInjected)
		require.NoError(t, f.Close())

		f = create(ffs, "other.bin")
		_, err = f.Write([]byte("abcdef"))
		require.NoError(t, err)
		require.NoError(t, f.Close())

		assert.Equal(t, int64(9), ffs.Written())
	})

	t.Run("SyncCloseRename", func(t *testing.T) {
		boom := errors.New("boom")
		ffs := NewFaultyFS(nil)
		ffs.AddRule("sync", Fault{FailAfterBytes: -1, FailOnSync: true, Err: boom})
		ffs.AddRule("close", Fault{FailAfterBytes: -1, FailOnClose: true})
		ffs.AddRule("target", Fault{FailAfterBytes: -1, FailOnRename: true})

		f := create(ffs, "sync.bin")
		assert.ErrorIs(t, f.Sync(), boom)
		require.NoError(t, f.Close())

		f = create(ffs, "close.bin")
		assert.ErrorIs(t, f.Close(), ErrInjected)

		err := ffs.Rename(filepath.Join(dir, "sync.bin"), filepath.Join(dir, "target.bin"))
		assert.ErrorIs(t, err, ErrInjected)
		require.NoError(t, ffs.Rename(filepath.Join(dir, "sync.bin"), filepath.Join(dir, "moved.bin")))
	})
}
