package blobstore

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/hupe1980/geoprefix/internal/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, store BlobStore) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing.gpti")
	require.ErrorIs(t, err, ErrNotFound)

	data := []byte("hello world, this is a test blob")
	require.NoError(t, store.Put(ctx, "snapshots/a.gpti", data))
	require.NoError(t, store.Put(ctx, "snapshots/b.gpti", []byte("b")))
	require.NoError(t, store.Put(ctx, "other.gpti", []byte("o")))

	got, err := store.Get(ctx, "snapshots/a.gpti")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	// Returned slices are independent of stored content.
	got[0] = 'X'
	again, err := store.Get(ctx, "snapshots/a.gpti")
	require.NoError(t, err)
	assert.Equal(t, data, again)

	require.NoError(t, store.Put(ctx, "snapshots/a.gpti", []byte("replaced")))
	got, err = store.Get(ctx, "snapshots/a.gpti")
	require.NoError(t, err)
	assert.Equal(t, "replaced", string(got))

	names, err := store.List(ctx, "snapshots/")
	require.NoError(t, err)
	assert.Equal(t, []string{"snapshots/a.gpti", "snapshots/b.gpti"}, names)

	names, err = store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"other.gpti", "snapshots/a.gpti", "snapshots/b.gpti"}, names)

	require.NoError(t, store.Delete(ctx, "snapshots/a.gpti"))
	require.NoError(t, store.Delete(ctx, "snapshots/a.gpti"))
	_, err = store.Get(ctx, "snapshots/a.gpti")
	require.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.Put(ctx, "../escape", nil), ErrInvalidName)
	assert.ErrorIs(t, store.Put(ctx, "", nil), ErrInvalidName)
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	testStore(t, NewLocalStore(dir))

	t.Run("MissingRoot", func(t *testing.T) {
		names, err := NewLocalStore(dir+"/nope").List(context.Background(), "")
		require.NoError(t, err)
		assert.Empty(t, names)
	})
}

func TestLocalStore_Faults(t *testing.T) {
	ctx := context.Background()

	for name, fault := range map[string]fs.Fault{
		"Write":  {FailAfterBytes: 3},
		"Sync":   {FailAfterBytes: -1, FailOnSync: true},
		"Close":  {FailAfterBytes: -1, FailOnClose: true},
		"Rename": {FailAfterBytes: -1, FailOnRename: true},
	} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			ffs := fs.NewFaultyFS(nil)
			store := NewLocalStore(dir, WithFileSystem(ffs))
			require.NoError(t, store.Put(ctx, "index.gpti", []byte("old")))

			pattern := ".tmp-"
			if fault.FailOnRename {
				pattern = "index.gpti"
			}
			ffs.AddRule(pattern, fault)

			err := store.Put(ctx, "index.gpti", []byte("new payload"))
			require.ErrorIs(t, err, fs.ErrInjected)

			// The previous blob survives and no temporary file is left behind.
			got, err := store.Get(ctx, "index.gpti")
			require.NoError(t, err)
			assert.Equal(t, "old", string(got))

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Len(t, entries, 1)
		})
	}
}

func TestBadgerStore(t *testing.T) {
	t.Run("Disk", func(t *testing.T) {
		store, err := OpenBadgerStore(t.TempDir(), WithBadgerLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
		require.NoError(t, err)
		defer store.Close()
		testStore(t, store)
	})

	t.Run("InMemory", func(t *testing.T) {
		store, err := OpenBadgerStore("", WithBadgerInMemory())
		require.NoError(t, err)
		defer store.Close()
		testStore(t, store)
	})
}

type countingStore struct {
	BlobStore
	gets int
}

func (c *countingStore) Get(ctx context.Context, name string) ([]byte, error) {
	c.gets++
	return c.BlobStore.Get(ctx, name)
}

func TestCachingStore(t *testing.T) {
	store, err := NewCachingStore(NewMemoryStore(), 0)
	require.NoError(t, err)
	defer store.Close()
	testStore(t, store)

	t.Run("ReadThrough", func(t *testing.T) {
		inner := &countingStore{BlobStore: NewMemoryStore()}
		cs, err := NewCachingStore(inner, 1<<20)
		require.NoError(t, err)
		defer cs.Close()

		ctx := context.Background()
		require.NoError(t, cs.Put(ctx, "a", []byte("payload")))

		_, err = cs.Get(ctx, "a")
		require.NoError(t, err)
		cs.Wait()

		got, err := cs.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "payload", string(got))
		assert.Equal(t, 1, inner.gets)

		require.NoError(t, cs.Put(ctx, "a", []byte("new")))
		got, err = cs.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "new", string(got))
		assert.Equal(t, 2, inner.gets)
	})
}

type hookStore struct {
	BlobStore
	beforeWrite func()
}

func (h *hookStore) Put(ctx context.Context, name string, data []byte) error {
	if h.beforeWrite != nil {
		h.beforeWrite()
	}
	return h.BlobStore.Put(ctx, name, data)
}

func (h *hookStore) Delete(ctx context.Context, name string) error {
	if h.beforeWrite != nil {
		h.beforeWrite()
	}
	return h.BlobStore.Delete(ctx, name)
}

func TestCachingStore_ConcurrentRead(t *testing.T) {
	ctx := context.Background()
	inner := &hookStore{BlobStore: NewMemoryStore()}
	cs, err := NewCachingStore(inner, 1<<20)
	require.NoError(t, err)
	defer cs.Close()

	require.NoError(t, cs.Put(ctx, "a", []byte("old")))

	// A reader slipping in while the write is in flight caches the old blob.
	inner.beforeWrite = func() {
		_, _ = cs.Get(ctx, "a")
		cs.Wait()
	}

	require.NoError(t, cs.Put(ctx, "a", []byte("new")))
	got, err := cs.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))

	require.NoError(t, cs.Delete(ctx, "a"))
	_, err = cs.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidateName(t *testing.T) {
	for _, ok := range []string{"a", "a/b.gpti", "x/y/z"} {
		assert.NoError(t, ValidateName(ok), ok)
	}
	for _, bad := range []string{"", "/abs", "a/../b", "..", "../x", "a//b", "./a"} {
		assert.ErrorIs(t, ValidateName(bad), ErrInvalidName, bad)
	}
}
