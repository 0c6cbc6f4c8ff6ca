package minio

import (
	"context"
	"testing"

	"github.com/hupe1980/geoprefix/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Keys(t *testing.T) {
	s := NewStore(nil, "bucket", WithPrefix("/indexes/"), WithPartSize(16<<20), WithStorageClass("STANDARD"))
	assert.Equal(t, "indexes/a/b.gpti", s.key("a/b.gpti"))
	assert.Equal(t, uint64(16<<20), s.put.PartSize)
	assert.Equal(t, ContentType, s.put.ContentType)

	name, ok := s.name("indexes/a/b.gpti")
	assert.True(t, ok)
	assert.Equal(t, "a/b.gpti", name)

	_, ok = s.name("indexes-old/a.gpti")
	assert.False(t, ok)
	_, ok = s.name("indexes/")
	assert.False(t, ok)

	bare := NewStore(nil, "bucket")
	assert.Equal(t, "a.gpti", bare.key("a.gpti"))
	name, ok = bare.name("a.gpti")
	assert.True(t, ok)
	assert.Equal(t, "a.gpti", name)
}

func TestStore_InvalidName(t *testing.T) {
	s := NewStore(nil, "bucket")
	ctx := context.Background()

	_, err := s.Get(ctx, "../x")
	assert.ErrorIs(t, err, blobstore.ErrInvalidName)
	assert.ErrorIs(t, s.Put(ctx, "", nil), blobstore.ErrInvalidName)
	assert.ErrorIs(t, s.Delete(ctx, "/abs"), blobstore.ErrInvalidName)
}

// TestMinioStore_Integration requires a running MinIO instance.
func TestMinioStore_Integration(t *testing.T) {
	client, err := minio.New("localhost:9000", &minio.Options{
		Creds: credentials.NewStaticV4("minioadmin", "minioadmin", ""),
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()
	if _, err := client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	const bucket = "test-geoprefix"
	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := NewStore(client, bucket, WithPrefix("test-prefix"))
	data := []byte("hello minio world")
	require.NoError(t, store.Put(ctx, "test.gpti", data))

	got, err := store.Get(ctx, "test.gpti")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "test.gpti")

	require.NoError(t, store.Delete(ctx, "test.gpti"))
	_, err = store.Get(ctx, "test.gpti")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
