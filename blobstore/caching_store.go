package blobstore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
)

// CachingStore wraps a BlobStore and keeps recently read blobs in memory.
// Writes and deletes go to the inner store and invalidate the cached copy.
type CachingStore struct {
	inner BlobStore
	cache *ristretto.Cache[string, []byte]
}

// NewCachingStore creates a CachingStore holding up to maxBytes of blob data.
// maxBytes defaults to 64MB if <= 0.
func NewCachingStore(inner BlobStore, maxBytes int64) (*CachingStore, error) {
	if maxBytes <= 0 {
		maxBytes = 64 << 20
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: 1 << 14,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("blob cache: %w", err)
	}
	return &CachingStore{inner: inner, cache: c}, nil
}

// Get serves the blob from cache or reads it through.
func (s *CachingStore) Get(ctx context.Context, name string) ([]byte, error) {
	if data, ok := s.cache.Get(name); ok {
		return bytes.Clone(data), nil
	}
	data, err := s.inner.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	s.cache.Set(name, bytes.Clone(data), int64(len(data))+1)
	return data, nil
}

// Put writes through and drops the cached copy.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.cache.Del(name)
	if err := s.inner.Put(ctx, name, data); err != nil {
		return err
	}
	// A Get racing the write may have cached the old blob.
	s.cache.Del(name)
	return nil
}

// Delete deletes through and drops the cached copy.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.cache.Del(name)
	if err := s.inner.Delete(ctx, name); err != nil {
		return err
	}
	s.cache.Del(name)
	return nil
}

// List is served by the inner store.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// Wait blocks until pending cache writes are applied.
func (s *CachingStore) Wait() { s.cache.Wait() }

// Close releases the cache.
func (s *CachingStore) Close() error {
	s.cache.Close()
	return nil
}
