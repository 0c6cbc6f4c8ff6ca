package minio

import (
	"bytes"
	"context"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/hupe1980/geoprefix/blobstore"
	"github.com/minio/minio-go/v7"
)

// ContentType is attached to every snapshot written by Store.
const ContentType = "application/vnd.geoprefix.snapshot"

// Store implements blobstore.BlobStore for MinIO and S3-compatible storage.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
	put    minio.PutObjectOptions
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix prepends prefix to all keys (e.g. "indexes/").
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = strings.Trim(prefix, "/") }
}

// WithPartSize sets the multipart upload part size. Zero lets the client choose.
func WithPartSize(n uint64) Option {
	return func(s *Store) { s.put.PartSize = n }
}

// WithStorageClass sets the storage class of written snapshots (e.g. "REDUCED_REDUNDANCY").
func WithStorageClass(class string) Option {
	return func(s *Store) { s.put.StorageClass = class }
}

// NewStore creates a Store for bucket.
func NewStore(client *minio.Client, bucket string, opts ...Option) *Store {
	s := &Store{
		client: client,
		bucket: bucket,
		put:    minio.PutObjectOptions{ContentType: ContentType},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// name maps an object key back to a blob name, reporting false for keys outside the prefix.
func (s *Store) name(key string) (string, bool) {
	if s.prefix == "" {
		return key, key != ""
	}
	rest, ok := strings.CutPrefix(key, s.prefix+"/")
	return rest, ok && rest != ""
}

func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}

// Get downloads a snapshot.
func (s *Store) Get(ctx context.Context, name string) ([]byte, error) {
	if err := blobstore.ValidateName(name); err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, s.key(name), minio.GetObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, blobstore.ErrNotFound
		}
		return nil, err
	}
	defer obj.Close()

	// GetObject is lazy; a missing key surfaces on first read.
	data, err := io.ReadAll(obj)
	if isNotFound(err) {
		return nil, blobstore.ErrNotFound
	}
	return data, err
}

// Put uploads a snapshot. Object storage makes the write visible atomically.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	if err := blobstore.ValidateName(name); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name), bytes.NewReader(data), int64(len(data)), s.put)
	return err
}

// Delete removes a snapshot. Missing snapshots are not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := blobstore.ValidateName(name); err != nil {
		return err
	}
	err := s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{})
	if err != nil && isNotFound(err) {
		return nil
	}
	return err
}

// List returns the names of all snapshots starting with prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	full := prefix
	if s.prefix != "" {
		full = s.prefix + "/" + prefix
	}

	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    full,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if name, ok := s.name(obj.Key); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
