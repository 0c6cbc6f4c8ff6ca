package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/hupe1980/geoprefix"
	"github.com/hupe1980/geoprefix/blobstore"
	minioblob "github.com/hupe1980/geoprefix/blobstore/minio"
	s3blob "github.com/hupe1980/geoprefix/blobstore/s3"
	"github.com/hupe1980/geoprefix/shape"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// parseShape reads a query shape given as "minX,minY,maxX,maxY", a GeoJSON
// geometry, "@file" or "-" for stdin.
func parseShape(arg string, stdin io.Reader) (shape.Shape, error) {
	arg = strings.TrimSpace(arg)
	switch {
	case arg == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, err
		}
		return parseGeometry(data)
	case strings.HasPrefix(arg, "@"):
		data, err := os.ReadFile(arg[1:])
		if err != nil {
			return nil, err
		}
		return parseGeometry(data)
	case strings.HasPrefix(arg, "{"):
		return parseGeometry([]byte(arg))
	default:
		return parseBox(arg)
	}
}

func parseGeometry(data []byte) (shape.Shape, error) {
	features, err := shape.ParseFeatures(data)
	if err != nil {
		return nil, err
	}
	if len(features) != 1 {
		return nil, fmt.Errorf("expected one geometry, got %d", len(features))
	}
	return features[0].Shape, nil
}

func parseBox(s string) (shape.Shape, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 && len(parts) != 4 {
		return nil, fmt.Errorf("invalid shape %q: expected x,y or minX,minY,maxX,maxY", s)
	}
	v := make([]float64, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid shape %q: %w", s, err)
		}
		v[i] = f
	}
	if len(v) == 2 {
		return shape.NewPoint(v[0], v[1])
	}
	return shape.NewRectangle(v[0], v[1], v[2], v[3])
}

// readDocuments loads GeoJSON features from files. Features without an id get a random one.
func readDocuments(paths []string, stdin io.Reader) ([]geoprefix.Document, error) {
	var docs []geoprefix.Document
	for _, path := range paths {
		var (
			data []byte
			err  error
		)
		if path == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(path)
		}
		if err != nil {
			return nil, err
		}

		features, err := shape.ParseFeatures(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for _, f := range features {
			id := f.ID
			if id == "" {
				id = uuid.NewString()
			}
			docs = append(docs, geoprefix.Document{ID: id, Shape: f.Shape})
		}
	}
	return docs, nil
}

// openStore opens the blob store at location. On success the close function is non-nil.
func (a *app) openStore(ctx context.Context, location string) (blobstore.BlobStore, func() error, error) {
	noop := func() error { return nil }

	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Plain paths, including Windows drive letters.
		return blobstore.NewLocalStore(location), noop, nil
	}

	switch u.Scheme {
	case "file":
		return blobstore.NewLocalStore(u.Host + u.Path), noop, nil
	case "mem":
		return blobstore.NewMemoryStore(), noop, nil
	case "badger":
		s, err := blobstore.OpenBadgerStore(u.Host+u.Path, blobstore.WithBadgerLogger(a.logger.Logger))
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "s3":
		s, err := s3blob.New(ctx, u.Host, s3blob.WithPrefix(strings.TrimPrefix(u.Path, "/")))
		if err != nil {
			return nil, nil, err
		}
		return a.cached(s)
	case "minio":
		bucket, prefix, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
		if bucket == "" {
			return nil, nil, fmt.Errorf("invalid store %q: missing bucket", location)
		}
		secret, _ := u.User.Password()
		client, err := minio.New(u.Host, &minio.Options{
			Creds:  credentials.NewStaticV4(u.User.Username(), secret, ""),
			Secure: u.Query().Get("secure") == "true",
		})
		if err != nil {
			return nil, nil, err
		}
		return a.cached(minioblob.NewStore(client, bucket, minioblob.WithPrefix(prefix)))
	default:
		return nil, nil, fmt.Errorf("unsupported store scheme %q", u.Scheme)
	}
}

// cached fronts a remote store with an in-memory read cache unless --cache-size is 0.
func (a *app) cached(s blobstore.BlobStore) (blobstore.BlobStore, func() error, error) {
	size := a.conf.GetInt64("cache-size")
	if size <= 0 {
		return s, func() error { return nil }, nil
	}
	c, err := blobstore.NewCachingStore(s, size)
	if err != nil {
		return nil, nil, err
	}
	return c, c.Close, nil
}
