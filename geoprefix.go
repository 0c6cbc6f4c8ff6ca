package geoprefix

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/dgryski/go-farm"
	"github.com/golang/geo/r2"
	"github.com/hupe1980/geoprefix/blobstore"
	"github.com/hupe1980/geoprefix/codec"
	"github.com/hupe1980/geoprefix/query"
	"github.com/hupe1980/geoprefix/shape"
	"github.com/hupe1980/geoprefix/strategy"
	"github.com/hupe1980/geoprefix/termindex"
	"github.com/hupe1980/geoprefix/tree"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Relation is the spatial predicate of a search, read as "query R indexed shape".
type Relation = strategy.Relation

const (
	Intersects = strategy.Intersects
	Disjoint   = strategy.Disjoint
	Contains   = strategy.Contains
	Within     = strategy.Within
)

// ParseRelation parses a relation name such as "intersects".
func ParseRelation(s string) (Relation, error) { return strategy.ParseRelation(s) }

// Settings fixes how shapes are turned into terms. Two indexes built with the same
// settings produce identical terms for identical shapes.
type Settings struct {
	Field      string    `json:"field"`
	Tree       tree.Kind `json:"tree"`
	MaxLevels  int       `json:"max_levels"`
	Bounds     *r2.Rect  `json:"bounds,omitempty"`
	DistErrPct float64   `json:"dist_err_pct"`
}

func (s Settings) String() string {
	str := fmt.Sprintf("field=%s tree=%s levels=%d dist_err_pct=%g", s.Field, s.Tree, s.MaxLevels, s.DistErrPct)
	if s.Bounds != nil {
		str += fmt.Sprintf(" bounds=[%g %g %g %g]", s.Bounds.X.Lo, s.Bounds.Y.Lo, s.Bounds.X.Hi, s.Bounds.Y.Hi)
	}
	return str
}

// conflicts reports whether any field set in requested differs from s.
func (s Settings) conflicts(requested Settings) bool {
	switch {
	case requested.Field != "" && requested.Field != s.Field:
		return true
	case requested.Tree != "" && requested.Tree != s.Tree:
		return true
	case requested.MaxLevels != 0 && requested.MaxLevels != s.MaxLevels:
		return true
	case requested.Bounds != nil && (s.Bounds == nil || *requested.Bounds != *s.Bounds):
		return true
	}
	return false
}

// Document is a shape to index under an id.
type Document struct {
	ID    string
	Shape shape.Shape
}

// BatchIndexResult represents the result of IndexBatch.
type BatchIndexResult struct {
	IDs    []string // IDs of successfully indexed documents
	Errors []error  // Errors for failed documents (nil for successful)
}

// Failed returns the number of documents that could not be indexed.
func (r BatchIndexResult) Failed() int {
	n := 0
	for _, err := range r.Errors {
		if err != nil {
			n++
		}
	}
	return n
}

// Stats summarizes an Index.
type Stats struct {
	termindex.Stats
	Settings Settings `json:"settings"`
}

// Index is an in-memory spatial index: shapes are decomposed into grid cells,
// stored as terms, and searched with compiled term queries.
// It is safe for concurrent use.
type Index struct {
	settings Settings
	strategy *strategy.Strategy
	terms    *termindex.Index
	cache    *ristretto.Cache[uint64, query.Query]
	limiter  *rate.Limiter

	codec            codec.Codec
	compression      termindex.Compression
	batchConcurrency int
	metrics          MetricsCollector
	logger           *Logger

	closed atomic.Bool
}

// New creates an empty index.
func New(optFns ...Option) (*Index, error) {
	o := applyOptions(optFns)
	return newIndex(o, o.settings(), termindex.New())
}

func newIndex(o options, s Settings, terms *termindex.Index) (*Index, error) {
	t, err := tree.New(tree.Config{Kind: s.Tree, MaxLevels: s.MaxLevels, Bounds: s.Bounds})
	if err != nil {
		return nil, translateError(err)
	}
	st, err := strategy.New(s.Field, t, strategy.WithDistErrPct(s.DistErrPct))
	if err != nil {
		return nil, translateError(err)
	}
	if _, err := o.compression.MarshalText(); err != nil {
		return nil, translateError(err)
	}

	ix := &Index{
		settings:         s,
		strategy:         st,
		terms:            terms,
		limiter:          rate.NewLimiter(o.batchRate, o.batchBurst),
		codec:            o.codec,
		compression:      o.compression,
		batchConcurrency: o.batchConcurrency,
		metrics:          o.metricsCollector,
		logger:           o.logger.WithField(s.Field),
	}

	if o.cacheSize > 0 {
		ix.cache, err = ristretto.NewCache(&ristretto.Config[uint64, query.Query]{
			NumCounters: o.cacheSize * 10,
			MaxCost:     o.cacheSize,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: query cache: %w", ErrInvalidConfig, err)
		}
	}
	return ix, nil
}

// Settings returns the settings the index was built with.
func (ix *Index) Settings() Settings { return ix.settings }

// Strategy returns the underlying indexing strategy.
func (ix *Index) Strategy() *strategy.Strategy { return ix.strategy }

// Index indexes sh under id, replacing any previous shape with that id.
func (ix *Index) Index(ctx context.Context, id string, sh shape.Shape) error {
	start := time.Now()

	terms, err := ix.index(ctx, id, sh)
	err = translateError(err)

	ix.metrics.RecordIndex(len(terms), time.Since(start), err)
	ix.logger.LogIndex(ctx, id, len(terms), err)

	return err
}

func (ix *Index) index(ctx context.Context, id string, sh shape.Shape) ([]string, error) {
	if err := ix.check(ctx); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrEmptyID
	}
	terms, err := ix.strategy.Terms(sh)
	if err != nil {
		return nil, &ShapeError{ID: id, cause: translateError(err)}
	}
	if err := ix.terms.Add(id, terms); err != nil {
		return nil, err
	}
	return terms, nil
}

// IndexBatch indexes docs concurrently. Shapes are decomposed by at most
// WithBatchConcurrency workers, throttled by WithBatchRateLimit.
//
// A failing document does not stop the batch; its error is reported in the result.
// When ctx is cancelled the remaining documents fail with the context error.
func (ix *Index) IndexBatch(ctx context.Context, docs []Document) BatchIndexResult {
	start := time.Now()
	result := BatchIndexResult{
		IDs:    make([]string, 0, len(docs)),
		Errors: make([]error, len(docs)),
	}

	if err := ix.check(ctx); err != nil {
		for i := range result.Errors {
			result.Errors[i] = err
		}
		ix.finishBatch(ctx, len(docs), len(docs), start)
		return result
	}

	terms := make([][]string, len(docs))

	var g errgroup.Group
	g.SetLimit(ix.batchConcurrency)
	for i, doc := range docs {
		g.Go(func() error {
			if err := ix.limiter.Wait(ctx); err != nil {
				result.Errors[i] = err
				return nil
			}
			if doc.ID == "" {
				result.Errors[i] = ErrEmptyID
				return nil
			}
			t, err := ix.strategy.Terms(doc.Shape)
			if err != nil {
				result.Errors[i] = &ShapeError{ID: doc.ID, cause: translateError(err)}
				return nil
			}
			terms[i] = t
			return nil
		})
	}
	_ = g.Wait()

	// Apply in input order so a repeated id keeps its last shape.
	for i, doc := range docs {
		if result.Errors[i] != nil {
			continue
		}
		if err := ix.terms.Add(doc.ID, terms[i]); err != nil {
			result.Errors[i] = translateError(err)
			continue
		}
		result.IDs = append(result.IDs, doc.ID)
	}

	ix.finishBatch(ctx, len(docs), result.Failed(), start)
	return result
}

func (ix *Index) finishBatch(ctx context.Context, count, failed int, start time.Time) {
	ix.metrics.RecordBatchIndex(count, failed, time.Since(start))
	ix.logger.LogBatchIndex(ctx, count, failed)
}

// Delete removes the document with the given id.
// It returns ErrNotFound if the id is not indexed.
func (ix *Index) Delete(ctx context.Context, id string) error {
	start := time.Now()

	err := ix.check(ctx)
	if err == nil && !ix.terms.Delete(id) {
		err = fmt.Errorf("%w: document %q", ErrNotFound, id)
	}

	ix.metrics.RecordDelete(time.Since(start), err)
	ix.logger.LogDelete(ctx, id, err)

	return err
}

// Has reports whether id is indexed.
func (ix *Index) Has(id string) bool { return ix.terms.Has(id) }

// Len returns the number of indexed documents.
func (ix *Index) Len() int { return ix.terms.Len() }

// DocTerms returns the terms indexed for id.
func (ix *Index) DocTerms(id string) ([]string, bool) { return ix.terms.DocTerms(id) }

// Stats returns index statistics.
func (ix *Index) Stats() Stats {
	return Stats{Stats: ix.terms.Stats(), Settings: ix.settings}
}

// Search returns the sorted ids of documents whose shape satisfies "sh rel document".
func (ix *Index) Search(ctx context.Context, rel Relation, sh shape.Shape, opts ...SearchOption) ([]string, error) {
	start := time.Now()

	ids, err := ix.search(ctx, rel, sh, opts)
	err = translateError(err)

	ix.metrics.RecordSearch(rel.String(), len(ids), time.Since(start), err)
	ix.logger.LogSearch(ctx, rel.String(), len(ids), err)

	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (ix *Index) search(ctx context.Context, rel Relation, sh shape.Shape, opts []SearchOption) ([]string, error) {
	if err := ix.check(ctx); err != nil {
		return nil, err
	}
	q, err := ix.compile(rel, sh, opts)
	if err != nil {
		return nil, err
	}
	return ix.terms.Search(q)
}

// Count returns the number of documents Search would return.
func (ix *Index) Count(ctx context.Context, rel Relation, sh shape.Shape, opts ...SearchOption) (int, error) {
	if err := ix.check(ctx); err != nil {
		return 0, err
	}
	q, err := ix.compile(rel, sh, opts)
	if err != nil {
		return 0, translateError(err)
	}
	n, err := ix.terms.Count(q)
	return n, translateError(err)
}

// Compile returns the term query for "sh rel document" without running it.
func (ix *Index) Compile(rel Relation, sh shape.Shape, opts ...SearchOption) (query.Query, error) {
	if ix.closed.Load() {
		return nil, ErrClosed
	}
	q, err := ix.compile(rel, sh, opts)
	return q, translateError(err)
}

func (ix *Index) compile(rel Relation, sh shape.Shape, opts []SearchOption) (query.Query, error) {
	if !rel.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedRelation, uint8(rel))
	}
	if sh == nil {
		return nil, fmt.Errorf("%w: nil shape", shape.ErrUnsupportedGeometry)
	}
	so := applySearchOptions(opts)

	var key uint64
	if ix.cache != nil {
		k, err := ix.cacheKey(rel, sh, so)
		if err != nil {
			return nil, err
		}
		key = k
		if q, ok := ix.cache.Get(key); ok {
			ix.metrics.RecordQueryCache(true)
			return q, nil
		}
		ix.metrics.RecordQueryCache(false)
	}

	q, err := ix.strategy.Query(rel, sh, so.callOptions()...)
	if err != nil {
		return nil, err
	}

	if ix.cache != nil {
		ix.cache.Set(key, q, 1)
		ix.cache.Wait()
	}
	return q, nil
}

// cacheKey fingerprints everything a compiled query depends on.
func (ix *Index) cacheKey(rel Relation, sh shape.Shape, so searchOptions) (uint64, error) {
	wkb, err := shape.MarshalWKB(sh)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", shape.ErrUnsupportedGeometry, err)
	}

	pct := ix.strategy.DistErrPct()
	if so.precision != nil {
		pct = *so.precision
	}

	buf := make([]byte, 0, len(wkb)+len(sh.Kind())+18)
	buf = append(buf, byte(rel))
	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(pct))
	buf = binary.AppendUvarint(buf, uint64(so.level))
	buf = append(buf, string(sh.Kind())...)
	buf = append(buf, wkb...)
	return farm.Fingerprint64(buf), nil
}

// Tokens returns the cell tokens sh would be indexed with.
func (ix *Index) Tokens(sh shape.Shape, opts ...SearchOption) (strategy.TokenSet, error) {
	ts, err := ix.strategy.Tokens(sh, applySearchOptions(opts).callOptions()...)
	return ts, translateError(err)
}

// Terms returns the terms sh would be indexed with.
func (ix *Index) Terms(sh shape.Shape, opts ...SearchOption) ([]string, error) {
	terms, err := ix.strategy.Terms(sh, applySearchOptions(opts).callOptions()...)
	return terms, translateError(err)
}

// Save writes a snapshot of the index to store under name.
func (ix *Index) Save(ctx context.Context, store blobstore.BlobStore, name string) error {
	start := time.Now()

	size, err := ix.save(ctx, store, name)
	err = translateError(err)

	ix.metrics.RecordSnapshot("save", size, time.Since(start), err)
	ix.logger.LogSnapshot(ctx, "save", name, size, err)

	return err
}

func (ix *Index) save(ctx context.Context, store blobstore.BlobStore, name string) (int64, error) {
	if err := ix.check(ctx); err != nil {
		return 0, err
	}
	meta, err := encodeSettings(ix.codec, ix.settings)
	if err != nil {
		return 0, err
	}

	var buf bytes.Buffer
	n, err := ix.terms.WriteSnapshot(&buf, meta, ix.compression)
	if err != nil {
		return 0, err
	}
	if err := store.Put(ctx, name, buf.Bytes()); err != nil {
		return 0, fmt.Errorf("save %q: %w", name, err)
	}
	return n, nil
}

// Load reads a snapshot written by Save.
//
// The snapshot's settings are authoritative. Options that fix the term encoding
// (WithField, WithTree, WithQuadBounds) must agree with them or Load fails with
// a *SettingsMismatchError. WithDistErrPct overrides the stored default.
func Load(ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) (*Index, error) {
	start := time.Now()
	o := applyOptions(optFns)

	ix, size, err := load(ctx, store, name, o)
	err = translateError(err)

	o.metricsCollector.RecordSnapshot("load", size, time.Since(start), err)
	o.logger.LogSnapshot(ctx, "load", name, size, err)

	if err != nil {
		return nil, err
	}
	return ix, nil
}

func load(ctx context.Context, store blobstore.BlobStore, name string, o options) (*Index, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	data, err := store.Get(ctx, name)
	if err != nil {
		return nil, 0, fmt.Errorf("load %q: %w", name, err)
	}

	terms, meta, err := termindex.ReadSnapshot(bytes.NewReader(data))
	if err != nil {
		return nil, 0, err
	}
	stored, err := decodeSettings(meta)
	if err != nil {
		return nil, 0, err
	}

	requested := o.requested()
	if stored.conflicts(requested) {
		return nil, 0, &SettingsMismatchError{Snapshot: stored, Requested: requested}
	}
	if o.distErrPct != nil {
		stored.DistErrPct = *o.distErrPct
	}

	ix, err := newIndex(o, stored, terms)
	if err != nil {
		return nil, 0, err
	}
	return ix, int64(len(data)), nil
}

// Settings header: codec name length (1 byte), codec name, encoded Settings.
func encodeSettings(c codec.Codec, s Settings) ([]byte, error) {
	body, err := c.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	name := c.Name()
	if len(name) > math.MaxUint8 {
		return nil, fmt.Errorf("%w: codec name %q too long", ErrInvalidConfig, name)
	}
	meta := make([]byte, 0, 1+len(name)+len(body))
	meta = append(meta, byte(len(name)))
	meta = append(meta, name...)
	return append(meta, body...), nil
}

func decodeSettings(meta []byte) (Settings, error) {
	var s Settings
	if len(meta) == 0 || len(meta) < 1+int(meta[0]) {
		return s, fmt.Errorf("%w: truncated settings header", ErrCorruptSnapshot)
	}
	name := string(meta[1 : 1+int(meta[0])])
	c, ok := codec.ByName(name)
	if !ok {
		return s, fmt.Errorf("%w: unknown codec %q", ErrCorruptSnapshot, name)
	}
	if err := c.Unmarshal(meta[1+int(meta[0]):], &s); err != nil {
		return s, fmt.Errorf("%w: decode settings: %w", ErrCorruptSnapshot, err)
	}
	return s, nil
}

// Close releases the query cache. Further operations fail with ErrClosed.
func (ix *Index) Close() error {
	if !ix.closed.CompareAndSwap(false, true) {
		return nil
	}
	if ix.cache != nil {
		ix.cache.Close()
	}
	return nil
}

func (ix *Index) check(ctx context.Context) error {
	if ix.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

// IsShapeError reports whether err was caused by an unindexable shape.
func IsShapeError(err error) bool {
	var se *ShapeError
	return errors.As(err, &se)
}
