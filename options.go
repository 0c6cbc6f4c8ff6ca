package geoprefix

import (
	"log/slog"

	"github.com/golang/geo/r2"
	"github.com/hupe1980/geoprefix/codec"
	"github.com/hupe1980/geoprefix/strategy"
	"github.com/hupe1980/geoprefix/termindex"
	"github.com/hupe1980/geoprefix/tree"
	"golang.org/x/time/rate"
)

const (
	// DefaultField is the field name used when WithField is not given.
	DefaultField = "geo"

	// DefaultQueryCacheSize is the number of compiled queries kept by default.
	DefaultQueryCacheSize = 1024

	// DefaultBatchConcurrency bounds the number of shapes decomposed in parallel by IndexBatch.
	DefaultBatchConcurrency = 8
)

type options struct {
	// Zero values mean "not set"; New fills in defaults and Load takes them from the snapshot.
	field      string
	treeKind   tree.Kind
	maxLevels  int
	bounds     *r2.Rect
	distErrPct *float64

	codec            codec.Codec
	compression      termindex.Compression
	cacheSize        int64
	batchConcurrency int
	batchRate        rate.Limit
	batchBurst       int
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures New and Load.
type Option func(*options)

// WithField sets the field name that prefixes every indexed term.
func WithField(name string) Option {
	return func(o *options) {
		o.field = name
	}
}

// WithTree selects the grid and its depth.
// A maxLevels of zero selects the grid's default depth.
func WithTree(kind tree.Kind, maxLevels int) Option {
	return func(o *options) {
		o.treeKind = kind
		o.maxLevels = maxLevels
	}
}

// WithQuadBounds sets the world bounds of a quad tree.
// It is rejected for geohash grids, whose bounds are fixed.
func WithQuadBounds(minX, minY, maxX, maxY float64) Option {
	return func(o *options) {
		b := r2.RectFromPoints(r2.Point{X: minX, Y: minY}, r2.Point{X: maxX, Y: maxY})
		o.bounds = &b
	}
}

// WithDistErrPct sets the default distance error fraction used to pick
// the detail level of indexed and query shapes. Valid values are in [0, 0.5].
func WithDistErrPct(pct float64) Option {
	return func(o *options) {
		o.distErrPct = &pct
	}
}

// WithCodec configures the codec used for the settings header of snapshots.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression sets the compression applied by Save.
func WithCompression(c termindex.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithQueryCache sets how many compiled queries are cached.
// A size of zero or less disables the cache.
func WithQueryCache(size int64) Option {
	return func(o *options) {
		if size <= 0 {
			size = -1
		}
		o.cacheSize = size
	}
}

// WithBatchConcurrency bounds the number of shapes decomposed in parallel by IndexBatch.
func WithBatchConcurrency(n int) Option {
	return func(o *options) {
		o.batchConcurrency = n
	}
}

// WithBatchRateLimit throttles IndexBatch to limit documents per second with the given burst.
//
// Example:
//
//	ix, _ := geoprefix.New(geoprefix.WithBatchRateLimit(rate.Limit(500), 50))
func WithBatchRateLimit(limit rate.Limit, burst int) Option {
	return func(o *options) {
		o.batchRate = limit
		o.batchBurst = max(burst, 1)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &geoprefix.BasicMetricsCollector{}
//	ix, _ := geoprefix.New(geoprefix.WithMetricsCollector(metrics))
//	// ... use ix ...
//	stats := metrics.GetStats()
//	fmt.Printf("Searches: %d, Avg latency: %dns\n", stats.SearchCount, stats.SearchAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := geoprefix.NewJSONLogger(slog.LevelInfo)
//	ix, _ := geoprefix.New(geoprefix.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:            codec.Default,
		compression:      termindex.CompressionNone,
		cacheSize:        DefaultQueryCacheSize,
		batchConcurrency: DefaultBatchConcurrency,
		batchRate:        rate.Inf,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.batchConcurrency < 1 {
		o.batchConcurrency = 1
	}
	return o
}

// requested returns the settings explicitly chosen through options; unset fields stay zero.
func (o *options) requested() Settings {
	s := Settings{
		Field:     o.field,
		Tree:      o.treeKind,
		MaxLevels: o.maxLevels,
		Bounds:    o.bounds,
	}
	if o.distErrPct != nil {
		s.DistErrPct = *o.distErrPct
	}
	return s
}

// settings resolves defaults for unset fields.
func (o *options) settings() Settings {
	s := o.requested()
	if s.Field == "" {
		s.Field = DefaultField
	}
	if s.Tree == "" {
		s.Tree = tree.KindGeohash
	}
	if s.MaxLevels == 0 {
		switch s.Tree {
		case tree.KindQuad:
			s.MaxLevels = tree.QuadDefaultLevels
		default:
			s.MaxLevels = tree.GeohashDefaultLevels
		}
	}
	if o.distErrPct == nil {
		s.DistErrPct = tree.DefaultDistErrPct
	}
	return s
}

type searchOptions struct {
	precision *float64
	level     int
}

// SearchOption configures a single Search, Count, Compile or Tokens call.
type SearchOption func(*searchOptions)

// WithPrecision overrides the distance error fraction for one call.
func WithPrecision(pct float64) SearchOption {
	return func(o *searchOptions) {
		o.precision = &pct
	}
}

// WithDetailLevel pins the grid level used for the query shape, bypassing the precision heuristic.
func WithDetailLevel(level int) SearchOption {
	return func(o *searchOptions) {
		o.level = level
	}
}

func applySearchOptions(optFns []SearchOption) searchOptions {
	var o searchOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

func (o searchOptions) callOptions() []strategy.CallOption {
	var opts []strategy.CallOption
	if o.precision != nil {
		opts = append(opts, strategy.WithPrecision(*o.precision))
	}
	if o.level != 0 {
		opts = append(opts, strategy.WithDetailLevel(o.level))
	}
	return opts
}
