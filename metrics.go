package geoprefix

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// See package prommetrics for a Prometheus implementation.
type MetricsCollector interface {
	// RecordIndex is called after each index operation.
	// terms is the number of terms emitted, err is nil if successful.
	RecordIndex(terms int, duration time.Duration, err error)

	// RecordBatchIndex is called after each batch index operation.
	// count is the number of documents attempted, failed is the number that failed.
	RecordBatchIndex(count, failed int, duration time.Duration)

	// RecordSearch is called after each search operation.
	RecordSearch(relation string, results int, duration time.Duration, err error)

	// RecordDelete is called after each delete operation.
	RecordDelete(duration time.Duration, err error)

	// RecordQueryCache is called for each compiled query lookup.
	RecordQueryCache(hit bool)

	// RecordSnapshot is called after each snapshot save or load.
	// op is "save" or "load", size the snapshot size in bytes.
	RecordSnapshot(op string, size int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordIndex(int, time.Duration, error)                {}
func (NoopMetricsCollector) RecordBatchIndex(int, int, time.Duration)             {}
func (NoopMetricsCollector) RecordSearch(string, int, time.Duration, error)       {}
func (NoopMetricsCollector) RecordDelete(time.Duration, error)                    {}
func (NoopMetricsCollector) RecordQueryCache(bool)                                {}
func (NoopMetricsCollector) RecordSnapshot(string, int64, time.Duration, error)   {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	IndexCount       atomic.Int64
	IndexErrors      atomic.Int64
	IndexTerms       atomic.Int64
	IndexTotalNanos  atomic.Int64
	BatchIndexCount  atomic.Int64
	BatchIndexItems  atomic.Int64
	BatchIndexFailed atomic.Int64
	SearchCount      atomic.Int64
	SearchErrors     atomic.Int64
	SearchResults    atomic.Int64
	SearchTotalNanos atomic.Int64
	DeleteCount      atomic.Int64
	DeleteErrors     atomic.Int64
	CacheHits        atomic.Int64
	CacheMisses      atomic.Int64
	SnapshotCount    atomic.Int64
	SnapshotErrors   atomic.Int64
	SnapshotBytes    atomic.Int64
}

// RecordIndex implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIndex(terms int, duration time.Duration, err error) {
	b.IndexCount.Add(1)
	b.IndexTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.IndexErrors.Add(1)
		return
	}
	b.IndexTerms.Add(int64(terms))
}

// RecordBatchIndex implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatchIndex(count, failed int, _ time.Duration) {
	b.BatchIndexCount.Add(1)
	b.BatchIndexItems.Add(int64(count))
	b.BatchIndexFailed.Add(int64(failed))
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(_ string, results int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
		return
	}
	b.SearchResults.Add(int64(results))
}

// RecordDelete implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDelete(_ time.Duration, err error) {
	b.DeleteCount.Add(1)
	if err != nil {
		b.DeleteErrors.Add(1)
	}
}

// RecordQueryCache implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQueryCache(hit bool) {
	if hit {
		b.CacheHits.Add(1)
	} else {
		b.CacheMisses.Add(1)
	}
}

// RecordSnapshot implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshot(_ string, size int64, _ time.Duration, err error) {
	b.SnapshotCount.Add(1)
	if err != nil {
		b.SnapshotErrors.Add(1)
		return
	}
	b.SnapshotBytes.Add(size)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		IndexCount:       b.IndexCount.Load(),
		IndexErrors:      b.IndexErrors.Load(),
		IndexTerms:       b.IndexTerms.Load(),
		IndexAvgNanos:    avg(b.IndexTotalNanos.Load(), b.IndexCount.Load()),
		BatchIndexCount:  b.BatchIndexCount.Load(),
		BatchIndexItems:  b.BatchIndexItems.Load(),
		BatchIndexFailed: b.BatchIndexFailed.Load(),
		SearchCount:      b.SearchCount.Load(),
		SearchErrors:     b.SearchErrors.Load(),
		SearchResults:    b.SearchResults.Load(),
		SearchAvgNanos:   avg(b.SearchTotalNanos.Load(), b.SearchCount.Load()),
		DeleteCount:      b.DeleteCount.Load(),
		DeleteErrors:     b.DeleteErrors.Load(),
		CacheHits:        b.CacheHits.Load(),
		CacheMisses:      b.CacheMisses.Load(),
		SnapshotCount:    b.SnapshotCount.Load(),
		SnapshotErrors:   b.SnapshotErrors.Load(),
		SnapshotBytes:    b.SnapshotBytes.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	IndexCount       int64
	IndexErrors      int64
	IndexTerms       int64
	IndexAvgNanos    int64
	BatchIndexCount  int64
	BatchIndexItems  int64
	BatchIndexFailed int64
	SearchCount      int64
	SearchErrors     int64
	SearchResults    int64
	SearchAvgNanos   int64
	DeleteCount      int64
	DeleteErrors     int64
	CacheHits        int64
	CacheMisses      int64
	SnapshotCount    int64
	SnapshotErrors   int64
	SnapshotBytes    int64
}
