// Package prommetrics exports geoprefix operation metrics to Prometheus.
//
//	c := prommetrics.New("geoprefix")
//	c.MustRegister(prometheus.DefaultRegisterer)
//	ix, _ := geoprefix.New(geoprefix.WithMetricsCollector(c))
//	http.Handle("/metrics", promhttp.Handler())
package prommetrics

import (
	"time"

	"github.com/hupe1980/geoprefix"
	"github.com/prometheus/client_golang/prometheus"
)

var _ geoprefix.MetricsCollector = (*Collector)(nil)

// Collector implements geoprefix.MetricsCollector with Prometheus metrics.
type Collector struct {
	opLatency     *prometheus.HistogramVec
	indexedTerms  prometheus.Histogram
	batchDocs     *prometheus.CounterVec
	searchResults *prometheus.HistogramVec
	cache         *prometheus.CounterVec
	snapshotBytes *prometheus.GaugeVec
}

// New creates a collector whose metric names start with namespace.
func New(namespace string) *Collector {
	return &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_latency_seconds",
			Help:      "Latency of index operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "status"}),
		indexedTerms: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "indexed_terms",
			Help:      "Number of terms emitted per indexed document",
			Buckets:   prometheus.ExponentialBuckets(8, 2, 12),
		}),
		batchDocs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_documents_total",
			Help:      "Documents submitted through batch indexing",
		}, []string{"status"}),
		searchResults: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Number of documents returned per search",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}, []string{"relation"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_requests_total",
			Help:      "Compiled query cache lookups",
		}, []string{"result"}),
		snapshotBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_size_bytes",
			Help:      "Size of the last saved or loaded snapshot",
		}, []string{"op"}),
	}
}

// Collectors returns all metrics for registration.
func (c *Collector) Collectors() []prometheus.Collector {
	return []prometheus.Collector{c.opLatency, c.indexedTerms, c.batchDocs, c.searchResults, c.cache, c.snapshotBytes}
}

// Register registers all metrics with reg.
func (c *Collector) Register(reg prometheus.Registerer) error {
	for _, m := range c.Collectors() {
		if err := reg.Register(m); err != nil {
			return err
		}
	}
	return nil
}

// MustRegister is like Register but panics on error.
func (c *Collector) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(c.Collectors()...)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordIndex implements geoprefix.MetricsCollector.
func (c *Collector) RecordIndex(terms int, d time.Duration, err error) {
	c.opLatency.WithLabelValues("index", status(err)).Observe(d.Seconds())
	if err == nil {
		c.indexedTerms.Observe(float64(terms))
	}
}

// RecordBatchIndex implements geoprefix.MetricsCollector.
func (c *Collector) RecordBatchIndex(count, failed int, d time.Duration) {
	st := "success"
	if failed > 0 {
		st = "partial"
	}
	c.opLatency.WithLabelValues("batch_index", st).Observe(d.Seconds())
	c.batchDocs.WithLabelValues("success").Add(float64(count - failed))
	c.batchDocs.WithLabelValues("error").Add(float64(failed))
}

// RecordSearch implements geoprefix.MetricsCollector.
func (c *Collector) RecordSearch(relation string, results int, d time.Duration, err error) {
	c.opLatency.WithLabelValues("search", status(err)).Observe(d.Seconds())
	if err == nil {
		c.searchResults.WithLabelValues(relation).Observe(float64(results))
	}
}

// RecordDelete implements geoprefix.MetricsCollector.
func (c *Collector) RecordDelete(d time.Duration, err error) {
	c.opLatency.WithLabelValues("delete", status(err)).Observe(d.Seconds())
}

// RecordQueryCache implements geoprefix.MetricsCollector.
func (c *Collector) RecordQueryCache(hit bool) {
	if hit {
		c.cache.WithLabelValues("hit").Inc()
	} else {
		c.cache.WithLabelValues("miss").Inc()
	}
}

// RecordSnapshot implements geoprefix.MetricsCollector.
func (c *Collector) RecordSnapshot(op string, size int64, d time.Duration, err error) {
	c.opLatency.WithLabelValues(op, status(err)).Observe(d.Seconds())
	if err == nil {
		c.snapshotBytes.WithLabelValues(op).Set(float64(size))
	}
}
