package prometheus

import (
	"fmt"
	"time"
)

// AppMetrics holds every metric family the service emits.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPResponseSize    HistogramVec
	HTTPActiveRequests  GaugeVec

	// Ingest pipeline
	IngestEventsTotal       CounterVec
	IngestDuration          HistogramVec
	IngestRetriesTotal      CounterVec
	IngestDeadLetteredTotal CounterVec

	// Records
	VictimsTotal GaugeVec
	GroupsTotal  GaugeVec

	// Cache
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec
}

// Default buckets.
var (
	DefaultHTTPDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultSizeBuckets         = []float64{100, 1000, 10000, 100000, 1000000, 10000000}
)

// NewAppMetrics registers all metric families on the collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// HTTP
	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPResponseSize = collector.RegisterHistogram("http_response_size_bytes", "HTTP response size", DefaultSizeBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method", "path")

	// Ingest
	m.IngestEventsTotal = collector.RegisterCounter("ingest_events_total", "Ingested feed events", "topic", "status")
	m.IngestDuration = collector.RegisterHistogram("ingest_duration_seconds", "Per-event ingest duration", DefaultHTTPDurationBuckets, "topic")
	m.IngestRetriesTotal = collector.RegisterCounter("ingest_retries_total", "Ingest handler retries", "topic")
	m.IngestDeadLetteredTotal = collector.RegisterCounter("ingest_dead_lettered_total", "Events routed to the dead letter topic", "topic")

	// Records
	m.VictimsTotal = collector.RegisterGauge("victims_total", "Stored victim records", "source")
	m.GroupsTotal = collector.RegisterGauge("groups_total", "Stored group profiles", "source")

	// Cache
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")

	return m
}

// Helpers

func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration, respSize int64) {
	status := fmt.Sprintf("%d", statusCode)
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	metrics.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(respSize))
}

func RecordIngestEvent(metrics *AppMetrics, topic, status string, duration time.Duration) {
	metrics.IngestEventsTotal.WithLabelValues(topic, status).Inc()
	metrics.IngestDuration.WithLabelValues(topic).Observe(duration.Seconds())
}

func RecordCacheAccess(metrics *AppMetrics, cache string, hit bool) {
	if hit {
		metrics.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		metrics.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

// IngestRecorder bridges consumer outcomes onto the ingest metric
// families. It satisfies the messaging layer's observer contract
// without that package importing this one.
type IngestRecorder struct {
	Metrics *AppMetrics
}

func (r IngestRecorder) ObserveEvent(topic, status string, elapsed time.Duration) {
	RecordIngestEvent(r.Metrics, topic, status, elapsed)
}

func (r IngestRecorder) ObserveRetry(topic string) {
	r.Metrics.IngestRetriesTotal.WithLabelValues(topic).Inc()
}

func (r IngestRecorder) ObserveDeadLetter(topic string) {
	r.Metrics.IngestDeadLetteredTotal.WithLabelValues(topic).Inc()
}
