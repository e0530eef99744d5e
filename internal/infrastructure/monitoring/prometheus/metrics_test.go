package prometheus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAppMetrics(t *testing.T) (*AppMetrics, MetricsCollector) {
	t.Helper()
	collector, err := NewMetricsCollector(CollectorConfig{Namespace: "dragonseye"}, nil)
	require.NoError(t, err)
	return NewAppMetrics(collector), collector
}

func TestNewAppMetricsRegistersAllFamilies(t *testing.T) {
	m, _ := newTestAppMetrics(t)

	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.HTTPActiveRequests)
	assert.NotNil(t, m.IngestEventsTotal)
	assert.NotNil(t, m.IngestRetriesTotal)
	assert.NotNil(t, m.IngestDeadLetteredTotal)
	assert.NotNil(t, m.VictimsTotal)
	assert.NotNil(t, m.GroupsTotal)
	assert.NotNil(t, m.CacheHitsTotal)
	assert.NotNil(t, m.CacheMissesTotal)
}

func TestRecordHTTPRequest(t *testing.T) {
	m, collector := newTestAppMetrics(t)

	RecordHTTPRequest(m, "GET", "/api/v1/stats/summary", 200, 25*time.Millisecond, 512)

	body := scrape(t, collector)
	assert.Contains(t, body, `dragonseye_http_requests_total{method="GET",path="/api/v1/stats/summary",status_code="200"} 1`)
	assert.Contains(t, body, "dragonseye_http_request_duration_seconds_count")
}

func TestRecordIngestEvent(t *testing.T) {
	m, collector := newTestAppMetrics(t)

	RecordIngestEvent(m, "victim.discovered", "ok", 5*time.Millisecond)
	RecordIngestEvent(m, "victim.discovered", "failed", 5*time.Millisecond)

	body := scrape(t, collector)
	assert.Contains(t, body, `dragonseye_ingest_events_total{status="failed",topic="victim.discovered"} 1`)
	assert.Contains(t, body, `dragonseye_ingest_events_total{status="ok",topic="victim.discovered"} 1`)
}

func TestRecordCacheAccess(t *testing.T) {
	m, collector := newTestAppMetrics(t)

	RecordCacheAccess(m, "stats", true)
	RecordCacheAccess(m, "stats", true)
	RecordCacheAccess(m, "stats", false)

	body := scrape(t, collector)
	assert.Contains(t, body, `dragonseye_cache_hits_total{cache="stats"} 2`)
	assert.Contains(t, body, `dragonseye_cache_misses_total{cache="stats"} 1`)
}

func TestIngestRecorderExportsConsumerOutcomes(t *testing.T) {
	m, collector := newTestAppMetrics(t)
	rec := IngestRecorder{Metrics: m}

	rec.ObserveEvent("victim.discovered", "ok", 3*time.Millisecond)
	rec.ObserveRetry("victim.discovered")
	rec.ObserveRetry("victim.discovered")
	rec.ObserveDeadLetter("victim.discovered")

	body := scrape(t, collector)
	assert.Contains(t, body, `dragonseye_ingest_events_total{status="ok",topic="victim.discovered"} 1`)
	assert.Contains(t, body, `dragonseye_ingest_retries_total{topic="victim.discovered"} 2`)
	assert.Contains(t, body, `dragonseye_ingest_dead_lettered_total{topic="victim.discovered"} 1`)
}
