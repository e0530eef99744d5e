package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frknaykc/dragonseye/internal/infrastructure/monitoring/logging"
	"github.com/frknaykc/dragonseye/internal/infrastructure/monitoring/prometheus"
	"github.com/frknaykc/dragonseye/internal/testutil"
)

func fieldMap(fields []logging.Field) map[string]interface{} {
	m := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	return m
}

func lastMessage(t *testing.T, log *testutil.MockLogger) testutil.LogMessage {
	t.Helper()
	messages := log.GetMessages()
	require.NotEmpty(t, messages)
	return messages[len(messages)-1]
}

func TestRequestIDGenerated(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	var seen string
	r.GET("/ping", func(c *gin.Context) {
		seen = c.GetString("request_id")
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestRequestIDHonorsCallerID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "trace-42")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "trace-42", rec.Header().Get(RequestIDHeader))
}

func TestRequestLoggingInfoLevel(t *testing.T) {
	log := testutil.NewMockLogger()
	r := gin.New()
	r.Use(RequestID(), RequestLogging(log, nil))
	r.GET("/api/v1/victims/:index", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/victims/3", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	entry := lastMessage(t, log)
	fields := fieldMap(entry.Fields)
	assert.Equal(t, "info", entry.Level)
	assert.Equal(t, http.MethodGet, fields["method"])
	assert.Equal(t, "/api/v1/victims/:index", fields["path"],
		"route template, not the concrete URL")
	assert.Equal(t, http.StatusOK, fields["status"])
	assert.NotEmpty(t, fields["request_id"])
}

func TestRequestLoggingErrorLevel(t *testing.T) {
	log := testutil.NewMockLogger()
	r := gin.New()
	r.Use(RequestLogging(log, nil))
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	assert.True(t, log.HasMessage("error", "request failed"))
}

func TestRequestLoggingRecordsMetrics(t *testing.T) {
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace: "dragonseye",
	}, nil)
	require.NoError(t, err)
	metrics := prometheus.NewAppMetrics(collector)

	r := gin.New()
	r.Use(RequestLogging(testutil.NewMockLogger(), metrics))
	r.GET("/api/v1/stats/summary", func(c *gin.Context) { c.String(http.StatusOK, "{}") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats/summary", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	scrapeRec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(scrapeRec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := scrapeRec.Body.String()
	assert.True(t, strings.Contains(body, `dragonseye_http_requests_total`), "scrape output:\n%s", body)
	assert.True(t, strings.Contains(body, `status_code="200"`))
}
