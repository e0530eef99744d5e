package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frknaykc/dragonseye/internal/application/correlation"
	"github.com/frknaykc/dragonseye/internal/application/query"
	"github.com/frknaykc/dragonseye/internal/config"
	"github.com/frknaykc/dragonseye/internal/domain/country"
	"github.com/frknaykc/dragonseye/internal/infrastructure/monitoring/prometheus"
	"github.com/frknaykc/dragonseye/internal/interfaces/http/handlers"
	"github.com/frknaykc/dragonseye/internal/interfaces/http/middleware"
	"github.com/frknaykc/dragonseye/pkg/types/common"
	"github.com/frknaykc/dragonseye/pkg/types/threat"
)

type staticData struct {
	victims []threat.Victim
	groups  []threat.GroupProfile
}

func (d *staticData) Victims(context.Context) ([]threat.Victim, error) { return d.victims, nil }
func (d *staticData) Groups(context.Context) ([]threat.GroupProfile, error) {
	return d.groups, nil
}
func (d *staticData) Notes(context.Context) ([]threat.RansomNote, error)      { return nil, nil }
func (d *staticData) Decryptors(context.Context) ([]threat.Decryptor, error)  { return nil, nil }
func (d *staticData) Chats(context.Context) ([]threat.NegotiationChat, error) { return nil, nil }

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()

	data := &staticData{
		victims: []threat.Victim{
			{PostTitle: "Acme Corp", GroupName: "lockbit3", Country: "United States", Activity: "Manufacturing", DiscoveredAt: day(t, "2025-06-03")},
			{PostTitle: "Globex", GroupName: "akira", Country: "Germany", Activity: "Finance", DiscoveredAt: day(t, "2025-06-02")},
		},
		groups: []threat.GroupProfile{{Name: "lockbit3"}, {Name: "akira"}},
	}

	resolver := country.NewResolver()
	corr := correlation.NewService(resolver, nil)
	victims := query.NewVictimService(resolver, nil)

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "dragonseye"}, nil)
	require.NoError(t, err)

	return NewRouter(RouterConfig{
		Stats:        handlers.NewStatsHandler(corr, data),
		Victims:      handlers.NewVictimsHandler(victims, data),
		Groups:       handlers.NewGroupsHandler(victims, data),
		Feeds:        handlers.NewFeedsHandler(data),
		IOCs:         handlers.NewIOCsHandler(data),
		Negotiations: handlers.NewNegotiationsHandler(data),
		Map:          handlers.NewMapHandler(corr, data),
		Health: handlers.NewHealthHandler(map[string]handlers.HealthChecker{
			"store": healthOK{},
		}),
		Metrics:          prometheus.NewAppMetrics(collector),
		MetricsCollector: collector,
		Mode:             gin.TestMode,
	})
}

type healthOK struct{}

func (healthOK) HealthCheck(context.Context) error { return nil }

func day(t *testing.T, value string) common.Timestamp {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return common.Timestamp(parsed.UTC())
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRouterRoutes(t *testing.T) {
	r := testRouter(t)

	paths := []string{
		"/healthz",
		"/readyz",
		"/metrics",
		"/api/v1/stats/summary",
		"/api/v1/stats/countries",
		"/api/v1/stats/sectors",
		"/api/v1/stats/groups",
		"/api/v1/stats/trend",
		"/api/v1/victims",
		"/api/v1/victims/search?q=acme",
		"/api/v1/victims/1",
		"/api/v1/groups",
		"/api/v1/groups/lockbit3",
		"/api/v1/groups/lockbit3/victims",
		"/api/v1/ransom-notes",
		"/api/v1/decryptors",
		"/api/v1/iocs",
		"/api/v1/negotiations",
		"/api/v1/map/fill",
		"/api/v1/country/US",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			rec := get(r, path)
			assert.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
		})
	}
}

func TestRouterUnknownPath(t *testing.T) {
	r := testRouter(t)
	rec := get(r, "/api/v1/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterRequestIDOnEveryResponse(t *testing.T) {
	r := testRouter(t)
	rec := get(r, "/api/v1/victims")
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestRouterMetricsScrapeReflectsTraffic(t *testing.T) {
	r := testRouter(t)

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, get(r, "/api/v1/stats/summary").Code)
	}

	rec := get(r, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dragonseye_http_requests_total")
}

func TestRouterEnvelope(t *testing.T) {
	r := testRouter(t)

	rec := get(r, "/api/v1/victims")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.NotEmpty(t, body.Data)
}

func TestRouterRateLimiterWired(t *testing.T) {
	limiter := NewRateLimiter(config.ServerConfig{RateLimitRPS: 1})
	require.NotNil(t, limiter)

	r := NewRouter(RouterConfig{
		Feeds:       handlers.NewFeedsHandler(&staticData{}),
		Health:      handlers.NewHealthHandler(nil),
		RateLimiter: limiter,
		Mode:        gin.TestMode,
	})

	// Burst is 2x RPS so the third request in the same second trips it.
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, get(r, "/api/v1/decryptors").Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	assert.Equal(t, http.StatusOK, get(r, "/healthz").Code, "health path skips limiting")
}

func TestRouterDisabledRateLimiter(t *testing.T) {
	assert.Nil(t, NewRateLimiter(config.ServerConfig{RateLimitRPS: 0}))
}
