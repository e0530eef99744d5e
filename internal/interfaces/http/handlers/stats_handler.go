package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/frknaykc/dragonseye/internal/application/correlation"
	"github.com/frknaykc/dragonseye/internal/domain/rollup"
	"github.com/frknaykc/dragonseye/internal/infrastructure/database/redis"
	"github.com/frknaykc/dragonseye/pkg/types/threat"
)

// Default list sizes matching the product's dashboards.
const (
	defaultCountryLimit = 20
	defaultSectorLimit  = 10
	defaultGroupLimit   = 20
	defaultTrendDays    = 30

	defaultStatsTTL = 5 * time.Minute
)

// StatsHandler serves the statistical rollup views. With a cache
// configured, computed rollups are kept under the "stats:" key prefix
// until the TTL runs out or the ingest worker invalidates them.
type StatsHandler struct {
	svc      *correlation.Service
	data     DataSource
	cache    redis.Cache
	statsTTL time.Duration
}

// StatsOption configures a StatsHandler.
type StatsOption func(*StatsHandler)

// WithStatsCache caches computed rollups with the given TTL. A zero
// ttl falls back to the default.
func WithStatsCache(cache redis.Cache, ttl time.Duration) StatsOption {
	return func(h *StatsHandler) {
		h.cache = cache
		if ttl > 0 {
			h.statsTTL = ttl
		}
	}
}

func NewStatsHandler(svc *correlation.Service, data DataSource, opts ...StatsOption) *StatsHandler {
	h := &StatsHandler{svc: svc, data: data, statsTTL: defaultStatsTTL}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// cached computes a view through the stats cache when one is
// configured, or directly otherwise. Parameter validation must happen
// before calling it so bad limits are never cached.
func cached[T any](h *StatsHandler, ctx context.Context, key string, compute func(ctx context.Context) (T, error)) (T, error) {
	if h.cache == nil {
		return compute(ctx)
	}
	var out T
	err := h.cache.GetOrSet(ctx, key, &out, h.statsTTL, func(ctx context.Context) (interface{}, error) {
		return compute(ctx)
	})
	return out, err
}

// serveRollup runs one bucket rollup through the cache and writes the
// response.
func (h *StatsHandler) serveRollup(c *gin.Context, key string, limit int, compute func(victims []threat.Victim, limit int) ([]rollup.Bucket, error)) {
	buckets, err := cached(h, c.Request.Context(), key, func(ctx context.Context) ([]rollup.Bucket, error) {
		victims, err := h.data.Victims(ctx)
		if err != nil {
			return nil, err
		}
		return compute(victims, limit)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	// Percentages stay exact through the rollup and cache; round only
	// at the response edge.
	for i := range buckets {
		buckets[i].Percentage = rollup.RoundPercentage(buckets[i].Percentage)
	}
	respondOK(c, buckets)
}

// Summary serves GET /api/v1/stats/summary.
func (h *StatsHandler) Summary(c *gin.Context) {
	summary, err := cached(h, c.Request.Context(), "stats:summary", func(ctx context.Context) (correlation.Summary, error) {
		victims, err := h.data.Victims(ctx)
		if err != nil {
			return correlation.Summary{}, err
		}
		groups, err := h.data.Groups(ctx)
		if err != nil {
			return correlation.Summary{}, err
		}
		return h.svc.Summarize(victims, groups), nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, summary)
}

// Countries serves GET /api/v1/stats/countries.
func (h *StatsHandler) Countries(c *gin.Context) {
	limit, err := queryInt(c, "limit", defaultCountryLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	h.serveRollup(c, fmt.Sprintf("stats:countries:%d", limit), limit, h.svc.CountriesRollup)
}

// Sectors serves GET /api/v1/stats/sectors.
func (h *StatsHandler) Sectors(c *gin.Context) {
	limit, err := queryInt(c, "limit", defaultSectorLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	h.serveRollup(c, fmt.Sprintf("stats:sectors:%d", limit), limit, h.svc.SectorsRollup)
}

// Groups serves GET /api/v1/stats/groups.
func (h *StatsHandler) Groups(c *gin.Context) {
	limit, err := queryInt(c, "limit", defaultGroupLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	h.serveRollup(c, fmt.Sprintf("stats:groups:%d", limit), limit, h.svc.GroupsRollup)
}

// Trend serves GET /api/v1/stats/trend.
func (h *StatsHandler) Trend(c *gin.Context) {
	days, err := queryInt(c, "days", defaultTrendDays)
	if err != nil {
		respondError(c, err)
		return
	}
	points, err := cached(h, c.Request.Context(), fmt.Sprintf("stats:trend:%d", days), func(ctx context.Context) ([]correlation.TrendPoint, error) {
		victims, err := h.data.Victims(ctx)
		if err != nil {
			return nil, err
		}
		return h.svc.Trend(victims, days)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, points)
}
