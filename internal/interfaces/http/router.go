// Package http assembles the gin route tree and the server around it.
package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/frknaykc/dragonseye/internal/config"
	"github.com/frknaykc/dragonseye/internal/infrastructure/monitoring/logging"
	"github.com/frknaykc/dragonseye/internal/infrastructure/monitoring/prometheus"
	"github.com/frknaykc/dragonseye/internal/interfaces/http/handlers"
	"github.com/frknaykc/dragonseye/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and cross-cutting pieces the
// route tree needs. Nil handlers leave their routes unregistered; nil
// middleware inputs fall back to defaults.
type RouterConfig struct {
	Stats        *handlers.StatsHandler
	Victims      *handlers.VictimsHandler
	Groups       *handlers.GroupsHandler
	Feeds        *handlers.FeedsHandler
	IOCs         *handlers.IOCsHandler
	Negotiations *handlers.NegotiationsHandler
	Map          *handlers.MapHandler
	Health       *handlers.HealthHandler

	Logger           logging.Logger
	Metrics          *prometheus.AppMetrics
	MetricsCollector prometheus.MetricsCollector
	RateLimiter      middleware.RateLimiter
	CORS             *middleware.CORSConfig

	Mode string // gin mode: debug | release | test
}

// NewRouter builds the full route tree.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Metrics))

	corsCfg := middleware.DefaultCORSConfig()
	if cfg.CORS != nil {
		corsCfg = *cfg.CORS
	}
	r.Use(middleware.CORS(corsCfg))

	if cfg.RateLimiter != nil {
		r.Use(middleware.RateLimit(cfg.RateLimiter, middleware.DefaultRateLimitConfig()))
	}

	if cfg.Health != nil {
		r.GET("/healthz", cfg.Health.Liveness)
		r.GET("/readyz", cfg.Health.Readiness)
	}
	if cfg.MetricsCollector != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsCollector.Handler()))
	}

	api := r.Group("/api/v1")
	{
		if cfg.Stats != nil {
			stats := api.Group("/stats")
			stats.GET("/summary", cfg.Stats.Summary)
			stats.GET("/countries", cfg.Stats.Countries)
			stats.GET("/sectors", cfg.Stats.Sectors)
			stats.GET("/groups", cfg.Stats.Groups)
			stats.GET("/trend", cfg.Stats.Trend)
		}

		if cfg.Victims != nil {
			victims := api.Group("/victims")
			victims.GET("", cfg.Victims.List)
			victims.GET("/search", cfg.Victims.Search)
			victims.GET("/:index", cfg.Victims.ByIndex)
		}

		if cfg.Groups != nil {
			groups := api.Group("/groups")
			groups.GET("", cfg.Groups.List)
			groups.GET("/:name", cfg.Groups.ByName)
			groups.GET("/:name/victims", cfg.Groups.Victims)
		}

		if cfg.Feeds != nil {
			api.GET("/ransom-notes", cfg.Feeds.Notes)
			api.GET("/decryptors", cfg.Feeds.Decryptors)
		}
		if cfg.IOCs != nil {
			api.GET("/iocs", cfg.IOCs.List)
		}
		if cfg.Negotiations != nil {
			api.GET("/negotiations", cfg.Negotiations.List)
		}
		if cfg.Map != nil {
			api.GET("/map/fill", cfg.Map.Fill)
			api.GET("/country/:code", cfg.Map.Country)
		}
	}

	return r
}

// NewRateLimiter builds the default token-bucket limiter from server
// config. A non-positive RPS disables limiting.
func NewRateLimiter(cfg config.ServerConfig) middleware.RateLimiter {
	if cfg.RateLimitRPS <= 0 {
		return nil
	}
	return middleware.NewTokenBucketLimiter(float64(cfg.RateLimitRPS), cfg.RateLimitRPS*2, 5*time.Minute)
}
