// The apiserver binary serves the DragonsEye read API: victim listings,
// statistical rollups, IOC and negotiation feeds, and the map endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frknaykc/dragonseye/internal/application/correlation"
	"github.com/frknaykc/dragonseye/internal/application/query"
	"github.com/frknaykc/dragonseye/internal/application/serving"
	"github.com/frknaykc/dragonseye/internal/config"
	"github.com/frknaykc/dragonseye/internal/domain/country"
	"github.com/frknaykc/dragonseye/internal/infrastructure/database/postgres"
	"github.com/frknaykc/dragonseye/internal/infrastructure/database/redis"
	"github.com/frknaykc/dragonseye/internal/infrastructure/monitoring/logging"
	"github.com/frknaykc/dragonseye/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/frknaykc/dragonseye/internal/interfaces/http"
	"github.com/frknaykc/dragonseye/internal/interfaces/http/handlers"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = logger.Named("apiserver")
	logger.Info("starting", logging.Int("port", cfg.Server.Port))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage.
	if cfg.Database.MigrationPath != "" {
		if err := postgres.RunMigrations(cfg.Database.DSN(), cfg.Database.MigrationPath); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}
	pool, err := postgres.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	redisClient, err := redis.NewClient(cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()

	// Metrics.
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            "dragonseye",
		Subsystem:            "api",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	metrics := prometheus.NewAppMetrics(collector)

	var cache redis.Cache
	if cfg.Cache.Enabled {
		cache = redis.NewCache(redisClient, logger, redis.WithAccessRecorder(func(hit bool) {
			prometheus.RecordCacheAccess(metrics, "views", hit)
		}))
	}

	// Snapshot source and domain services.
	repos := serving.NewRepos(pool.Pool(), logger)
	var sourceOpts []serving.Option
	if cfg.Cache.ViewTTL > 0 {
		sourceOpts = append(sourceOpts, serving.WithViewTTL(cfg.Cache.ViewTTL))
	}
	source := serving.NewSource(repos, cache, logger, sourceOpts...)

	resolver := country.NewResolver()
	corrService := correlation.NewService(resolver, logger)
	victimService := query.NewVictimService(resolver, logger)

	var statsOpts []handlers.StatsOption
	if cache != nil {
		statsOpts = append(statsOpts, handlers.WithStatsCache(cache, cfg.Cache.StatsTTL))
	}

	router := httpserver.NewRouter(httpserver.RouterConfig{
		Stats:        handlers.NewStatsHandler(corrService, source, statsOpts...),
		Victims:      handlers.NewVictimsHandler(victimService, source),
		Groups:       handlers.NewGroupsHandler(victimService, source),
		Feeds:        handlers.NewFeedsHandler(source),
		IOCs:         handlers.NewIOCsHandler(source),
		Negotiations: handlers.NewNegotiationsHandler(source),
		Map:          handlers.NewMapHandler(corrService, source),
		Health: handlers.NewHealthHandler(map[string]handlers.HealthChecker{
			"postgres": pool,
			"redis":    redisHealth{redisClient},
		}),
		Logger:           logger,
		Metrics:          metrics,
		MetricsCollector: collector,
		RateLimiter:      httpserver.NewRateLimiter(cfg.Server),
		Mode:             cfg.Server.Mode,
	})

	server := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// redisHealth adapts the redis client's Ping to the health probe.
type redisHealth struct {
	client *redis.Client
}

func (r redisHealth) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx)
}
