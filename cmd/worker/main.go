// The worker binary consumes scraped feed events from Kafka, normalizes
// them through the ingest pipeline into Postgres, and keeps the redis
// snapshot cache warm for the API.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frknaykc/dragonseye/internal/application/ingest"
	"github.com/frknaykc/dragonseye/internal/application/serving"
	"github.com/frknaykc/dragonseye/internal/config"
	"github.com/frknaykc/dragonseye/internal/infrastructure/database/postgres"
	"github.com/frknaykc/dragonseye/internal/infrastructure/database/redis"
	"github.com/frknaykc/dragonseye/internal/infrastructure/messaging/kafka"
	"github.com/frknaykc/dragonseye/internal/infrastructure/monitoring/logging"
	"github.com/frknaykc/dragonseye/internal/infrastructure/monitoring/prometheus"
)

const (
	defaultConfigPath = "configs/config.yaml"
	defaultHealthPort = 8081

	// viewRefreshLockKey serializes snapshot warming across replicas.
	viewRefreshLockKey = "locks:view-refresh"
)

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	healthPort := flag.Int("health-port", defaultHealthPort, "health and metrics listen port")
	flag.Parse()

	if err := run(*configPath, *healthPort); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, healthPort int) error {
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
	logger = logger.Named("worker")

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
		Subsystem:            "worker",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	metrics := prometheus.NewAppMetrics(collector)

	cache := redis.NewCache(redisClient, logger, redis.WithAccessRecorder(func(hit bool) {
		prometheus.RecordCacheAccess(metrics, "snapshots", hit)
	}))

	// Ingest pipeline.
	stores := ingest.NewStores(pool.Pool(), logger)
	service := ingest.NewService(stores, cache, logger)

	producer, err := kafka.NewProducer(cfg.Kafka, logger)
	if err != nil {
		return fmt.Errorf("init producer: %w", err)
	}
	defer producer.Close()

	consumer, err := kafka.NewConsumer(cfg.Kafka, cfg.Worker, producer, logger)
	if err != nil {
		return fmt.Errorf("init consumer: %w", err)
	}
	defer consumer.Close()
	consumer.SetObserver(prometheus.IngestRecorder{Metrics: metrics})
	service.Register(consumer)

	// Health and metrics endpoint.
	healthSrv := startHealthServer(healthPort, pool, redisClient, collector, logger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		healthSrv.Shutdown(shutdownCtx)
	}()

	// Periodic snapshot warming. One replica at a time via the redis
	// lock; the others skip the round.
	refreshInterval := cfg.Cache.ViewTTL
	if refreshInterval <= 0 {
		refreshInterval = 5 * time.Minute
	}
	go warmLoop(ctx, refreshInterval, redisClient, pool, cache, metrics, logger)

	logger.Info("consuming",
		logging.Any("brokers", cfg.Kafka.Brokers),
		logging.String("group_id", cfg.Kafka.GroupID),
		logging.Int("health_port", healthPort))

	consumer.Start(ctx)

	m := consumer.Metrics()
	logger.Info("worker stopped",
		logging.Int64("consumed", m.Consumed.Load()),
		logging.Int64("processed", m.Processed.Load()),
		logging.Int64("dead_lettered", m.DeadLettered.Load()))
	return nil
}

// warmLoop repopulates the snapshot cache so API reads stay warm after
// ingest invalidations.
func warmLoop(ctx context.Context, interval time.Duration, client *redis.Client, pool *postgres.Pool, cache redis.Cache, metrics *prometheus.AppMetrics, logger logging.Logger) {
	source := serving.NewSource(serving.NewRepos(pool.Pool(), logger), cache, logger, serving.WithViewTTL(interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		mutex := redis.NewMutex(client, viewRefreshLockKey, redis.WithLockTTL(interval))
		ok, err := mutex.TryLock(ctx)
		if err != nil {
			logger.Warn("view refresh lock failed", logging.Err(err))
			continue
		}
		if !ok {
			continue
		}

		warmSnapshots(ctx, source, metrics, logger)

		if err := mutex.Unlock(ctx); err != nil {
			logger.Warn("view refresh unlock failed", logging.Err(err))
		}
	}
}

func warmSnapshots(ctx context.Context, source *serving.Source, metrics *prometheus.AppMetrics, logger logging.Logger) {
	start := time.Now()
	if victims, err := source.Victims(ctx); err != nil {
		logger.Warn("victim snapshot refresh failed", logging.Err(err))
	} else if metrics != nil {
		metrics.VictimsTotal.WithLabelValues("snapshot").Set(float64(len(victims)))
	}
	if groups, err := source.Groups(ctx); err != nil {
		logger.Warn("group snapshot refresh failed", logging.Err(err))
	} else if metrics != nil {
		metrics.GroupsTotal.WithLabelValues("snapshot").Set(float64(len(groups)))
	}
	if _, err := source.Notes(ctx); err != nil {
		logger.Warn("note snapshot refresh failed", logging.Err(err))
	}
	if _, err := source.Decryptors(ctx); err != nil {
		logger.Warn("decryptor snapshot refresh failed", logging.Err(err))
	}
	if _, err := source.Chats(ctx); err != nil {
		logger.Warn("chat snapshot refresh failed", logging.Err(err))
	}
	logger.Debug("snapshots warmed", logging.Duration("took", time.Since(start)))
}

func startHealthServer(port int, pool *postgres.Pool, client *redis.Client, collector prometheus.MetricsCollector, logger logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := pool.HealthCheck(ctx); err != nil {
			http.Error(w, "postgres: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		if err := client.Ping(ctx); err != nil {
			http.Error(w, "redis: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	})
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("health server error", logging.Err(err))
		}
	}()
	return srv
}
