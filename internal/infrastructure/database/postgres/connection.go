// Package postgres manages the PostgreSQL connection pool and schema
// migrations for the DragonsEye store.
package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/frknaykc/dragonseye/internal/config"
	"github.com/frknaykc/dragonseye/internal/infrastructure/monitoring/logging"
	"github.com/frknaykc/dragonseye/pkg/errors"
)

// Pool wraps a pgx connection pool with lifecycle logging.
type Pool struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// Connect builds a connection pool from the database configuration and
// verifies it with a ping before returning.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log logging.Logger) (*Pool, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to parse database configuration")
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = int32(cfg.MinConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.ConnMaxIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create connection pool")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "database connection failed")
	}

	log.Info("connected to PostgreSQL",
		logging.String("host", cfg.Host),
		logging.Int("port", cfg.Port),
		logging.String("database", cfg.DBName),
	)

	return &Pool{pool: pool, logger: log}, nil
}

// NewPoolWith wraps an existing pgx pool. Intended for tests.
func NewPoolWith(pool *pgxpool.Pool, log logging.Logger) *Pool {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Pool{pool: pool, logger: log}
}

// Pool returns the underlying pgx pool.
func (p *Pool) Pool() *pgxpool.Pool {
	return p.pool
}

// HealthCheck pings the database and warns when the pool is close to
// exhaustion.
func (p *Pool) HealthCheck(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "database health check failed")
	}

	stat := p.pool.Stat()
	if total := stat.TotalConns(); total > 0 {
		usage := float64(stat.AcquiredConns()) / float64(total)
		if usage > 0.8 {
			p.logger.Warn("high connection pool usage",
				logging.Int("acquired", int(stat.AcquiredConns())),
				logging.Int("total", int(total)),
				logging.Float64("usage", usage),
			)
		}
	}
	return nil
}

// Close releases the pool.
func (p *Pool) Close() {
	p.pool.Close()
	p.logger.Info("closed PostgreSQL connection pool")
}
