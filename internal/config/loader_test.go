package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9090
  mode: debug
database:
  host: db.internal
  user: eye
  password: s3cret
  db_name: dragonseye
redis:
  addr: cache.internal:6379
kafka:
  brokers: ["broker-1:9092", "broker-2:9092"]
  group_id: dragonseye-test
log:
  level: debug
  format: console
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "dragonseye-test", cfg.Kafka.GroupID)
	assert.Equal(t, "console", cfg.Log.Format)
	// Defaults fill unset fields.
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, DefaultRedisKeyPrefix, cfg.Redis.KeyPrefix)
	assert.Equal(t, DefaultCacheStatsTTL, cfg.Cache.StatsTTL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 99999
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadFromEnv_DefaultsOnly(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultDBName, cfg.Database.DBName)
	assert.Equal(t, DefaultKafkaGroupID, cfg.Kafka.GroupID)
	assert.Equal(t, DefaultWorkerConcurrency, cfg.Worker.Concurrency)
}

func TestLoadFromEnv_Override(t *testing.T) {
	t.Setenv("DRAGONSEYE_SERVER_PORT", "9191")
	t.Setenv("DRAGONSEYE_DATABASE_HOST", "pg.internal")
	t.Setenv("DRAGONSEYE_REDIS_ADDR", "redis.internal:6380")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "pg.internal", cfg.Database.Host)
	assert.Equal(t, "redis.internal:6380", cfg.Redis.Addr)
}

func TestApplyDefaults_NilSafe(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}

func TestApplyDefaults_ExplicitValuesWin(t *testing.T) {
	cfg := &Config{}
	cfg.Database.MaxConns = 5
	cfg.Worker.RetryBackoff = time.Minute
	ApplyDefaults(cfg)
	assert.Equal(t, 5, cfg.Database.MaxConns)
	assert.Equal(t, time.Minute, cfg.Worker.RetryBackoff)
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	assert.Panics(t, func() { MustLoad("/nonexistent/config.yaml") })
}

func TestWatch_InvokesCallbackOnChange(t *testing.T) {
	path := writeConfigFile(t, "server:\n  port: 8081\n")

	changed := make(chan *Config, 1)
	Watch(path, func(c *Config) {
		select {
		case changed <- c:
		default:
		}
	})

	// Give the watcher goroutine a moment to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 8082\n"), 0o644))

	select {
	case cfg := <-changed:
		assert.Equal(t, 8082, cfg.Server.Port)
	case <-time.After(5 * time.Second):
		t.Fatal("config change callback was not invoked")
	}
}
