package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qaioz/molstore/internal/config"
)

// validConfig returns a Config that passes Validate() with all defaults set.
func validConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Database.Password = "secret"
	return cfg
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_Failures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(*config.Config)
		wantMsg string
	}{
		{"environment", func(c *config.Config) { c.Environment = "STAGING" }, "environment"},
		{"server port low", func(c *config.Config) { c.Server.Port = 0 }, "server.port"},
		{"server port high", func(c *config.Config) { c.Server.Port = 70000 }, "server.port"},
		{"database host", func(c *config.Config) { c.Database.Host = "" }, "database.host"},
		{"database port", func(c *config.Config) { c.Database.Port = -1 }, "database.port"},
		{"database user", func(c *config.Config) { c.Database.User = "" }, "database.user"},
		{"database name", func(c *config.Config) { c.Database.DBName = "" }, "database.db_name"},
		{"database pool", func(c *config.Config) { c.Database.MaxOpenConns = 0 }, "database.max_open_conns"},
		{"redis addr", func(c *config.Config) { c.Redis.Addr = "" }, "redis.addr"},
		{"redis db", func(c *config.Config) { c.Redis.DB = -1 }, "redis.db"},
		{"kafka brokers", func(c *config.Config) { c.Kafka.Brokers = nil }, "kafka.brokers"},
		{"kafka group", func(c *config.Config) { c.Kafka.GroupID = "" }, "kafka.group_id"},
		{"kafka topic", func(c *config.Config) { c.Kafka.SubstructureTopic = "" }, "kafka.substructure_topic"},
		{"kafka offset", func(c *config.Config) { c.Kafka.AutoOffsetReset = "middle" }, "kafka.auto_offset_reset"},
		{"cache strategy", func(c *config.Config) { c.Cache.Strategy = "both" }, "cache.strategy"},
		{"cache ttl", func(c *config.Config) { c.Cache.TTL = -time.Second }, "cache.ttl"},
		{"cache body", func(c *config.Config) { c.Cache.MaxBodyBytes = 0 }, "cache.max_body_bytes"},
		{"storage endpoint", func(c *config.Config) { c.Storage.Enabled, c.Storage.Endpoint = true, "" }, "storage.endpoint"},
		{"storage bucket", func(c *config.Config) { c.Storage.Enabled, c.Storage.Bucket = true, "" }, "storage.bucket"},
		{"storage part size", func(c *config.Config) { c.Storage.Enabled, c.Storage.PartSize = true, 1 << 20 }, "storage.part_size"},
		{"log level", func(c *config.Config) { c.Log.Level = "verbose" }, "log.level"},
		{"log format", func(c *config.Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantMsg)
			assert.Contains(t, err.Error(), "config:")
		})
	}
}

func TestConfig_Validate_StorageDisabledSkipsChecks(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Storage.Endpoint = ""
	assert.NoError(t, cfg.Validate())

	cfg = validConfig()
	cfg.Storage.Enabled = true
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_AllCacheStrategies(t *testing.T) {
	t.Parallel()
	for _, s := range []string{config.CacheStrategyService, config.CacheStrategyResponse, config.CacheStrategyNone} {
		cfg := validConfig()
		cfg.Cache.Strategy = s
		assert.NoError(t, cfg.Validate(), s)
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Parallel()
	d := config.DatabaseConfig{
		Host: "db", Port: 5433, User: "u", Password: "p", DBName: "mols", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://u:p@db:5433/mols?sslmode=disable", d.DSN())
}

func TestServerConfig_Addr(t *testing.T) {
	t.Parallel()
	s := config.ServerConfig{Host: "127.0.0.1", Port: 8000}
	assert.Equal(t, "127.0.0.1:8000", s.Addr())
}

//Personal.AI order the ending
