// Package config defines the configuration structures for molstore.  No I/O
// or parsing logic lives in this file, only plain data types and validation.
package config

import (
	"fmt"
	"time"

	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
)

// Environment selects which configuration profile is loaded.
type Environment string

const (
	EnvProd Environment = "PROD"
	EnvDev  Environment = "DEV"
	EnvTest Environment = "TEST"
)

// Cache strategies.  The service-level cache-aside wrapper and the whole
// response cache are mutually exclusive.
const (
	CacheStrategyService  = "service"
	CacheStrategyResponse = "response"
	CacheStrategyNone     = "none"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
	// ServerID is echoed by GET / so a load-balanced deployment can tell
	// instances apart.
	ServerID string `mapstructure:"server_id"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// KafkaConfig holds the task queue parameters.
type KafkaConfig struct {
	Brokers           []string `mapstructure:"brokers"`
	GroupID           string   `mapstructure:"group_id"`
	SubstructureTopic string   `mapstructure:"substructure_topic"`
	DeadLetterTopic   string   `mapstructure:"dead_letter_topic"`
	AutoOffsetReset   string   `mapstructure:"auto_offset_reset"` // "earliest" | "latest"
	MaxRetries        int      `mapstructure:"max_retries"`
}

// CacheConfig selects and tunes the caching layer.
type CacheConfig struct {
	Strategy         string        `mapstructure:"strategy"` // "service" | "response" | "none"
	Prefix           string        `mapstructure:"prefix"`
	TTL              time.Duration `mapstructure:"ttl"`
	ResponsePatterns []string      `mapstructure:"response_patterns"`
	MaxBodyBytes     int64         `mapstructure:"max_body_bytes"`
}

// TaskConfig holds background task bookkeeping parameters.
type TaskConfig struct {
	ResultTTL time.Duration `mapstructure:"result_ttl"`
	LockTTL   time.Duration `mapstructure:"lock_ttl"`
}

// MetricsConfig controls the prometheus collector.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// StorageConfig configures the object store that keeps a copy of every
// imported CSV.  Archiving is off unless Enabled is set.
type StorageConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
	RetentionDays   int    `mapstructure:"retention_days"`
	PartSize        uint64 `mapstructure:"part_size"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.  Every infrastructure component
// and application service reads its settings from the relevant sub-struct.
type Config struct {
	Environment Environment       `mapstructure:"environment"`
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Kafka       KafkaConfig       `mapstructure:"kafka"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Task        TaskConfig        `mapstructure:"task"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Log         logging.LogConfig `mapstructure:"log"`
}

// DSN renders the libpq connection string for the database section.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

// Addr renders host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers treat any error as fatal.
func (c *Config) Validate() error {
	switch c.Environment {
	case EnvProd, EnvDev, EnvTest:
	default:
		return fmt.Errorf("config: environment %q is invalid; expected PROD|DEV|TEST", c.Environment)
	}

	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}

	// Database
	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}
	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("config: database.max_open_conns must be >= 1, got %d", c.Database.MaxOpenConns)
	}

	// Redis
	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
	}

	// Kafka
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
	}
	if c.Kafka.GroupID == "" {
		return fmt.Errorf("config: kafka.group_id is required")
	}
	if c.Kafka.SubstructureTopic == "" {
		return fmt.Errorf("config: kafka.substructure_topic is required")
	}
	switch c.Kafka.AutoOffsetReset {
	case "earliest", "latest":
	default:
		return fmt.Errorf("config: kafka.auto_offset_reset %q is invalid; expected earliest|latest", c.Kafka.AutoOffsetReset)
	}

	// Cache
	switch c.Cache.Strategy {
	case CacheStrategyService, CacheStrategyResponse, CacheStrategyNone:
	default:
		return fmt.Errorf("config: cache.strategy %q is invalid; expected service|response|none", c.Cache.Strategy)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("config: cache.ttl must be positive, got %s", c.Cache.TTL)
	}
	if c.Cache.MaxBodyBytes <= 0 {
		return fmt.Errorf("config: cache.max_body_bytes must be positive, got %d", c.Cache.MaxBodyBytes)
	}

	// Storage
	if c.Storage.Enabled {
		if c.Storage.Endpoint == "" {
			return fmt.Errorf("config: storage.endpoint is required when storage is enabled")
		}
		if c.Storage.Bucket == "" {
			return fmt.Errorf("config: storage.bucket is required when storage is enabled")
		}
		if c.Storage.PartSize < MinStoragePartSize {
			return fmt.Errorf("config: storage.part_size must be >= %d, got %d", MinStoragePartSize, c.Storage.PartSize)
		}
	}

	// Log
	if _, err := logging.ParseLevel(c.Log.Level.String()); err != nil {
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}

//Personal.AI order the ending
