package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultEnvironment = EnvDev

	DefaultServerHost            = "0.0.0.0"
	DefaultServerPort            = 8000
	DefaultServerReadTimeout     = 30 * time.Second
	DefaultServerWriteTimeout    = 60 * time.Second
	DefaultServerShutdownTimeout = 15 * time.Second
	DefaultServerMaxUploadBytes  = 64 << 20
	DefaultServerID              = "molstore"

	DefaultDBHost            = "localhost"
	DefaultDBPort            = 5432
	DefaultDBUser            = "postgres"
	DefaultDBName            = "molstore"
	DefaultDBSSLMode         = "disable"
	DefaultDBMaxOpenConns    = 25
	DefaultDBMaxIdleConns    = 5
	DefaultDBConnMaxLifetime = 30 * time.Minute
	// DefaultMigrationsPath is empty: the embedded migrations are used.
	DefaultMigrationsPath = ""

	DefaultRedisAddr         = "localhost:6379"
	DefaultRedisDB           = 0
	DefaultRedisPoolSize     = 10
	DefaultRedisDialTimeout  = 5 * time.Second
	DefaultRedisReadTimeout  = 3 * time.Second
	DefaultRedisWriteTimeout = 3 * time.Second

	DefaultKafkaBroker            = "localhost:9092"
	DefaultKafkaGroupID           = "molstore-worker"
	DefaultKafkaSubstructureTopic = "molecule.substructure.search"
	DefaultKafkaAutoOffsetReset   = "earliest"
	DefaultKafkaMaxRetries        = 3

	DefaultCacheStrategy     = CacheStrategyService
	DefaultCachePrefix       = "molecules"
	DefaultCacheTTL          = 7 * 24 * time.Hour
	DefaultCacheMaxBodyBytes = 1 << 20
	DefaultResponsePattern   = "**/molecules/**"

	DefaultTaskResultTTL = 24 * time.Hour
	DefaultTaskLockTTL   = 5 * time.Minute

	DefaultMetricsNamespace = "molstore"

	DefaultStorageEndpoint      = "localhost:9000"
	DefaultStorageRegion        = "us-east-1"
	DefaultStorageBucket        = "molstore-uploads"
	DefaultStoragePrefix        = "uploads"
	DefaultStorageRetentionDays = 90
	DefaultStoragePartSize      = 16 << 20
	// MinStoragePartSize is the smallest multipart chunk S3 accepts.
	MinStoragePartSize = 5 << 20

	DefaultLogLevel  = logging.LevelInfo
	DefaultLogFormat = "json"
)

// registerDefaults seeds v with every known key.  AutomaticEnv only resolves
// keys viper already knows about, so this is what lets LoadFromEnv see
// MOLSTORE_DATABASE_HOST and friends without a config file.
func registerDefaults(v *viper.Viper) {
	v.SetDefault("environment", string(DefaultEnvironment))

	v.SetDefault("server.host", DefaultServerHost)
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.read_timeout", DefaultServerReadTimeout)
	v.SetDefault("server.write_timeout", DefaultServerWriteTimeout)
	v.SetDefault("server.shutdown_timeout", DefaultServerShutdownTimeout)
	v.SetDefault("server.max_upload_bytes", DefaultServerMaxUploadBytes)
	v.SetDefault("server.server_id", DefaultServerID)

	v.SetDefault("database.host", DefaultDBHost)
	v.SetDefault("database.port", DefaultDBPort)
	v.SetDefault("database.user", DefaultDBUser)
	v.SetDefault("database.password", "")
	v.SetDefault("database.db_name", DefaultDBName)
	v.SetDefault("database.ssl_mode", DefaultDBSSLMode)
	v.SetDefault("database.max_open_conns", DefaultDBMaxOpenConns)
	v.SetDefault("database.max_idle_conns", DefaultDBMaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", DefaultDBConnMaxLifetime)
	v.SetDefault("database.migrations_path", DefaultMigrationsPath)

	v.SetDefault("redis.addr", DefaultRedisAddr)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", DefaultRedisDB)
	v.SetDefault("redis.pool_size", DefaultRedisPoolSize)
	v.SetDefault("redis.dial_timeout", DefaultRedisDialTimeout)
	v.SetDefault("redis.read_timeout", DefaultRedisReadTimeout)
	v.SetDefault("redis.write_timeout", DefaultRedisWriteTimeout)

	v.SetDefault("kafka.brokers", []string{DefaultKafkaBroker})
	v.SetDefault("kafka.group_id", DefaultKafkaGroupID)
	v.SetDefault("kafka.substructure_topic", DefaultKafkaSubstructureTopic)
	v.SetDefault("kafka.dead_letter_topic", DefaultKafkaSubstructureTopic+".dlq")
	v.SetDefault("kafka.auto_offset_reset", DefaultKafkaAutoOffsetReset)
	v.SetDefault("kafka.max_retries", DefaultKafkaMaxRetries)

	v.SetDefault("cache.strategy", DefaultCacheStrategy)
	v.SetDefault("cache.prefix", DefaultCachePrefix)
	v.SetDefault("cache.ttl", DefaultCacheTTL)
	v.SetDefault("cache.response_patterns", []string{DefaultResponsePattern})
	v.SetDefault("cache.max_body_bytes", DefaultCacheMaxBodyBytes)

	v.SetDefault("task.result_ttl", DefaultTaskResultTTL)
	v.SetDefault("task.lock_ttl", DefaultTaskLockTTL)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", DefaultMetricsNamespace)

	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.endpoint", DefaultStorageEndpoint)
	v.SetDefault("storage.access_key_id", "")
	v.SetDefault("storage.secret_access_key", "")
	v.SetDefault("storage.use_ssl", false)
	v.SetDefault("storage.region", DefaultStorageRegion)
	v.SetDefault("storage.bucket", DefaultStorageBucket)
	v.SetDefault("storage.prefix", DefaultStoragePrefix)
	v.SetDefault("storage.retention_days", DefaultStorageRetentionDays)
	v.SetDefault("storage.part_size", DefaultStoragePartSize)

	v.SetDefault("log.level", string(DefaultLogLevel))
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("log.output_paths", []string{"stdout"})
	v.SetDefault("log.error_output_paths", []string{"stderr"})
}

// ApplyDefaults fills every zero-value field in cfg with the molstore default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Environment == "" {
		cfg.Environment = DefaultEnvironment
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultServerReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultServerWriteTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultServerShutdownTimeout
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = DefaultServerMaxUploadBytes
	}
	if cfg.Server.ServerID == "" {
		cfg.Server.ServerID = DefaultServerID
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.User == "" {
		cfg.Database.User = DefaultDBUser
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = DefaultDBSSLMode
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = DefaultDBMaxOpenConns
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = DefaultDBMaxIdleConns
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = DefaultDBConnMaxLifetime
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	// DB 0 is both the default and a valid explicit value.
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = DefaultRedisPoolSize
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = DefaultRedisDialTimeout
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = DefaultRedisReadTimeout
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = DefaultRedisWriteTimeout
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.SubstructureTopic == "" {
		cfg.Kafka.SubstructureTopic = DefaultKafkaSubstructureTopic
	}
	if cfg.Kafka.DeadLetterTopic == "" {
		cfg.Kafka.DeadLetterTopic = cfg.Kafka.SubstructureTopic + ".dlq"
	}
	if cfg.Kafka.AutoOffsetReset == "" {
		cfg.Kafka.AutoOffsetReset = DefaultKafkaAutoOffsetReset
	}
	if cfg.Kafka.MaxRetries == 0 {
		cfg.Kafka.MaxRetries = DefaultKafkaMaxRetries
	}

	// ── Cache ─────────────────────────────────────────────────────────────────
	if cfg.Cache.Strategy == "" {
		cfg.Cache.Strategy = DefaultCacheStrategy
	}
	if cfg.Cache.Prefix == "" {
		cfg.Cache.Prefix = DefaultCachePrefix
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if len(cfg.Cache.ResponsePatterns) == 0 {
		cfg.Cache.ResponsePatterns = []string{DefaultResponsePattern}
	}
	if cfg.Cache.MaxBodyBytes == 0 {
		cfg.Cache.MaxBodyBytes = DefaultCacheMaxBodyBytes
	}

	// ── Task ──────────────────────────────────────────────────────────────────
	if cfg.Task.ResultTTL == 0 {
		cfg.Task.ResultTTL = DefaultTaskResultTTL
	}
	if cfg.Task.LockTTL == 0 {
		cfg.Task.LockTTL = DefaultTaskLockTTL
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}

	// ── Storage ───────────────────────────────────────────────────────────────
	if cfg.Storage.Endpoint == "" {
		cfg.Storage.Endpoint = DefaultStorageEndpoint
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = DefaultStorageRegion
	}
	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = DefaultStorageBucket
	}
	if cfg.Storage.Prefix == "" {
		cfg.Storage.Prefix = DefaultStoragePrefix
	}
	// RetentionDays 0 keeps archives forever, so it is not defaulted here.
	if cfg.Storage.PartSize == 0 {
		cfg.Storage.PartSize = DefaultStoragePartSize
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if len(cfg.Log.OutputPaths) == 0 {
		cfg.Log.OutputPaths = []string{"stdout"}
	}
}

// NewDefaultConfig returns a Config populated entirely from defaults.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

//Personal.AI order the ending
