// Package app wires the infrastructure clients and application services shared
// by the molstore binaries.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/qaioz/molstore/internal/application/drug"
	"github.com/qaioz/molstore/internal/application/molecule"
	"github.com/qaioz/molstore/internal/chem"
	"github.com/qaioz/molstore/internal/config"
	"github.com/qaioz/molstore/internal/infrastructure/cache"
	"github.com/qaioz/molstore/internal/infrastructure/database/postgres"
	"github.com/qaioz/molstore/internal/infrastructure/database/postgres/repositories"
	"github.com/qaioz/molstore/internal/infrastructure/database/redis"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/prometheus"
	"github.com/qaioz/molstore/internal/infrastructure/storage/minio"
	"github.com/qaioz/molstore/internal/interfaces/http/handlers"
	"github.com/qaioz/molstore/internal/interfaces/http/middleware"
)

// Infrastructure holds the clients a molstore process talks to.
type Infrastructure struct {
	Config    *config.Config
	Logger    logging.Logger
	Postgres  *postgres.Connection
	Redis     *redis.Client
	Collector prometheus.MetricsCollector
	Metrics   *prometheus.AppMetrics
	Matcher   *chem.Toolkit
	// Archive is nil unless storage is enabled.
	Archive *minio.Archive
}

// NewInfrastructure connects to postgres, redis and, when enabled, the upload
// archive, and sets up metrics.
// component labels the metric series ("apiserver", "worker", "cli").
func NewInfrastructure(cfg *config.Config, logger logging.Logger, component string) (*Infrastructure, error) {
	infra := &Infrastructure{Config: cfg, Logger: logger, Matcher: chem.NewToolkit()}

	if cfg.Metrics.Enabled {
		collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfigFrom(cfg.Metrics, component), logger)
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		infra.Collector = collector
	} else {
		infra.Collector = prometheus.NewNopCollector()
	}
	infra.Metrics = prometheus.NewAppMetrics(infra.Collector)

	pg, err := postgres.NewConnection(cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	infra.Postgres = pg

	rc, err := redis.NewClient(cfg.Redis, logger)
	if err != nil {
		infra.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}
	infra.Redis = rc

	if cfg.Storage.Enabled {
		archive, err := minio.NewArchive(cfg.Storage, logger)
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("storage: %w", err)
		}
		infra.Archive = archive
	}

	logger.Info("infrastructure initialized", logging.String("component", component))
	return infra, nil
}

// Close releases every client that was opened.
func (i *Infrastructure) Close() {
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			i.Logger.Warn("redis close failed", logging.Err(err))
		}
	}
	if i.Postgres != nil {
		if err := i.Postgres.Close(); err != nil {
			i.Logger.Warn("postgres close failed", logging.Err(err))
		}
	}
}

// cacheStore returns the redis-backed cache configured by the cache section.
func (i *Infrastructure) cacheStore() redis.Cache {
	var opts []redis.CacheOption
	if i.Config.Cache.TTL > 0 {
		opts = append(opts, redis.WithDefaultTTL(i.Config.Cache.TTL))
	}
	if i.Config.Cache.Prefix != "" {
		opts = append(opts, redis.WithPrefix(i.Config.Cache.Prefix))
	}
	return redis.NewRedisCache(i.Redis, i.Logger, opts...)
}

// MoleculeService builds the molecule service.  Service results are cached
// only under the "service" strategy; imports are archived when storage is on.
func (i *Infrastructure) MoleculeService() molecule.Service {
	var store redis.Cache
	if i.Config.Cache.Strategy == config.CacheStrategyService {
		store = i.cacheStore()
	}
	aside := cache.NewAside(store, i.Logger.Named("cache"), i.Metrics)
	repo := repositories.NewPostgresMoleculeRepo(i.Postgres, i.Logger)
	svc := molecule.NewService(repo, i.Matcher, aside, i.Metrics, i.Logger)
	if i.Archive != nil {
		svc = molecule.WithArchive(svc, i.Archive, i.Logger)
	}
	return svc
}

// DrugService builds the drug service.
func (i *Infrastructure) DrugService() drug.Service {
	return drug.NewService(repositories.NewPostgresDrugRepo(i.Postgres, i.Logger), i.Logger)
}

// TaskStore keeps task records in redis for the configured result TTL.
func (i *Infrastructure) TaskStore() *redis.TaskStore {
	return redis.NewTaskStore(i.Redis, i.Config.Task.ResultTTL)
}

// ResponseCache returns the response cache middleware, or nil unless the
// "response" strategy is selected.
func (i *Infrastructure) ResponseCache() (func(http.Handler) http.Handler, error) {
	if i.Config.Cache.Strategy != config.CacheStrategyResponse {
		return nil, nil
	}
	return middleware.ResponseCache(i.cacheStore(), middleware.ResponseCacheConfig{
		Patterns:     i.Config.Cache.ResponsePatterns,
		TTL:          i.Config.Cache.TTL,
		MaxBodyBytes: i.Config.Cache.MaxBodyBytes,
	}, i.Logger, i.Metrics)
}

// HealthChecks pings the datastores for the readiness endpoint.
func (i *Infrastructure) HealthChecks() []handlers.HealthChecker {
	checks := []handlers.HealthChecker{
		handlers.NewHealthCheck("postgres", i.Postgres.HealthCheck),
		handlers.NewHealthCheck("redis", func(ctx context.Context) error { return i.Redis.Ping(ctx) }),
	}
	if i.Archive != nil {
		checks = append(checks, handlers.NewHealthCheck("object_storage", i.Archive.HealthCheck))
	}
	return checks
}

//Personal.AI order the ending
