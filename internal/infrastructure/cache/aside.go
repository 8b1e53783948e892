package cache

import (
	"context"
	"time"

	"github.com/qaioz/molstore/internal/infrastructure/database/redis"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/prometheus"
)

// DefaultTTL applies when Options.TTL is zero.
const DefaultTTL = 7 * 24 * time.Hour

const metricsLabel = "service"

// Aside reads service results through a redis cache.  A nil store turns
// every call into a plain call of the wrapped function.
type Aside struct {
	store   redis.Cache
	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

// NewAside builds the wrapper.  Pass a nil store to disable caching.
func NewAside(store redis.Cache, log logging.Logger, metrics *prometheus.AppMetrics) *Aside {
	if metrics == nil {
		metrics = prometheus.NewNopAppMetrics()
	}
	return &Aside{store: store, logger: log, metrics: metrics}
}

// Enabled reports whether results are cached.
func (a *Aside) Enabled() bool {
	return a != nil && a.store != nil
}

// Invalidate removes every entry whose key starts with prefix.
func (a *Aside) Invalidate(ctx context.Context, prefix string) (int64, error) {
	if !a.Enabled() {
		return 0, nil
	}
	n, err := a.store.DeleteByPrefix(ctx, prefix)
	if err != nil {
		prometheus.RecordCacheError(a.metrics, metricsLabel, "invalidate")
		return n, err
	}
	a.metrics.CacheInvalidationsTotal.WithLabelValues(prefix).Add(float64(n))
	a.logger.Debug("cache invalidated", logging.String("prefix", prefix), logging.Int64("keys", n))
	return n, nil
}

// Options describes one cached operation.
type Options[T any] struct {
	// Prefix is the first key segment and the metrics label.
	Prefix string
	// KeyArgs restricts which arguments take part in the key.  Empty means
	// all of them.
	KeyArgs []string
	TTL     time.Duration
	// MapReturn transforms a freshly computed result before it is stored
	// and returned.
	MapReturn func(T) T
}

// Cached returns the cached result of fn for args, computing and storing it
// on a miss.  A context carrying Cache-Control: no-cache skips the cached
// value and overwrites it with a fresh one.  Store read and write errors and
// corrupt entries are returned to the caller.
func Cached[T any](ctx context.Context, a *Aside, opts Options[T], args map[string]any, fn func(context.Context) (T, error)) (T, error) {
	load := func(ctx context.Context) (T, error) {
		v, err := fn(ctx)
		if err != nil {
			var zero T
			return zero, err
		}
		if opts.MapReturn != nil {
			v = opts.MapReturn(v)
		}
		return v, nil
	}

	if !a.Enabled() {
		return load(ctx)
	}

	key := BuildKey(opts.Prefix, opts.KeyArgs, args)
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	if NoCache(ctx) {
		return revalidate(ctx, a, key, opts.Prefix, ttl, load)
	}

	var out T
	loaded := false
	var loadErr error
	err := a.store.GetOrSet(ctx, key, &out, ttl, func(ctx context.Context) (interface{}, error) {
		loaded = true
		v, err := load(ctx)
		loadErr = err
		return v, err
	})
	if err != nil {
		switch {
		case !loaded:
			prometheus.RecordCacheError(a.metrics, metricsLabel, "get")
		case loadErr == nil:
			prometheus.RecordCacheError(a.metrics, metricsLabel, "set")
		}
		var zero T
		return zero, err
	}

	if loaded {
		a.logger.Info("cache miss", logging.String("key", key))
	} else {
		a.logger.Info("cache hit", logging.String("key", key))
	}
	prometheus.RecordCacheAccess(a.metrics, metricsLabel, opts.Prefix, !loaded)
	return out, nil
}

// revalidate serves a no-cache request: the entry is checked so hits and
// misses are still observed, then replaced with a fresh result.
func revalidate[T any](ctx context.Context, a *Aside, key, prefix string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var zero T
	exists, err := a.store.Exists(ctx, key)
	if err != nil {
		prometheus.RecordCacheError(a.metrics, metricsLabel, "get")
		return zero, err
	}
	if exists {
		a.logger.Info("cache hit ignored due to cache-control, revalidating", logging.String("key", key))
	} else {
		a.logger.Info("cache miss", logging.String("key", key))
	}
	prometheus.RecordCacheAccess(a.metrics, metricsLabel, prefix, exists)

	v, err := load(ctx)
	if err != nil {
		return zero, err
	}
	if err := a.store.Set(ctx, key, v, ttl); err != nil {
		prometheus.RecordCacheError(a.metrics, metricsLabel, "set")
		return zero, err
	}
	return v, nil
}

//Personal.AI order the ending
