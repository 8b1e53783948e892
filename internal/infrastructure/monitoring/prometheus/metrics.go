package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds the series molstore publishes.
type AppMetrics struct {
	// HTTP Layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Cache Layer
	CacheHitsTotal          CounterVec
	CacheMissesTotal        CounterVec
	CacheInvalidationsTotal CounterVec
	CacheErrorsTotal        CounterVec

	// Molecule Layer
	MoleculesImportedTotal CounterVec
	ImportRowsSkippedTotal CounterVec
	SearchDuration         HistogramVec
	SearchScannedTotal     CounterVec

	// Task Layer
	TasksTotal        CounterVec
	TaskDuration      HistogramVec
	TasksDispatched   CounterVec
	TaskActiveWorkers GaugeVec

	// Errors
	ErrorsTotal CounterVec
}

// Default Buckets
var (
	DefaultHTTPDurationBuckets   = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultSearchDurationBuckets = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120}
)

// NewAppMetrics registers all metrics and returns AppMetrics struct.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// HTTP
	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method")

	// Cache
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache", "prefix")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache", "prefix")
	m.CacheInvalidationsTotal = collector.RegisterCounter("cache_invalidated_keys_total", "Cache keys removed by prefix invalidation", "prefix")
	m.CacheErrorsTotal = collector.RegisterCounter("cache_errors_total", "Cache store failures", "cache", "operation")

	// Molecules
	m.MoleculesImportedTotal = collector.RegisterCounter("molecules_imported_total", "Molecules inserted by CSV ingestion", "mode")
	m.ImportRowsSkippedTotal = collector.RegisterCounter("import_rows_skipped_total", "CSV rows skipped during validated ingestion", "reason")
	m.SearchDuration = collector.RegisterHistogram("structure_search_duration_seconds", "Substructure and superstructure scan duration", DefaultSearchDurationBuckets, "direction")
	m.SearchScannedTotal = collector.RegisterCounter("structure_search_scanned_total", "Stored molecules examined by structure scans", "direction")

	// Tasks
	m.TasksTotal = collector.RegisterCounter("tasks_total", "Background tasks finished", "name", "status")
	m.TaskDuration = collector.RegisterHistogram("task_duration_seconds", "Background task duration", DefaultSearchDurationBuckets, "name")
	m.TasksDispatched = collector.RegisterCounter("tasks_dispatched_total", "Background tasks queued", "name")
	m.TaskActiveWorkers = collector.RegisterGauge("task_active", "Background tasks currently running", "name")

	// Errors
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "code")

	return m
}

// NewNopAppMetrics returns metrics registered on a private registry that
// nothing scrapes.
func NewNopAppMetrics() *AppMetrics {
	return NewAppMetrics(NewNopCollector())
}

// Helpers

func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func RecordCacheAccess(metrics *AppMetrics, cache, prefix string, hit bool) {
	if hit {
		metrics.CacheHitsTotal.WithLabelValues(cache, prefix).Inc()
	} else {
		metrics.CacheMissesTotal.WithLabelValues(cache, prefix).Inc()
	}
}

func RecordCacheError(metrics *AppMetrics, cache, operation string) {
	metrics.CacheErrorsTotal.WithLabelValues(cache, operation).Inc()
}

func RecordTask(metrics *AppMetrics, name string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	metrics.TasksTotal.WithLabelValues(name, status).Inc()
	metrics.TaskDuration.WithLabelValues(name).Observe(duration.Seconds())
}

func RecordSearch(metrics *AppMetrics, direction string, scanned int, duration time.Duration) {
	metrics.SearchDuration.WithLabelValues(direction).Observe(duration.Seconds())
	metrics.SearchScannedTotal.WithLabelValues(direction).Add(float64(scanned))
}

func RecordError(metrics *AppMetrics, component, code string) {
	metrics.ErrorsTotal.WithLabelValues(component, code).Inc()
}

//Personal.AI order the ending
