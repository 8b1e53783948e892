package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/prometheus"
	"github.com/qaioz/molstore/internal/interfaces/http/handlers"
	"github.com/qaioz/molstore/internal/interfaces/http/middleware"
)

// RouterConfig aggregates all handler and middleware dependencies required
// to construct the complete HTTP route tree.
type RouterConfig struct {
	// Handlers
	MoleculeHandler *handlers.MoleculeHandler
	DrugHandler     *handlers.DrugHandler
	TaskHandler     *handlers.TaskHandler
	HealthHandler   *handlers.HealthHandler

	// ResponseCache is installed when the response cache strategy is
	// selected; nil leaves responses uncached.
	ResponseCache func(http.Handler) http.Handler
	Logging       middleware.LoggingConfig

	// Infrastructure
	Logger           logging.Logger
	Metrics          *prometheus.AppMetrics
	MetricsCollector prometheus.MetricsCollector
}

// NewRouter constructs the complete HTTP route tree from the given configuration.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	r := chi.NewRouter()

	// --- Global middleware (applied to every request) ---
	r.Use(middleware.RequestTiming(logger, cfg.Metrics))
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestContext)
	r.Use(chimw.StripSlashes)
	r.Use(middleware.RequestLogging(logger, cfg.Logging))
	if cfg.ResponseCache != nil {
		r.Use(cfg.ResponseCache)
	}

	if cfg.HealthHandler != nil {
		r.Get("/", cfg.HealthHandler.Root)
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsCollector != nil {
		r.Handle("/metrics", cfg.MetricsCollector.Handler())
	}

	registerMoleculeRoutes(r, cfg.MoleculeHandler)
	registerDrugRoutes(r, cfg.DrugHandler)
	registerTaskRoutes(r, cfg.TaskHandler)

	return r
}

// registerMoleculeRoutes mounts molecule resource endpoints under /molecules.
func registerMoleculeRoutes(r chi.Router, h *handlers.MoleculeHandler) {
	if h == nil {
		return
	}
	r.Route("/molecules", func(mr chi.Router) {
		mr.Get("/", h.List)
		mr.Post("/", h.Create)
		mr.Post("/upload", h.Upload)

		mr.Get("/search/substructures", h.Substructures)
		mr.Get("/search/superstructures", h.Superstructures)

		mr.Route("/{id}", func(item chi.Router) {
			item.Get("/", h.Get)
			item.Patch("/", h.Update)
			item.Delete("/", h.Delete)
		})
	})
}

// registerDrugRoutes mounts drug resource endpoints under /drugs.
func registerDrugRoutes(r chi.Router, h *handlers.DrugHandler) {
	if h == nil {
		return
	}
	r.Route("/drugs", func(dr chi.Router) {
		dr.Get("/", h.List)
		dr.Post("/", h.Create)

		dr.Route("/{id}", func(item chi.Router) {
			item.Get("/", h.Get)
			item.Delete("/", h.Delete)
		})
	})
}

// registerTaskRoutes mounts the background task status endpoint.
func registerTaskRoutes(r chi.Router, h *handlers.TaskHandler) {
	if h == nil {
		return
	}
	r.Get("/tasks/{task_id}", h.Get)
}

//Personal.AI order the ending
