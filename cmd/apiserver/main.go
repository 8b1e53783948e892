// API server entry point for molstore.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/qaioz/molstore/internal/app"
	"github.com/qaioz/molstore/internal/application/task"
	"github.com/qaioz/molstore/internal/config"
	"github.com/qaioz/molstore/internal/infrastructure/database/postgres"
	"github.com/qaioz/molstore/internal/infrastructure/messaging/kafka"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
	httpserver "github.com/qaioz/molstore/internal/interfaces/http"
	"github.com/qaioz/molstore/internal/interfaces/http/handlers"
	"github.com/qaioz/molstore/internal/interfaces/http/middleware"
)

const defaultConfigDir = "configs"

// version is injected via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: configs/config.<env>.yaml)")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	migrate := flag.Bool("migrate", false, "apply pending database migrations before serving")
	flag.Parse()

	cfg, err := config.Resolve(*configPath, defaultConfigDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger, *migrate); err != nil {
		logger.Error("api server exited", logging.Err(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger logging.Logger, migrate bool) error {
	logger.Info("starting molstore API server",
		logging.String("version", version),
		logging.String("addr", cfg.Server.Addr()),
		logging.String("cache_strategy", cfg.Cache.Strategy),
	)

	if migrate {
		if err := postgres.RunMigrations(cfg.Database, logger); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
	}

	infra, err := app.NewInfrastructure(cfg, logger, "apiserver")
	if err != nil {
		return err
	}
	defer infra.Close()

	producer, err := kafka.NewProducer(kafka.ProducerConfigFrom(cfg.Kafka), logger)
	if err != nil {
		return fmt.Errorf("kafka producer: %w", err)
	}
	defer func() { _ = producer.Close() }()

	responseCache, err := infra.ResponseCache()
	if err != nil {
		return err
	}

	dispatcher := task.NewDispatcher(infra.TaskStore(), producer, infra.Matcher, cfg.Kafka.SubstructureTopic, infra.Metrics, logger)

	router := httpserver.NewRouter(httpserver.RouterConfig{
		MoleculeHandler:  handlers.NewMoleculeHandler(infra.MoleculeService(), dispatcher, cfg.Server.MaxUploadBytes, logger),
		DrugHandler:      handlers.NewDrugHandler(infra.DrugService(), logger),
		TaskHandler:      handlers.NewTaskHandler(dispatcher, logger),
		HealthHandler:    handlers.NewHealthHandler(version, cfg.Server.ServerID, infra.HealthChecks()...),
		ResponseCache:    responseCache,
		Logging:          middleware.DefaultLoggingConfig(),
		Logger:           logger,
		Metrics:          infra.Metrics,
		MetricsCollector: infra.Collector,
	})
	srv := httpserver.NewServer(cfg.Server, router, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		return srv.Stop(context.Background())
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("molstore API server stopped")
	return nil
}

//Personal.AI order the ending
