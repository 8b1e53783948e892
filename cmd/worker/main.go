// Background worker entry point for molstore.  It consumes queued
// substructure searches and records their results for the API to serve.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/qaioz/molstore/internal/app"
	"github.com/qaioz/molstore/internal/application/task"
	"github.com/qaioz/molstore/internal/config"
	"github.com/qaioz/molstore/internal/infrastructure/database/redis"
	"github.com/qaioz/molstore/internal/infrastructure/messaging/kafka"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
	httpserver "github.com/qaioz/molstore/internal/interfaces/http"
	"github.com/qaioz/molstore/internal/interfaces/http/handlers"
)

const (
	defaultConfigDir  = "configs"
	defaultHealthPort = 8081
	topicSetupTimeout = 30 * time.Second
)

// version is injected via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: configs/config.<env>.yaml)")
	healthPort := flag.Int("health-port", defaultHealthPort, "port of the health and metrics endpoint")
	ensureTopics := flag.Bool("ensure-topics", true, "create the task and dead-letter topics if missing")
	flag.Parse()

	cfg, err := config.Resolve(*configPath, defaultConfigDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger, *healthPort, *ensureTopics); err != nil {
		logger.Error("worker exited", logging.Err(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger logging.Logger, healthPort int, ensureTopics bool) error {
	topic := cfg.Kafka.SubstructureTopic
	if topic == "" {
		topic = kafka.TopicSubstructureSearch
	}
	logger.Info("starting molstore worker",
		logging.String("version", version),
		logging.String("topic", topic),
		logging.String("group", cfg.Kafka.GroupID),
	)

	infra, err := app.NewInfrastructure(cfg, logger, "worker")
	if err != nil {
		return err
	}
	defer infra.Close()

	if ensureTopics {
		createTopics(cfg, logger)
	}

	worker := task.NewWorker(
		infra.TaskStore(),
		infra.MoleculeService(),
		redis.NewLockFactory(infra.Redis, logger),
		cfg.Task.LockTTL,
		infra.Metrics,
		logger,
	)

	consumer, err := kafka.NewConsumer(kafka.ConsumerConfigFrom(cfg.Kafka), logger)
	if err != nil {
		return fmt.Errorf("kafka consumer: %w", err)
	}
	defer func() { _ = consumer.Close() }()
	consumer.Subscribe(topic, worker.HandleMessage)

	health := httpserver.NewServer(
		config.ServerConfig{Host: cfg.Server.Host, Port: healthPort, ShutdownTimeout: cfg.Server.ShutdownTimeout},
		httpserver.NewRouter(httpserver.RouterConfig{
			HealthHandler:    handlers.NewHealthHandler(version, cfg.Server.ServerID, infra.HealthChecks()...),
			Logger:           logger,
			Metrics:          infra.Metrics,
			MetricsCollector: infra.Collector,
		}),
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := consumer.Start(ctx); err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(health.Start)
	g.Go(func() error {
		<-gctx.Done()
		return health.Stop(context.Background())
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("molstore worker stopped")
	return nil
}

// createTopics makes sure the task topic and its dead-letter topic exist.
// Brokers with auto-creation enabled make failures here non-fatal.
func createTopics(cfg *config.Config, logger logging.Logger) {
	tm, err := kafka.NewTopicManager(cfg.Kafka.Brokers, logger)
	if err != nil {
		logger.Warn("topic manager unavailable, relying on broker auto-creation", logging.Err(err))
		return
	}
	defer func() { _ = tm.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), topicSetupTimeout)
	defer cancel()
	if err := tm.EnsureTopics(ctx, kafka.DefaultTopics(cfg.Kafka)); err != nil {
		logger.Warn("failed to ensure topics", logging.Err(err))
	}
}

//Personal.AI order the ending
