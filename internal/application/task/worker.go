package task

import (
	"context"
	"time"

	domainMol "github.com/qaioz/molstore/internal/domain/molecule"
	domainTask "github.com/qaioz/molstore/internal/domain/task"
	"github.com/qaioz/molstore/internal/infrastructure/database/redis"
	"github.com/qaioz/molstore/internal/infrastructure/messaging/kafka"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/prometheus"
	"github.com/qaioz/molstore/pkg/errors"
	"github.com/qaioz/molstore/pkg/types/common"
)

// Searcher runs a substructure scan.  The molecule service implements it.
type Searcher interface {
	Substructures(ctx context.Context, smiles string, limit *int) ([]*domainMol.Molecule, error)
}

// Worker executes queued substructure searches.
type Worker struct {
	store    domainTask.Store
	searcher Searcher
	locks    redis.LockFactory
	lockTTL  time.Duration
	metrics  *prometheus.AppMetrics
	logger   logging.Logger
}

// NewWorker creates a Worker.  lockTTL bounds how long a crashed worker
// keeps a task locked; live workers extend it while running.
func NewWorker(store domainTask.Store, searcher Searcher, locks redis.LockFactory, lockTTL time.Duration, metrics *prometheus.AppMetrics, logger logging.Logger) *Worker {
	if lockTTL <= 0 {
		lockTTL = 30 * time.Second
	}
	if metrics == nil {
		metrics = prometheus.NewNopAppMetrics()
	}
	return &Worker{
		store:    store,
		searcher: searcher,
		locks:    locks,
		lockTTL:  lockTTL,
		metrics:  metrics,
		logger:   logger.Named("task_worker"),
	}
}

// HandleMessage is the consumer handler for the substructure topic.  A
// returned error makes the consumer retry and finally dead-letter the
// message; a failed search is a task result and returns nil.
func (w *Worker) HandleMessage(ctx context.Context, msg *common.Message) error {
	env, err := kafka.MessageToEventEnvelope(msg)
	if err != nil {
		return err
	}
	if env.EventType != kafka.EventTypeSubstructureSearch {
		w.logger.Warn("ignoring unexpected event", logging.String("event_type", env.EventType), logging.String("event_id", env.EventID))
		return nil
	}

	var payload domainTask.SubstructurePayload
	if err := env.DecodePayload(&payload); err != nil {
		return err
	}
	if payload.TaskID == "" {
		return errors.New(errors.ErrCodeTaskPayloadInvalid, "task_id is required").WithDetail("event_id=" + env.EventID)
	}

	log := w.logger.With(logging.String("task_id", payload.TaskID))
	if env.TraceID != "" {
		log = log.With(logging.String("request_id", env.TraceID))
	}
	return w.runSubstructureSearch(ctx, payload, log)
}

func (w *Worker) runSubstructureSearch(ctx context.Context, p domainTask.SubstructurePayload, log logging.Logger) error {
	lock := w.locks.NewMutex("task:"+p.TaskID, redis.WithLockTTL(w.lockTTL), redis.WithWatchdog(true))
	if err := lock.Lock(ctx); err != nil {
		return err
	}
	defer func() {
		if err := lock.Unlock(context.WithoutCancel(ctx)); err != nil {
			log.Warn("failed to release task lock", logging.Err(err))
		}
	}()

	rec, err := w.store.Get(ctx, p.TaskID)
	if err != nil {
		return err
	}
	if rec.Status.IsTerminal() {
		log.Info("task already finished, skipping redelivery", logging.String("status", string(rec.Status)))
		return nil
	}
	if rec.Name == "" {
		rec.Name = domainTask.NameSubstructureSearch
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	rec.Start()
	if err := w.store.Save(ctx, rec); err != nil {
		return err
	}

	active := w.metrics.TaskActiveWorkers.WithLabelValues(rec.Name)
	active.Inc()
	start := time.Now()

	results, searchErr := w.searcher.Substructures(ctx, p.SMILES, p.Limit)
	if searchErr == nil {
		searchErr = rec.Succeed(results)
	}
	if searchErr != nil {
		rec.Fail(searchErr)
	}

	active.Dec()
	prometheus.RecordTask(w.metrics, rec.Name, searchErr == nil, time.Since(start))

	if err := w.store.Save(context.WithoutCancel(ctx), rec); err != nil {
		return err
	}

	if searchErr != nil {
		log.Error("task failed", logging.Err(searchErr), logging.Duration("elapsed", time.Since(start)))
		prometheus.RecordError(w.metrics, "task_worker", string(errors.GetCode(searchErr)))
		return nil
	}
	log.Info("task succeeded", logging.Int("results", len(results)), logging.Duration("elapsed", time.Since(start)))
	return nil
}

//Personal.AI order the ending
