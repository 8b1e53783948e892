// Package task runs the background jobs of molstore: the API side queues
// them and tracks their records, the worker side executes them.
package task

import (
	"context"

	"github.com/qaioz/molstore/internal/chem"
	domainTask "github.com/qaioz/molstore/internal/domain/task"
	"github.com/qaioz/molstore/internal/infrastructure/messaging/kafka"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/prometheus"
	"github.com/qaioz/molstore/pkg/errors"
)

// EventPublisher publishes an enveloped event.  *kafka.Producer implements it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key, eventType string, payload interface{}) (*kafka.EventEnvelope, error)
}

// Dispatcher queues background jobs and reports their state.
type Dispatcher struct {
	store     domainTask.Store
	publisher EventPublisher
	matcher   chem.Matcher
	topic     string
	metrics   *prometheus.AppMetrics
	logger    logging.Logger
}

// NewDispatcher creates a Dispatcher publishing to topic.
func NewDispatcher(store domainTask.Store, publisher EventPublisher, matcher chem.Matcher, topic string, metrics *prometheus.AppMetrics, logger logging.Logger) *Dispatcher {
	if topic == "" {
		topic = kafka.TopicSubstructureSearch
	}
	if metrics == nil {
		metrics = prometheus.NewNopAppMetrics()
	}
	return &Dispatcher{
		store:     store,
		publisher: publisher,
		matcher:   matcher,
		topic:     topic,
		metrics:   metrics,
		logger:    logger.Named("task_dispatcher"),
	}
}

// DispatchSubstructureSearch validates smiles, records a PENDING task and
// queues it.  The returned record carries the id to poll.
func (d *Dispatcher) DispatchSubstructureSearch(ctx context.Context, smiles string, limit *int) (*domainTask.Record, error) {
	if limit != nil && *limit < 1 {
		return nil, errors.New(errors.ErrCodeValidation, "limit must be at least 1")
	}
	if !d.matcher.Valid(smiles) {
		return nil, errors.New(errors.ErrCodeMoleculeInvalidSMILES, "Invalid SMILES string").WithDetail("smiles=" + smiles)
	}

	rec := domainTask.NewRecord(domainTask.NameSubstructureSearch)
	if err := d.store.Save(ctx, rec); err != nil {
		return nil, err
	}

	payload := domainTask.SubstructurePayload{TaskID: rec.ID, SMILES: smiles, Limit: limit}
	if _, err := d.publisher.PublishEvent(ctx, d.topic, rec.ID, kafka.EventTypeSubstructureSearch, payload); err != nil {
		d.logger.Error("failed to queue task", logging.String("task_id", rec.ID), logging.Err(err))
		rec.Fail(err)
		if saveErr := d.store.Save(ctx, rec); saveErr != nil {
			d.logger.Warn("failed to record dispatch failure", logging.String("task_id", rec.ID), logging.Err(saveErr))
		}
		return nil, errors.Wrap(err, errors.ErrCodeTaskDispatchFailed, "failed to dispatch task").
			WithDetail("task_id=" + rec.ID)
	}

	d.metrics.TasksDispatched.WithLabelValues(rec.Name).Inc()
	d.logger.Info("task dispatched", logging.String("task_id", rec.ID), logging.String("name", rec.Name))
	return rec, nil
}

// Status returns the record of task id.  Unknown ids read as PENDING.
func (d *Dispatcher) Status(ctx context.Context, id string) (*domainTask.Record, error) {
	return d.store.Get(ctx, id)
}

//Personal.AI order the ending
