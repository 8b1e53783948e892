package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/qaioz/molstore/internal/domain/task"
	"github.com/qaioz/molstore/pkg/errors"
)

const taskKeyPrefix = "task:"

// TaskStore keeps task records as JSON strings under task:<id>.
type TaskStore struct {
	client *Client
	ttl    time.Duration
}

var _ task.Store = (*TaskStore)(nil)

// NewTaskStore returns a store whose records expire ttl after their last
// write.
func NewTaskStore(client *Client, ttl time.Duration) *TaskStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TaskStore{client: client, ttl: ttl}
}

func (s *TaskStore) Save(ctx context.Context, r *task.Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return ErrSerializationFailed.WithCause(err)
	}
	if err := s.client.Set(ctx, taskKeyPrefix+r.ID, data, s.ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to save task")
	}
	return nil
}

// Get returns the record for id.  An unknown id yields a PENDING record.
func (s *TaskStore) Get(ctx context.Context, id string) (*task.Record, error) {
	data, err := s.client.Get(ctx, taskKeyPrefix+id).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return &task.Record{ID: id, Status: task.StatusPending}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "failed to load task")
	}

	var r task.Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, ErrSerializationFailed.WithCause(err).WithDetail("task_id=" + id)
	}
	return &r, nil
}

//Personal.AI order the ending
