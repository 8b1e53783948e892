package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qaioz/molstore/internal/config"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
	"github.com/qaioz/molstore/internal/testutil"
	pkgerrors "github.com/qaioz/molstore/pkg/errors"
	"github.com/qaioz/molstore/pkg/types/common"
)

// mockKafkaWriter
type mockKafkaWriter struct {
	writeFunc func(ctx context.Context, msgs ...kafka.Message) error
	closeFunc func() error
	written   []kafka.Message
}

func (m *mockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if m.writeFunc != nil {
		return m.writeFunc(ctx, msgs...)
	}
	m.written = append(m.written, msgs...)
	return nil
}

func (m *mockKafkaWriter) Close() error {
	if m.closeFunc != nil {
		return m.closeFunc()
	}
	return nil
}

func (m *mockKafkaWriter) Stats() kafka.WriterStats {
	return kafka.WriterStats{Writes: int64(len(m.written))}
}

func newTestProducerConfig() ProducerConfig {
	return applyProducerDefaults(ProducerConfig{
		Brokers: []string{"localhost:9092"},
	})
}

func newTestProducerMessage(topic, key, value string) *common.ProducerMessage {
	return &common.ProducerMessage{
		Topic: topic,
		Key:   []byte(key),
		Value: []byte(value),
	}
}

func newTestProducer(mockWriter WriterInterface) *Producer {
	return &Producer{
		writer:  mockWriter,
		config:  newTestProducerConfig(),
		logger:  testutil.NewMockLogger(),
		metrics: &ProducerMetrics{},
	}
}

func TestValidateProducerConfig(t *testing.T) {
	assert.NoError(t, ValidateProducerConfig(newTestProducerConfig()))

	cfg := newTestProducerConfig()
	cfg.Brokers = nil
	assert.Error(t, ValidateProducerConfig(cfg))

	cfg = newTestProducerConfig()
	cfg.MaxRetries = -1
	assert.Error(t, ValidateProducerConfig(cfg))
}

func TestProducerConfigFrom(t *testing.T) {
	cfg := ProducerConfigFrom(config.KafkaConfig{Brokers: []string{"k1:9092", "k2:9092"}, MaxRetries: 5})
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Brokers)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, "all", cfg.Acks)
	assert.Equal(t, 1, cfg.BatchSize)
}

func TestNewProducer_BuildsWriter(t *testing.T) {
	p, err := NewProducer(ProducerConfig{Brokers: []string{"localhost:9092"}}, logging.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, 3, p.config.MaxRetries)
	assert.Equal(t, 1024*1024, p.config.MaxMessageBytes)
	require.NoError(t, p.Close())
}

func TestPublish_Success(t *testing.T) {
	mock := &mockKafkaWriter{}
	p := newTestProducer(mock)

	msg := newTestProducerMessage("test", "k", "v")
	msg.Headers = map[string]string{"event_type": "x"}
	require.NoError(t, p.Publish(context.Background(), msg))

	require.Len(t, mock.written, 1)
	assert.Equal(t, "test", mock.written[0].Topic)
	assert.Equal(t, "k", string(mock.written[0].Key))
	assert.Equal(t, "v", string(mock.written[0].Value))
	assert.Equal(t, []kafka.Header{{Key: "event_type", Value: []byte("x")}}, mock.written[0].Headers)
	assert.False(t, mock.written[0].Time.IsZero())
	assert.Equal(t, int64(1), p.metrics.MessagesSent.Load())
	assert.Equal(t, int64(1), p.metrics.BytesSent.Load())
}

func TestPublish_Validation(t *testing.T) {
	p := newTestProducer(&mockKafkaWriter{})
	ctx := context.Background()

	assert.True(t, pkgerrors.IsValidation(p.Publish(ctx, newTestProducerMessage("", "k", "v"))))
	assert.True(t, pkgerrors.IsValidation(p.Publish(ctx, newTestProducerMessage("t", "k", ""))))

	big := make([]byte, p.config.MaxMessageBytes+1)
	assert.True(t, pkgerrors.IsValidation(p.Publish(ctx, &common.ProducerMessage{Topic: "t", Value: big})))
}

func TestPublish_Failure(t *testing.T) {
	mock := &mockKafkaWriter{
		writeFunc: func(ctx context.Context, msgs ...kafka.Message) error {
			return errors.New("write failed")
		},
	}
	p := newTestProducer(mock)

	err := p.Publish(context.Background(), newTestProducerMessage("test", "k", "v"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeMessageQueueError))
	assert.Equal(t, int64(1), p.metrics.MessagesFailed.Load())
}

func TestPublishEvent(t *testing.T) {
	mock := &mockKafkaWriter{}
	p := newTestProducer(mock)
	ctx := logging.WithRequestID(context.Background(), "req-7")

	env, err := p.PublishEvent(ctx, TopicSubstructureSearch, "task-1", EventTypeSubstructureSearch, map[string]string{"smiles": "c1ccccc1"})
	require.NoError(t, err)
	assert.Equal(t, "req-7", env.TraceID)

	require.Len(t, mock.written, 1)
	assert.Equal(t, "task-1", string(mock.written[0].Key))

	var decoded EventEnvelope
	require.NoError(t, json.Unmarshal(mock.written[0].Value, &decoded))
	assert.Equal(t, EventTypeSubstructureSearch, decoded.EventType)
	assert.JSONEq(t, `{"smiles":"c1ccccc1"}`, string(decoded.Payload))
}

func TestPublish_AfterClose(t *testing.T) {
	closed := 0
	p := newTestProducer(&mockKafkaWriter{closeFunc: func() error { closed++; return nil }})

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, closed)
	assert.Equal(t, ErrProducerClosed, p.Publish(context.Background(), newTestProducerMessage("t", "k", "v")))
}

//Personal.AI order the ending
