package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/disaster-resilience-api/internal/domain"
	"github.com/couchcryptid/disaster-resilience-api/internal/observability"
)

const backendLabel = "kafka"

// Publisher produces record events to a Kafka topic.
// It implements domain.RecordPublisher.
//
// Writes are asynchronous: Publish enqueues the message and returns, and
// delivery failures are logged and counted when the batch completes.
type Publisher struct {
	writer  *kafkago.Writer
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewPublisher creates a Kafka producer for the record topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	p := &Publisher{metrics: metrics, logger: logger}
	p.writer = &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
		Async:                  true,
		BatchTimeout:           10 * time.Millisecond,
		MaxAttempts:            3,
		WriteBackoffMax:        250 * time.Millisecond,
		Completion:             p.onCompletion,
	}
	return p
}

// Publish enqueues one event keyed by record id, so events for a record stay on one partition.
func (p *Publisher) Publish(ctx context.Context, event domain.RecordEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s event: %w", event.Kind, err)
	}
	return nil
}

// Close flushes pending events and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// onCompletion runs after each asynchronous batch write.
func (p *Publisher) onCompletion(messages []kafkago.Message, err error) {
	if err == nil {
		return
	}
	p.metrics.PublishErrors.WithLabelValues(backendLabel).Add(float64(len(messages)))
	for _, m := range messages {
		p.logger.Error("kafka record event delivery failed",
			"topic", m.Topic,
			"key", string(m.Key),
			"error", err,
		)
	}
}

// serializeToMessage marshals a RecordEvent into a Kafka message.
func serializeToMessage(event domain.RecordEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize record event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.ID.String()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "record_kind", Value: []byte(event.Kind)},
			{Key: "created_at", Value: []byte(event.CreatedAt)},
		},
	}, nil
}
