package kafka

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/frknaykc/dragonseye/internal/config"
	"github.com/frknaykc/dragonseye/internal/infrastructure/monitoring/logging"
	"github.com/frknaykc/dragonseye/pkg/errors"
)

// ErrProducerClosed is returned by Publish after Close.
var ErrProducerClosed = errors.New(errors.ErrCodeInternal, "kafka producer is closed")

// writerInterface abstracts kafka.Writer for tests.
type writerInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ProducerMetrics counts producer activity.
type ProducerMetrics struct {
	Sent   atomic.Int64
	Failed atomic.Int64
}

// Producer publishes event envelopes. Messages are keyed so that all
// records of one group land on the same partition.
type Producer struct {
	writer  writerInterface
	logger  logging.Logger
	closed  atomic.Bool
	metrics ProducerMetrics
}

// NewProducer builds a Producer from the Kafka configuration.
func NewProducer(cfg config.KafkaConfig, log logging.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "kafka brokers are required")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}

	retries := cfg.ProducerRetries
	if retries <= 0 {
		retries = 3
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		MaxAttempts:  retries + 1,
		BatchSize:    batchSize,
		BatchTimeout: time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	return &Producer{writer: writer, logger: log}, nil
}

// newProducerWith wraps an existing writer. Used by tests.
func newProducerWith(w writerInterface, log logging.Logger) *Producer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Producer{writer: w, logger: log}
}

// Publish sends one envelope to the topic named by its EventType.
// The key groups records of one ransomware group on one partition;
// an empty key falls back to the event ID.
func (p *Producer) Publish(ctx context.Context, key string, envelope *EventEnvelope) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if envelope.EventType == "" {
		return errors.New(errors.ErrCodeValidation, "event type is required")
	}

	value, err := envelope.Encode()
	if err != nil {
		return err
	}
	if key == "" {
		key = envelope.EventID
	}

	msg := kafka.Message{
		Topic: envelope.EventType,
		Key:   []byte(key),
		Value: value,
		Time:  envelope.Timestamp,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(envelope.EventID)},
			{Key: "source", Value: []byte(envelope.Source)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.Failed.Add(1)
		return errors.Wrap(err, errors.ErrCodeExternalService, "kafka publish failed")
	}

	p.metrics.Sent.Add(1)
	p.logger.Debug("event published",
		logging.String("topic", envelope.EventType),
		logging.String("event_id", envelope.EventID))
	return nil
}

// Metrics returns a snapshot of the producer counters.
func (p *Producer) Metrics() (sent, failed int64) {
	return p.metrics.Sent.Load(), p.metrics.Failed.Load()
}

// Close flushes and shuts the producer down.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("kafka producer closed", logging.Int64("sent", p.metrics.Sent.Load()))
	return err
}
