package kafka

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/frknaykc/dragonseye/internal/config"
	"github.com/frknaykc/dragonseye/internal/infrastructure/monitoring/logging"
	"github.com/frknaykc/dragonseye/pkg/errors"
)

// Handler processes one decoded envelope. Returning an error triggers
// the retry schedule and eventually the dead-letter topic.
type Handler func(ctx context.Context, envelope *EventEnvelope) error

// readerInterface abstracts kafka.Reader for tests.
type readerInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// deadLetterPublisher is the producer surface the consumer needs.
type deadLetterPublisher interface {
	Publish(ctx context.Context, key string, envelope *EventEnvelope) error
}

// ConsumerMetrics counts consumer activity.
type ConsumerMetrics struct {
	Consumed     atomic.Int64
	Processed    atomic.Int64
	Retried      atomic.Int64
	DeadLettered atomic.Int64
	Dropped      atomic.Int64
}

// IngestObserver receives per-record consumer outcomes. Implemented by
// the prometheus adapter so the ingest pipeline shows up on /metrics.
type IngestObserver interface {
	ObserveEvent(topic, status string, elapsed time.Duration)
	ObserveRetry(topic string)
	ObserveDeadLetter(topic string)
}

// Consumer reads feed events across the ingest topics and dispatches
// them to per-topic handlers.
type Consumer struct {
	reader          readerInterface
	deadLetter      deadLetterPublisher
	deadLetterTopic string
	logger          logging.Logger
	maxRetries      int
	retryBackoff    time.Duration

	mu       sync.RWMutex
	handlers map[string]Handler

	closed   atomic.Bool
	wg       sync.WaitGroup
	metrics  ConsumerMetrics
	observer IngestObserver
}

// NewConsumer builds a Consumer subscribed to every ingest topic as
// one consumer group. A nil producer disables dead-lettering; failed
// records are dropped after retries instead.
func NewConsumer(cfg config.KafkaConfig, workerCfg config.WorkerConfig, deadLetter *Producer, log logging.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "kafka brokers are required")
	}
	if cfg.GroupID == "" {
		return nil, errors.New(errors.ErrCodeValidation, "kafka consumer group ID is required")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}

	startOffset := kafka.LastOffset
	if cfg.StartOffset == "earliest" {
		startOffset = kafka.FirstOffset
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		GroupTopics:    IngestTopics(),
		MinBytes:       cfg.MinBytes,
		MaxBytes:       cfg.MaxBytes,
		CommitInterval: cfg.CommitInterval,
		StartOffset:    startOffset,
	})

	c := &Consumer{
		reader:          reader,
		deadLetterTopic: cfg.DeadLetterTopic,
		logger:          log,
		maxRetries:      workerCfg.MaxRetries,
		retryBackoff:    workerCfg.RetryBackoff,
		handlers:        make(map[string]Handler),
	}
	if deadLetter != nil {
		c.deadLetter = deadLetter
	}
	if c.maxRetries <= 0 {
		c.maxRetries = 3
	}
	if c.retryBackoff <= 0 {
		c.retryBackoff = time.Second
	}
	if c.deadLetterTopic == "" {
		c.deadLetterTopic = TopicDeadLetterIngest
	}
	return c, nil
}

// newConsumerWith wires a fake reader and publisher. Used by tests.
func newConsumerWith(r readerInterface, dl deadLetterPublisher, log logging.Logger) *Consumer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Consumer{
		reader:          r,
		deadLetter:      dl,
		deadLetterTopic: TopicDeadLetterIngest,
		logger:          log,
		maxRetries:      2,
		retryBackoff:    time.Millisecond,
		handlers:        make(map[string]Handler),
	}
}

// SetObserver installs the outcome observer. Must be called before
// Start; a nil observer disables observation.
func (c *Consumer) SetObserver(o IngestObserver) {
	c.observer = o
}

// Subscribe registers the handler for a topic. Must be called before
// Start.
func (c *Consumer) Subscribe(topic string, handler Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = handler
}

// Start consumes until the context is cancelled. It blocks; run it in
// a goroutine when the caller has other work.
func (c *Consumer) Start(ctx context.Context) {
	c.wg.Add(1)
	defer c.wg.Done()

	for {
		if ctx.Err() != nil {
			return
		}

		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("fetch failed", logging.Err(err))
			time.Sleep(time.Second)
			continue
		}

		c.metrics.Consumed.Add(1)
		c.handleMessage(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Error("commit failed",
				logging.String("topic", msg.Topic),
				logging.Int64("offset", msg.Offset),
				logging.Err(err))
		}
	}
}

// handleMessage decodes, dispatches, retries, and dead-letters one
// record. Progress is never blocked: a record that cannot be processed
// is dead-lettered or dropped, and the offset is committed.
func (c *Consumer) handleMessage(ctx context.Context, msg kafka.Message) {
	envelope, err := DecodeEnvelope(msg.Value)
	if err != nil {
		c.logger.Error("undecodable record",
			logging.String("topic", msg.Topic),
			logging.Int64("offset", msg.Offset),
			logging.Err(err))
		c.sendToDeadLetter(ctx, msg.Topic, string(msg.Key), msg.Value, err)
		return
	}

	c.mu.RLock()
	handler, ok := c.handlers[msg.Topic]
	c.mu.RUnlock()
	if !ok {
		c.metrics.Dropped.Add(1)
		c.logger.Warn("no handler for topic", logging.String("topic", msg.Topic))
		return
	}

	backoff := c.retryBackoff
	started := time.Now()
	for attempt := 0; ; attempt++ {
		err = handler(ctx, envelope)
		if err == nil {
			c.metrics.Processed.Add(1)
			if c.observer != nil {
				c.observer.ObserveEvent(msg.Topic, "ok", time.Since(started))
			}
			return
		}
		if attempt >= c.maxRetries {
			break
		}
		c.metrics.Retried.Add(1)
		if c.observer != nil {
			c.observer.ObserveRetry(msg.Topic)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	if c.observer != nil {
		c.observer.ObserveEvent(msg.Topic, "failed", time.Since(started))
	}

	c.logger.Error("record failed after retries",
		logging.String("topic", msg.Topic),
		logging.String("event_id", envelope.EventID),
		logging.Err(err))
	c.sendToDeadLetter(ctx, msg.Topic, string(msg.Key), msg.Value, err)
}

func (c *Consumer) sendToDeadLetter(ctx context.Context, originalTopic, key string, value []byte, cause error) {
	if c.deadLetter == nil {
		c.metrics.Dropped.Add(1)
		return
	}

	envelope, err := NewEventEnvelope(c.deadLetterTopic, "ingest-worker", struct {
		OriginalTopic string `json:"original_topic"`
		Error         string `json:"error"`
		Record        string `json:"record"`
	}{
		OriginalTopic: originalTopic,
		Error:         cause.Error(),
		Record:        string(value),
	})
	if err != nil {
		c.metrics.Dropped.Add(1)
		c.logger.Error("failed to build dead letter", logging.Err(err))
		return
	}

	if err := c.deadLetter.Publish(ctx, key, envelope); err != nil {
		c.metrics.Dropped.Add(1)
		c.logger.Error("dead letter publish failed", logging.Err(err))
		return
	}

	c.metrics.DeadLettered.Add(1)
	if c.observer != nil {
		c.observer.ObserveDeadLetter(originalTopic)
	}
	dlErr := errors.New(errors.ErrCodeIngestDeadLettered, "record dead-lettered").
		WithDetail("topic=" + originalTopic)
	c.logger.Warn(dlErr.Message,
		logging.String("topic", originalTopic),
		logging.String("code", dlErr.Code.String()))
}

// Metrics returns the consumer counters.
func (c *Consumer) Metrics() *ConsumerMetrics {
	return &c.metrics
}

// Close shuts the reader down and waits for the consume loop.
func (c *Consumer) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := c.reader.Close()
	c.wg.Wait()
	c.logger.Info("kafka consumer closed",
		logging.Int64("processed", c.metrics.Processed.Load()),
		logging.Int64("dead_lettered", c.metrics.DeadLettered.Load()))
	return err
}
