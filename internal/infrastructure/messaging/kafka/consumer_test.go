package kafka

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedReader feeds queued messages, then blocks until the context
// is cancelled.
type scriptedReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
	closed    bool
}

func (r *scriptedReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		msg := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *scriptedReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *scriptedReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *scriptedReader) committedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

type capturePublisher struct {
	mu        sync.Mutex
	envelopes []*EventEnvelope
}

func (p *capturePublisher) Publish(_ context.Context, _ string, env *EventEnvelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.envelopes = append(p.envelopes, env)
	return nil
}

func (p *capturePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.envelopes)
}

func queuedMessage(t *testing.T, topic string, payload interface{}) kafka.Message {
	t.Helper()
	env, err := NewEventEnvelope(topic, "scraper", payload)
	require.NoError(t, err)
	value, err := env.Encode()
	require.NoError(t, err)
	return kafka.Message{Topic: topic, Value: value}
}

func runConsumer(t *testing.T, c *Consumer, reader *scriptedReader, expectCommits int) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Start(ctx)
		close(done)
	}()

	deadline := time.After(5 * time.Second)
	for reader.committedCount() < expectCommits {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %d commits, got %d", expectCommits, reader.committedCount())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done
}

func TestConsumerDispatchesToHandler(t *testing.T) {
	reader := &scriptedReader{queue: []kafka.Message{
		queuedMessage(t, TopicVictimDiscovered, map[string]string{"post_title": "Acme"}),
		queuedMessage(t, TopicGroupUpdated, map[string]string{"name": "akira"}),
	}}
	c := newConsumerWith(reader, nil, nil)

	var mu sync.Mutex
	seen := map[string]int{}
	for _, topic := range []string{TopicVictimDiscovered, TopicGroupUpdated} {
		topic := topic
		c.Subscribe(topic, func(_ context.Context, env *EventEnvelope) error {
			mu.Lock()
			seen[topic]++
			mu.Unlock()
			return nil
		})
	}

	runConsumer(t, c, reader, 2)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, seen[TopicVictimDiscovered])
	assert.Equal(t, 1, seen[TopicGroupUpdated])
	assert.EqualValues(t, 2, c.Metrics().Processed.Load())
}

func TestConsumerRetriesThenDeadLetters(t *testing.T) {
	reader := &scriptedReader{queue: []kafka.Message{
		queuedMessage(t, TopicNotePublished, map[string]string{"filename": "readme.txt"}),
	}}
	dl := &capturePublisher{}
	c := newConsumerWith(reader, dl, nil)

	var attempts int
	var mu sync.Mutex
	c.Subscribe(TopicNotePublished, func(context.Context, *EventEnvelope) error {
		mu.Lock()
		attempts++
		mu.Unlock()
		return assert.AnError
	})

	runConsumer(t, c, reader, 1)

	mu.Lock()
	assert.Equal(t, 3, attempts) // first try + 2 retries
	mu.Unlock()

	require.Equal(t, 1, dl.count())
	assert.Equal(t, TopicDeadLetterIngest, dl.envelopes[0].EventType)
	assert.EqualValues(t, 1, c.Metrics().DeadLettered.Load())
}

func TestConsumerDeadLettersUndecodableRecords(t *testing.T) {
	reader := &scriptedReader{queue: []kafka.Message{
		{Topic: TopicChatCaptured, Value: []byte("not json")},
	}}
	dl := &capturePublisher{}
	c := newConsumerWith(reader, dl, nil)
	c.Subscribe(TopicChatCaptured, func(context.Context, *EventEnvelope) error {
		t.Fatal("handler must not run for undecodable records")
		return nil
	})

	runConsumer(t, c, reader, 1)

	assert.Equal(t, 1, dl.count())
}

type recordingObserver struct {
	mu          sync.Mutex
	events      map[string]int // "topic/status" counts
	retries     int
	deadLetters int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{events: map[string]int{}}
}

func (o *recordingObserver) ObserveEvent(topic, status string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events[topic+"/"+status]++
}

func (o *recordingObserver) ObserveRetry(string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.retries++
}

func (o *recordingObserver) ObserveDeadLetter(string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.deadLetters++
}

func TestConsumerReportsOutcomesToObserver(t *testing.T) {
	reader := &scriptedReader{queue: []kafka.Message{
		queuedMessage(t, TopicVictimDiscovered, map[string]string{"post_title": "Acme"}),
		queuedMessage(t, TopicNotePublished, map[string]string{"filename": "readme.txt"}),
	}}
	dl := &capturePublisher{}
	c := newConsumerWith(reader, dl, nil)
	obs := newRecordingObserver()
	c.SetObserver(obs)

	c.Subscribe(TopicVictimDiscovered, func(context.Context, *EventEnvelope) error {
		return nil
	})
	c.Subscribe(TopicNotePublished, func(context.Context, *EventEnvelope) error {
		return assert.AnError
	})

	runConsumer(t, c, reader, 2)

	obs.mu.Lock()
	defer obs.mu.Unlock()
	assert.Equal(t, 1, obs.events[TopicVictimDiscovered+"/ok"])
	assert.Equal(t, 1, obs.events[TopicNotePublished+"/failed"])
	assert.Equal(t, 2, obs.retries)
	assert.Equal(t, 1, obs.deadLetters)
}

func TestConsumerCommitsEvenWithoutHandler(t *testing.T) {
	reader := &scriptedReader{queue: []kafka.Message{
		queuedMessage(t, TopicDecryptorReleased, map[string]string{"name": "tool"}),
	}}
	c := newConsumerWith(reader, nil, nil)

	runConsumer(t, c, reader, 1)

	assert.EqualValues(t, 1, c.Metrics().Dropped.Load())
	require.NoError(t, c.Close())
	assert.True(t, reader.closed)
}
