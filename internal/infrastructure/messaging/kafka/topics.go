// Package kafka carries feed records from the scrapers to the ingest
// worker. Each scraped record is published raw inside an event
// envelope; decoding into typed threat records happens in the worker,
// at the ingestion boundary.
package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/frknaykc/dragonseye/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Topics
// ─────────────────────────────────────────────────────────────────────────────

const (
	// TopicVictimDiscovered carries newly scraped victim posts.
	TopicVictimDiscovered = "victim.discovered"
	// TopicGroupUpdated carries group profile refreshes.
	TopicGroupUpdated = "group.updated"
	// TopicNotePublished carries ransom note observations.
	TopicNotePublished = "note.published"
	// TopicChatCaptured carries negotiation transcript captures.
	TopicChatCaptured = "chat.captured"
	// TopicDecryptorReleased carries decryptor announcements.
	TopicDecryptorReleased = "decryptor.released"
	// TopicDeadLetterIngest receives records that failed ingestion
	// after retries.
	TopicDeadLetterIngest = "dead_letter.ingest"
)

// IngestTopics lists every topic the ingest worker subscribes to.
func IngestTopics() []string {
	return []string{
		TopicVictimDiscovered,
		TopicGroupUpdated,
		TopicNotePublished,
		TopicChatCaptured,
		TopicDecryptorReleased,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Event envelope
// ─────────────────────────────────────────────────────────────────────────────

// EventEnvelope is the wire format shared by all topics. Payload holds
// the scraped record exactly as the source emitted it.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// NewEventEnvelope wraps a payload for publication. EventType is the
// topic name the envelope is destined for.
func NewEventEnvelope(eventType, source string, payload interface{}) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode event payload")
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: "v1",
		Payload:       data,
	}, nil
}

// DecodePayload unmarshals the raw payload into target.
func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return errors.New(errors.ErrCodeIngestDecodeFailed, "event payload is empty")
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeIngestDecodeFailed, "failed to decode event payload")
	}
	return nil
}

// Encode serializes the envelope for the wire.
func (e *EventEnvelope) Encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode event envelope")
	}
	return data, nil
}

// DecodeEnvelope parses an envelope off the wire.
func DecodeEnvelope(data []byte) (*EventEnvelope, error) {
	var e EventEnvelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeIngestDecodeFailed, "failed to decode event envelope")
	}
	return &e, nil
}
