// Package ingest turns scraped-record events into stored threat
// records. It is the only place raw feed payloads are decoded; the
// rest of the system sees typed records.
package ingest

import (
	"context"
	"time"

	"github.com/frknaykc/dragonseye/internal/infrastructure/database/postgres/repositories"
	"github.com/frknaykc/dragonseye/internal/infrastructure/database/redis"
	"github.com/frknaykc/dragonseye/internal/infrastructure/messaging/kafka"
	"github.com/frknaykc/dragonseye/internal/infrastructure/monitoring/logging"
	"github.com/frknaykc/dragonseye/pkg/errors"
	"github.com/frknaykc/dragonseye/pkg/types/common"
	"github.com/frknaykc/dragonseye/pkg/types/threat"
)

// ─────────────────────────────────────────────────────────────────────────────
// Stores
// ─────────────────────────────────────────────────────────────────────────────

// VictimStore is the victim persistence surface the worker needs.
type VictimStore interface {
	Upsert(ctx context.Context, v threat.Victim) error
}

// GroupStore persists group profiles.
type GroupStore interface {
	Upsert(ctx context.Context, g threat.GroupProfile) error
}

// NoteStore persists ransom notes.
type NoteStore interface {
	Upsert(ctx context.Context, n threat.RansomNote) error
}

// DecryptorStore persists decryptors.
type DecryptorStore interface {
	Upsert(ctx context.Context, d threat.Decryptor) error
}

// ChatStore persists negotiation transcripts.
type ChatStore interface {
	Upsert(ctx context.Context, c threat.NegotiationChat) error
}

// Stores bundles the five persistence surfaces.
type Stores struct {
	Victims    VictimStore
	Groups     GroupStore
	Notes      NoteStore
	Decryptors DecryptorStore
	Chats      ChatStore
}

// NewStores wires the pgx repositories into a Stores bundle.
func NewStores(db repositories.Querier, log logging.Logger) Stores {
	return Stores{
		Victims:    repositories.NewVictimRepository(db, log),
		Groups:     repositories.NewGroupRepository(db, log),
		Notes:      repositories.NewNoteRepository(db, log),
		Decryptors: repositories.NewDecryptorRepository(db, log),
		Chats:      repositories.NewChatRepository(db, log),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Service
// ─────────────────────────────────────────────────────────────────────────────

// Service decodes feed events and upserts them through the stores.
// After each successful upsert the derived-view cache is invalidated
// so rollups recompute on next read.
type Service struct {
	stores Stores
	cache  redis.Cache
	logger logging.Logger
}

// NewService builds an ingest Service. cache may be nil when no cache
// invalidation is wanted (tests, cache disabled).
func NewService(stores Stores, cache redis.Cache, log logging.Logger) *Service {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Service{stores: stores, cache: cache, logger: log}
}

// Register subscribes the service's handlers on the consumer.
func (s *Service) Register(consumer *kafka.Consumer) {
	consumer.Subscribe(kafka.TopicVictimDiscovered, s.HandleVictim)
	consumer.Subscribe(kafka.TopicGroupUpdated, s.HandleGroup)
	consumer.Subscribe(kafka.TopicNotePublished, s.HandleNote)
	consumer.Subscribe(kafka.TopicChatCaptured, s.HandleChat)
	consumer.Subscribe(kafka.TopicDecryptorReleased, s.HandleDecryptor)
}

// HandleVictim ingests one scraped victim post.
func (s *Service) HandleVictim(ctx context.Context, env *kafka.EventEnvelope) error {
	raw, err := decodeRaw(env)
	if err != nil {
		return err
	}

	v := threat.FromRawVictim(raw)
	if v.PostTitle == "" && v.GroupName == "" {
		return errors.New(errors.ErrCodeIngestDecodeFailed, "victim record carries no title or group")
	}
	if v.DiscoveredAt.IsZero() {
		// Feeds occasionally omit the discovery date. The record is
		// still countable; stamp it with the capture time.
		v.DiscoveredAt = nowTimestamp()
	}

	if err := s.stores.Victims.Upsert(ctx, v); err != nil {
		return errors.Wrap(err, errors.ErrCodeIngestUpsertFailed, "victim upsert failed")
	}

	s.invalidate(ctx, "stats:", "view:victims")
	s.logger.Debug("victim ingested",
		logging.String("group", v.GroupName),
		logging.String("title", v.PostTitle))
	return nil
}

// HandleGroup ingests one group profile refresh.
func (s *Service) HandleGroup(ctx context.Context, env *kafka.EventEnvelope) error {
	raw, err := decodeRaw(env)
	if err != nil {
		return err
	}

	g := threat.FromRawGroup(raw)
	if g.Name == "" {
		return errors.New(errors.ErrCodeIngestDecodeFailed, "group record carries no name")
	}

	if err := s.stores.Groups.Upsert(ctx, g); err != nil {
		return errors.Wrap(err, errors.ErrCodeIngestUpsertFailed, "group upsert failed")
	}

	s.invalidate(ctx, "stats:", "view:groups")
	s.logger.Debug("group ingested", logging.String("name", g.Name))
	return nil
}

// HandleNote ingests one ransom note observation.
func (s *Service) HandleNote(ctx context.Context, env *kafka.EventEnvelope) error {
	raw, err := decodeRaw(env)
	if err != nil {
		return err
	}

	n := threat.FromRawNote(raw)
	if err := s.stores.Notes.Upsert(ctx, n); err != nil {
		if errors.IsCode(err, errors.ErrCodeNoteInvalid) {
			return errors.Wrap(err, errors.ErrCodeIngestDecodeFailed, "note record is not keyable")
		}
		return errors.Wrap(err, errors.ErrCodeIngestUpsertFailed, "note upsert failed")
	}

	s.invalidate(ctx, "view:notes")
	s.logger.Debug("ransom note ingested",
		logging.String("group", n.GroupName),
		logging.String("filename", n.Filename))
	return nil
}

// HandleChat ingests one negotiation transcript.
func (s *Service) HandleChat(ctx context.Context, env *kafka.EventEnvelope) error {
	raw, err := decodeRaw(env)
	if err != nil {
		return err
	}

	c := threat.FromRawChat(raw)
	if c.ChatID == "" {
		return errors.New(errors.ErrCodeIngestDecodeFailed, "chat record carries no chat ID")
	}

	if err := s.stores.Chats.Upsert(ctx, c); err != nil {
		return errors.Wrap(err, errors.ErrCodeIngestUpsertFailed, "chat upsert failed")
	}

	s.invalidate(ctx, "view:negotiations")
	s.logger.Debug("negotiation chat ingested",
		logging.String("chat_id", c.ChatID),
		logging.String("group", c.GroupName))
	return nil
}

// HandleDecryptor ingests one decryptor announcement.
func (s *Service) HandleDecryptor(ctx context.Context, env *kafka.EventEnvelope) error {
	raw, err := decodeRaw(env)
	if err != nil {
		return err
	}

	d := threat.FromRawDecryptor(raw)
	if d.GroupName == "" || d.Name == "" {
		return errors.New(errors.ErrCodeIngestDecodeFailed, "decryptor record is not keyable")
	}

	if err := s.stores.Decryptors.Upsert(ctx, d); err != nil {
		return errors.Wrap(err, errors.ErrCodeIngestUpsertFailed, "decryptor upsert failed")
	}

	s.invalidate(ctx, "view:decryptors")
	return nil
}

func decodeRaw(env *kafka.EventEnvelope) (map[string]interface{}, error) {
	var raw map[string]interface{}
	if err := env.DecodePayload(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (s *Service) invalidate(ctx context.Context, prefixes ...string) {
	if s.cache == nil {
		return
	}
	for _, prefix := range prefixes {
		if _, err := s.cache.DeleteByPrefix(ctx, prefix); err != nil {
			s.logger.Warn("cache invalidation failed",
				logging.String("prefix", prefix),
				logging.Err(err))
		}
	}
}

func nowTimestamp() common.Timestamp {
	return common.Timestamp(time.Now().UTC())
}
