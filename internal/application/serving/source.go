// Package serving loads full record snapshots for the read API. The
// domain layer computes its views over complete in-memory record sets,
// so every handler starts from one of these snapshots. Reads go through
// the derived-view cache when one is configured; the ingest worker
// invalidates the view keys after each upsert.
package serving

import (
	"context"
	"time"

	"github.com/frknaykc/dragonseye/internal/infrastructure/database/postgres/repositories"
	"github.com/frknaykc/dragonseye/internal/infrastructure/database/redis"
	"github.com/frknaykc/dragonseye/internal/infrastructure/monitoring/logging"
	"github.com/frknaykc/dragonseye/pkg/types/threat"
)

// Cache keys for the five record snapshots.
const (
	keyVictims     = "view:victims"
	keyGroups      = "view:groups"
	keyNotes       = "view:notes"
	keyDecryptors  = "view:decryptors"
	keyChats       = "view:negotiations"
	defaultViewTTL = 5 * time.Minute
)

// VictimLister loads every stored victim record.
type VictimLister interface {
	ListAll(ctx context.Context) ([]threat.Victim, error)
}

// GroupLister loads every stored group profile.
type GroupLister interface {
	ListAll(ctx context.Context) ([]threat.GroupProfile, error)
}

// NoteLister loads every stored ransom note.
type NoteLister interface {
	ListAll(ctx context.Context) ([]threat.RansomNote, error)
}

// DecryptorLister loads every stored decryptor.
type DecryptorLister interface {
	ListAll(ctx context.Context) ([]threat.Decryptor, error)
}

// ChatLister loads every stored negotiation transcript.
type ChatLister interface {
	ListAll(ctx context.Context) ([]threat.NegotiationChat, error)
}

// Repos bundles the five snapshot loaders.
type Repos struct {
	Victims    VictimLister
	Groups     GroupLister
	Notes      NoteLister
	Decryptors DecryptorLister
	Chats      ChatLister
}

// NewRepos wires the pgx repositories into a Repos bundle.
func NewRepos(db repositories.Querier, log logging.Logger) Repos {
	return Repos{
		Victims:    repositories.NewVictimRepository(db, log),
		Groups:     repositories.NewGroupRepository(db, log),
		Notes:      repositories.NewNoteRepository(db, log),
		Decryptors: repositories.NewDecryptorRepository(db, log),
		Chats:      repositories.NewChatRepository(db, log),
	}
}

// Source serves record snapshots, read-through cached. cache may be
// nil; loads then always hit the store.
type Source struct {
	repos  Repos
	cache  redis.Cache
	ttl    time.Duration
	logger logging.Logger
}

// Option configures a Source.
type Option func(*Source)

// WithViewTTL overrides the snapshot cache TTL.
func WithViewTTL(ttl time.Duration) Option {
	return func(s *Source) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// NewSource builds a snapshot source over the repositories.
func NewSource(repos Repos, cache redis.Cache, log logging.Logger, opts ...Option) *Source {
	if log == nil {
		log = logging.NewNopLogger()
	}
	s := &Source{
		repos:  repos,
		cache:  cache,
		ttl:    defaultViewTTL,
		logger: log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Victims returns the full victim snapshot.
func (s *Source) Victims(ctx context.Context) ([]threat.Victim, error) {
	if s.cache == nil {
		return s.repos.Victims.ListAll(ctx)
	}
	var out []threat.Victim
	err := s.cache.GetOrSet(ctx, keyVictims, &out, s.ttl, func(ctx context.Context) (interface{}, error) {
		return s.repos.Victims.ListAll(ctx)
	})
	return out, err
}

// Groups returns the full group-profile snapshot.
func (s *Source) Groups(ctx context.Context) ([]threat.GroupProfile, error) {
	if s.cache == nil {
		return s.repos.Groups.ListAll(ctx)
	}
	var out []threat.GroupProfile
	err := s.cache.GetOrSet(ctx, keyGroups, &out, s.ttl, func(ctx context.Context) (interface{}, error) {
		return s.repos.Groups.ListAll(ctx)
	})
	return out, err
}

// Notes returns the full ransom-note snapshot.
func (s *Source) Notes(ctx context.Context) ([]threat.RansomNote, error) {
	if s.cache == nil {
		return s.repos.Notes.ListAll(ctx)
	}
	var out []threat.RansomNote
	err := s.cache.GetOrSet(ctx, keyNotes, &out, s.ttl, func(ctx context.Context) (interface{}, error) {
		return s.repos.Notes.ListAll(ctx)
	})
	return out, err
}

// Decryptors returns the full decryptor snapshot.
func (s *Source) Decryptors(ctx context.Context) ([]threat.Decryptor, error) {
	if s.cache == nil {
		return s.repos.Decryptors.ListAll(ctx)
	}
	var out []threat.Decryptor
	err := s.cache.GetOrSet(ctx, keyDecryptors, &out, s.ttl, func(ctx context.Context) (interface{}, error) {
		return s.repos.Decryptors.ListAll(ctx)
	})
	return out, err
}

// Chats returns the full negotiation-chat snapshot.
func (s *Source) Chats(ctx context.Context) ([]threat.NegotiationChat, error) {
	if s.cache == nil {
		return s.repos.Chats.ListAll(ctx)
	}
	var out []threat.NegotiationChat
	err := s.cache.GetOrSet(ctx, keyChats, &out, s.ttl, func(ctx context.Context) (interface{}, error) {
		return s.repos.Chats.ListAll(ctx)
	})
	return out, err
}
