package ingest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frknaykc/dragonseye/internal/application/serving"
	"github.com/frknaykc/dragonseye/internal/config"
	"github.com/frknaykc/dragonseye/internal/infrastructure/database/redis"
	"github.com/frknaykc/dragonseye/internal/infrastructure/messaging/kafka"
	"github.com/frknaykc/dragonseye/pkg/errors"
	"github.com/frknaykc/dragonseye/pkg/types/threat"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────────────────────────────────────

type fakeStores struct {
	mu         sync.Mutex
	victims    []threat.Victim
	groups     []threat.GroupProfile
	notes      []threat.RansomNote
	decryptors []threat.Decryptor
	chats      []threat.NegotiationChat
	err        error
}

func (f *fakeStores) upsertVictim(_ context.Context, v threat.Victim) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.victims = append(f.victims, v)
	return nil
}

func (f *fakeStores) upsertGroup(_ context.Context, g threat.GroupProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.groups = append(f.groups, g)
	return nil
}

func (f *fakeStores) upsertNote(_ context.Context, n threat.RansomNote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if n.GroupName == "" || n.Filename == "" {
		return errors.New(errors.ErrCodeNoteInvalid, "ransom note requires a group name and filename")
	}
	f.notes = append(f.notes, n)
	return nil
}

func (f *fakeStores) upsertDecryptor(_ context.Context, d threat.Decryptor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decryptors = append(f.decryptors, d)
	return nil
}

func (f *fakeStores) upsertChat(_ context.Context, c threat.NegotiationChat) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.chats = append(f.chats, c)
	return nil
}

type storeFunc[T any] func(context.Context, T) error

func (fn storeFunc[T]) Upsert(ctx context.Context, v T) error { return fn(ctx, v) }

type fakeCache struct {
	mu       sync.Mutex
	prefixes []string
}

func (f *fakeCache) Get(context.Context, string, interface{}) error { return nil }
func (f *fakeCache) Set(context.Context, string, interface{}, time.Duration) error {
	return nil
}
func (f *fakeCache) Delete(context.Context, ...string) error { return nil }
func (f *fakeCache) Exists(context.Context, string) (bool, error) {
	return false, nil
}
func (f *fakeCache) GetOrSet(context.Context, string, interface{}, time.Duration, func(ctx context.Context) (interface{}, error)) error {
	return nil
}
func (f *fakeCache) DeleteByPrefix(_ context.Context, prefix string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefixes = append(f.prefixes, prefix)
	return 0, nil
}

func newTestService(t *testing.T) (*Service, *fakeStores, *fakeCache) {
	t.Helper()
	fs := &fakeStores{}
	cache := &fakeCache{}
	svc := NewService(Stores{
		Victims:    storeFunc[threat.Victim](fs.upsertVictim),
		Groups:     storeFunc[threat.GroupProfile](fs.upsertGroup),
		Notes:      storeFunc[threat.RansomNote](fs.upsertNote),
		Decryptors: storeFunc[threat.Decryptor](fs.upsertDecryptor),
		Chats:      storeFunc[threat.NegotiationChat](fs.upsertChat),
	}, cache, nil)
	return svc, fs, cache
}

func envelope(t *testing.T, topic string, payload interface{}) *kafka.EventEnvelope {
	t.Helper()
	env, err := kafka.NewEventEnvelope(topic, "scraper", payload)
	require.NoError(t, err)
	return env
}

// ─────────────────────────────────────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestHandleVictimIngestsAndInvalidatesStats(t *testing.T) {
	svc, fs, cache := newTestService(t)

	env := envelope(t, kafka.TopicVictimDiscovered, map[string]interface{}{
		"post_title": "Acme Corp",
		"group_name": "lockbit3",
		"country":    "US",
		"discovered": "2025-06-01 12:00:00",
	})
	require.NoError(t, svc.HandleVictim(context.Background(), env))

	require.Len(t, fs.victims, 1)
	assert.Equal(t, "Acme Corp", fs.victims[0].PostTitle)
	assert.Contains(t, cache.prefixes, "stats:")
}

func TestHandleVictimStampsMissingDiscoveryDate(t *testing.T) {
	svc, fs, _ := newTestService(t)

	env := envelope(t, kafka.TopicVictimDiscovered, map[string]interface{}{
		"post_title": "NoDate Inc",
		"group_name": "play",
	})
	require.NoError(t, svc.HandleVictim(context.Background(), env))

	require.Len(t, fs.victims, 1)
	assert.False(t, fs.victims[0].DiscoveredAt.IsZero())
}

func TestHandleVictimRejectsEmptyRecord(t *testing.T) {
	svc, fs, _ := newTestService(t)

	env := envelope(t, kafka.TopicVictimDiscovered, map[string]interface{}{"noise": true})
	err := svc.HandleVictim(context.Background(), env)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeIngestDecodeFailed))
	assert.Empty(t, fs.victims)
}

func TestHandleVictimWrapsStoreFailure(t *testing.T) {
	svc, fs, _ := newTestService(t)
	fs.err = assert.AnError

	env := envelope(t, kafka.TopicVictimDiscovered, map[string]interface{}{
		"post_title": "Acme", "group_name": "akira",
	})
	err := svc.HandleVictim(context.Background(), env)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeIngestUpsertFailed))
}

func TestHandleGroupRequiresName(t *testing.T) {
	svc, fs, cache := newTestService(t)

	err := svc.HandleGroup(context.Background(),
		envelope(t, kafka.TopicGroupUpdated, map[string]interface{}{"description": "nameless"}))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeIngestDecodeFailed))

	require.NoError(t, svc.HandleGroup(context.Background(),
		envelope(t, kafka.TopicGroupUpdated, map[string]interface{}{"name": "akira"})))
	require.Len(t, fs.groups, 1)
	assert.Contains(t, cache.prefixes, "view:groups")
}

func TestHandleNoteUnkeyableBecomesDecodeFailure(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.HandleNote(context.Background(),
		envelope(t, kafka.TopicNotePublished, map[string]interface{}{"content": "pay up"}))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeIngestDecodeFailed))
}

func TestHandleNoteInvalidatesNoteView(t *testing.T) {
	svc, fs, cache := newTestService(t)

	env := envelope(t, kafka.TopicNotePublished, map[string]interface{}{
		"group_name": "akira",
		"filename":   "akira_readme.txt",
	})
	require.NoError(t, svc.HandleNote(context.Background(), env))

	require.Len(t, fs.notes, 1)
	assert.Contains(t, cache.prefixes, "view:notes")
}

type noteListerFunc func(ctx context.Context) ([]threat.RansomNote, error)

func (fn noteListerFunc) ListAll(ctx context.Context) ([]threat.RansomNote, error) {
	return fn(ctx)
}

// A cached note snapshot must not survive a note upsert: the second
// read after HandleNote has to see the new record, not the stale view.
func TestHandleNoteRefreshesCachedSnapshot(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := redis.NewClient(config.RedisConfig{Addr: mr.Addr()}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	cache := redis.NewCache(client, nil)

	fs := &fakeStores{notes: []threat.RansomNote{
		{GroupName: "lockbit3", Filename: "restore-my-files.txt"},
	}}
	svc := NewService(Stores{
		Notes: storeFunc[threat.RansomNote](fs.upsertNote),
	}, cache, nil)

	source := serving.NewSource(serving.Repos{
		Notes: noteListerFunc(func(context.Context) ([]threat.RansomNote, error) {
			fs.mu.Lock()
			defer fs.mu.Unlock()
			out := make([]threat.RansomNote, len(fs.notes))
			copy(out, fs.notes)
			return out, nil
		}),
	}, cache, nil)

	ctx := context.Background()
	first, err := source.Notes(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	env := envelope(t, kafka.TopicNotePublished, map[string]interface{}{
		"group_name": "akira",
		"filename":   "akira_readme.txt",
	})
	require.NoError(t, svc.HandleNote(ctx, env))

	second, err := source.Notes(ctx)
	require.NoError(t, err)
	require.Len(t, second, 2)
}

func TestHandleChatRoundTrip(t *testing.T) {
	svc, fs, _ := newTestService(t)

	env := envelope(t, kafka.TopicChatCaptured, map[string]interface{}{
		"chat_id": "20210815",
		"group":   "Conti",
		"paid":    "true",
	})
	require.NoError(t, svc.HandleChat(context.Background(), env))

	require.Len(t, fs.chats, 1)
	assert.Equal(t, "20210815", fs.chats[0].ChatID)
	assert.True(t, fs.chats[0].Paid.Bool())
}

func TestHandleDecryptorRequiresKey(t *testing.T) {
	svc, fs, _ := newTestService(t)

	err := svc.HandleDecryptor(context.Background(),
		envelope(t, kafka.TopicDecryptorReleased, map[string]interface{}{"vendor": "ExampleVendor"}))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeIngestDecodeFailed))

	require.NoError(t, svc.HandleDecryptor(context.Background(),
		envelope(t, kafka.TopicDecryptorReleased, map[string]interface{}{
			"group": "hive", "name": "hive-decryptor",
		})))
	require.Len(t, fs.decryptors, 1)
}
