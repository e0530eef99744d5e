package redis

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/frknaykc/dragonseye/pkg/errors"
)

var (
	// ErrLockNotAcquired is returned by Lock when the lock stays held
	// past the retry budget.
	ErrLockNotAcquired = errors.New(errors.ErrCodeConflict, "lock not acquired")
	// ErrLockNotHeld is returned by Unlock when the lock is held by
	// another owner or already expired.
	ErrLockNotHeld = errors.New(errors.ErrCodeConflict, "lock not held")
)

// unlockScript releases the lock only when the caller still owns it.
const unlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// Mutex is a single-holder distributed lock. The ingest worker takes
// it before recomputing derived views so that only one replica does
// the work.
type Mutex struct {
	client     *Client
	key        string
	token      string
	ttl        time.Duration
	retryDelay time.Duration
	retryCount int
}

// MutexOption configures a Mutex.
type MutexOption func(*Mutex)

// WithLockTTL sets how long the lock survives a crashed holder.
func WithLockTTL(ttl time.Duration) MutexOption {
	return func(m *Mutex) { m.ttl = ttl }
}

// WithRetry sets the acquisition retry schedule for Lock.
func WithRetry(count int, delay time.Duration) MutexOption {
	return func(m *Mutex) { m.retryCount = count; m.retryDelay = delay }
}

// NewMutex builds a Mutex over the given fully prefixed key.
func NewMutex(client *Client, key string, opts ...MutexOption) *Mutex {
	m := &Mutex{
		client:     client,
		key:        key,
		token:      uuid.NewString(),
		ttl:        30 * time.Second,
		retryDelay: 100 * time.Millisecond,
		retryCount: 10,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TryLock attempts a single acquisition.
func (m *Mutex) TryLock(ctx context.Context) (bool, error) {
	ok, err := m.client.SetNX(ctx, m.key, m.token, m.ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "lock acquisition failed")
	}
	return ok, nil
}

// Lock acquires the mutex, retrying until the budget is exhausted.
func (m *Mutex) Lock(ctx context.Context) error {
	for attempt := 0; ; attempt++ {
		ok, err := m.TryLock(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if attempt >= m.retryCount {
			return ErrLockNotAcquired
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), errors.ErrCodeTimeout, "lock acquisition cancelled")
		case <-time.After(m.retryDelay):
		}
	}
}

// Unlock releases the mutex when still held by this owner.
func (m *Mutex) Unlock(ctx context.Context) error {
	res, err := m.client.Eval(ctx, unlockScript, []string{m.key}, m.token).Int64()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "lock release failed")
	}
	if res == 0 {
		return ErrLockNotHeld
	}
	return nil
}
