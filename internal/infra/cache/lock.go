package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockTimeout is returned when a lock could not be acquired within the wait time.
var ErrLockTimeout = errors.New("lock wait timeout")

// Locker serializes work on a key across requests.
type Locker interface {
	// Acquire blocks until the lock for key is held, the wait time runs out
	// (ErrLockTimeout) or ctx is done. The returned release func is idempotent.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

const lockPollInterval = 25 * time.Millisecond

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLocker struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	wait   time.Duration
}

// NewRedisLocker returns a Locker backed by SET NX PX. The ttl bounds how long a
// crashed holder can block others.
func NewRedisLocker(rdb *redis.Client, prefix string, ttl, wait time.Duration) Locker {
	return &redisLocker{rdb: rdb, prefix: prefix, ttl: ttl, wait: wait}
}

func (l *redisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	fullKey := l.prefix + key
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.rdb.SetNX(ctx, fullKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			var once sync.Once
			return func() {
				once.Do(func() {
					// release with a fresh context so a cancelled request still frees the lock
					_ = releaseScript.Run(context.Background(), l.rdb, []string{fullKey}, token).Err()
				})
			}, nil
		}

		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockPollInterval):
		}
	}
}

type localLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
	wait  time.Duration
}

// NewLocalLocker returns an in-process Locker for single-instance deployments.
func NewLocalLocker(wait time.Duration) Locker {
	return &localLocker{slots: make(map[string]chan struct{}), wait: wait}
}

func (l *localLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

func (l *localLocker) Acquire(ctx context.Context, key string) (func(), error) {
	ch := l.slot(key)
	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-ch }) }, nil
	case <-timer.C:
		return nil, ErrLockTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
