package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds the caller's token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock is a held single-owner key
type Lock struct {
	key   string
	token string
}

// Key returns the locked key
func (l *Lock) Key() string {
	return l.key
}

// AcquireLock takes key for ttl. ok is false when someone else holds it.
func AcquireLock(ctx context.Context, key string, ttl time.Duration) (*Lock, bool, error) {
	token := uuid.NewString()
	ok, err := SetNX(ctx, key, token, ttl)
	if err != nil || !ok {
		return nil, false, err
	}
	return &Lock{key: key, token: token}, true, nil
}

// Release drops the lock if it has not expired and been re-taken
func (l *Lock) Release(ctx context.Context) error {
	if l == nil {
		return nil
	}
	c, err := conn()
	if err != nil {
		return err
	}
	return releaseScript.Run(ctx, c, []string{l.key}, l.token).Err()
}

// Locker adapts AcquireLock to callers that only need a release callback
type Locker struct{}

// TryLock acquires key; release drops it on a detached context so a
// cancelled request still frees the lock.
func (Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	lock, ok, err := AcquireLock(ctx, key, ttl)
	if err != nil || !ok {
		return nil, ok, err
	}
	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = lock.Release(releaseCtx)
	}, true, nil
}
