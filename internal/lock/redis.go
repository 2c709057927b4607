package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	lockKeyPrefix = "lock:"
	defaultTTL    = 10 * time.Second
	retryEvery    = 25 * time.Millisecond
)

var ErrNotHeld = errors.New("lock not held")

// releaseScript deletes the key only if it still carries our token, so a
// lease that expired and was taken by someone else is left alone.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// renewScript pushes the lease out again while we still own it.
var renewScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return 0
`)

// Redis holds a lease of ttl and renews it every ttl/3 until unlock, so a
// holder that outlives one ttl keeps exclusion. A holder that loses contact
// with Redis for a full ttl loses the lease.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	k := lockKeyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(retryEvery)
	defer ticker.Stop()
	for {
		ok, err := r.client.SetNX(ctx, k, token, r.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	stop := make(chan struct{})
	renewed := make(chan struct{})
	go r.keepAlive(k, token, stop, renewed)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-renewed
			// Release must not inherit a cancelled request context.
			relCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = r.release(relCtx, k, token)
		})
	}, nil
}

func (r *Redis) keepAlive(key, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	t := time.NewTicker(r.ttl / 3)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			ctx, cancel := context.WithTimeout(context.Background(), r.ttl/3)
			n, err := renewScript.Run(ctx, r.client, []string{key}, token, r.ttl.Milliseconds()).Int()
			cancel()
			if err == nil && n == 0 {
				// Lease already gone; nothing left to renew.
				return
			}
		}
	}
}

func (r *Redis) release(ctx context.Context, key, token string) error {
	n, err := releaseScript.Run(ctx, r.client, []string{key}, token).Int()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotHeld
	}
	return nil
}
