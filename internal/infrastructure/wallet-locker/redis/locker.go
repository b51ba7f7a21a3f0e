package redislocker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/beastmint/mintd/internal/core/ports"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	keyPrefix = "walletLocker:"

	defaultLockTTL     = 2 * time.Minute
	defaultRetryPeriod = 100 * time.Millisecond
)

// releaseScript deletes the lock only if it is still owned by the caller.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

type Option func(*locker)

func WithLockTTL(ttl time.Duration) Option {
	return func(l *locker) {
		l.ttl = ttl
	}
}

func WithRetryPeriod(period time.Duration) Option {
	return func(l *locker) {
		l.retryPeriod = period
	}
}

// locker shares wallet locks across every mintd instance pointing at the
// same redis. The ttl bounds how long a crashed holder blocks the wallet.
type locker struct {
	rdb         *redis.Client
	ttl         time.Duration
	retryPeriod time.Duration
}

func NewLocker(rdb *redis.Client, opts ...Option) ports.WalletLocker {
	l := &locker{
		rdb:         rdb,
		ttl:         defaultLockTTL,
		retryPeriod: defaultRetryPeriod,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *locker) Lock(ctx context.Context, wallet string) (func(), error) {
	key := keyPrefix + wallet
	token := uuid.New().String()

	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire wallet lock: %w", err)
		}
		if ok {
			break
		}

		select {
		case <-time.After(l.retryPeriod):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// the caller context may already be done at this point
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Err(); err != nil {
				log.WithError(err).Warn("failed to release wallet lock")
			}
		})
	}, nil
}

func (l *locker) Close() {
	_ = l.rdb.Close()
}
