package redislock

import (
	"context"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/payment"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL     = 60 * time.Second
	releaseTimeout = 2 * time.Second
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by another callback is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ReferenceLock serializes payment callbacks across processes sharing one Redis.
type ReferenceLock struct {
	client *redis.Client
	ttl    time.Duration
	log    observability.Logger
}

func New(client *redis.Client, ttl time.Duration, logger observability.Logger) *ReferenceLock {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &ReferenceLock{client: client, ttl: ttl, log: logger.With(observability.F("component", "redis_lock"))}
}

func (l *ReferenceLock) Acquire(ctx context.Context, reference string) (func(), error) {
	key := lockKey(reference)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lock %s: %w", key, err)
	}
	if !ok {
		return nil, payment.ErrReconciliationInProgress
	}

	return func() {
		// Release must run even when the request context is already done.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		if err := releaseScript.Run(rctx, l.client, []string{key}, token).Err(); err != nil {
			l.log.Warn("redis_lock_release_failed",
				observability.F("key", key),
				observability.E(err),
			)
		}
	}, nil
}

func lockKey(reference string) string {
	return fmt.Sprintf("payment:reconcile:%s", reference)
}
