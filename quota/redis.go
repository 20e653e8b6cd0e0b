package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// acquireScript increments the counter only while it is below the limit and
// sets the key to expire at the next reset. Returns -1 when exhausted.
var acquireScript = redis.NewScript(`
local used = tonumber(redis.call('GET', KEYS[1]) or '0')
if used >= tonumber(ARGV[1]) then
	return -1
end
used = redis.call('INCR', KEYS[1])
redis.call('EXPIREAT', KEYS[1], ARGV[2])
return tonumber(ARGV[1]) - used
`)

// refundScript decrements without going below zero.
var refundScript = redis.NewScript(`
local used = tonumber(redis.call('GET', KEYS[1]) or '0')
if used > 0 then
	return redis.call('DECR', KEYS[1])
end
return 0
`)

// Redis is a Limiter shared by every instance pointing at the same server.
type Redis struct {
	client    *redis.Client
	limit     int
	keyPrefix string
	now       func() time.Time
}

func NewRedis(client *redis.Client, limit int, keyPrefix string) *Redis {
	if client == nil {
		panic("redis client cannot be nil for quota.Redis")
	}
	if keyPrefix == "" {
		keyPrefix = "fairmind:"
	}
	return &Redis{client: client, limit: limit, keyPrefix: keyPrefix, now: time.Now}
}

func (r *Redis) key(userID uint, at time.Time) string {
	return fmt.Sprintf("%squota:%d:%s", r.keyPrefix, userID, dayKey(at))
}

func (r *Redis) Acquire(ctx context.Context, userID uint) (int, error) {
	now := r.now()
	remaining, err := acquireScript.Run(ctx, r.client,
		[]string{r.key(userID, now)}, r.limit, nextReset(now).Unix()).Int()
	if err != nil {
		return 0, fmt.Errorf("redis: acquire quota for user %d: %w", userID, err)
	}
	if remaining < 0 {
		return 0, ErrExceeded
	}
	return remaining, nil
}

func (r *Redis) Refund(ctx context.Context, userID uint) error {
	if err := refundScript.Run(ctx, r.client, []string{r.key(userID, r.now())}).Err(); err != nil {
		return fmt.Errorf("redis: refund quota for user %d: %w", userID, err)
	}
	return nil
}

func (r *Redis) Remaining(ctx context.Context, userID uint) (int, error) {
	used, err := r.client.Get(ctx, r.key(userID, r.now())).Int()
	if err == redis.Nil {
		return r.limit, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis: read quota for user %d: %w", userID, err)
	}
	if used > r.limit {
		return 0, nil
	}
	return r.limit - used, nil
}

func (r *Redis) Limit() int { return r.limit }
