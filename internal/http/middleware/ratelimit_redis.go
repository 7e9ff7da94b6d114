package middleware

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// counterScript bumps the per-key hit counter and arms the window TTL on
// the first hit. Returns 1 while the key is still under its limit.
var counterScript = redis.NewScript(`
local hits = redis.call("INCR", KEYS[1])
if hits == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if hits > tonumber(ARGV[2]) then
  return 0
end
return 1
`)

const redisLimiterTimeout = 250 * time.Millisecond

// RedisLimiter counts hits in redis so every API instance shares one
// window. A dead or slow redis fails open.
type RedisLimiter struct {
	client *redis.Client
}

func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	if client == nil {
		return nil
	}
	return &RedisLimiter{client: client}
}

func (l *RedisLimiter) Allow(key string, limit int, window time.Duration) bool {
	if l == nil || l.client == nil || key == "" || limit <= 0 {
		return true
	}
	ttl := window.Milliseconds()
	if ttl <= 0 {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisLimiterTimeout)
	defer cancel()
	verdict, err := counterScript.Run(ctx, l.client, []string{key}, ttl, limit).Int64()
	if err != nil {
		return true
	}
	return verdict == 1
}
