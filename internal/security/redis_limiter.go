package security

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisFixedWindowLimiter 使用 Redis 实现跨实例固定窗口限流。
// 计数与过期用 Lua 脚本一次完成，避免并发请求读到旧计数同时放行。
// 当 Redis 不可用时，回退到进程内限流，避免服务完全不可用。
type RedisFixedWindowLimiter struct {
	client    *redis.Client
	keyPrefix string
	fallback  *FixedWindowLimiter
	timeout   time.Duration
}

var fixedWindowAllowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
if current > tonumber(ARGV[1]) then
  return 0
end
return 1
`)

func NewRedisFixedWindowLimiter(client *redis.Client, keyPrefix string) *RedisFixedWindowLimiter {
	return &RedisFixedWindowLimiter{
		client:    client,
		keyPrefix: keyPrefix,
		fallback:  NewFixedWindowLimiter(),
		timeout:   800 * time.Millisecond,
	}
}

func (l *RedisFixedWindowLimiter) Allow(key string, limit int, window time.Duration) bool {
	if l == nil || limit <= 0 {
		return false
	}
	if l.client == nil {
		return l.fallback.Allow(key, limit, window)
	}

	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	windowMillis := window.Milliseconds()
	if windowMillis <= 0 {
		windowMillis = 1
	}

	fullKey := PrefixedKey(l.keyPrefix, "ratelimit", key)
	result, err := fixedWindowAllowScript.Run(ctx, l.client, []string{fullKey}, limit, windowMillis).Int()
	if err != nil {
		return l.fallback.Allow(key, limit, window)
	}
	return result == 1
}

// PrefixedKey 拼接存储键：{prefix}:{kind}:{key}，prefix 为空时省略。
func PrefixedKey(prefix, kind, key string) string {
	if prefix == "" {
		return kind + ":" + key
	}
	return prefix + ":" + kind + ":" + key
}
