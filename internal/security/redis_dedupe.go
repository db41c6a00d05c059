package security

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDuplicateDetector 使用 Redis 实现跨实例内容去重。
// SetNX 保证"检查并标记"原子完成；去重键只按内容指纹，不区分提交者。
// 当 Redis 不可用时，回退到进程内去重。
type RedisDuplicateDetector struct {
	client    *redis.Client
	keyPrefix string
	fallback  *DuplicateDetector
	timeout   time.Duration
}

func NewRedisDuplicateDetector(client *redis.Client, keyPrefix string) *RedisDuplicateDetector {
	return &RedisDuplicateDetector{
		client:    client,
		keyPrefix: keyPrefix,
		fallback:  NewDuplicateDetector(),
		timeout:   800 * time.Millisecond,
	}
}

// SeenRecently 在窗口内重复返回 true；首次写入窗口标记并返回 false。
func (d *RedisDuplicateDetector) SeenRecently(key string, window time.Duration) bool {
	if d == nil {
		return false
	}
	if d.client == nil {
		return d.fallback.SeenRecently(key, window)
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	fullKey := PrefixedKey(d.keyPrefix, "dedup", key)
	ok, err := d.client.SetNX(ctx, fullKey, "true", window).Result()
	if err != nil {
		return d.fallback.SeenRecently(key, window)
	}
	return !ok
}
