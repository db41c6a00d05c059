package security

import (
	"sync"
	"time"
)

type fixedWindowRecord struct {
	WindowStart time.Time
	Count       int
}

// FixedWindowLimiter 固定窗口限流器（进程内）
type FixedWindowLimiter struct {
	mu      sync.Mutex
	records map[string]fixedWindowRecord
	nowFunc func() time.Time
}

func NewFixedWindowLimiter() *FixedWindowLimiter {
	return &FixedWindowLimiter{
		records: make(map[string]fixedWindowRecord),
		nowFunc: time.Now,
	}
}

// Allow 消耗一次配额；窗口从该 key 的首次调用起算。
func (l *FixedWindowLimiter) Allow(key string, limit int, window time.Duration) bool {
	if limit <= 0 {
		return false
	}

	now := l.nowFunc()

	l.mu.Lock()
	defer l.mu.Unlock()

	record, exists := l.records[key]
	if !exists || now.Sub(record.WindowStart) >= window {
		l.records[key] = fixedWindowRecord{WindowStart: now, Count: 1}
		l.cleanupExpired(window)
		return true
	}

	if record.Count >= limit {
		return false
	}

	record.Count++
	l.records[key] = record
	return true
}

func (l *FixedWindowLimiter) cleanupExpired(window time.Duration) {
	now := l.nowFunc()
	for key, record := range l.records {
		if now.Sub(record.WindowStart) >= window*2 {
			delete(l.records, key)
		}
	}
}
