package security

import (
	"sync"
	"time"
)

// DuplicateDetector 用于拦截窗口期内的重复内容提交（进程内）
type DuplicateDetector struct {
	mu      sync.Mutex
	records map[string]time.Time
	nowFunc func() time.Time
}

func NewDuplicateDetector() *DuplicateDetector {
	return &DuplicateDetector{
		records: make(map[string]time.Time),
		nowFunc: time.Now,
	}
}

// SeenRecently 在窗口内重复返回 true，否则记录标记并返回 false。
func (d *DuplicateDetector) SeenRecently(key string, window time.Duration) bool {
	now := d.nowFunc()

	d.mu.Lock()
	defer d.mu.Unlock()

	if expireAt, exists := d.records[key]; exists {
		if now.Before(expireAt) {
			return true
		}
	}

	d.records[key] = now.Add(window)
	for recordKey, expireAt := range d.records {
		if now.After(expireAt) {
			delete(d.records, recordKey)
		}
	}

	return false
}
