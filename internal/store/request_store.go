package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Submission 一条待审核的内容请求，入队后不再修改。
type Submission struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	IPHashed  string    `json:"ipHashed"`
}

// RedisRequestStore 把提交写入共享 Redis 列表（表头为最新），供离线审核工具读取。
type RedisRequestStore struct {
	client  *redis.Client
	listKey string
}

func NewRedisRequestStore(client *redis.Client, listKey string) *RedisRequestStore {
	return &RedisRequestStore{client: client, listKey: listKey}
}

func (s *RedisRequestStore) Push(ctx context.Context, submission Submission) error {
	payload, err := json.Marshal(submission)
	if err != nil {
		return fmt.Errorf("编码提交记录失败: %w", err)
	}

	if err := s.client.LPush(ctx, s.listKey, payload).Err(); err != nil {
		return fmt.Errorf("写入待审核队列失败: %w", err)
	}
	return nil
}

// Requests 按新到旧返回队列前 limit 条记录；limit <= 0 时返回全部。
func (s *RedisRequestStore) Requests(ctx context.Context, limit int) ([]Submission, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	raw, err := s.client.LRange(ctx, s.listKey, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("读取待审核队列失败: %w", err)
	}

	submissions := make([]Submission, 0, len(raw))
	for _, item := range raw {
		var submission Submission
		if err := json.Unmarshal([]byte(item), &submission); err != nil {
			return nil, fmt.Errorf("解析提交记录失败: %w", err)
		}
		submissions = append(submissions, submission)
	}
	return submissions, nil
}

// MemoryRequestStore 进程内队列，用于本地开发与测试。
type MemoryRequestStore struct {
	mu          sync.Mutex
	submissions []Submission
}

func NewMemoryRequestStore() *MemoryRequestStore {
	return &MemoryRequestStore{}
}

func (s *MemoryRequestStore) Push(_ context.Context, submission Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.submissions = append([]Submission{submission}, s.submissions...)
	return nil
}

func (s *MemoryRequestStore) Requests(_ context.Context, limit int) ([]Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := len(s.submissions)
	if limit > 0 && limit < count {
		count = limit
	}

	result := make([]Submission, count)
	copy(result, s.submissions[:count])
	return result, nil
}

// Len 当前队列长度。
func (s *MemoryRequestStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.submissions)
}
