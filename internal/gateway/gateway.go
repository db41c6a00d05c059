package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"infographic-gateway/internal/security"
	"infographic-gateway/internal/store"
)

// 提交被拒绝的原因，由 API 层映射为 HTTP 状态码。
var (
	ErrInvalidInput     = errors.New("message is empty or missing")
	ErrTooLong          = errors.New("message exceeds maximum length")
	ErrRateLimited      = errors.New("rate limit exceeded")
	ErrDuplicateContent = errors.New("duplicate content")
)

// RateLimiter 按 key 消耗窗口配额。
type RateLimiter interface {
	Allow(key string, limit int, window time.Duration) bool
}

// DuplicateDetector 检查并标记窗口期内是否出现过同一指纹。
type DuplicateDetector interface {
	SeenRecently(key string, window time.Duration) bool
}

// RequestQueue 待审核队列的写入端。
type RequestQueue interface {
	Push(ctx context.Context, submission store.Submission) error
}

// Gateway 提交闸门：校验、限流、去重三层逐级短路，全部通过才入队。
type Gateway struct {
	limiter         RateLimiter
	dedupe          DuplicateDetector
	queue           RequestQueue
	maxMessageRunes int
	submitLimit     int
	rateWindow      time.Duration
	duplicateWindow time.Duration
	nowFunc         func() time.Time
}

func New(
	limiter RateLimiter,
	dedupe DuplicateDetector,
	queue RequestQueue,
	maxMessageRunes int,
	submitLimit int,
	rateWindow time.Duration,
	duplicateWindow time.Duration,
) *Gateway {
	return &Gateway{
		limiter:         limiter,
		dedupe:          dedupe,
		queue:           queue,
		maxMessageRunes: maxMessageRunes,
		submitLimit:     submitLimit,
		rateWindow:      rateWindow,
		duplicateWindow: duplicateWindow,
		nowFunc:         time.Now,
	}
}

// Submit 处理一条提交。层序固定：校验、限流、去重、入队。
// 配额在校验通过后即被消耗，之后因重复被拒的请求同样计入当小时配额，
// 保持与线上行为一致（换措辞刷重复内容无法绕过限流）。
func (g *Gateway) Submit(ctx context.Context, rawMessage, clientAddr string) (store.Submission, error) {
	message := strings.TrimSpace(rawMessage)
	if message == "" {
		return store.Submission{}, ErrInvalidInput
	}
	if len([]rune(message)) > g.maxMessageRunes {
		return store.Submission{}, ErrTooLong
	}

	ipHashed := security.HashClientAddr(clientAddr)
	fingerprint := security.ContentFingerprint(message)

	if !g.limiter.Allow(ipHashed, g.submitLimit, g.rateWindow) {
		return store.Submission{}, ErrRateLimited
	}

	// 去重键只含内容指纹：任何人 24 小时内提交过同样内容即拒绝。
	if g.dedupe.SeenRecently(fingerprint, g.duplicateWindow) {
		return store.Submission{}, ErrDuplicateContent
	}

	submission := store.Submission{
		ID:        uuid.NewString(),
		Message:   message,
		Timestamp: g.nowFunc().UTC(),
		IPHashed:  ipHashed,
	}

	if err := g.queue.Push(ctx, submission); err != nil {
		return store.Submission{}, fmt.Errorf("提交入队失败: %w", err)
	}
	return submission, nil
}
