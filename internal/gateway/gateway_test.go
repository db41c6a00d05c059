package gateway

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"infographic-gateway/internal/security"
	"infographic-gateway/internal/store"
)

type countingLimiter struct {
	inner *security.FixedWindowLimiter
	calls int
}

func (l *countingLimiter) Allow(key string, limit int, window time.Duration) bool {
	l.calls++
	return l.inner.Allow(key, limit, window)
}

type failingQueue struct{}

func (failingQueue) Push(context.Context, store.Submission) error {
	return errors.New("connection refused")
}

func newTestGateway() (*Gateway, *countingLimiter, *store.MemoryRequestStore) {
	limiter := &countingLimiter{inner: security.NewFixedWindowLimiter()}
	queue := store.NewMemoryRequestStore()
	gate := New(limiter, security.NewDuplicateDetector(), queue, 500, 3, time.Hour, 24*time.Hour)
	return gate, limiter, queue
}

func TestSubmitRejectsEmptyMessageBeforeAnyLayer(t *testing.T) {
	gate, limiter, queue := newTestGateway()

	for _, raw := range []string{"", "   ", "\n\t"} {
		if _, err := gate.Submit(context.Background(), raw, "203.0.113.7"); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("输入 %q 期望 ErrInvalidInput，实际 %v", raw, err)
		}
	}
	if limiter.calls != 0 {
		t.Fatalf("校验失败不应触碰限流层，实际调用 %d 次", limiter.calls)
	}
	if queue.Len() != 0 {
		t.Fatalf("校验失败不应入队，队列长度 %d", queue.Len())
	}
}

func TestSubmitRejectsOverlongMessageBeforeAnyLayer(t *testing.T) {
	gate, limiter, queue := newTestGateway()

	overlong := strings.Repeat("x", 501)
	if _, err := gate.Submit(context.Background(), overlong, "203.0.113.7"); !errors.Is(err, ErrTooLong) {
		t.Fatalf("期望 ErrTooLong，实际 %v", err)
	}
	if limiter.calls != 0 || queue.Len() != 0 {
		t.Fatal("超长消息不应产生任何副作用")
	}
}

func TestSubmitAcceptsExactlyMaxLength(t *testing.T) {
	gate, _, queue := newTestGateway()

	exact := strings.Repeat("x", 500)
	if _, err := gate.Submit(context.Background(), exact, "203.0.113.7"); err != nil {
		t.Fatalf("恰好 500 字符应被接受，实际 %v", err)
	}
	if queue.Len() != 1 {
		t.Fatalf("期望队列长度 1，实际 %d", queue.Len())
	}
}

func TestSubmitRateLimitsFourthAttempt(t *testing.T) {
	gate, _, queue := newTestGateway()
	ctx := context.Background()

	contents := []string{"cover seed oils", "cover sleep debt", "cover caffeine"}
	for _, content := range contents {
		if _, err := gate.Submit(ctx, content, "203.0.113.7"); err != nil {
			t.Fatalf("前 3 次提交不应失败: %v", err)
		}
	}

	if _, err := gate.Submit(ctx, "cover hydration", "203.0.113.7"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("同一 IP 第 4 次提交期望 ErrRateLimited，实际 %v", err)
	}
	if queue.Len() != 3 {
		t.Fatalf("被限流的提交不应入队，队列长度 %d", queue.Len())
	}

	// 其他 IP 不受影响
	if _, err := gate.Submit(ctx, "cover hydration", "198.51.100.9"); err != nil {
		t.Fatalf("其他 IP 不应被波及: %v", err)
	}
}

func TestSubmitRejectsDuplicateAcrossIPs(t *testing.T) {
	gate, _, queue := newTestGateway()
	ctx := context.Background()

	if _, err := gate.Submit(ctx, "  DUPLICATE TEXT  ", "203.0.113.7"); err != nil {
		t.Fatalf("首次提交不应失败: %v", err)
	}

	// 去重只看内容指纹，换一个 IP 同样被拒
	if _, err := gate.Submit(ctx, "duplicate text", "198.51.100.9"); !errors.Is(err, ErrDuplicateContent) {
		t.Fatalf("归一化后相同的内容期望 ErrDuplicateContent，实际 %v", err)
	}
	if queue.Len() != 1 {
		t.Fatalf("重复内容不应入队，队列长度 %d", queue.Len())
	}
}

func TestSubmitDuplicateRejectionStillConsumesQuota(t *testing.T) {
	gate, _, _ := newTestGateway()
	ctx := context.Background()

	if _, err := gate.Submit(ctx, "cover seed oils", "203.0.113.7"); err != nil {
		t.Fatalf("首次提交不应失败: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := gate.Submit(ctx, "cover seed oils", "203.0.113.7"); !errors.Is(err, ErrDuplicateContent) {
			t.Fatalf("重复提交期望 ErrDuplicateContent，实际 %v", err)
		}
	}

	// 1 次成功 + 2 次重复被拒已耗尽 3 次配额，全新内容也该被限流
	if _, err := gate.Submit(ctx, "cover brand-new topic", "203.0.113.7"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("配额耗尽后期望 ErrRateLimited，实际 %v", err)
	}
}

func TestSubmitPersistsTrimmedRecordNewestFirst(t *testing.T) {
	gate, _, queue := newTestGateway()
	ctx := context.Background()
	start := time.Now().UTC()

	first, err := gate.Submit(ctx, "  Please cover seed oils  ", "203.0.113.7")
	if err != nil {
		t.Fatalf("提交失败: %v", err)
	}
	if first.Message != "Please cover seed oils" {
		t.Fatalf("入队消息应为去空白后的文本，实际 %q", first.Message)
	}
	if first.Timestamp.Before(start) {
		t.Fatalf("时间戳不应早于请求发起时间: %v < %v", first.Timestamp, start)
	}
	if first.IPHashed != security.HashClientAddr("203.0.113.7") {
		t.Fatalf("记录中的 IP 哈希不符: %s", first.IPHashed)
	}
	if first.ID == "" {
		t.Fatal("记录应带 ID")
	}

	second, err := gate.Submit(ctx, "Please cover sleep debt", "203.0.113.7")
	if err != nil {
		t.Fatalf("提交失败: %v", err)
	}

	submissions, _ := queue.Requests(ctx, 0)
	if len(submissions) != 2 {
		t.Fatalf("期望 2 条记录，实际 %d", len(submissions))
	}
	if submissions[0].ID != second.ID {
		t.Fatal("队列头应是最新一条提交")
	}
}

func TestSubmitWrapsQueueFailure(t *testing.T) {
	limiter := &countingLimiter{inner: security.NewFixedWindowLimiter()}
	gate := New(limiter, security.NewDuplicateDetector(), failingQueue{}, 500, 3, time.Hour, 24*time.Hour)

	_, err := gate.Submit(context.Background(), "cover seed oils", "203.0.113.7")
	if err == nil {
		t.Fatal("入队失败应向上传播")
	}
	for _, sentinel := range []error{ErrInvalidInput, ErrTooLong, ErrRateLimited, ErrDuplicateContent} {
		if errors.Is(err, sentinel) {
			t.Fatalf("存储错误不应映射到客户端错误: %v", err)
		}
	}
}
