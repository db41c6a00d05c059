package api

import (
	"net/http"
	"testing"
)

func TestGlobalThrottleRejectsWhenSaturated(t *testing.T) {
	cfg := testConfig()
	cfg.GlobalThrottleRPS = 1
	cfg.GlobalBurst = 1
	server := NewServer(cfg, &fakeGate{})

	if code := postSubmit(t, server, `{"message":"first"}`, nil).Code; code != http.StatusOK {
		t.Fatalf("桶内首个请求期望 200，实际 %d", code)
	}
	if code := postSubmit(t, server, `{"message":"second"}`, nil).Code; code != http.StatusTooManyRequests {
		t.Fatalf("令牌耗尽后期望 429，实际 %d", code)
	}
}
