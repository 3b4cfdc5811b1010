package middleware

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRateLimiter_Check(t *testing.T) {
	rl := NewRateLimiter(2, time.Hour)

	if !rl.Check() || !rl.Check() {
		t.Fatal("限额内的请求应被放行")
	}
	if rl.Check() {
		t.Error("超过限额的请求应被拒绝")
	}

	status := rl.GetStatus()
	if status.Used != 2 || status.Remaining != 0 {
		t.Errorf("status = %+v", status)
	}
}

func TestRateLimiter_Unlimited(t *testing.T) {
	// 未配置上限时不限流
	rl := NewRateLimiter(0, time.Hour)
	for i := 0; i < 100; i++ {
		if !rl.Check() {
			t.Fatal("上限为0时不应限流")
		}
	}
}

func TestRateLimitError_Message(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	rl.Check()
	rl.Check()

	err := &RateLimitError{Status: rl.GetStatus()}
	msg := err.Error()
	if !strings.Contains(msg, "1/1") {
		t.Errorf("错误信息应包含用量计数: %s", msg)
	}
	if !strings.Contains(msg, "rate limit exceeded") {
		t.Errorf("错误信息格式错误: %s", msg)
	}
}

func TestRetryWithBackoff_EventualSuccess(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), 3, time.Millisecond, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("暂时失败")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RetryWithBackoff() error = %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetryWithBackoff_Exhausted(t *testing.T) {
	cause := errors.New("始终失败")
	attempts := 0
	err := RetryWithBackoff(context.Background(), 2, time.Millisecond, func() error {
		attempts++
		return cause
	})
	if err == nil {
		t.Fatal("重试耗尽后应返回错误")
	}
	if !errors.Is(err, cause) {
		t.Errorf("应包装最后一次失败的原因: %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}
